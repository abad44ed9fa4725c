package sim

// Surface answers ray queries against the terrain. Raycast returns the
// distance along dir (unit length) to the nearest intersection, or false.
type Surface interface {
	Raycast(origin, dir Vec3) (float64, bool)
}

var down = Vec3{0, -1, 0}

// MinClearance is the floor the resolver holds the vehicle above: the
// retracted value with gear up, the deployed value with gear down, blended
// while the gear travels.
func MinClearance(gear float64, t GroundTuning) float64 {
	return Lerp(t.RetractedClearance, t.DeployedClearance, Clamp(gear, 0, 1))
}

// TiltFade is 0 at the contact height and 1 at full gear compression.
func TiltFade(clearance float64, t GroundTuning) float64 {
	span := t.ContactHeight - t.DeployedClearance
	if span <= 0 {
		return 1
	}
	return Clamp((t.ContactHeight-clearance)/span, 0, 1)
}

// ResolveGround casts the center ray, lifts the vehicle out of the terrain
// and, near the ground, samples four corners for slope tilt.
func ResolveGround(f *Frame) {
	s, t := f.State, f.Tuning.Ground
	g := &s.Ground
	wasIn := g.InGround
	defer func() { logContact(f, wasIn) }()

	root := f.part(PartRoot)
	if root == nil || f.Surface == nil {
		*g = GroundState{}
		return
	}
	pos := root.Position()
	d, ok := f.Surface.Raycast(pos, down)
	if !ok {
		*g = GroundState{}
		return
	}

	g.Hit = true
	g.Clearance = d
	floor := MinClearance(s.Gear, t)
	if d < floor {
		pos.Y += floor - d
		root.SetPosition(pos)
	}
	effective := max(d, floor)

	if d >= t.ContactHeight {
		g.InGround = false
		g.Corners = [4]float64{}
		g.Pitch, g.Roll = 0, 0
		return
	}
	g.InGround = true

	yaw := root.Rotation().Y
	fwd := YawForward(yaw).Mul(t.CornerOffset)
	right := YawRight(yaw).Mul(t.CornerOffset)
	offsets := [4]Vec3{
		CornerFore:  fwd,
		CornerBack:  fwd.Mul(-1),
		CornerLeft:  right.Mul(-1),
		CornerRight: right,
	}
	for i, off := range offsets {
		if c, ok := f.Surface.Raycast(pos.Add(off), down); ok {
			g.Corners[i] = c
		} else {
			g.Corners[i] = effective
		}
	}

	fade := TiltFade(effective, t)
	base := 2 * t.CornerOffset
	g.Pitch = (g.Corners[CornerBack] - g.Corners[CornerFore]) / base * fade
	g.Roll = (g.Corners[CornerRight] - g.Corners[CornerLeft]) / base * fade

	if n := f.part(PartPitch); n != nil {
		r := n.Rotation()
		r.Z += g.Pitch
		n.SetRotation(r)
	}
	if n := f.part(PartAirframe); n != nil {
		r := n.Rotation()
		r.X += g.Roll
		n.SetRotation(r)
	}
}

func logContact(f *Frame, wasIn bool) {
	g := f.State.Ground
	switch {
	case g.InGround && !wasIn:
		f.Log.Info().Float64("clearance", g.Clearance).Msg("touchdown")
		f.emit(EventTouchdown, f.rootPosition())
	case wasIn && !g.InGround:
		f.Log.Info().Msg("lift-off")
		f.emit(EventLiftoff, f.rootPosition())
	}
}

func (f *Frame) rootPosition() Vec3 {
	if n := f.part(PartRoot); n != nil {
		return n.Position()
	}
	return Vec3{}
}

func GroundStage() Stage {
	return Stage{
		Name:   "ground",
		Reads:  []string{KeySurface, KeyRoot, KeyGear, KeyPose, KeyGround},
		Writes: []string{KeyGround, KeyRoot, KeyPose},
		Run:    ResolveGround,
	}
}
