package sim

// rampIndicator moves v toward +1 or -1 by step under input, otherwise
// bleeds it toward 0 proportionally.
func rampIndicator(v float64, positive, negative bool, step, decay float64) float64 {
	switch {
	case positive:
		return min(v+step, 1)
	case negative:
		return max(v-step, -1)
	case v != 0:
		return v - v*decay
	}
	return v
}

// UpdateIndicators advances the four cosmetic indicators by one tick.
func UpdateIndicators(s *VehicleState, in Intent, t IndicatorTuning) {
	g := gatedIntent(in, s)
	ind := &s.Indicators
	ind.Forward = rampIndicator(ind.Forward, g.Forward, g.Backward, t.Step*t.ForwardRamp, t.Step*t.ForwardDecay)
	ind.Turning = rampIndicator(ind.Turning, g.TurnLeft, g.TurnRight, t.Step*t.TurningRamp, t.Step*t.TurningDecay)
	ind.Horizontal = rampIndicator(ind.Horizontal, g.Right, g.Left, t.Step*t.HorizontalRamp, t.Step*t.HorizontalDecay)
	ind.Vertical = rampIndicator(ind.Vertical, g.Up, g.Down, t.Step*t.VerticalRamp, t.Step*t.VerticalDecay)
}

// asymmetric scales v by down for v >= 0 and by up otherwise, negated so a
// positive indicator pitches the nose down.
func asymmetric(v, down, up float64) float64 {
	if v >= 0 {
		return -(down * v)
	}
	return -(up * v)
}

// AirframePitch is the nose angle for a forward indicator value.
func AirframePitch(forward float64, p PoseTuning) float64 {
	return asymmetric(forward, p.AirframePitchDown, p.AirframePitchUp)
}

// NacelleTilt returns the left and right nacelle tilt for a turning
// indicator: the outer nacelle tilts forward, the inner one back.
func NacelleTilt(turning float64, p PoseTuning) (left, right float64) {
	if turning >= 0 {
		return -p.NacelleTiltBackward * turning, p.NacelleTiltForward * turning
	}
	return -p.NacelleTiltForward * turning, p.NacelleTiltBackward * turning
}

// AirframeRoll combines turning bank and sideslip lean.
func AirframeRoll(ind Indicators, p PoseTuning) float64 {
	return -(ind.Turning * p.AirframeTilt) + ind.Horizontal*p.AirframeTilt
}

// ApplyPose writes the indicator-driven rotations. Nacelle tilt applies only
// while the nacelles are fully deployed.
func ApplyPose(f *Frame) {
	s, p := f.State, f.Tuning.Pose
	ind := s.Indicators

	setRotZ(f.part(PartPitch), AirframePitch(ind.Forward, p))
	setRotX(f.part(PartAirframe), AirframeRoll(ind, p))

	if s.Fold.Engine == 0 {
		setRotZ(f.part(PartEngines), asymmetric(ind.Forward, p.NacellePitchDown, p.NacellePitchUp))
		left, right := NacelleTilt(ind.Turning, p)
		setRotZ(f.part(PartEngineLeft), left)
		setRotZ(f.part(PartEngineRight), right)
	} else {
		setRotZ(f.part(PartEngines), 0)
		setRotZ(f.part(PartEngineLeft), 0)
		setRotZ(f.part(PartEngineRight), 0)
	}

	collective := ind.Vertical * p.BladeCollective
	for _, rotor := range []string{PartBladesLeft, PartBladesRight} {
		for i := 0; i < f.Tuning.Engine.BladeCount; i++ {
			setRotX(f.part(BladePart(rotor, i)), collective)
		}
	}
}

func VisualsStage() Stage {
	return Stage{
		Name:   "visuals",
		Reads:  []string{KeyIntent, KeyEngine, KeyGround, KeyFold, KeyIndicators},
		Writes: []string{KeyIndicators, KeyPose},
		Lagged: []string{KeyEngine, KeyGround, KeyFold},
		Run: func(f *Frame) {
			UpdateIndicators(f.State, f.Intent, f.Tuning.Indicators)
			ApplyPose(f)
		},
	}
}

func setRotX(n Node, x float64) {
	if n == nil {
		return
	}
	r := n.Rotation()
	r.X = x
	n.SetRotation(r)
}

func setRotY(n Node, y float64) {
	if n == nil {
		return
	}
	r := n.Rotation()
	r.Y = y
	n.SetRotation(r)
}

func setRotZ(n Node, z float64) {
	if n == nil {
		return
	}
	r := n.Rotation()
	r.Z = z
	n.SetRotation(r)
}

func setVisible(n Node, v bool) {
	if n != nil {
		n.SetVisible(v)
	}
}
