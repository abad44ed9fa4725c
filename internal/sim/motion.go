package sim

// gatedIntent masks the directional controls the vehicle may honor this
// tick: nothing without engine power, and only heave while grounded.
func gatedIntent(in Intent, s *VehicleState) Intent {
	g := in
	if !s.Engine.Powered {
		g.Forward, g.Backward = false, false
		g.Left, g.Right = false, false
		g.TurnLeft, g.TurnRight = false, false
		g.Up, g.Down = false, false
		return g
	}
	if s.Ground.InGround {
		g.Forward, g.Backward = false, false
		g.Left, g.Right = false, false
		g.TurnLeft, g.TurnRight = false, false
	}
	return g
}

// StepAxis advances one axis by a tick. positive and negative are the
// already-gated controls for the axis.
func StepAxis(a *Axis, t AxisTuning, drag float64, positive, negative bool) {
	switch {
	case positive:
		a.Accel = min(a.Accel+t.AccelRate, t.MaxAccel)
	case negative:
		a.Accel = max(a.Accel+t.DecelRate, t.MinAccel)
	default:
		// No clamp here; the accumulator may overshoot while it settles.
		a.Accel -= drag * a.Velocity * t.PassiveDecay
	}
	a.Velocity = Clamp(a.Accel-drag*a.Velocity, t.MinAccel, t.MaxAccel)
}

// Integrate advances all four axes.
func Integrate(s *VehicleState, in Intent, t *Tuning) {
	g := gatedIntent(in, s)
	StepAxis(&s.Surge, t.Surge, t.Drag, g.Forward, g.Backward)
	StepAxis(&s.Sway, t.Sway, t.Drag, g.Right, g.Left)
	StepAxis(&s.Yaw, t.Yaw, t.Drag, g.TurnLeft, g.TurnRight)
	StepAxis(&s.Heave, t.Heave, t.Drag, g.Up, g.Down)
}

// ApplyDisplacement moves the root node in its own frame: forward along +X,
// right along +Z, yaw about +Y, then up along +Y.
func ApplyDisplacement(root Node, s *VehicleState, t *Tuning) {
	if root == nil {
		return
	}
	k := 1 / t.DisplacementScale
	root.TranslateOnAxis(AxisX, s.Surge.Velocity*k)
	root.TranslateOnAxis(AxisZ, s.Sway.Velocity*k)
	root.RotateOnAxis(AxisY, s.Yaw.Velocity*k)
	root.TranslateOnAxis(AxisY, s.Heave.Velocity*k)
}

func MotionStage() Stage {
	return Stage{
		Name:   "motion",
		Reads:  []string{KeyIntent, KeyEngine, KeyGround, KeyKinematics},
		Writes: []string{KeyKinematics, KeyRoot},
		Lagged: []string{KeyEngine, KeyGround},
		Run: func(f *Frame) {
			Integrate(f.State, f.Intent, f.Tuning)
			ApplyDisplacement(f.part(PartRoot), f.State, f.Tuning)
		},
	}
}
