package sim

import "math"

func bladeSpacing(n int) float64 {
	if n <= 0 {
		return 2 * math.Pi
	}
	return 2 * math.Pi / float64(n)
}

// registerBlade turns a stopped rotor toward the nearest blade position
// where the blades can sweep together. It reports true once aligned.
func registerBlade(angle, spacing, speed, eps float64) (float64, bool) {
	target := math.Round(angle/spacing) * spacing
	d := target - angle
	if math.Abs(d) <= eps {
		return WrapAngle(target), true
	}
	return WrapAngle(angle + Clamp(d, -speed, speed)), false
}

// BladesRegistered reports whether both rotors sit on a registration angle.
func BladesRegistered(e EngineState, t EngineTuning) bool {
	sp := bladeSpacing(t.BladeCount)
	_, l := registerBlade(e.BladeAngleLeft, sp, 0, t.RegistrationEps)
	_, r := registerBlade(e.BladeAngleRight, sp, 0, t.RegistrationEps)
	return l && r
}

// StepFold advances the blade, wing and nacelle stowage strictly in
// sequence. Folding runs blade, wing, nacelle; unfolding runs the reverse.
// Blades only fold with both rotors stopped and registered.
func StepFold(s *VehicleState, in Intent, t *Tuning) {
	f, e := &s.Fold, &s.Engine
	rate, back := t.Fold.FoldRate, t.Fold.UnfoldRate

	if in.ToggleBladeExtension {
		switch {
		case f.Blade < 1:
			if e.Left != 0 || e.Right != 0 {
				return
			}
			sp := bladeSpacing(t.Engine.BladeCount)
			var lok, rok bool
			e.BladeAngleLeft, lok = registerBlade(e.BladeAngleLeft, sp, t.Engine.RegistrationSpeed, t.Engine.RegistrationEps)
			e.BladeAngleRight, rok = registerBlade(e.BladeAngleRight, sp, t.Engine.RegistrationSpeed, t.Engine.RegistrationEps)
			if lok && rok {
				f.Blade = min(f.Blade+rate, 1)
			}
		case f.Wing < 1:
			f.Wing = min(f.Wing+rate, 1)
		case f.Engine < 1:
			f.Engine = min(f.Engine+rate, 1)
		}
		return
	}

	switch {
	case f.Engine > 0:
		f.Engine = max(f.Engine-back, 0)
	case f.Wing > 0:
		f.Wing = max(f.Wing-back, 0)
	case f.Blade > 0:
		f.Blade = max(f.Blade-back, 0)
	}
}

// StepActuators moves gear and ramp toward their toggled targets. The gear
// does not retract while the vehicle rests on it.
func StepActuators(s *VehicleState, in Intent, t *Tuning) {
	if in.ToggleGear || !s.Ground.InGround {
		s.Gear = Approach(s.Gear, toggleTarget(in.ToggleGear), t.Gear.Rate)
	}
	s.Ramp = Approach(s.Ramp, toggleTarget(in.ToggleRamp), t.Ramp.Rate)
}

func toggleTarget(on bool) float64 {
	if on {
		return 1
	}
	return 0
}

// ApplyFold writes blade sweep, wing and nacelle fold, gear extension and
// ramp angle.
func ApplyFold(f *Frame) {
	s, t := f.State, f.Tuning
	sp := bladeSpacing(t.Engine.BladeCount)
	for _, rotor := range []string{PartBladesLeft, PartBladesRight} {
		for i := 0; i < t.Engine.BladeCount; i++ {
			setRotY(f.part(BladePart(rotor, i)), sp*float64(i)*(1-s.Fold.Blade))
		}
	}

	setRotX(f.part(PartWingLeft), s.Fold.Wing*t.Fold.WingAngle)
	setRotX(f.part(PartWingRight), -s.Fold.Wing*t.Fold.WingAngle)
	setRotX(f.part(PartEngineLeft), s.Fold.Engine*t.Fold.NacelleAngle)
	setRotX(f.part(PartEngineRight), -s.Fold.Engine*t.Fold.NacelleAngle)

	if g := f.part(PartGear); g != nil {
		p := g.Position()
		p.Y = -t.Gear.Travel * s.Gear
		g.SetPosition(p)
		g.SetVisible(s.Gear > 0)
	}
	setRotZ(f.part(PartRamp), s.Ramp*t.Ramp.Travel)
}

func FoldStage() Stage {
	return Stage{
		Name:   "fold",
		Reads:  []string{KeyIntent, KeyEngine, KeyFold, KeyGear, KeyRamp, KeyGround},
		Writes: []string{KeyFold, KeyGear, KeyRamp, KeyEngine, KeyRotors, KeyPose},
		Lagged: []string{KeyGround},
		Run: func(f *Frame) {
			before := *f.State
			StepFold(f.State, f.Intent, f.Tuning)
			StepActuators(f.State, f.Intent, f.Tuning)
			ApplyFold(f)
			logFoldTransitions(f, before)
		},
	}
}

func logFoldTransitions(f *Frame, before VehicleState) {
	s := f.State
	if before.Fold.Engine < 1 && s.Fold.Engine == 1 {
		f.Log.Info().Msg("stowage complete")
		f.emit(EventFolded, Vec3{})
	}
	if before.Fold.Blade > 0 && s.Fold.Blade == 0 {
		f.Log.Info().Msg("rotors deployed")
		f.emit(EventUnfolded, Vec3{})
	}
	if before.Gear < 1 && s.Gear == 1 {
		f.Log.Debug().Msg("gear down")
	} else if before.Gear > 0 && s.Gear == 0 {
		f.Log.Debug().Msg("gear up")
	}
	if before.Ramp < 1 && s.Ramp == 1 {
		f.Log.Debug().Msg("ramp open")
	} else if before.Ramp > 0 && s.Ramp == 0 {
		f.Log.Debug().Msg("ramp closed")
	}
}
