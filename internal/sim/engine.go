package sim

import "math"

// engineAllowed reports whether the rotors may spin up. Folded (or folding)
// blades keep the engines down.
func engineAllowed(f FoldState) bool { return f.Blade == 0 }

func spinUp(p, rate float64) float64 { return p + (1-p)*rate }

func spinDown(p, rate, floor float64) float64 {
	return math.Max(p-(p*rate+floor), 0)
}

// Regime classifies a side's power into a rotor representation.
func Regime(power float64, t EngineTuning) BladeRegime {
	switch {
	case power >= t.PoweredThreshold:
		return RegimePowered
	case power >= t.BlurThreshold:
		return RegimeBlur
	}
	return RegimeSlow
}

// StepEngine advances both sides. The right side only spins up once the
// left has passed the start gate; both must exceed the powered threshold
// for the vehicle to accept flight controls.
func StepEngine(s *VehicleState, in Intent, t EngineTuning) {
	e := &s.Engine
	on := in.ToggleEngine && engineAllowed(s.Fold)

	if on {
		e.Left = spinUp(e.Left, t.SpinUpRate)
	} else {
		e.Left = spinDown(e.Left, t.SpinDownRate, t.SpinDownFloor)
	}
	if on && e.Left > t.RightStartGate {
		e.Right = spinUp(e.Right, t.SpinUpRate)
	} else {
		e.Right = spinDown(e.Right, t.SpinDownRate, t.SpinDownFloor)
	}

	e.Powered = e.Left > t.PoweredThreshold && e.Right > t.PoweredThreshold
	e.RegimeLeft = Regime(e.Left, t)
	e.RegimeRight = Regime(e.Right, t)
	e.BladeAngleLeft = WrapAngle(e.BladeAngleLeft + e.Left*t.MaxBladeSpin)
	e.BladeAngleRight = WrapAngle(e.BladeAngleRight + e.Right*t.MaxBladeSpin)
}

// ApplyRotors spins the rotor groups and picks blade mesh or blur disc.
func ApplyRotors(f *Frame) {
	e := f.State.Engine
	applyRotor(f.part(PartBladesLeft), f.part(PartDiscLeft), e.BladeAngleLeft, e.RegimeLeft)
	applyRotor(f.part(PartBladesRight), f.part(PartDiscRight), e.BladeAngleRight, e.RegimeRight)
}

func applyRotor(blades, disc Node, angle float64, r BladeRegime) {
	setRotY(blades, angle)
	setRotY(disc, angle)
	setVisible(blades, r == RegimeSlow)
	setVisible(disc, r != RegimeSlow)
}

func EngineStage() Stage {
	return Stage{
		Name:   "engine",
		Reads:  []string{KeyIntent, KeyFold, KeyEngine},
		Writes: []string{KeyEngine, KeyRotors},
		Lagged: []string{KeyFold},
		Run: func(f *Frame) {
			was := f.State.Engine.Powered
			StepEngine(f.State, f.Intent, f.Tuning.Engine)
			ApplyRotors(f)
			switch now := f.State.Engine.Powered; {
			case now && !was:
				f.Log.Info().Uint64("tick", f.State.Tick).Msg("engines powered")
				f.emit(EventEnginePowered, Vec3{})
			case was && !now:
				f.Log.Info().Uint64("tick", f.State.Tick).Msg("engines below flight power")
				f.emit(EventEngineUnpowered, Vec3{})
			}
		},
	}
}
