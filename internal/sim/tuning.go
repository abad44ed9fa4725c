package sim

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidTuning is wrapped by every error returned from Tuning.Validate.
var ErrInvalidTuning = errors.New("invalid tuning")

// AxisTuning shapes one kinematic axis. Rates are added to the accumulated
// acceleration per tick; DecelRate is negative. PassiveDecay scales the drag
// bleed applied to the accumulator when no input is held.
type AxisTuning struct {
	AccelRate    float64 `mapstructure:"accelRate"`
	DecelRate    float64 `mapstructure:"decelRate"`
	MaxAccel     float64 `mapstructure:"maxAccel"`
	MinAccel     float64 `mapstructure:"minAccel"`
	PassiveDecay float64 `mapstructure:"passiveDecay"`
}

// IndicatorTuning: Step is the base per-tick ramp; the *Ramp and *Decay
// fields are multipliers of Step.
type IndicatorTuning struct {
	Step            float64 `mapstructure:"step"`
	ForwardRamp     float64 `mapstructure:"forwardRamp"`
	ForwardDecay    float64 `mapstructure:"forwardDecay"`
	HorizontalRamp  float64 `mapstructure:"horizontalRamp"`
	HorizontalDecay float64 `mapstructure:"horizontalDecay"`
	TurningRamp     float64 `mapstructure:"turningRamp"`
	TurningDecay    float64 `mapstructure:"turningDecay"`
	VerticalRamp    float64 `mapstructure:"verticalRamp"`
	VerticalDecay   float64 `mapstructure:"verticalDecay"`
}

// PoseTuning holds maximum cosmetic angles in radians.
type PoseTuning struct {
	AirframePitchDown   float64 `mapstructure:"airframePitchDown"`
	AirframePitchUp     float64 `mapstructure:"airframePitchUp"`
	NacellePitchDown    float64 `mapstructure:"nacellePitchDown"`
	NacellePitchUp      float64 `mapstructure:"nacellePitchUp"`
	NacelleTiltForward  float64 `mapstructure:"nacelleTiltForward"`
	NacelleTiltBackward float64 `mapstructure:"nacelleTiltBackward"`
	AirframeTilt        float64 `mapstructure:"airframeTilt"`
	BladeCollective     float64 `mapstructure:"bladeCollective"`
}

type EngineTuning struct {
	SpinUpRate        float64 `mapstructure:"spinUpRate"`
	SpinDownRate      float64 `mapstructure:"spinDownRate"`
	SpinDownFloor     float64 `mapstructure:"spinDownFloor"`
	RightStartGate    float64 `mapstructure:"rightStartGate"`
	BlurThreshold     float64 `mapstructure:"blurThreshold"`
	PoweredThreshold  float64 `mapstructure:"poweredThreshold"`
	MaxBladeSpin      float64 `mapstructure:"maxBladeSpin"`
	RegistrationSpeed float64 `mapstructure:"registrationSpeed"`
	RegistrationEps   float64 `mapstructure:"registrationEps"`
	BladeCount        int     `mapstructure:"bladeCount"`
}

type FoldTuning struct {
	FoldRate     float64 `mapstructure:"foldRate"`
	UnfoldRate   float64 `mapstructure:"unfoldRate"`
	WingAngle    float64 `mapstructure:"wingAngle"`
	NacelleAngle float64 `mapstructure:"nacelleAngle"`
}

// ActuatorTuning drives the gear and ramp scalars.
type ActuatorTuning struct {
	Rate   float64 `mapstructure:"rate"`
	Travel float64 `mapstructure:"travel"`
}

type GroundTuning struct {
	RetractedClearance float64 `mapstructure:"retractedClearance"`
	DeployedClearance  float64 `mapstructure:"deployedClearance"`
	ContactHeight      float64 `mapstructure:"contactHeight"`
	CornerOffset       float64 `mapstructure:"cornerOffset"`
}

type WeaponTuning struct {
	Ammo          int           `mapstructure:"ammo"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
	Strength      float64       `mapstructure:"strength"`
	GravityStep   float64       `mapstructure:"gravityStep"`
	TTL           int           `mapstructure:"ttl"`
	Fuel          int           `mapstructure:"fuel"`
	SmokeSegments int           `mapstructure:"smokeSegments"`
	LaunchForward float64       `mapstructure:"launchForward"`
	LaunchSide    float64       `mapstructure:"launchSide"`
	LaunchDown    float64       `mapstructure:"launchDown"`
	HitRadius     float64       `mapstructure:"hitRadius"`
}

type ParticleTuning struct {
	SmokeTTL         int     `mapstructure:"smokeTTL"`
	RecycledSmokeTTL int     `mapstructure:"recycledSmokeTTL"`
	PoolCeiling      int     `mapstructure:"poolCeiling"`
	MaxActiveSmoke   int     `mapstructure:"maxActiveSmoke"`
	ExplosionTTL     int     `mapstructure:"explosionTTL"`
	SmokeDrift       Vec3    `mapstructure:"smokeDrift"`
	SmokeGrowth      float64 `mapstructure:"smokeGrowth"`
	ExplosionDrift   Vec3    `mapstructure:"explosionDrift"`
}

// Tuning collects every hand-tuned constant of the flight model. All
// rates are per tick unless the field says otherwise.
type Tuning struct {
	// Drag is the air drag coefficient applied to every axis velocity.
	Drag float64 `mapstructure:"drag"`
	// DisplacementScale converts velocity units into world units per tick.
	DisplacementScale float64 `mapstructure:"displacementScale"`

	Surge AxisTuning `mapstructure:"surge"`
	Sway  AxisTuning `mapstructure:"sway"`
	Yaw   AxisTuning `mapstructure:"yaw"`
	Heave AxisTuning `mapstructure:"heave"`

	Indicators IndicatorTuning `mapstructure:"indicators"`
	Pose       PoseTuning      `mapstructure:"pose"`
	Engine     EngineTuning    `mapstructure:"engine"`
	Fold       FoldTuning      `mapstructure:"fold"`
	Gear       ActuatorTuning  `mapstructure:"gear"`
	Ramp       ActuatorTuning  `mapstructure:"ramp"`
	Ground     GroundTuning    `mapstructure:"ground"`
	Weapon     WeaponTuning    `mapstructure:"weapon"`
	Particles  ParticleTuning  `mapstructure:"particles"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Drag:              0.03,
		DisplacementScale: 1000,

		Surge: AxisTuning{AccelRate: 1.5, DecelRate: -1.3, MaxAccel: 400, MinAccel: -300, PassiveDecay: 1},
		Sway:  AxisTuning{AccelRate: 0.2, DecelRate: -0.2, MaxAccel: 60, MinAccel: -60, PassiveDecay: 0.4},
		Yaw:   AxisTuning{AccelRate: 1, DecelRate: -1, MaxAccel: 20, MinAccel: -20, PassiveDecay: 2},
		Heave: AxisTuning{AccelRate: 0.8, DecelRate: -0.6, MaxAccel: 50, MinAccel: -50, PassiveDecay: 1},

		Indicators: IndicatorTuning{
			Step:            0.02,
			ForwardRamp:     1,
			ForwardDecay:    1.2,
			HorizontalRamp:  1.5,
			HorizontalDecay: 1.3,
			TurningRamp:     1,
			TurningDecay:    2,
			VerticalRamp:    1,
			VerticalDecay:   1.2,
		},
		Pose: PoseTuning{
			AirframePitchDown:   math.Pi / 10,
			AirframePitchUp:     math.Pi / 12,
			NacellePitchDown:    math.Pi / 8,
			NacellePitchUp:      math.Pi / 10,
			NacelleTiltForward:  math.Pi / 10,
			NacelleTiltBackward: math.Pi / 24,
			AirframeTilt:        math.Pi / 20,
			BladeCollective:     math.Pi / 18,
		},
		Engine: EngineTuning{
			SpinUpRate:        0.01,
			SpinDownRate:      0.01,
			SpinDownFloor:     0.0005,
			RightStartGate:    0.2,
			BlurThreshold:     0.4,
			PoweredThreshold:  0.9,
			MaxBladeSpin:      0.6,
			RegistrationSpeed: 0.02,
			RegistrationEps:   0.005,
			BladeCount:        3,
		},
		Fold: FoldTuning{
			FoldRate:     0.005,
			UnfoldRate:   0.01,
			WingAngle:    math.Pi / 2,
			NacelleAngle: math.Pi / 2,
		},
		Gear: ActuatorTuning{Rate: 0.01, Travel: 1.2},
		Ramp: ActuatorTuning{Rate: 0.01, Travel: math.Pi / 5},
		Ground: GroundTuning{
			RetractedClearance: 4,
			DeployedClearance:  1.8,
			ContactHeight:      3,
			CornerOffset:       3,
		},
		Weapon: WeaponTuning{
			Ammo:          16,
			Cooldown:      300 * time.Millisecond,
			Strength:      2,
			GravityStep:   0.02,
			TTL:           80,
			Fuel:          10,
			SmokeSegments: 10,
			LaunchForward: 1.5,
			LaunchSide:    2.5,
			LaunchDown:    0.8,
			HitRadius:     0.7,
		},
		Particles: ParticleTuning{
			SmokeTTL:         10,
			RecycledSmokeTTL: 5,
			PoolCeiling:      1000,
			MaxActiveSmoke:   4000,
			ExplosionTTL:     100,
			SmokeDrift:       Vec3{0, 0.04, 0.04},
			SmokeGrowth:      1.04,
			ExplosionDrift:   Vec3{0, 0.01, 0.01},
		},
	}
}

// Validate reports the first inconsistent value.
func (t Tuning) Validate() error {
	if t.Drag < 0 || t.Drag >= 1 {
		return fmt.Errorf("%w: drag %.3f outside [0,1)", ErrInvalidTuning, t.Drag)
	}
	if t.DisplacementScale <= 0 {
		return fmt.Errorf("%w: displacement scale must be > 0", ErrInvalidTuning)
	}
	axes := []struct {
		name string
		a    AxisTuning
	}{{"surge", t.Surge}, {"sway", t.Sway}, {"yaw", t.Yaw}, {"heave", t.Heave}}
	for _, ax := range axes {
		name, a := ax.name, ax.a
		if a.MinAccel > 0 || a.MaxAccel < 0 {
			return fmt.Errorf("%w: %s envelope [%.2f, %.2f] must contain 0", ErrInvalidTuning, name, a.MinAccel, a.MaxAccel)
		}
		if a.AccelRate < 0 || a.DecelRate > 0 {
			return fmt.Errorf("%w: %s rates must be +accel / -decel", ErrInvalidTuning, name)
		}
		if a.PassiveDecay < 0 {
			return fmt.Errorf("%w: %s passive decay must be >= 0", ErrInvalidTuning, name)
		}
	}
	fractions := []struct {
		name string
		v    float64
	}{
		{"engine.rightStartGate", t.Engine.RightStartGate},
		{"engine.blurThreshold", t.Engine.BlurThreshold},
		{"engine.poweredThreshold", t.Engine.PoweredThreshold},
		{"engine.spinUpRate", t.Engine.SpinUpRate},
		{"fold.foldRate", t.Fold.FoldRate},
		{"fold.unfoldRate", t.Fold.UnfoldRate},
		{"gear.rate", t.Gear.Rate},
		{"ramp.rate", t.Ramp.Rate},
	}
	for _, fr := range fractions {
		name, v := fr.name, fr.v
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s %.3f outside [0,1]", ErrInvalidTuning, name, v)
		}
	}
	if t.Engine.BlurThreshold > t.Engine.PoweredThreshold {
		return fmt.Errorf("%w: blur threshold above powered threshold", ErrInvalidTuning)
	}
	if t.Engine.BladeCount <= 0 {
		return fmt.Errorf("%w: blade count must be > 0", ErrInvalidTuning)
	}
	if t.Ground.DeployedClearance > t.Ground.RetractedClearance {
		return fmt.Errorf("%w: deployed clearance %.2f above retracted %.2f", ErrInvalidTuning, t.Ground.DeployedClearance, t.Ground.RetractedClearance)
	}
	if t.Ground.ContactHeight <= t.Ground.DeployedClearance {
		return fmt.Errorf("%w: contact height must exceed deployed clearance", ErrInvalidTuning)
	}
	if t.Weapon.Cooldown <= 0 {
		return fmt.Errorf("%w: weapon cooldown must be > 0", ErrInvalidTuning)
	}
	if t.Weapon.Ammo < 0 || t.Weapon.TTL <= 0 {
		return fmt.Errorf("%w: weapon ammo/ttl out of range", ErrInvalidTuning)
	}
	if t.Particles.PoolCeiling < 0 || t.Particles.SmokeTTL <= 0 || t.Particles.ExplosionTTL <= 0 {
		return fmt.Errorf("%w: particle limits out of range", ErrInvalidTuning)
	}
	return nil
}
