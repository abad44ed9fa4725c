package sim

import "time"

// Axis is one kinematic degree of freedom. Accel is the accumulated
// acceleration; Velocity is derived from it each tick.
type Axis struct {
	Accel    float64 `json:"accel"`
	Velocity float64 `json:"velocity"`
}

// Indicators are smoothed [-1,1] proxies of control deflection used only for
// cosmetic animation.
type Indicators struct {
	Forward    float64 `json:"forward"`
	Horizontal float64 `json:"horizontal"`
	Turning    float64 `json:"turning"`
	Vertical   float64 `json:"vertical"`
}

// BladeRegime selects the rotor representation.
type BladeRegime int

const (
	RegimeSlow BladeRegime = iota
	RegimeBlur
	RegimePowered
)

func (r BladeRegime) String() string {
	switch r {
	case RegimeBlur:
		return "blur"
	case RegimePowered:
		return "powered"
	default:
		return "slow"
	}
}

type EngineState struct {
	Left            float64     `json:"left"`
	Right           float64     `json:"right"`
	BladeAngleLeft  float64     `json:"bladeAngleLeft"`
	BladeAngleRight float64     `json:"bladeAngleRight"`
	Powered         bool        `json:"powered"`
	RegimeLeft      BladeRegime `json:"regimeLeft"`
	RegimeRight     BladeRegime `json:"regimeRight"`
}

// FoldState holds the sequential stowage scalars, each in [0,1].
type FoldState struct {
	Blade  float64 `json:"blade"`
	Wing   float64 `json:"wing"`
	Engine float64 `json:"engine"`
}

// GroundState is the last contact query. Corners is indexed by CornerFore,
// CornerBack, CornerLeft and CornerRight.
type GroundState struct {
	InGround  bool       `json:"inGround"`
	Hit       bool       `json:"hit"`
	Clearance float64    `json:"clearance"`
	Corners   [4]float64 `json:"corners"`
	Pitch     float64    `json:"pitch"`
	Roll      float64    `json:"roll"`
}

const (
	CornerFore = iota
	CornerBack
	CornerLeft
	CornerRight
)

type WeaponState struct {
	Ammo     int       `json:"ammo"`
	LastFire time.Time `json:"-"`
	// NextRight is false while the next rocket leaves the left pod.
	NextRight bool `json:"nextRight"`
}

// VehicleState is every scalar the per-tick stages read and write. It is
// owned by one Simulator and passed by pointer into each stage.
type VehicleState struct {
	Tick uint64 `json:"tick"`

	Surge Axis `json:"surge"`
	Sway  Axis `json:"sway"`
	Yaw   Axis `json:"yaw"`
	Heave Axis `json:"heave"`

	Indicators Indicators  `json:"indicators"`
	Engine     EngineState `json:"engine"`
	Fold       FoldState   `json:"fold"`
	Gear       float64     `json:"gear"`
	Ramp       float64     `json:"ramp"`
	Ground     GroundState `json:"ground"`
	Weapon     WeaponState `json:"weapon"`
}

func NewVehicleState(t Tuning) *VehicleState {
	return &VehicleState{Weapon: WeaponState{Ammo: t.Weapon.Ammo}}
}
