package sim

import (
	"math"
	"time"
)

// Clock supplies wall-clock time to the weapon cooldown.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// StepClock advances by a fixed step per Advance call. The headless runner
// uses it so cooldowns track simulated rather than host time.
type StepClock struct {
	now  time.Time
	Step time.Duration
}

func NewStepClock(start time.Time, step time.Duration) *StepClock {
	return &StepClock{now: start, Step: step}
}

func (c *StepClock) Now() time.Time { return c.now }
func (c *StepClock) Advance()       { c.now = c.now.Add(c.Step) }

// Rocket is one projectile in flight.
type Rocket struct {
	Position  Vec3    `json:"position"`
	Direction Vec3    `json:"direction"`
	Strength  float64 `json:"strength"`
	DeathTick int     `json:"deathTick"`
	Fuel      int     `json:"fuel"`
	Gravity   float64 `json:"gravity"`
	Hit       bool    `json:"hit"`
	Expired   bool    `json:"expired"`
}

func NewRocket(at, dir Vec3, t WeaponTuning) *Rocket {
	return &Rocket{
		Position:  at,
		Direction: dir.Normalize(),
		Strength:  t.Strength,
		DeathTick: t.TTL,
		Fuel:      t.Fuel,
	}
}

// Done reports whether the rocket should leave the active set.
func (r *Rocket) Done() bool { return r.Hit || r.Expired }

// Step moves the rocket one tick, trailing smoke while fuel lasts. It
// returns true and the impact point when the rocket meets the surface.
func (r *Rocket) Step(surface Surface, ps *ParticleSystem, t WeaponTuning) (bool, Vec3) {
	if r.Done() {
		return false, Vec3{}
	}
	r.DeathTick--
	if r.DeathTick <= 0 {
		r.Expired = true
		return false, Vec3{}
	}

	move := r.Direction.Mul(r.Strength)
	r.Gravity += t.GravityStep
	move.Y -= r.Gravity

	if r.Fuel > 0 {
		if ps != nil {
			n := max(t.SmokeSegments, 1)
			for i := 1; i <= n; i++ {
				ps.SpawnSmoke(r.Position.Add(move.Mul(float64(i) / float64(n))))
			}
		}
		r.Fuel--
	}

	r.Position = r.Position.Add(move)
	if hit, at := sphereHitsSurface(surface, r.Position, t.HitRadius); hit {
		r.Hit = true
		return true, at
	}
	return false, Vec3{}
}

// sphereHitsSurface reports contact when the surface lies within radius
// below the center, or above it (the step tunneled through).
func sphereHitsSurface(surface Surface, c Vec3, radius float64) (bool, Vec3) {
	if surface == nil {
		return false, Vec3{}
	}
	if d, ok := surface.Raycast(c, down); ok && d <= radius {
		return true, Vec3{c.X, c.Y - d, c.Z}
	}
	if d, ok := surface.Raycast(c, Vec3{0, 1, 0}); ok {
		return true, Vec3{c.X, c.Y + d, c.Z}
	}
	return false, Vec3{}
}

// RocketSet is the active projectile list.
type RocketSet struct {
	active []*Rocket
}

func (rs *RocketSet) Add(r *Rocket)     { rs.active = append(rs.active, r) }
func (rs *RocketSet) Active() []*Rocket { return rs.active }
func (rs *RocketSet) Len() int          { return len(rs.active) }

// Step advances every rocket, spawning explosions on impact. Finished
// rockets are removed; expiry is silent.
func (rs *RocketSet) Step(surface Surface, ps *ParticleSystem, t WeaponTuning) (impacts []Vec3, expired int) {
	live := rs.active[:0]
	for _, r := range rs.active {
		if hit, at := r.Step(surface, ps, t); hit {
			impacts = append(impacts, at)
			if ps != nil {
				ps.SpawnExplosion(at)
			}
		}
		if r.Expired {
			expired++
		}
		if !r.Done() {
			live = append(live, r)
		}
	}
	clear(rs.active[len(live):])
	rs.active = live
	return impacts, expired
}

// TryFire consumes one round if the cooldown has elapsed and ammunition
// remains. side is -1 for the left pod and +1 for the right; pods alternate
// starting left.
func TryFire(w *WeaponState, now time.Time, t WeaponTuning) (side float64, ok bool) {
	if w.Ammo <= 0 {
		return 0, false
	}
	if !w.LastFire.IsZero() && now.Sub(w.LastFire) < t.Cooldown {
		return 0, false
	}
	w.LastFire = now
	w.Ammo--
	side = -1
	if w.NextRight {
		side = 1
	}
	w.NextRight = !w.NextRight
	return side, true
}

// LaunchFrame returns the launch point and direction for a pod side. The
// direction follows the root yaw and the pitch node's nose angle.
func LaunchFrame(root, pitch Node, side float64, t WeaponTuning) (Vec3, Vec3) {
	var pos Vec3
	var yaw, nose float64
	if root != nil {
		pos = root.Position()
		yaw = root.Rotation().Y
	}
	if pitch != nil {
		nose = pitch.Rotation().Z
	}
	fwd := YawForward(yaw)
	right := YawRight(yaw)
	dir := fwd.Mul(math.Cos(nose)).Add(Vec3{0, math.Sin(nose), 0})
	at := pos.
		Add(fwd.Mul(t.LaunchForward)).
		Add(right.Mul(side * t.LaunchSide)).
		Add(Vec3{0, -t.LaunchDown, 0})
	return at, dir.Normalize()
}

func WeaponsStage() Stage {
	return Stage{
		Name:   "weapons",
		Reads:  []string{KeyIntent, KeyClock, KeySurface, KeyRoot, KeyPose, KeyWeapon, KeyRockets},
		Writes: []string{KeyWeapon, KeyRockets, KeyParticles},
		Run:    runWeapons,
	}
}

func runWeapons(f *Frame) {
	t := f.Tuning.Weapon
	if f.Rockets == nil {
		return
	}
	impacts, expired := f.Rockets.Step(f.Surface, f.Particles, t)
	for _, at := range impacts {
		f.Log.Debug().Float64("x", at.X).Float64("y", at.Y).Float64("z", at.Z).Msg("rocket impact")
		f.emit(EventRocketImpact, at)
	}
	for i := 0; i < expired; i++ {
		f.emit(EventRocketExpired, Vec3{})
	}

	if !f.Intent.FireRocket {
		return
	}
	side, ok := TryFire(&f.State.Weapon, f.Now, t)
	if !ok {
		return
	}
	at, dir := LaunchFrame(f.part(PartRoot), f.part(PartPitch), side, t)
	f.Rockets.Add(NewRocket(at, dir, t))
	f.Log.Debug().Int("ammo", f.State.Weapon.Ammo).Float64("side", side).Msg("rocket fired")
	f.emit(EventRocketFired, at)
	if f.State.Weapon.Ammo == 0 {
		f.Log.Info().Msg("ammunition exhausted")
		f.emit(EventAmmoEmpty, at)
	}
}
