package sim

import "math"

type ParticleKind int

const (
	ParticleSmoke ParticleKind = iota
	ParticleExplosion
)

type Particle struct {
	Kind     ParticleKind
	Position Vec3
	TTL      int
	Total    int
	Opacity  float64
	Scale    float64
}

func (p *Particle) reset(at Vec3, ttl, total int) {
	p.Position = at
	p.TTL = ttl
	p.Total = total
	p.Opacity = 0.5
	p.Scale = 1
}

// ParticleSystem owns live smoke and explosion effects. Dead smoke goes to
// a free list, capped at the pool ceiling, and is reused before anything
// new is allocated.
type ParticleSystem struct {
	cfg        ParticleTuning
	smoke      []*Particle
	explosions []*Particle
	free       []*Particle
	allocated  int
}

func NewParticleSystem(cfg ParticleTuning) *ParticleSystem {
	return &ParticleSystem{cfg: cfg}
}

// SpawnSmoke places one smoke puff. It returns false when the active cap is
// reached.
func (ps *ParticleSystem) SpawnSmoke(at Vec3) bool {
	if ps.cfg.MaxActiveSmoke > 0 && len(ps.smoke) >= ps.cfg.MaxActiveSmoke {
		return false
	}
	var p *Particle
	if n := len(ps.free); n > 0 {
		p = ps.free[n-1]
		ps.free = ps.free[:n-1]
		p.reset(at, ps.cfg.RecycledSmokeTTL, ps.cfg.SmokeTTL)
	} else {
		p = &Particle{Kind: ParticleSmoke}
		p.reset(at, ps.cfg.SmokeTTL, ps.cfg.SmokeTTL)
		ps.allocated++
	}
	ps.smoke = append(ps.smoke, p)
	return true
}

func (ps *ParticleSystem) SpawnExplosion(at Vec3) {
	p := &Particle{Kind: ParticleExplosion}
	p.reset(at, ps.cfg.ExplosionTTL, ps.cfg.ExplosionTTL)
	p.Opacity = 1
	ps.explosions = append(ps.explosions, p)
}

// Step ages every particle by one tick.
func (ps *ParticleSystem) Step() {
	live := ps.smoke[:0]
	for _, p := range ps.smoke {
		p.TTL--
		if p.TTL <= 0 {
			if len(ps.free) < ps.cfg.PoolCeiling {
				ps.free = append(ps.free, p)
			}
			continue
		}
		ratio := float64(p.TTL) / float64(p.Total)
		p.Opacity = ratio / 2
		p.Scale *= ps.cfg.SmokeGrowth
		p.Position = p.Position.Add(ps.cfg.SmokeDrift)
		live = append(live, p)
	}
	clear(ps.smoke[len(live):])
	ps.smoke = live

	alive := ps.explosions[:0]
	for _, p := range ps.explosions {
		p.TTL--
		if p.TTL <= 0 {
			continue
		}
		ratio := float64(p.TTL) / float64(p.Total)
		p.Opacity = ratio
		p.Scale *= math.Log(ratio+1)*0.03 + 1
		p.Position = p.Position.Add(ps.cfg.ExplosionDrift)
		alive = append(alive, p)
	}
	clear(ps.explosions[len(alive):])
	ps.explosions = alive
}

func (ps *ParticleSystem) Smoke() []*Particle      { return ps.smoke }
func (ps *ParticleSystem) Explosions() []*Particle { return ps.explosions }
func (ps *ParticleSystem) Pooled() int             { return len(ps.free) }
func (ps *ParticleSystem) Allocated() int          { return ps.allocated }
func (ps *ParticleSystem) Active() int             { return len(ps.smoke) + len(ps.explosions) }

func ParticlesStage() Stage {
	return Stage{
		Name:   "particles",
		Reads:  []string{KeyParticles},
		Writes: []string{KeyParticles},
		Run: func(f *Frame) {
			if f.Particles != nil {
				f.Particles.Step()
			}
		},
	}
}
