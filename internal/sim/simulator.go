package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultMaxPendingEvents bounds the event backlog kept for DrainEvents.
const DefaultMaxPendingEvents = 1024

type Options struct {
	Tuning  Tuning
	Surface Surface // nil selects DefaultTerrain
	Clock   Clock   // nil selects SystemClock
	Keymap  Keymap  // nil selects DefaultKeymap
	Logger  zerolog.Logger

	// Start overrides the spawn point, otherwise 10 units above the surface
	// at the origin.
	Start *Vec3

	MaxPendingEvents int
}

// Simulator owns one dropship and advances it a tick at a time. All methods
// are safe for concurrent use.
type Simulator struct {
	mu sync.Mutex

	tuning    Tuning
	state     *VehicleState
	root      *Group
	rig       *GroupRig
	surface   Surface
	clock     Clock
	mapper    *Mapper
	pipeline  *Pipeline
	rockets   *RocketSet
	particles *ParticleSystem
	events    Events
	pending   []Event
	maxEvents int
	dropped   int
	camera    *Camera
	hud       bool
	log       zerolog.Logger
	metrics   *metrics
}

func NewSimulator(opts Options) (*Simulator, error) {
	if err := opts.Tuning.Validate(); err != nil {
		return nil, err
	}
	m, err := newMetrics()
	if err != nil {
		return nil, fmt.Errorf("sim metrics: %w", err)
	}

	surface := opts.Surface
	if surface == nil {
		surface = DefaultTerrain()
	}
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	maxEvents := opts.MaxPendingEvents
	if maxEvents <= 0 {
		maxEvents = DefaultMaxPendingEvents
	}

	root := NewDropshipRig(opts.Tuning.Engine.BladeCount)
	start := spawnPoint(surface)
	if opts.Start != nil {
		start = *opts.Start
	}
	root.SetPosition(start)

	s := &Simulator{
		tuning:    opts.Tuning,
		state:     NewVehicleState(opts.Tuning),
		root:      root,
		rig:       NewGroupRig(root),
		surface:   surface,
		clock:     clock,
		mapper:    NewMapper(opts.Keymap),
		pipeline:  DefaultPipeline(),
		rockets:   &RocketSet{},
		particles: NewParticleSystem(opts.Tuning.Particles),
		maxEvents: maxEvents,
		camera:    NewCamera(),
		hud:       true,
		log:       opts.Logger.With().Str("component", "sim").Logger(),
		metrics:   m,
	}
	s.camera.Update(root, s.pitchGroup())
	s.log.Debug().
		Float64("x", start.X).Float64("y", start.Y).Float64("z", start.Z).
		Strs("stages", s.pipeline.Names()).
		Msg("simulator ready")
	return s, nil
}

// spawnPoint is 10 units above the surface at the origin, or (0, 30, 0)
// when the surface does not cover it.
func spawnPoint(surface Surface) Vec3 {
	const probe = 1e4
	if d, ok := surface.Raycast(Vec3{0, probe, 0}, down); ok {
		return Vec3{0, probe - d + 10, 0}
	}
	return Vec3{0, 30, 0}
}

func (s *Simulator) pitchGroup() *Group { return s.root.Find(PartPitch) }

// KeyDown feeds a key press to the mapper. Camera and HUD commands are
// applied here and also returned to the caller.
func (s *Simulator) KeyDown(code KeyCode) Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mapper.Bound(code) {
		s.log.Debug().Str("key", string(code)).Msg("unmapped key")
		return CommandNone
	}
	cmd := s.mapper.KeyDown(code)
	switch {
	case s.camera.Apply(cmd):
		s.camera.Update(s.root, s.pitchGroup())
		s.log.Debug().Stringer("camera", s.camera.Mode).Msg("camera switched")
	case cmd == CommandToggleHUD:
		s.hud = !s.hud
	}
	return cmd
}

func (s *Simulator) KeyUp(code KeyCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapper.KeyUp(code)
}

// ReleaseAll drops every held key, e.g. when the window loses focus.
// Toggles keep their state.
func (s *Simulator) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mapper.Reset()
}

func (s *Simulator) Intent() Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mapper.Intent()
}

// Update runs one tick of the pipeline.
func (s *Simulator) Update(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()

	f := &Frame{
		State:     s.state,
		Intent:    s.mapper.Intent(),
		Rig:       s.rig,
		Surface:   s.surface,
		Now:       s.clock.Now(),
		Tuning:    &s.tuning,
		Rockets:   s.rockets,
		Particles: s.particles,
		Events:    &s.events,
		Log:       s.log,
	}
	s.pipeline.Run(f)
	s.state.Tick++

	if a, ok := s.clock.(interface{ Advance() }); ok {
		a.Advance()
	}
	s.camera.Update(s.root, s.pitchGroup())

	for _, ev := range s.events.Drain() {
		s.metrics.recordEvent(ctx, ev)
		s.queue(ev)
	}
	s.metrics.activeParticles.Store(int64(s.particles.Active()))
	s.metrics.activeRockets.Store(int64(s.rockets.Len()))
	s.metrics.tickTime.Record(ctx, time.Since(start).Seconds())
}

func (s *Simulator) queue(ev Event) {
	if len(s.pending) >= s.maxEvents {
		n := copy(s.pending, s.pending[1:])
		s.pending = s.pending[:n]
		s.dropped++
		if s.dropped == 1 || s.dropped%100 == 0 {
			s.log.Warn().Int("dropped", s.dropped).Msg("event backlog full, dropping oldest")
		}
	}
	s.pending = append(s.pending, ev)
}

// DrainEvents returns events recorded since the last call.
func (s *Simulator) DrainEvents() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// HeadlessHooks are optional callbacks around each headless tick.
type HeadlessHooks struct {
	// Before runs ahead of Update with the tick about to run, e.g. to feed
	// scripted keys.
	Before func(tick uint64)
	// After receives the events drained after Update. When nil, events stay
	// queued for DrainEvents.
	After func(events []Event)
}

// RunHeadless performs fixed ticks without a window and returns how many
// ran. It stops early when ctx is cancelled.
func (s *Simulator) RunHeadless(ctx context.Context, steps int, hooks HeadlessHooks) int {
	performed := 0
	for performed < steps {
		if ctx.Err() != nil {
			break
		}
		if hooks.Before != nil {
			hooks.Before(s.Snapshot().Tick)
		}
		s.Update(ctx)
		if hooks.After != nil {
			hooks.After(s.DrainEvents())
		}
		performed++
	}
	return performed
}

// Snapshot is the JSON view of the vehicle published over telemetry.
type Snapshot struct {
	Tick      uint64       `json:"tick"`
	Time      time.Time    `json:"time"`
	Position  Vec3         `json:"position"`
	Yaw       float64      `json:"yaw"`
	Pitch     float64      `json:"pitch"`
	Roll      float64      `json:"roll"`
	State     VehicleState `json:"state"`
	Intent    Intent       `json:"intent"`
	Rockets   int          `json:"rockets"`
	Particles int          `json:"particles"`
	Camera    string       `json:"camera"`
}

func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Tick:      s.state.Tick,
		Time:      s.clock.Now(),
		Position:  s.root.Position(),
		Yaw:       s.root.Rotation().Y,
		State:     *s.state,
		Intent:    s.mapper.Intent(),
		Rockets:   s.rockets.Len(),
		Particles: s.particles.Active(),
		Camera:    s.camera.Mode.String(),
	}
	if p := s.pitchGroup(); p != nil {
		snap.Pitch = p.Rotation().Z
	}
	if a := s.root.Find(PartAirframe); a != nil {
		snap.Roll = a.Rotation().X
	}
	return snap
}

// Scene is what a renderer needs for one frame. Slices and nodes are only
// valid inside the View callback.
type Scene struct {
	Root       *Group
	Camera     Camera
	State      VehicleState
	Rockets    []*Rocket
	Smoke      []*Particle
	Explosions []*Particle
	HUD        bool
}

// View calls fn with the current scene while holding the simulator lock.
func (s *Simulator) View(fn func(Scene)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(Scene{
		Root:       s.root,
		Camera:     *s.camera,
		State:      *s.state,
		Rockets:    s.rockets.Active(),
		Smoke:      s.particles.Smoke(),
		Explosions: s.particles.Explosions(),
		HUD:        s.hud,
	})
}

// OrbitCamera adjusts the debug camera.
func (s *Simulator) OrbitCamera(dYaw, dPitch, dDist float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera.Orbit(dYaw, dPitch, dDist)
}

// Close releases the metric callbacks. The simulator must not be updated
// afterwards.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.close()
}

func (s *Simulator) Surface() Surface { return s.surface }
func (s *Simulator) Tuning() Tuning   { return s.tuning }
