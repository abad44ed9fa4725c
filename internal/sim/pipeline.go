package sim

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Read/write keys used by the stage declarations.
const (
	KeyIntent     = "intent"
	KeyClock      = "clock"
	KeySurface    = "surface"
	KeyKinematics = "kinematics"
	KeyRoot       = "root"
	KeyIndicators = "indicators"
	KeyPose       = "pose"
	KeyEngine     = "engine"
	KeyRotors     = "rotors"
	KeyFold       = "fold"
	KeyGear       = "gear"
	KeyRamp       = "ramp"
	KeyGround     = "ground"
	KeyWeapon     = "weapon"
	KeyRockets    = "rockets"
	KeyParticles  = "particles"
)

// externalKeys are supplied by the host before the first stage runs.
var externalKeys = map[string]bool{KeyIntent: true, KeyClock: true, KeySurface: true}

// Frame is what a stage sees during one tick.
type Frame struct {
	State     *VehicleState
	Intent    Intent
	Rig       Rig
	Surface   Surface
	Now       time.Time
	Tuning    *Tuning
	Rockets   *RocketSet
	Particles *ParticleSystem
	Events    *Events
	Log       zerolog.Logger
}

func (f *Frame) part(name string) Node {
	if f.Rig == nil {
		return nil
	}
	return f.Rig.Part(name)
}

func (f *Frame) emit(kind EventKind, at Vec3) {
	if f.Events != nil {
		f.Events.add(Event{Kind: kind, Tick: f.State.Tick, Position: at})
	}
}

// Stage is one named step of the tick. Reads and Writes name the state it
// touches; Lagged lists reads that intentionally observe the value written
// by a later stage on the previous tick.
type Stage struct {
	Name   string
	Reads  []string
	Writes []string
	Lagged []string
	Run    func(*Frame)
}

type Pipeline struct {
	stages []Stage
}

// NewPipeline validates the stage order.
func NewPipeline(stages ...Stage) (*Pipeline, error) {
	p := &Pipeline{stages: stages}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// DefaultPipeline is motion, visuals, engine, fold, ground, weapons,
// particles.
func DefaultPipeline() *Pipeline {
	p, err := NewPipeline(
		MotionStage(),
		VisualsStage(),
		EngineStage(),
		FoldStage(),
		GroundStage(),
		WeaponsStage(),
		ParticlesStage(),
	)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

func (p *Pipeline) Stages() []Stage { return p.stages }

// Validate checks that every read has a producer that runs before it, or is
// declared Lagged and produced later, or is an external input.
func (p *Pipeline) Validate() error {
	seen := make(map[string]bool)
	for _, s := range p.stages {
		if s.Name == "" {
			return fmt.Errorf("pipeline: unnamed stage")
		}
		if seen[s.Name] {
			return fmt.Errorf("pipeline: duplicate stage %q", s.Name)
		}
		if s.Run == nil {
			return fmt.Errorf("pipeline: stage %q has no run func", s.Name)
		}
		seen[s.Name] = true
	}

	for i, s := range p.stages {
		lagged := toSet(s.Lagged)
		own := toSet(s.Writes)
		for _, r := range s.Reads {
			if externalKeys[r] {
				continue
			}
			before := p.writtenBy(r, 0, i)
			after := p.writtenBy(r, i+1, len(p.stages))
			switch {
			case lagged[r] && before:
				return fmt.Errorf("pipeline: stage %q expects previous-tick %q but an earlier stage writes it", s.Name, r)
			case lagged[r] && !after:
				return fmt.Errorf("pipeline: stage %q expects previous-tick %q but no later stage writes it", s.Name, r)
			case lagged[r]:
			case before || own[r]:
			default:
				return fmt.Errorf("pipeline: stage %q reads %q before any stage writes it", s.Name, r)
			}
		}
	}
	return nil
}

func (p *Pipeline) writtenBy(key string, from, to int) bool {
	for _, s := range p.stages[from:to] {
		for _, w := range s.Writes {
			if w == key {
				return true
			}
		}
	}
	return false
}

// Run executes every stage in order.
func (p *Pipeline) Run(f *Frame) {
	for _, s := range p.stages {
		s.Run(f)
	}
}

func toSet(keys []string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}

type EventKind int

const (
	EventRocketFired EventKind = iota
	EventRocketImpact
	EventRocketExpired
	EventAmmoEmpty
	EventTouchdown
	EventLiftoff
	EventEnginePowered
	EventEngineUnpowered
	EventFolded
	EventUnfolded
)

func (k EventKind) String() string {
	switch k {
	case EventRocketFired:
		return "rocket_fired"
	case EventRocketImpact:
		return "rocket_impact"
	case EventRocketExpired:
		return "rocket_expired"
	case EventAmmoEmpty:
		return "ammo_empty"
	case EventTouchdown:
		return "touchdown"
	case EventLiftoff:
		return "liftoff"
	case EventEnginePowered:
		return "engine_powered"
	case EventEngineUnpowered:
		return "engine_unpowered"
	case EventFolded:
		return "folded"
	case EventUnfolded:
		return "unfolded"
	}
	return "unknown"
}

type Event struct {
	Kind     EventKind
	Tick     uint64
	Position Vec3
}

// Events buffers what happened since the last Drain.
type Events struct {
	buf []Event
}

func (e *Events) add(ev Event) { e.buf = append(e.buf, ev) }

// Drain returns and clears the buffered events.
func (e *Events) Drain() []Event {
	out := e.buf
	e.buf = nil
	return out
}

func (e *Events) Len() int { return len(e.buf) }
