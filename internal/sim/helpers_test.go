package sim_test

import (
	"github.com/rs/zerolog"

	"dropship-simulator/internal/sim"
)

// testFrame wires a fresh state and rig the way Simulator.Update does.
func testFrame(surface sim.Surface) (*sim.Frame, *sim.Group) {
	tuning := sim.DefaultTuning()
	root := sim.NewDropshipRig(tuning.Engine.BladeCount)
	return &sim.Frame{
		State:     sim.NewVehicleState(tuning),
		Rig:       sim.NewGroupRig(root),
		Surface:   surface,
		Tuning:    &tuning,
		Rockets:   &sim.RocketSet{},
		Particles: sim.NewParticleSystem(tuning.Particles),
		Events:    &sim.Events{},
		Log:       zerolog.Nop(),
	}, root
}

func kinds(events []sim.Event) []sim.EventKind {
	out := make([]sim.EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

// slope is a plane rising by Grade per unit of +X.
type slope struct{ Grade float64 }

func (s slope) Raycast(origin, dir sim.Vec3) (float64, bool) {
	if dir.X != 0 || dir.Z != 0 || dir.Y >= 0 {
		return 0, false
	}
	gap := origin.Y - s.Grade*origin.X
	if gap < 0 {
		return 0, false
	}
	return gap, true
}
