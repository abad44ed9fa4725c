package telemetry

import "dropship-simulator/internal/sim"

type eventMessage struct {
	Kind     string   `json:"kind"`
	Tick     uint64   `json:"tick"`
	Position sim.Vec3 `json:"position"`
}

// PublishEvents sends one event envelope per simulation event.
func (h *Hub) PublishEvents(events []sim.Event) error {
	for _, ev := range events {
		err := h.Publish(TypeEvent, eventMessage{
			Kind:     ev.Kind.String(),
			Tick:     ev.Tick,
			Position: ev.Position,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Feed publishes all drained events and a snapshot once at least Every
// ticks have passed since the previous one.
type Feed struct {
	Hub   *Hub
	Every uint64

	last uint64
	sent bool
}

func (f *Feed) Tick(snap sim.Snapshot, events []sim.Event) error {
	if f == nil || f.Hub == nil {
		return nil
	}
	if err := f.Hub.PublishEvents(events); err != nil {
		return err
	}
	if f.sent && snap.Tick-f.last < f.Every {
		return nil
	}
	f.last, f.sent = snap.Tick, true
	return f.Hub.Publish(TypeSnapshot, snap)
}
