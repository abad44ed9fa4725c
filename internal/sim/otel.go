package sim

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "dropship-simulator/internal/sim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics are the simulator's instruments. With no provider installed the
// global meter is a no-op.
type metrics struct {
	events    metric.Int64Counter
	tickTime  metric.Float64Histogram
	particles metric.Int64ObservableGauge
	rockets   metric.Int64ObservableGauge

	gauges metric.Registration

	// last observed counts, published by the gauge callback
	activeParticles atomic.Int64
	activeRockets   atomic.Int64
}

func newMetrics() (*metrics, error) {
	m := meter()
	ms := &metrics{}

	var err error
	ms.events, err = m.Int64Counter(
		"dropship.events",
		metric.WithDescription("Simulation events by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating events counter: %w", err)
	}

	ms.tickTime, err = m.Float64Histogram(
		"dropship.tick.duration",
		metric.WithDescription("Wall time spent in one simulation tick"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick histogram: %w", err)
	}

	ms.particles, err = m.Int64ObservableGauge(
		"dropship.particles.active",
		metric.WithDescription("Live smoke and explosion particles"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating particle gauge: %w", err)
	}
	ms.rockets, err = m.Int64ObservableGauge(
		"dropship.rockets.active",
		metric.WithDescription("Rockets in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rocket gauge: %w", err)
	}

	ms.gauges, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(ms.particles, ms.activeParticles.Load())
			o.ObserveInt64(ms.rockets, ms.activeRockets.Load())
			return nil
		},
		ms.particles, ms.rockets,
	)
	if err != nil {
		return nil, fmt.Errorf("registering gauge callback: %w", err)
	}
	return ms, nil
}

// close detaches the gauge callback from the meter.
func (ms *metrics) close() error {
	if ms.gauges == nil {
		return nil
	}
	err := ms.gauges.Unregister()
	ms.gauges = nil
	if err != nil {
		return fmt.Errorf("unregistering gauge callback: %w", err)
	}
	return nil
}

func (ms *metrics) recordEvent(ctx context.Context, ev Event) {
	ms.events.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", ev.Kind.String())))
}
