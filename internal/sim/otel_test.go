package sim_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/embedded"
	metricnoop "go.opentelemetry.io/otel/metric/noop"

	"dropship-simulator/internal/sim"
)

// countingMeter tracks how many gauge callbacks are currently registered.
type countingMeter struct {
	metricnoop.Meter
	live atomic.Int64
}

func (m *countingMeter) RegisterCallback(metric.Callback, ...metric.Observable) (metric.Registration, error) {
	m.live.Add(1)
	return &countingRegistration{meter: m}, nil
}

type countingRegistration struct {
	embedded.Registration
	meter *countingMeter
	done  bool
}

func (r *countingRegistration) Unregister() error {
	if !r.done {
		r.done = true
		r.meter.live.Add(-1)
	}
	return nil
}

type countingProvider struct {
	metricnoop.MeterProvider
	meter *countingMeter
}

func (p countingProvider) Meter(string, ...metric.MeterOption) metric.Meter { return p.meter }

func TestCloseUnregistersGaugeCallback(t *testing.T) {
	m := &countingMeter{}
	otel.SetMeterProvider(countingProvider{meter: m})
	t.Cleanup(func() { otel.SetMeterProvider(metricnoop.NewMeterProvider()) })

	var sims []*sim.Simulator
	for i := 0; i < 3; i++ {
		s, err := sim.NewSimulator(sim.Options{
			Tuning:  sim.DefaultTuning(),
			Surface: sim.FlatGround{},
			Clock:   sim.NewStepClock(time.Unix(1000, 0), tick),
			Logger:  zerolog.Nop(),
		})
		require.NoError(t, err)
		sims = append(sims, s)
	}
	assert.EqualValues(t, 3, m.live.Load())

	for _, s := range sims {
		require.NoError(t, s.Close())
	}
	assert.Zero(t, m.live.Load())

	// A second Close is a no-op.
	assert.NoError(t, sims[0].Close())
	assert.Zero(t, m.live.Load())
}
