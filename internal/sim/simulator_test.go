package sim_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-simulator/internal/sim"
)

const tick = time.Second / 60

func newTestSimulator(t *testing.T, opts sim.Options) *sim.Simulator {
	t.Helper()
	if opts.Tuning == (sim.Tuning{}) {
		opts.Tuning = sim.DefaultTuning()
	}
	if opts.Surface == nil {
		opts.Surface = sim.FlatGround{}
	}
	if opts.Clock == nil {
		opts.Clock = sim.NewStepClock(time.Unix(1000, 0), tick)
	}
	opts.Logger = zerolog.Nop()
	s, err := sim.NewSimulator(opts)
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })
	return s
}

func TestNewSimulatorSpawnsAboveSurface(t *testing.T) {
	s := newTestSimulator(t, sim.Options{Surface: sim.FlatGround{Height: 7}})
	snap := s.Snapshot()
	assert.InDelta(t, 17, snap.Position.Y, 1e-9)
	assert.Equal(t, "chase", snap.Camera)
	assert.Equal(t, 16, snap.State.Weapon.Ammo)

	start := sim.Vec3{X: 1, Y: 2, Z: 3}
	s = newTestSimulator(t, sim.Options{Start: &start})
	assert.Equal(t, start, s.Snapshot().Position)
}

func TestNewSimulatorRejectsBadTuning(t *testing.T) {
	tuning := sim.DefaultTuning()
	tuning.Drag = 2
	_, err := sim.NewSimulator(sim.Options{Tuning: tuning, Logger: zerolog.Nop()})
	assert.ErrorIs(t, err, sim.ErrInvalidTuning)
}

func TestEngineStartThroughKeys(t *testing.T) {
	s := newTestSimulator(t, sim.Options{})
	assert.Equal(t, sim.CommandNone, s.KeyDown("KeyT"))
	s.KeyUp("KeyT")
	assert.True(t, s.Intent().ToggleEngine)

	n := s.RunHeadless(context.Background(), 400, sim.HeadlessHooks{})
	assert.Equal(t, 400, n)

	snap := s.Snapshot()
	assert.Equal(t, uint64(400), snap.Tick)
	assert.True(t, snap.State.Engine.Powered)
	assert.Contains(t, kinds(s.DrainEvents()), sim.EventEnginePowered)
	assert.Empty(t, s.DrainEvents())
}

// Holding forward with the engines up moves the vehicle along its nose.
func TestFlightMovesForward(t *testing.T) {
	s := newTestSimulator(t, sim.Options{})
	s.KeyDown("KeyT")
	s.RunHeadless(context.Background(), 400, sim.HeadlessHooks{})
	before := s.Snapshot().Position

	s.KeyDown("KeyW")
	s.RunHeadless(context.Background(), 120, sim.HeadlessHooks{})
	after := s.Snapshot()
	assert.Greater(t, after.Position.X, before.X)
	assert.InDelta(t, before.Z, after.Position.Z, 1e-9)
	assert.Less(t, after.Pitch, 0.0)

	s.ReleaseAll()
	assert.False(t, s.Intent().Forward)
	assert.True(t, s.Intent().ToggleEngine)
}

func TestFiringUsesSimulatedClock(t *testing.T) {
	s := newTestSimulator(t, sim.Options{})
	s.KeyDown("Space")
	s.RunHeadless(context.Background(), 60, sim.HeadlessHooks{})

	snap := s.Snapshot()
	fired := 0
	for _, k := range kinds(s.DrainEvents()) {
		if k == sim.EventRocketFired {
			fired++
		}
	}
	// One second of simulated time at a 300ms cooldown.
	assert.Equal(t, 4, fired)
	assert.Equal(t, 16-fired, snap.State.Weapon.Ammo)
	assert.Greater(t, snap.Particles, 0)
}

func TestEventBacklogDropsOldest(t *testing.T) {
	s := newTestSimulator(t, sim.Options{MaxPendingEvents: 2})
	s.KeyDown("Space")
	s.RunHeadless(context.Background(), 60, sim.HeadlessHooks{})

	events := s.DrainEvents()
	require.Len(t, events, 2)
	assert.Greater(t, events[1].Tick, events[0].Tick)
	assert.Greater(t, events[0].Tick, uint64(0))
}

func TestCommandsSwitchCameraAndHUD(t *testing.T) {
	s := newTestSimulator(t, sim.Options{})
	assert.Equal(t, sim.CommandCameraTop, s.KeyDown("Digit3"))
	assert.Equal(t, "top", s.Snapshot().Camera)

	assert.Equal(t, sim.CommandToggleHUD, s.KeyDown("F1"))
	s.View(func(sc sim.Scene) {
		assert.False(t, sc.HUD)
		assert.Equal(t, sim.CameraTop, sc.Camera.Mode)
		assert.NotNil(t, sc.Root)
	})

	assert.Equal(t, sim.CommandNone, s.KeyDown("KeyP"))
}

func TestOrbitCamera(t *testing.T) {
	s := newTestSimulator(t, sim.Options{})
	s.KeyDown("Digit9")
	s.OrbitCamera(10, 5, -10)
	s.View(func(sc sim.Scene) {
		assert.Equal(t, 55.0, sc.Camera.Yaw)
		assert.Equal(t, 30.0, sc.Camera.Pitch)
		assert.Equal(t, 30.0, sc.Camera.Distance)
	})
}

func TestRunHeadlessStopsOnCancel(t *testing.T) {
	s := newTestSimulator(t, sim.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Zero(t, s.RunHeadless(ctx, 100, sim.HeadlessHooks{}))
}

func TestSnapshotJSON(t *testing.T) {
	s := newTestSimulator(t, sim.Options{})
	s.RunHeadless(context.Background(), 3, sim.HeadlessHooks{})

	b, err := json.Marshal(s.Snapshot())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.Equal(t, 3.0, m["tick"])
	assert.Contains(t, m, "state")
	assert.Contains(t, m, "intent")
	assert.Equal(t, "chase", m["camera"])
}

func TestSimulatorDefaults(t *testing.T) {
	s, err := sim.NewSimulator(sim.Options{Tuning: sim.DefaultTuning(), Logger: zerolog.Nop()})
	require.NoError(t, err)
	defer s.Close()
	_, ok := s.Surface().(*sim.Terrain)
	assert.True(t, ok)
	assert.Equal(t, sim.DefaultTuning(), s.Tuning())
}
