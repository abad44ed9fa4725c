package sim_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-simulator/internal/sim"
)

func TestParseScript(t *testing.T) {
	steps, err := sim.ParseScript(" 120:KeyW, 0:KeyT ,600:-KeyW,120:Space,")
	require.NoError(t, err)
	assert.Equal(t, []sim.ScriptStep{
		{Tick: 0, Key: "KeyT"},
		{Tick: 120, Key: "KeyW"},
		{Tick: 120, Key: "Space"},
		{Tick: 600, Key: "KeyW", Release: true},
	}, steps)

	steps, err = sim.ParseScript("")
	assert.NoError(t, err)
	assert.Empty(t, steps)
}

func TestParseScriptErrors(t *testing.T) {
	for _, in := range []string{"KeyW", "x:KeyW", "-1:KeyW", "5:", "5:-"} {
		_, err := sim.ParseScript(in)
		assert.Error(t, err, in)
	}
}

func TestScriptDrivesSimulator(t *testing.T) {
	steps, err := sim.ParseScript("0:KeyT,5:KeyW,10:-KeyW")
	require.NoError(t, err)
	script := sim.NewScript(steps)
	s := newTestSimulator(t, sim.Options{})

	for i := 0; i < 12; i++ {
		tick := s.Snapshot().Tick
		script.Apply(s, tick)
		switch {
		case tick < 5:
			assert.False(t, s.Intent().Forward, "tick %d", tick)
		case tick < 10:
			assert.True(t, s.Intent().Forward, "tick %d", tick)
		default:
			assert.False(t, s.Intent().Forward, "tick %d", tick)
		}
		s.Update(context.Background())
	}
	assert.True(t, script.Done())
	assert.True(t, s.Intent().ToggleEngine)
}

func TestRunHeadlessHooks(t *testing.T) {
	steps, err := sim.ParseScript("0:Space,30:-Space")
	require.NoError(t, err)
	script := sim.NewScript(steps)
	s := newTestSimulator(t, sim.Options{})

	var seen []uint64
	fired := 0
	n := s.RunHeadless(context.Background(), 60, sim.HeadlessHooks{
		Before: func(tick uint64) {
			seen = append(seen, tick)
			script.Apply(s, tick)
		},
		After: func(events []sim.Event) {
			for _, k := range kinds(events) {
				if k == sim.EventRocketFired {
					fired++
				}
			}
		},
	})

	assert.Equal(t, 60, n)
	require.Len(t, seen, 60)
	assert.Equal(t, uint64(0), seen[0])
	assert.Equal(t, uint64(59), seen[59])
	assert.True(t, script.Done())
	// Half a second of trigger at a 300ms cooldown.
	assert.Equal(t, 2, fired)
	assert.Empty(t, s.DrainEvents())
}
