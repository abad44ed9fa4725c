package sim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-simulator/internal/sim"
)

func TestMinClearanceFollowsGear(t *testing.T) {
	g := sim.DefaultTuning().Ground
	assert.Equal(t, 4.0, sim.MinClearance(0, g))
	assert.InDelta(t, 1.8, sim.MinClearance(1, g), 1e-12)
	assert.InDelta(t, 2.9, sim.MinClearance(0.5, g), 1e-12)
	assert.InDelta(t, 1.8, sim.MinClearance(3, g), 1e-12)
}

func TestTiltFade(t *testing.T) {
	g := sim.DefaultTuning().Ground
	assert.Equal(t, 0.0, sim.TiltFade(g.ContactHeight, g))
	assert.InDelta(t, 1.0, sim.TiltFade(g.DeployedClearance, g), 1e-12)
	assert.Equal(t, 0.0, sim.TiltFade(10, g))
}

func TestGroundLiftsOutOfTerrain(t *testing.T) {
	for _, tc := range []struct {
		name  string
		gear  float64
		wantY float64
	}{
		{"gear up", 0, 4},
		{"gear down", 1, 1.8},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f, root := testFrame(sim.FlatGround{})
			f.State.Gear = tc.gear
			root.SetPosition(sim.Vec3{X: 3, Y: 1, Z: -2})

			sim.ResolveGround(f)
			assert.InDelta(t, tc.wantY, root.Position().Y, 1e-12)
			assert.Equal(t, 3.0, root.Position().X)
			assert.True(t, f.State.Ground.Hit)
			assert.True(t, f.State.Ground.InGround)
			assert.Equal(t, 1.0, f.State.Ground.Clearance)
			assert.Equal(t, []sim.EventKind{sim.EventTouchdown}, kinds(f.Events.Drain()))
		})
	}
}

func TestGroundIgnoresHighVehicle(t *testing.T) {
	f, root := testFrame(sim.FlatGround{Height: 5})
	root.SetPosition(sim.Vec3{Y: 50})

	sim.ResolveGround(f)
	assert.Equal(t, 50.0, root.Position().Y)
	assert.True(t, f.State.Ground.Hit)
	assert.False(t, f.State.Ground.InGround)
	assert.Equal(t, 45.0, f.State.Ground.Clearance)
	assert.Empty(t, f.Events.Drain())
}

func TestGroundMissClearsState(t *testing.T) {
	f, root := testFrame(sim.FlatGround{Height: 100})
	root.SetPosition(sim.Vec3{Y: 50})
	f.State.Ground.InGround = true

	sim.ResolveGround(f)
	assert.Equal(t, sim.GroundState{}, f.State.Ground)
	assert.Equal(t, []sim.EventKind{sim.EventLiftoff}, kinds(f.Events.Drain()))
}

// On a slope the fore corner is closer to the ground than the aft one, so
// the nose pitches up by the height difference over the corner base,
// scaled by how far the gear is compressed.
func TestGroundTiltsOnSlope(t *testing.T) {
	f, root := testFrame(slope{Grade: 0.1})
	f.State.Gear = 1
	root.SetPosition(sim.Vec3{Y: 2})

	sim.ResolveGround(f)
	g := f.State.Ground
	require.True(t, g.InGround)

	tuning := f.Tuning.Ground
	off := tuning.CornerOffset
	assert.InDelta(t, 2-0.1*off, g.Corners[sim.CornerFore], 1e-9)
	assert.InDelta(t, 2+0.1*off, g.Corners[sim.CornerBack], 1e-9)

	fade := sim.TiltFade(2, tuning)
	assert.InDelta(t, 0.1*fade, g.Pitch, 1e-9)
	assert.InDelta(t, 0, g.Roll, 1e-9)
	assert.InDelta(t, g.Pitch, root.Find(sim.PartPitch).Rotation().Z, 1e-9)
}

func TestGroundLevelOnFlat(t *testing.T) {
	f, root := testFrame(sim.FlatGround{})
	f.State.Gear = 1
	root.SetPosition(sim.Vec3{Y: 2})
	root.SetRotation(sim.Vec3{Y: 0.7})

	sim.ResolveGround(f)
	assert.InDelta(t, 0, f.State.Ground.Pitch, 1e-12)
	assert.InDelta(t, 0, f.State.Ground.Roll, 1e-12)
	for _, c := range f.State.Ground.Corners {
		assert.InDelta(t, 2, c, 1e-9)
	}
}
