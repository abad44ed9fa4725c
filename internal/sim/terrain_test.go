package sim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dropship-simulator/internal/sim"
)

func TestFlatGroundRaycast(t *testing.T) {
	g := sim.FlatGround{Height: 2}
	d, ok := g.Raycast(sim.Vec3{Y: 7}, sim.Vec3{Y: -1})
	require.True(t, ok)
	assert.Equal(t, 5.0, d)

	_, ok = g.Raycast(sim.Vec3{Y: 7}, sim.Vec3{Y: 1})
	assert.False(t, ok)
	_, ok = g.Raycast(sim.Vec3{Y: 7}, sim.AxisX)
	assert.False(t, ok)
}

func TestTerrainHeightAt(t *testing.T) {
	tr := sim.NewTerrain(100, 10, func(x, z float64) float64 { return 0.5*x + 0.25*z })
	assert.Equal(t, 10, tr.Segments())

	// A plane is reproduced exactly by either triangle of a cell.
	for _, p := range [][2]float64{{0, 0}, {3, 7}, {-12.5, 31}, {49, -49}} {
		h, ok := tr.HeightAt(p[0], p[1])
		require.True(t, ok)
		assert.InDelta(t, 0.5*p[0]+0.25*p[1], h, 1e-9)
	}
	_, ok := tr.HeightAt(51, 0)
	assert.False(t, ok)
}

func TestTerrainVerticalRays(t *testing.T) {
	tr := sim.NewTerrain(100, 10, func(x, z float64) float64 { return 3 })

	d, ok := tr.Raycast(sim.Vec3{X: 4, Y: 10, Z: -4}, sim.Vec3{Y: -1})
	require.True(t, ok)
	assert.InDelta(t, 7, d, 1e-12)

	d, ok = tr.Raycast(sim.Vec3{Y: 1}, sim.Vec3{Y: 1})
	require.True(t, ok)
	assert.InDelta(t, 2, d, 1e-12)

	_, ok = tr.Raycast(sim.Vec3{Y: 10}, sim.Vec3{Y: 1})
	assert.False(t, ok)
	_, ok = tr.Raycast(sim.Vec3{X: 500, Y: 10}, sim.Vec3{Y: -1})
	assert.False(t, ok)
}

func TestTerrainObliqueRay(t *testing.T) {
	tr := sim.NewTerrain(100, 10, func(x, z float64) float64 { return 0 })
	d, ok := tr.Raycast(sim.Vec3{Y: 8}, sim.Vec3{X: 1, Y: -1})
	require.True(t, ok)
	assert.InDelta(t, 8*math.Sqrt2, d, 1e-6)
}

func TestTerrainMesh(t *testing.T) {
	tr := sim.NewTerrain(40, 10, sim.RollingHills)
	verts, idx := tr.Mesh()
	assert.Len(t, verts, 5*5*3)
	assert.Len(t, idx, 4*4*6)
	assert.Equal(t, float32(-20), verts[0])
	assert.Equal(t, float32(sim.RollingHills(-20, -20)), verts[1])
}

func TestDefaultTerrainMatchesProfile(t *testing.T) {
	tr := sim.DefaultTerrain()
	h, ok := tr.HeightAt(0, 0)
	require.True(t, ok)
	assert.InDelta(t, sim.RollingHills(0, 0), h, 1e-9)
}
