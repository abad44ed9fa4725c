package sim

import "math"

// HeightFunc gives terrain height at a world (x, z).
type HeightFunc func(x, z float64) float64

// RollingHills is the default terrain profile: two octaves of sines along
// each axis.
func RollingHills(x, z float64) float64 {
	const (
		f1 = 0.01
		f2 = 0.005
		a1 = 20.0
		a2 = 10.0
	)
	return math.Sin(x*f1)*a1 + math.Cos(z*f1)*a1 + math.Sin(x*f2)*(a2/2) + math.Cos(z*f2)*(a2/2)
}

// Terrain is a square heightfield patch centered on the origin, sampled on
// a regular grid and split into two triangles per cell along the
// (x+1, z) to (x, z+1) diagonal.
type Terrain struct {
	Width   float64
	Segment float64
	// Far bounds the marching distance for non-vertical rays.
	Far     float64

	n       int
	heights []float64 // (n+1)*(n+1), index i*(n+1)+j, i along x
	origin  float64
}

func NewTerrain(width, segment float64, h HeightFunc) *Terrain {
	n := int(math.Round(width / segment))
	if n < 1 {
		n = 1
	}
	t := &Terrain{Width: width, Segment: segment, Far: 5000, n: n, origin: -width / 2}
	t.heights = make([]float64, (n+1)*(n+1))
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			t.heights[i*(n+1)+j] = h(t.origin+float64(i)*segment, t.origin+float64(j)*segment)
		}
	}
	return t
}

// FlatGround is an infinite horizontal plane.
type FlatGround struct {
	Height float64
}

func (g FlatGround) Raycast(origin, dir Vec3) (float64, bool) {
	dir = dir.Normalize()
	if dir.Y == 0 {
		return 0, false
	}
	d := (g.Height - origin.Y) / dir.Y
	if d < 0 {
		return 0, false
	}
	return d, true
}

// DefaultTerrain is a 5000x5000 patch with 100-unit cells.
func DefaultTerrain() *Terrain { return NewTerrain(5000, 100, RollingHills) }

func (t *Terrain) Segments() int { return t.n }

func (t *Terrain) vertex(i, j int) float64 { return t.heights[i*(t.n+1)+j] }

// HeightAt interpolates the triangle containing (x, z). ok is false
// outside the patch.
func (t *Terrain) HeightAt(x, z float64) (float64, bool) {
	u := (x - t.origin) / t.Segment
	w := (z - t.origin) / t.Segment
	if u < 0 || w < 0 || u > float64(t.n) || w > float64(t.n) {
		return 0, false
	}
	i := min(int(u), t.n-1)
	j := min(int(w), t.n-1)
	fu, fw := u-float64(i), w-float64(j)

	a := t.vertex(i, j)
	b := t.vertex(i+1, j)
	c := t.vertex(i, j+1)
	d := t.vertex(i+1, j+1)
	if fu+fw <= 1 {
		return a + fu*(b-a) + fw*(c-a), true
	}
	return d + (1-fu)*(c-d) + (1-fw)*(b-d), true
}

// Raycast implements Surface. Vertical rays are answered exactly; other
// directions march the ray and bisect the first sign change.
func (t *Terrain) Raycast(origin, dir Vec3) (float64, bool) {
	dir = dir.Normalize()
	if dir == (Vec3{}) {
		return 0, false
	}
	if dir.X == 0 && dir.Z == 0 {
		h, ok := t.HeightAt(origin.X, origin.Z)
		if !ok {
			return 0, false
		}
		gap := origin.Y - h
		switch {
		case dir.Y < 0 && gap >= 0:
			return gap, true
		case dir.Y > 0 && gap <= 0:
			return -gap, true
		}
		return 0, false
	}

	above := func(d float64) (float64, bool) {
		p := origin.Add(dir.Mul(d))
		h, ok := t.HeightAt(p.X, p.Z)
		return p.Y - h, ok
	}
	step := t.Segment / 4
	prev, prevOK := above(0)
	for d := step; d <= t.Far; d += step {
		cur, ok := above(d)
		if ok && prevOK && (prev >= 0) != (cur >= 0) {
			lo, hi := d-step, d
			for k := 0; k < 40; k++ {
				mid := (lo + hi) / 2
				m, _ := above(mid)
				if (m >= 0) == (prev >= 0) {
					lo = mid
				} else {
					hi = mid
				}
			}
			return (lo + hi) / 2, true
		}
		prev, prevOK = cur, ok
	}
	return 0, false
}

// Mesh returns interleaved xyz vertices and triangle indices in the same
// winding the heightfield is interpolated with.
func (t *Terrain) Mesh() ([]float32, []uint32) {
	n := t.n
	verts := make([]float32, 0, (n+1)*(n+1)*3)
	for i := 0; i <= n; i++ {
		for j := 0; j <= n; j++ {
			verts = append(verts,
				float32(t.origin+float64(i)*t.Segment),
				float32(t.vertex(i, j)),
				float32(t.origin+float64(j)*t.Segment))
		}
	}
	idx := make([]uint32, 0, n*n*6)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a := uint32(i*(n+1) + j)
			b := uint32((i+1)*(n+1) + j)
			c := uint32(i*(n+1) + j + 1)
			d := uint32((i+1)*(n+1) + j + 1)
			idx = append(idx, a, b, c, c, b, d)
		}
	}
	return verts, idx
}
