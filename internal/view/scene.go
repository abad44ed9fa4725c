package view

import (
	"strings"

	"dropship-simulator/internal/sim"
)

type Color struct{ R, G, B, A float32 }

// box is the placeholder geometry drawn for one rig part: a unit cube
// scaled by size and shifted by offset in the part's frame.
type box struct {
	size   sim.Vec3
	offset sim.Vec3
	color  Color
}

var partBoxes = map[string]box{
	sim.PartAirframe:    {size: sim.Vec3{X: 7, Y: 1.8, Z: 2.4}, color: Color{0.45, 0.5, 0.42, 1}},
	sim.PartCockpit:     {size: sim.Vec3{X: 2.4, Y: 1.4, Z: 2}, color: Color{0.3, 0.36, 0.42, 1}},
	sim.PartWingLeft:    {size: sim.Vec3{X: 2, Y: 0.2, Z: 3}, offset: sim.Vec3{Z: -1.5}, color: Color{0.42, 0.47, 0.4, 1}},
	sim.PartWingRight:   {size: sim.Vec3{X: 2, Y: 0.2, Z: 3}, offset: sim.Vec3{Z: 1.5}, color: Color{0.42, 0.47, 0.4, 1}},
	sim.PartRamp:        {size: sim.Vec3{X: 1.6, Y: 0.2, Z: 2.2}, offset: sim.Vec3{X: -0.8}, color: Color{0.38, 0.4, 0.36, 1}},
	sim.PartGear:        {size: sim.Vec3{X: 3.5, Y: 1.2, Z: 2.6}, offset: sim.Vec3{Y: -0.6}, color: Color{0.2, 0.2, 0.2, 1}},
	sim.PartEngineLeft:  {size: sim.Vec3{X: 2.4, Y: 1, Z: 1}, color: Color{0.5, 0.52, 0.48, 1}},
	sim.PartEngineRight: {size: sim.Vec3{X: 2.4, Y: 1, Z: 1}, color: Color{0.5, 0.52, 0.48, 1}},
	sim.PartDiscLeft:    {size: sim.Vec3{X: 7, Y: 0.05, Z: 7}, color: Color{0.8, 0.8, 0.8, 0.3}},
	sim.PartDiscRight:   {size: sim.Vec3{X: 7, Y: 0.05, Z: 7}, color: Color{0.8, 0.8, 0.8, 0.3}},
}

var bladeBox = box{
	size:   sim.Vec3{X: 0.3, Y: 0.05, Z: 3.5},
	offset: sim.Vec3{Z: 1.75},
	color:  Color{0.15, 0.15, 0.15, 1},
}

func boxFor(name string) (box, bool) {
	if b, ok := partBoxes[name]; ok {
		return b, true
	}
	if strings.HasPrefix(name, sim.PartBladesLeft+".") || strings.HasPrefix(name, sim.PartBladesRight+".") {
		return bladeBox, true
	}
	return box{}, false
}

// instance is one cube draw.
type instance struct {
	model sim.Mat4
	color Color
}

func (b box) model(world sim.Mat4) sim.Mat4 {
	return world.
		Mul(sim.TranslationMat4(b.offset)).
		Mul(sim.ScaleMat4(b.size.X, b.size.Y, b.size.Z))
}

// sceneInstances flattens the rig, rockets and particles into cube draws.
// Opaque geometry comes first, translucent after.
func sceneInstances(sc sim.Scene, out []instance) []instance {
	out = out[:0]
	var translucent []instance
	add := func(in instance) {
		if in.color.A < 1 {
			translucent = append(translucent, in)
			return
		}
		out = append(out, in)
	}

	if sc.Root != nil {
		sc.Root.Walk(func(n *sim.Group, world sim.Mat4) {
			if b, ok := boxFor(n.Name()); ok {
				add(instance{model: b.model(world), color: b.color})
			}
		})
	}
	for _, r := range sc.Rockets {
		add(instance{model: rocketModel(r), color: Color{0.85, 0.85, 0.8, 1}})
	}
	for _, p := range sc.Smoke {
		s := 0.4 * p.Scale
		add(instance{
			model: sim.TranslationMat4(p.Position).Mul(sim.ScaleMat4(s, s, s)),
			color: Color{0.7, 0.7, 0.7, float32(p.Opacity)},
		})
	}
	for _, p := range sc.Explosions {
		s := 2 * p.Scale
		add(instance{
			model: sim.TranslationMat4(p.Position).Mul(sim.ScaleMat4(s, s, s)),
			color: Color{1, 0.55, 0.15, float32(p.Opacity)},
		})
	}
	return append(out, translucent...)
}

// rocketModel stretches a cube along the flight direction.
func rocketModel(r *sim.Rocket) sim.Mat4 {
	x := r.Direction.NormalizeSafe(1e-9)
	if x == (sim.Vec3{}) {
		x = sim.AxisX
	}
	up := sim.AxisY
	if abs(x.Dot(up)) > 0.99 {
		up = sim.AxisZ
	}
	z := x.Cross(up).Normalize()
	y := z.Cross(x)
	basis := sim.Mat3{
		{x.X, y.X, z.X},
		{x.Y, y.Y, z.Y},
		{x.Z, y.Z, z.Z},
	}
	return sim.RotationMat4(basis, r.Position).Mul(sim.ScaleMat4(0.8, 0.15, 0.15))
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
