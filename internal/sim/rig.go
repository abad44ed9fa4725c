package sim

import "strconv"

// Part names of the dropship hierarchy.
const (
	PartRoot        = "dropship"
	PartPitch       = "pitch"
	PartAirframe    = "airframe"
	PartCockpit     = "cockpit"
	PartWings       = "wings"
	PartWingLeft    = "wingLeft"
	PartWingRight   = "wingRight"
	PartRamp        = "ramp"
	PartGear        = "gear"
	PartEngines     = "engines"
	PartEngineLeft  = "engineLeft"
	PartEngineRight = "engineRight"
	PartBladesLeft  = "bladesLeft"
	PartBladesRight = "bladesRight"
	PartDiscLeft    = "discLeft"
	PartDiscRight   = "discRight"
)

// BladePart names blade i of the given rotor group.
func BladePart(rotor string, i int) string {
	return rotor + "." + strconv.Itoa(i)
}

// NewDropshipRig builds the default part hierarchy:
//
//	dropship -> pitch -> airframe -> {cockpit, wings, ramp, gear, engines}
//	engines -> engineLeft|engineRight -> bladesX (blades) + discX
//
// The root carries world position and yaw; pitch carries nose up/down;
// airframe carries roll.
func NewDropshipRig(bladeCount int) *Group {
	root := NewGroup(PartRoot)
	pitch := NewGroup(PartPitch)
	airframe := NewGroup(PartAirframe)
	root.Add(pitch)
	pitch.Add(airframe)

	cockpit := NewGroup(PartCockpit)
	cockpit.SetPosition(Vec3{3.2, 0.4, 0})

	wings := NewGroup(PartWings)
	wingLeft := NewGroup(PartWingLeft)
	wingLeft.SetPosition(Vec3{-1.2, 0.6, -1.6})
	wingRight := NewGroup(PartWingRight)
	wingRight.SetPosition(Vec3{-1.2, 0.6, 1.6})
	wings.Add(wingLeft, wingRight)

	ramp := NewGroup(PartRamp)
	ramp.SetPosition(Vec3{-3.6, -0.6, 0})

	gear := NewGroup(PartGear)
	gear.SetVisible(false)

	engines := NewGroup(PartEngines)
	engines.Add(
		newNacelle(PartEngineLeft, PartBladesLeft, PartDiscLeft, -3.98655, bladeCount),
		newNacelle(PartEngineRight, PartBladesRight, PartDiscRight, 3.98655, bladeCount),
	)

	airframe.Add(cockpit, wings, ramp, gear, engines)
	return root
}

func newNacelle(name, blades, disc string, z float64, bladeCount int) *Group {
	nacelle := NewGroup(name)
	nacelle.SetPosition(Vec3{-1.48602, 0.598318, z})

	rotor := NewGroup(blades)
	rotor.SetPosition(Vec3{0, 1.5, 0})
	for i := 0; i < bladeCount; i++ {
		b := NewGroup(BladePart(blades, i))
		b.SetRotation(Vec3{Y: bladeSpacing(bladeCount) * float64(i)})
		rotor.Add(b)
	}

	d := NewGroup(disc)
	d.SetPosition(Vec3{0, 1.5, 0})
	d.SetVisible(false)

	nacelle.Add(rotor, d)
	return nacelle
}
