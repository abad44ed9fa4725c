package sim

import (
	"math"
)

type CameraMode int

const (
	CameraChase CameraMode = iota
	CameraTop
	CameraSide
	CameraDebug
)

func (m CameraMode) String() string {
	switch m {
	case CameraChase:
		return "chase"
	case CameraTop:
		return "top"
	case CameraSide:
		return "side"
	case CameraDebug:
		return "debug"
	}
	return "unknown"
}

// Mounts in the local frame of the node each camera rides on. Chase and top
// ride the yaw frame, side rides the pitch frame.
var (
	chaseMount = Vec3{-15, 6, 0}
	topMount   = Vec3{-1, 30, 0}
	sideMount  = Vec3{0, 0, 20}
)

type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3
	Mode     CameraMode

	// Debug orbit, degrees and world units.
	Yaw      float64
	Pitch    float64
	Distance float64

	FOV  float64
	Near float64
	Far  float64
}

func NewCamera() *Camera {
	return &Camera{
		Up:       Vec3{0, 1, 0},
		Mode:     CameraChase,
		Yaw:      45,
		Pitch:    25,
		Distance: 40,
		FOV:      60,
		Near:     0.1,
		Far:      5000,
	}
}

// Apply switches mode for camera commands and ignores the rest.
func (c *Camera) Apply(cmd Command) bool {
	switch cmd {
	case CommandCameraChase:
		c.SetMode(CameraChase)
	case CommandCameraTop:
		c.SetMode(CameraTop)
	case CommandCameraSide:
		c.SetMode(CameraSide)
	case CommandCameraDebug:
		c.SetMode(CameraDebug)
	default:
		return false
	}
	return true
}

func (c *Camera) SetMode(mode CameraMode) {
	c.Mode = mode
	c.Up = Vec3{0, 1, 0}
}

// Orbit nudges the debug camera.
func (c *Camera) Orbit(dYaw, dPitch, dDist float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 360)
	c.Pitch = Clamp(c.Pitch+dPitch, -85, 85)
	c.Distance = Clamp(c.Distance+dDist, 5, 500)
}

// Update places the camera relative to the rig's root and pitch frames.
func (c *Camera) Update(root, pitch *Group) {
	if root == nil {
		return
	}
	rootWorld := root.WorldMatrix()
	rootPos := rootWorld.MulPoint(Vec3{})

	switch c.Mode {
	case CameraChase:
		c.Position = rootWorld.MulPoint(chaseMount)
		c.Target = rootPos
	case CameraTop:
		c.Position = rootWorld.MulPoint(topMount)
		c.Target = rootPos
		// Looking straight down, so up follows the nose.
		c.Up = rootWorld.MulDirection(AxisX)
	case CameraSide:
		frame := rootWorld
		if pitch != nil {
			frame = pitch.WorldMatrix()
		}
		c.Position = frame.MulPoint(sideMount)
		c.Target = frame.MulPoint(Vec3{})
	case CameraDebug:
		yaw := DegToRad(c.Yaw)
		p := DegToRad(c.Pitch)
		c.Target = rootPos
		c.Position = rootPos.Add(Vec3{
			X: c.Distance * math.Cos(p) * math.Sin(yaw),
			Y: c.Distance * math.Sin(p),
			Z: c.Distance * math.Cos(p) * math.Cos(yaw),
		})
	}
}

func (c *Camera) GetViewMatrix() Mat4 {
	return LookAtMat4(c.Position, c.Target, c.Up)
}

func (c *Camera) GetProjectionMatrix(width, height int) Mat4 {
	// Ensure minimum dimensions to avoid division by zero
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	aspect := float64(width) / float64(height)
	return PerspectiveMat4(c.FOV, aspect, c.Near, c.Far)
}
