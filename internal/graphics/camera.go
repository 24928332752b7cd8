package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a free-flying perspective camera. Yaw and pitch are in degrees;
// yaw 0 looks down +x.
type Camera struct {
	Position mgl32.Vec3
	Yaw      float64
	Pitch    float64

	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Sensitivity float64
	firstMouse  bool
	lastX       float64
	lastY       float64
}

func NewCamera(width, height int, pos mgl32.Vec3) *Camera {
	return &Camera{
		Position:    pos,
		Yaw:         -90,
		AspectRatio: float32(width) / float32(max(height, 1)),
		FOV:         70.0,
		NearPlane:   0.1,
		FarPlane:    2000.0,
		Sensitivity: 0.1,
		firstMouse:  true,
	}
}

// SetViewport updates the aspect ratio.
func (c *Camera) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.AspectRatio = float32(width) / float32(height)
}

// Front returns the unit view direction.
func (c *Camera) Front() mgl32.Vec3 {
	y := float64(mgl32.DegToRad(float32(c.Yaw)))
	p := float64(mgl32.DegToRad(float32(c.Pitch)))
	return mgl32.Vec3{
		float32(math.Cos(y) * math.Cos(p)),
		float32(math.Sin(p)),
		float32(math.Sin(y) * math.Cos(p)),
	}.Normalize()
}

// Right returns the horizontal unit vector to the right of the view.
func (c *Camera) Right() mgl32.Vec3 {
	return c.Front().Cross(mgl32.Vec3{0, 1, 0}).Normalize()
}

// Look turns the camera by a cursor movement; pitch is kept within ±89°.
func (c *Camera) Look(xpos, ypos float64) {
	if c.firstMouse {
		c.lastX, c.lastY = xpos, ypos
		c.firstMouse = false
		return
	}
	c.Yaw += (xpos - c.lastX) * c.Sensitivity
	c.Pitch += (c.lastY - ypos) * c.Sensitivity
	c.lastX, c.lastY = xpos, ypos
	c.Pitch = max(-89, min(89, c.Pitch))
}

func (c *Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), mgl32.Vec3{0, 1, 0})
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
