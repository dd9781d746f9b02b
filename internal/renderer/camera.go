package renderer

import "github.com/go-gl/mathgl/mgl32"

// Camera holds the projection parameters for a free-flying observer;
// the view matrix is supplied per-frame by the caller since the
// observer's pose lives in the physics world, not here.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32
}

// NewCamera builds a camera with a fixed field of view sized to the
// given viewport in pixels.
func NewCamera(width, height int) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(height),
		FOV:         60.0,
		NearPlane:   0.1,
		FarPlane:    10000.0,
	}
}

// ProjectionMatrix returns the perspective projection for this camera.
func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}
