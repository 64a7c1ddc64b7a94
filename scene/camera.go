package scene

import (
	"github.com/chewxy/math32"

	"jelly/math"
)

const (
	minZoom = 1
	maxZoom = 50

	pitchLimit = math32.Pi * 0.499
	dragScale  = 0.02
)

// DragButton selects what a mouse drag does to an orbit camera.
type DragButton int

const (
	DragOrbit DragButton = iota
	DragZoom
)

// Camera orbits a centre point at a given distance. Yaw and pitch are in
// radians; pitch is kept just short of the poles.
type Camera struct {
	Center      math.Vec3
	FOV         float32
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32
	Sensitivity float32

	yaw, pitch, zoom float32

	// Cached matrices
	position         math.Vec3
	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
	dirty            bool
}

func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		FOV:         fov,
		AspectRatio: aspectRatio,
		NearPlane:   nearPlane,
		FarPlane:    farPlane,
		Sensitivity: 1,
		zoom:        5,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) Yaw() float32   { return c.yaw }
func (c *Camera) Pitch() float32 { return c.pitch }
func (c *Camera) Zoom() float32  { return c.zoom }

func (c *Camera) SetYaw(yaw float32) {
	c.yaw = yaw
	c.dirty = true
}

func (c *Camera) SetPitch(pitch float32) {
	c.pitch = clamp(pitch, -pitchLimit, pitchLimit)
	c.dirty = true
}

func (c *Camera) SetZoom(zoom float32) {
	c.zoom = clamp(zoom, minZoom, maxZoom)
	c.dirty = true
}

func (c *Camera) SetCenter(center math.Vec3) {
	c.Center = center
	c.dirty = true
}

// Drag applies a mouse movement in pixels.
func (c *Camera) Drag(dx, dy float32, button DragButton) {
	switch button {
	case DragOrbit:
		c.SetYaw(c.yaw + dx*dragScale*c.Sensitivity)
		c.SetPitch(c.pitch + dy*dragScale*c.Sensitivity)
	case DragZoom:
		c.SetZoom(c.zoom + dy*dragScale*c.Sensitivity)
	}
}

// Scroll zooms by one unit per wheel notch.
func (c *Camera) Scroll(dy float32) {
	c.SetZoom(c.zoom - dy*c.Sensitivity)
}

// Frame centres the camera on a box and backs off far enough to see it.
func (c *Camera) Frame(box AABB) {
	c.SetCenter(box.Center())
	radius := box.Extent().Length()
	c.SetZoom(radius / math32.Tan(c.FOV*0.5))
}

func (c *Camera) Position() math.Vec3 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.position
}

func (c *Camera) GetViewMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewMatrix
}

func (c *Camera) GetProjectionMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.projectionMatrix
}

func (c *Camera) updateMatrices() {
	sy, cy := math32.Sincos(c.yaw)
	sp, cp := math32.Sincos(c.pitch)
	offset := math.NewVec3(cy*cp, sp, sy*cp).Normalize().Mul(c.zoom)

	c.position = c.Center.Add(offset)
	c.viewMatrix = math.Mat4LookAt(c.position, c.Center, math.Vec3Up)
	c.projectionMatrix = math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	c.dirty = false
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
