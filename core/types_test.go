package core

import (
	stdmath "math"
	"testing"

	"jelly/math"

	"github.com/stretchr/testify/assert"
)

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, math.Mat4Identity(), tr.GetMatrix())

	tr.Position = math.NewVec3(0, 0, -5)
	tr.Rotation = math.QuaternionFromAxisAngle(math.Vec3Up, stdmath.Pi/2)
	tr.Scale = math.Splat3(2)

	// (1,0,0) scaled to (2,0,0), rotated to (0,0,-2), moved to (0,0,-7)
	got := tr.GetMatrix().MulPoint(math.Vec3Right)
	assert.True(t, got.ApproxEqual(math.NewVec3(0, 0, -7), 1e-4), "got %v", got)
}

func TestTransformAxes(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, math.Vec3Front, tr.GetForward())
	assert.Equal(t, math.Vec3Right, tr.GetRight())
	assert.Equal(t, math.Vec3Up, tr.GetUp())
}

func TestColorRGB(t *testing.T) {
	c := NewColor(4, 2, 0.5)
	assert.Equal(t, float32(1), c.A)
	assert.Equal(t, math.NewVec3(4, 2, 0.5), c.RGB())
}
