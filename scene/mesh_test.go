package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jelly/gpu"
	"jelly/math"
)

// faceNormals returns the geometric normal of every triangle.
func faceNormals(m *Mesh) []math.Vec3 {
	var out []math.Vec3
	idx := m.Data.Indices
	for i := 0; i+2 < len(idx); i += 3 {
		a := m.Data.Vertices[idx[i]].Position
		b := m.Data.Vertices[idx[i+1]].Position
		c := m.Data.Vertices[idx[i+2]].Position
		out = append(out, b.Sub(a).Cross(c.Sub(a)))
	}
	return out
}

func TestCubeMesh(t *testing.T) {
	m := NewCubeMesh(0.5)
	assert.Len(t, m.Data.Vertices, 24)
	assert.Len(t, m.Data.Indices, 36)
	assert.Equal(t, gpu.Triangles, m.Mode)
	assert.Equal(t, AABB{Min: math.Splat3(-0.5), Max: math.Splat3(0.5)}, m.Bounds)

	for i, n := range faceNormals(m) {
		v := m.Data.Vertices[m.Data.Indices[3*i]]
		assert.Greater(t, n.Dot(v.Normal), float32(0), "triangle %d winds clockwise", i)
		// every vertex sits on the face its normal points out of
		assert.InDelta(t, 0.5, v.Position.Dot(v.Normal), eps)
	}
}

func TestQuadMesh(t *testing.T) {
	m := NewQuadMesh(1)
	assert.Len(t, m.Data.Vertices, 4)
	assert.Len(t, m.Data.Indices, 6)
	for _, n := range faceNormals(m) {
		assert.Greater(t, n.Z, float32(0))
	}
}

func TestSphereMesh(t *testing.T) {
	const lat, lng = 16, 8
	m := NewSphereMesh(lat, lng, 2)
	assert.Len(t, m.Data.Vertices, (lat+1)*(lng+1))
	assert.Len(t, m.Data.Indices, 6*lat*lng)

	for _, v := range m.Data.Vertices {
		assert.InDelta(t, 2, v.Position.Length(), eps)
		assert.InDelta(t, 1, v.Normal.Length(), eps)
	}
	for i, n := range faceNormals(m) {
		// pole triangles collapse to zero area
		p := m.Data.Vertices[m.Data.Indices[3*i]].Position
		assert.GreaterOrEqual(t, n.Dot(p), float32(-eps), "triangle %d winds clockwise", i)
	}
	assert.True(t, m.Bounds.Max.ApproxEqual(math.Splat3(2), 1e-3))
}

func TestSphereMeshClampsSegments(t *testing.T) {
	m := NewSphereMesh(0, 0, 1)
	assert.Len(t, m.Data.Vertices, 4*3)
}

func TestAABBTransform(t *testing.T) {
	box := AABB{Min: math.Splat3(-1), Max: math.Splat3(1)}
	moved := box.Transform(math.Mat4Scale(math.NewVec3(2, 1, 1)).Mul(math.Mat4Translation(math.NewVec3(5, 0, 0))))

	assert.True(t, moved.Min.ApproxEqual(math.NewVec3(3, -1, -1), eps))
	assert.True(t, moved.Max.ApproxEqual(math.NewVec3(7, 1, 1), eps))
	assert.True(t, moved.Center().ApproxEqual(math.NewVec3(5, 0, 0), eps))
	assert.True(t, moved.Extent().ApproxEqual(math.NewVec3(2, 1, 1), eps))
}

func TestPlaneMesh(t *testing.T) {
	m := NewPlaneMesh(4, 2, 3)
	assert.Len(t, m.Data.Vertices, 16)
	assert.Len(t, m.Data.Indices, 54)
	for _, n := range faceNormals(m) {
		assert.Greater(t, n.Y, float32(0))
	}
	assert.True(t, m.Bounds.Min.ApproxEqual(math.NewVec3(-2, 0, -1), eps))
	assert.True(t, m.Bounds.Max.ApproxEqual(math.NewVec3(2, 0, 1), eps))
}

func TestTorusMesh(t *testing.T) {
	const major, minor = 2, 0.5
	m := NewTorusMesh(major, minor, 24, 12)
	assert.Len(t, m.Data.Vertices, 25*13)
	assert.Len(t, m.Data.Indices, 6*24*12)

	for i, n := range faceNormals(m) {
		v := m.Data.Vertices[m.Data.Indices[3*i]]
		assert.Greater(t, n.Dot(v.Normal), float32(0), "triangle %d winds clockwise", i)
	}
	for _, v := range m.Data.Vertices {
		// distance from the tube centre line
		ring := math.Vec3{X: v.Position.X, Z: v.Position.Z}.Normalize().Mul(major)
		assert.InDelta(t, minor, v.Position.Sub(ring).Length(), 1e-4)
	}
	assert.InDelta(t, minor, m.Bounds.Max.Y, 1e-4)
	assert.InDelta(t, major+minor, m.Bounds.Max.X, 1e-4)
}
