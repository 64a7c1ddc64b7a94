package scene

import (
	"github.com/chewxy/math32"

	"jelly/core"
	"jelly/gpu"
	"jelly/math"
)

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

func (b AABB) Center() math.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b AABB) Extent() math.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Union returns the smallest box containing b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: math.Vec3{X: min(b.Min.X, o.Min.X), Y: min(b.Min.Y, o.Min.Y), Z: min(b.Min.Z, o.Min.Z)},
		Max: math.Vec3{X: max(b.Max.X, o.Max.X), Y: max(b.Max.Y, o.Max.Y), Z: max(b.Max.Z, o.Max.Z)},
	}
}

// Transform returns the box enclosing b after transformation by m.
func (b AABB) Transform(m math.Mat4) AABB {
	out := AABB{Min: m.MulPoint(b.Min), Max: m.MulPoint(b.Min)}
	for i := 1; i < 8; i++ {
		p := b.Min
		if i&1 != 0 {
			p.X = b.Max.X
		}
		if i&2 != 0 {
			p.Y = b.Max.Y
		}
		if i&4 != 0 {
			p.Z = b.Max.Z
		}
		q := m.MulPoint(p)
		out = out.Union(AABB{Min: q, Max: q})
	}
	return out
}

// Mesh holds CPU-side vertex/index data ready for upload.
type Mesh struct {
	Name   string
	Data   core.MeshData
	Mode   gpu.PrimitiveMode
	Bounds AABB
}

// NewMesh wraps vertices and indices as a triangle mesh and computes its
// bounds.
func NewMesh(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		Name: name,
		Data: core.MeshData{Vertices: vertices, Indices: indices},
		Mode: gpu.Triangles,
	}
	if len(vertices) > 0 {
		m.Bounds = computeLocalAABB(vertices)
	}
	return m
}

func computeLocalAABB(vertices []core.Vertex) AABB {
	box := AABB{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		box = box.Union(AABB{Min: v.Position, Max: v.Position})
	}
	return box
}

// NewQuadMesh returns a square in the XY plane spanning [-ext, ext],
// facing +Z.
func NewQuadMesh(ext float32) *Mesh {
	vertices, indices := appendFace(nil, nil, math.Vec3Zero, math.Vec3Front, math.Vec3Right, math.Vec3Up, ext)
	return NewMesh("Quad", vertices, indices)
}

// NewCubeMesh returns a cube spanning [-ext, ext] on every axis with
// outward normals and per-face uvs.
func NewCubeMesh(ext float32) *Mesh {
	faces := []struct{ n, u, v math.Vec3 }{
		{math.Vec3{X: 1}, math.Vec3{Z: -1}, math.Vec3Up},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3Up},
		{math.Vec3Up, math.Vec3Right, math.Vec3{Z: -1}},
		{math.Vec3{Y: -1}, math.Vec3Right, math.Vec3{Z: 1}},
		{math.Vec3Front, math.Vec3Right, math.Vec3Up},
		{math.Vec3Back, math.Vec3{X: -1}, math.Vec3Up},
	}
	var (
		vertices []core.Vertex
		indices  []uint32
	)
	for _, f := range faces {
		vertices, indices = appendFace(vertices, indices, f.n.Mul(ext), f.n, f.u, f.v, ext)
	}
	return NewMesh("Cube", vertices, indices)
}

// appendFace adds a square centred on center spanned by u and v. Triangles
// wind counter-clockwise seen from the side n points to, with u×v = n.
func appendFace(vertices []core.Vertex, indices []uint32, center, n, u, v math.Vec3, ext float32) ([]core.Vertex, []uint32) {
	base := uint32(len(vertices))
	corners := [4]math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	for _, c := range corners {
		pos := center.Add(u.Mul(c.X * ext)).Add(v.Mul(c.Y * ext))
		vertices = append(vertices, core.Vertex{
			Position: pos,
			Normal:   n,
			UV:       math.Vec2{X: (c.X + 1) / 2, Y: (c.Y + 1) / 2},
		})
	}
	indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	return vertices, indices
}

// NewSphereMesh returns a UV sphere of the given radius with lat segments
// around the equator and lng rings from pole to pole.
func NewSphereMesh(lat, lng int, radius float32) *Mesh {
	lat = max(lat, 3)
	lng = max(lng, 2)

	vertices := make([]core.Vertex, 0, (lat+1)*(lng+1))
	for ring := 0; ring <= lng; ring++ {
		sinPhi, cosPhi := math32.Sincos(float32(ring) * math32.Pi / float32(lng))

		for seg := 0; seg <= lat; seg++ {
			sinTheta, cosTheta := math32.Sincos(float32(seg) * 2 * math32.Pi / float32(lat))

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: 1 - float32(seg)/float32(lat), Y: 1 - float32(ring)/float32(lng)},
			})
		}
	}

	indices := make([]uint32, 0, 6*lat*lng)
	for ring := 0; ring < lng; ring++ {
		for seg := 0; seg < lat; seg++ {
			current := uint32(ring*(lat+1) + seg)
			next := current + uint32(lat+1)

			indices = append(indices, current+1, next, current)
			indices = append(indices, current+1, next+1, next)
		}
	}

	return NewMesh("Sphere", vertices, indices)
}
