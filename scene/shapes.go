package scene

import (
	"github.com/chewxy/math32"

	"jelly/core"
	"jelly/math"
)

// NewPlaneMesh returns a width×depth plane in XZ facing +Y, split into
// subdivisions² quads.
func NewPlaneMesh(width, depth float32, subdivisions int) *Mesh {
	subdivisions = max(subdivisions, 1)
	row := subdivisions + 1

	vertices := make([]core.Vertex, 0, row*row)
	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: (u - 0.5) * width, Z: (v - 0.5) * depth},
				Normal:   math.Vec3Up,
				UV:       math.Vec2{X: u, Y: v},
			})
		}
	}

	indices := make([]uint32, 0, 6*subdivisions*subdivisions)
	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			tl := uint32(z*row + x)
			bl := tl + uint32(row)
			indices = append(indices, tl, bl, tl+1, tl+1, bl, bl+1)
		}
	}
	return NewMesh("Plane", vertices, indices)
}

// NewTorusMesh returns a torus around the Y axis. major is the distance
// from the centre to the tube centre, minor the tube radius.
func NewTorusMesh(major, minor float32, majorSegments, minorSegments int) *Mesh {
	majorSegments = max(majorSegments, 3)
	minorSegments = max(minorSegments, 3)
	row := minorSegments + 1

	vertices := make([]core.Vertex, 0, (majorSegments+1)*row)
	for i := 0; i <= majorSegments; i++ {
		sinTheta, cosTheta := math32.Sincos(float32(i) * 2 * math32.Pi / float32(majorSegments))
		for j := 0; j <= minorSegments; j++ {
			sinPhi, cosPhi := math32.Sincos(float32(j) * 2 * math32.Pi / float32(minorSegments))

			normal := math.Vec3{X: cosPhi * cosTheta, Y: sinPhi, Z: cosPhi * sinTheta}
			ring := math.Vec3{X: major * cosTheta, Z: major * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: ring.Add(normal.Mul(minor)),
				Normal:   normal,
				UV:       math.Vec2{X: float32(i) / float32(majorSegments), Y: float32(j) / float32(minorSegments)},
			})
		}
	}

	indices := make([]uint32, 0, 6*majorSegments*minorSegments)
	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			current := uint32(i*row + j)
			next := current + uint32(row)
			indices = append(indices, current, current+1, next)
			indices = append(indices, current+1, next+1, next)
		}
	}
	return NewMesh("Torus", vertices, indices)
}
