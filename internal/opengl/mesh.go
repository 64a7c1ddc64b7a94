package opengl

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"jelly/core"
	"jelly/gpu"
)

// glMesh holds the OpenGL buffer objects for an uploaded mesh.
type glMesh struct {
	VAO uint32
	VBO uint32
	EBO uint32
}

// UploadMesh creates a VAO with position, normal and uv at attribute
// locations 0, 1 and 2.
func (b *Backend) UploadMesh(data core.MeshData) (gpu.MeshID, error) {
	stride := int32(unsafe.Sizeof(core.Vertex{}))
	m := &glMesh{}

	gl.GenVertexArrays(1, &m.VAO)
	gl.GenBuffers(1, &m.VBO)
	gl.BindVertexArray(m.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.VBO)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(data.Vertices)*int(stride),
		gl.Ptr(data.Vertices),
		gl.STATIC_DRAW)

	var v core.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))

	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))

	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	if len(data.Indices) > 0 {
		gl.GenBuffers(1, &m.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
			len(data.Indices)*4,
			gl.Ptr(data.Indices),
			gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	id := gpu.MeshID(m.VAO)
	b.meshes[id] = m
	return id, nil
}

func primitive(mode gpu.PrimitiveMode) uint32 {
	switch mode {
	case gpu.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.Lines:
		return gl.LINES
	case gpu.Points:
		return gl.POINTS
	default:
		return gl.TRIANGLES
	}
}

func (b *Backend) DrawMesh(id gpu.MeshID, mode gpu.PrimitiveMode, count int, indexed bool) {
	m, ok := b.meshes[id]
	if !ok {
		return
	}
	gl.BindVertexArray(m.VAO)
	if indexed {
		gl.DrawElements(primitive(mode), int32(count), gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(primitive(mode), 0, int32(count))
	}
	gl.BindVertexArray(0)
}

func (b *Backend) DeleteMesh(id gpu.MeshID) {
	m, ok := b.meshes[id]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &m.VAO)
	gl.DeleteBuffers(1, &m.VBO)
	if m.EBO != 0 {
		gl.DeleteBuffers(1, &m.EBO)
	}
	delete(b.meshes, id)
}
