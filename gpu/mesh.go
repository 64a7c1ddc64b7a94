package gpu

import (
	"fmt"

	"jelly/core"
)

// Mesh is vertex and index data resident on the GPU.
type Mesh struct {
	ctx     *Context
	id      MeshID
	mode    PrimitiveMode
	count   int
	indexed bool
}

// NewMesh uploads data. Without indices the vertices are drawn in order.
func NewMesh(ctx *Context, data core.MeshData, mode PrimitiveMode) (*Mesh, error) {
	if len(data.Vertices) == 0 {
		return nil, fmt.Errorf("create mesh: no vertices")
	}
	id, err := ctx.backend.UploadMesh(data)
	if err != nil {
		return nil, fmt.Errorf("create mesh: %w", err)
	}
	m := &Mesh{ctx: ctx, id: id, mode: mode, count: len(data.Vertices)}
	if len(data.Indices) > 0 {
		m.count, m.indexed = len(data.Indices), true
	}
	return m, nil
}

func (m *Mesh) ID() MeshID { return m.id }

func (m *Mesh) Mode() PrimitiveMode { return m.mode }

// Count is the number of indices, or vertices for unindexed meshes.
func (m *Mesh) Count() int { return m.count }

func (m *Mesh) Delete() {
	m.ctx.backend.DeleteMesh(m.id)
}
