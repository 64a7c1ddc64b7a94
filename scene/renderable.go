package scene

import (
	"slices"

	"jelly/math"
)

// Renderable is a node of the scene graph. It references a mesh and a
// material by index into the renderer's resource tables, carries any
// number of lights and owns its children. Parent links do not own.
type Renderable struct {
	Name string

	local math.Mat4
	world math.Mat4
	dirty bool

	mesh     int
	material int

	lights   []*Light
	parent   *Renderable
	children []*Renderable
}

// NewRenderable returns a detached node with identity transforms and no
// mesh or material.
func NewRenderable() *Renderable {
	return &Renderable{
		local:    math.Mat4Identity(),
		world:    math.Mat4Identity(),
		mesh:     -1,
		material: -1,
	}
}

// CreateChild appends a new node to r's children. The child starts dirty
// so the next propagation gives it r's world transform.
func (r *Renderable) CreateChild() *Renderable {
	c := NewRenderable()
	c.parent = r
	c.dirty = true
	r.children = append(r.children, c)
	return c
}

// Remove detaches r and its subtree from its parent.
func (r *Renderable) Remove() {
	if r.parent == nil {
		return
	}
	p := r.parent
	if i := slices.Index(p.children, r); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	r.parent = nil
}

func (r *Renderable) Parent() *Renderable { return r.parent }

func (r *Renderable) Children() []*Renderable { return r.children }

func (r *Renderable) SetMesh(i int) { r.mesh = i }

// Mesh returns the mesh index, -1 when unset.
func (r *Renderable) Mesh() int { return r.mesh }

func (r *Renderable) SetMaterial(i int) { r.material = i }

// Material returns the material index, -1 when unset.
func (r *Renderable) Material() int { return r.material }

// SetLocalTransform stores m and marks r dirty. World transforms are not
// touched until the next UpdateChildWorldTransforms.
func (r *Renderable) SetLocalTransform(m math.Mat4) {
	r.local = m
	r.dirty = true
}

func (r *Renderable) LocalTransform() math.Mat4 { return r.local }

// WorldTransform is only valid after propagation has run since the last
// change to r or any ancestor.
func (r *Renderable) WorldTransform() math.Mat4 { return r.world }

func (r *Renderable) IsDirty() bool { return r.dirty }

// AttachLight copies l onto r and returns its index.
func (r *Renderable) AttachLight(l Light) int {
	r.lights = append(r.lights, &l)
	return len(r.lights) - 1
}

// AttachNewLight attaches a default light of type t and returns it with
// its index.
func (r *Renderable) AttachNewLight(t LightType) (*Light, int) {
	l := NewLight(t)
	i := r.AttachLight(l)
	return r.lights[i], i
}

func (r *Renderable) Light(i int) *Light { return r.lights[i] }

func (r *Renderable) Lights() []*Light { return r.lights }

// UpdateChildWorldTransforms refreshes world transforms of the subtree in
// one depth-first pass. A child is recomputed when it or r is dirty and is
// then marked dirty itself so the change cascades to its descendants and
// lights. A node without a parent takes its local transform as its world
// transform.
func (r *Renderable) UpdateChildWorldTransforms() {
	if r.parent == nil && r.dirty {
		r.world = r.local
	}

	for _, l := range r.lights {
		if r.dirty || l.dirty {
			l.updateWorldTransform(r.world)
		}
	}

	for _, c := range r.children {
		if r.dirty || c.dirty {
			c.world = c.local.Mul(r.world)
			c.dirty = true
		}
		c.UpdateChildWorldTransforms()
	}

	r.dirty = false
}

// ForEach visits r and its descendants depth-first, parents before
// children.
func (r *Renderable) ForEach(fn func(*Renderable)) {
	fn(r)
	for _, c := range r.children {
		c.ForEach(fn)
	}
}
