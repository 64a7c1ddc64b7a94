package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jelly/math"
)

const eps = 1e-4

func translation(x, y, z float32) math.Mat4 {
	return math.Mat4Translation(math.NewVec3(x, y, z))
}

func TestNewRenderable(t *testing.T) {
	r := NewRenderable()
	assert.Equal(t, -1, r.Mesh())
	assert.Equal(t, -1, r.Material())
	assert.False(t, r.IsDirty())
	assert.Equal(t, math.Mat4Identity(), r.LocalTransform())
	assert.Equal(t, math.Mat4Identity(), r.WorldTransform())
	assert.Nil(t, r.Parent())
}

func TestPropagateWorldTransforms(t *testing.T) {
	root := NewRenderable()
	root.SetLocalTransform(translation(0, 0, -5))
	child := root.CreateChild()
	child.SetLocalTransform(translation(1, 0, 0))
	grandchild := child.CreateChild()
	grandchild.SetLocalTransform(translation(0, 2, 0))

	// nothing moves until propagation runs
	assert.Equal(t, math.Mat4Identity(), child.WorldTransform())

	root.UpdateChildWorldTransforms()

	assert.True(t, root.WorldTransform().ApproxEqual(translation(0, 0, -5), eps))
	assert.True(t, child.WorldTransform().ApproxEqual(translation(1, 0, -5), eps))
	assert.True(t, grandchild.WorldTransform().ApproxEqual(translation(1, 2, -5), eps))

	root.ForEach(func(r *Renderable) {
		assert.False(t, r.IsDirty())
	})
}

func TestPropagateCascadesFromMiddle(t *testing.T) {
	root := NewRenderable()
	mid := root.CreateChild()
	leaf := mid.CreateChild()
	leaf.SetLocalTransform(translation(0, 0, 1))
	root.UpdateChildWorldTransforms()

	mid.SetLocalTransform(math.Mat4Scale(math.Splat3(2)))
	root.UpdateChildWorldTransforms()

	assert.True(t, leaf.WorldTransform().Translation().ApproxEqual(math.NewVec3(0, 0, 2), eps))
}

func TestPropagateOnlyDirtyChild(t *testing.T) {
	root := NewRenderable()
	root.SetLocalTransform(translation(3, 0, 0))
	a := root.CreateChild()
	b := root.CreateChild()
	root.UpdateChildWorldTransforms()

	b.SetLocalTransform(translation(0, 1, 0))
	root.UpdateChildWorldTransforms()

	assert.True(t, a.WorldTransform().ApproxEqual(translation(3, 0, 0), eps))
	assert.True(t, b.WorldTransform().ApproxEqual(translation(3, 1, 0), eps))
}

func TestPropagateIsIdempotent(t *testing.T) {
	root := NewRenderable()
	root.SetLocalTransform(math.Mat4RotationY(0.7).Mul(translation(1, 2, 3)))
	child := root.CreateChild()
	child.SetLocalTransform(math.Mat4Scale(math.NewVec3(1, 2, 1)))
	l, _ := child.AttachNewLight(LightPoint)
	l.SetLocalPosition(math.NewVec3(0, 1, 0))

	root.UpdateChildWorldTransforms()
	world := child.WorldTransform()
	pos := l.WorldPosition()

	root.UpdateChildWorldTransforms()
	assert.Equal(t, world, child.WorldTransform())
	assert.Equal(t, pos, l.WorldPosition())
}

func TestLightFollowsNode(t *testing.T) {
	root := NewRenderable()
	root.SetLocalTransform(translation(0, 0, -5))
	node := root.CreateChild()
	node.SetLocalTransform(math.Mat4RotationY(math32.Pi / 2).Mul(translation(1, 0, 0)))

	l, idx := node.AttachNewLight(LightSpot)
	assert.Equal(t, 0, idx)
	assert.True(t, l.IsDirty())
	l.SetLocalPosition(math.NewVec3(0, 1, 0)).SetLocalDirection(math.Vec3Front)

	root.UpdateChildWorldTransforms()

	m := node.WorldTransform()
	assert.False(t, l.IsDirty())
	assert.True(t, l.WorldPosition().ApproxEqual(m.MulPoint(l.LocalPosition()), eps))
	assert.True(t, l.WorldPosition().ApproxEqual(math.NewVec3(1, 1, -5), eps))
	assert.True(t, l.WorldDirection().ApproxEqual(m.MulDir(math.Vec3Front), eps))
	assert.InDelta(t, 1, l.WorldDirection().Length(), eps)
}

func TestDirtyLightOnCleanNode(t *testing.T) {
	root := NewRenderable()
	root.SetLocalTransform(translation(2, 0, 0))
	root.UpdateChildWorldTransforms()

	l, _ := root.AttachNewLight(LightPoint)
	l.SetLocalPosition(math.NewVec3(0, 0, 1))
	require.False(t, root.IsDirty())

	root.UpdateChildWorldTransforms()
	assert.True(t, l.WorldPosition().ApproxEqual(math.NewVec3(2, 0, 1), eps))
}

func TestChildCreatedAfterPropagation(t *testing.T) {
	root := NewRenderable()
	parent := root.CreateChild()
	parent.SetLocalTransform(translation(0, 0, -5))
	root.UpdateChildWorldTransforms()
	require.False(t, parent.IsDirty())

	late := parent.CreateChild()
	late.SetLocalTransform(translation(1, 0, 0))
	assert.True(t, late.IsDirty())
	root.UpdateChildWorldTransforms()

	assert.True(t, late.WorldTransform().ApproxEqual(translation(1, 0, -5), eps))

	// a child without a local transform still inherits the parent's
	plain := parent.CreateChild()
	root.UpdateChildWorldTransforms()
	assert.True(t, plain.WorldTransform().ApproxEqual(translation(0, 0, -5), eps))
}

func TestNewLightDefaults(t *testing.T) {
	r := NewRenderable()
	l, _ := r.AttachNewLight(LightDirectional)
	r.UpdateChildWorldTransforms()

	assert.Equal(t, LightDirectional, l.Type())
	assert.Equal(t, math.Vec3One, l.Color())
	assert.Equal(t, math.Vec3Front, l.WorldDirection())
	assert.Equal(t, math.Vec3Zero, l.WorldPosition())

	inner, outer := l.Cutoff()
	assert.Less(t, inner, outer)
	assert.Equal(t, "spot", LightSpot.String())
}

func TestAttachLightCopies(t *testing.T) {
	r := NewRenderable()
	l := NewLight(LightPoint)
	l.SetColor(math.NewVec3(4, 4, 4)).SetAttenuation(1, 0.1, 0.01)

	i := r.AttachLight(l)
	l.SetColor(math.Vec3Zero)

	assert.Equal(t, math.NewVec3(4, 4, 4), r.Light(i).Color())
	c, lin, q := r.Light(i).Attenuation()
	assert.Equal(t, [3]float32{1, 0.1, 0.01}, [3]float32{c, lin, q})
	assert.Len(t, r.Lights(), 1)
}

func TestRemove(t *testing.T) {
	root := NewRenderable()
	a := root.CreateChild()
	b := root.CreateChild()
	b.CreateChild()

	b.Remove()
	assert.Equal(t, []*Renderable{a}, root.Children())
	assert.Nil(t, b.Parent())
	assert.Len(t, b.Children(), 1)

	// detached root is a no-op
	root.Remove()
	assert.Len(t, root.Children(), 1)
}

func TestForEachPreOrder(t *testing.T) {
	root := NewRenderable()
	root.Name = "root"
	a := root.CreateChild()
	a.Name = "a"
	a.CreateChild().Name = "a1"
	root.CreateChild().Name = "b"

	var names []string
	root.ForEach(func(r *Renderable) { names = append(names, r.Name) })
	assert.Equal(t, []string{"root", "a", "a1", "b"}, names)
}
