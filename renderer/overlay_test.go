package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jelly/gpu"
	"jelly/math"
)

func TestOverlayDrawsAfterComposite(t *testing.T) {
	r, rec := newRenderer(t)
	img, err := r.Textures().Solid(math.NewVec3(0, 1, 0))
	require.NoError(t, err)

	o := r.Overlay()
	o.SetColor(1, 0, 0, 0.5)
	o.FillRectangle(110, 70, 10, 20)
	o.SetStrokeSize(3)
	o.DrawEllipse(400, 300, 50, 30)
	o.DrawImage(img, 0, 0, 64, 64)
	o.DrawImage(nil, 0, 0, 64, 64)
	require.Equal(t, 3, o.Len())

	rec.ResetLog()
	require.NoError(t, r.Render())

	prog := r.overlayShader.Program()
	draws := rec.DrawsWith(prog)
	require.Len(t, draws, 3)
	for _, d := range draws {
		assert.Equal(t, gpu.DefaultFramebuffer, d.Framebuffer)
		assert.Equal(t, r.Mesh(MeshQuad).ID(), d.Mesh)
	}
	last := rec.Draws[len(rec.Draws)-1]
	assert.Equal(t, prog, last.Program, "overlay draws come last")
	assert.Equal(t, 3, r.Stats().OverlayDraws)
	assert.Zero(t, o.Len())

	proj, ok := rec.LastUniform(prog, uniformProjection)
	require.True(t, ok)
	assert.Equal(t, math.Mat4Orthographic(0, 800, 600, 0, -1, 1), proj)

	rects := rec.UniformHistory(prog, uniformRectangle)
	// corners are normalised to min/max
	assert.Contains(t, rects, math.NewVec4(10, 20, 110, 70))
	assert.Contains(t, rects, math.NewVec4(375, 285, 425, 315))
	assert.Contains(t, rects, math.NewVec4(0, 0, 64, 64))
	assert.Contains(t, rec.UniformHistory(prog, uniformColor), math.NewVec4(1, 0, 0, 0.5))
	assert.Contains(t, rec.UniformHistory(prog, uniformStroke), float32(3))
	assert.Contains(t, rec.UniformHistory(prog, uniformPixelSize), math.NewVec2(50, 30))

	states := drawsOf(replayDraws(rec), prog)
	require.Len(t, states, 3)
	for _, s := range states {
		assert.True(t, s.blending)
		assert.False(t, s.culling)
		assert.Equal(t, gpu.DepthAlways, s.depth)
	}
	unit, ok := r.overlayShader.SamplerUnit(samplerImage)
	require.True(t, ok)
	assert.Equal(t, r.EmptyTexture().ID(), states[0].units[unit])
	assert.Equal(t, img.ID(), states[2].units[unit])

	// pipeline defaults are back for the next frame
	assert.False(t, rec.Blending())
	assert.True(t, rec.Culling())
	assert.Equal(t, gpu.DepthLess, rec.DepthFunc())
}

func TestOverlayEmptyQueueIsFree(t *testing.T) {
	r, rec := newRenderer(t)
	r.Overlay().FillRectangle(0, 0, 10, 10)
	require.NoError(t, r.Render())

	rec.ResetLog()
	require.NoError(t, r.Render())
	assert.Empty(t, rec.DrawsWith(r.overlayShader.Program()))
	assert.Zero(t, rec.Count("SetBlending"))
	assert.Zero(t, r.Stats().OverlayDraws)
}

func TestOverlayPen(t *testing.T) {
	r, _ := newRenderer(t)
	o := r.Overlay()
	assert.Equal(t, math.NewVec4(0, 0, 0, 1), o.color)
	assert.Equal(t, float32(1), o.stroke)

	o.SetGray(0.25)
	o.SetStrokeSize(0)
	o.FillEllipse(10, 10, 4, 8)
	require.Len(t, o.cmds, 1)
	c := o.cmds[0]
	assert.Equal(t, shapeFillEllipse, c.shape)
	assert.Equal(t, math.NewVec4(0.25, 0.25, 0.25, 1), c.color)
	assert.Equal(t, float32(1), c.stroke)
	assert.Equal(t, math.NewVec4(8, 6, 12, 14), c.rect)

	o.DrawRectangle(0, 0, 5, 5)
	o.Discard()
	assert.Zero(t, o.Len())
}

func TestOverlayKeptWhenFrameFails(t *testing.T) {
	r, _ := newRenderer(t)
	r.Overlay().FillRectangle(0, 0, 10, 10)
	r.targets.bloom[0].Delete()

	assert.Error(t, r.Render())
	assert.Equal(t, 1, r.Overlay().Len())
}
