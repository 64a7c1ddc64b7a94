package gpu_test

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"jelly/core"
	"jelly/gpu"
	"jelly/gpu/gputest"
	"jelly/math"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(t *testing.T) (*gpu.Context, *gputest.Recorder) {
	t.Helper()
	rec := gputest.NewRecorder()
	return gpu.NewContext(rec, &gputest.Surface{Width: 800, Height: 600}, nil), rec
}

func newShader(t *testing.T, ctx *gpu.Context) *gpu.Shader {
	t.Helper()
	sh, err := gpu.NewShader(ctx, "vs", "fs")
	require.NoError(t, err)
	return sh
}

func TestUniformReplayOnActivate(t *testing.T) {
	ctx, rec := newContext(t)
	sh := newShader(t, ctx)

	lightColor := math.NewVec3(1, 0.5, 0.25)
	sh.SetVec3("u_PointLights[0].color", lightColor)
	assert.Empty(t, rec.Uniforms, "inactive shader must not submit")

	ctx.ActivateShader(sh)
	assert.Equal(t, []any{lightColor}, rec.UniformHistory(sh.Program(), "u_PointLights[0].color"))

	// Activating the active shader again does not replay.
	ctx.ActivateShader(sh)
	assert.Len(t, rec.UniformHistory(sh.Program(), "u_PointLights[0].color"), 1)
}

func TestUniformSubmittedWhileActive(t *testing.T) {
	ctx, rec := newContext(t)
	sh := newShader(t, ctx)
	ctx.ActivateShader(sh)

	sh.SetFloat("u_Exposure", 2)
	sh.SetInt("u_Count", 3)
	sh.SetBool("u_Horizontal", true)
	sh.SetMat4("u_ModelMatrix", math.Mat4Identity())

	v, ok := rec.LastUniform(sh.Program(), "u_Exposure")
	require.True(t, ok)
	assert.Equal(t, float32(2), v)
	v, _ = rec.LastUniform(sh.Program(), "u_Horizontal")
	assert.Equal(t, int32(1), v)
	v, _ = rec.LastUniform(sh.Program(), "u_ModelMatrix")
	assert.Equal(t, math.Mat4Identity(), v)
}

func TestActivateDeactivatesPrevious(t *testing.T) {
	ctx, rec := newContext(t)
	a := newShader(t, ctx)
	b := newShader(t, ctx)

	ctx.ActivateShader(a)
	a.SetFloat("u_Gamma", 2.2)
	ctx.ActivateShader(b)
	assert.False(t, a.IsActive())
	assert.True(t, b.IsActive())
	assert.Same(t, b, ctx.ActiveShader())

	// Set while inactive, then replayed when a comes back.
	a.SetFloat("u_Gamma", 1.8)
	assert.Equal(t, []any{float32(2.2)}, rec.UniformHistory(a.Program(), "u_Gamma"))
	ctx.ActivateShader(a)
	assert.Equal(t, []any{float32(2.2), float32(1.8)}, rec.UniformHistory(a.Program(), "u_Gamma"))
	assert.Equal(t, a.Program(), rec.CurrentProgram())

	ctx.DeactivateShader()
	assert.Nil(t, ctx.ActiveShader())
	assert.False(t, a.IsActive())
}

func TestUniformLocationCached(t *testing.T) {
	ctx, rec := newContext(t)
	sh := newShader(t, ctx)

	for i := 0; i < 5; i++ {
		sh.SetFloat("u_Shininess", float32(i))
	}
	assert.Equal(t, 1, rec.Count("UniformLocation"))
	assert.Equal(t, sh.UniformLocation("u_Shininess"), sh.UniformLocation("u_Shininess"))
}

func TestMissingUniformIgnored(t *testing.T) {
	ctx, rec := newContext(t)
	rec.Missing["u_Unused"] = true
	sh := newShader(t, ctx)
	ctx.ActivateShader(sh)

	sh.SetVec3("u_Unused", math.Vec3One)
	sh.SetVec3("u_Unused", math.Vec3One)
	assert.Equal(t, int32(-1), sh.UniformLocation("u_Unused"))
	assert.Empty(t, rec.Uniforms)
	assert.Equal(t, 1, rec.Count("UniformLocation"))
}

func TestSamplerUnitsStable(t *testing.T) {
	ctx, rec := newContext(t)
	sh := newShader(t, ctx)
	t1, err := gpu.NewSolidTexture(ctx, math.Vec3One)
	require.NoError(t, err)
	t2, err := gpu.NewSolidTexture(ctx, math.Vec3Zero)
	require.NoError(t, err)

	sh.SetSampler("u_TexColorBuffer", t1)
	sh.SetSampler("u_TexBloomBuffer", t2)
	sh.SetSampler("u_TexColorBuffer", t2)

	unit, ok := sh.SamplerUnit("u_TexColorBuffer")
	require.True(t, ok)
	assert.Equal(t, 0, unit)
	unit, _ = sh.SamplerUnit("u_TexBloomBuffer")
	assert.Equal(t, 1, unit)
	_, ok = sh.SamplerUnit("u_Nothing")
	assert.False(t, ok)

	ctx.ActivateShader(sh)
	assert.Equal(t, t2.ID(), rec.BoundTexture(0))
	assert.Equal(t, t2.ID(), rec.BoundTexture(1))
	v, _ := rec.LastUniform(sh.Program(), "u_TexBloomBuffer")
	assert.Equal(t, int32(1), v)

	// Rebinding while active binds immediately on the same unit.
	sh.SetSampler("u_TexBloomBuffer", t1)
	assert.Equal(t, t1.ID(), rec.BoundTexture(1))
}

func TestShaderCompileError(t *testing.T) {
	ctx, rec := newContext(t)
	rec.CompileError = func(vs, fs string) error {
		return errors.Join(gpu.ErrShaderCompile, errors.New("0:1: syntax error"))
	}
	_, err := gpu.NewShader(ctx, "vs", "fs")
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.ErrShaderCompile)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestFramebufferAttachmentSize(t *testing.T) {
	ctx, _ := newContext(t)
	fb, err := gpu.NewFramebuffer(ctx, 800, 600)
	require.NoError(t, err)

	small, err := gpu.NewTexture(ctx, gpu.TextureDesc{Width: 400, Height: 300, Format: gpu.FormatRGBA16F}, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, fb.AttachColor(0, small), gpu.ErrAttachmentSize)
	assert.ErrorIs(t, fb.AttachDepth(small), gpu.ErrAttachmentSize)
	assert.ErrorIs(t, fb.AttachDepthStencil(small), gpu.ErrAttachmentSize)
	assert.Error(t, fb.AttachColor(gpu.MaxColorAttachments, small))
	assert.Nil(t, fb.ColorTexture(0))
}

func TestSetFramebuffer(t *testing.T) {
	ctx, rec := newContext(t)
	fb, err := gpu.NewFramebuffer(ctx, 400, 300)
	require.NoError(t, err)

	// No attachments yet.
	err = ctx.SetFramebuffer(fb)
	assert.ErrorIs(t, err, gpu.ErrIncompleteFramebuffer)

	c0, _ := gpu.NewTexture(ctx, gpu.TextureDesc{Width: 400, Height: 300, Format: gpu.FormatRGBA16F}, nil)
	c1, _ := gpu.NewTexture(ctx, gpu.TextureDesc{Width: 400, Height: 300, Format: gpu.FormatRGBA16F}, nil)
	depth, _ := gpu.NewTexture(ctx, gpu.TextureDesc{Width: 400, Height: 300, Format: gpu.FormatDepth}, nil)
	require.NoError(t, fb.AttachColor(0, c0))
	require.NoError(t, fb.AttachColor(1, c1))
	require.NoError(t, fb.AttachDepth(depth))
	assert.Same(t, c1, fb.ColorTexture(1))
	assert.Same(t, depth, fb.DepthTexture())

	// Draw buffer 2 is not attached.
	assert.ErrorIs(t, ctx.SetFramebuffer(fb, 0, 2), gpu.ErrIncompleteFramebuffer)

	require.NoError(t, ctx.SetFramebuffer(fb))
	assert.Equal(t, fb.ID(), rec.BoundFramebuffer())
	assert.Same(t, fb, ctx.Framebuffer())
	w, h := rec.ViewportSize()
	assert.Equal(t, [2]int{400, 300}, [2]int{w, h})

	// Same size: the viewport is not re-issued.
	require.NoError(t, ctx.SetFramebuffer(fb, 0))
	assert.Equal(t, 1, rec.Count("Viewport"))

	require.NoError(t, ctx.ResetFramebuffer())
	assert.Equal(t, gpu.DefaultFramebuffer, rec.BoundFramebuffer())
	assert.Nil(t, ctx.Framebuffer())
	w, h = rec.ViewportSize()
	assert.Equal(t, [2]int{800, 600}, [2]int{w, h})
	assert.Equal(t, 2, rec.Count("Viewport"))
}

func TestRasterState(t *testing.T) {
	ctx, rec := newContext(t)
	assert.True(t, rec.Culling())
	assert.False(t, rec.Blending())

	ctx.SetCulling(false)
	ctx.SetBlending(true)
	ctx.SetDepthFunc(gpu.DepthAlways)
	assert.False(t, rec.Culling())
	assert.True(t, rec.Blending())
	assert.Equal(t, gpu.DepthAlways, rec.DepthFunc())

	ctx.SetBlending(false)
	assert.False(t, rec.Blending())
	assert.Equal(t, 2, rec.Count("SetBlending"))
}

func TestSolidTexture(t *testing.T) {
	ctx, rec := newContext(t)
	tex, err := gpu.NewSolidTexture(ctx, math.NewVec3(4, 0, 0))
	require.NoError(t, err)

	desc, ok := rec.TextureDesc(tex.ID())
	require.True(t, ok)
	assert.Equal(t, gpu.FormatRGB32F, desc.Format)
	w, h := tex.Size()
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)

	tex.Delete()
	_, ok = rec.TextureDesc(tex.ID())
	assert.False(t, ok)
}

func TestTextureFromImage(t *testing.T) {
	ctx, rec := newContext(t)
	img := image.NewNRGBA(image.Rect(2, 2, 5, 4))
	img.Set(2, 2, color.NRGBA{R: 255, A: 255})

	tex, err := gpu.NewTextureFromImage(ctx, img, gpu.FilterNearest)
	require.NoError(t, err)
	desc, _ := rec.TextureDesc(tex.ID())
	assert.Equal(t, gpu.TextureDesc{Width: 3, Height: 2, Format: gpu.FormatRGBA, Filter: gpu.FilterNearest}, desc)

	_, err = gpu.NewTexture(ctx, gpu.TextureDesc{Width: 0, Height: 1}, nil)
	assert.Error(t, err)
}

func TestMeshDraw(t *testing.T) {
	ctx, rec := newContext(t)
	data := core.MeshData{
		Vertices: make([]core.Vertex, 4),
		Indices:  []uint32{0, 1, 2, 2, 3, 0},
	}
	m, err := gpu.NewMesh(ctx, data, gpu.Triangles)
	require.NoError(t, err)
	assert.Equal(t, 6, m.Count())

	strip, err := gpu.NewMesh(ctx, core.MeshData{Vertices: make([]core.Vertex, 4)}, gpu.TriangleStrip)
	require.NoError(t, err)
	assert.Equal(t, 4, strip.Count())

	_, err = gpu.NewMesh(ctx, core.MeshData{}, gpu.Triangles)
	assert.Error(t, err)

	ctx.RenderMesh(m)
	ctx.RenderMesh(strip)
	require.Len(t, rec.Draws, 2)
	assert.Equal(t, m.ID(), rec.Draws[0].Mesh)
	assert.Equal(t, 4, rec.Draws[1].Count)
}

func TestTextureFormat(t *testing.T) {
	assert.Equal(t, "RGBA16F", gpu.FormatRGBA16F.String())
	assert.Equal(t, 3, gpu.FormatRGB32F.Channels())
	assert.True(t, gpu.FormatRGB32F.IsFloat())
	assert.False(t, gpu.FormatRGBA.IsFloat())
	assert.True(t, gpu.FormatDepthStencil.IsDepth())
	assert.True(t, gpu.ColorAttachment(3).IsColor())
	assert.False(t, gpu.AttachmentDepth.IsColor())
}
