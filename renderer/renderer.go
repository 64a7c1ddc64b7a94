// Package renderer draws a scene graph of Renderables through a fixed
// pipeline: geometry into an HDR colour buffer plus bright mask, skybox,
// separable gaussian bloom and a tone-mapped composite to the screen, with
// an optional 2D overlay on top.
package renderer

import (
	"fmt"
	"log/slog"

	"jelly/gpu"
	"jelly/materials"
	"jelly/math"
	"jelly/scene"
	"jelly/textures"
)

// Indices of the built-in resources created by New.
const (
	MeshQuad        = 0
	MeshCube        = 1
	MaterialDefault = 0
)

// BloomIterations is the number of horizontal+vertical blur pairs per frame.
const BloomIterations = 4

// Stats counts the work done by the most recent Render call.
type Stats struct {
	GeometryDraws  int
	SkyboxDraws    int
	BloomDraws     int
	CompositeDraws int
	OverlayDraws   int
	Triangles      int
	PointLights    int
	SpotLights     int
}

// Renderer owns the scene root, the mesh and material tables and the
// offscreen chain. It must be used from the thread owning the context.
type Renderer struct {
	ctx    *gpu.Context
	cfg    Config
	logger *slog.Logger

	root      *scene.Renderable
	meshes    []*gpu.Mesh
	materials []*materials.Material

	textures *textures.Manager
	empty    *gpu.Texture
	skybox   *gpu.Texture
	// customSky is set once SetSkybox installs a caller texture
	customSky bool

	geometryShader *gpu.Shader
	skyboxShader   *gpu.Shader
	bloomShader    *gpu.Shader
	postShader     *gpu.Shader
	overlayShader  *gpu.Shader

	overlay *Overlay

	targets *targets
	lights  lightSlots

	view       math.Mat4
	projection math.Mat4
	cameraPos  math.Vec3

	stats Stats
}

type shaderSource struct {
	dst              **gpu.Shader
	name             string
	vertex, fragment string
}

// New compiles the pipeline shaders, sizes the offscreen buffers to the
// context surface and registers the built-in quad and cube meshes and the
// default material.
func New(ctx *gpu.Context, cfg Config) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("renderer: %w", err)
	}
	r := &Renderer{
		ctx:        ctx,
		cfg:        cfg,
		logger:     cfg.logger().With("component", "renderer"),
		root:       scene.NewRenderable(),
		textures:   textures.NewManager(ctx),
		view:       math.Mat4Identity(),
		projection: math.Mat4Identity(),
	}
	r.root.Name = "root"

	if err := r.init(); err != nil {
		r.Close()
		return nil, err
	}

	w, h := ctx.Size()
	r.logger.Info("renderer ready", "width", w, "height", h, "hdr", gpu.FormatRGBA16F)
	return r, nil
}

func (r *Renderer) init() error {
	for _, s := range []shaderSource{
		{&r.geometryShader, "geometry", geometryVertexSrc, geometryFragmentSrc},
		{&r.skyboxShader, "skybox", skyboxVertexSrc, skyboxFragmentSrc},
		{&r.bloomShader, "bloom", fullscreenVertexSrc, bloomFragmentSrc},
		{&r.postShader, "post", fullscreenVertexSrc, postFragmentSrc},
		{&r.overlayShader, "overlay", overlayVertexSrc, overlayFragmentSrc},
	} {
		sh, err := gpu.NewShader(r.ctx, s.vertex, s.fragment)
		if err != nil {
			return fmt.Errorf("%s shader: %w", s.name, err)
		}
		*s.dst = sh
	}
	r.lights.sh = r.geometryShader

	var err error
	if r.empty, err = r.textures.Solid(math.Vec3Zero); err != nil {
		return fmt.Errorf("empty texture: %w", err)
	}
	if r.skybox, err = r.textures.Solid(r.cfg.skyColor()); err != nil {
		return fmt.Errorf("sky texture: %w", err)
	}

	w, h := r.ctx.Size()
	if r.targets, err = newTargets(r.ctx, w, h); err != nil {
		return fmt.Errorf("render targets: %w", err)
	}

	if _, err := r.AddMesh(scene.NewQuadMesh(1)); err != nil {
		return err
	}
	if _, err := r.AddMesh(scene.NewCubeMesh(1)); err != nil {
		return err
	}
	r.AddMaterial(materials.DefaultMaterial())
	r.overlay = newOverlay(r.overlayShader, r.meshes[MeshQuad], r.empty)

	r.postShader.SetFloat(uniformExposure, r.cfg.Exposure)
	r.postShader.SetFloat(uniformGamma, r.cfg.Gamma)
	r.geometryShader.SetVec3(uniformAmbientLight, r.cfg.ambientLight())
	return nil
}

// Root returns the scene root. It lives as long as the renderer.
func (r *Renderer) Root() *scene.Renderable { return r.root }

// CreateRenderable adds a new node under the root.
func (r *Renderer) CreateRenderable() *scene.Renderable {
	return r.root.CreateChild()
}

// AddMesh uploads m and returns its index. Indices are never reused.
func (r *Renderer) AddMesh(m *scene.Mesh) (int, error) {
	gm, err := gpu.NewMesh(r.ctx, m.Data, m.Mode)
	if err != nil {
		return -1, fmt.Errorf("add mesh %q: %w", m.Name, err)
	}
	r.meshes = append(r.meshes, gm)
	return len(r.meshes) - 1, nil
}

// AddMaterial appends m and returns its index. Indices are never reused.
func (r *Renderer) AddMaterial(m *materials.Material) int {
	r.materials = append(r.materials, m)
	return len(r.materials) - 1
}

// Mesh returns the mesh at index i, or nil.
func (r *Renderer) Mesh(i int) *gpu.Mesh {
	if i < 0 || i >= len(r.meshes) {
		return nil
	}
	return r.meshes[i]
}

// Material returns the material at index i, or nil.
func (r *Renderer) Material(i int) *materials.Material {
	if i < 0 || i >= len(r.materials) {
		return nil
	}
	return r.materials[i]
}

// Overlay returns the 2D layer drawn on top of each frame.
func (r *Renderer) Overlay() *Overlay { return r.overlay }

// Textures is the cache used for material and skybox textures.
func (r *Renderer) Textures() *textures.Manager { return r.textures }

// EmptyTexture is the 1×1 black texture bound for missing material maps.
func (r *Renderer) EmptyTexture() *gpu.Texture { return r.empty }

func (r *Renderer) SetProjectionMatrix(m math.Mat4) { r.projection = m }

func (r *Renderer) SetViewMatrix(m math.Mat4) { r.view = m }

func (r *Renderer) SetCameraPosition(p math.Vec3) { r.cameraPos = p }

func (r *Renderer) SetAmbientLight(c math.Vec3) {
	r.geometryShader.SetVec3(uniformAmbientLight, c)
}

// SetSkybox replaces the equirectangular sky texture. nil restores the
// plain sky colour.
func (r *Renderer) SetSkybox(t *gpu.Texture) {
	r.customSky = t != nil
	if t == nil {
		sky, err := r.textures.Solid(r.cfg.skyColor())
		if err != nil {
			r.logger.Error("sky texture", "err", err)
			return
		}
		t = sky
	}
	r.skybox = t
}

func (r *Renderer) SetExposure(exposure float32) {
	r.cfg.Exposure = exposure
	r.postShader.SetFloat(uniformExposure, exposure)
}

func (r *Renderer) SetGamma(gamma float32) {
	r.cfg.Gamma = gamma
	r.postShader.SetFloat(uniformGamma, gamma)
}

// ApplyConfig updates the runtime-tunable settings from cfg.
func (r *Renderer) ApplyConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg.Logger = r.cfg.Logger
	r.cfg = cfg

	r.SetExposure(cfg.Exposure)
	r.SetGamma(cfg.Gamma)
	r.SetAmbientLight(cfg.ambientLight())
	if !r.customSky {
		r.SetSkybox(nil)
	}
	return nil
}

// Stats returns counters from the most recent Render call.
func (r *Renderer) Stats() Stats { return r.stats }

// Resize rebuilds the offscreen chain for a new surface size.
func (r *Renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if r.targets != nil && r.targets.width == width && r.targets.height == height {
		return nil
	}
	t, err := newTargets(r.ctx, width, height)
	if err != nil {
		return fmt.Errorf("resize %dx%d: %w", width, height, err)
	}
	if r.targets != nil {
		r.targets.delete()
	}
	r.targets = t
	r.logger.Debug("render targets resized", "width", width, "height", height)
	return nil
}

// Render draws one frame into the default framebuffer. A frame with too
// many lights is still drawn completely; the returned error then wraps
// ErrTooManyLights. Framebuffer errors abort the frame and leave queued
// overlay shapes for the next one.
func (r *Renderer) Render() error {
	r.stats = Stats{}
	r.root.UpdateChildWorldTransforms()

	lightErr, err := r.geometryPass()
	if err != nil {
		return err
	}
	if err := r.skyboxPass(); err != nil {
		return err
	}
	bloom, err := r.bloomPass()
	if err != nil {
		return err
	}
	if err := r.compositePass(bloom); err != nil {
		return err
	}
	w, h := r.ctx.Size()
	r.stats.OverlayDraws = r.overlay.flush(r.ctx, w, h)
	if lightErr != nil {
		r.logger.Warn("lights dropped", "err", lightErr)
	}
	return lightErr
}

// geometryPass draws every renderable with a mesh into the colour and
// bright buffers. Lights are collected before the first draw so every
// object is lit by the whole frame's lights.
func (r *Renderer) geometryPass() (lightErr, err error) {
	if err := r.ctx.SetFramebuffer(r.targets.geometry, attachmentColor, attachmentBright); err != nil {
		return nil, fmt.Errorf("geometry pass: %w", err)
	}
	r.ctx.Clear(r.cfg.clearColor())

	sh := r.geometryShader
	r.ctx.ActivateShader(sh)
	sh.SetMat4(uniformViewProjMatrix, r.view.Mul(r.projection))
	sh.SetVec3(uniformCameraPosition, r.cameraPos)

	r.lights.reset()
	r.root.ForEach(func(n *scene.Renderable) {
		for _, l := range n.Lights() {
			r.lights.add(l)
		}
	})
	lightErr = r.lights.finish()
	r.stats.PointLights, r.stats.SpotLights = r.lights.point, r.lights.spot

	r.root.ForEach(func(n *scene.Renderable) {
		mesh := r.Mesh(n.Mesh())
		if mesh == nil {
			return
		}
		matIdx := n.Material()
		if matIdx < 0 {
			matIdx = MaterialDefault
		}
		mat := r.Material(matIdx)
		if mat == nil {
			return
		}

		model := n.WorldTransform()
		sh.SetMat4(uniformModelMatrix, model)
		sh.SetMat3(uniformNormalMatrix, model.NormalMatrix())
		mat.Apply(sh, r.empty)

		r.ctx.RenderMesh(mesh)
		r.stats.GeometryDraws++
		if mesh.Mode() == gpu.Triangles {
			r.stats.Triangles += mesh.Count() / 3
		}
	})
	return lightErr, nil
}

// skyboxPass draws the cube behind everything into the colour buffer only.
func (r *Renderer) skyboxPass() error {
	if err := r.ctx.SetFramebuffer(r.targets.geometry, attachmentColor); err != nil {
		return fmt.Errorf("skybox pass: %w", err)
	}
	r.ctx.SetCulling(false)
	r.ctx.SetDepthFunc(gpu.DepthLessEqual)

	sh := r.skyboxShader
	r.ctx.ActivateShader(sh)
	sh.SetMat4(uniformViewProjMatrix, r.view.WithoutTranslation().Mul(r.projection))
	sh.SetSampler(samplerSkybox, r.skybox)
	r.ctx.RenderMesh(r.meshes[MeshCube])
	r.stats.SkyboxDraws++

	r.ctx.SetDepthFunc(gpu.DepthLess)
	r.ctx.SetCulling(true)
	return nil
}

// bloomPass blurs the bright mask and returns the texture holding the
// result. Each iteration blurs horizontally into buffer 0 and vertically
// into buffer 1, which feeds the next iteration.
func (r *Renderer) bloomPass() (*gpu.Texture, error) {
	sh := r.bloomShader
	r.ctx.ActivateShader(sh)

	quad := r.meshes[MeshQuad]
	src := r.targets.bright
	for range BloomIterations {
		for axis, horizontal := range []bool{true, false} {
			if err := r.ctx.SetFramebuffer(r.targets.bloom[axis]); err != nil {
				return nil, fmt.Errorf("bloom pass: %w", err)
			}
			sh.SetBool(uniformHorizontal, horizontal)
			sh.SetSampler(samplerBright, src)
			r.ctx.RenderMesh(quad)
			r.stats.BloomDraws++
			src = r.targets.bloomTex[axis]
		}
	}
	return src, nil
}

// compositePass tone maps colour plus bloom onto the default framebuffer.
func (r *Renderer) compositePass(bloom *gpu.Texture) error {
	if err := r.ctx.ResetFramebuffer(); err != nil {
		return fmt.Errorf("composite pass: %w", err)
	}
	r.ctx.Clear(r.cfg.clearColor())

	sh := r.postShader
	r.ctx.ActivateShader(sh)
	sh.SetSampler(samplerColorBuffer, r.targets.color)
	sh.SetSampler(samplerBloomBuffer, bloom)
	r.ctx.RenderMesh(r.meshes[MeshQuad])
	r.stats.CompositeDraws++
	return nil
}

// Close releases every GPU object the renderer created. Materials added by
// the caller keep their textures; textures come from the cache and are
// released with it.
func (r *Renderer) Close() error {
	r.ctx.DeactivateShader()
	for _, sh := range []*gpu.Shader{r.geometryShader, r.skyboxShader, r.bloomShader, r.postShader, r.overlayShader} {
		if sh != nil {
			sh.Delete()
		}
	}
	for _, m := range r.meshes {
		m.Delete()
	}
	r.meshes = nil
	if r.targets != nil {
		r.targets.delete()
		r.targets = nil
	}
	r.textures.DestroyAll()
	return r.ctx.ResetFramebuffer()
}
