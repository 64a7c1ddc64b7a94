package gpu

import (
	"fmt"
	"log/slog"

	"jelly/core"
)

// Context tracks the render target, viewport and active shader of one
// graphics context. All calls must come from the thread owning the context.
type Context struct {
	backend Backend
	surface Surface
	logger  *slog.Logger

	active      *Shader
	framebuffer *Framebuffer
	viewportW   int
	viewportH   int
}

// NewContext wraps backend. A nil logger uses slog.Default.
func NewContext(backend Backend, surface Surface, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{
		backend: backend,
		surface: surface,
		logger:  logger,
	}
}

func (c *Context) Backend() Backend { return c.backend }

func (c *Context) Logger() *slog.Logger { return c.logger }

// Size returns the current size of the default framebuffer.
func (c *Context) Size() (int, int) {
	return c.surface.Size()
}

// ActivateShader makes s the active shader, deactivating the previous one.
// Activating the already active shader is a no-op.
func (c *Context) ActivateShader(s *Shader) {
	if c.active == s {
		return
	}
	if c.active != nil {
		c.active.deactivate()
	}
	c.active = s
	if s != nil {
		s.activate()
	}
}

func (c *Context) DeactivateShader() {
	c.ActivateShader(nil)
}

func (c *Context) ActiveShader() *Shader {
	return c.active
}

// SetFramebuffer binds fb as the render target. With no colour buffers
// listed every attached colour texture is written.
func (c *Context) SetFramebuffer(fb *Framebuffer, colorBuffers ...int) error {
	if len(colorBuffers) == 0 {
		colorBuffers = fb.colorIndices()
	}
	if err := c.backend.BindFramebuffer(fb.id, colorBuffers); err != nil {
		return fmt.Errorf("bind framebuffer %d: %w", fb.id, err)
	}
	c.framebuffer = fb
	c.setViewport(fb.width, fb.height)
	return nil
}

// ResetFramebuffer binds the default framebuffer sized to the surface.
func (c *Context) ResetFramebuffer() error {
	if err := c.backend.BindFramebuffer(DefaultFramebuffer, []int{0}); err != nil {
		return fmt.Errorf("bind default framebuffer: %w", err)
	}
	c.framebuffer = nil
	c.setViewport(c.surface.Size())
	return nil
}

// Framebuffer returns the bound target, nil for the default framebuffer.
func (c *Context) Framebuffer() *Framebuffer {
	return c.framebuffer
}

func (c *Context) setViewport(w, h int) {
	if w == c.viewportW && h == c.viewportH {
		return
	}
	c.backend.Viewport(w, h)
	c.viewportW, c.viewportH = w, h
}

// BindTexture binds t to unit. A nil texture unbinds the unit.
func (c *Context) BindTexture(t *Texture, unit int) {
	var id TextureID
	if t != nil {
		id = t.id
	}
	c.backend.BindTexture(id, unit)
}

func (c *Context) RenderMesh(m *Mesh) {
	c.backend.DrawMesh(m.id, m.mode, m.count, m.indexed)
}

func (c *Context) Clear(color core.Color) {
	c.backend.Clear(color)
}

func (c *Context) SetDepthFunc(fn DepthFunc) {
	c.backend.SetDepthFunc(fn)
}

func (c *Context) SetCulling(enabled bool) {
	c.backend.SetCulling(enabled)
}

func (c *Context) SetBlending(enabled bool) {
	c.backend.SetBlending(enabled)
}
