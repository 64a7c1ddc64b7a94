package gpu

import (
	"fmt"
)

// Framebuffer is an offscreen render target. Every attachment must match
// the framebuffer's size.
type Framebuffer struct {
	ctx    *Context
	id     FramebufferID
	width  int
	height int

	colors       [MaxColorAttachments]*Texture
	depth        *Texture
	depthStencil bool
}

func NewFramebuffer(ctx *Context, width, height int) (*Framebuffer, error) {
	id, err := ctx.backend.CreateFramebuffer()
	if err != nil {
		return nil, fmt.Errorf("create framebuffer: %w", err)
	}
	return &Framebuffer{ctx: ctx, id: id, width: width, height: height}, nil
}

func (f *Framebuffer) ID() FramebufferID { return f.id }

func (f *Framebuffer) Size() (int, int) { return f.width, f.height }

func (f *Framebuffer) checkSize(t *Texture) error {
	if t.width != f.width || t.height != f.height {
		return fmt.Errorf("%w: texture %dx%d, framebuffer %dx%d",
			ErrAttachmentSize, t.width, t.height, f.width, f.height)
	}
	return nil
}

func (f *Framebuffer) AttachColor(index int, t *Texture) error {
	if index < 0 || index >= MaxColorAttachments {
		return fmt.Errorf("attach color: index %d out of range", index)
	}
	if err := f.checkSize(t); err != nil {
		return fmt.Errorf("attach color %d: %w", index, err)
	}
	f.ctx.backend.AttachTexture(f.id, ColorAttachment(index), t.id)
	f.colors[index] = t
	return nil
}

func (f *Framebuffer) AttachDepth(t *Texture) error {
	if err := f.checkSize(t); err != nil {
		return fmt.Errorf("attach depth: %w", err)
	}
	f.ctx.backend.AttachTexture(f.id, AttachmentDepth, t.id)
	f.depth, f.depthStencil = t, false
	return nil
}

func (f *Framebuffer) AttachDepthStencil(t *Texture) error {
	if err := f.checkSize(t); err != nil {
		return fmt.Errorf("attach depth-stencil: %w", err)
	}
	f.ctx.backend.AttachTexture(f.id, AttachmentDepthStencil, t.id)
	f.depth, f.depthStencil = t, true
	return nil
}

// ColorTexture returns the texture at colour attachment index, or nil.
func (f *Framebuffer) ColorTexture(index int) *Texture {
	if index < 0 || index >= MaxColorAttachments {
		return nil
	}
	return f.colors[index]
}

func (f *Framebuffer) DepthTexture() *Texture {
	return f.depth
}

func (f *Framebuffer) colorIndices() []int {
	var out []int
	for i, t := range f.colors {
		if t != nil {
			out = append(out, i)
		}
	}
	return out
}

// Delete releases the framebuffer object. Attached textures are owned by
// the caller.
func (f *Framebuffer) Delete() {
	if f.ctx.framebuffer == f {
		f.ctx.framebuffer = nil
	}
	f.ctx.backend.DeleteFramebuffer(f.id)
}
