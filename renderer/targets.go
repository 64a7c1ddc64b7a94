package renderer

import (
	"fmt"

	"jelly/gpu"
)

// Colour attachments of the geometry framebuffer.
const (
	attachmentColor  = 0
	attachmentBright = 1
)

// targets is the offscreen chain: the geometry framebuffer with HDR colour,
// bright mask and depth, and the two bloom ping-pong framebuffers.
type targets struct {
	width, height int

	geometry *gpu.Framebuffer
	color    *gpu.Texture
	bright   *gpu.Texture
	depth    *gpu.Texture

	bloom    [2]*gpu.Framebuffer
	bloomTex [2]*gpu.Texture
}

func newTargets(ctx *gpu.Context, width, height int) (*targets, error) {
	t := &targets{width: width, height: height}
	if err := t.alloc(ctx); err != nil {
		t.delete()
		return nil, err
	}
	return t, nil
}

func (t *targets) alloc(ctx *gpu.Context) error {
	hdr := gpu.TextureDesc{Width: t.width, Height: t.height, Format: gpu.FormatRGBA16F, Filter: gpu.FilterLinear}

	var err error
	if t.geometry, err = gpu.NewFramebuffer(ctx, t.width, t.height); err != nil {
		return err
	}
	if t.color, err = gpu.NewTexture(ctx, hdr, nil); err != nil {
		return fmt.Errorf("color buffer: %w", err)
	}
	if t.bright, err = gpu.NewTexture(ctx, hdr, nil); err != nil {
		return fmt.Errorf("bright buffer: %w", err)
	}
	depthDesc := gpu.TextureDesc{Width: t.width, Height: t.height, Format: gpu.FormatDepth, Filter: gpu.FilterNearest}
	if t.depth, err = gpu.NewTexture(ctx, depthDesc, nil); err != nil {
		return fmt.Errorf("depth buffer: %w", err)
	}
	if err := t.geometry.AttachColor(attachmentColor, t.color); err != nil {
		return err
	}
	if err := t.geometry.AttachColor(attachmentBright, t.bright); err != nil {
		return err
	}
	if err := t.geometry.AttachDepth(t.depth); err != nil {
		return err
	}

	for i := range t.bloom {
		if t.bloom[i], err = gpu.NewFramebuffer(ctx, t.width, t.height); err != nil {
			return err
		}
		if t.bloomTex[i], err = gpu.NewTexture(ctx, hdr, nil); err != nil {
			return fmt.Errorf("bloom buffer %d: %w", i, err)
		}
		if err := t.bloom[i].AttachColor(0, t.bloomTex[i]); err != nil {
			return err
		}
	}
	return nil
}

// delete releases whatever alloc managed to create.
func (t *targets) delete() {
	for _, fb := range []*gpu.Framebuffer{t.geometry, t.bloom[0], t.bloom[1]} {
		if fb != nil {
			fb.Delete()
		}
	}
	for _, tex := range []*gpu.Texture{t.color, t.bright, t.depth, t.bloomTex[0], t.bloomTex[1]} {
		if tex != nil {
			tex.Delete()
		}
	}
}
