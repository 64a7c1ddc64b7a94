package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"jelly/gpu"
)

func (b *Backend) CreateFramebuffer() (gpu.FramebufferID, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	if fbo == 0 {
		return 0, fmt.Errorf("glGenFramebuffers returned 0")
	}
	return gpu.FramebufferID(fbo), nil
}

func attachmentPoint(at gpu.Attachment) uint32 {
	switch at {
	case gpu.AttachmentDepth:
		return gl.DEPTH_ATTACHMENT
	case gpu.AttachmentDepthStencil:
		return gl.DEPTH_STENCIL_ATTACHMENT
	default:
		return gl.COLOR_ATTACHMENT0 + uint32(at)
	}
}

func (b *Backend) AttachTexture(fb gpu.FramebufferID, at gpu.Attachment, tex gpu.TextureID) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachmentPoint(at), gl.TEXTURE_2D, uint32(tex), 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.framebuffer)
}

func (b *Backend) BindFramebuffer(fb gpu.FramebufferID, drawBuffers []int) error {
	id := uint32(fb)
	gl.BindFramebuffer(gl.FRAMEBUFFER, id)
	if fb == gpu.DefaultFramebuffer {
		gl.DrawBuffer(gl.BACK)
		b.framebuffer = 0
		return nil
	}

	if s := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); s != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, b.framebuffer)
		return fmt.Errorf("%w: status=0x%X", gpu.ErrIncompleteFramebuffer, s)
	}
	if len(drawBuffers) == 0 {
		gl.DrawBuffer(gl.NONE)
	} else {
		bufs := make([]uint32, len(drawBuffers))
		for i, n := range drawBuffers {
			bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(n)
		}
		gl.DrawBuffers(int32(len(bufs)), &bufs[0])
	}
	b.framebuffer = id
	return nil
}

func (b *Backend) DeleteFramebuffer(id gpu.FramebufferID) {
	fbo := uint32(id)
	if b.framebuffer == fbo {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		b.framebuffer = 0
	}
	gl.DeleteFramebuffers(1, &fbo)
}
