package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"jelly/gpu"
)

type glFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

var glFormats = map[gpu.TextureFormat]glFormat{
	gpu.FormatGray:         {gl.R8, gl.RED, gl.UNSIGNED_BYTE},
	gpu.FormatGrayA:        {gl.RG8, gl.RG, gl.UNSIGNED_BYTE},
	gpu.FormatRGB:          {gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE},
	gpu.FormatRGB16F:       {gl.RGB16F, gl.RGB, gl.FLOAT},
	gpu.FormatRGB32F:       {gl.RGB32F, gl.RGB, gl.FLOAT},
	gpu.FormatRGBA:         {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	gpu.FormatRGBA16F:      {gl.RGBA16F, gl.RGBA, gl.FLOAT},
	gpu.FormatRGBA32F:      {gl.RGBA32F, gl.RGBA, gl.FLOAT},
	gpu.FormatDepth:        {gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT},
	gpu.FormatDepthStencil: {gl.DEPTH24_STENCIL8, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8},
}

// CreateTexture allocates a 2D texture. 8-bit colour images with pixel data
// and linear filtering get a mipmap chain; render targets clamp to edge.
func (b *Backend) CreateTexture(desc gpu.TextureDesc, pixels []byte) (gpu.TextureID, error) {
	f, ok := glFormats[desc.Format]
	if !ok {
		return 0, fmt.Errorf("unsupported texture format %v", desc.Format)
	}

	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	var ptr unsafe.Pointer
	if len(pixels) > 0 {
		ptr = unsafe.Pointer(&pixels[0])
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal,
		int32(desc.Width), int32(desc.Height), 0, f.format, f.xtype, ptr)

	mipmaps := ptr != nil && f.xtype == gl.UNSIGNED_BYTE && desc.Filter == gpu.FilterLinear
	wrap := int32(gl.CLAMP_TO_EDGE)
	if ptr != nil && !desc.Format.IsDepth() {
		wrap = gl.REPEAT
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrap)

	switch {
	case mipmaps:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.GenerateMipmap(gl.TEXTURE_2D)
	case desc.Filter == gpu.FilterNearest:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	default:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return gpu.TextureID(id), nil
}

func (b *Backend) BindTexture(id gpu.TextureID, unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
}

func (b *Backend) DeleteTexture(id gpu.TextureID) {
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
}
