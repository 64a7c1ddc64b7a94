package gpu

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"

	"github.com/chewxy/math32"

	"jelly/math"
)

type Texture struct {
	ctx    *Context
	id     TextureID
	width  int
	height int
	format TextureFormat
	filter TextureFilter
}

// NewTexture allocates a texture and uploads pixels, which may be nil.
func NewTexture(ctx *Context, desc TextureDesc, pixels []byte) (*Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("create texture: invalid size %dx%d", desc.Width, desc.Height)
	}
	id, err := ctx.backend.CreateTexture(desc, pixels)
	if err != nil {
		return nil, fmt.Errorf("create %s texture %dx%d: %w", desc.Format, desc.Width, desc.Height, err)
	}
	return &Texture{
		ctx:    ctx,
		id:     id,
		width:  desc.Width,
		height: desc.Height,
		format: desc.Format,
		filter: desc.Filter,
	}, nil
}

// NewSolidTexture creates a 1×1 float texture holding c. Components may
// exceed 1.
func NewSolidTexture(ctx *Context, c math.Vec3) (*Texture, error) {
	desc := TextureDesc{Width: 1, Height: 1, Format: FormatRGB32F, Filter: FilterNearest}
	return NewTexture(ctx, desc, float32Bytes(c.X, c.Y, c.Z))
}

// NewTextureFromImage uploads img as 8-bit RGBA.
func NewTextureFromImage(ctx *Context, img image.Image, filter TextureFilter) (*Texture, error) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Rect.Dx()*4 || rgba.Rect.Min != (image.Point{}) {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	desc := TextureDesc{
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Format: FormatRGBA,
		Filter: filter,
	}
	return NewTexture(ctx, desc, rgba.Pix)
}

func float32Bytes(vs ...float32) []byte {
	buf := make([]byte, 0, 4*len(vs))
	for _, v := range vs {
		buf = binary.NativeEndian.AppendUint32(buf, math32.Float32bits(v))
	}
	return buf
}

func (t *Texture) ID() TextureID { return t.id }

func (t *Texture) Size() (int, int) { return t.width, t.height }

func (t *Texture) Format() TextureFormat { return t.format }

func (t *Texture) Filter() TextureFilter { return t.filter }

func (t *Texture) Delete() {
	t.ctx.backend.DeleteTexture(t.id)
}
