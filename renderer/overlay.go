package renderer

import (
	"jelly/gpu"
	"jelly/math"
)

type overlayShape int

const (
	shapeFillRectangle overlayShape = iota
	shapeRectangle
	shapeFillEllipse
	shapeEllipse
	shapeImage
)

type overlayCmd struct {
	shape  overlayShape
	rect   math.Vec4 // x1, y1, x2, y2
	color  math.Vec4
	stroke float32
	image  *gpu.Texture
}

// Overlay collects 2D shapes in window pixels, origin top-left, and draws
// them over the composited frame at the end of the next Render. Colour and
// stroke size are sticky, like a pen.
type Overlay struct {
	shader *gpu.Shader
	quad   *gpu.Mesh
	empty  *gpu.Texture

	color  math.Vec4
	stroke float32
	cmds   []overlayCmd
}

func newOverlay(shader *gpu.Shader, quad *gpu.Mesh, empty *gpu.Texture) *Overlay {
	return &Overlay{
		shader: shader,
		quad:   quad,
		empty:  empty,
		color:  math.NewVec4(0, 0, 0, 1),
		stroke: 1,
	}
}

// SetColor sets the colour of the shapes queued after it.
func (o *Overlay) SetColor(r, g, b, a float32) {
	o.color = math.NewVec4(r, g, b, a)
}

// SetGray is SetColor with equal opaque components.
func (o *Overlay) SetGray(v float32) {
	o.SetColor(v, v, v, 1)
}

// SetStrokeSize sets the outline width in pixels. Values below 1 are
// clamped to 1.
func (o *Overlay) SetStrokeSize(px int) {
	o.stroke = float32(max(px, 1))
}

func (o *Overlay) push(shape overlayShape, x1, y1, x2, y2 float32, image *gpu.Texture) {
	o.cmds = append(o.cmds, overlayCmd{
		shape:  shape,
		rect:   math.NewVec4(min(x1, x2), min(y1, y2), max(x1, x2), max(y1, y2)),
		color:  o.color,
		stroke: o.stroke,
		image:  image,
	})
}

// FillRectangle queues a solid rectangle between two corners.
func (o *Overlay) FillRectangle(x1, y1, x2, y2 float32) {
	o.push(shapeFillRectangle, x1, y1, x2, y2, nil)
}

// DrawRectangle queues a rectangle outline between two corners.
func (o *Overlay) DrawRectangle(x1, y1, x2, y2 float32) {
	o.push(shapeRectangle, x1, y1, x2, y2, nil)
}

// FillEllipse queues a solid ellipse of size w×h centred on (x, y).
func (o *Overlay) FillEllipse(x, y, w, h float32) {
	o.push(shapeFillEllipse, x-w/2, y-h/2, x+w/2, y+h/2, nil)
}

// DrawEllipse queues an ellipse outline of size w×h centred on (x, y).
func (o *Overlay) DrawEllipse(x, y, w, h float32) {
	o.push(shapeEllipse, x-w/2, y-h/2, x+w/2, y+h/2, nil)
}

// DrawImage queues t stretched over the rectangle. A nil texture is
// ignored.
func (o *Overlay) DrawImage(t *gpu.Texture, x1, y1, x2, y2 float32) {
	if t == nil {
		return
	}
	o.push(shapeImage, x1, y1, x2, y2, t)
}

// Len reports how many shapes are queued.
func (o *Overlay) Len() int { return len(o.cmds) }

// Discard drops the queued shapes without drawing them.
func (o *Overlay) Discard() { o.cmds = o.cmds[:0] }

// flush draws the queue into the bound framebuffer of size w×h and empties
// it. Depth testing and culling are off and alpha blending on while it
// draws; the pipeline defaults are restored afterwards.
func (o *Overlay) flush(ctx *gpu.Context, w, h int) int {
	if len(o.cmds) == 0 {
		return 0
	}
	ctx.SetDepthFunc(gpu.DepthAlways)
	ctx.SetCulling(false)
	ctx.SetBlending(true)

	sh := o.shader
	ctx.ActivateShader(sh)
	sh.SetMat4(uniformProjection, math.Mat4Orthographic(0, float32(w), float32(h), 0, -1, 1))
	for _, c := range o.cmds {
		sh.SetInt(uniformShape, int(c.shape))
		sh.SetVec4(uniformRectangle, c.rect)
		sh.SetVec4(uniformColor, c.color)
		sh.SetVec2(uniformPixelSize, math.NewVec2(c.rect.Z-c.rect.X, c.rect.W-c.rect.Y))
		sh.SetFloat(uniformStroke, c.stroke)
		image := c.image
		if image == nil {
			image = o.empty
		}
		sh.SetSampler(samplerImage, image)
		ctx.RenderMesh(o.quad)
	}

	ctx.SetBlending(false)
	ctx.SetCulling(true)
	ctx.SetDepthFunc(gpu.DepthLess)

	n := len(o.cmds)
	o.Discard()
	return n
}
