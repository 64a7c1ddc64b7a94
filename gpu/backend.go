// Package gpu is the thin command layer between the renderer and a graphics
// API. A Backend issues raw calls; Context, Shader, Texture, Framebuffer and
// Mesh wrap it with the state tracking the renderer relies on.
package gpu

import (
	"jelly/core"
	"jelly/math"
)

type (
	ProgramID     uint32
	TextureID     uint32
	FramebufferID uint32
	MeshID        uint32
)

// DefaultFramebuffer is the on-screen target owned by the window.
const DefaultFramebuffer FramebufferID = 0

type TextureFormat int

const (
	FormatGray TextureFormat = iota
	FormatGrayA
	FormatRGB
	FormatRGB16F
	FormatRGB32F
	FormatRGBA
	FormatRGBA16F
	FormatRGBA32F
	FormatDepth
	FormatDepthStencil
)

var formatNames = [...]string{
	FormatGray:         "GRAY",
	FormatGrayA:        "GRAYA",
	FormatRGB:          "RGB",
	FormatRGB16F:       "RGB16F",
	FormatRGB32F:       "RGB32F",
	FormatRGBA:         "RGBA",
	FormatRGBA16F:      "RGBA16F",
	FormatRGBA32F:      "RGBA32F",
	FormatDepth:        "DEPTH",
	FormatDepthStencil: "DEPTH_STENCIL",
}

func (f TextureFormat) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "UNKNOWN"
	}
	return formatNames[f]
}

// Channels is the number of components per texel.
func (f TextureFormat) Channels() int {
	switch f {
	case FormatGray, FormatDepth, FormatDepthStencil:
		return 1
	case FormatGrayA:
		return 2
	case FormatRGB, FormatRGB16F, FormatRGB32F:
		return 3
	default:
		return 4
	}
}

// IsFloat reports whether pixel data for the format is float32.
func (f TextureFormat) IsFloat() bool {
	switch f {
	case FormatRGB16F, FormatRGB32F, FormatRGBA16F, FormatRGBA32F, FormatDepth:
		return true
	}
	return false
}

func (f TextureFormat) IsDepth() bool {
	return f == FormatDepth || f == FormatDepthStencil
}

type TextureFilter int

const (
	FilterLinear TextureFilter = iota
	FilterNearest
)

type TextureDesc struct {
	Width  int
	Height int
	Format TextureFormat
	Filter TextureFilter
}

// Attachment names a framebuffer attachment point. Values 0 to
// MaxColorAttachments-1 are colour attachments.
type Attachment int

const MaxColorAttachments = 16

const (
	AttachmentDepth Attachment = MaxColorAttachments + iota
	AttachmentDepthStencil
)

func ColorAttachment(i int) Attachment {
	return Attachment(i)
}

func (a Attachment) IsColor() bool {
	return a >= 0 && a < MaxColorAttachments
}

type PrimitiveMode int

const (
	Triangles PrimitiveMode = iota
	TriangleStrip
	Lines
	Points
)

type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

// Backend is implemented by a concrete graphics API. Uniform calls apply to
// the program most recently passed to UseProgram.
type Backend interface {
	CompileProgram(vertexSrc, fragmentSrc string) (ProgramID, error)
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)
	UniformLocation(id ProgramID, name string) int32

	Uniform1i(loc int32, v int32)
	Uniform1f(loc int32, v float32)
	Uniform2f(loc int32, v math.Vec2)
	Uniform3f(loc int32, v math.Vec3)
	Uniform4f(loc int32, v math.Vec4)
	UniformMatrix3(loc int32, m math.Mat3)
	UniformMatrix4(loc int32, m math.Mat4)

	// CreateTexture uploads pixels laid out per desc.Format. Float formats
	// take native-endian float32 data. A nil slice allocates storage only.
	CreateTexture(desc TextureDesc, pixels []byte) (TextureID, error)
	BindTexture(id TextureID, unit int)
	DeleteTexture(id TextureID)

	CreateFramebuffer() (FramebufferID, error)
	AttachTexture(fb FramebufferID, at Attachment, tex TextureID)
	// BindFramebuffer makes fb the render target writing to the listed
	// colour attachments. It fails with ErrIncompleteFramebuffer when the
	// target cannot be rendered to.
	BindFramebuffer(fb FramebufferID, drawBuffers []int) error
	DeleteFramebuffer(id FramebufferID)

	UploadMesh(data core.MeshData) (MeshID, error)
	DrawMesh(id MeshID, mode PrimitiveMode, count int, indexed bool)
	DeleteMesh(id MeshID)

	Viewport(width, height int)
	Clear(color core.Color)
	SetDepthFunc(fn DepthFunc)
	SetCulling(enabled bool)
	// SetBlending toggles src-alpha / one-minus-src-alpha blending.
	SetBlending(enabled bool)
}

// Surface supplies the size of the default framebuffer.
type Surface interface {
	Size() (width, height int)
}
