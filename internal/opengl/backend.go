// Package opengl implements gpu.Backend on OpenGL 4.1 core.
package opengl

import (
	"fmt"
	"log/slog"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"jelly/core"
	"jelly/gpu"
	"jelly/math"
)

// Backend issues OpenGL calls. The GL context must be current on the
// calling thread for every method.
type Backend struct {
	logger      *slog.Logger
	meshes      map[gpu.MeshID]*glMesh
	framebuffer uint32
}

var _ gpu.Backend = (*Backend)(nil)

// NewBackend loads the GL entry points for the current context.
func NewBackend(logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	logger.Info("OpenGL context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	return &Backend{
		logger: logger,
		meshes: make(map[gpu.MeshID]*glMesh),
	}, nil
}

func (b *Backend) UseProgram(id gpu.ProgramID) {
	gl.UseProgram(uint32(id))
}

func (b *Backend) DeleteProgram(id gpu.ProgramID) {
	gl.DeleteProgram(uint32(id))
}

func (b *Backend) UniformLocation(id gpu.ProgramID, name string) int32 {
	return gl.GetUniformLocation(uint32(id), gl.Str(name+"\x00"))
}

func (b *Backend) Uniform1i(loc int32, v int32) {
	gl.Uniform1i(loc, v)
}

func (b *Backend) Uniform1f(loc int32, v float32) {
	gl.Uniform1f(loc, v)
}

func (b *Backend) Uniform2f(loc int32, v math.Vec2) {
	gl.Uniform2f(loc, v.X, v.Y)
}

func (b *Backend) Uniform3f(loc int32, v math.Vec3) {
	gl.Uniform3f(loc, v.X, v.Y, v.Z)
}

func (b *Backend) Uniform4f(loc int32, v math.Vec4) {
	gl.Uniform4f(loc, v.X, v.Y, v.Z, v.W)
}

// Matrices are stored with the translation in the last row, which is the
// column-major layout GL reads without transposing.
func (b *Backend) UniformMatrix3(loc int32, m math.Mat3) {
	gl.UniformMatrix3fv(loc, 1, false, (*float32)(unsafe.Pointer(&m[0][0])))
}

func (b *Backend) UniformMatrix4(loc int32, m math.Mat4) {
	gl.UniformMatrix4fv(loc, 1, false, (*float32)(unsafe.Pointer(&m[0][0])))
}

func (b *Backend) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *Backend) Clear(c core.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (b *Backend) SetDepthFunc(fn gpu.DepthFunc) {
	switch fn {
	case gpu.DepthLessEqual:
		gl.DepthFunc(gl.LEQUAL)
	case gpu.DepthAlways:
		gl.DepthFunc(gl.ALWAYS)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (b *Backend) SetCulling(enabled bool) {
	if enabled {
		gl.Enable(gl.CULL_FACE)
	} else {
		gl.Disable(gl.CULL_FACE)
	}
}

func (b *Backend) SetBlending(enabled bool) {
	if enabled {
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	} else {
		gl.Disable(gl.BLEND)
	}
}

// Destroy frees any meshes still resident.
func (b *Backend) Destroy() {
	for id := range b.meshes {
		b.DeleteMesh(id)
	}
}
