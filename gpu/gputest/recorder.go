// Package gputest provides a gpu.Backend that records calls instead of
// talking to a graphics driver.
package gputest

import (
	"errors"
	"fmt"
	"strings"

	"jelly/core"
	"jelly/gpu"
	"jelly/math"
)

// Call is one recorded backend call.
type Call struct {
	Op   string
	Args []any
}

// UniformSet is one uniform submission, resolved to the program current at
// the time of the call.
type UniformSet struct {
	Program gpu.ProgramID
	Name    string
	Value   any
}

// Draw is one recorded draw call.
type Draw struct {
	Program     gpu.ProgramID
	Framebuffer gpu.FramebufferID
	Mesh        gpu.MeshID
	Count       int
}

type program struct {
	vertex, fragment string
	locations        map[string]int32
	names            map[int32]string
}

// Surface is a fixed-size gpu.Surface.
type Surface struct {
	Width, Height int
}

func (s *Surface) Size() (int, int) { return s.Width, s.Height }

// Recorder implements gpu.Backend. Framebuffer completeness is simulated:
// a framebuffer is complete when it has at least one attachment and every
// requested draw buffer has a colour texture attached.
type Recorder struct {
	Calls    []Call
	Uniforms []UniformSet
	Draws    []Draw

	// CompileError, when set, is consulted for every program compile.
	CompileError func(vertexSrc, fragmentSrc string) error
	// Missing names resolve to location -1 in every program.
	Missing map[string]bool

	nextID       uint32
	programs     map[gpu.ProgramID]*program
	textures     map[gpu.TextureID]gpu.TextureDesc
	framebuffers map[gpu.FramebufferID]map[gpu.Attachment]gpu.TextureID
	meshes       map[gpu.MeshID]core.MeshData

	current     gpu.ProgramID
	framebuffer gpu.FramebufferID
	units       map[int]gpu.TextureID
	viewport    [2]int
	depthFunc   gpu.DepthFunc
	culling     bool
	blending    bool
}

var _ gpu.Backend = (*Recorder)(nil)

func NewRecorder() *Recorder {
	return &Recorder{
		Missing:      make(map[string]bool),
		programs:     make(map[gpu.ProgramID]*program),
		textures:     make(map[gpu.TextureID]gpu.TextureDesc),
		framebuffers: make(map[gpu.FramebufferID]map[gpu.Attachment]gpu.TextureID),
		meshes:       make(map[gpu.MeshID]core.MeshData),
		units:        make(map[int]gpu.TextureID),
		culling:      true,
	}
}

func (r *Recorder) record(op string, args ...any) {
	r.Calls = append(r.Calls, Call{Op: op, Args: args})
}

func (r *Recorder) id() uint32 {
	r.nextID++
	return r.nextID
}

// ResetLog clears the recorded calls, uniforms and draws but keeps the
// simulated GPU state.
func (r *Recorder) ResetLog() {
	r.Calls = nil
	r.Uniforms = nil
	r.Draws = nil
}

// Count returns how many calls of op were recorded.
func (r *Recorder) Count(op string) int {
	n := 0
	for _, c := range r.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

// DrawsWith returns the draws issued while prog was current.
func (r *Recorder) DrawsWith(prog gpu.ProgramID) []Draw {
	var out []Draw
	for _, d := range r.Draws {
		if d.Program == prog {
			out = append(out, d)
		}
	}
	return out
}

// UniformHistory returns every value submitted to name in prog, in order.
func (r *Recorder) UniformHistory(prog gpu.ProgramID, name string) []any {
	var out []any
	for _, u := range r.Uniforms {
		if u.Program == prog && u.Name == name {
			out = append(out, u.Value)
		}
	}
	return out
}

// LastUniform returns the most recent value submitted to name in prog.
func (r *Recorder) LastUniform(prog gpu.ProgramID, name string) (any, bool) {
	h := r.UniformHistory(prog, name)
	if len(h) == 0 {
		return nil, false
	}
	return h[len(h)-1], true
}

// ProgramSource returns the sources prog was compiled from.
func (r *Recorder) ProgramSource(prog gpu.ProgramID) (vertex, fragment string) {
	if p, ok := r.programs[prog]; ok {
		return p.vertex, p.fragment
	}
	return "", ""
}

func (r *Recorder) CurrentProgram() gpu.ProgramID { return r.current }

func (r *Recorder) BoundFramebuffer() gpu.FramebufferID { return r.framebuffer }

func (r *Recorder) BoundTexture(unit int) gpu.TextureID { return r.units[unit] }

func (r *Recorder) ViewportSize() (int, int) { return r.viewport[0], r.viewport[1] }

func (r *Recorder) DepthFunc() gpu.DepthFunc { return r.depthFunc }

func (r *Recorder) Culling() bool { return r.culling }

func (r *Recorder) Blending() bool { return r.blending }

func (r *Recorder) TextureDesc(id gpu.TextureID) (gpu.TextureDesc, bool) {
	d, ok := r.textures[id]
	return d, ok
}

// Attachment returns the texture attached to fb at at.
func (r *Recorder) Attachment(fb gpu.FramebufferID, at gpu.Attachment) gpu.TextureID {
	return r.framebuffers[fb][at]
}

// Live reports the number of programs, textures, framebuffers and meshes
// that have been created and not deleted.
func (r *Recorder) Live() int {
	return len(r.programs) + len(r.textures) + len(r.framebuffers) + len(r.meshes)
}

func (r *Recorder) CompileProgram(vertexSrc, fragmentSrc string) (gpu.ProgramID, error) {
	r.record("CompileProgram")
	if r.CompileError != nil {
		if err := r.CompileError(vertexSrc, fragmentSrc); err != nil {
			return 0, err
		}
	}
	id := gpu.ProgramID(r.id())
	r.programs[id] = &program{
		vertex:    vertexSrc,
		fragment:  fragmentSrc,
		locations: make(map[string]int32),
		names:     make(map[int32]string),
	}
	return id, nil
}

func (r *Recorder) DeleteProgram(id gpu.ProgramID) {
	r.record("DeleteProgram", id)
	delete(r.programs, id)
	if r.current == id {
		r.current = 0
	}
}

func (r *Recorder) UseProgram(id gpu.ProgramID) {
	r.record("UseProgram", id)
	r.current = id
}

// UniformLocation hands out locations in order of first lookup.
func (r *Recorder) UniformLocation(id gpu.ProgramID, name string) int32 {
	r.record("UniformLocation", id, name)
	p, ok := r.programs[id]
	if !ok || r.Missing[name] {
		return -1
	}
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := int32(len(p.locations))
	p.locations[name] = loc
	p.names[loc] = name
	return loc
}

func (r *Recorder) uniform(op string, loc int32, v any) {
	r.record(op, loc, v)
	name := fmt.Sprintf("<location %d>", loc)
	if p, ok := r.programs[r.current]; ok {
		if n, ok := p.names[loc]; ok {
			name = n
		}
	}
	r.Uniforms = append(r.Uniforms, UniformSet{Program: r.current, Name: name, Value: v})
}

func (r *Recorder) Uniform1i(loc int32, v int32)          { r.uniform("Uniform1i", loc, v) }
func (r *Recorder) Uniform1f(loc int32, v float32)        { r.uniform("Uniform1f", loc, v) }
func (r *Recorder) Uniform2f(loc int32, v math.Vec2)      { r.uniform("Uniform2f", loc, v) }
func (r *Recorder) Uniform3f(loc int32, v math.Vec3)      { r.uniform("Uniform3f", loc, v) }
func (r *Recorder) Uniform4f(loc int32, v math.Vec4)      { r.uniform("Uniform4f", loc, v) }
func (r *Recorder) UniformMatrix3(loc int32, m math.Mat3) { r.uniform("UniformMatrix3", loc, m) }
func (r *Recorder) UniformMatrix4(loc int32, m math.Mat4) { r.uniform("UniformMatrix4", loc, m) }

func (r *Recorder) CreateTexture(desc gpu.TextureDesc, pixels []byte) (gpu.TextureID, error) {
	r.record("CreateTexture", desc)
	if pixels != nil {
		size := 1
		if desc.Format.IsFloat() {
			size = 4
		}
		want := desc.Width * desc.Height * desc.Format.Channels() * size
		if len(pixels) != want {
			return 0, fmt.Errorf("texture data: got %d bytes, want %d", len(pixels), want)
		}
	}
	id := gpu.TextureID(r.id())
	r.textures[id] = desc
	return id, nil
}

func (r *Recorder) BindTexture(id gpu.TextureID, unit int) {
	r.record("BindTexture", id, unit)
	r.units[unit] = id
}

func (r *Recorder) DeleteTexture(id gpu.TextureID) {
	r.record("DeleteTexture", id)
	delete(r.textures, id)
}

func (r *Recorder) CreateFramebuffer() (gpu.FramebufferID, error) {
	r.record("CreateFramebuffer")
	id := gpu.FramebufferID(r.id())
	r.framebuffers[id] = make(map[gpu.Attachment]gpu.TextureID)
	return id, nil
}

func (r *Recorder) AttachTexture(fb gpu.FramebufferID, at gpu.Attachment, tex gpu.TextureID) {
	r.record("AttachTexture", fb, at, tex)
	if atts, ok := r.framebuffers[fb]; ok {
		atts[at] = tex
	}
}

func (r *Recorder) BindFramebuffer(fb gpu.FramebufferID, drawBuffers []int) error {
	r.record("BindFramebuffer", fb, drawBuffers)
	if fb != gpu.DefaultFramebuffer {
		atts, ok := r.framebuffers[fb]
		if !ok {
			return fmt.Errorf("%w: unknown framebuffer %d", gpu.ErrIncompleteFramebuffer, fb)
		}
		if len(atts) == 0 {
			return fmt.Errorf("%w: missing attachment", gpu.ErrIncompleteFramebuffer)
		}
		var missing []string
		for _, i := range drawBuffers {
			if _, ok := atts[gpu.ColorAttachment(i)]; !ok {
				missing = append(missing, fmt.Sprint(i))
			}
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: draw buffer %s not attached",
				gpu.ErrIncompleteFramebuffer, strings.Join(missing, ","))
		}
	}
	r.framebuffer = fb
	return nil
}

func (r *Recorder) DeleteFramebuffer(id gpu.FramebufferID) {
	r.record("DeleteFramebuffer", id)
	delete(r.framebuffers, id)
	if r.framebuffer == id {
		r.framebuffer = gpu.DefaultFramebuffer
	}
}

func (r *Recorder) UploadMesh(data core.MeshData) (gpu.MeshID, error) {
	r.record("UploadMesh", len(data.Vertices), len(data.Indices))
	for _, i := range data.Indices {
		if int(i) >= len(data.Vertices) {
			return 0, errors.New("index out of range")
		}
	}
	id := gpu.MeshID(r.id())
	r.meshes[id] = data
	return id, nil
}

func (r *Recorder) DrawMesh(id gpu.MeshID, mode gpu.PrimitiveMode, count int, indexed bool) {
	r.record("DrawMesh", id, mode, count, indexed)
	r.Draws = append(r.Draws, Draw{
		Program:     r.current,
		Framebuffer: r.framebuffer,
		Mesh:        id,
		Count:       count,
	})
}

func (r *Recorder) DeleteMesh(id gpu.MeshID) {
	r.record("DeleteMesh", id)
	delete(r.meshes, id)
}

func (r *Recorder) Viewport(width, height int) {
	r.record("Viewport", width, height)
	r.viewport = [2]int{width, height}
}

func (r *Recorder) Clear(color core.Color) {
	r.record("Clear", color)
}

func (r *Recorder) SetDepthFunc(fn gpu.DepthFunc) {
	r.record("SetDepthFunc", fn)
	r.depthFunc = fn
}

func (r *Recorder) SetCulling(enabled bool) {
	r.record("SetCulling", enabled)
	r.culling = enabled
}

func (r *Recorder) SetBlending(enabled bool) {
	r.record("SetBlending", enabled)
	r.blending = enabled
}
