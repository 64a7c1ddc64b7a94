package gpu

import (
	"fmt"
	"maps"
	"slices"

	"jelly/math"
)

type samplerBinding struct {
	unit    int
	texture *Texture
}

// Shader is a linked program with a client-side uniform cache. Values set
// while the shader is inactive are kept and submitted when it next becomes
// active, so callers may configure a shader at any time.
type Shader struct {
	ctx     *Context
	program ProgramID
	active  bool

	locations map[string]int32

	ints     map[int32]int32
	floats   map[int32]float32
	vec2s    map[int32]math.Vec2
	vec3s    map[int32]math.Vec3
	vec4s    map[int32]math.Vec4
	mat3s    map[int32]math.Mat3
	mat4s    map[int32]math.Mat4
	samplers map[int32]samplerBinding
}

func NewShader(ctx *Context, vertexSrc, fragmentSrc string) (*Shader, error) {
	program, err := ctx.backend.CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("create shader: %w", err)
	}
	return &Shader{
		ctx:       ctx,
		program:   program,
		locations: make(map[string]int32),
		ints:      make(map[int32]int32),
		floats:    make(map[int32]float32),
		vec2s:     make(map[int32]math.Vec2),
		vec3s:     make(map[int32]math.Vec3),
		vec4s:     make(map[int32]math.Vec4),
		mat3s:     make(map[int32]math.Mat3),
		mat4s:     make(map[int32]math.Mat4),
		samplers:  make(map[int32]samplerBinding),
	}, nil
}

func (s *Shader) Program() ProgramID { return s.program }

func (s *Shader) IsActive() bool { return s.active }

// UniformLocation resolves name once and caches the result for the
// lifetime of the program. Unknown names resolve to -1.
func (s *Shader) UniformLocation(name string) int32 {
	if loc, ok := s.locations[name]; ok {
		return loc
	}
	loc := s.ctx.backend.UniformLocation(s.program, name)
	if loc < 0 {
		s.ctx.logger.Debug("uniform not found", "program", s.program, "name", name)
	}
	s.locations[name] = loc
	return loc
}

func setUniform[T any](s *Shader, cache map[int32]T, name string, v T, submit func(int32, T)) {
	loc := s.UniformLocation(name)
	if loc < 0 {
		return
	}
	cache[loc] = v
	if s.active {
		submit(loc, v)
	}
}

func (s *Shader) SetInt(name string, v int) {
	setUniform(s, s.ints, name, int32(v), s.ctx.backend.Uniform1i)
}

func (s *Shader) SetBool(name string, v bool) {
	var i int
	if v {
		i = 1
	}
	s.SetInt(name, i)
}

func (s *Shader) SetFloat(name string, v float32) {
	setUniform(s, s.floats, name, v, s.ctx.backend.Uniform1f)
}

func (s *Shader) SetVec2(name string, v math.Vec2) {
	setUniform(s, s.vec2s, name, v, s.ctx.backend.Uniform2f)
}

func (s *Shader) SetVec3(name string, v math.Vec3) {
	setUniform(s, s.vec3s, name, v, s.ctx.backend.Uniform3f)
}

func (s *Shader) SetVec4(name string, v math.Vec4) {
	setUniform(s, s.vec4s, name, v, s.ctx.backend.Uniform4f)
}

func (s *Shader) SetMat3(name string, m math.Mat3) {
	setUniform(s, s.mat3s, name, m, s.ctx.backend.UniformMatrix3)
}

func (s *Shader) SetMat4(name string, m math.Mat4) {
	setUniform(s, s.mat4s, name, m, s.ctx.backend.UniformMatrix4)
}

// SetSampler points the sampler uniform name at t. The sampler's texture
// unit is assigned on first use and never changes afterwards.
func (s *Shader) SetSampler(name string, t *Texture) {
	loc := s.UniformLocation(name)
	if loc < 0 {
		return
	}
	b, ok := s.samplers[loc]
	if !ok {
		b.unit = len(s.samplers)
	}
	b.texture = t
	s.samplers[loc] = b
	if s.active {
		if !ok {
			s.ctx.backend.Uniform1i(loc, int32(b.unit))
		}
		s.ctx.BindTexture(t, b.unit)
	}
}

// SamplerUnit reports the texture unit assigned to the sampler name.
func (s *Shader) SamplerUnit(name string) (int, bool) {
	loc, ok := s.locations[name]
	if !ok {
		return 0, false
	}
	b, ok := s.samplers[loc]
	return b.unit, ok
}

func replay[T any](cache map[int32]T, submit func(int32, T)) {
	for _, loc := range slices.Sorted(maps.Keys(cache)) {
		submit(loc, cache[loc])
	}
}

func (s *Shader) activate() {
	b := s.ctx.backend
	b.UseProgram(s.program)
	s.active = true

	replay(s.ints, b.Uniform1i)
	replay(s.floats, b.Uniform1f)
	replay(s.vec2s, b.Uniform2f)
	replay(s.vec3s, b.Uniform3f)
	replay(s.vec4s, b.Uniform4f)
	replay(s.mat3s, b.UniformMatrix3)
	replay(s.mat4s, b.UniformMatrix4)
	replay(s.samplers, func(loc int32, sb samplerBinding) {
		b.Uniform1i(loc, int32(sb.unit))
		s.ctx.BindTexture(sb.texture, sb.unit)
	})
}

func (s *Shader) deactivate() {
	s.active = false
}

// Delete releases the program. The shader must not be used afterwards.
func (s *Shader) Delete() {
	if s.ctx.active == s {
		s.ctx.DeactivateShader()
	}
	s.ctx.backend.DeleteProgram(s.program)
}
