package materials

import (
	"jelly/gpu"
	"jelly/math"
)

// Sampler and uniform names shared with the geometry shader.
const (
	UniformDiffuse   = "u_Diffuse"
	UniformEmissive  = "u_Emissive"
	UniformSpecular  = "u_Specular"
	UniformShininess = "u_Shininess"

	SamplerDiffuse   = "u_TexDiffuse"
	SamplerEmissive  = "u_TexEmissive"
	SamplerSpecular  = "u_TexSpecular"
	SamplerShininess = "u_TexShininess"
)

// Material is a Blinn-Phong surface. Each colour is added to the sample of
// the matching texture, so a material with only colours samples black and
// one with only textures carries zero colours. Emissive values above 1
// bloom.
type Material struct {
	Name string

	Diffuse   math.Vec3
	Emissive  math.Vec3
	Specular  math.Vec3
	Shininess float32

	// nil binds the empty texture
	DiffuseTexture   *gpu.Texture
	EmissiveTexture  *gpu.Texture
	SpecularTexture  *gpu.Texture
	ShininessTexture *gpu.Texture
}

// NewMaterial creates a new material with default values
func NewMaterial(name string) *Material {
	return &Material{
		Name:      name,
		Diffuse:   math.Splat3(0.8),
		Specular:  math.Splat3(0.5),
		Shininess: 32,
	}
}

// Apply writes the material to sh. Missing textures bind empty, a 1×1
// black texture, so every sampler the shader reads is always valid.
// Samplers are set in a fixed order; on a fresh shader they take units 0
// to 3.
func (m *Material) Apply(sh *gpu.Shader, empty *gpu.Texture) {
	sh.SetVec3(UniformDiffuse, m.Diffuse)
	sh.SetVec3(UniformEmissive, m.Emissive)
	sh.SetVec3(UniformSpecular, m.Specular)
	sh.SetFloat(UniformShininess, m.Shininess)

	sh.SetSampler(SamplerDiffuse, orEmpty(m.DiffuseTexture, empty))
	sh.SetSampler(SamplerEmissive, orEmpty(m.EmissiveTexture, empty))
	sh.SetSampler(SamplerSpecular, orEmpty(m.SpecularTexture, empty))
	sh.SetSampler(SamplerShininess, orEmpty(m.ShininessTexture, empty))
}

func orEmpty(t, empty *gpu.Texture) *gpu.Texture {
	if t != nil {
		return t
	}
	return empty
}

// Clone creates a copy of the material; textures are shared.
func (m *Material) Clone(newName string) *Material {
	clone := *m
	clone.Name = newName
	return &clone
}

// --- Default Material Library ---

// DefaultMaterial creates a standard grey material
func DefaultMaterial() *Material {
	return NewMaterial("Default")
}

// ColorMaterial creates a plain diffuse material
func ColorMaterial(name string, diffuse math.Vec3) *Material {
	m := NewMaterial(name)
	m.Diffuse = diffuse
	return m
}

// MetalMaterial creates a bright, tight-highlight material
func MetalMaterial() *Material {
	m := NewMaterial("Metal")
	m.Diffuse = math.Splat3(0.3)
	m.Specular = math.Splat3(1)
	m.Shininess = 128
	return m
}

// EmissiveMaterial creates a self-illuminating material. Components above
// 1 bloom.
func EmissiveMaterial(r, g, b float32) *Material {
	m := NewMaterial("Emissive")
	m.Diffuse = math.Vec3Zero
	m.Specular = math.Vec3Zero
	m.Emissive = math.NewVec3(r, g, b)
	return m
}
