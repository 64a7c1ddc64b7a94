package scene

import "jelly/math"

// Material is the CPU-side description of a surface, produced by loaders
// and turned into a GPU material by the renderer. Colours add to the
// matching texture sample.
type Material struct {
	Name      string
	Diffuse   math.Vec3
	Emissive  math.Vec3 // values above 1 feed bloom
	Specular  math.Vec3
	Shininess float32

	DiffuseTexture   *Texture
	EmissiveTexture  *Texture
	SpecularTexture  *Texture
	ShininessTexture *Texture
}

// DefaultMaterial returns a plain white matte material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "Default",
		Diffuse:   math.Vec3One,
		Specular:  math.Splat3(0.3),
		Shininess: 32,
	}
}
