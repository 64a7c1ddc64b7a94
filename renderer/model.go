package renderer

import (
	"fmt"

	"jelly/gpu"
	"jelly/materials"
	"jelly/scene"
)

// ImportModel uploads a loaded model and rebuilds its node hierarchy under
// parent, or under the root when parent is nil. A node with one primitive
// draws it itself; a node with several gets one child per primitive.
// Primitives without a material use the default material.
func (r *Renderer) ImportModel(model *scene.Model, parent *scene.Renderable) (*scene.Renderable, error) {
	if parent == nil {
		parent = r.root
	}

	meshIdx := make([]int, len(model.Meshes))
	for i, m := range model.Meshes {
		idx, err := r.AddMesh(m)
		if err != nil {
			return nil, fmt.Errorf("import model: %w", err)
		}
		meshIdx[i] = idx
	}

	matIdx := make([]int, len(model.Materials))
	for i, m := range model.Materials {
		mat, err := r.uploadMaterial(m)
		if err != nil {
			return nil, fmt.Errorf("import model: %w", err)
		}
		matIdx[i] = r.AddMaterial(mat)
	}

	container := parent.CreateChild()
	container.Name = "model"

	var build func(n *scene.ModelNode, into *scene.Renderable)
	build = func(n *scene.ModelNode, into *scene.Renderable) {
		node := into.CreateChild()
		node.Name = n.Name
		node.SetLocalTransform(n.Transform.GetMatrix())

		assign := func(dst *scene.Renderable, p scene.ModelPrimitive) {
			dst.SetMesh(meshIdx[p.Mesh])
			if p.Material >= 0 {
				dst.SetMaterial(matIdx[p.Material])
			}
		}
		switch len(n.Primitives) {
		case 0:
		case 1:
			assign(node, n.Primitives[0])
		default:
			for i, p := range n.Primitives {
				child := node.CreateChild()
				child.Name = fmt.Sprintf("%s#%d", n.Name, i)
				assign(child, p)
			}
		}
		for _, c := range n.Children {
			build(c, node)
		}
	}
	for _, root := range model.Roots {
		build(root, container)
	}

	r.logger.Debug("model imported",
		"meshes", len(model.Meshes),
		"materials", len(model.Materials),
		"roots", len(model.Roots))
	return container, nil
}

// uploadMaterial converts a CPU material, uploading its texture maps
// through the texture cache.
func (r *Renderer) uploadMaterial(m *scene.Material) (*materials.Material, error) {
	out := &materials.Material{
		Name:      m.Name,
		Diffuse:   m.Diffuse,
		Emissive:  m.Emissive,
		Specular:  m.Specular,
		Shininess: m.Shininess,
	}
	for _, tm := range []struct {
		src *scene.Texture
		dst **gpu.Texture
	}{
		{m.DiffuseTexture, &out.DiffuseTexture},
		{m.EmissiveTexture, &out.EmissiveTexture},
		{m.SpecularTexture, &out.SpecularTexture},
		{m.ShininessTexture, &out.ShininessTexture},
	} {
		tex, err := r.textures.Upload(tm.src)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", m.Name, err)
		}
		*tm.dst = tex
	}
	return out, nil
}
