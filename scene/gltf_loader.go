package scene

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"jelly/core"
	"jelly/math"
)

// Model is a glTF scene converted to CPU data. Nodes reference meshes and
// materials by index into the model's slices.
type Model struct {
	Meshes    []*Mesh
	Materials []*Material
	Textures  []*Texture
	Roots     []*ModelNode
}

// ModelNode is one glTF node. Each primitive becomes its own draw.
type ModelNode struct {
	Name       string
	Transform  core.Transform
	Primitives []ModelPrimitive
	Children   []*ModelNode
}

// ModelPrimitive pairs a mesh with a material; Material is -1 when the
// primitive has none.
type ModelPrimitive struct {
	Mesh     int
	Material int
}

// Bounds returns the box enclosing every primitive in model space.
func (m *Model) Bounds() (AABB, bool) {
	var (
		box AABB
		ok  bool
	)
	var walk func(n *ModelNode, parent math.Mat4)
	walk = func(n *ModelNode, parent math.Mat4) {
		world := n.Transform.GetMatrix().Mul(parent)
		for _, p := range n.Primitives {
			b := m.Meshes[p.Mesh].Bounds.Transform(world)
			if ok {
				box = box.Union(b)
			} else {
				box, ok = b, true
			}
		}
		for _, c := range n.Children {
			walk(c, world)
		}
	}
	for _, r := range m.Roots {
		walk(r, math.Mat4Identity())
	}
	return box, ok
}

// LoadGLTF opens a .glb or .gltf file. Mesh geometry, materials, textures
// and the node hierarchy are converted; PBR metallic-roughness is
// approximated to Blinn-Phong. Broken images and primitives are skipped
// with a warning. A nil logger uses slog.Default.
func LoadGLTF(path string, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.Default()
	}
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	logger = logger.With("file", filepath.Base(path))
	dir := filepath.Dir(path)
	model := &Model{}

	// textures
	texCache := make([]*Texture, len(doc.Textures))
	for i, gt := range doc.Textures {
		if gt.Source == nil {
			continue
		}
		img := doc.Images[*gt.Source]

		var tex *Texture
		if img.BufferView != nil {
			raw, err := modeler.ReadBufferView(doc, doc.BufferViews[*img.BufferView])
			if err != nil {
				logger.Warn("gltf image buffer view", "image", *gt.Source, "err", err)
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("gltf_img_%d", *gt.Source)
			}
			tex, err = decodeImageBytes(name, raw)
			if err != nil {
				logger.Warn("gltf image decode", "image", *gt.Source, "err", err)
				continue
			}
		} else if img.URI != "" && !img.IsEmbeddedResource() {
			tex, err = LoadTexture(filepath.Join(dir, img.URI))
			if err != nil {
				logger.Warn("gltf image load", "image", *gt.Source, "uri", img.URI, "err", err)
				continue
			}
		}

		if tex != nil {
			texCache[i] = tex
			model.Textures = append(model.Textures, tex)
		}
	}
	texture := func(idx int) *Texture {
		if idx >= 0 && idx < len(texCache) {
			return texCache[idx]
		}
		return nil
	}

	// materials
	for _, gm := range doc.Materials {
		mat := DefaultMaterial()
		mat.Name = gm.Name

		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Diffuse = math.NewVec3(float32(cf[0]), float32(cf[1]), float32(cf[2]))
			if pbr.BaseColorTexture != nil {
				if t := texture(pbr.BaseColorTexture.Index); t != nil {
					// The shader adds colour and texture; the texture carries the albedo.
					mat.DiffuseTexture = t
					mat.Diffuse = math.Vec3Zero
				}
			}
			// roughness -> shininess, metallic -> specular intensity
			roughness := float32(pbr.RoughnessFactorOrDefault())
			metallic := float32(pbr.MetallicFactorOrDefault())
			mat.Shininess = (1.0-roughness)*(1.0-roughness)*128.0 + 1.0
			mat.Specular = math.Splat3(metallic * 0.7)
		}

		ef := gm.EmissiveFactor
		mat.Emissive = math.NewVec3(float32(ef[0]), float32(ef[1]), float32(ef[2]))
		if gm.EmissiveTexture != nil {
			if t := texture(gm.EmissiveTexture.Index); t != nil {
				mat.EmissiveTexture = t
				mat.Emissive = math.Vec3Zero
			}
		}
		model.Materials = append(model.Materials, mat)
	}

	// mesh primitives; meshPrims[meshIdx] lists the primitives of that mesh
	meshPrims := make([][]ModelPrimitive, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		for pi, prim := range gm.Primitives {
			m, err := loadGLTFPrimitive(doc, gm.Name, pi, *prim)
			if err != nil {
				logger.Warn("gltf primitive skipped", "mesh", mi, "primitive", pi, "err", err)
				continue
			}
			p := ModelPrimitive{Mesh: len(model.Meshes), Material: -1}
			if prim.Material != nil && *prim.Material < len(model.Materials) {
				p.Material = *prim.Material
			}
			model.Meshes = append(model.Meshes, m)
			meshPrims[mi] = append(meshPrims[mi], p)
		}
	}

	// nodes
	nodes := make([]*ModelNode, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := &ModelNode{Name: name, Transform: core.NewTransform()}

		t := gn.TranslationOrDefault()
		n.Transform.Position = math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])}

		sc := gn.ScaleOrDefault()
		n.Transform.Scale = math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])}

		r := gn.RotationOrDefault() // [x, y, z, w]
		n.Transform.Rotation = math.Quaternion{
			X: float32(r[0]), Y: float32(r[1]),
			Z: float32(r[2]), W: float32(r[3]),
		}

		if gn.Mesh != nil && *gn.Mesh < len(meshPrims) {
			n.Primitives = meshPrims[*gn.Mesh]
		}
		nodes[i] = n
	}

	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) {
				nodes[i].Children = append(nodes[i].Children, nodes[c])
				hasParent[c] = true
			}
		}
	}

	// roots: the default scene, or every parentless node
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, rootIdx := range doc.Scenes[*doc.Scene].Nodes {
			if rootIdx < len(nodes) {
				model.Roots = append(model.Roots, nodes[rootIdx])
			}
		}
	} else {
		for i, n := range nodes {
			if !hasParent[i] {
				model.Roots = append(model.Roots, n)
			}
		}
	}

	logger.Debug("gltf loaded",
		"meshes", len(model.Meshes),
		"materials", len(model.Materials),
		"textures", len(model.Textures),
		"roots", len(model.Roots))
	return model, nil
}

// loadGLTFPrimitive converts one glTF mesh primitive into a Mesh.
func loadGLTFPrimitive(doc *gltf.Document, meshName string, primIdx int, prim gltf.Primitive) (*Mesh, error) {
	name := fmt.Sprintf("%s_p%d", meshName, primIdx)
	if meshName == "" {
		name = fmt.Sprintf("prim_%d", primIdx)
	}
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("unsupported primitive mode %v", prim.Mode)
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			n := normals[i]
			v.Normal = math.Vec3{X: n[0], Y: n[1], Z: n[2]}
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	return NewMesh(name, verts, indices), nil
}
