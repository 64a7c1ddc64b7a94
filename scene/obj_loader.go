package scene

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"jelly/core"
	"jelly/math"
)

// LoadModel picks a loader from the file extension.
func LoadModel(path string, logger *slog.Logger) (*Model, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf", ".glb":
		return LoadGLTF(path, logger)
	case ".obj":
		return LoadOBJ(path, logger)
	}
	return nil, fmt.Errorf("unsupported model format %q", filepath.Ext(path))
}

// objFace is an already-triangulated face.
type objFace struct {
	v, vt, vn [3]int // 0-based indices, -1 when absent
}

type objGroup struct {
	name     string
	material string
	faces    []objFace
}

type objData struct {
	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2
	groups    []*objGroup
	mtllibs   []string
}

// LoadOBJ parses a Wavefront .obj file. Every object or group becomes one
// mesh under a single root node; materials come from any referenced .mtl
// files. A nil logger uses slog.Default.
func LoadOBJ(path string, logger *slog.Logger) (*Model, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("file", filepath.Base(path))

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	data, err := parseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse obj %q: %w", path, err)
	}

	dir := filepath.Dir(path)
	model := &Model{}
	matIndex := map[string]int{}
	for _, lib := range data.mtllibs {
		mats, err := loadMTL(filepath.Join(dir, lib), logger)
		if err != nil {
			logger.Warn("obj mtllib", "lib", lib, "err", err)
			continue
		}
		for _, m := range mats {
			matIndex[m.Name] = len(model.Materials)
			model.Materials = append(model.Materials, m)
			for _, t := range []*Texture{m.DiffuseTexture, m.EmissiveTexture, m.SpecularTexture} {
				if t != nil {
					model.Textures = append(model.Textures, t)
				}
			}
		}
	}

	root := &ModelNode{Name: strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), Transform: core.NewTransform()}
	for _, g := range data.groups {
		mat, ok := matIndex[g.material]
		if !ok {
			if g.material != "" {
				logger.Warn("obj unknown material", "group", g.name, "material", g.material)
			}
			mat = -1
		}
		root.Primitives = append(root.Primitives, ModelPrimitive{Mesh: len(model.Meshes), Material: mat})
		model.Meshes = append(model.Meshes, data.buildMesh(g))
	}
	model.Roots = []*ModelNode{root}
	return model, nil
}

func parseOBJ(r io.Reader) (*objData, error) {
	data := &objData{}
	cur := &objGroup{name: "default"}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			if v, ok := parseFloats(fields[1:], 3); ok {
				data.positions = append(data.positions, math.NewVec3(v[0], v[1], v[2]))
			}
		case "vn":
			if v, ok := parseFloats(fields[1:], 3); ok {
				data.normals = append(data.normals, math.NewVec3(v[0], v[1], v[2]))
			}
		case "vt":
			if v, ok := parseFloats(fields[1:], 2); ok {
				data.uvs = append(data.uvs, math.NewVec2(v[0], v[1]))
			}
		case "o", "g":
			if len(cur.faces) > 0 {
				data.groups = append(data.groups, cur)
			}
			name := "default"
			if len(fields) > 1 {
				name = fields[1]
			}
			cur = &objGroup{name: name, material: cur.material}
		case "usemtl":
			if len(fields) > 1 {
				if len(cur.faces) > 0 {
					data.groups = append(data.groups, cur)
					cur = &objGroup{name: cur.name}
				}
				cur.material = fields[1]
			}
		case "mtllib":
			data.mtllibs = append(data.mtllibs, fields[1:]...)
		case "f":
			if len(fields) < 4 {
				continue
			}
			refs := make([][3]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				refs = append(refs, data.parseFaceVertex(tok))
			}
			// fan: 0-1-2, 0-2-3, ...
			for i := 1; i+1 < len(refs); i++ {
				a, b, c := refs[0], refs[i], refs[i+1]
				cur.faces = append(cur.faces, objFace{
					v:  [3]int{a[0], b[0], c[0]},
					vt: [3]int{a[1], b[1], c[1]},
					vn: [3]int{a[2], b[2], c[2]},
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(cur.faces) > 0 {
		data.groups = append(data.groups, cur)
	}
	if len(data.groups) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	return data, nil
}

func parseFloats(fields []string, n int) ([]float32, bool) {
	if len(fields) < n {
		return nil, false
	}
	out := make([]float32, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, false
		}
		out[i] = float32(f)
	}
	return out, true
}

// parseFaceVertex parses "v", "v/vt", "v//vn" or "v/vt/vn" into 0-based
// position, uv and normal indices. Negative indices count back from the
// end of the pools read so far.
func (d *objData) parseFaceVertex(tok string) [3]int {
	pools := [3]int{len(d.positions), len(d.uvs), len(d.normals)}
	out := [3]int{-1, -1, -1}
	for i, part := range strings.SplitN(tok, "/", 3) {
		n, err := strconv.Atoi(part)
		switch {
		case err != nil || n == 0:
		case n > 0:
			out[i] = n - 1
		default:
			out[i] = pools[i] + n
		}
	}
	return out
}

// buildMesh deduplicates face corners into an indexed mesh. Groups without
// normals get area-weighted smooth normals.
func (d *objData) buildMesh(g *objGroup) *Mesh {
	type key [3]int
	seen := map[key]uint32{}
	var (
		vertices []core.Vertex
		indices  []uint32
	)
	hasNormals := true
	for _, face := range g.faces {
		for c := range 3 {
			k := key{face.v[c], face.vt[c], face.vn[c]}
			if idx, ok := seen[k]; ok {
				indices = append(indices, idx)
				continue
			}
			v := core.Vertex{Normal: math.Vec3Up}
			if k[0] >= 0 && k[0] < len(d.positions) {
				v.Position = d.positions[k[0]]
			}
			if k[1] >= 0 && k[1] < len(d.uvs) {
				v.UV = d.uvs[k[1]]
			}
			if k[2] >= 0 && k[2] < len(d.normals) {
				v.Normal = d.normals[k[2]]
			} else {
				hasNormals = false
			}
			idx := uint32(len(vertices))
			seen[k] = idx
			vertices = append(vertices, v)
			indices = append(indices, idx)
		}
	}
	if !hasNormals {
		smoothNormals(vertices, indices)
	}
	return NewMesh(g.name, vertices, indices)
}

func smoothNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]math.Vec3, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := vertices[i0].Position
		n := vertices[i1].Position.Sub(p0).Cross(vertices[i2].Position.Sub(p0))
		accum[i0] = accum[i0].Add(n)
		accum[i1] = accum[i1].Add(n)
		accum[i2] = accum[i2].Add(n)
	}
	for i := range vertices {
		if accum[i].Length() > 0 {
			vertices[i].Normal = accum[i].Normalize()
		}
	}
}

// loadMTL reads the materials of one .mtl file in declaration order.
// Texture maps that fail to load are dropped with a warning.
func loadMTL(path string, logger *slog.Logger) ([]*Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	var (
		mats []*Material
		cur  *Material
	)
	loadMap := func(name string) *Texture {
		tex, err := LoadTexture(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("mtl texture", "material", cur.Name, "map", name, "err", err)
			return nil
		}
		return tex
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = DefaultMaterial()
				cur.Name = fields[1]
				mats = append(mats, cur)
			}
			continue
		}
		if cur == nil || len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "Kd":
			if v, ok := parseFloats(fields[1:], 3); ok {
				cur.Diffuse = math.NewVec3(v[0], v[1], v[2])
			}
		case "Ks":
			if v, ok := parseFloats(fields[1:], 3); ok {
				cur.Specular = math.NewVec3(v[0], v[1], v[2])
			}
		case "Ke":
			if v, ok := parseFloats(fields[1:], 3); ok {
				cur.Emissive = math.NewVec3(v[0], v[1], v[2])
			}
		case "Ns":
			if v, ok := parseFloats(fields[1:], 1); ok {
				cur.Shininess = max(1, v[0])
			}
		case "map_Kd":
			if tex := loadMap(fields[len(fields)-1]); tex != nil {
				cur.DiffuseTexture = tex
				cur.Diffuse = math.Vec3Zero
			}
		case "map_Ks":
			cur.SpecularTexture = loadMap(fields[len(fields)-1])
		case "map_Ke":
			cur.EmissiveTexture = loadMap(fields[len(fields)-1])
		}
	}
	return mats, scanner.Err()
}
