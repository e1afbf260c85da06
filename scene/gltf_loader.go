package scene

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

type gltfLoader struct {
	doc *gltf.Document
	dir string
	r   *renderer.Renderer
	log *slog.Logger
	res *Model
	mf  *materialFactory

	textures   map[int]*renderer.Texture
	materials  map[int]*renderer.Material
	defaultMat *renderer.Material
}

// LoadGLTF opens a .gltf or .glb file and builds its node hierarchy with
// uploaded meshes. Triangle primitives of a glTF mesh become the parts of
// one renderer mesh. Materials use the unlit prefabs with the base color
// factor and base color texture.
func LoadGLTF(path string, r *renderer.Renderer) (*Model, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	model := &Model{}
	l := &gltfLoader{
		doc:       doc,
		dir:       filepath.Dir(path),
		r:         r,
		log:       r.Logger().With("gltf", path),
		res:       model,
		mf:        newMaterialFactory(r, model),
		textures:  make(map[int]*renderer.Texture),
		materials: make(map[int]*renderer.Material),
	}
	defer l.mf.close()

	if err := l.load(); err != nil {
		l.res.Release()
		return nil, fmt.Errorf("gltf %q: %w", path, err)
	}
	l.log.Debug("gltf loaded",
		"roots", len(l.res.Roots),
		"meshes", len(l.res.Meshes),
		"materials", len(l.res.Materials),
		"textures", len(l.res.Textures))
	return l.res, nil
}

type loadedMesh struct {
	renderer *MeshRenderer
	bounds   AABB
}

func (l *gltfLoader) load() error {
	doc := l.doc

	meshes := make([]*loadedMesh, len(doc.Meshes))
	for i, gm := range doc.Meshes {
		lm, err := l.loadMesh(i, gm)
		if err != nil {
			return err
		}
		meshes[i] = lm
	}

	nodes := make([]*Node, len(doc.Nodes))
	for i, gn := range doc.Nodes {
		name := gn.Name
		if name == "" {
			name = fmt.Sprintf("node_%d", i)
		}
		n := NewNode(name)
		n.SetTransform(nodeTransform(gn))

		if gn.Mesh != nil && *gn.Mesh < len(meshes) && meshes[*gn.Mesh] != nil {
			lm := meshes[*gn.Mesh]
			n.Renderer = &MeshRenderer{Mesh: lm.renderer.Mesh, Materials: lm.renderer.Materials}
			n.Bounds = lm.bounds
			n.HasBounds = true
		}
		nodes[i] = n
	}

	hasParent := make([]bool, len(nodes))
	for i, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(nodes) && !hasParent[c] && c != i {
				nodes[i].AddChild(nodes[c])
				hasParent[c] = true
			}
		}
	}

	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		for _, idx := range doc.Scenes[*doc.Scene].Nodes {
			if idx < len(nodes) {
				l.res.Roots = append(l.res.Roots, nodes[idx])
			}
		}
		return nil
	}
	for i, n := range nodes {
		if !hasParent[i] {
			l.res.Roots = append(l.res.Roots, n)
		}
	}
	return nil
}

// nodeTransform reads either the TRS properties or the column-major node
// matrix, which is row-major in row-vector form.
func nodeTransform(gn *gltf.Node) Transform {
	m := gn.MatrixOrDefault()
	var mat math.Mat4
	for i := range 16 {
		mat[i/4][i%4] = float32(m[i])
	}
	if mat != math.Mat4Identity() {
		return decompose(mat)
	}

	t := gn.TranslationOrDefault()
	s := gn.ScaleOrDefault()
	r := gn.RotationOrDefault()
	return Transform{
		Position: math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		Rotation: math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		Scale:    math.Vec3{X: float32(s[0]), Y: float32(s[1]), Z: float32(s[2])},
	}
}

// decompose splits a row-vector TRS matrix without shear.
func decompose(m math.Mat4) Transform {
	row := func(i int) math.Vec3 { return math.Vec3{X: m[i][0], Y: m[i][1], Z: m[i][2]} }
	scale := math.Vec3{X: row(0).Length(), Y: row(1).Length(), Z: row(2).Length()}

	rot := math.Mat4Identity()
	for i, s := range []float32{scale.X, scale.Y, scale.Z} {
		if s == 0 {
			continue
		}
		for j := range 3 {
			rot[i][j] = m[i][j] / s
		}
	}
	return Transform{
		Position: row(3),
		Rotation: math.QuaternionFromMat4(rot),
		Scale:    scale,
	}
}

func (l *gltfLoader) loadMesh(index int, gm *gltf.Mesh) (*loadedMesh, error) {
	name := gm.Name
	if name == "" {
		name = fmt.Sprintf("mesh_%d", index)
	}
	data := &MeshData{Name: name, Primitive: gpu.PrimitiveTriangles}
	var materials []*renderer.Material

	for pi, prim := range gm.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			l.log.Warn("gltf primitive skipped", "mesh", name, "primitive", pi, "mode", prim.Mode)
			continue
		}
		if err := l.appendPrimitive(data, prim); err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
		}
		mat, err := l.material(prim.Material)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", name, pi, err)
		}
		materials = append(materials, mat)
	}
	if len(data.Parts) == 0 {
		return nil, nil
	}

	mesh, err := data.Upload(l.r)
	if err != nil {
		return nil, err
	}
	l.res.Meshes = append(l.res.Meshes, mesh)
	return &loadedMesh{
		renderer: NewMeshRenderer(mesh, materials...),
		bounds:   data.Bounds(),
	}, nil
}

// appendPrimitive adds the vertices of prim to data and its indices as a
// new part. Missing normals point up, missing UVs are zero.
func (l *gltfLoader) appendPrimitive(data *MeshData, prim *gltf.Primitive) error {
	doc := l.doc
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("uvs: %w", err)
		}
	}

	base := uint32(len(data.Positions))
	for i, p := range positions {
		data.Positions = append(data.Positions, math.Vec3{X: p[0], Y: p[1], Z: p[2]})
		n := math.Vec3Up
		if i < len(normals) {
			n = math.Vec3{X: normals[i][0], Y: normals[i][1], Z: normals[i][2]}
		}
		data.Normals = append(data.Normals, n)
		var uv math.Vec2
		if i < len(uvs) {
			uv = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		data.UVs = append(data.UVs, uv)
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil); err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	part := make([]uint32, len(indices))
	for i, idx := range indices {
		part[i] = base + idx
	}
	data.Parts = append(data.Parts, part)
	return nil
}

// material returns the renderer material of a glTF material index. Nil
// selects a shared white material.
func (l *gltfLoader) material(index *int) (*renderer.Material, error) {
	if index == nil || *index >= len(l.doc.Materials) {
		if l.defaultMat == nil {
			m, err := l.mf.newMaterial(math.Vec4One, nil)
			if err != nil {
				return nil, err
			}
			l.defaultMat = m
		}
		return l.defaultMat, nil
	}
	if m, ok := l.materials[*index]; ok {
		return m, nil
	}

	gm := l.doc.Materials[*index]
	color := math.Vec4One
	var tex *renderer.Texture
	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		cf := pbr.BaseColorFactorOrDefault()
		color = math.Vec4{X: float32(cf[0]), Y: float32(cf[1]), Z: float32(cf[2]), W: float32(cf[3])}
		if pbr.BaseColorTexture != nil {
			tex = l.texture(pbr.BaseColorTexture.Index)
		}
	}

	m, err := l.mf.newMaterial(color, tex)
	if err != nil {
		return nil, fmt.Errorf("material %q: %w", gm.Name, err)
	}
	if gm.DoubleSided {
		m.SetFaceCull(gpu.FaceCullAll)
	}
	if gm.AlphaMode == gltf.AlphaBlend {
		m.SetBlendEnabled(true)
		m.SetDepthWrite(false)
	}
	l.materials[*index] = m
	return m, nil
}

// texture uploads the image of a glTF texture. Images that fail to load
// are logged and skipped so the material falls back to its color.
func (l *gltfLoader) texture(index int) *renderer.Texture {
	if t, ok := l.textures[index]; ok {
		return t
	}
	l.textures[index] = nil

	doc := l.doc
	if index >= len(doc.Textures) || doc.Textures[index].Source == nil {
		return nil
	}
	src := *doc.Textures[index].Source
	gi := doc.Images[src]

	img, err := l.image(src, gi)
	if err != nil {
		l.log.Warn("gltf image skipped", "image", src, "err", err)
		return nil
	}
	tex, err := img.Upload(l.r)
	if err != nil {
		l.log.Warn("gltf image skipped", "image", src, "err", err)
		return nil
	}
	l.res.Textures = append(l.res.Textures, tex)
	l.textures[index] = tex
	return tex
}

func (l *gltfLoader) image(index int, gi *gltf.Image) (*Image, error) {
	name := gi.Name
	if name == "" {
		name = fmt.Sprintf("image_%d", index)
	}
	switch {
	case gi.BufferView != nil:
		raw, err := modeler.ReadBufferView(l.doc, l.doc.BufferViews[*gi.BufferView])
		if err != nil {
			return nil, fmt.Errorf("buffer view: %w", err)
		}
		return decodeImageBytes(name, raw)
	case gi.IsEmbeddedResource():
		raw, err := gi.MarshalData()
		if err != nil {
			return nil, fmt.Errorf("embedded data: %w", err)
		}
		return decodeImageBytes(name, raw)
	case gi.URI != "":
		return LoadImage(filepath.Join(l.dir, gi.URI))
	}
	return nil, fmt.Errorf("image %d has no data", index)
}
