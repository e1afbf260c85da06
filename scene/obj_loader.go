package scene

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

// OBJData is a parsed Wavefront file. Every object, group or usemtl
// section with faces is one part of Mesh.
type OBJData struct {
	Mesh *MeshData
	// PartMaterials names the material of each part, empty when unset.
	PartMaterials []string
	// MaterialLibs lists the mtllib files in order of appearance.
	MaterialLibs []string
}

// OBJMaterial is the subset of an .mtl material the unlit prefabs can show.
type OBJMaterial struct {
	Diffuse    math.Vec4
	DiffuseMap string
}

type objVertex struct{ v, vt, vn int }

type objParser struct {
	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2

	data   *OBJData
	lookup map[objVertex]uint32
	part   []uint32
	mat    string
}

// ParseOBJ reads triangles and polygons, fan-triangulating the latter.
// Vertices sharing position, uv and normal indices are merged. Smooth
// normals are generated when the file has none.
func ParseOBJ(name string, r io.Reader) (*OBJData, error) {
	p := &objParser{
		data:   &OBJData{Mesh: &MeshData{Name: name, Primitive: gpu.PrimitiveTriangles}},
		lookup: make(map[objVertex]uint32),
	}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if err := p.parseLine(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("obj %q line %d: %w", name, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan obj %q: %w", name, err)
	}
	p.flush()

	if len(p.data.Mesh.Parts) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", name)
	}
	if len(p.normals) == 0 {
		generateNormals(p.data.Mesh)
	}
	return p.data, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := range n {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

func (p *objParser) parseLine(line string) error {
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	fields := strings.Fields(line)

	switch fields[0] {
	case "v":
		f, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, math.Vec3{X: f[0], Y: f[1], Z: f[2]})
	case "vn":
		f, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, math.Vec3{X: f[0], Y: f[1], Z: f[2]})
	case "vt":
		f, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, math.Vec2{X: f[0], Y: f[1]})
	case "o", "g":
		p.flush()
	case "usemtl":
		p.flush()
		if len(fields) > 1 {
			p.mat = fields[1]
		}
	case "mtllib":
		p.data.MaterialLibs = append(p.data.MaterialLibs, fields[1:]...)
	case "f":
		if len(fields) < 4 {
			return fmt.Errorf("face with %d vertices", len(fields)-1)
		}
		corners := make([]uint32, 0, len(fields)-1)
		for _, tok := range fields[1:] {
			idx, err := p.vertex(tok)
			if err != nil {
				return err
			}
			corners = append(corners, idx)
		}
		for i := 1; i+1 < len(corners); i++ {
			p.part = append(p.part, corners[0], corners[i], corners[i+1])
		}
	}
	return nil
}

// flush closes the current part, if it has faces. It runs before usemtl
// changes the material.
func (p *objParser) flush() {
	if len(p.part) > 0 {
		p.data.Mesh.Parts = append(p.data.Mesh.Parts, p.part)
		p.data.PartMaterials = append(p.data.PartMaterials, p.mat)
		p.part = nil
	}
}

// resolve turns a 1-based or negative relative reference into an index.
func resolve(tok string, count int) (int, error) {
	if tok == "" {
		return -1, nil
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		n += count
	} else {
		n--
	}
	if n < 0 || n >= count {
		return 0, fmt.Errorf("reference %s out of range [1, %d]", tok, count)
	}
	return n, nil
}

// vertex parses "v", "v/vt", "v//vn" or "v/vt/vn" and returns the merged
// vertex index.
func (p *objParser) vertex(tok string) (uint32, error) {
	refs := strings.Split(tok, "/")
	var key objVertex
	var err error
	if key.v, err = resolve(refs[0], len(p.positions)); err != nil {
		return 0, err
	}
	if key.v < 0 {
		return 0, fmt.Errorf("face vertex %q without position", tok)
	}
	key.vt, key.vn = -1, -1
	if len(refs) > 1 {
		if key.vt, err = resolve(refs[1], len(p.uvs)); err != nil {
			return 0, err
		}
	}
	if len(refs) > 2 {
		if key.vn, err = resolve(refs[2], len(p.normals)); err != nil {
			return 0, err
		}
	}

	if idx, ok := p.lookup[key]; ok {
		return idx, nil
	}
	mesh := p.data.Mesh
	idx := uint32(len(mesh.Positions))
	mesh.Positions = append(mesh.Positions, p.positions[key.v])
	normal := math.Vec3Up
	if key.vn >= 0 {
		normal = p.normals[key.vn]
	}
	mesh.Normals = append(mesh.Normals, normal)
	var uv math.Vec2
	if key.vt >= 0 {
		uv = p.uvs[key.vt]
	}
	mesh.UVs = append(mesh.UVs, uv)
	p.lookup[key] = idx
	return idx, nil
}

// generateNormals replaces the normals of d with area-weighted averages of
// the adjacent face normals.
func generateNormals(d *MeshData) {
	accum := make([]math.Vec3, len(d.Positions))
	for _, part := range d.Parts {
		for i := 0; i+2 < len(part); i += 3 {
			i0, i1, i2 := part[i], part[i+1], part[i+2]
			v0 := d.Positions[i0]
			n := d.Positions[i1].Sub(v0).Cross(d.Positions[i2].Sub(v0))
			accum[i0] = accum[i0].Add(n)
			accum[i1] = accum[i1].Add(n)
			accum[i2] = accum[i2].Add(n)
		}
	}
	for i, n := range accum {
		if n.Length() > 0 {
			d.Normals[i] = n.Normalize()
		}
	}
}

// ParseMTL reads newmtl, Kd, d and map_Kd statements.
func ParseMTL(r io.Reader) (map[string]*OBJMaterial, error) {
	mats := make(map[string]*OBJMaterial)
	var cur *OBJMaterial

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			if len(fields) > 1 {
				cur = &OBJMaterial{Diffuse: math.Vec4{X: 1, Y: 1, Z: 1, W: 1}}
				mats[fields[1]] = cur
			}
			continue
		}
		if cur == nil {
			continue
		}
		switch fields[0] {
		case "Kd":
			if f, err := parseFloats(fields[1:], 3); err == nil {
				cur.Diffuse.X, cur.Diffuse.Y, cur.Diffuse.Z = f[0], f[1], f[2]
			}
		case "d":
			if f, err := parseFloats(fields[1:], 1); err == nil {
				cur.Diffuse.W = f[0]
			}
		case "map_Kd":
			if len(fields) > 1 {
				// options precede the file name
				cur.DiffuseMap = fields[len(fields)-1]
			}
		}
	}
	return mats, scanner.Err()
}

// LoadOBJ imports a Wavefront file as a single node. Materials come from
// the referenced .mtl libraries; missing libraries and textures are logged
// and fall back to white.
func LoadOBJ(path string, r *renderer.Renderer) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	data, err := ParseOBJ(path, f)
	if err != nil {
		return nil, err
	}

	log := r.Logger().With("obj", path)
	dir := filepath.Dir(path)
	mats := make(map[string]*OBJMaterial)
	for _, lib := range data.MaterialLibs {
		if err := loadMTL(filepath.Join(dir, lib), mats); err != nil {
			log.Warn("obj material library skipped", "lib", lib, "err", err)
		}
	}

	model := &Model{}
	mf := newMaterialFactory(r, model)
	defer mf.close()

	fail := func(err error) (*Model, error) {
		model.Release()
		return nil, fmt.Errorf("obj %q: %w", path, err)
	}

	built := make(map[string]*renderer.Material)
	materials := make([]*renderer.Material, len(data.PartMaterials))
	for i, name := range data.PartMaterials {
		if m, ok := built[name]; ok {
			materials[i] = m
			continue
		}
		color := math.Vec4{X: 1, Y: 1, Z: 1, W: 1}
		var tex *renderer.Texture
		if om, ok := mats[name]; ok {
			color = om.Diffuse
			if om.DiffuseMap != "" {
				if tex, err = LoadTexture(r, filepath.Join(dir, om.DiffuseMap)); err != nil {
					log.Warn("obj texture skipped", "material", name, "err", err)
					tex = nil
				} else {
					model.Textures = append(model.Textures, tex)
				}
			}
		}
		m, err := mf.newMaterial(color, tex)
		if err != nil {
			return fail(err)
		}
		if color.W < 1 {
			m.SetBlendEnabled(true)
			m.SetDepthWrite(false)
		}
		built[name] = m
		materials[i] = m
	}

	mesh, err := data.Mesh.Upload(r)
	if err != nil {
		return fail(err)
	}
	model.Meshes = append(model.Meshes, mesh)

	node := NewNode(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	node.Renderer = NewMeshRenderer(mesh, materials...)
	node.Bounds = data.Mesh.Bounds()
	node.HasBounds = true
	model.Roots = []*Node{node}
	return model, nil
}

func loadMTL(path string, into map[string]*OBJMaterial) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	mats, err := ParseMTL(f)
	if err != nil {
		return err
	}
	for name, m := range mats {
		into[name] = m
	}
	return nil
}
