package scene

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"gopkg.in/yaml.v3"

	"solo-engine/core"
	"solo-engine/math"
	"solo-engine/renderer"
)

// SceneFile is the YAML description of a scene: cameras, an optional
// gradient sky and a node tree. Vectors are flow lists, rotations are
// quaternions as [x, y, z, w] and camera fields of view are in degrees.
type SceneFile struct {
	Version int          `yaml:"version"`
	Sky     *SkyDesc     `yaml:"sky,omitempty"`
	Cameras []CameraDesc `yaml:"cameras,omitempty"`
	Nodes   []NodeDesc   `yaml:"nodes,omitempty"`
}

// SkyDesc selects a gradient sky, or a cube map skybox when Cubemap lists
// six face images (+X, -X, +Y, -Y, +Z, -Z) relative to the scene file.
type SkyDesc struct {
	Zenith  []float32 `yaml:"zenith,flow"`
	Horizon []float32 `yaml:"horizon,flow"`
	Ground  []float32 `yaml:"ground,flow"`
	Cubemap []string  `yaml:"cubemap,flow,omitempty"`
}

type CameraDesc struct {
	Name       string    `yaml:"name,omitempty"`
	Order      int       `yaml:"order,omitempty"`
	Projection string    `yaml:"projection,omitempty"`
	FOV        float32   `yaml:"fov,omitempty"`
	Size       float32   `yaml:"size,omitempty"`
	Near       float32   `yaml:"near,omitempty"`
	Far        float32   `yaml:"far,omitempty"`
	Position   []float32 `yaml:"position,flow,omitempty"`
	Rotation   []float32 `yaml:"rotation,flow,omitempty"`
	LookAt     []float32 `yaml:"look_at,flow,omitempty"`
	ClearColor []float32 `yaml:"clear_color,flow,omitempty"`
	TagMask    *uint32   `yaml:"tag_mask,omitempty"`
}

// NodeDesc describes one node. Mesh is a primitive name (triangle, quad,
// cube, sphere, plane, grid) or "model:" followed by a .gltf, .glb or .obj
// path relative to the scene file.
type NodeDesc struct {
	Name     string     `yaml:"name"`
	Position []float32  `yaml:"position,flow,omitempty"`
	Rotation []float32  `yaml:"rotation,flow,omitempty"`
	Scale    []float32  `yaml:"scale,flow,omitempty"`
	Hidden   bool       `yaml:"hidden,omitempty"`
	Tags     uint32     `yaml:"tags,omitempty"`
	Mesh     string     `yaml:"mesh,omitempty"`
	Color    []float32  `yaml:"color,flow,omitempty"`
	Children []NodeDesc `yaml:"children,omitempty"`
}

const (
	sceneFileVersion = 1
	modelPrefix      = "model:"
	skySource        = "sky"
)

// ParseSceneFile decodes YAML, rejecting unknown fields.
func ParseSceneFile(data []byte) (*SceneFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var f SceneFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	if f.Version > sceneFileVersion {
		return nil, fmt.Errorf("scene version %d is newer than %d", f.Version, sceneFileVersion)
	}
	return &f, nil
}

// LoadSceneFile reads and decodes path.
func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %q: %w", path, err)
	}
	f, err := ParseSceneFile(data)
	if err != nil {
		return nil, fmt.Errorf("scene %q: %w", path, err)
	}
	return f, nil
}

// SaveScene writes the cameras and node tree of s to path. Geometry is
// stored by its Source name; the children of imported models and the sky
// are not written.
func SaveScene(s *Scene, path string) error {
	data, err := yaml.Marshal(Describe(s))
	if err != nil {
		return fmt.Errorf("marshal scene: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write scene %q: %w", path, err)
	}
	return nil
}

// Describe captures s as a SceneFile.
func Describe(s *Scene) *SceneFile {
	f := &SceneFile{Version: sceneFileVersion}
	for _, c := range s.Cameras() {
		f.Cameras = append(f.Cameras, describeCamera(c))
	}
	for _, n := range s.Root().Children {
		if n.Source == skySource {
			continue
		}
		f.Nodes = append(f.Nodes, describeNode(n))
	}
	return f
}

func describeCamera(c *Camera) CameraDesc {
	near, far := c.ClipPlanes()
	mask := c.TagMask
	d := CameraDesc{
		Name:       c.Name,
		Order:      c.Order,
		Near:       near,
		Far:        far,
		Position:   vec3Slice(c.Position()),
		Rotation:   quatSlice(c.Rotation()),
		ClearColor: colorSlice(c.ClearColor()),
		TagMask:    &mask,
	}
	if c.Projection() == Orthographic {
		d.Projection = "orthographic"
		d.Size = c.OrthoSize()
	} else {
		d.Projection = "perspective"
		d.FOV = c.FOV() * 180 / math32.Pi
	}
	return d
}

func describeNode(n *Node) NodeDesc {
	t := n.Transform()
	d := NodeDesc{
		Name:     n.Name,
		Position: vec3Slice(t.Position),
		Rotation: quatSlice(t.Rotation),
		Scale:    vec3Slice(t.Scale),
		Hidden:   !n.Visible,
		Mesh:     n.Source,
	}
	if n.Tags != DefaultTags {
		d.Tags = n.Tags
	}
	if strings.HasPrefix(n.Source, modelPrefix) {
		return d
	}
	for _, c := range n.Children {
		d.Children = append(d.Children, describeNode(c))
	}
	return d
}

// Build adds the file's cameras, sky and nodes to s. Relative model paths
// resolve against dir. The returned Model owns every GPU resource created;
// on error nothing is added and nothing leaks.
func (f *SceneFile) Build(s *Scene, r *renderer.Renderer, dir string) (*Model, error) {
	b := &sceneBuilder{
		r:      r,
		dir:    dir,
		model:  &Model{},
		meshes: make(map[string]*renderer.Mesh),
	}
	b.mf = newMaterialFactory(r, b.model)
	defer b.mf.close()

	cams, roots, err := b.build(f)
	if err != nil {
		b.model.Release()
		return nil, err
	}
	for _, c := range cams {
		s.AddCamera(c)
	}
	for _, n := range roots {
		s.AddNode(n)
	}
	return b.model, nil
}

type sceneBuilder struct {
	r      *renderer.Renderer
	dir    string
	model  *Model
	mf     *materialFactory
	meshes map[string]*renderer.Mesh
}

func (b *sceneBuilder) build(f *SceneFile) ([]*Camera, []*Node, error) {
	var cams []*Camera
	for i, cd := range f.Cameras {
		c, err := buildCamera(cd)
		if err != nil {
			return nil, nil, fmt.Errorf("camera %d: %w", i, err)
		}
		cams = append(cams, c)
	}

	var roots []*Node
	if f.Sky != nil {
		sky, err := b.sky(f.Sky)
		if err != nil {
			return nil, nil, err
		}
		roots = append(roots, sky)
	}
	for _, nd := range f.Nodes {
		n, err := b.node(nd)
		if err != nil {
			return nil, nil, err
		}
		roots = append(roots, n)
	}
	return cams, roots, nil
}

func buildCamera(d CameraDesc) (*Camera, error) {
	near, far := d.Near, d.Far
	if near == 0 {
		near = 0.1
	}
	if far == 0 {
		far = 100
	}
	if near <= 0 || far <= near {
		return nil, fmt.Errorf("invalid clip planes %g..%g", near, far)
	}

	var c *Camera
	switch d.Projection {
	case "", "perspective":
		fov := d.FOV
		if fov == 0 {
			fov = 60
		}
		c = NewCamera(fov*math32.Pi/180, 1, near, far)
	case "orthographic":
		size := d.Size
		if size == 0 {
			size = 2
		}
		c = NewOrthographicCamera(size, 1, near, far)
	default:
		return nil, fmt.Errorf("unknown projection %q", d.Projection)
	}
	c.Name = d.Name
	c.Order = d.Order
	if d.TagMask != nil {
		c.TagMask = *d.TagMask
	}

	pos, err := vec3From("position", d.Position, math.Vec3Zero)
	if err != nil {
		return nil, err
	}
	c.SetPosition(pos)
	rot, err := quatFrom(d.Rotation)
	if err != nil {
		return nil, err
	}
	c.SetRotation(rot)
	if d.LookAt != nil {
		target, err := vec3From("look_at", d.LookAt, math.Vec3Zero)
		if err != nil {
			return nil, err
		}
		c.LookAt(target, math.Vec3Up)
	}
	if d.ClearColor != nil {
		color, err := colorFrom("clear_color", d.ClearColor)
		if err != nil {
			return nil, err
		}
		c.SetClearColor(color)
	}
	return c, nil
}

func (b *sceneBuilder) sky(d *SkyDesc) (*Node, error) {
	if d.Cubemap != nil {
		return b.skybox(d.Cubemap)
	}
	colors := DefaultSkyColors()
	for _, f := range []struct {
		name string
		in   []float32
		out  *core.Color
	}{
		{"zenith", d.Zenith, &colors.Zenith},
		{"horizon", d.Horizon, &colors.Horizon},
		{"ground", d.Ground, &colors.Ground},
	} {
		if f.in == nil {
			continue
		}
		c, err := colorFrom("sky "+f.name, f.in)
		if err != nil {
			return nil, err
		}
		*f.out = c
	}
	n, err := NewSkyGradient(b.r, colors)
	if err != nil {
		return nil, err
	}
	b.own(n)
	n.Source = skySource
	return n, nil
}

func (b *sceneBuilder) skybox(faces []string) (*Node, error) {
	if len(faces) != 6 {
		return nil, fmt.Errorf("sky cubemap: want 6 faces, got %d", len(faces))
	}
	var paths [6]string
	for i, f := range faces {
		paths[i] = b.resolve(f)
	}
	tex, err := LoadCubeTexture(b.r, paths)
	if err != nil {
		return nil, err
	}
	b.model.Textures = append(b.model.Textures, tex)
	n, err := NewSkybox(b.r, tex)
	if err != nil {
		return nil, err
	}
	b.own(n)
	n.Source = skySource
	return n, nil
}

func (b *sceneBuilder) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(b.dir, path)
}

// own hands the mesh and materials of a self-contained node to the model.
func (b *sceneBuilder) own(n *Node) {
	if n.Renderer == nil {
		return
	}
	b.model.Meshes = append(b.model.Meshes, n.Renderer.Mesh)
	b.model.Materials = append(b.model.Materials, n.Renderer.Materials...)
}

func (b *sceneBuilder) node(d NodeDesc) (*Node, error) {
	n := NewNode(d.Name)
	if err := applyTransform(n, d); err != nil {
		return nil, fmt.Errorf("node %q: %w", d.Name, err)
	}
	n.Visible = !d.Hidden
	if d.Tags != 0 {
		n.Tags = d.Tags
	}
	if err := b.attach(n, d); err != nil {
		return nil, fmt.Errorf("node %q: %w", d.Name, err)
	}
	for _, cd := range d.Children {
		child, err := b.node(cd)
		if err != nil {
			return nil, err
		}
		n.AddChild(child)
	}
	return n, nil
}

func applyTransform(n *Node, d NodeDesc) error {
	t := NewTransform()
	var err error
	if t.Position, err = vec3From("position", d.Position, math.Vec3Zero); err != nil {
		return err
	}
	if t.Rotation, err = quatFrom(d.Rotation); err != nil {
		return err
	}
	if t.Scale, err = vec3From("scale", d.Scale, math.Vec3One); err != nil {
		return err
	}
	n.SetTransform(t)
	return nil
}

func (b *sceneBuilder) attach(n *Node, d NodeDesc) error {
	if d.Mesh == "" {
		return nil
	}
	n.Source = d.Mesh

	if path, ok := strings.CutPrefix(d.Mesh, modelPrefix); ok {
		m, err := LoadModel(b.resolve(path), b.r)
		if err != nil {
			return err
		}
		b.model.absorb(m)
		for _, root := range m.Roots {
			n.AddChild(root)
		}
		return nil
	}

	if d.Mesh == "grid" {
		grid, err := NewGrid(b.r, 20, 20)
		if err != nil {
			return err
		}
		b.own(grid)
		n.Renderer = grid.Renderer
		return nil
	}

	data, err := primitive(d.Mesh)
	if err != nil {
		return err
	}
	mesh, ok := b.meshes[d.Mesh]
	if !ok {
		if mesh, err = data.Upload(b.r); err != nil {
			return err
		}
		b.meshes[d.Mesh] = mesh
		b.model.Meshes = append(b.model.Meshes, mesh)
	}

	color := math.Vec4One
	if d.Color != nil {
		c, err := colorFrom("color", d.Color)
		if err != nil {
			return err
		}
		color = math.NewVec4(c.R, c.G, c.B, c.A)
	}
	mat, err := b.mf.newMaterial(color, nil)
	if err != nil {
		return err
	}
	n.Renderer = NewMeshRenderer(mesh, mat)
	n.Bounds = data.Bounds()
	n.HasBounds = true
	return nil
}

func primitive(name string) (*MeshData, error) {
	switch name {
	case "triangle":
		return CreateTriangle(), nil
	case "quad":
		return CreateQuad(), nil
	case "cube":
		return CreateCube(1), nil
	case "sphere":
		return CreateSphere(0.5, 32, 16), nil
	case "plane":
		return CreatePlane(10, 10, 1), nil
	}
	return nil, fmt.Errorf("unknown mesh %q", name)
}

// absorb takes ownership of other's resources.
func (m *Model) absorb(other *Model) {
	m.Meshes = append(m.Meshes, other.Meshes...)
	m.Materials = append(m.Materials, other.Materials...)
	m.Textures = append(m.Textures, other.Textures...)
	other.Meshes, other.Materials, other.Textures = nil, nil, nil
}

func vec3From(field string, v []float32, def math.Vec3) (math.Vec3, error) {
	switch len(v) {
	case 0:
		return def, nil
	case 3:
		return math.Vec3{X: v[0], Y: v[1], Z: v[2]}, nil
	}
	return math.Vec3{}, fmt.Errorf("%s needs 3 values, got %d", field, len(v))
}

func quatFrom(v []float32) (math.Quaternion, error) {
	switch len(v) {
	case 0:
		return math.QuaternionIdentity(), nil
	case 4:
		return math.Quaternion{X: v[0], Y: v[1], Z: v[2], W: v[3]}.Normalize(), nil
	}
	return math.Quaternion{}, fmt.Errorf("rotation needs 4 values, got %d", len(v))
}

// colorFrom accepts RGB or RGBA.
func colorFrom(field string, v []float32) (core.Color, error) {
	switch len(v) {
	case 3:
		return core.Color{R: v[0], G: v[1], B: v[2], A: 1}, nil
	case 4:
		return core.Color{R: v[0], G: v[1], B: v[2], A: v[3]}, nil
	}
	return core.Color{}, fmt.Errorf("%s needs 3 or 4 values, got %d", field, len(v))
}

func vec3Slice(v math.Vec3) []float32 { return []float32{v.X, v.Y, v.Z} }

func quatSlice(q math.Quaternion) []float32 { return []float32{q.X, q.Y, q.Z, q.W} }

func colorSlice(c core.Color) []float32 { return []float32{c.R, c.G, c.B, c.A} }
