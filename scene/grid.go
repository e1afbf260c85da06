package scene

import (
	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

// Parts of a grid mesh.
const (
	GridPartLines = iota
	GridPartAxisX
	GridPartAxisZ
)

// CreateGrid builds a line grid on the XZ plane spanning -size/2..size/2
// with divisions cells per axis. The axis lines through the origin are
// kept in their own parts so they can be colored apart.
func CreateGrid(size float32, divisions int) *MeshData {
	if divisions < 1 {
		divisions = 1
	}
	half := size / 2
	step := size / float32(divisions)

	d := &MeshData{Name: "Grid", Primitive: gpu.PrimitiveLines, Parts: make([][]uint32, 3)}
	addLine := func(part int, a, b math.Vec3) {
		base := uint32(len(d.Positions))
		d.Positions = append(d.Positions, a, b)
		d.Normals = append(d.Normals, math.Vec3Up, math.Vec3Up)
		d.Parts[part] = append(d.Parts[part], base, base+1)
	}

	for i := 0; i <= divisions; i++ {
		if 2*i == divisions {
			continue
		}
		c := -half + float32(i)*step
		addLine(GridPartLines, math.Vec3{X: c, Z: -half}, math.Vec3{X: c, Z: half})
		addLine(GridPartLines, math.Vec3{X: -half, Z: c}, math.Vec3{X: half, Z: c})
	}
	addLine(GridPartAxisX, math.Vec3{X: -half}, math.Vec3{X: half})
	addLine(GridPartAxisZ, math.Vec3{Z: -half}, math.Vec3{Z: half})
	return d
}

// CreateWireBox builds the twelve edges of the box from -1 to 1 on every
// axis. Scale and translate the node to outline any AABB.
func CreateWireBox() *MeshData {
	corners := []math.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: 1}, {X: -1, Y: -1, Z: 1},
		{X: -1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: -1}, {X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	return &MeshData{
		Name:      "WireBox",
		Primitive: gpu.PrimitiveLines,
		Positions: corners,
		Parts: [][]uint32{{
			0, 1, 1, 2, 2, 3, 3, 0,
			4, 5, 5, 6, 6, 7, 7, 4,
			0, 4, 1, 5, 2, 6, 3, 7,
		}},
	}
}

// NewGrid uploads a grid and wraps it in a node with gray lines, a red X
// axis and a blue Z axis.
func NewGrid(r *renderer.Renderer, size float32, divisions int) (*Node, error) {
	mesh, err := CreateGrid(size, divisions).Upload(r)
	if err != nil {
		return nil, err
	}
	colors := []core.Color{
		GridPartLines: {R: 0.35, G: 0.35, B: 0.35, A: 1},
		GridPartAxisX: {R: 0.8, G: 0.15, B: 0.15, A: 1},
		GridPartAxisZ: {R: 0.15, G: 0.35, B: 0.9, A: 1},
	}
	mats, err := lineMaterials(r, colors)
	if err != nil {
		mesh.Destroy()
		return nil, err
	}
	n := NewNode("Grid")
	n.Renderer = NewMeshRenderer(mesh, mats...)
	return n, nil
}

// NewBoundsOutline returns a green wire box node fitted to b.
func NewBoundsOutline(r *renderer.Renderer, b AABB) (*Node, error) {
	mesh, err := CreateWireBox().Upload(r)
	if err != nil {
		return nil, err
	}
	mats, err := lineMaterials(r, []core.Color{{R: 0.1, G: 0.95, B: 0.1, A: 1}})
	if err != nil {
		mesh.Destroy()
		return nil, err
	}
	n := NewNode("Bounds")
	n.Renderer = NewMeshRenderer(mesh, mats...)
	FitOutline(n, b)
	return n, nil
}

// FitOutline moves a node made by NewBoundsOutline onto b. The outline must
// hang off the root for b to be read as world space.
func FitOutline(n *Node, b AABB) {
	n.SetPosition(b.Min.Add(b.Max).Mul(0.5))
	n.SetScale(b.Max.Sub(b.Min).Mul(0.5))
}

func lineMaterials(r *renderer.Renderer, colors []core.Color) ([]*renderer.Material, error) {
	effect, err := r.NewPrefabEffect(renderer.PrefabUnlitColor)
	if err != nil {
		return nil, err
	}
	defer effect.Release()

	mats := make([]*renderer.Material, 0, len(colors))
	for _, c := range colors {
		m := renderer.NewMaterial(effect)
		mats = append(mats, m)
		err := m.BindParameter(renderer.UniformWorldViewProjMatrix, renderer.WorldViewProjectionMatrix)
		if err == nil {
			err = m.SetVector4Parameter(renderer.UniformColor, math.NewVec4(c.R, c.G, c.B, c.A))
		}
		if err != nil {
			for _, m := range mats {
				m.Release()
			}
			return nil, err
		}
	}
	return mats, nil
}
