package scene

import (
	"fmt"

	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

// MeshData holds CPU-side geometry before upload. Normals and UVs are
// either empty or one per position. Each entry of Parts is an index list
// drawn with its own material.
type MeshData struct {
	Name      string
	Primitive gpu.PrimitiveType
	Positions []math.Vec3
	Normals   []math.Vec3
	UVs       []math.Vec2
	Parts     [][]uint32
}

// Layout is the interleaved position/normal/uv layout used by Upload. The
// attributes are named so any effect declaring a subset can draw the mesh.
func Layout() renderer.VertexBufferLayout {
	var l renderer.VertexBufferLayout
	l.AddNamedAttribute(3, renderer.AttributePosition)
	l.AddNamedAttribute(3, renderer.AttributeNormal)
	l.AddNamedAttribute(2, renderer.AttributeUV)
	return l
}

// Bounds is the local bounding box of the positions.
func (d *MeshData) Bounds() AABB { return BoundsOf(d.Positions) }

func (d *MeshData) validate() error {
	n := len(d.Positions)
	if n == 0 {
		return fmt.Errorf("mesh %q has no vertices", d.Name)
	}
	if len(d.Normals) != 0 && len(d.Normals) != n {
		return fmt.Errorf("mesh %q has %d normals for %d vertices", d.Name, len(d.Normals), n)
	}
	if len(d.UVs) != 0 && len(d.UVs) != n {
		return fmt.Errorf("mesh %q has %d uvs for %d vertices", d.Name, len(d.UVs), n)
	}
	for i, part := range d.Parts {
		for _, idx := range part {
			if int(idx) >= n {
				return fmt.Errorf("mesh %q part %d: index %d out of range", d.Name, i, idx)
			}
		}
	}
	return nil
}

// Interleave packs the vertices in Layout order. Missing normals and UVs
// are zero.
func (d *MeshData) Interleave() []float32 {
	out := make([]float32, 0, len(d.Positions)*8)
	for i, p := range d.Positions {
		var n math.Vec3
		var uv math.Vec2
		if len(d.Normals) > 0 {
			n = d.Normals[i]
		}
		if len(d.UVs) > 0 {
			uv = d.UVs[i]
		}
		out = append(out, p.X, p.Y, p.Z, n.X, n.Y, n.Z, uv.X, uv.Y)
	}
	return out
}

// Upload creates a renderer mesh with one vertex buffer and one index
// buffer per part. Parts small enough for 16-bit indices use them.
func (d *MeshData) Upload(r *renderer.Renderer) (*renderer.Mesh, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	mesh := r.NewMesh(d.Primitive)
	if _, err := mesh.AddVertexBuffer(Layout(), d.Interleave(), len(d.Positions)); err != nil {
		mesh.Destroy()
		return nil, fmt.Errorf("upload mesh %q: %w", d.Name, err)
	}

	small := len(d.Positions) <= 1<<16
	for i, part := range d.Parts {
		var err error
		if small {
			_, err = mesh.AddIndexBuffer16(toUint16(part))
		} else {
			_, err = mesh.AddIndexBuffer(part)
		}
		if err != nil {
			mesh.Destroy()
			return nil, fmt.Errorf("upload mesh %q part %d: %w", d.Name, i, err)
		}
	}
	return mesh, nil
}

func toUint16(indices []uint32) []uint16 {
	out := make([]uint16, len(indices))
	for i, v := range indices {
		out[i] = uint16(v)
	}
	return out
}
