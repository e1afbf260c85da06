package scene

import "solo-engine/renderer"

// MeshRenderer draws a mesh with one material per part. A mesh without
// parts is drawn unindexed with the first material. Parts beyond the
// material list reuse the first material.
type MeshRenderer struct {
	Mesh      *renderer.Mesh
	Materials []*renderer.Material
}

func NewMeshRenderer(mesh *renderer.Mesh, materials ...*renderer.Material) *MeshRenderer {
	return &MeshRenderer{Mesh: mesh, Materials: materials}
}

// SetMaterial assigns the material of part, growing the list as needed.
func (mr *MeshRenderer) SetMaterial(part int, m *renderer.Material) {
	for len(mr.Materials) <= part {
		mr.Materials = append(mr.Materials, nil)
	}
	mr.Materials[part] = m
}

func (mr *MeshRenderer) Material(part int) *renderer.Material {
	if part < len(mr.Materials) && mr.Materials[part] != nil {
		return mr.Materials[part]
	}
	if len(mr.Materials) > 0 {
		return mr.Materials[0]
	}
	return nil
}

// Render queues the draw commands of the mesh. It returns the number of
// draws queued.
func (mr *MeshRenderer) Render(r *renderer.Renderer, transform renderer.Transform) int {
	if mr.Mesh == nil {
		return 0
	}
	parts := mr.Mesh.PartCount()
	if parts == 0 {
		m := mr.Material(0)
		if m == nil {
			return 0
		}
		r.AddRenderCommand(renderer.ApplyMaterial(m))
		r.AddRenderCommand(renderer.DrawMesh(mr.Mesh, transform))
		return 1
	}

	draws := 0
	var current *renderer.Material
	for part := range parts {
		m := mr.Material(part)
		if m == nil {
			continue
		}
		if m != current {
			r.AddRenderCommand(renderer.ApplyMaterial(m))
			current = m
		}
		r.AddRenderCommand(renderer.DrawMeshPart(mr.Mesh, part, transform))
		draws++
	}
	return draws
}
