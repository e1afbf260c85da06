package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

// assertOutwardWinding checks that every non-degenerate triangle winds
// counter-clockwise around its vertex normals.
func assertOutwardWinding(t *testing.T, d *MeshData) {
	t.Helper()
	for _, part := range d.Parts {
		require.Zero(t, len(part)%3)
		for i := 0; i < len(part); i += 3 {
			a, b, c := part[i], part[i+1], part[i+2]
			face := d.Positions[b].Sub(d.Positions[a]).Cross(d.Positions[c].Sub(d.Positions[a]))
			if face.Length() < 1e-6 {
				continue
			}
			n := d.Normals[a].Add(d.Normals[b]).Add(d.Normals[c])
			assert.Greater(t, face.Dot(n), float32(0), "%s triangle %d", d.Name, i/3)
		}
	}
}

func TestPrimitives(t *testing.T) {
	tests := []struct {
		data     *MeshData
		vertices int
		indices  int
		bounds   AABB
	}{
		{CreateTriangle(), 3, 3, AABB{Min: math.NewVec3(-0.5, -0.5, 0), Max: math.NewVec3(0.5, 0.5, 0)}},
		{CreateQuad(), 4, 6, AABB{Min: math.NewVec3(-0.5, -0.5, 0), Max: math.NewVec3(0.5, 0.5, 0)}},
		{CreateCube(2), 24, 36, AABB{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}},
		{CreatePlane(4, 2, 2), 9, 24, AABB{Min: math.NewVec3(-2, 0, -1), Max: math.NewVec3(2, 0, 1)}},
		{CreateSphere(1, 8, 4), 45, 8 * 4 * 6, AABB{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.data.Name, func(t *testing.T) {
			d := tt.data
			require.NoError(t, d.validate())
			assert.Equal(t, gpu.PrimitiveTriangles, d.Primitive)
			assert.Len(t, d.Positions, tt.vertices)
			assert.Len(t, d.Normals, tt.vertices)
			assert.Len(t, d.UVs, tt.vertices)
			require.Len(t, d.Parts, 1)
			assert.Len(t, d.Parts[0], tt.indices)

			b := d.Bounds()
			assertVec3(t, tt.bounds.Min, b.Min)
			assertVec3(t, tt.bounds.Max, b.Max)
			assertOutwardWinding(t, d)
		})
	}
}

func TestMeshDataInterleave(t *testing.T) {
	d := &MeshData{
		Positions: []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		UVs:       []math.Vec2{{X: 0.5, Y: 1}, {X: 0, Y: 0.25}},
	}
	assert.Equal(t, []float32{
		1, 2, 3, 0, 0, 0, 0.5, 1,
		4, 5, 6, 0, 0, 0, 0, 0.25,
	}, d.Interleave())
	assert.Equal(t, 32, Layout().Size())
}

func TestMeshDataValidate(t *testing.T) {
	assert.Error(t, (&MeshData{Name: "empty"}).validate())
	assert.Error(t, (&MeshData{
		Name:      "normals",
		Positions: []math.Vec3{{}, {}},
		Normals:   []math.Vec3{{}},
	}).validate())
	assert.Error(t, (&MeshData{
		Name:      "index",
		Positions: []math.Vec3{{}, {}, {}},
		Parts:     [][]uint32{{0, 1, 3}},
	}).validate())
}

func TestMeshDataUpload(t *testing.T) {
	r, b := newTestRenderer(t)

	mesh, err := CreateCube(1).Upload(r)
	require.NoError(t, err)
	assert.Equal(t, 1, mesh.VertexBufferCount())
	assert.Equal(t, 1, mesh.PartCount())
	assert.Equal(t, 24, mesh.MinVertexCount())
	assert.Equal(t, 36, mesh.PartElementCount(0))

	// the unlit color effect reads only the position of the layout
	mat := newColorMaterial(t, r)
	r.BeginFrame()
	r.AddRenderCommand(renderer.BeginCamera(newTestCamera(), nil))
	r.AddRenderCommand(renderer.ApplyMaterial(mat))
	r.AddRenderCommand(renderer.DrawMeshPart(mesh, 0, NewNode("n")))
	r.AddRenderCommand(renderer.EndCamera())
	require.NoError(t, r.EndFrame())

	require.Len(t, b.Draws, 1)
	d := b.Draws[0]
	assert.True(t, d.Indexed)
	assert.Equal(t, gpu.IndexUint16, d.IndexType)
	assert.Equal(t, 36, d.Count)

	vao, ok := b.VertexArray(d.VertexArray)
	require.True(t, ok)
	assert.Len(t, vao.Attributes, 1)
	for _, binding := range vao.Attributes {
		assert.Equal(t, 3, binding.Components)
		assert.Equal(t, 32, binding.Stride)
		assert.Equal(t, 0, binding.Offset)
	}
}

func TestMeshDataUploadFailure(t *testing.T) {
	r, b := newTestRenderer(t)
	b.FailAllocations("buffer")
	_, err := CreateQuad().Upload(r)
	var resErr *gpu.ResourceError
	assert.ErrorAs(t, err, &resErr)
}
