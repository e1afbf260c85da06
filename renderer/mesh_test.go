package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/gpu"
	"solo-engine/internal/nullgpu"
)

func TestVertexBufferLayout(t *testing.T) {
	l := interleavedLayout()
	assert.Equal(t, 32, l.Size())
	attrs := l.Attributes()
	require.Len(t, attrs, 3)
	assert.Equal(t, 12, attrs[1].Offset)
	assert.Equal(t, 24, attrs[2].Offset)
	assert.Equal(t, AttributeUV, attrs[2].Name)
}

func TestVertexArrayPerEffect(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)
	lit := newColorEffect(t, r)
	textured := newTexturedEffect(t, r)

	h1, err := mesh.VertexArray(lit)
	require.NoError(t, err)
	h2, err := mesh.VertexArray(textured)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)

	again, err := mesh.VertexArray(lit)
	require.NoError(t, err)
	assert.Equal(t, h1, again, "cached")

	vao1, ok := b.VertexArray(h1)
	require.True(t, ok)
	assert.Equal(t, map[uint32]nullgpu.AttributeBinding{
		0: {Buffer: mesh.vertexBuffers[0].handle, Components: 3, Stride: 32, Offset: 0},
		1: {Buffer: mesh.vertexBuffers[0].handle, Components: 3, Stride: 32, Offset: 12},
	}, vao1.Attributes, "uv is not read by the lit effect")

	vao2, ok := b.VertexArray(h2)
	require.True(t, ok)
	assert.Equal(t, map[uint32]nullgpu.AttributeBinding{
		0: {Buffer: mesh.vertexBuffers[0].handle, Components: 3, Stride: 32, Offset: 0},
		1: {Buffer: mesh.vertexBuffers[0].handle, Components: 2, Stride: 32, Offset: 24},
	}, vao2.Attributes, "normal is not read by the textured effect")
}

func TestVertexArrayRebuiltAfterBufferChange(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)
	e := newColorEffect(t, r)

	first, err := mesh.VertexArray(e)
	require.NoError(t, err)

	_, err = mesh.AddVertexBuffer(positionLayout(), make([]float32, 9), 3)
	require.NoError(t, err)
	second, err := mesh.VertexArray(e)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	_, ok := b.VertexArray(first)
	assert.False(t, ok, "stale vertex array is destroyed")

	require.NoError(t, mesh.RemoveVertexBuffer(1))
	third, err := mesh.VertexArray(e)
	require.NoError(t, err)
	assert.NotEqual(t, second, third)
	vao, _ := b.VertexArray(third)
	assert.Len(t, vao.Attributes, 2)
	assert.Equal(t, 1, mesh.CachedVertexArrays())
}

func TestVertexArrayEviction(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)
	old := newColorEffect(t, r)
	busy := newTexturedEffect(t, r)

	require.NoError(t, mesh.Draw(old))
	evicted, _ := mesh.VertexArray(old)
	for range 999 {
		require.NoError(t, mesh.Draw(busy))
	}
	assert.Equal(t, 2, mesh.CachedVertexArrays(), "999 draws without use keep the entry")

	require.NoError(t, mesh.Draw(busy))
	assert.Equal(t, 1, mesh.CachedVertexArrays(), "the 1000th draw evicts it")
	_, ok := b.VertexArray(evicted)
	assert.False(t, ok)

	require.NoError(t, mesh.Draw(old))
	rebuilt, err := mesh.VertexArray(old)
	require.NoError(t, err)
	assert.NotEqual(t, evicted, rebuilt)
	assert.Equal(t, 2, mesh.CachedVertexArrays())
}

func TestVertexArrayEvictionAgeOption(t *testing.T) {
	r, _ := newTestRenderer(t, WithEvictionAge(3))
	mesh := newTriangleMesh(t, r)
	a := newColorEffect(t, r)
	c := newTexturedEffect(t, r)

	require.NoError(t, mesh.Draw(a))
	for range 3 {
		require.NoError(t, mesh.Draw(c))
	}
	assert.Equal(t, 1, mesh.CachedVertexArrays())
}

func TestEffectReleaseDropsVertexArrays(t *testing.T) {
	r, b := newTestRenderer(t)
	first, second := newTriangleMesh(t, r), newTriangleMesh(t, r)
	gone := newColorEffect(t, r)
	kept := newTexturedEffect(t, r)
	for _, m := range []*Mesh{first, second} {
		require.NoError(t, m.Draw(gone))
		require.NoError(t, m.Draw(kept))
	}
	require.Equal(t, 4, b.LiveVertexArrays())

	gone.Retain()
	gone.Release()
	assert.Equal(t, 2, first.CachedVertexArrays(), "a retained effect keeps its entries")

	gone.Release()
	assert.Equal(t, 1, first.CachedVertexArrays())
	assert.Equal(t, 1, second.CachedVertexArrays())
	assert.Equal(t, 2, b.LiveVertexArrays())

	second.Destroy()
	kept.Release()
	assert.Zero(t, first.CachedVertexArrays())
	assert.Zero(t, b.LiveVertexArrays())
	assert.NotContains(t, r.meshes, second)
}

func TestDrawUsesMinimumVertexCount(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := r.NewMesh(gpu.PrimitiveTriangles)
	for _, n := range []int{10, 7, 20} {
		_, err := mesh.AddVertexBuffer(positionLayout(), make([]float32, n*3), n)
		require.NoError(t, err)
	}
	assert.Equal(t, 7, mesh.MinVertexCount())

	require.NoError(t, mesh.Draw(newColorEffect(t, r)))
	require.Len(t, b.Draws, 1)
	assert.False(t, b.Draws[0].Indexed)
	assert.Equal(t, 0, b.Draws[0].First)
	assert.Equal(t, 7, b.Draws[0].Count)

	require.NoError(t, mesh.RemoveVertexBuffer(1))
	assert.Equal(t, 10, mesh.MinVertexCount())
}

func TestDrawParts(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)
	e := newColorEffect(t, r)

	p0, err := mesh.AddIndexBuffer([]uint32{0, 1, 2})
	require.NoError(t, err)
	p1, err := mesh.AddIndexBuffer16([]uint16{2, 1, 0, 0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.PartCount())
	assert.Equal(t, 6, mesh.PartElementCount(p1))

	require.NoError(t, mesh.Draw(e))
	require.Len(t, b.Draws, 2)
	assert.Equal(t, 3, b.Draws[0].Count)
	assert.Equal(t, gpu.IndexUint32, b.Draws[0].IndexType)
	assert.Equal(t, mesh.parts[p0].handle, b.Draws[0].IndexBuffer)
	assert.Equal(t, 6, b.Draws[1].Count)
	assert.Equal(t, gpu.IndexUint16, b.Draws[1].IndexType)

	require.NoError(t, mesh.DrawPart(e, p1))
	assert.Len(t, b.Draws, 3)
	assert.ErrorIs(t, mesh.DrawPart(e, 5), ErrBufferRange)

	require.NoError(t, mesh.RemoveIndexBuffer(p0))
	assert.Equal(t, 1, mesh.PartCount())
	_, err = mesh.AddIndexBuffer(nil)
	assert.Error(t, err)
}

func TestUpdateVertexBuffer(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := r.NewMesh(gpu.PrimitivePoints)
	static, err := mesh.AddVertexBuffer(positionLayout(), make([]float32, 6), 2)
	require.NoError(t, err)
	dynamic, err := mesh.AddDynamicVertexBuffer(positionLayout(), nil, 4)
	require.NoError(t, err)

	assert.ErrorIs(t, mesh.UpdateVertexBuffer(static, 0, make([]float32, 3), 1), ErrBufferNotDynamic)
	assert.ErrorIs(t, mesh.UpdateVertexBuffer(dynamic, 3, make([]float32, 6), 2), ErrBufferRange)
	assert.ErrorIs(t, mesh.UpdateVertexBuffer(9, 0, nil, 0), ErrBufferRange)

	require.NoError(t, mesh.UpdateVertexBuffer(dynamic, 2, []float32{1, 2, 3, 4, 5, 6}, 2))
	buf, ok := b.Buffer(mesh.vertexBuffers[dynamic].handle)
	require.True(t, ok)
	assert.Len(t, buf.Data, 48)
	assert.Equal(t, gpu.Bytes([]float32{1, 2, 3, 4, 5, 6}), buf.Data[24:])
	assert.Equal(t, make([]byte, 24), buf.Data[:24])
}

func TestAddVertexBufferValidation(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := r.NewMesh(gpu.PrimitiveTriangles)

	_, err := mesh.AddVertexBuffer(VertexBufferLayout{}, nil, 0)
	assert.Error(t, err)
	_, err = mesh.AddVertexBuffer(positionLayout(), make([]float32, 5), 2)
	assert.ErrorIs(t, err, ErrBufferRange)

	b.FailAllocations("buffer")
	_, err = mesh.AddVertexBuffer(positionLayout(), make([]float32, 3), 1)
	var resErr *gpu.ResourceError
	assert.ErrorAs(t, err, &resErr)
	assert.Equal(t, 0, mesh.VertexBufferCount())
}

func TestMeshDestroy(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)
	_, err := mesh.AddIndexBuffer([]uint32{0, 1, 2})
	require.NoError(t, err)
	require.NoError(t, mesh.Draw(newColorEffect(t, r)))
	vbo := mesh.vertexBuffers[0].handle

	mesh.Destroy()
	assert.Equal(t, 0, b.LiveVertexArrays())
	_, ok := b.Buffer(vbo)
	assert.False(t, ok)
	assert.Equal(t, 0, mesh.PartCount())
	assert.Equal(t, 0, mesh.MinVertexCount())
}
