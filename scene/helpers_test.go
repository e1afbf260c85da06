package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/gpu"
	"solo-engine/internal/nullgpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

const tol = 1e-4

type testDevice struct {
	backend *nullgpu.Backend
}

func (d *testDevice) CanvasSize() (int, int) { return 800, 600 }
func (d *testDevice) TimeDelta() float32     { return 1.0 / 60 }
func (d *testDevice) Backend() gpu.Backend   { return d.backend }

func newTestRenderer(t *testing.T) (*renderer.Renderer, *nullgpu.Backend) {
	t.Helper()
	b := nullgpu.New()
	r, err := renderer.New(&testDevice{backend: b})
	require.NoError(t, err)
	return r, b
}

func newColorMaterial(t *testing.T, r *renderer.Renderer) *renderer.Material {
	t.Helper()
	e, err := r.NewPrefabEffect(renderer.PrefabUnlitColor)
	require.NoError(t, err)
	m := renderer.NewMaterial(e)
	e.Release()
	require.NoError(t, m.BindParameter(renderer.UniformWorldViewProjMatrix, renderer.WorldViewProjectionMatrix))
	require.NoError(t, m.SetVector4Parameter(renderer.UniformColor, math.NewVec4(1, 0, 0, 1)))
	return m
}

func newCubeNode(t *testing.T, r *renderer.Renderer, name string, mat *renderer.Material) *Node {
	t.Helper()
	data := CreateCube(1)
	mesh, err := data.Upload(r)
	require.NoError(t, err)
	n := NewNode(name)
	n.Renderer = NewMeshRenderer(mesh, mat)
	n.Bounds = data.Bounds()
	n.HasBounds = true
	return n
}

func newTestCamera() *Camera {
	c := NewCamera(math32.Pi/3, 4.0/3.0, 0.1, 100)
	c.SetPosition(math.NewVec3(0, 0, 5))
	return c
}

func assertVec3(t *testing.T, expected, actual math.Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tol, "x")
	assert.InDelta(t, expected.Y, actual.Y, tol, "y")
	assert.InDelta(t, expected.Z, actual.Z, tol, "z")
}

func assertMat4(t *testing.T, expected, actual math.Mat4) {
	t.Helper()
	assert.InDeltaSlice(t, expected.Floats(), actual.Floats(), tol)
}
