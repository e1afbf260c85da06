package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

func TestCreateGrid(t *testing.T) {
	tests := []struct {
		divisions int
		lines     int
	}{
		{4, 8},
		{3, 8},
		{0, 4},
	}
	for _, tt := range tests {
		d := CreateGrid(10, tt.divisions)
		require.NoError(t, d.validate())
		assert.Equal(t, gpu.PrimitiveLines, d.Primitive)
		require.Len(t, d.Parts, 3)
		assert.Len(t, d.Parts[GridPartLines], tt.lines*2, "divisions %d", tt.divisions)
		assert.Len(t, d.Parts[GridPartAxisX], 2)
		assert.Len(t, d.Parts[GridPartAxisZ], 2)

		b := d.Bounds()
		assertVec3(t, math.NewVec3(-5, 0, -5), b.Min)
		assertVec3(t, math.NewVec3(5, 0, 5), b.Max)
	}

	axis := CreateGrid(2, 2)
	x := axis.Parts[GridPartAxisX]
	assertVec3(t, math.NewVec3(-1, 0, 0), axis.Positions[x[0]])
	assertVec3(t, math.NewVec3(1, 0, 0), axis.Positions[x[1]])
}

func TestNewGrid(t *testing.T) {
	r, b := newTestRenderer(t)
	grid, err := NewGrid(r, 10, 10)
	require.NoError(t, err)

	s := NewScene()
	s.AddCamera(newTestCamera())
	s.AddNode(grid)
	require.NoError(t, s.Frame(r))
	require.Len(t, b.Draws, 3)
	for _, d := range b.Draws {
		assert.Equal(t, gpu.PrimitiveLines, d.Primitive)
	}
	assert.Equal(t, 20*2, b.Draws[0].Count)

	loc, ok := b.UniformLocation(b.Draws[1].Program, renderer.UniformColor)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{0.8, 0.15, 0.15, 1}, b.Draws[1].Uniforms[loc], tol)
}

func TestBoundsOutline(t *testing.T) {
	r, _ := newTestRenderer(t)
	box := AABB{Min: math.NewVec3(0, 0, 0), Max: math.NewVec3(2, 4, 6)}
	n, err := NewBoundsOutline(r, box)
	require.NoError(t, err)

	assert.Equal(t, 24, n.Renderer.Mesh.PartElementCount(0))
	world := CreateWireBox().Bounds().Transform(n.WorldMatrix())
	assertVec3(t, box.Min, world.Min)
	assertVec3(t, box.Max, world.Max)

	moved := AABB{Min: math.NewVec3(-1, -1, -1), Max: math.NewVec3(1, 3, 1)}
	FitOutline(n, moved)
	world = CreateWireBox().Bounds().Transform(n.WorldMatrix())
	assertVec3(t, moved.Min, world.Min)
	assertVec3(t, moved.Max, world.Max)
}
