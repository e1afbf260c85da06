package renderer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/internal/nullgpu"
	"solo-engine/math"
)

func TestNewChecksBackendVersion(t *testing.T) {
	dev := &testDevice{backend: nullgpu.New(nullgpu.WithVersion(3, 2))}
	_, err := New(dev)
	assert.ErrorIs(t, err, gpu.ErrUnsupportedVersion)

	dev = &testDevice{backend: nullgpu.New(nullgpu.WithVersion(4, 1))}
	_, err = New(dev, WithMinVersion(4, 5))
	assert.ErrorIs(t, err, gpu.ErrUnsupportedVersion)

	r, err := New(dev, WithConfig(core.RendererConfig{MinVersion: "4.1", EvictionAge: 7}))
	require.NoError(t, err)
	assert.Equal(t, 7, r.evictionAge)
	assert.Same(t, dev, r.Device())
}

func TestEndToEndTriangle(t *testing.T) {
	r, b := newTestRenderer(t)
	effect, err := r.NewEffect(`#version 410 core
in vec3 position;
void main() { gl_Position = vec4(position, 1.0); }
`, `#version 410 core
uniform vec4 mainColor;
out vec4 outColor;
void main() { outColor = mainColor; }
`)
	require.NoError(t, err)

	var layout VertexBufferLayout
	layout.AddNamedAttribute(3, "position")
	mesh := r.NewMesh(gpu.PrimitiveTriangles)
	_, err = mesh.AddVertexBuffer(layout, []float32{
		-1, -1, 0,
		1, -1, 0,
		0, 1, 0,
	}, 3)
	require.NoError(t, err)

	mat := NewMaterial(effect)
	require.NoError(t, mat.SetVector4Parameter("mainColor", math.NewVec4(1, 1, 1, 1)))

	b.ResetCalls()
	r.BeginFrame()
	r.AddRenderCommand(BeginCamera(newTestCamera(), nil))
	r.AddRenderCommand(ApplyMaterial(mat))
	r.AddRenderCommand(DrawMesh(mesh, testTransform{world: math.Mat4Identity()}))
	r.AddRenderCommand(EndCamera())
	assert.Empty(t, b.Calls, "nothing reaches the GPU before EndFrame")
	require.NoError(t, r.EndFrame())

	assert.Equal(t,
		[]string{"BindFrameBuffer", "Viewport", "Clear", "UseProgram", "DrawArrays", "BindFrameBuffer"},
		opsOf(b, "Viewport", "Clear", "UseProgram", "DrawArrays", "DrawElements", "BindFrameBuffer"))
	assert.Equal(t, [4]int{0, 0, 800, 600}, b.State.Viewport)
	assert.Equal(t, gpu.Handle(0), b.BoundFrameBuffer())

	require.Len(t, b.Draws, 1)
	draw := b.Draws[0]
	assert.Equal(t, 3, draw.Count)
	assert.False(t, draw.Indexed)
	loc, ok := b.UniformLocation(effect.program, "mainColor")
	require.True(t, ok)
	assert.Equal(t, []float32{1, 1, 1, 1}, draw.Uniforms[loc])

	assert.Equal(t, Stats{Commands: 4, DrawCalls: 1, MaterialApplications: 1, Vertices: 3}, r.Stats())
}

func TestReplayKeepsMaterialOrder(t *testing.T) {
	r, b := newTestRenderer(t)
	effect := newColorEffect(t, r)
	mesh := newTriangleMesh(t, r)

	m1 := NewMaterial(effect)
	require.NoError(t, m1.SetVector4Parameter("color", math.NewVec4(1, 0, 0, 1)))
	m2 := m1.Clone()
	require.NoError(t, m2.SetVector4Parameter("color", math.NewVec4(0, 0, 1, 1)))
	m2.SetBlendEnabled(true)

	t1 := testTransform{world: math.Mat4Translation(math.NewVec3(1, 0, 0))}
	t2 := testTransform{world: math.Mat4Translation(math.NewVec3(2, 0, 0))}
	require.NoError(t, m1.BindParameter("w", WorldMatrix))
	require.NoError(t, m2.BindParameter("w", WorldMatrix))

	r.BeginFrame()
	r.AddRenderCommand(ApplyMaterial(m1))
	r.AddRenderCommand(DrawMesh(mesh, t1))
	r.AddRenderCommand(ApplyMaterial(m2))
	r.AddRenderCommand(DrawMesh(mesh, t2))
	require.NoError(t, r.EndFrame())

	require.Len(t, b.Draws, 2)
	color, _ := b.UniformLocation(effect.program, "color")
	w, _ := b.UniformLocation(effect.program, "w")

	assert.Equal(t, []float32{1, 0, 0, 1}, b.Draws[0].Uniforms[color])
	assert.Equal(t, t1.world.Floats(), b.Draws[0].Uniforms[w])
	assert.False(t, b.Draws[0].State.Blend)

	assert.Equal(t, []float32{0, 0, 1, 1}, b.Draws[1].Uniforms[color])
	assert.Equal(t, t2.world.Floats(), b.Draws[1].Uniforms[w])
	assert.True(t, b.Draws[1].State.Blend)
}

func TestDrawWithoutMaterialFailsFast(t *testing.T) {
	r, b := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)

	r.BeginFrame()
	r.AddRenderCommand(DrawMesh(mesh, testTransform{world: math.Mat4Identity()}))
	err := r.EndFrame()

	var misuse *MisuseError
	require.ErrorAs(t, err, &misuse)
	assert.Equal(t, 0, misuse.Index)
	assert.Equal(t, CmdDrawMesh, misuse.Command.Type())
	assert.ErrorContains(t, err, "command 0 (DrawMesh)")
	assert.Empty(t, b.Draws)

	// The failed frame is dropped.
	err = r.EndFrame()
	require.ErrorAs(t, err, &misuse)
	assert.Equal(t, -1, misuse.Index)
}

func TestDrawPartWithoutMaterialReportsIndex(t *testing.T) {
	r, _ := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)
	_, err := mesh.AddIndexBuffer([]uint32{0, 1, 2})
	require.NoError(t, err)

	r.BeginFrame()
	r.AddRenderCommand(BeginCamera(newTestCamera(), nil))
	r.AddRenderCommand(DrawMeshPart(mesh, 0, nil))
	err = r.EndFrame()

	var misuse *MisuseError
	require.True(t, errors.As(err, &misuse))
	assert.Equal(t, 1, misuse.Index)
	assert.Equal(t, CmdDrawMeshPart, misuse.Command.Type())
}

func TestMaterialDoesNotLeakAcrossFrames(t *testing.T) {
	r, _ := newTestRenderer(t)
	mesh := newTriangleMesh(t, r)
	mat := NewMaterial(newColorEffect(t, r))

	r.BeginFrame()
	r.AddRenderCommand(ApplyMaterial(mat))
	r.AddRenderCommand(DrawMesh(mesh, nil))
	require.NoError(t, r.EndFrame())

	r.BeginFrame()
	r.AddRenderCommand(DrawMesh(mesh, nil))
	var misuse *MisuseError
	assert.ErrorAs(t, r.EndFrame(), &misuse)
}

func TestFrameStateMachine(t *testing.T) {
	r, _ := newTestRenderer(t)
	assert.Panics(t, func() { r.AddRenderCommand(EndCamera()) })

	var misuse *MisuseError
	assert.ErrorAs(t, r.EndFrame(), &misuse)

	r.BeginFrame()
	r.AddRenderCommand(EndCamera())
	r.BeginFrame()
	require.NoError(t, r.EndFrame())
	assert.Equal(t, 0, r.Stats().Commands, "BeginFrame discards an unfinished frame")

	r.BeginFrame()
	r.AddRenderCommand(ApplyMaterial(nil))
	assert.ErrorAs(t, r.EndFrame(), &misuse)
}

func TestBeginCamera(t *testing.T) {
	r, b := newTestRenderer(t)
	cam := newTestCamera()
	cam.viewport = math.Rect{X: 10, Y: 20, Width: 300, Height: 200}
	cam.clearColor = core.ColorRed
	cam.depthOn = false

	r.BeginFrame()
	r.AddRenderCommand(BeginCamera(cam, nil))
	require.NoError(t, r.EndFrame())

	assert.Equal(t, [4]int{10, 20, 300, 200}, b.State.Viewport)
	assert.Equal(t, core.ColorRed, b.State.ClearColor)
	assert.True(t, b.State.DepthTest)
	assert.True(t, b.State.DepthWrite)
	last := b.Calls[len(b.Calls)-1]
	assert.Equal(t, "Clear(true, false)", last.String())

	color, err := r.NewTexture2D(gpu.TextureDesc{Width: 64, Height: 32, Format: gpu.TextureFormatRGBA}, nil)
	require.NoError(t, err)
	fb, err := r.NewFrameBuffer(color)
	require.NoError(t, err)

	cam = newTestCamera()
	cam.clearOn, cam.depthOn = false, false
	b.ResetCalls()
	r.BeginFrame()
	r.AddRenderCommand(BeginCamera(cam, fb))
	r.AddRenderCommand(EndCamera())
	require.NoError(t, r.EndFrame())

	assert.Equal(t, [4]int{0, 0, 64, 32}, b.State.Viewport, "empty viewport covers the target")
	assert.Equal(t, []string{"BindFrameBuffer", "Viewport", "SetDepthWrite", "SetDepthTest", "BindFrameBuffer"}, b.Ops())
	assert.Equal(t, []any{fb.Handle()}, b.Calls[0].Args)
	assert.Equal(t, gpu.Handle(0), b.BoundFrameBuffer())

	// A canvas camera right after a target camera draws to the canvas.
	effect := newColorEffect(t, r)
	mesh := newTriangleMesh(t, r)
	b.Draws = nil
	r.BeginFrame()
	r.AddRenderCommand(BeginCamera(newTestCamera(), fb))
	r.AddRenderCommand(BeginCamera(newTestCamera(), nil))
	r.AddRenderCommand(ApplyMaterial(NewMaterial(effect)))
	r.AddRenderCommand(DrawMesh(mesh, testTransform{world: math.Mat4Identity()}))
	r.AddRenderCommand(EndCamera())
	require.NoError(t, r.EndFrame())

	require.Len(t, b.Draws, 1)
	assert.Equal(t, gpu.Handle(0), b.Draws[0].FrameBuffer)
	assert.Equal(t, [4]int{0, 0, 800, 600}, b.State.Viewport)
}

func TestAutoBindingsSeeCurrentCamera(t *testing.T) {
	r, b := newTestRenderer(t)
	effect := newColorEffect(t, r)
	mesh := newTriangleMesh(t, r)
	mat := NewMaterial(effect)
	require.NoError(t, mat.BindParameter("cameraPos", CameraWorldPosition))

	cam := newTestCamera()
	r.BeginFrame()
	r.AddRenderCommand(ApplyMaterial(mat))
	r.AddRenderCommand(DrawMesh(mesh, nil))
	r.AddRenderCommand(BeginCamera(cam, nil))
	r.AddRenderCommand(DrawMesh(mesh, nil))
	r.AddRenderCommand(EndCamera())
	require.NoError(t, r.EndFrame())

	loc, _ := b.UniformLocation(effect.program, "cameraPos")
	require.Len(t, b.Draws, 2)
	assert.NotContains(t, b.Draws[0].Uniforms, loc, "no camera yet")
	assert.Equal(t, []float32{0, 0, 5}, b.Draws[1].Uniforms[loc])
}

func TestStatsLogValue(t *testing.T) {
	s := Stats{Commands: 4, DrawCalls: 2, MaterialApplications: 1, Vertices: 6}
	v := s.LogValue()
	assert.Len(t, v.Group(), 4)
	assert.Equal(t, "4 commands, 2 draw calls, 1 materials, 6 vertices", s.String())
}
