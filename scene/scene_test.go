package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

func TestSceneFrameDrawsVisibleNodes(t *testing.T) {
	r, b := newTestRenderer(t)
	mat := newColorMaterial(t, r)

	s := NewScene()
	cam := newTestCamera()
	s.AddCamera(cam)

	near := newCubeNode(t, r, "near", mat)
	hidden := newCubeNode(t, r, "hidden", mat)
	hidden.Visible = false
	s.AddNode(near)
	s.AddNode(hidden)

	require.NoError(t, s.Frame(r))
	require.Len(t, b.Draws, 1)

	wvp, ok := b.UniformLocation(b.Draws[0].Program, renderer.UniformWorldViewProjMatrix)
	require.True(t, ok)
	assert.InDeltaSlice(t, near.WorldViewProjectionMatrix(cam).Floats(), b.Draws[0].Uniforms[wvp], tol)
	assert.Equal(t, 1, r.Stats().DrawCalls)
}

func TestSceneRenderCommandOrder(t *testing.T) {
	r, b := newTestRenderer(t)
	mat := newColorMaterial(t, r)

	s := NewScene()
	s.AddCamera(newTestCamera())
	s.AddNode(newCubeNode(t, r, "a", mat))
	b.ResetCalls()

	require.NoError(t, s.Frame(r))
	ops := b.Ops()
	require.NotEmpty(t, ops)
	assert.Equal(t, []string{"BindFrameBuffer", "Viewport"}, ops[:2])
	assert.Contains(t, ops, "UseProgram")
	assert.Contains(t, ops, "DrawElements")
	assert.Equal(t, "BindFrameBuffer", ops[len(ops)-1])
}

func TestSceneFrustumCulling(t *testing.T) {
	r, b := newTestRenderer(t)
	mat := newColorMaterial(t, r)

	s := NewScene()
	s.AddCamera(newTestCamera())
	visible := newCubeNode(t, r, "visible", mat)
	behind := newCubeNode(t, r, "behind", mat)
	behind.SetPosition(math.NewVec3(0, 0, 20))
	unbounded := newCubeNode(t, r, "unbounded", mat)
	unbounded.SetPosition(math.NewVec3(0, 0, 20))
	unbounded.HasBounds = false
	s.AddNode(visible)
	s.AddNode(behind)
	s.AddNode(unbounded)

	r.BeginFrame()
	stats := s.Render(r)
	require.NoError(t, r.EndFrame())
	assert.Equal(t, RenderStats{Cameras: 1, Drawn: 2, Culled: 1, Draws: 2}, stats)
	assert.Len(t, b.Draws, 2)

	s.FrustumCulling = false
	r.BeginFrame()
	stats = s.Render(r)
	require.NoError(t, r.EndFrame())
	assert.Equal(t, 3, stats.Drawn)
	assert.Zero(t, stats.Culled)
}

func TestSceneInvisibleParentHidesChildren(t *testing.T) {
	r, _ := newTestRenderer(t)
	mat := newColorMaterial(t, r)

	s := NewScene()
	s.AddCamera(newTestCamera())
	parent := NewNode("parent")
	parent.Visible = false
	s.AddNode(parent)
	s.AddChild(parent, newCubeNode(t, r, "child", mat))

	r.BeginFrame()
	stats := s.Render(r)
	require.NoError(t, r.EndFrame())
	assert.Zero(t, stats.Drawn)
}

func TestSceneCameraOrderAndTags(t *testing.T) {
	r, b := newTestRenderer(t)
	mat := newColorMaterial(t, r)

	overlay := newTestCamera()
	overlay.Order = 1
	overlay.TagMask = 2
	overlay.SetClearFlags(false, true)
	main := newTestCamera()
	main.TagMask = DefaultTags
	main.SetClearColor(core.ColorBlue)

	s := NewScene()
	s.AddCamera(overlay)
	s.AddCamera(main)
	assert.Equal(t, []*Camera{main, overlay}, s.Cameras())

	world := newCubeNode(t, r, "world", mat)
	ui := newCubeNode(t, r, "ui", mat)
	ui.Tags = 2
	s.AddNode(world)
	s.AddNode(ui)

	b.ResetCalls()
	r.BeginFrame()
	stats := s.Render(r)
	require.NoError(t, r.EndFrame())
	assert.Equal(t, 2, stats.Cameras)
	assert.Equal(t, 2, stats.Drawn, "one node per camera")

	var clears []string
	for _, c := range b.Calls {
		if c.Op == "Clear" || c.Op == "ClearColor" {
			clears = append(clears, c.String())
		}
	}
	assert.Equal(t, []string{
		"ClearColor({0 0 1 1})",
		"Clear(true, true)",
		"Clear(false, true)",
	}, clears)

	s.RemoveCamera(overlay)
	assert.Equal(t, []*Camera{main}, s.Cameras())
}

func TestSceneFitsCameraAspect(t *testing.T) {
	r, _ := newTestRenderer(t)
	s := NewScene()

	canvas := newTestCamera()
	port := newTestCamera()
	port.SetViewport(math.Rect{Width: 200, Height: 100})
	s.AddCamera(canvas)
	s.AddCamera(port)

	target, err := r.NewTexture2D(gpu.TextureDesc{Kind: gpu.Texture2D, Width: 64, Height: 128, Format: gpu.TextureFormatRGBA}, nil)
	require.NoError(t, err)
	fb, err := r.NewFrameBuffer(target)
	require.NoError(t, err)
	offscreen := newTestCamera()
	offscreen.RenderTarget = fb
	s.AddCamera(offscreen)

	require.NoError(t, s.Frame(r))
	assert.InDelta(t, 800.0/600.0, canvas.AspectRatio(), tol)
	assert.InDelta(t, 2, port.AspectRatio(), tol)
	assert.InDelta(t, 0.5, offscreen.AspectRatio(), tol)
}

func TestSceneFind(t *testing.T) {
	s := NewScene()
	n := NewNode("needle")
	s.AddNode(n)
	assert.Same(t, n, s.Find("needle"))
	assert.Same(t, s.Root(), s.Find("Root"))
}

func TestMeshRendererParts(t *testing.T) {
	r, b := newTestRenderer(t)
	red := newColorMaterial(t, r)
	blue := red.Clone()
	require.NoError(t, blue.SetVector4Parameter(renderer.UniformColor, math.NewVec4(0, 0, 1, 1)))

	data := CreateQuad()
	data.Parts = append(data.Parts, []uint32{0, 1, 2}, []uint32{2, 3, 0})
	mesh, err := data.Upload(r)
	require.NoError(t, err)

	mr := NewMeshRenderer(mesh, red)
	mr.SetMaterial(2, blue)
	assert.Same(t, red, mr.Material(1), "missing parts fall back to the first material")

	r.BeginFrame()
	r.AddRenderCommand(renderer.BeginCamera(newTestCamera(), nil))
	assert.Equal(t, 3, mr.Render(r, NewNode("n")))
	r.AddRenderCommand(renderer.EndCamera())
	require.NoError(t, r.EndFrame())

	assert.Equal(t, 2, r.Stats().MaterialApplications, "consecutive parts share one apply")
	require.Len(t, b.Draws, 3)
	assert.Equal(t, []int{6, 3, 3}, []int{b.Draws[0].Count, b.Draws[1].Count, b.Draws[2].Count})
}

func TestMeshRendererWithoutMaterial(t *testing.T) {
	r, _ := newTestRenderer(t)
	mesh, err := CreateTriangle().Upload(r)
	require.NoError(t, err)

	r.BeginFrame()
	assert.Zero(t, (&MeshRenderer{Mesh: mesh}).Render(r, NewNode("n")))
	assert.Zero(t, (&MeshRenderer{}).Render(r, NewNode("n")))
	require.NoError(t, r.EndFrame())
}

func TestSkyGradient(t *testing.T) {
	r, b := newTestRenderer(t)
	sky, err := NewSkyGradient(r, DefaultSkyColors())
	require.NoError(t, err)

	mat := sky.Renderer.Material(0)
	require.NotNil(t, mat)
	assert.False(t, mat.DepthWrite())
	assert.Equal(t, gpu.DepthLEqual, mat.DepthFunction())
	assert.Equal(t, gpu.FaceCullAll, mat.FaceCull())

	s := NewScene()
	s.AddCamera(newTestCamera())
	s.AddNode(sky)
	require.NoError(t, s.Frame(r))
	require.Len(t, b.Draws, 1)
	assert.False(t, b.Draws[0].State.DepthWrite)

	_, err = NewSkybox(r, nil)
	assert.ErrorIs(t, err, renderer.ErrInvalidTexture)
}
