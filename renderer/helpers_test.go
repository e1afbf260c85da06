package renderer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/internal/nullgpu"
	"solo-engine/math"
)

type testDevice struct {
	backend       *nullgpu.Backend
	width, height int
}

func (d *testDevice) CanvasSize() (int, int) { return d.width, d.height }
func (d *testDevice) TimeDelta() float32     { return 1.0 / 60 }
func (d *testDevice) Backend() gpu.Backend   { return d.backend }

func newTestRenderer(t *testing.T, opts ...Option) (*Renderer, *nullgpu.Backend) {
	t.Helper()
	b := nullgpu.New()
	r, err := New(&testDevice{backend: b, width: 800, height: 600}, opts...)
	require.NoError(t, err)
	return r, b
}

type testCamera struct {
	viewport   math.Rect
	clearColor core.Color
	clearOn    bool
	depthOn    bool
	view, proj math.Mat4
	position   math.Vec3
}

func newTestCamera() *testCamera {
	pos := math.NewVec3(0, 0, 5)
	return &testCamera{
		clearColor: core.ColorBlack,
		clearOn:    true,
		depthOn:    true,
		view:       math.Mat4Translation(pos.Negate()),
		proj:       math.Mat4Perspective(1, 4.0/3.0, 0.1, 100),
		position:   pos,
	}
}

func (c *testCamera) Viewport() math.Rect             { return c.viewport }
func (c *testCamera) ClearColor() core.Color          { return c.clearColor }
func (c *testCamera) ClearColorEnabled() bool         { return c.clearOn }
func (c *testCamera) ClearDepthEnabled() bool         { return c.depthOn }
func (c *testCamera) ViewMatrix() math.Mat4           { return c.view }
func (c *testCamera) ProjectionMatrix() math.Mat4     { return c.proj }
func (c *testCamera) ViewProjectionMatrix() math.Mat4 { return c.view.Mul(c.proj) }
func (c *testCamera) WorldPosition() math.Vec3        { return c.position }

type testTransform struct {
	world math.Mat4
}

func (t testTransform) WorldMatrix() math.Mat4 { return t.world }
func (t testTransform) WorldViewMatrix(c Camera) math.Mat4 {
	return t.world.Mul(c.ViewMatrix())
}
func (t testTransform) WorldViewProjectionMatrix(c Camera) math.Mat4 {
	return t.world.Mul(c.ViewProjectionMatrix())
}
func (t testTransform) InverseTransposedWorldMatrix() math.Mat4 {
	return t.world.InverseTranspose()
}
func (t testTransform) InverseTransposedWorldViewMatrix(c Camera) math.Mat4 {
	return t.WorldViewMatrix(c).InverseTranspose()
}

const colorVS = `#version 410 core
in vec3 position;
in vec3 normal;
uniform mat4 wvp;
uniform mat4 w;
void main() {
    gl_Position = wvp * w * vec4(position + normal, 1.0);
}
`

const colorFS = `#version 410 core
uniform vec4 color;
uniform vec3 tint;
uniform vec3 cameraPos;
out vec4 outColor;
void main() {
    outColor = color * vec4(tint, 1.0);
}
`

const texturedVS = `#version 410 core
in vec3 position;
in vec2 uv;
uniform mat4 wvp;
uniform vec3 offsets[4];
out vec2 vUV;
void main() {
    vUV = uv;
    gl_Position = wvp * vec4(position + offsets[0], 1.0);
}
`

const texturedFS = `#version 410 core
in vec2 vUV;
uniform sampler2D mainTex;
uniform float strength;
uniform samplerCube envTex;
out vec4 outColor;
void main() {
    outColor = texture(mainTex, vUV) * strength;
}
`

func newColorEffect(t *testing.T, r *Renderer) *Effect {
	t.Helper()
	e, err := r.NewEffect(colorVS, colorFS)
	require.NoError(t, err)
	return e
}

func newTexturedEffect(t *testing.T, r *Renderer) *Effect {
	t.Helper()
	e, err := r.NewEffect(texturedVS, texturedFS)
	require.NoError(t, err)
	return e
}

// interleavedLayout is position(3) normal(3) uv(2), 32 bytes per vertex.
func interleavedLayout() VertexBufferLayout {
	var l VertexBufferLayout
	l.AddNamedAttribute(3, AttributePosition)
	l.AddNamedAttribute(3, AttributeNormal)
	l.AddNamedAttribute(2, AttributeUV)
	return l
}

func positionLayout() VertexBufferLayout {
	var l VertexBufferLayout
	l.AddAttribute(3, 0)
	return l
}

func newTriangleMesh(t *testing.T, r *Renderer) *Mesh {
	t.Helper()
	m := r.NewMesh(gpu.PrimitiveTriangles)
	_, err := m.AddVertexBuffer(interleavedLayout(), make([]float32, 3*8), 3)
	require.NoError(t, err)
	return m
}

// opsOf keeps the recorded operations named in keep, in order.
func opsOf(b *nullgpu.Backend, keep ...string) []string {
	want := make(map[string]bool, len(keep))
	for _, k := range keep {
		want[k] = true
	}
	var out []string
	for _, op := range b.Ops() {
		if want[op] {
			out = append(out, op)
		}
	}
	return out
}
