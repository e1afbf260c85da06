package scene

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

const testOBJ = `# two parts sharing vertices
mtllib scene.mtl
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
o first
usemtl red
f 1/1 2/2 3/3 4/4
o second
usemtl tex
f -4/-4 -3/-3 -2/-2
`

const testMTL = `newmtl red
Kd 1 0 0
newmtl tex
Kd 1 1 1
d 0.5
map_Kd -s 1 1 1 checker.png
`

func TestParseOBJ(t *testing.T) {
	data, err := ParseOBJ("quad", strings.NewReader(testOBJ))
	require.NoError(t, err)

	d := data.Mesh
	assert.Equal(t, gpu.PrimitiveTriangles, d.Primitive)
	assert.Len(t, d.Positions, 4, "identical corners are merged")
	assert.Equal(t, [][]uint32{{0, 1, 2, 0, 2, 3}, {0, 1, 2}}, d.Parts)
	assert.Equal(t, []string{"red", "tex"}, data.PartMaterials)
	assert.Equal(t, []string{"scene.mtl"}, data.MaterialLibs)
	assert.Equal(t, math.Vec2{X: 1, Y: 1}, d.UVs[2])

	for _, n := range d.Normals {
		assertVec3(t, math.Vec3Front, n)
	}
	require.NoError(t, d.validate())
	assertOutwardWinding(t, d)
}

func TestParseOBJNormals(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 -1
f 1//1 2//1 3//1
f 1 2 3
`
	data, err := ParseOBJ("n", strings.NewReader(src))
	require.NoError(t, err)
	d := data.Mesh
	require.Len(t, d.Parts, 1)
	assert.Len(t, d.Positions, 6, "corners with and without normals differ")
	assertVec3(t, math.Vec3Back, d.Normals[0])
	// normals are only generated for files without any
	assertVec3(t, math.Vec3Up, d.Normals[3])
}

func TestParseOBJErrors(t *testing.T) {
	tests := map[string]string{
		"empty":        "# nothing\n",
		"out of range": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"zero index":   "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"bad float":    "v 0 zero 0\n",
		"short face":   "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"no position":  "v 0 0 0\nv 1 0 0\nv 0 1 0\nf /1 2 3\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOBJ(name, strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestParseMTL(t *testing.T) {
	mats, err := ParseMTL(strings.NewReader("Kd 0 1 0\n" + testMTL))
	require.NoError(t, err)
	require.Len(t, mats, 2)
	assert.Equal(t, math.NewVec4(1, 0, 0, 1), mats["red"].Diffuse)
	assert.Empty(t, mats["red"].DiffuseMap)
	assert.Equal(t, math.NewVec4(1, 1, 1, 0.5), mats["tex"].Diffuse)
	assert.Equal(t, "checker.png", mats["tex"].DiffuseMap)
}

func writeOBJScene(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quad.obj"), []byte(testOBJ), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.mtl"), []byte(testMTL), 0o644))

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "checker.png"), buf.Bytes(), 0o644))
	return filepath.Join(dir, "quad.obj")
}

func TestLoadOBJ(t *testing.T) {
	r, b := newTestRenderer(t)
	model, err := LoadModel(writeOBJScene(t), r)
	require.NoError(t, err)
	defer model.Release()

	require.Len(t, model.Roots, 1)
	node := model.Roots[0]
	assert.Equal(t, "quad", node.Name)
	assert.True(t, node.HasBounds)
	assertVec3(t, math.NewVec3(1, 1, 0), node.Bounds.Max)

	require.Len(t, model.Materials, 2)
	require.Len(t, model.Textures, 1)
	w, h := model.Textures[0].Size()
	assert.Equal(t, []int{2, 2}, []int{w, h})

	textured := node.Renderer.Material(1)
	assert.True(t, textured.BlendEnabled(), "translucent diffuse blends")
	assert.False(t, textured.DepthWrite())
	assert.False(t, node.Renderer.Material(0).BlendEnabled())

	s := NewScene()
	s.AddCamera(newTestCamera())
	s.AddNode(node)
	require.NoError(t, s.Frame(r))
	require.Len(t, b.Draws, 2)
	assert.Equal(t, 6, b.Draws[0].Count)
	assert.Equal(t, 3, b.Draws[1].Count)
	assert.Len(t, b.Draws[1].Textures, 1)

	loc, ok := b.UniformLocation(b.Draws[0].Program, renderer.UniformColor)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0, 0, 1}, b.Draws[0].Uniforms[loc])
}

func TestLoadOBJMissingLibrary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tri.obj")
	src := "mtllib missing.mtl\nv 0 0 0\nv 1 0 0\nv 0 1 0\nusemtl gone\nf 1 2 3\n"
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	r, _ := newTestRenderer(t)
	model, err := LoadOBJ(path, r)
	require.NoError(t, err, "missing materials fall back to white")
	defer model.Release()
	require.Len(t, model.Materials, 1)
	assert.Empty(t, model.Textures)
}

func TestLoadModelUnsupported(t *testing.T) {
	r, _ := newTestRenderer(t)
	_, err := LoadModel("scene.fbx", r)
	assert.ErrorContains(t, err, "unsupported format")

	_, err = LoadModel(filepath.Join(t.TempDir(), "missing.obj"), r)
	assert.Error(t, err)
}
