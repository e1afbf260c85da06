package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"solo-engine/math"
	"solo-engine/renderer"
)

// Model owns the GPU resources of an imported file.
type Model struct {
	// Roots are the top-level nodes; add each with Scene.AddNode.
	Roots     []*Node
	Meshes    []*renderer.Mesh
	Materials []*renderer.Material
	Textures  []*renderer.Texture
}

// Release frees every mesh, material and texture of the model.
func (m *Model) Release() {
	for _, mesh := range m.Meshes {
		mesh.Destroy()
	}
	for _, mat := range m.Materials {
		mat.Release()
	}
	for _, t := range m.Textures {
		t.Destroy()
	}
	m.Meshes, m.Materials, m.Textures = nil, nil, nil
}

// LoadModel imports a .gltf, .glb or .obj file.
func LoadModel(path string, r *renderer.Renderer) (*Model, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".gltf", ".glb":
		return LoadGLTF(path, r)
	case ".obj":
		return LoadOBJ(path, r)
	default:
		return nil, fmt.Errorf("load model %q: unsupported format %q", path, ext)
	}
}

// materialFactory builds unlit materials for imported surfaces, sharing one
// effect per prefab.
type materialFactory struct {
	r       *renderer.Renderer
	model   *Model
	effects map[renderer.Prefab]*renderer.Effect
}

func newMaterialFactory(r *renderer.Renderer, model *Model) *materialFactory {
	return &materialFactory{r: r, model: model, effects: make(map[renderer.Prefab]*renderer.Effect)}
}

func (f *materialFactory) effect(p renderer.Prefab) (*renderer.Effect, error) {
	if e, ok := f.effects[p]; ok {
		return e, nil
	}
	e, err := f.r.NewPrefabEffect(p)
	if err != nil {
		return nil, err
	}
	f.effects[p] = e
	return e, nil
}

// newMaterial returns an unlit material of color, textured when tex is set.
// The model owns the material.
func (f *materialFactory) newMaterial(color math.Vec4, tex *renderer.Texture) (*renderer.Material, error) {
	prefab := renderer.PrefabUnlitColor
	if tex != nil {
		prefab = renderer.PrefabUnlitTexture
	}
	effect, err := f.effect(prefab)
	if err != nil {
		return nil, err
	}

	m := renderer.NewMaterial(effect)
	f.model.Materials = append(f.model.Materials, m)
	if err := m.BindParameter(renderer.UniformWorldViewProjMatrix, renderer.WorldViewProjectionMatrix); err != nil {
		return nil, err
	}
	if err := m.SetVector4Parameter(renderer.UniformColor, color); err != nil {
		return nil, err
	}
	if tex != nil {
		if err := m.SetTextureParameter(renderer.UniformMainTex, tex); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// close drops the factory's effect references; materials keep their own.
func (f *materialFactory) close() {
	for _, e := range f.effects {
		e.Release()
	}
	clear(f.effects)
}
