package scene

import (
	"fmt"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

// Sky colors used by NewSkyGradient.
type SkyColors struct {
	Zenith, Horizon, Ground core.Color
}

func DefaultSkyColors() SkyColors {
	return SkyColors{
		Zenith:  core.Color{R: 0.18, G: 0.36, B: 0.72, A: 1},
		Horizon: core.Color{R: 0.72, G: 0.82, B: 0.92, A: 1},
		Ground:  core.Color{R: 0.25, G: 0.23, B: 0.2, A: 1},
	}
}

// NewSkyGradient returns a node drawing a procedural sky behind the scene.
// Add it before other nodes so it is drawn first.
func NewSkyGradient(r *renderer.Renderer, colors SkyColors) (*Node, error) {
	return newSky(r, renderer.PrefabSkyGradient, func(m *renderer.Material) error {
		return applySkyColors(m, colors)
	})
}

func applySkyColors(m *renderer.Material, colors SkyColors) error {
	if m == nil {
		return nil
	}
	for name, c := range map[string]core.Color{
		"zenith":  colors.Zenith,
		"horizon": colors.Horizon,
		"ground":  colors.Ground,
	} {
		if err := m.SetVector3Parameter(name, math.Vec3{X: c.R, Y: c.G, Z: c.B}); err != nil {
			return err
		}
	}
	return nil
}

// NewSkybox returns a node drawing the cube texture behind the scene.
func NewSkybox(r *renderer.Renderer, cube *renderer.Texture) (*Node, error) {
	if cube == nil || cube.Kind() != gpu.TextureCube {
		return nil, fmt.Errorf("skybox: %w", renderer.ErrInvalidTexture)
	}
	return newSky(r, renderer.PrefabSkybox, func(m *renderer.Material) error {
		return m.SetTextureParameter(renderer.UniformMainTex, cube)
	})
}

func newSky(r *renderer.Renderer, p renderer.Prefab, setup func(*renderer.Material) error) (*Node, error) {
	effect, err := r.NewPrefabEffect(p)
	if err != nil {
		return nil, fmt.Errorf("sky: %w", err)
	}
	mat := renderer.NewMaterial(effect)
	effect.Release()

	mat.SetFaceCull(gpu.FaceCullAll)
	mat.SetDepthWrite(false)
	mat.SetDepthFunction(gpu.DepthLEqual)
	if err := mat.BindParameter(renderer.UniformViewMatrix, renderer.ViewMatrix); err != nil {
		mat.Release()
		return nil, fmt.Errorf("sky: %w", err)
	}
	if err := mat.BindParameter(renderer.UniformProjMatrix, renderer.ProjectionMatrix); err != nil {
		mat.Release()
		return nil, fmt.Errorf("sky: %w", err)
	}
	if err := setup(mat); err != nil {
		mat.Release()
		return nil, fmt.Errorf("sky: %w", err)
	}

	mesh, err := CreateCube(2).Upload(r)
	if err != nil {
		mat.Release()
		return nil, fmt.Errorf("sky: %w", err)
	}

	node := NewNode("Sky")
	node.Renderer = NewMeshRenderer(mesh, mat)
	return node, nil
}
