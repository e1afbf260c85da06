package renderer

import (
	"fmt"

	"solo-engine/gpu"
)

// Texture is a 2D or cube texture owned by its creator.
type Texture struct {
	r       *Renderer
	handle  gpu.Handle
	desc    gpu.TextureDesc
	sampler gpu.SamplerParams
}

// NewTexture2D uploads pixels, tightly packed rows in desc.Format. Nil
// pixels allocate uninitialised storage, for render targets.
func (r *Renderer) NewTexture2D(desc gpu.TextureDesc, pixels []byte) (*Texture, error) {
	desc.Kind = gpu.Texture2D
	if err := checkImage(desc, pixels); err != nil {
		return nil, err
	}
	sampler := gpu.SamplerParams{
		Wrap:      gpu.WrapRepeat,
		MinFilter: gpu.FilterLinear,
		MagFilter: gpu.FilterLinear,
		MipFilter: gpu.MipLinear,
	}
	if pixels == nil {
		sampler = gpu.SamplerParams{Wrap: gpu.WrapClamp, MinFilter: gpu.FilterLinear, MagFilter: gpu.FilterLinear}
	}
	return r.newTexture(desc, [][]byte{pixels}, sampler)
}

// NewCubeTexture uploads six faces in +X, -X, +Y, -Y, +Z, -Z order.
func (r *Renderer) NewCubeTexture(desc gpu.TextureDesc, faces [6][]byte) (*Texture, error) {
	desc.Kind = gpu.TextureCube
	for i, f := range faces {
		if err := checkImage(desc, f); err != nil {
			return nil, fmt.Errorf("cube face %d: %w", i, err)
		}
	}
	return r.newTexture(desc, faces[:], gpu.SamplerParams{
		Wrap:      gpu.WrapClamp,
		MinFilter: gpu.FilterLinear,
		MagFilter: gpu.FilterLinear,
	})
}

func checkImage(desc gpu.TextureDesc, pixels []byte) error {
	if desc.Width <= 0 || desc.Height <= 0 {
		return fmt.Errorf("texture size %dx%d: %w", desc.Width, desc.Height, ErrInvalidTexture)
	}
	if pixels == nil {
		return nil
	}
	if want := desc.Width * desc.Height * desc.Format.BytesPerPixel(); len(pixels) != want {
		return fmt.Errorf("texture data is %d bytes, %dx%d %s needs %d: %w",
			len(pixels), desc.Width, desc.Height, desc.Format, want, ErrInvalidTexture)
	}
	return nil
}

func (r *Renderer) newTexture(desc gpu.TextureDesc, images [][]byte, sampler gpu.SamplerParams) (*Texture, error) {
	h, err := r.backend.CreateTexture(desc, images)
	if err != nil {
		return nil, fmt.Errorf("create texture: %w", err)
	}
	t := &Texture{r: r, handle: h, desc: desc, sampler: sampler}
	r.backend.SetSamplerParams(desc.Kind, h, sampler)
	return t, nil
}

func (t *Texture) Handle() gpu.Handle        { return t.handle }
func (t *Texture) Kind() gpu.TextureKind     { return t.desc.Kind }
func (t *Texture) Format() gpu.TextureFormat { return t.desc.Format }
func (t *Texture) Size() (width, height int) { return t.desc.Width, t.desc.Height }

// Bind binds the texture to the active texture unit.
func (t *Texture) Bind() { t.r.backend.BindTexture(t.desc.Kind, t.handle) }

func (t *Texture) SetWrapping(w gpu.TextureWrap) {
	t.sampler.Wrap = w
	t.r.backend.SetSamplerParams(t.desc.Kind, t.handle, t.sampler)
}

func (t *Texture) SetFiltering(minFilter, magFilter gpu.TextureFilter, mip gpu.MipFilter) {
	t.sampler.MinFilter = minFilter
	t.sampler.MagFilter = magFilter
	t.sampler.MipFilter = mip
	t.r.backend.SetSamplerParams(t.desc.Kind, t.handle, t.sampler)
}

func (t *Texture) Destroy() {
	if t.handle == 0 {
		return
	}
	t.r.backend.DestroyTexture(t.handle)
	t.handle = 0
}
