package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"solo-engine/gpu"
	"solo-engine/renderer"
)

// Image is CPU-side RGBA8 pixel data, rows top to bottom.
type Image struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// DecodeImage reads a PNG, JPEG, BMP, TIFF or WebP stream and converts it
// to RGBA8.
func DecodeImage(name string, r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image %q: %w", name, err)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return &Image{
		Name:   name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}

func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %q: %w", path, err)
	}
	defer f.Close()
	return DecodeImage(path, f)
}

func decodeImageBytes(name string, data []byte) (*Image, error) {
	return DecodeImage(name, bytes.NewReader(data))
}

// SolidImage is a 1x1 image of one color, components 0-255.
func SolidImage(name string, r, g, b, a uint8) *Image {
	return &Image{Name: name, Width: 1, Height: 1, Pixels: []byte{r, g, b, a}}
}

func (img *Image) desc() gpu.TextureDesc {
	return gpu.TextureDesc{
		Kind:   gpu.Texture2D,
		Width:  img.Width,
		Height: img.Height,
		Format: gpu.TextureFormatRGBA,
	}
}

// Upload creates a mipmapped 2D texture from the image.
func (img *Image) Upload(r *renderer.Renderer) (*renderer.Texture, error) {
	tex, err := r.NewTexture2D(img.desc(), img.Pixels)
	if err != nil {
		return nil, fmt.Errorf("upload image %q: %w", img.Name, err)
	}
	return tex, nil
}

// LoadTexture reads an image file and uploads it.
func LoadTexture(r *renderer.Renderer, path string) (*renderer.Texture, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return img.Upload(r)
}

// LoadCubeTexture uploads six equally sized images in the order +X, -X,
// +Y, -Y, +Z, -Z.
func LoadCubeTexture(r *renderer.Renderer, paths [6]string) (*renderer.Texture, error) {
	var faces [6][]byte
	var desc gpu.TextureDesc
	for i, path := range paths {
		img, err := LoadImage(path)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			desc = img.desc()
			desc.Kind = gpu.TextureCube
		} else if img.Width != desc.Width || img.Height != desc.Height {
			return nil, fmt.Errorf("cube face %q is %dx%d, want %dx%d",
				path, img.Width, img.Height, desc.Width, desc.Height)
		}
		faces[i] = img.Pixels
	}
	tex, err := r.NewCubeTexture(desc, faces)
	if err != nil {
		return nil, fmt.Errorf("upload cube texture: %w", err)
	}
	return tex, nil
}
