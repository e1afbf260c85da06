package renderer

import (
	"errors"
	"fmt"

	"solo-engine/gpu"
)

// FrameBuffer is an offscreen render target over caller-owned textures.
// A depth-format attachment replaces the backend's own depth buffer.
type FrameBuffer struct {
	r             *Renderer
	handle        gpu.Handle
	width, height int
	attachments   []*Texture
}

func (r *Renderer) NewFrameBuffer(attachments ...*Texture) (*FrameBuffer, error) {
	if len(attachments) == 0 {
		return nil, errors.New("frame buffer needs at least one attachment")
	}
	width, height := attachments[0].Size()
	handles := make([]gpu.Handle, len(attachments))
	for i, t := range attachments {
		if t.Kind() != gpu.Texture2D {
			return nil, fmt.Errorf("frame buffer attachment %d is a %s texture: %w", i, t.Kind(), ErrInvalidTexture)
		}
		if w, h := t.Size(); w != width || h != height {
			return nil, fmt.Errorf("frame buffer attachment %d is %dx%d, want %dx%d: %w",
				i, w, h, width, height, ErrInvalidTexture)
		}
		handles[i] = t.Handle()
	}
	fb, err := r.backend.CreateFrameBuffer(handles, width, height)
	if err != nil {
		return nil, fmt.Errorf("create frame buffer: %w", err)
	}
	return &FrameBuffer{r: r, handle: fb, width: width, height: height, attachments: attachments}, nil
}

func (f *FrameBuffer) Handle() gpu.Handle        { return f.handle }
func (f *FrameBuffer) Size() (width, height int) { return f.width, f.height }
func (f *FrameBuffer) Attachments() []*Texture   { return f.attachments }

// Destroy releases the frame buffer. Attachments stay alive.
func (f *FrameBuffer) Destroy() {
	if f.handle == 0 {
		return
	}
	f.r.backend.DestroyFrameBuffer(f.handle)
	f.handle = 0
}
