// Package device opens the window and GPU backend a renderer draws with.
package device

import (
	"fmt"
	"log/slog"
	"time"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/internal/nullgpu"
	"solo-engine/internal/opengl"
	"solo-engine/renderer"
)

// Device couples a backend with its canvas and frame clock. The null
// backend has no window; its canvas is the configured window size.
type Device struct {
	log     *slog.Logger
	window  *Window
	backend gpu.Backend

	width, height int
	closed        bool

	now       func() time.Time
	lastFrame time.Time
	dt        float32
}

var _ renderer.Device = (*Device)(nil)

type Option func(*Device)

func WithLogger(log *slog.Logger) Option {
	return func(d *Device) {
		if log != nil {
			d.log = log
		}
	}
}

// WithClock replaces time.Now for frame timing.
func WithClock(now func() time.Time) Option {
	return func(d *Device) { d.now = now }
}

// New opens the backend named by cfg.Backend.
func New(cfg core.Config, opts ...Option) (*Device, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Device{
		log:    core.NopLogger(),
		now:    time.Now,
		width:  cfg.Window.Width,
		height: cfg.Window.Height,
	}
	for _, opt := range opts {
		opt(d)
	}

	switch cfg.Backend {
	case core.BackendNull:
		d.backend = nullgpu.New()
	case core.BackendOpenGL:
		w, err := newWindow(cfg.Window)
		if err != nil {
			return nil, err
		}
		b, err := opengl.New(d.log)
		if err != nil {
			w.destroy()
			return nil, err
		}
		d.window, d.backend = w, b
		d.width, d.height = w.FramebufferSize()
	default:
		d.log.Warn("backend not available", "backend", cfg.Backend)
		return nil, fmt.Errorf("backend %q: %w", cfg.Backend, gpu.ErrUnsupportedBackend)
	}

	major, minor := d.backend.Version()
	d.log.Info("device ready", "backend", d.backend.Name(),
		"version", fmt.Sprintf("%d.%d", major, minor), "width", d.width, "height", d.height)
	d.lastFrame = d.now()
	return d, nil
}

func (d *Device) Backend() gpu.Backend { return d.backend }

// Window is nil for the null backend.
func (d *Device) Window() *Window { return d.window }

func (d *Device) CanvasSize() (int, int) {
	if d.window != nil {
		return d.window.FramebufferSize()
	}
	return d.width, d.height
}

// TimeDelta is the duration of the last frame in seconds, as measured by
// Update.
func (d *Device) TimeDelta() float32 { return d.dt }

// Update polls window events and advances the frame clock.
func (d *Device) Update() {
	if d.window != nil {
		d.window.PollEvents()
	}
	now := d.now()
	d.dt = float32(now.Sub(d.lastFrame).Seconds())
	d.lastFrame = now
}

func (d *Device) ShouldClose() bool {
	if d.window != nil {
		return d.closed || d.window.ShouldClose()
	}
	return d.closed
}

// Close asks the frame loop to stop.
func (d *Device) Close() {
	d.closed = true
	if d.window != nil {
		d.window.SetShouldClose()
	}
}

func (d *Device) SwapBuffers() {
	if d.window != nil {
		d.window.SwapBuffers()
	}
}

// Destroy closes the window. Release renderer resources first.
func (d *Device) Destroy() {
	if d.window != nil {
		d.window.destroy()
		d.window = nil
	}
	d.closed = true
}
