// Package renderer records render commands during scene traversal and
// replays them against a gpu.Backend at the end of the frame. It also owns
// the GPU resources those commands reference: effects, materials, meshes,
// textures and frame buffers.
package renderer

import (
	"fmt"
	"log/slog"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/math"
)

// Device supplies the drawable surface and the graphics backend.
type Device interface {
	CanvasSize() (width, height int)
	TimeDelta() float32
	Backend() gpu.Backend
}

// Camera is read during BeginCamera and by auto-bound parameters.
type Camera interface {
	// Viewport in pixels. An empty rectangle covers the whole target.
	Viewport() math.Rect
	ClearColor() core.Color
	ClearColorEnabled() bool
	ClearDepthEnabled() bool
	ViewMatrix() math.Mat4
	ProjectionMatrix() math.Mat4
	ViewProjectionMatrix() math.Mat4
	WorldPosition() math.Vec3
}

// Transform supplies the per-draw matrices of auto-bound parameters.
type Transform interface {
	WorldMatrix() math.Mat4
	WorldViewMatrix(c Camera) math.Mat4
	WorldViewProjectionMatrix(c Camera) math.Mat4
	InverseTransposedWorldMatrix() math.Mat4
	InverseTransposedWorldViewMatrix(c Camera) math.Mat4
}

// Stats counts the work of the last replayed frame.
type Stats struct {
	Commands             int
	DrawCalls            int
	MaterialApplications int
	Vertices             int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d commands, %d draw calls, %d materials, %d vertices",
		s.Commands, s.DrawCalls, s.MaterialApplications, s.Vertices)
}

func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("commands", s.Commands),
		slog.Int("draw_calls", s.DrawCalls),
		slog.Int("materials", s.MaterialApplications),
		slog.Int("vertices", s.Vertices),
	)
}

type frameState uint8

const (
	stateIdle frameState = iota
	stateCollecting
	stateReplaying
)

type Option func(*Renderer)

func WithLogger(log *slog.Logger) Option {
	return func(r *Renderer) {
		if log != nil {
			r.log = log
		}
	}
}

// WithEvictionAge sets how many draws a mesh's cached vertex array may go
// unused before it is destroyed.
func WithEvictionAge(draws int) Option {
	return func(r *Renderer) {
		if draws > 0 {
			r.evictionAge = draws
		}
	}
}

// WithMinVersion sets the lowest backend version New accepts.
func WithMinVersion(major, minor int) Option {
	return func(r *Renderer) { r.minMajor, r.minMinor = major, minor }
}

// WithConfig applies the renderer section of the engine configuration.
func WithConfig(cfg core.RendererConfig) Option {
	return func(r *Renderer) {
		WithEvictionAge(cfg.EvictionAge)(r)
		if major, minor, err := core.ParseVersion(cfg.MinVersion); err == nil {
			WithMinVersion(major, minor)(r)
		}
	}
}

// Renderer replays one frame of commands at a time. It is used from the
// thread that owns the graphics context and is not safe for concurrent use.
type Renderer struct {
	device  Device
	backend gpu.Backend
	log     *slog.Logger

	evictionAge        int
	minMajor, minMinor int
	effects            effectArena
	meshes             map[*Mesh]struct{}

	state    frameState
	commands []Command
	camera   Camera
	material *Material

	stats     Stats
	lastStats Stats
}

// New creates a renderer on the device's backend. It fails with
// gpu.ErrUnsupportedVersion when the backend is older than the minimum
// version, 3.3 unless set with WithMinVersion.
func New(device Device, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		device:      device,
		backend:     device.Backend(),
		log:         core.NopLogger(),
		evictionAge: 1000,
		minMajor:    3,
		minMinor:    3,
		meshes:      make(map[*Mesh]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	major, minor := r.backend.Version()
	if major < r.minMajor || (major == r.minMajor && minor < r.minMinor) {
		return nil, fmt.Errorf("%w: %s %d.%d, need %d.%d",
			gpu.ErrUnsupportedVersion, r.backend.Name(), major, minor, r.minMajor, r.minMinor)
	}
	r.log.Info("renderer created", "backend", r.backend.Name(), "version", fmt.Sprintf("%d.%d", major, minor))
	return r, nil
}

func (r *Renderer) Backend() gpu.Backend { return r.backend }
func (r *Renderer) Device() Device       { return r.device }
func (r *Renderer) Logger() *slog.Logger { return r.log }

// Stats reports the last completed frame.
func (r *Renderer) Stats() Stats { return r.lastStats }

// BeginFrame starts collecting commands for a new frame, discarding any
// commands of a frame that was never ended.
func (r *Renderer) BeginFrame() {
	if r.state == stateReplaying {
		panic("renderer: BeginFrame during replay")
	}
	if r.state == stateCollecting && len(r.commands) > 0 {
		r.log.Warn("frame discarded without EndFrame", "commands", len(r.commands))
	}
	r.reset()
	r.state = stateCollecting
}

// AddRenderCommand queues cmd. No GPU work happens until EndFrame.
func (r *Renderer) AddRenderCommand(cmd Command) {
	if r.state != stateCollecting {
		panic("renderer: AddRenderCommand outside BeginFrame/EndFrame")
	}
	r.commands = append(r.commands, cmd)
}

// EndFrame replays the queued commands in order. On a *MisuseError or a
// GPU allocation failure replay stops at the offending command and the
// frame is dropped.
func (r *Renderer) EndFrame() error {
	if r.state != stateCollecting {
		return &MisuseError{Index: -1, Reason: "EndFrame without BeginFrame"}
	}
	r.state = stateReplaying
	defer r.reset()

	r.stats = Stats{Commands: len(r.commands)}
	for i, cmd := range r.commands {
		if err := r.replay(i, cmd); err != nil {
			r.log.Error("frame replay failed", "index", i, "command", cmd.Type(), "error", err)
			return err
		}
	}
	r.lastStats = r.stats
	r.log.Debug("frame", "stats", r.lastStats)
	return nil
}

func (r *Renderer) reset() {
	clear(r.commands)
	r.commands = r.commands[:0]
	r.camera = nil
	r.material = nil
	r.state = stateIdle
}

func (r *Renderer) replay(i int, cmd Command) error {
	switch c := cmd.(type) {
	case BeginCameraCommand:
		if c.Camera == nil {
			return &MisuseError{Index: i, Command: cmd, Reason: "nil camera"}
		}
		r.beginCamera(c.Camera, c.Target)
	case EndCameraCommand:
		// Always restores the default target, also after a camera that
		// rendered to it.
		r.backend.BindFrameBuffer(0)
		r.camera = nil
	case ApplyMaterialCommand:
		if c.Material == nil {
			return &MisuseError{Index: i, Command: cmd, Reason: "nil material"}
		}
		c.Material.Effect().Use()
		c.Material.ApplyState()
		r.material = c.Material
		r.stats.MaterialApplications++
	case DrawMeshCommand:
		if err := r.checkDraw(i, cmd, c.Mesh); err != nil {
			return err
		}
		r.material.ApplyParams(r.camera, c.Transform)
		if err := c.Mesh.Draw(r.material.Effect()); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	case DrawMeshPartCommand:
		if err := r.checkDraw(i, cmd, c.Mesh); err != nil {
			return err
		}
		r.material.ApplyParams(r.camera, c.Transform)
		if err := c.Mesh.DrawPart(r.material.Effect(), c.Part); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
	default:
		return &MisuseError{Index: i, Command: cmd, Reason: fmt.Sprintf("unknown command %T", cmd)}
	}
	return nil
}

func (r *Renderer) checkDraw(i int, cmd Command, mesh *Mesh) error {
	if r.material == nil {
		return &MisuseError{Index: i, Command: cmd, Reason: "draw without a preceding ApplyMaterial"}
	}
	if mesh == nil {
		return &MisuseError{Index: i, Command: cmd, Reason: "nil mesh"}
	}
	return nil
}

func (r *Renderer) beginCamera(camera Camera, target *FrameBuffer) {
	var width, height int
	if target != nil {
		r.backend.BindFrameBuffer(target.Handle())
		width, height = target.Size()
	} else {
		// A previous camera in the same frame may have left its target bound.
		r.backend.BindFrameBuffer(0)
		width, height = r.device.CanvasSize()
	}

	vp := camera.Viewport()
	if vp.Empty() {
		r.backend.Viewport(0, 0, width, height)
	} else {
		r.backend.Viewport(int(vp.X), int(vp.Y), int(vp.Width), int(vp.Height))
	}

	// Depth writes must be on for the depth clear to take effect.
	r.backend.SetDepthWrite(true)
	r.backend.SetDepthTest(true)

	clearColor, clearDepth := camera.ClearColorEnabled(), camera.ClearDepthEnabled()
	if clearColor {
		r.backend.ClearColor(camera.ClearColor())
	}
	if clearColor || clearDepth {
		r.backend.Clear(clearColor, clearDepth)
	}

	r.camera = camera
}
