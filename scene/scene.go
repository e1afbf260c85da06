// Package scene builds frames for the renderer from a node graph: cameras,
// transforms, mesh renderers, primitive geometry and glTF import.
package scene

import (
	"cmp"
	"log/slog"
	"slices"

	"solo-engine/core"
	"solo-engine/renderer"
)

// RenderStats describes the nodes visited by the last Render.
type RenderStats struct {
	Cameras int
	Drawn   int
	Culled  int
	Draws   int
}

func (s RenderStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("cameras", s.Cameras),
		slog.Int("drawn", s.Drawn),
		slog.Int("culled", s.Culled),
		slog.Int("draws", s.Draws),
	)
}

// Scene is a node graph viewed by one or more cameras.
type Scene struct {
	// FrustumCulling skips nodes whose world bounds are outside the camera
	// frustum.
	FrustumCulling bool

	root    *Node
	cameras []*Camera
	nextID  uint32
	log     *slog.Logger
}

type Option func(*Scene)

func WithLogger(log *slog.Logger) Option {
	return func(s *Scene) {
		if log != nil {
			s.log = log
		}
	}
}

func WithFrustumCulling(on bool) Option {
	return func(s *Scene) { s.FrustumCulling = on }
}

func NewScene(opts ...Option) *Scene {
	s := &Scene{
		FrustumCulling: true,
		log:            core.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = NewNode("Root")
	s.assignIDs(s.root)
	return s
}

func (s *Scene) Root() *Node { return s.root }

// AddNode attaches node and its subtree under the root.
func (s *Scene) AddNode(node *Node) {
	s.root.AddChild(node)
	s.assignIDs(node)
}

// AddChild attaches node under parent, which must belong to the scene.
func (s *Scene) AddChild(parent, node *Node) {
	parent.AddChild(node)
	s.assignIDs(node)
}

func (s *Scene) RemoveNode(node *Node) {
	if node.Parent != nil {
		node.Parent.RemoveChild(node)
	}
	node.Traverse(func(n *Node) { n.id = 0 })
}

func (s *Scene) assignIDs(node *Node) {
	node.Traverse(func(n *Node) {
		if n.id == 0 {
			s.nextID++
			n.id = s.nextID
		}
	})
}

func (s *Scene) Find(name string) *Node { return s.root.Find(name) }

// AddCamera registers a camera. Cameras render in Order, ties in the order
// they were added.
func (s *Scene) AddCamera(c *Camera) {
	s.cameras = append(s.cameras, c)
	slices.SortStableFunc(s.cameras, func(a, b *Camera) int { return cmp.Compare(a.Order, b.Order) })
}

func (s *Scene) RemoveCamera(c *Camera) {
	s.cameras = slices.DeleteFunc(s.cameras, func(x *Camera) bool { return x == c })
}

func (s *Scene) Cameras() []*Camera { return s.cameras }

func (s *Scene) Update(deltaTime float32) {
	s.root.Update(deltaTime)
}

// Render queues the commands of every camera into the current frame of r:
// BeginCamera, the visible mesh renderers in graph order, then EndCamera.
func (s *Scene) Render(r *renderer.Renderer) RenderStats {
	var stats RenderStats
	for _, cam := range s.cameras {
		s.fitAspect(r, cam)
		r.AddRenderCommand(renderer.BeginCamera(cam, cam.RenderTarget))

		var frustum *Frustum
		if s.FrustumCulling {
			f := FrustumFromViewProjection(cam.ViewProjectionMatrix())
			frustum = &f
		}
		s.renderNode(r, cam, frustum, s.root, &stats)

		r.AddRenderCommand(renderer.EndCamera())
		stats.Cameras++
	}
	s.log.Debug("scene rendered", "stats", stats)
	return stats
}

func (s *Scene) renderNode(r *renderer.Renderer, cam *Camera, frustum *Frustum, n *Node, stats *RenderStats) {
	if !n.Visible {
		return
	}
	if n.Renderer != nil && n.Tags&cam.TagMask != 0 {
		if frustum != nil && n.HasBounds && !n.WorldBounds().Intersects(frustum) {
			stats.Culled++
		} else {
			stats.Draws += n.Renderer.Render(r, n)
			stats.Drawn++
		}
	}
	for _, child := range n.Children {
		s.renderNode(r, cam, frustum, child, stats)
	}
}

// fitAspect matches the camera aspect ratio to the area it draws into.
func (s *Scene) fitAspect(r *renderer.Renderer, cam *Camera) {
	var w, h int
	switch vp := cam.Viewport(); {
	case !vp.Empty():
		w, h = int(vp.Width), int(vp.Height)
	case cam.RenderTarget != nil:
		w, h = cam.RenderTarget.Size()
	default:
		w, h = r.Device().CanvasSize()
	}
	cam.UpdateAspectRatio(float32(w), float32(h))
}

// Frame runs a whole frame: BeginFrame, Render and EndFrame.
func (s *Scene) Frame(r *renderer.Renderer) error {
	r.BeginFrame()
	s.Render(r)
	return r.EndFrame()
}
