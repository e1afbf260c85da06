package main

import (
	"log/slog"

	"solo-engine/device"
	"solo-engine/renderer"
	"solo-engine/scene"
)

// orbitControls drives an orbit camera: right mouse drag or the arrow keys
// orbit, the scroll wheel or W/S zoom.
type orbitControls struct {
	cam       *scene.OrbitCamera
	lookSpeed float32
	keySpeed  float32
	zoomSpeed float32

	lastX, lastY float64
	dragging     bool
	scroll       float32
}

func newOrbitControls(w *device.Window, cam *scene.OrbitCamera) *orbitControls {
	c := &orbitControls{
		cam:       cam,
		lookSpeed: 0.005,
		keySpeed:  1.5,
		zoomSpeed: 0.5,
	}
	w.SetScrollCallback(func(_, yoff float64) { c.scroll += float32(yoff) })
	return c
}

func (c *orbitControls) update(w *device.Window, dt float32) {
	// long hitches would otherwise spin the camera
	dt = min(dt, 0.05)

	var yaw, pitch float32
	if w.IsMouseButtonPressed(device.MouseRight) {
		x, y := w.CursorPos()
		if c.dragging {
			yaw -= float32(x-c.lastX) * c.lookSpeed
			pitch += float32(y-c.lastY) * c.lookSpeed
		}
		c.lastX, c.lastY, c.dragging = x, y, true
	} else {
		c.dragging = false
	}

	if w.IsKeyPressed(device.KeyLeft) {
		yaw -= c.keySpeed * dt
	}
	if w.IsKeyPressed(device.KeyRight) {
		yaw += c.keySpeed * dt
	}
	if w.IsKeyPressed(device.KeyUp) {
		pitch += c.keySpeed * dt
	}
	if w.IsKeyPressed(device.KeyDown) {
		pitch -= c.keySpeed * dt
	}
	if yaw != 0 || pitch != 0 {
		c.cam.Orbit(yaw, pitch)
	}

	zoom := -c.scroll * c.zoomSpeed
	c.scroll = 0
	if w.IsKeyPressed(device.KeyW) {
		zoom -= c.cam.Distance * dt
	}
	if w.IsKeyPressed(device.KeyS) {
		zoom += c.cam.Distance * dt
	}
	if zoom != 0 {
		c.cam.Zoom(zoom)
	}
}

// picker selects the node under the cursor on a left click and outlines its
// world bounds.
type picker struct {
	scene   *scene.Scene
	outline *scene.Node
	log     *slog.Logger
	pressed bool
}

func newPicker(r *renderer.Renderer, s *scene.Scene, log *slog.Logger) (*picker, *scene.Model, error) {
	outline, err := scene.NewBoundsOutline(r, scene.AABB{})
	if err != nil {
		return nil, nil, err
	}
	outline.Visible = false
	s.AddNode(outline)
	owned := &scene.Model{Meshes: []*renderer.Mesh{outline.Renderer.Mesh}, Materials: outline.Renderer.Materials}
	return &picker{scene: s, outline: outline, log: log}, owned, nil
}

func (p *picker) update(w *device.Window, cam *scene.Camera) {
	down := w.IsMouseButtonPressed(device.MouseLeft)
	clicked := down && !p.pressed
	p.pressed = down
	if !clicked {
		return
	}

	x, y := w.CursorPos()
	width, height := w.Size()
	ray := cam.ScreenRay(float32(x), float32(y), float32(width), float32(height))
	hit, ok := p.scene.Raycast(ray, cam.TagMask)
	if !ok {
		p.outline.Visible = false
		return
	}
	scene.FitOutline(p.outline, hit.Node.WorldBounds())
	p.outline.Visible = true
	p.log.Info("picked", "node", hit.Node.Name, "id", hit.Node.ID(), "distance", hit.Distance)
}

// detach removes the outline so it is not saved with the scene.
func (p *picker) detach() {
	p.scene.RemoveNode(p.outline)
}
