package scene

import (
	"github.com/chewxy/math32"

	"solo-engine/core"
	reMath "solo-engine/math"
	"solo-engine/renderer"
)

type Projection uint8

const (
	Perspective Projection = iota
	Orthographic
)

// Camera looks down its local -Z axis. It implements renderer.Camera.
type Camera struct {
	Name string

	// Order sorts cameras within a frame, lower first.
	Order int
	// TagMask selects the nodes this camera renders, see Node.Tags.
	TagMask uint32
	// RenderTarget is drawn into instead of the canvas when set.
	RenderTarget *renderer.FrameBuffer

	position   reMath.Vec3
	rotation   reMath.Quaternion
	projection Projection
	fov        float32
	orthoSize  float32
	aspect     float32
	near       float32
	far        float32

	viewport   reMath.Rect
	clearColor core.Color
	clearOn    bool
	depthOn    bool

	viewMatrix       reMath.Mat4
	projectionMatrix reMath.Mat4
	viewProjMatrix   reMath.Mat4
	dirty            bool
}

// NewCamera returns a perspective camera at the origin. fov is the vertical
// field of view in radians.
func NewCamera(fov, aspectRatio, nearPlane, farPlane float32) *Camera {
	return &Camera{
		TagMask:    ^uint32(0),
		rotation:   reMath.QuaternionIdentity(),
		projection: Perspective,
		fov:        fov,
		orthoSize:  2,
		aspect:     aspectRatio,
		near:       nearPlane,
		far:        farPlane,
		clearColor: core.Color{R: 0.1, G: 0.1, B: 0.15, A: 1},
		clearOn:    true,
		depthOn:    true,
		dirty:      true,
	}
}

// NewOrthographicCamera returns a camera showing size world units vertically.
func NewOrthographicCamera(size, aspectRatio, nearPlane, farPlane float32) *Camera {
	c := NewCamera(math32.Pi/4, aspectRatio, nearPlane, farPlane)
	c.projection = Orthographic
	c.orthoSize = size
	return c
}

func (c *Camera) Projection() Projection { return c.projection }

func (c *Camera) SetPerspective(fov float32) {
	c.projection = Perspective
	c.fov = fov
	c.dirty = true
}

func (c *Camera) SetOrthographic(size float32) {
	c.projection = Orthographic
	c.orthoSize = size
	c.dirty = true
}

func (c *Camera) FOV() float32         { return c.fov }
func (c *Camera) OrthoSize() float32   { return c.orthoSize }
func (c *Camera) AspectRatio() float32 { return c.aspect }

func (c *Camera) ClipPlanes() (near, far float32) { return c.near, c.far }

func (c *Camera) SetClipPlanes(near, far float32) {
	c.near, c.far = near, far
	c.dirty = true
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 && width/height != c.aspect {
		c.aspect = width / height
		c.dirty = true
	}
}

func (c *Camera) Position() reMath.Vec3       { return c.position }
func (c *Camera) Rotation() reMath.Quaternion { return c.rotation }

func (c *Camera) SetPosition(pos reMath.Vec3) {
	c.position = pos
	c.dirty = true
}

func (c *Camera) SetRotation(rot reMath.Quaternion) {
	c.rotation = rot.Normalize()
	c.dirty = true
}

func (c *Camera) Translate(delta reMath.Vec3) {
	c.position = c.position.Add(delta)
	c.dirty = true
}

// Rotate applies a rotation about a world axis.
func (c *Camera) Rotate(axis reMath.Vec3, angle float32) {
	c.rotation = reMath.QuaternionFromAxisAngle(axis, angle).Mul(c.rotation).Normalize()
	c.dirty = true
}

// LookAt turns the camera towards target. A zero direction is ignored.
func (c *Camera) LookAt(target, up reMath.Vec3) {
	back := c.position.Sub(target)
	if back.Length() == 0 {
		return
	}
	back = back.Normalize()
	right := up.Cross(back)
	if right.Length() < 1e-6 {
		// looking straight along up
		right = reMath.Vec3Front.Cross(back)
	}
	right = right.Normalize()
	realUp := back.Cross(right)

	c.rotation = reMath.QuaternionFromMat4(reMath.Mat4{
		{right.X, right.Y, right.Z, 0},
		{realUp.X, realUp.Y, realUp.Z, 0},
		{back.X, back.Y, back.Z, 0},
		{0, 0, 0, 1},
	})
	c.dirty = true
}

func (c *Camera) Forward() reMath.Vec3 { return c.rotation.RotateVector(reMath.Vec3Back) }
func (c *Camera) Right() reMath.Vec3   { return c.rotation.RotateVector(reMath.Vec3Right) }
func (c *Camera) Up() reMath.Vec3      { return c.rotation.RotateVector(reMath.Vec3Up) }

func (c *Camera) SetViewport(r reMath.Rect) { c.viewport = r }

func (c *Camera) SetClearColor(color core.Color) { c.clearColor = color }

// SetClearFlags selects which buffers BeginCamera clears.
func (c *Camera) SetClearFlags(color, depth bool) {
	c.clearOn = color
	c.depthOn = depth
}

func (c *Camera) Viewport() reMath.Rect      { return c.viewport }
func (c *Camera) ClearColor() core.Color     { return c.clearColor }
func (c *Camera) ClearColorEnabled() bool    { return c.clearOn }
func (c *Camera) ClearDepthEnabled() bool    { return c.depthOn }
func (c *Camera) WorldPosition() reMath.Vec3 { return c.position }

func (c *Camera) ViewMatrix() reMath.Mat4 {
	c.updateMatrices()
	return c.viewMatrix
}

func (c *Camera) ProjectionMatrix() reMath.Mat4 {
	c.updateMatrices()
	return c.projectionMatrix
}

func (c *Camera) ViewProjectionMatrix() reMath.Mat4 {
	c.updateMatrices()
	return c.viewProjMatrix
}

func (c *Camera) updateMatrices() {
	if !c.dirty {
		return
	}
	c.viewMatrix = reMath.Mat4Translation(c.position.Negate()).Mul(c.rotation.Conjugate().ToMat4())

	switch c.projection {
	case Orthographic:
		h := c.orthoSize / 2
		w := h * c.aspect
		c.projectionMatrix = reMath.Mat4Orthographic(-w, w, -h, h, c.near, c.far)
	default:
		c.projectionMatrix = reMath.Mat4Perspective(c.fov, c.aspect, c.near, c.far)
	}

	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}

var _ renderer.Camera = (*Camera)(nil)

// OrbitCamera circles a target point at a fixed distance.
type OrbitCamera struct {
	*Camera
	Target   reMath.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

func NewOrbitCamera(target reMath.Vec3, distance, fov, aspectRatio float32) *OrbitCamera {
	c := &OrbitCamera{
		Camera:   NewCamera(fov, aspectRatio, 0.1, 1000),
		Target:   target,
		Distance: distance,
		Pitch:    0.3,
	}
	c.UpdatePosition()
	return c
}

func (c *OrbitCamera) UpdatePosition() {
	c.Pitch = max(-1.5, min(1.5, c.Pitch))

	cosPitch, sinPitch := math32.Cos(c.Pitch), math32.Sin(c.Pitch)
	cosYaw, sinYaw := math32.Cos(c.Yaw), math32.Sin(c.Yaw)

	offset := reMath.Vec3{
		X: c.Distance * cosPitch * sinYaw,
		Y: c.Distance * sinPitch,
		Z: c.Distance * cosPitch * cosYaw,
	}
	c.SetPosition(c.Target.Add(offset))
	c.LookAt(c.Target, reMath.Vec3Up)
}

func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float32) {
	c.Yaw += deltaYaw
	c.Pitch += deltaPitch
	c.UpdatePosition()
}

func (c *OrbitCamera) Zoom(delta float32) {
	c.Distance = max(0.1, c.Distance+delta)
	c.UpdatePosition()
}
