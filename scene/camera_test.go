package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"

	"solo-engine/math"
)

func TestCameraViewMatrix(t *testing.T) {
	c := newTestCamera()
	assertVec3(t, math.NewVec3(0, 0, -5), c.ViewMatrix().TransformPoint(math.Vec3Zero))
	assertVec3(t, math.Vec3Back, c.Forward())
}

func TestCameraLookAt(t *testing.T) {
	c := newTestCamera()
	c.SetPosition(math.NewVec3(5, 0, 0))
	c.LookAt(math.Vec3Zero, math.Vec3Up)

	assertVec3(t, math.NewVec3(-1, 0, 0), c.Forward())
	assertVec3(t, math.Vec3Up, c.Up())
	assertVec3(t, math.NewVec3(0, 0, -5), c.ViewMatrix().TransformPoint(math.Vec3Zero))
	assertMat4(t, math.Mat4LookAt(c.Position(), math.Vec3Zero, math.Vec3Up), c.ViewMatrix())
}

func TestCameraLookAtAlongUp(t *testing.T) {
	c := newTestCamera()
	c.SetPosition(math.NewVec3(0, 10, 0))
	c.LookAt(math.Vec3Zero, math.Vec3Up)
	assertVec3(t, math.NewVec3(0, -1, 0), c.Forward())
}

func TestCameraViewProjectionOrder(t *testing.T) {
	c := newTestCamera()
	c.Rotate(math.Vec3Up, 0.3)
	assertMat4(t, c.ViewMatrix().Mul(c.ProjectionMatrix()), c.ViewProjectionMatrix())

	// a point straight ahead lands in the middle of clip space
	ahead := c.Position().Add(c.Forward().Mul(10))
	p := c.ViewProjectionMatrix().TransformPoint(ahead)
	assert.InDelta(t, 0, p.X, tol)
	assert.InDelta(t, 0, p.Y, tol)
	assert.True(t, p.Z > -1 && p.Z < 1)
}

func TestCameraCachesUntilDirty(t *testing.T) {
	c := newTestCamera()
	before := c.ViewMatrix()
	assert.Equal(t, before, c.ViewMatrix())

	c.Translate(math.NewVec3(1, 0, 0))
	assert.NotEqual(t, before, c.ViewMatrix())
}

func TestCameraAspectRatio(t *testing.T) {
	c := newTestCamera()
	c.UpdateAspectRatio(1920, 1080)
	assert.InDelta(t, 16.0/9.0, c.AspectRatio(), tol)

	c.UpdateAspectRatio(100, 0)
	assert.InDelta(t, 16.0/9.0, c.AspectRatio(), tol, "zero height ignored")
}

func TestOrthographicCamera(t *testing.T) {
	c := NewOrthographicCamera(4, 2, 0.1, 100)
	assert.Equal(t, Orthographic, c.Projection())

	// half height is 2, half width 4
	p := c.ProjectionMatrix().TransformPoint(math.NewVec3(4, 2, -1))
	assert.InDelta(t, 1, p.X, tol)
	assert.InDelta(t, 1, p.Y, tol)

	c.SetPerspective(math32.Pi / 2)
	assert.Equal(t, Perspective, c.Projection())
}

func TestCameraClearFlags(t *testing.T) {
	c := newTestCamera()
	assert.True(t, c.ClearColorEnabled())
	assert.True(t, c.ClearDepthEnabled())

	c.SetClearFlags(false, true)
	assert.False(t, c.ClearColorEnabled())
	assert.True(t, c.ClearDepthEnabled())
}

func TestOrbitCamera(t *testing.T) {
	target := math.NewVec3(1, 2, 3)
	c := NewOrbitCamera(target, 10, math32.Pi/4, 1)

	dist := func() float32 { return c.Position().Sub(target).Length() }
	assert.InDelta(t, 10, dist(), tol)

	c.Orbit(1, 5)
	assert.InDelta(t, 1.5, c.Pitch, tol, "pitch clamped")
	assert.InDelta(t, 10, dist(), tol)
	assertVec3(t, target.Sub(c.Position()).Normalize(), c.Forward())

	c.Zoom(-20)
	assert.InDelta(t, 0.1, c.Distance, tol)
}
