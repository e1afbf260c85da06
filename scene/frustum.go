package scene

import "solo-engine/math"

// Plane is the half-space Normal·p + D >= 0.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo is positive on the inside of the plane.
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum, in the order left,
// right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// FrustumFromViewProjection extracts normalized world space planes from a
// row-vector view-projection matrix. Clip coordinates are p·vp, so the
// Gribb/Hartmann rows are the columns of vp.
func FrustumFromViewProjection(vp math.Mat4) Frustum {
	c0, c1, c2, c3 := vp.Column(0), vp.Column(1), vp.Column(2), vp.Column(3)
	planes := [6]math.Vec4{c3.Add(c0), c3.Sub(c0), c3.Add(c1), c3.Sub(c1), c3.Add(c2), c3.Sub(c2)}

	var f Frustum
	for i, p := range planes {
		p = p.NormalizePlane()
		f.Planes[i] = Plane{Normal: p.XYZ(), D: p.W}
	}
	return f
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max math.Vec3
}

// BoundsOf returns the box enclosing points. It is empty for no points.
func BoundsOf(points []math.Vec3) AABB {
	if len(points) == 0 {
		return AABB{}
	}
	box := AABB{Min: points[0], Max: points[0]}
	for _, p := range points[1:] {
		box.Min = box.Min.Min(p)
		box.Max = box.Max.Max(p)
	}
	return box
}

// Intersects is false only when the box lies fully outside one plane. It
// tests the corner furthest along each plane normal.
func (box AABB) Intersects(f *Frustum) bool {
	for _, p := range f.Planes {
		pt := box.Max
		if p.Normal.X < 0 {
			pt.X = box.Min.X
		}
		if p.Normal.Y < 0 {
			pt.Y = box.Min.Y
		}
		if p.Normal.Z < 0 {
			pt.Z = box.Min.Z
		}
		if p.DistanceTo(pt) < 0 {
			return false
		}
	}
	return true
}

// Transform returns the world box enclosing the eight transformed corners.
func (box AABB) Transform(m math.Mat4) AABB {
	mn, mx := box.Min, box.Max
	corners := []math.Vec3{
		{X: mn.X, Y: mn.Y, Z: mn.Z},
		{X: mx.X, Y: mn.Y, Z: mn.Z},
		{X: mn.X, Y: mx.Y, Z: mn.Z},
		{X: mx.X, Y: mx.Y, Z: mn.Z},
		{X: mn.X, Y: mn.Y, Z: mx.Z},
		{X: mx.X, Y: mn.Y, Z: mx.Z},
		{X: mn.X, Y: mx.Y, Z: mx.Z},
		{X: mx.X, Y: mx.Y, Z: mx.Z},
	}
	for i, c := range corners {
		corners[i] = m.TransformPoint(c)
	}
	return BoundsOf(corners)
}
