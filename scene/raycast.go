package scene

import (
	"github.com/chewxy/math32"

	"solo-engine/gpu"
	"solo-engine/math"
)

// Ray is a half line in world space. Direction is unit length.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// Hit is the closest node a ray struck.
type Hit struct {
	Node     *Node
	Distance float32
	Point    math.Vec3
}

// ScreenRay returns the ray through pixel (x, y) of a width x height
// canvas, origin at the top left as window cursors report it. The ray starts
// on the near plane, so it works for both projections.
func (c *Camera) ScreenRay(x, y, width, height float32) Ray {
	ndc := math.NewVec2(x, y).Div(math.NewVec2(width, height)).FlipY().Scale(2).Sub(math.NewVec2(1, 1))
	inv := c.ViewProjectionMatrix().Inverse()
	near := inv.TransformPoint(math.Vec3{X: ndc.X, Y: ndc.Y, Z: -1})
	far := inv.TransformPoint(math.Vec3{X: ndc.X, Y: ndc.Y, Z: 1})
	return Ray{Origin: near, Direction: far.Sub(near).Normalize()}
}

// IntersectRay is the slab test. It returns the distance to the entry point,
// zero when the ray starts inside the box.
func (box AABB) IntersectRay(r Ray) (float32, bool) {
	tmin, tmax := float32(0), math32.Inf(1)
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}
	lo := [3]float32{box.Min.X, box.Min.Y, box.Min.Z}
	hi := [3]float32{box.Max.X, box.Max.Y, box.Max.Z}
	for i := range 3 {
		if math32.Abs(dir[i]) < 1e-8 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (lo[i] - origin[i]) * inv
		t2 := (hi[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// IntersectTriangle is the Möller-Trumbore test. Both windings hit.
func (r Ray) IntersectTriangle(v0, v1, v2 math.Vec3) (float32, bool) {
	const epsilon = 1e-7

	edge1 := v1.Sub(v0)
	edge2 := v2.Sub(v0)
	h := r.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -epsilon && a < epsilon {
		return 0, false
	}
	f := 1 / a
	s := r.Origin.Sub(v0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(edge1)
	v := f * r.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := f * edge2.Dot(q)
	return t, t > epsilon
}

// Raycast tests every triangle of a triangle-list mesh placed by world and
// returns the nearest distance.
func (d *MeshData) Raycast(r Ray, world math.Mat4) (float32, bool) {
	if d.Primitive != gpu.PrimitiveTriangles {
		return 0, false
	}
	nearest, found := math32.Inf(1), false
	test := func(a, b, c uint32) {
		v0 := world.TransformPoint(d.Positions[a])
		v1 := world.TransformPoint(d.Positions[b])
		v2 := world.TransformPoint(d.Positions[c])
		if t, ok := r.IntersectTriangle(v0, v1, v2); ok && t < nearest {
			nearest, found = t, true
		}
	}
	if len(d.Parts) == 0 {
		for i := 0; i+2 < len(d.Positions); i += 3 {
			test(uint32(i), uint32(i+1), uint32(i+2))
		}
	}
	for _, part := range d.Parts {
		for i := 0; i+2 < len(part); i += 3 {
			test(part[i], part[i+1], part[i+2])
		}
	}
	return nearest, found
}

// Raycast returns the visible node whose world bounds the ray enters first.
// Only nodes with bounds and a tag in mask take part; hidden nodes hide
// their subtree as they do when rendering.
func (s *Scene) Raycast(r Ray, mask uint32) (Hit, bool) {
	best := Hit{Distance: math32.Inf(1)}
	var visit func(n *Node)
	visit = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.HasBounds && n.Tags&mask != 0 {
			if t, ok := n.WorldBounds().IntersectRay(r); ok && t < best.Distance {
				best = Hit{Node: n, Distance: t, Point: r.At(t)}
			}
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(s.root)
	return best, best.Node != nil
}
