package math

import "github.com/chewxy/math32"

// Vec4 is a homogeneous point, a plane ax+by+cz+d or an RGBA color,
// depending on who holds it.
type Vec4 struct {
	X, Y, Z, W float32
}

func NewVec4(x, y, z, w float32) Vec4 {
	return Vec4{X: x, Y: y, Z: z, W: w}
}

// Vec4One is opaque white when used as a color.
var Vec4One = Vec4{X: 1, Y: 1, Z: 1, W: 1}

func (v Vec4) Add(o Vec4) Vec4 {
	return Vec4{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z, W: v.W + o.W}
}

func (v Vec4) Sub(o Vec4) Vec4 {
	return Vec4{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z, W: v.W - o.W}
}

// MulMat transforms v as a row vector: v * m.
func (v Vec4) MulMat(m Mat4) Vec4 {
	var r [4]float32
	for j := range r {
		r[j] = v.X*m[0][j] + v.Y*m[1][j] + v.Z*m[2][j] + v.W*m[3][j]
	}
	return Vec4{X: r[0], Y: r[1], Z: r[2], W: r[3]}
}

func (v Vec4) XYZ() Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// Project is the perspective divide. Directions (w = 0) pass through.
func (v Vec4) Project() Vec3 {
	if v.W == 0 || v.W == 1 {
		return v.XYZ()
	}
	return Vec3{X: v.X / v.W, Y: v.Y / v.W, Z: v.Z / v.W}
}

// NormalizePlane scales the plane so its normal XYZ has unit length, making W
// the signed distance of the origin. A degenerate plane becomes zero.
func (v Vec4) NormalizePlane() Vec4 {
	l := math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if l == 0 {
		return Vec4{}
	}
	return Vec4{X: v.X / l, Y: v.Y / l, Z: v.Z / l, W: v.W / l}
}

// Floats returns the components in upload order.
func (v Vec4) Floats() []float32 {
	return []float32{v.X, v.Y, v.Z, v.W}
}
