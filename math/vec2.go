package math

// Vec2 is a texture coordinate or a position on screen.
type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

func (v Vec2) Scale(s float32) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Div divides componentwise, mapping a pixel position into the unit square
// when o is the canvas size.
func (v Vec2) Div(o Vec2) Vec2 { return Vec2{X: v.X / o.X, Y: v.Y / o.Y} }

// FlipY mirrors a unit-square coordinate between a top-left origin (images,
// window cursors) and the bottom-left one of clip space and GL textures.
func (v Vec2) FlipY() Vec2 { return Vec2{X: v.X, Y: 1 - v.Y} }

// Floats returns the components in upload order.
func (v Vec2) Floats() []float32 {
	return []float32{v.X, v.Y}
}
