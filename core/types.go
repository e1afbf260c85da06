package core

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
	ColorRed   = Color{1, 0, 0, 1}
	ColorGreen = Color{0, 1, 0, 1}
	ColorBlue  = Color{0, 0, 1, 1}
)

// Floats returns the color as an RGBA vector for uniform upload.
func (c Color) Floats() []float32 {
	return []float32{c.R, c.G, c.B, c.A}
}
