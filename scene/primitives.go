package scene

import (
	"github.com/chewxy/math32"

	"solo-engine/gpu"
	"solo-engine/math"
)

// Primitives wind counter-clockwise seen from outside, which survives the
// default clockwise face culling of a material.

func CreateTriangle() *MeshData {
	n := math.Vec3Front
	return &MeshData{
		Name:      "Triangle",
		Primitive: gpu.PrimitiveTriangles,
		Positions: []math.Vec3{{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0, Y: 0.5}},
		Normals:   []math.Vec3{n, n, n},
		UVs:       []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0.5, Y: 1}},
		Parts:     [][]uint32{{0, 1, 2}},
	}
}

func CreateQuad() *MeshData {
	n := math.Vec3Front
	return &MeshData{
		Name:      "Quad",
		Primitive: gpu.PrimitiveTriangles,
		Positions: []math.Vec3{{X: -0.5, Y: -0.5}, {X: 0.5, Y: -0.5}, {X: 0.5, Y: 0.5}, {X: -0.5, Y: 0.5}},
		Normals:   []math.Vec3{n, n, n, n},
		UVs:       []math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}},
		Parts:     [][]uint32{{0, 1, 2, 2, 3, 0}},
	}
}

type cubeFace struct {
	normal, u, v math.Vec3
}

var cubeFaces = [6]cubeFace{
	{normal: math.Vec3{Z: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Y: 1}},
	{normal: math.Vec3{Z: -1}, u: math.Vec3{X: -1}, v: math.Vec3{Y: 1}},
	{normal: math.Vec3{Y: 1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: -1}},
	{normal: math.Vec3{Y: -1}, u: math.Vec3{X: 1}, v: math.Vec3{Z: 1}},
	{normal: math.Vec3{X: 1}, u: math.Vec3{Z: -1}, v: math.Vec3{Y: 1}},
	{normal: math.Vec3{X: -1}, u: math.Vec3{Z: 1}, v: math.Vec3{Y: 1}},
}

// CreateCube builds an axis-aligned cube of edge size with four vertices
// per face.
func CreateCube(size float32) *MeshData {
	s := size / 2
	d := &MeshData{Name: "Cube", Primitive: gpu.PrimitiveTriangles}
	var indices []uint32

	corners := [4]math.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
	for _, f := range cubeFaces {
		base := uint32(len(d.Positions))
		for _, c := range corners {
			p := f.normal.Add(f.u.Mul(c.X)).Add(f.v.Mul(c.Y)).Mul(s)
			d.Positions = append(d.Positions, p)
			d.Normals = append(d.Normals, f.normal)
			d.UVs = append(d.UVs, c.Scale(0.5).Add(math.NewVec2(0.5, 0.5)))
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}
	d.Parts = [][]uint32{indices}
	return d
}

// CreatePlane builds a subdivided plane on XZ facing +Y.
func CreatePlane(width, depth float32, subdivisions int) *MeshData {
	subdivisions = max(subdivisions, 1)
	d := &MeshData{Name: "Plane", Primitive: gpu.PrimitiveTriangles}
	var indices []uint32

	halfW, halfD := width/2, depth/2
	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			d.Positions = append(d.Positions, math.Vec3{X: -halfW + u*width, Z: -halfD + v*depth})
			d.Normals = append(d.Normals, math.Vec3Up)
			d.UVs = append(d.UVs, math.Vec2{X: u, Y: v})
		}
	}

	row := uint32(subdivisions + 1)
	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z)*row + uint32(x)
			topRight := topLeft + 1
			bottomLeft := topLeft + row
			bottomRight := bottomLeft + 1
			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}
	d.Parts = [][]uint32{indices}
	return d
}

// CreateSphere builds a UV sphere.
func CreateSphere(radius float32, segments, rings int) *MeshData {
	segments = max(segments, 3)
	rings = max(rings, 2)
	d := &MeshData{Name: "Sphere", Primitive: gpu.PrimitiveTriangles}
	var indices []uint32

	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)

			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			d.Positions = append(d.Positions, normal.Mul(radius))
			d.Normals = append(d.Normals, normal)
			d.UVs = append(d.UVs, math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)})
		}
	}

	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			indices = append(indices, current, current+1, next)
			indices = append(indices, current+1, next+1, next)
		}
	}
	d.Parts = [][]uint32{indices}
	return d
}
