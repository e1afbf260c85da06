package gpu

import "fmt"

func enumString(names []string, v int, kind string) string {
	if v >= 0 && v < len(names) && names[v] != "" {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

// BlendFactor scales a source or destination color during blending.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendOneMinusSrcColor
	BlendDstColor
	BlendOneMinusDstColor
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcAlphaSaturate
)

var blendFactorNames = []string{
	BlendZero:             "Zero",
	BlendOne:              "One",
	BlendSrcColor:         "SrcColor",
	BlendOneMinusSrcColor: "OneMinusSrcColor",
	BlendDstColor:         "DstColor",
	BlendOneMinusDstColor: "OneMinusDstColor",
	BlendSrcAlpha:         "SrcAlpha",
	BlendOneMinusSrcAlpha: "OneMinusSrcAlpha",
	BlendDstAlpha:         "DstAlpha",
	BlendOneMinusDstAlpha: "OneMinusDstAlpha",
	BlendSrcAlphaSaturate: "SrcAlphaSaturate",
}

func (b BlendFactor) String() string { return enumString(blendFactorNames, int(b), "BlendFactor") }

type DepthFunction uint8

const (
	DepthNever DepthFunction = iota
	DepthLess
	DepthEqual
	DepthLEqual
	DepthGreater
	DepthNotEqual
	DepthGEqual
	DepthAlways
)

var depthFunctionNames = []string{
	DepthNever:    "Never",
	DepthLess:     "Less",
	DepthEqual:    "Equal",
	DepthLEqual:   "LEqual",
	DepthGreater:  "Greater",
	DepthNotEqual: "NotEqual",
	DepthGEqual:   "GEqual",
	DepthAlways:   "Always",
}

func (d DepthFunction) String() string {
	return enumString(depthFunctionNames, int(d), "DepthFunction")
}

// FaceCull selects which winding is culled. FaceCullAll draws every face.
type FaceCull uint8

const (
	FaceCullAll FaceCull = iota
	FaceCullCW
	FaceCullCCW
)

var faceCullNames = []string{
	FaceCullAll: "All",
	FaceCullCW:  "CW",
	FaceCullCCW: "CCW",
}

func (f FaceCull) String() string { return enumString(faceCullNames, int(f), "FaceCull") }

type PolygonMode uint8

const (
	PolygonTriangle PolygonMode = iota
	PolygonWireframe
	PolygonPoints
)

var polygonModeNames = []string{
	PolygonTriangle:  "Triangle",
	PolygonWireframe: "Wireframe",
	PolygonPoints:    "Points",
}

func (p PolygonMode) String() string { return enumString(polygonModeNames, int(p), "PolygonMode") }

type PrimitiveType uint8

const (
	PrimitiveTriangles PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveLines
	PrimitiveLineStrip
	PrimitivePoints
)

var primitiveTypeNames = []string{
	PrimitiveTriangles:     "Triangles",
	PrimitiveTriangleStrip: "TriangleStrip",
	PrimitiveLines:         "Lines",
	PrimitiveLineStrip:     "LineStrip",
	PrimitivePoints:        "Points",
}

func (p PrimitiveType) String() string {
	return enumString(primitiveTypeNames, int(p), "PrimitiveType")
}

type TextureFormat uint8

const (
	TextureFormatRed TextureFormat = iota
	TextureFormatRGB
	TextureFormatRGBA
	TextureFormatDepth
)

var textureFormatNames = []string{
	TextureFormatRed:   "Red",
	TextureFormatRGB:   "RGB",
	TextureFormatRGBA:  "RGBA",
	TextureFormatDepth: "Depth",
}

func (f TextureFormat) String() string {
	return enumString(textureFormatNames, int(f), "TextureFormat")
}

// BytesPerPixel is the size of one uploaded texel.
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatRed:
		return 1
	case TextureFormatRGB:
		return 3
	default:
		return 4
	}
}

type TextureWrap uint8

const (
	WrapClamp TextureWrap = iota
	WrapRepeat
	WrapMirrorRepeat
)

var textureWrapNames = []string{
	WrapClamp:        "Clamp",
	WrapRepeat:       "Repeat",
	WrapMirrorRepeat: "MirrorRepeat",
}

func (w TextureWrap) String() string { return enumString(textureWrapNames, int(w), "TextureWrap") }

type TextureFilter uint8

const (
	FilterNearest TextureFilter = iota
	FilterLinear
)

var textureFilterNames = []string{
	FilterNearest: "Nearest",
	FilterLinear:  "Linear",
}

func (f TextureFilter) String() string {
	return enumString(textureFilterNames, int(f), "TextureFilter")
}

// MipFilter selects how mip levels are sampled. MipNone disables mipmapping.
type MipFilter uint8

const (
	MipNone MipFilter = iota
	MipNearest
	MipLinear
)

var mipFilterNames = []string{
	MipNone:    "None",
	MipNearest: "Nearest",
	MipLinear:  "Linear",
}

func (m MipFilter) String() string { return enumString(mipFilterNames, int(m), "MipFilter") }

type IndexType uint8

const (
	IndexUint16 IndexType = iota
	IndexUint32
)

var indexTypeNames = []string{
	IndexUint16: "Uint16",
	IndexUint32: "Uint32",
}

func (t IndexType) String() string { return enumString(indexTypeNames, int(t), "IndexType") }

// Size is the element width in bytes.
func (t IndexType) Size() int {
	if t == IndexUint16 {
		return 2
	}
	return 4
}

// UniformType is the reflected type of an active uniform.
type UniformType uint8

const (
	UniformFloat UniformType = iota
	UniformVec2
	UniformVec3
	UniformVec4
	UniformMat3
	UniformMat4
	UniformInt
	UniformBool
	UniformSampler2D
	UniformSamplerCube
	UniformOther
)

var uniformTypeNames = []string{
	UniformFloat:       "float",
	UniformVec2:        "vec2",
	UniformVec3:        "vec3",
	UniformVec4:        "vec4",
	UniformMat3:        "mat3",
	UniformMat4:        "mat4",
	UniformInt:         "int",
	UniformBool:        "bool",
	UniformSampler2D:   "sampler2D",
	UniformSamplerCube: "samplerCube",
	UniformOther:       "other",
}

func (t UniformType) String() string { return enumString(uniformTypeNames, int(t), "UniformType") }

// IsSampler reports whether uniforms of this type take a texture unit.
func (t UniformType) IsSampler() bool {
	return t == UniformSampler2D || t == UniformSamplerCube
}

// Components is the float count of one element, or 0 for non-float types.
func (t UniformType) Components() int {
	switch t {
	case UniformFloat:
		return 1
	case UniformVec2:
		return 2
	case UniformVec3:
		return 3
	case UniformVec4:
		return 4
	case UniformMat3:
		return 9
	case UniformMat4:
		return 16
	}
	return 0
}

type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
)

var shaderStageNames = []string{
	StageVertex:   "vertex",
	StageFragment: "fragment",
}

func (s ShaderStage) String() string { return enumString(shaderStageNames, int(s), "ShaderStage") }

type TextureKind uint8

const (
	Texture2D TextureKind = iota
	TextureCube
)

var textureKindNames = []string{
	Texture2D:   "2D",
	TextureCube: "Cube",
}

func (k TextureKind) String() string { return enumString(textureKindNames, int(k), "TextureKind") }

// BufferKind distinguishes vertex from index buffers.
type BufferKind uint8

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

var bufferKindNames = []string{
	VertexBuffer: "vertex",
	IndexBuffer:  "index",
}

func (k BufferKind) String() string { return enumString(bufferKindNames, int(k), "BufferKind") }
