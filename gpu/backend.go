// Package gpu defines the backend-neutral GPU vocabulary: engine enums,
// resource handles and the Backend interface every graphics API implements.
package gpu

import (
	"unsafe"

	"solo-engine/core"
)

// Handle names a backend object. Zero is never a valid object.
type Handle uint32

// UniformDesc describes one active uniform as reported by the backend.
// Name is raw, array uniforms keep their "[0]" suffix.
type UniformDesc struct {
	Name     string
	Location int32
	Type     UniformType
	Size     int32
}

type AttributeDesc struct {
	Name     string
	Location int32
}

type TextureDesc struct {
	Kind   TextureKind
	Width  int
	Height int
	Format TextureFormat
}

type SamplerParams struct {
	Wrap      TextureWrap
	MinFilter TextureFilter
	MagFilter TextureFilter
	MipFilter MipFilter
}

// Backend is the only place raw graphics API calls are made. All methods
// run on the thread that owns the context.
type Backend interface {
	Name() string
	Version() (major, minor int)

	// CreateProgram compiles and links a vertex/fragment pair. Failures are
	// *ShaderCompilationError or *ShaderLinkError.
	CreateProgram(vertexSrc, fragmentSrc string) (Handle, error)
	ActiveUniforms(program Handle) []UniformDesc
	ActiveAttributes(program Handle) []AttributeDesc
	UseProgram(program Handle)
	DestroyProgram(program Handle)

	// SetUniform uploads count elements of t read from values to the
	// uniform at location of the program in use.
	SetUniform(location int32, t UniformType, count int, values []float32)
	SetUniformInt(location int32, v int32)

	CreateBuffer(kind BufferKind, data []byte, dynamic bool) (Handle, error)
	UpdateBuffer(kind BufferKind, buf Handle, offset int, data []byte)
	DestroyBuffer(buf Handle)

	CreateVertexArray() (Handle, error)
	BindVertexArray(vao Handle)
	BindBuffer(kind BufferKind, buf Handle)
	// VertexAttribute maps float components of the bound vertex buffer
	// to location and enables it.
	VertexAttribute(location uint32, components, stride, offset int)
	DestroyVertexArray(vao Handle)

	// CreateTexture uploads one image for Texture2D and six for
	// TextureCube (+X, -X, +Y, -Y, +Z, -Z). Nil images allocate storage.
	CreateTexture(desc TextureDesc, images [][]byte) (Handle, error)
	SetSamplerParams(kind TextureKind, tex Handle, p SamplerParams)
	ActiveTextureUnit(unit int)
	BindTexture(kind TextureKind, tex Handle)
	DestroyTexture(tex Handle)

	// CreateFrameBuffer attaches colors and a backend owned depth buffer.
	CreateFrameBuffer(colors []Handle, width, height int) (Handle, error)
	// BindFrameBuffer binds fb, or the default back buffer when fb is 0.
	BindFrameBuffer(fb Handle)
	DestroyFrameBuffer(fb Handle)

	Viewport(x, y, width, height int)
	ClearColor(c core.Color)
	Clear(color, depth bool)
	SetDepthTest(enabled bool)
	SetDepthWrite(enabled bool)
	SetDepthFunc(f DepthFunction)
	SetBlend(enabled bool)
	SetBlendFunc(src, dst BlendFactor)
	SetFaceCull(c FaceCull)
	SetPolygonMode(m PolygonMode)

	DrawArrays(p PrimitiveType, first, count int)
	DrawElements(p PrimitiveType, count int, t IndexType)
}

// Bytes reinterprets a slice of fixed-size values as its backing bytes.
func Bytes[T any](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(zero)))
}
