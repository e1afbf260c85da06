package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"solo-engine/gpu"
)

// Every translation is total over the engine enum. An undefined value is a
// programming error and panics.

func invalid(kind string, v fmt.Stringer) string {
	return fmt.Sprintf("opengl: undefined %s %s", kind, v)
}

func toBlendFactor(f gpu.BlendFactor) uint32 {
	switch f {
	case gpu.BlendZero:
		return gl.ZERO
	case gpu.BlendOne:
		return gl.ONE
	case gpu.BlendSrcColor:
		return gl.SRC_COLOR
	case gpu.BlendOneMinusSrcColor:
		return gl.ONE_MINUS_SRC_COLOR
	case gpu.BlendDstColor:
		return gl.DST_COLOR
	case gpu.BlendOneMinusDstColor:
		return gl.ONE_MINUS_DST_COLOR
	case gpu.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case gpu.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gpu.BlendDstAlpha:
		return gl.DST_ALPHA
	case gpu.BlendOneMinusDstAlpha:
		return gl.ONE_MINUS_DST_ALPHA
	case gpu.BlendSrcAlphaSaturate:
		return gl.SRC_ALPHA_SATURATE
	}
	panic(invalid("blend factor", f))
}

func toPrimitiveType(p gpu.PrimitiveType) uint32 {
	switch p {
	case gpu.PrimitiveTriangles:
		return gl.TRIANGLES
	case gpu.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	case gpu.PrimitiveLines:
		return gl.LINES
	case gpu.PrimitiveLineStrip:
		return gl.LINE_STRIP
	case gpu.PrimitivePoints:
		return gl.POINTS
	}
	panic(invalid("primitive type", p))
}

func toDepthFunction(d gpu.DepthFunction) uint32 {
	switch d {
	case gpu.DepthNever:
		return gl.NEVER
	case gpu.DepthLess:
		return gl.LESS
	case gpu.DepthEqual:
		return gl.EQUAL
	case gpu.DepthLEqual:
		return gl.LEQUAL
	case gpu.DepthGreater:
		return gl.GREATER
	case gpu.DepthNotEqual:
		return gl.NOTEQUAL
	case gpu.DepthGEqual:
		return gl.GEQUAL
	case gpu.DepthAlways:
		return gl.ALWAYS
	}
	panic(invalid("depth function", d))
}

// toFaceCull returns the front-face winding to cull with glCullFace(GL_BACK),
// and false when culling is off.
func toFaceCull(c gpu.FaceCull) (frontFace uint32, cull bool) {
	switch c {
	case gpu.FaceCullAll:
		return 0, false
	case gpu.FaceCullCW:
		// Cull clockwise faces: counter-clockwise ones are front.
		return gl.CCW, true
	case gpu.FaceCullCCW:
		return gl.CW, true
	}
	panic(invalid("face cull", c))
}

func toPolygonMode(m gpu.PolygonMode) uint32 {
	switch m {
	case gpu.PolygonTriangle:
		return gl.FILL
	case gpu.PolygonWireframe:
		return gl.LINE
	case gpu.PolygonPoints:
		return gl.POINT
	}
	panic(invalid("polygon mode", m))
}

func toTextureWrap(w gpu.TextureWrap) int32 {
	switch w {
	case gpu.WrapClamp:
		return gl.CLAMP_TO_EDGE
	case gpu.WrapRepeat:
		return gl.REPEAT
	case gpu.WrapMirrorRepeat:
		return gl.MIRRORED_REPEAT
	}
	panic(invalid("texture wrap", w))
}

// toTextureFilter combines a minification filter with a mip filter.
func toTextureFilter(min gpu.TextureFilter, mip gpu.MipFilter) int32 {
	switch min {
	case gpu.FilterNearest:
		switch mip {
		case gpu.MipNone:
			return gl.NEAREST
		case gpu.MipNearest:
			return gl.NEAREST_MIPMAP_NEAREST
		case gpu.MipLinear:
			return gl.NEAREST_MIPMAP_LINEAR
		}
		panic(invalid("mip filter", mip))
	case gpu.FilterLinear:
		switch mip {
		case gpu.MipNone:
			return gl.LINEAR
		case gpu.MipNearest:
			return gl.LINEAR_MIPMAP_NEAREST
		case gpu.MipLinear:
			return gl.LINEAR_MIPMAP_LINEAR
		}
		panic(invalid("mip filter", mip))
	}
	panic(invalid("texture filter", min))
}

func toMagFilter(f gpu.TextureFilter) int32 {
	switch f {
	case gpu.FilterNearest:
		return gl.NEAREST
	case gpu.FilterLinear:
		return gl.LINEAR
	}
	panic(invalid("texture filter", f))
}

func toInternalTextureFormat(f gpu.TextureFormat) int32 {
	switch f {
	case gpu.TextureFormatRed:
		return gl.R8
	case gpu.TextureFormatRGB:
		return gl.RGB8
	case gpu.TextureFormatRGBA:
		return gl.RGBA8
	case gpu.TextureFormatDepth:
		return gl.DEPTH_COMPONENT24
	}
	panic(invalid("texture format", f))
}

// toDataFormat returns the pixel format and component type of uploaded data.
func toDataFormat(f gpu.TextureFormat) (format, xtype uint32) {
	switch f {
	case gpu.TextureFormatRed:
		return gl.RED, gl.UNSIGNED_BYTE
	case gpu.TextureFormatRGB:
		return gl.RGB, gl.UNSIGNED_BYTE
	case gpu.TextureFormatRGBA:
		return gl.RGBA, gl.UNSIGNED_BYTE
	case gpu.TextureFormatDepth:
		return gl.DEPTH_COMPONENT, gl.FLOAT
	}
	panic(invalid("texture format", f))
}

func toIndexType(t gpu.IndexType) uint32 {
	switch t {
	case gpu.IndexUint16:
		return gl.UNSIGNED_SHORT
	case gpu.IndexUint32:
		return gl.UNSIGNED_INT
	}
	panic(invalid("index type", t))
}

func toTextureTarget(k gpu.TextureKind) uint32 {
	switch k {
	case gpu.Texture2D:
		return gl.TEXTURE_2D
	case gpu.TextureCube:
		return gl.TEXTURE_CUBE_MAP
	}
	panic(invalid("texture kind", k))
}

func toBufferTarget(k gpu.BufferKind) uint32 {
	switch k {
	case gpu.VertexBuffer:
		return gl.ARRAY_BUFFER
	case gpu.IndexBuffer:
		return gl.ELEMENT_ARRAY_BUFFER
	}
	panic(invalid("buffer kind", k))
}

func toShaderType(s gpu.ShaderStage) uint32 {
	switch s {
	case gpu.StageVertex:
		return gl.VERTEX_SHADER
	case gpu.StageFragment:
		return gl.FRAGMENT_SHADER
	}
	panic(invalid("shader stage", s))
}

// fromUniformType maps a reflected GL uniform type to the engine type.
// Types the engine does not upload become UniformOther.
func fromUniformType(t uint32) gpu.UniformType {
	switch t {
	case gl.FLOAT:
		return gpu.UniformFloat
	case gl.FLOAT_VEC2:
		return gpu.UniformVec2
	case gl.FLOAT_VEC3:
		return gpu.UniformVec3
	case gl.FLOAT_VEC4:
		return gpu.UniformVec4
	case gl.FLOAT_MAT3:
		return gpu.UniformMat3
	case gl.FLOAT_MAT4:
		return gpu.UniformMat4
	case gl.INT:
		return gpu.UniformInt
	case gl.BOOL:
		return gpu.UniformBool
	case gl.SAMPLER_2D:
		return gpu.UniformSampler2D
	case gl.SAMPLER_CUBE:
		return gpu.UniformSamplerCube
	}
	return gpu.UniformOther
}
