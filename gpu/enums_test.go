package gpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "OneMinusSrcAlpha", BlendOneMinusSrcAlpha.String())
	assert.Equal(t, "LEqual", DepthLEqual.String())
	assert.Equal(t, "CCW", FaceCullCCW.String())
	assert.Equal(t, "samplerCube", UniformSamplerCube.String())
	assert.Equal(t, "fragment", StageFragment.String())
	assert.Equal(t, "PrimitiveType(42)", PrimitiveType(42).String())
}

func TestUniformTypeHelpers(t *testing.T) {
	assert.True(t, UniformSampler2D.IsSampler())
	assert.True(t, UniformSamplerCube.IsSampler())
	assert.False(t, UniformMat4.IsSampler())
	assert.Equal(t, 16, UniformMat4.Components())
	assert.Equal(t, 3, UniformVec3.Components())
	assert.Equal(t, 0, UniformInt.Components())
}

func TestBytes(t *testing.T) {
	assert.Nil(t, Bytes[float32](nil))
	assert.Len(t, Bytes([]float32{1, 2, 3}), 12)
	assert.Len(t, Bytes([]uint16{1, 2, 3}), 6)
	assert.Equal(t, 2, IndexUint16.Size())
	assert.Equal(t, 3, TextureFormatRGB.BytesPerPixel())
}
