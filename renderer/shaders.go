package renderer

import "fmt"

// Prefab names a built-in effect.
type Prefab uint8

const (
	// PrefabUnlitColor draws geometry in a flat "color" (vec4).
	PrefabUnlitColor Prefab = iota
	// PrefabUnlitTexture samples "mainTex" at "uv", tinted by "color".
	PrefabUnlitTexture
	// PrefabSkybox samples the cube map "mainTex" along the view direction.
	PrefabSkybox
	// PrefabSkyGradient blends "zenith", "horizon" and "ground" colors by
	// the view direction's height.
	PrefabSkyGradient
	// PrefabParticles draws point sprites sized by "size" and tinted by
	// "vertexColor", scaled by the "pointScale" uniform.
	PrefabParticles
)

var prefabNames = [...]string{
	PrefabUnlitColor:   "UnlitColor",
	PrefabUnlitTexture: "UnlitTexture",
	PrefabSkybox:       "Skybox",
	PrefabSkyGradient:  "SkyGradient",
	PrefabParticles:    "Particles",
}

func (p Prefab) String() string {
	if int(p) < len(prefabNames) {
		return prefabNames[p]
	}
	return fmt.Sprintf("Prefab(%d)", p)
}

// Uniform names shared by the prefab shaders.
const (
	UniformWorldViewProjMatrix = "worldViewProjMatrix"
	UniformViewMatrix          = "viewMatrix"
	UniformProjMatrix          = "projMatrix"
	UniformColor               = "color"
	UniformMainTex             = "mainTex"
	UniformPointScale          = "pointScale"
)

// Attribute names read by the prefab shaders.
const (
	AttributePosition = "position"
	AttributeNormal   = "normal"
	AttributeUV       = "uv"
	AttributeColor    = "vertexColor"
	AttributeSize     = "size"
)

type prefabSource struct {
	vertex, fragment string
}

// ── Shaders ───────────────────────────────────────────────────────────────────

const unlitColorVert = `#version 410 core
in vec3 position;

uniform mat4 worldViewProjMatrix;

void main() {
    gl_Position = worldViewProjMatrix * vec4(position, 1.0);
}
`

const unlitColorFrag = `#version 410 core
uniform vec4 color;

out vec4 outColor;

void main() {
    outColor = color;
}
`

const unlitTextureVert = `#version 410 core
in vec3 position;
in vec2 uv;

uniform mat4 worldViewProjMatrix;

out vec2 fragUV;

void main() {
    fragUV = uv;
    gl_Position = worldViewProjMatrix * vec4(position, 1.0);
}
`

const unlitTextureFrag = `#version 410 core
in vec2 fragUV;

uniform sampler2D mainTex;
uniform vec4 color;

out vec4 outColor;

void main() {
    outColor = texture(mainTex, fragUV) * color;
}
`

// skyVert drops the view translation and forces depth to the far plane
// with the xyww trick, so the sky is drawn behind everything.
const skyVert = `#version 410 core
in vec3 position;

uniform mat4 viewMatrix;
uniform mat4 projMatrix;

out vec3 fragDir;

void main() {
    fragDir = position;
    vec4 pos = projMatrix * mat4(mat3(viewMatrix)) * vec4(position, 1.0);
    gl_Position = pos.xyww;
}
`

const skyboxFrag = `#version 410 core
in vec3 fragDir;

uniform samplerCube mainTex;

out vec4 outColor;

void main() {
    outColor = texture(mainTex, fragDir);
}
`

const skyGradientFrag = `#version 410 core
in vec3 fragDir;

uniform vec3 zenith;
uniform vec3 horizon;
uniform vec3 ground;

out vec4 outColor;

void main() {
    float t = normalize(fragDir).y;

    vec3 color;
    if (t >= 0.0) {
        color = mix(horizon, zenith, pow(t, 0.4));
    } else {
        color = mix(horizon, ground, min(-t * 3.0, 1.0));
    }
    outColor = vec4(color, 1.0);
}
`

// particleVert shrinks points with distance; the backend must honor
// gl_PointSize.
const particleVert = `#version 410 core
in vec3 position;
in vec4 vertexColor;
in float size;

uniform mat4 worldViewProjMatrix;
uniform float pointScale;

out vec4 fragColor;

void main() {
    fragColor = vertexColor;
    gl_Position = worldViewProjMatrix * vec4(position, 1.0);
    gl_PointSize = size * pointScale / max(gl_Position.w, 0.0001);
}
`

const particleFrag = `#version 410 core
in vec4 fragColor;

out vec4 outColor;

void main() {
    vec2 d = gl_PointCoord - vec2(0.5);
    float falloff = 1.0 - smoothstep(0.2, 0.5, length(d));
    outColor = vec4(fragColor.rgb, fragColor.a * falloff);
}
`

var prefabSources = map[Prefab]prefabSource{
	PrefabUnlitColor:   {unlitColorVert, unlitColorFrag},
	PrefabUnlitTexture: {unlitTextureVert, unlitTextureFrag},
	PrefabSkybox:       {skyVert, skyboxFrag},
	PrefabSkyGradient:  {skyVert, skyGradientFrag},
	PrefabParticles:    {particleVert, particleFrag},
}

// NewPrefabEffect builds one of the built-in effects.
func (r *Renderer) NewPrefabEffect(p Prefab) (*Effect, error) {
	src, ok := prefabSources[p]
	if !ok {
		return nil, fmt.Errorf("unknown prefab %s", p)
	}
	e, err := r.NewEffect(src.vertex, src.fragment)
	if err != nil {
		return nil, fmt.Errorf("prefab %s: %w", p, err)
	}
	return e, nil
}
