package renderer

import (
	"fmt"
	"slices"

	"solo-engine/gpu"
	"solo-engine/math"
)

// AutoBinding is a value computed from the current camera and transform
// each time a material's parameters are applied.
type AutoBinding uint8

const (
	WorldMatrix AutoBinding = iota
	ViewMatrix
	ProjectionMatrix
	WorldViewMatrix
	ViewProjectionMatrix
	WorldViewProjectionMatrix
	InverseTransposedWorldMatrix
	InverseTransposedWorldViewMatrix
	CameraWorldPosition
)

var autoBindingNames = [...]string{
	WorldMatrix:                      "WorldMatrix",
	ViewMatrix:                       "ViewMatrix",
	ProjectionMatrix:                 "ProjectionMatrix",
	WorldViewMatrix:                  "WorldViewMatrix",
	ViewProjectionMatrix:             "ViewProjectionMatrix",
	WorldViewProjectionMatrix:        "WorldViewProjectionMatrix",
	InverseTransposedWorldMatrix:     "InverseTransposedWorldMatrix",
	InverseTransposedWorldViewMatrix: "InverseTransposedWorldViewMatrix",
	CameraWorldPosition:              "CameraWorldPosition",
}

func (b AutoBinding) String() string {
	if int(b) < len(autoBindingNames) {
		return autoBindingNames[b]
	}
	return fmt.Sprintf("AutoBinding(%d)", b)
}

func (b AutoBinding) needsCamera() bool {
	return b != WorldMatrix && b != InverseTransposedWorldMatrix
}

// uniformType is the GLSL type a binding uploads.
func (b AutoBinding) uniformType() gpu.UniformType {
	if b == CameraWorldPosition {
		return gpu.UniformVec3
	}
	return gpu.UniformMat4
}

func (b AutoBinding) needsTransform() bool {
	switch b {
	case WorldMatrix, WorldViewMatrix, WorldViewProjectionMatrix,
		InverseTransposedWorldMatrix, InverseTransposedWorldViewMatrix:
		return true
	}
	return false
}

type paramKind uint8

const (
	paramValue paramKind = iota
	paramTexture
	paramAuto
)

// param is the single binding of one uniform name. Exactly one of values,
// texture or auto is in effect, selected by kind.
type param struct {
	info    UniformInfo
	kind    paramKind
	typ     gpu.UniformType
	count   int
	values  []float32
	texture *Texture
	auto    AutoBinding
}

// Material binds values to an Effect's uniforms and carries the fixed
// function state used while drawing with it.
type Material struct {
	effect   *Effect
	params   map[string]*param
	order    []string
	released bool

	faceCull    gpu.FaceCull
	polygonMode gpu.PolygonMode
	depthTest   bool
	depthWrite  bool
	depthFunc   gpu.DepthFunction
	blend       bool
	srcBlend    gpu.BlendFactor
	dstBlend    gpu.BlendFactor
}

// NewMaterial creates a material holding its own reference to effect.
func NewMaterial(effect *Effect) *Material {
	effect.Retain()
	return &Material{
		effect:      effect,
		params:      make(map[string]*param),
		faceCull:    gpu.FaceCullCW,
		polygonMode: gpu.PolygonTriangle,
		depthTest:   true,
		depthWrite:  true,
		depthFunc:   gpu.DepthLess,
		srcBlend:    gpu.BlendSrcAlpha,
		dstBlend:    gpu.BlendOneMinusSrcAlpha,
	}
}

func (m *Material) Effect() *Effect { return m.effect }

// Clone returns a material with a copy of the parameter values and state
// that shares the Effect.
func (m *Material) Clone() *Material {
	c := *m
	m.effect.Retain()
	c.released = false
	c.order = slices.Clone(m.order)
	c.params = make(map[string]*param, len(m.params))
	for name, p := range m.params {
		cp := *p
		cp.values = slices.Clone(p.values)
		c.params[name] = &cp
	}
	return &c
}

// Release drops the material's Effect reference. Further calls are no-ops.
func (m *Material) Release() {
	if m.released {
		return
	}
	m.released = true
	m.effect.Release()
}

// resolve returns the binding of name, looking the uniform up in the Effect
// the first time the name is seen. A new binding joins the material only
// through store, once its value passed the type checks.
func (m *Material) resolve(name string) (*param, error) {
	if p, ok := m.params[name]; ok {
		return p, nil
	}
	info, err := m.effect.Uniform(name)
	if err != nil {
		return nil, fmt.Errorf("material parameter %q: %w", name, ErrParameterNotFound)
	}
	return &param{info: info}, nil
}

func (m *Material) store(name string, p *param) {
	if _, ok := m.params[name]; ok {
		return
	}
	m.params[name] = p
	m.order = append(m.order, name)
}

func (m *Material) setValues(name string, typ gpu.UniformType, count int, values []float32) error {
	p, err := m.resolve(name)
	if err != nil {
		return err
	}
	if p.info.SamplerIndex >= 0 {
		return fmt.Errorf("material parameter %q: %s uniform takes a texture: %w", name, p.info.Type, ErrParameterType)
	}
	if typ != p.info.Type {
		return fmt.Errorf("material parameter %q: %s value for a %s uniform: %w", name, typ, p.info.Type, ErrParameterType)
	}
	if count < 1 || count > p.info.Size || (count > 1 && !p.info.IsArray) {
		return fmt.Errorf("material parameter %q: %d values for %s[%d]: %w", name, count, p.info.Type, p.info.Size, ErrParameterType)
	}
	p.kind = paramValue
	p.typ = typ
	p.count = count
	p.values = append(p.values[:0], values...)
	p.texture = nil
	m.store(name, p)
	return nil
}

func (m *Material) SetFloatParameter(name string, v float32) error {
	return m.setValues(name, gpu.UniformFloat, 1, []float32{v})
}

func (m *Material) SetFloatArrayParameter(name string, v []float32) error {
	return m.setValues(name, gpu.UniformFloat, len(v), v)
}

func (m *Material) SetVector2Parameter(name string, v math.Vec2) error {
	return m.setValues(name, gpu.UniformVec2, 1, v.Floats())
}

func (m *Material) SetVector2ArrayParameter(name string, v []math.Vec2) error {
	values := make([]float32, 0, len(v)*2)
	for _, e := range v {
		values = append(values, e.X, e.Y)
	}
	return m.setValues(name, gpu.UniformVec2, len(v), values)
}

func (m *Material) SetVector3Parameter(name string, v math.Vec3) error {
	return m.setValues(name, gpu.UniformVec3, 1, v.Floats())
}

func (m *Material) SetVector3ArrayParameter(name string, v []math.Vec3) error {
	values := make([]float32, 0, len(v)*3)
	for _, e := range v {
		values = append(values, e.X, e.Y, e.Z)
	}
	return m.setValues(name, gpu.UniformVec3, len(v), values)
}

func (m *Material) SetVector4Parameter(name string, v math.Vec4) error {
	return m.setValues(name, gpu.UniformVec4, 1, v.Floats())
}

func (m *Material) SetVector4ArrayParameter(name string, v []math.Vec4) error {
	values := make([]float32, 0, len(v)*4)
	for _, e := range v {
		values = append(values, e.X, e.Y, e.Z, e.W)
	}
	return m.setValues(name, gpu.UniformVec4, len(v), values)
}

func (m *Material) SetMatrixParameter(name string, v math.Mat4) error {
	return m.setValues(name, gpu.UniformMat4, 1, v.Floats())
}

func (m *Material) SetMatrixArrayParameter(name string, v []math.Mat4) error {
	values := make([]float32, 0, len(v)*16)
	for _, e := range v {
		values = append(values, e.Floats()...)
	}
	return m.setValues(name, gpu.UniformMat4, len(v), values)
}

// SetTextureParameter binds t to a sampler uniform.
func (m *Material) SetTextureParameter(name string, t *Texture) error {
	if t == nil {
		return fmt.Errorf("material parameter %q: %w", name, ErrInvalidTexture)
	}
	p, err := m.resolve(name)
	if err != nil {
		return err
	}
	if p.info.SamplerIndex < 0 {
		return fmt.Errorf("material parameter %q: %s uniform cannot take a texture: %w", name, p.info.Type, ErrParameterType)
	}
	p.kind = paramTexture
	p.texture = t
	p.values = nil
	m.store(name, p)
	return nil
}

// BindParameter makes name receive the value of b on every apply.
func (m *Material) BindParameter(name string, b AutoBinding) error {
	if int(b) >= len(autoBindingNames) {
		return fmt.Errorf("material parameter %q: unknown %s", name, b)
	}
	p, err := m.resolve(name)
	if err != nil {
		return err
	}
	if want := b.uniformType(); p.info.Type != want || p.info.IsArray {
		return fmt.Errorf("material parameter %q: %s needs a %s uniform, not %s: %w", name, b, want, p.info.Type, ErrParameterType)
	}
	p.kind = paramAuto
	p.auto = b
	p.values = nil
	p.texture = nil
	m.store(name, p)
	return nil
}

// ApplyParams uploads every parameter to the program in use, in the order
// the names were first bound. Auto bindings whose camera or transform is nil
// are skipped.
func (m *Material) ApplyParams(camera Camera, transform Transform) {
	backend := m.effect.r.backend
	for _, name := range m.order {
		p := m.params[name]
		switch p.kind {
		case paramValue:
			backend.SetUniform(p.info.Location, p.typ, p.count, p.values)
		case paramTexture:
			backend.ActiveTextureUnit(p.info.SamplerIndex)
			backend.SetUniformInt(p.info.Location, int32(p.info.SamplerIndex))
			p.texture.Bind()
		case paramAuto:
			if p.auto.needsCamera() && camera == nil {
				continue
			}
			if p.auto.needsTransform() && transform == nil {
				continue
			}
			if p.auto == CameraWorldPosition {
				pos := camera.WorldPosition()
				backend.SetUniform(p.info.Location, gpu.UniformVec3, 1, pos.Floats())
				continue
			}
			mat := autoMatrix(p.auto, camera, transform)
			backend.SetUniform(p.info.Location, gpu.UniformMat4, 1, mat.Floats())
		}
	}
}

func autoMatrix(b AutoBinding, camera Camera, transform Transform) math.Mat4 {
	switch b {
	case WorldMatrix:
		return transform.WorldMatrix()
	case ViewMatrix:
		return camera.ViewMatrix()
	case ProjectionMatrix:
		return camera.ProjectionMatrix()
	case WorldViewMatrix:
		return transform.WorldViewMatrix(camera)
	case ViewProjectionMatrix:
		return camera.ViewProjectionMatrix()
	case WorldViewProjectionMatrix:
		return transform.WorldViewProjectionMatrix(camera)
	case InverseTransposedWorldMatrix:
		return transform.InverseTransposedWorldMatrix()
	case InverseTransposedWorldViewMatrix:
		return transform.InverseTransposedWorldViewMatrix(camera)
	}
	panic(fmt.Sprintf("renderer: no matrix for %s", b))
}

// ApplyState pushes the full fixed-function state. Nothing is skipped when
// a value matches what the previous material set.
func (m *Material) ApplyState() {
	backend := m.effect.r.backend
	backend.SetFaceCull(m.faceCull)
	backend.SetPolygonMode(m.polygonMode)
	backend.SetDepthTest(m.depthTest)
	backend.SetDepthWrite(m.depthWrite)
	backend.SetDepthFunc(m.depthFunc)
	backend.SetBlend(m.blend)
	backend.SetBlendFunc(m.srcBlend, m.dstBlend)
}

// ── Fixed-function state ──────────────────────────────────────────────────────

func (m *Material) FaceCull() gpu.FaceCull           { return m.faceCull }
func (m *Material) SetFaceCull(c gpu.FaceCull)       { m.faceCull = c }
func (m *Material) PolygonMode() gpu.PolygonMode     { return m.polygonMode }
func (m *Material) SetPolygonMode(p gpu.PolygonMode) { m.polygonMode = p }
func (m *Material) DepthTest() bool                  { return m.depthTest }
func (m *Material) SetDepthTest(on bool)             { m.depthTest = on }
func (m *Material) DepthWrite() bool                 { return m.depthWrite }
func (m *Material) SetDepthWrite(on bool)            { m.depthWrite = on }
func (m *Material) DepthFunction() gpu.DepthFunction { return m.depthFunc }
func (m *Material) SetDepthFunction(f gpu.DepthFunction) {
	m.depthFunc = f
}
func (m *Material) BlendEnabled() bool      { return m.blend }
func (m *Material) SetBlendEnabled(on bool) { m.blend = on }

func (m *Material) BlendFactors() (src, dst gpu.BlendFactor) { return m.srcBlend, m.dstBlend }

func (m *Material) SetBlendFactors(src, dst gpu.BlendFactor) {
	m.srcBlend, m.dstBlend = src, dst
}
