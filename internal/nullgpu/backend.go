// Package nullgpu is a headless gpu.Backend. It keeps the object model and
// bound state of a real context in memory, reflects uniforms and inputs from
// GLSL declarations and records every call so tests can inspect what a frame
// did without a window.
package nullgpu

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"solo-engine/core"
	"solo-engine/gpu"
)

// Call is one recorded backend invocation.
type Call struct {
	Op   string
	Args []any
}

func (c Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprint(a)
	}
	return c.Op + "(" + strings.Join(args, ", ") + ")"
}

// State is the fixed-function state of the context.
type State struct {
	Viewport    [4]int
	ClearColor  core.Color
	DepthTest   bool
	DepthWrite  bool
	DepthFunc   gpu.DepthFunction
	Blend       bool
	BlendSrc    gpu.BlendFactor
	BlendDst    gpu.BlendFactor
	FaceCull    gpu.FaceCull
	PolygonMode gpu.PolygonMode
}

type Program struct {
	VertexSource   string
	FragmentSource string
	Uniforms       []gpu.UniformDesc
	Attributes     []gpu.AttributeDesc
	Values         map[int32][]float32
	Ints           map[int32]int32
}

type Buffer struct {
	Kind    gpu.BufferKind
	Data    []byte
	Dynamic bool
}

// AttributeBinding is one enabled attribute of a vertex array.
type AttributeBinding struct {
	Buffer     gpu.Handle
	Components int
	Stride     int
	Offset     int
}

type VertexArray struct {
	Attributes  map[uint32]AttributeBinding
	IndexBuffer gpu.Handle
}

type Texture struct {
	Desc    gpu.TextureDesc
	Images  [][]byte
	Sampler gpu.SamplerParams
}

type FrameBuffer struct {
	Colors []gpu.Handle
	Width  int
	Height int
}

// Draw is a snapshot of the context taken at a draw call.
type Draw struct {
	Primitive   gpu.PrimitiveType
	First       int
	Count       int
	Indexed     bool
	IndexType   gpu.IndexType
	Program     gpu.Handle
	VertexArray gpu.Handle
	IndexBuffer gpu.Handle
	FrameBuffer gpu.Handle
	Uniforms    map[int32][]float32
	Ints        map[int32]int32
	Textures    map[int]gpu.Handle
	State       State
}

type Option func(*Backend)

// WithVersion sets the version the backend reports.
func WithVersion(major, minor int) Option {
	return func(b *Backend) { b.major, b.minor = major, minor }
}

// Backend implements gpu.Backend in memory. It is not safe for concurrent use.
type Backend struct {
	major, minor int
	next         gpu.Handle
	failing      map[string]bool

	programs     map[gpu.Handle]*Program
	buffers      map[gpu.Handle]*Buffer
	vertexArrays map[gpu.Handle]*VertexArray
	textures     map[gpu.Handle]*Texture
	frameBuffers map[gpu.Handle]*FrameBuffer

	program      gpu.Handle
	vertexArray  gpu.Handle
	vertexBuffer gpu.Handle
	frameBuffer  gpu.Handle
	unit         int
	units        map[int]gpu.Handle

	State State
	Calls []Call
	Draws []Draw
}

var _ gpu.Backend = (*Backend)(nil)

func New(opts ...Option) *Backend {
	b := &Backend{
		major:        4,
		minor:        1,
		failing:      make(map[string]bool),
		programs:     make(map[gpu.Handle]*Program),
		buffers:      make(map[gpu.Handle]*Buffer),
		vertexArrays: make(map[gpu.Handle]*VertexArray),
		textures:     make(map[gpu.Handle]*Texture),
		frameBuffers: make(map[gpu.Handle]*FrameBuffer),
		units:        make(map[int]gpu.Handle),
		State: State{
			DepthWrite: true,
			DepthFunc:  gpu.DepthLess,
			BlendSrc:   gpu.BlendOne,
			BlendDst:   gpu.BlendZero,
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// FailAllocations makes every later creation of resource fail. resource is
// one of "program", "buffer", "vertex array", "texture", "frame buffer".
func (b *Backend) FailAllocations(resource string) { b.failing[resource] = true }

func (b *Backend) record(op string, args ...any) {
	b.Calls = append(b.Calls, Call{Op: op, Args: args})
}

func (b *Backend) alloc(resource string) (gpu.Handle, error) {
	if b.failing[resource] {
		return 0, &gpu.ResourceError{Resource: resource, Err: errors.New("out of memory")}
	}
	b.next++
	return b.next, nil
}

// ResetCalls clears the call log and draw snapshots, keeping objects and state.
func (b *Backend) ResetCalls() {
	b.Calls = nil
	b.Draws = nil
}

// Ops lists the recorded operation names in order.
func (b *Backend) Ops() []string {
	ops := make([]string, len(b.Calls))
	for i, c := range b.Calls {
		ops[i] = c.Op
	}
	return ops
}

func (b *Backend) Name() string                { return "null" }
func (b *Backend) Version() (major, minor int) { return b.major, b.minor }

// ── Programs ──────────────────────────────────────────────────────────────

func (b *Backend) CreateProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	b.record("CreateProgram")
	if !hasMain(vertexSrc) {
		return 0, &gpu.ShaderCompilationError{Stage: gpu.StageVertex, Log: "ERROR: 0:1: 'main' : function not defined"}
	}
	if !hasMain(fragmentSrc) {
		return 0, &gpu.ShaderCompilationError{Stage: gpu.StageFragment, Log: "ERROR: 0:1: 'main' : function not defined"}
	}
	varyings := outputs(vertexSrc)
	for _, in := range inputs(fragmentSrc) {
		if !varyings[in.name] {
			return 0, &gpu.ShaderLinkError{Log: fmt.Sprintf("ERROR: input %s not written by vertex shader", in.name)}
		}
	}
	h, err := b.alloc("program")
	if err != nil {
		return 0, err
	}

	p := &Program{
		VertexSource:   vertexSrc,
		FragmentSource: fragmentSrc,
		Values:         make(map[int32][]float32),
		Ints:           make(map[int32]int32),
	}
	var loc int32
	for _, d := range uniforms(vertexSrc, fragmentSrc) {
		p.Uniforms = append(p.Uniforms, gpu.UniformDesc{
			Name:     reportedName(d),
			Location: loc,
			Type:     uniformType(d.typ),
			Size:     int32(d.size),
		})
		loc += int32(d.size)
	}
	used := make(map[int]bool)
	ins := inputs(vertexSrc)
	for _, in := range ins {
		if in.location >= 0 {
			used[in.location] = true
		}
	}
	next := 0
	for _, in := range ins {
		l := in.location
		if l < 0 {
			for used[next] {
				next++
			}
			l = next
			used[l] = true
		}
		p.Attributes = append(p.Attributes, gpu.AttributeDesc{Name: in.name, Location: int32(l)})
	}
	b.programs[h] = p
	return h, nil
}

func (b *Backend) ActiveUniforms(program gpu.Handle) []gpu.UniformDesc {
	if p, ok := b.programs[program]; ok {
		return slices.Clone(p.Uniforms)
	}
	return nil
}

func (b *Backend) ActiveAttributes(program gpu.Handle) []gpu.AttributeDesc {
	if p, ok := b.programs[program]; ok {
		return slices.Clone(p.Attributes)
	}
	return nil
}

func (b *Backend) UseProgram(program gpu.Handle) {
	b.record("UseProgram", program)
	b.program = program
}

func (b *Backend) DestroyProgram(program gpu.Handle) {
	b.record("DestroyProgram", program)
	delete(b.programs, program)
	if b.program == program {
		b.program = 0
	}
}

// Program returns a live program object.
func (b *Backend) Program(h gpu.Handle) (*Program, bool) {
	p, ok := b.programs[h]
	return p, ok
}

// CurrentProgram is the program most recently passed to UseProgram.
func (b *Backend) CurrentProgram() gpu.Handle { return b.program }

// UniformLocation resolves a uniform name, without array suffix, of program.
func (b *Backend) UniformLocation(program gpu.Handle, name string) (int32, bool) {
	p, ok := b.programs[program]
	if !ok {
		return 0, false
	}
	for _, u := range p.Uniforms {
		if baseName(u.Name) == name {
			return u.Location, true
		}
	}
	return 0, false
}

// Uniform returns the last floats uploaded to the named uniform of program.
func (b *Backend) Uniform(program gpu.Handle, name string) ([]float32, bool) {
	loc, ok := b.UniformLocation(program, name)
	if !ok {
		return nil, false
	}
	v, ok := b.programs[program].Values[loc]
	return v, ok
}

// ── Uniforms ──────────────────────────────────────────────────────────────

func (b *Backend) current(op string) *Program {
	p, ok := b.programs[b.program]
	if !ok {
		panic(fmt.Sprintf("nullgpu: %s with no program in use", op))
	}
	return p
}

// SetUniform panics when t or count disagree with the declaration at
// location, where a GL context would raise GL_INVALID_OPERATION and drop the
// upload.
func (b *Backend) SetUniform(location int32, t gpu.UniformType, count int, values []float32) {
	b.record("SetUniform", location, t, count)
	p := b.current("SetUniform")
	for _, u := range p.Uniforms {
		if u.Location != location {
			continue
		}
		if u.Type != t || count < 1 || count > int(u.Size) {
			panic(fmt.Sprintf("nullgpu: SetUniform %s x%d on %s %s[%d]", t, count, u.Type, u.Name, u.Size))
		}
		break
	}
	n := count * t.Components()
	if n > len(values) {
		n = len(values)
	}
	p.Values[location] = slices.Clone(values[:n])
}

func (b *Backend) SetUniformInt(location int32, v int32) {
	b.record("SetUniformInt", location, v)
	b.current("SetUniformInt").Ints[location] = v
}

// ── Buffers and vertex arrays ────────────────────────────────────────────

func (b *Backend) CreateBuffer(kind gpu.BufferKind, data []byte, dynamic bool) (gpu.Handle, error) {
	b.record("CreateBuffer", kind, len(data), dynamic)
	h, err := b.alloc("buffer")
	if err != nil {
		return 0, err
	}
	b.buffers[h] = &Buffer{Kind: kind, Data: slices.Clone(data), Dynamic: dynamic}
	return h, nil
}

func (b *Backend) UpdateBuffer(kind gpu.BufferKind, buf gpu.Handle, offset int, data []byte) {
	b.record("UpdateBuffer", kind, buf, offset, len(data))
	if bb, ok := b.buffers[buf]; ok {
		copy(bb.Data[offset:], data)
	}
}

func (b *Backend) DestroyBuffer(buf gpu.Handle) {
	b.record("DestroyBuffer", buf)
	delete(b.buffers, buf)
}

// Buffer returns a live buffer object.
func (b *Backend) Buffer(h gpu.Handle) (*Buffer, bool) {
	bb, ok := b.buffers[h]
	return bb, ok
}

func (b *Backend) CreateVertexArray() (gpu.Handle, error) {
	b.record("CreateVertexArray")
	h, err := b.alloc("vertex array")
	if err != nil {
		return 0, err
	}
	b.vertexArrays[h] = &VertexArray{Attributes: make(map[uint32]AttributeBinding)}
	return h, nil
}

func (b *Backend) BindVertexArray(vao gpu.Handle) {
	b.record("BindVertexArray", vao)
	b.vertexArray = vao
}

func (b *Backend) BindBuffer(kind gpu.BufferKind, buf gpu.Handle) {
	b.record("BindBuffer", kind, buf)
	if kind == gpu.VertexBuffer {
		b.vertexBuffer = buf
		return
	}
	if vao, ok := b.vertexArrays[b.vertexArray]; ok {
		vao.IndexBuffer = buf
	}
}

func (b *Backend) VertexAttribute(location uint32, components, stride, offset int) {
	b.record("VertexAttribute", location, components, stride, offset)
	vao, ok := b.vertexArrays[b.vertexArray]
	if !ok {
		panic("nullgpu: VertexAttribute with no vertex array bound")
	}
	vao.Attributes[location] = AttributeBinding{
		Buffer:     b.vertexBuffer,
		Components: components,
		Stride:     stride,
		Offset:     offset,
	}
}

func (b *Backend) DestroyVertexArray(vao gpu.Handle) {
	b.record("DestroyVertexArray", vao)
	delete(b.vertexArrays, vao)
	if b.vertexArray == vao {
		b.vertexArray = 0
	}
}

// VertexArray returns a live vertex array object.
func (b *Backend) VertexArray(h gpu.Handle) (*VertexArray, bool) {
	v, ok := b.vertexArrays[h]
	return v, ok
}

// LiveVertexArrays counts vertex arrays not yet destroyed.
func (b *Backend) LiveVertexArrays() int { return len(b.vertexArrays) }

// ── Textures and frame buffers ───────────────────────────────────────────

func (b *Backend) CreateTexture(desc gpu.TextureDesc, images [][]byte) (gpu.Handle, error) {
	b.record("CreateTexture", desc.Kind, desc.Width, desc.Height, desc.Format)
	h, err := b.alloc("texture")
	if err != nil {
		return 0, err
	}
	imgs := make([][]byte, len(images))
	for i, img := range images {
		imgs[i] = slices.Clone(img)
	}
	b.textures[h] = &Texture{Desc: desc, Images: imgs}
	return h, nil
}

func (b *Backend) SetSamplerParams(kind gpu.TextureKind, tex gpu.Handle, p gpu.SamplerParams) {
	b.record("SetSamplerParams", kind, tex, p)
	if t, ok := b.textures[tex]; ok {
		t.Sampler = p
	}
}

func (b *Backend) ActiveTextureUnit(unit int) {
	b.record("ActiveTextureUnit", unit)
	b.unit = unit
}

func (b *Backend) BindTexture(kind gpu.TextureKind, tex gpu.Handle) {
	b.record("BindTexture", kind, tex)
	b.units[b.unit] = tex
}

func (b *Backend) DestroyTexture(tex gpu.Handle) {
	b.record("DestroyTexture", tex)
	delete(b.textures, tex)
}

// Texture returns a live texture object.
func (b *Backend) Texture(h gpu.Handle) (*Texture, bool) {
	t, ok := b.textures[h]
	return t, ok
}

func (b *Backend) CreateFrameBuffer(colors []gpu.Handle, width, height int) (gpu.Handle, error) {
	b.record("CreateFrameBuffer", len(colors), width, height)
	for _, c := range colors {
		if _, ok := b.textures[c]; !ok {
			return 0, &gpu.ResourceError{Resource: "frame buffer", Err: fmt.Errorf("unknown color attachment %d", c)}
		}
	}
	h, err := b.alloc("frame buffer")
	if err != nil {
		return 0, err
	}
	b.frameBuffers[h] = &FrameBuffer{Colors: slices.Clone(colors), Width: width, Height: height}
	return h, nil
}

func (b *Backend) BindFrameBuffer(fb gpu.Handle) {
	b.record("BindFrameBuffer", fb)
	b.frameBuffer = fb
}

func (b *Backend) DestroyFrameBuffer(fb gpu.Handle) {
	b.record("DestroyFrameBuffer", fb)
	delete(b.frameBuffers, fb)
}

// BoundFrameBuffer is the frame buffer currently bound, 0 for the default.
func (b *Backend) BoundFrameBuffer() gpu.Handle { return b.frameBuffer }

// ── Fixed-function state ─────────────────────────────────────────────────

func (b *Backend) Viewport(x, y, width, height int) {
	b.record("Viewport", x, y, width, height)
	b.State.Viewport = [4]int{x, y, width, height}
}

func (b *Backend) ClearColor(c core.Color) {
	b.record("ClearColor", c)
	b.State.ClearColor = c
}

func (b *Backend) Clear(color, depth bool) { b.record("Clear", color, depth) }

func (b *Backend) SetDepthTest(enabled bool) {
	b.record("SetDepthTest", enabled)
	b.State.DepthTest = enabled
}

func (b *Backend) SetDepthWrite(enabled bool) {
	b.record("SetDepthWrite", enabled)
	b.State.DepthWrite = enabled
}

func (b *Backend) SetDepthFunc(f gpu.DepthFunction) {
	b.record("SetDepthFunc", f)
	b.State.DepthFunc = f
}

func (b *Backend) SetBlend(enabled bool) {
	b.record("SetBlend", enabled)
	b.State.Blend = enabled
}

func (b *Backend) SetBlendFunc(src, dst gpu.BlendFactor) {
	b.record("SetBlendFunc", src, dst)
	b.State.BlendSrc, b.State.BlendDst = src, dst
}

func (b *Backend) SetFaceCull(c gpu.FaceCull) {
	b.record("SetFaceCull", c)
	b.State.FaceCull = c
}

func (b *Backend) SetPolygonMode(m gpu.PolygonMode) {
	b.record("SetPolygonMode", m)
	b.State.PolygonMode = m
}

// ── Draws ────────────────────────────────────────────────────────────────

func (b *Backend) snapshot(p gpu.PrimitiveType, first, count int) Draw {
	d := Draw{
		Primitive:   p,
		First:       first,
		Count:       count,
		Program:     b.program,
		VertexArray: b.vertexArray,
		FrameBuffer: b.frameBuffer,
		Textures:    maps.Clone(b.units),
		State:       b.State,
	}
	if prog, ok := b.programs[b.program]; ok {
		d.Uniforms = make(map[int32][]float32, len(prog.Values))
		for loc, v := range prog.Values {
			d.Uniforms[loc] = slices.Clone(v)
		}
		d.Ints = maps.Clone(prog.Ints)
	}
	return d
}

func (b *Backend) DrawArrays(p gpu.PrimitiveType, first, count int) {
	b.record("DrawArrays", p, first, count)
	b.Draws = append(b.Draws, b.snapshot(p, first, count))
}

func (b *Backend) DrawElements(p gpu.PrimitiveType, count int, t gpu.IndexType) {
	b.record("DrawElements", p, count, t)
	d := b.snapshot(p, 0, count)
	d.Indexed = true
	d.IndexType = t
	if vao, ok := b.vertexArrays[b.vertexArray]; ok {
		d.IndexBuffer = vao.IndexBuffer
	}
	b.Draws = append(b.Draws, d)
}
