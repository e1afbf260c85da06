// Package opengl implements gpu.Backend on an OpenGL 4.1 core context.
package opengl

import (
	"fmt"
	"log/slog"
	"strings"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"solo-engine/core"
	"solo-engine/gpu"
)

// Backend issues GL calls on the context current on the calling thread.
type Backend struct {
	log          *slog.Logger
	major, minor int

	textureFormats map[gpu.Handle]gpu.TextureFormat
	depthBuffers   map[gpu.Handle]uint32
}

var _ gpu.Backend = (*Backend)(nil)

// New loads GL entry points. The window context must already be current.
func New(log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = core.NopLogger()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	b := &Backend{
		log:            log,
		textureFormats: make(map[gpu.Handle]gpu.TextureFormat),
		depthBuffers:   make(map[gpu.Handle]uint32),
	}
	var major, minor int32
	gl.GetIntegerv(gl.MAJOR_VERSION, &major)
	gl.GetIntegerv(gl.MINOR_VERSION, &minor)
	b.major, b.minor = int(major), int(minor)

	log.Info("OpenGL context",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	gl.Enable(gl.PROGRAM_POINT_SIZE)
	return b, nil
}

func (b *Backend) Name() string                { return "opengl" }
func (b *Backend) Version() (major, minor int) { return b.major, b.minor }

// ── Programs ──────────────────────────────────────────────────────────────

func (b *Backend) CreateProgram(vertexSrc, fragmentSrc string) (gpu.Handle, error) {
	vert, err := compileStage(vertexSrc, gpu.StageVertex)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vert)
	frag, err := compileStage(fragmentSrc, gpu.StageFragment)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(frag)

	prog := gl.CreateProgram()
	if prog == 0 {
		return 0, &gpu.ResourceError{Resource: "program"}
	}
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, &gpu.ShaderLinkError{Log: strings.TrimRight(log, "\x00")}
	}
	gl.DetachShader(prog, vert)
	gl.DetachShader(prog, frag)

	b.log.Debug("program linked", "program", prog)
	return gpu.Handle(prog), nil
}

func compileStage(src string, stage gpu.ShaderStage) (uint32, error) {
	shader := gl.CreateShader(toShaderType(stage))
	if shader == 0 {
		return 0, &gpu.ResourceError{Resource: stage.String() + " shader"}
	}
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, &gpu.ShaderCompilationError{Stage: stage, Log: strings.TrimRight(log, "\x00")}
	}
	return shader, nil
}

func (b *Backend) ActiveUniforms(program gpu.Handle) []gpu.UniformDesc {
	p := uint32(program)
	var count, maxLen int32
	gl.GetProgramiv(p, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(p, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	out := make([]gpu.UniformDesc, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := range uint32(count) {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(p, i, int32(len(buf)), &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		out = append(out, gpu.UniformDesc{
			Name:     name,
			Location: gl.GetUniformLocation(p, gl.Str(name+"\x00")),
			Type:     fromUniformType(xtype),
			Size:     size,
		})
	}
	return out
}

func (b *Backend) ActiveAttributes(program gpu.Handle) []gpu.AttributeDesc {
	p := uint32(program)
	var count, maxLen int32
	gl.GetProgramiv(p, gl.ACTIVE_ATTRIBUTES, &count)
	gl.GetProgramiv(p, gl.ACTIVE_ATTRIBUTE_MAX_LENGTH, &maxLen)

	out := make([]gpu.AttributeDesc, 0, count)
	buf := make([]uint8, maxLen+1)
	for i := range uint32(count) {
		var length, size int32
		var xtype uint32
		gl.GetActiveAttrib(p, i, int32(len(buf)), &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		loc := gl.GetAttribLocation(p, gl.Str(name+"\x00"))
		if loc < 0 {
			// gl_VertexID and other built-ins.
			continue
		}
		out = append(out, gpu.AttributeDesc{Name: name, Location: loc})
	}
	return out
}

func (b *Backend) UseProgram(program gpu.Handle) { gl.UseProgram(uint32(program)) }

func (b *Backend) DestroyProgram(program gpu.Handle) {
	gl.DeleteProgram(uint32(program))
	b.log.Debug("program deleted", "program", program)
}

// ── Uniforms ──────────────────────────────────────────────────────────────

func (b *Backend) SetUniform(location int32, t gpu.UniformType, count int, values []float32) {
	if len(values) == 0 || count == 0 {
		return
	}
	n := int32(count)
	switch t {
	case gpu.UniformFloat:
		gl.Uniform1fv(location, n, &values[0])
	case gpu.UniformVec2:
		gl.Uniform2fv(location, n, &values[0])
	case gpu.UniformVec3:
		gl.Uniform3fv(location, n, &values[0])
	case gpu.UniformVec4:
		gl.Uniform4fv(location, n, &values[0])
	case gpu.UniformMat3:
		gl.UniformMatrix3fv(location, n, false, &values[0])
	case gpu.UniformMat4:
		// Row-major rows are uploaded as GL columns, which is the transpose
		// a column-vector shader expects.
		gl.UniformMatrix4fv(location, n, false, &values[0])
	default:
		panic(fmt.Sprintf("opengl: cannot upload floats to %s uniform", t))
	}
}

func (b *Backend) SetUniformInt(location int32, v int32) { gl.Uniform1i(location, v) }

// ── Buffers and vertex arrays ────────────────────────────────────────────

// Uploads go through COPY_WRITE_BUFFER so the element binding of whatever
// vertex array is bound stays untouched.

func (b *Backend) CreateBuffer(kind gpu.BufferKind, data []byte, dynamic bool) (gpu.Handle, error) {
	var buf uint32
	gl.GenBuffers(1, &buf)
	if buf == 0 {
		return 0, &gpu.ResourceError{Resource: kind.String() + " buffer"}
	}
	usage := uint32(gl.STATIC_DRAW)
	if dynamic {
		usage = gl.DYNAMIC_DRAW
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, buf)
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(gl.COPY_WRITE_BUFFER, len(data), ptr, usage)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	return gpu.Handle(buf), nil
}

func (b *Backend) UpdateBuffer(_ gpu.BufferKind, buf gpu.Handle, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, uint32(buf))
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

func (b *Backend) DestroyBuffer(buf gpu.Handle) {
	id := uint32(buf)
	gl.DeleteBuffers(1, &id)
}

func (b *Backend) CreateVertexArray() (gpu.Handle, error) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	if vao == 0 {
		return 0, &gpu.ResourceError{Resource: "vertex array"}
	}
	return gpu.Handle(vao), nil
}

func (b *Backend) BindVertexArray(vao gpu.Handle) { gl.BindVertexArray(uint32(vao)) }

func (b *Backend) BindBuffer(kind gpu.BufferKind, buf gpu.Handle) {
	gl.BindBuffer(toBufferTarget(kind), uint32(buf))
}

func (b *Backend) VertexAttribute(location uint32, components, stride, offset int) {
	gl.EnableVertexAttribArray(location)
	gl.VertexAttribPointer(location, int32(components), gl.FLOAT, false, int32(stride), gl.PtrOffset(offset))
}

func (b *Backend) DestroyVertexArray(vao gpu.Handle) {
	id := uint32(vao)
	gl.DeleteVertexArrays(1, &id)
}

// ── Textures ─────────────────────────────────────────────────────────────

func (b *Backend) CreateTexture(desc gpu.TextureDesc, images [][]byte) (gpu.Handle, error) {
	var tex uint32
	gl.GenTextures(1, &tex)
	if tex == 0 {
		return 0, &gpu.ResourceError{Resource: "texture"}
	}
	target := toTextureTarget(desc.Kind)
	internal := toInternalTextureFormat(desc.Format)
	format, xtype := toDataFormat(desc.Format)

	gl.BindTexture(target, tex)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	faces := 1
	if desc.Kind == gpu.TextureCube {
		faces = 6
	}
	for i := range faces {
		face := target
		if desc.Kind == gpu.TextureCube {
			face = gl.TEXTURE_CUBE_MAP_POSITIVE_X + uint32(i)
		}
		var ptr unsafe.Pointer
		if i < len(images) && len(images[i]) > 0 {
			ptr = gl.Ptr(images[i])
		}
		gl.TexImage2D(face, 0, internal, int32(desc.Width), int32(desc.Height), 0, format, xtype, ptr)
	}
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(target, 0)

	b.textureFormats[gpu.Handle(tex)] = desc.Format
	return gpu.Handle(tex), nil
}

func (b *Backend) SetSamplerParams(kind gpu.TextureKind, tex gpu.Handle, p gpu.SamplerParams) {
	target := toTextureTarget(kind)
	wrap := toTextureWrap(p.Wrap)
	gl.BindTexture(target, uint32(tex))
	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, wrap)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, wrap)
	if kind == gpu.TextureCube {
		gl.TexParameteri(target, gl.TEXTURE_WRAP_R, wrap)
	}
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, toTextureFilter(p.MinFilter, p.MipFilter))
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, toMagFilter(p.MagFilter))
	if p.MipFilter != gpu.MipNone {
		gl.GenerateMipmap(target)
	}
	gl.BindTexture(target, 0)
}

func (b *Backend) ActiveTextureUnit(unit int) { gl.ActiveTexture(gl.TEXTURE0 + uint32(unit)) }

func (b *Backend) BindTexture(kind gpu.TextureKind, tex gpu.Handle) {
	gl.BindTexture(toTextureTarget(kind), uint32(tex))
}

func (b *Backend) DestroyTexture(tex gpu.Handle) {
	id := uint32(tex)
	gl.DeleteTextures(1, &id)
	delete(b.textureFormats, tex)
}

// ── Frame buffers ────────────────────────────────────────────────────────

// CreateFrameBuffer attaches each color texture in order. A depth-format
// texture becomes the depth attachment, otherwise a depth renderbuffer is
// created and owned by the frame buffer.
func (b *Backend) CreateFrameBuffer(colors []gpu.Handle, width, height int) (gpu.Handle, error) {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	if fbo == 0 {
		return 0, &gpu.ResourceError{Resource: "frame buffer"}
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)

	var drawBuffers []uint32
	hasDepth := false
	for _, c := range colors {
		if b.textureFormats[c] == gpu.TextureFormatDepth {
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, uint32(c), 0)
			hasDepth = true
			continue
		}
		attachment := gl.COLOR_ATTACHMENT0 + uint32(len(drawBuffers))
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, uint32(c), 0)
		drawBuffers = append(drawBuffers, attachment)
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	} else {
		gl.DrawBuffer(gl.NONE)
		gl.ReadBuffer(gl.NONE)
	}

	var rbo uint32
	if !hasDepth {
		gl.GenRenderbuffers(1, &rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, rbo)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH_COMPONENT24, int32(width), int32(height))
		gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.RENDERBUFFER, rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	if status != gl.FRAMEBUFFER_COMPLETE {
		if rbo != 0 {
			gl.DeleteRenderbuffers(1, &rbo)
		}
		gl.DeleteFramebuffers(1, &fbo)
		return 0, &gpu.ResourceError{
			Resource: "frame buffer",
			Err:      fmt.Errorf("incomplete: status=0x%X", status),
		}
	}
	if rbo != 0 {
		b.depthBuffers[gpu.Handle(fbo)] = rbo
	}
	return gpu.Handle(fbo), nil
}

func (b *Backend) BindFrameBuffer(fb gpu.Handle) { gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb)) }

func (b *Backend) DestroyFrameBuffer(fb gpu.Handle) {
	if rbo, ok := b.depthBuffers[fb]; ok {
		gl.DeleteRenderbuffers(1, &rbo)
		delete(b.depthBuffers, fb)
	}
	id := uint32(fb)
	gl.DeleteFramebuffers(1, &id)
}

// ── Fixed-function state ─────────────────────────────────────────────────

func (b *Backend) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (b *Backend) ClearColor(c core.Color) { gl.ClearColor(c.R, c.G, c.B, c.A) }

func (b *Backend) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func enable(capability uint32, on bool) {
	if on {
		gl.Enable(capability)
	} else {
		gl.Disable(capability)
	}
}

func (b *Backend) SetDepthTest(enabled bool)        { enable(gl.DEPTH_TEST, enabled) }
func (b *Backend) SetDepthWrite(enabled bool)       { gl.DepthMask(enabled) }
func (b *Backend) SetDepthFunc(f gpu.DepthFunction) { gl.DepthFunc(toDepthFunction(f)) }
func (b *Backend) SetBlend(enabled bool)            { enable(gl.BLEND, enabled) }

func (b *Backend) SetBlendFunc(src, dst gpu.BlendFactor) {
	gl.BlendFunc(toBlendFactor(src), toBlendFactor(dst))
}

func (b *Backend) SetFaceCull(c gpu.FaceCull) {
	front, cull := toFaceCull(c)
	enable(gl.CULL_FACE, cull)
	if cull {
		gl.CullFace(gl.BACK)
		gl.FrontFace(front)
	}
}

func (b *Backend) SetPolygonMode(m gpu.PolygonMode) {
	gl.PolygonMode(gl.FRONT_AND_BACK, toPolygonMode(m))
}

// ── Draws ────────────────────────────────────────────────────────────────

func (b *Backend) DrawArrays(p gpu.PrimitiveType, first, count int) {
	gl.DrawArrays(toPrimitiveType(p), int32(first), int32(count))
}

func (b *Backend) DrawElements(p gpu.PrimitiveType, count int, t gpu.IndexType) {
	gl.DrawElements(toPrimitiveType(p), int32(count), toIndexType(t), nil)
}
