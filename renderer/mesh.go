package renderer

import (
	"fmt"
	"slices"

	"solo-engine/gpu"
)

// VertexAttribute is one float attribute of an interleaved vertex layout.
// Named attributes are located through the drawing Effect, unnamed ones use
// Location directly.
type VertexAttribute struct {
	Components int
	Location   uint32
	Name       string
	Offset     int
}

// VertexBufferLayout describes the interleaved attributes of one vertex.
type VertexBufferLayout struct {
	attributes []VertexAttribute
	size       int
}

func (l *VertexBufferLayout) AddAttribute(components int, location uint32) {
	l.add(VertexAttribute{Components: components, Location: location})
}

func (l *VertexBufferLayout) AddNamedAttribute(components int, name string) {
	l.add(VertexAttribute{Components: components, Name: name})
}

func (l *VertexBufferLayout) add(a VertexAttribute) {
	a.Offset = l.size
	l.attributes = append(l.attributes, a)
	l.size += a.Components * 4
}

func (l VertexBufferLayout) Attributes() []VertexAttribute { return slices.Clone(l.attributes) }

// Size is the vertex stride in bytes.
func (l VertexBufferLayout) Size() int { return l.size }

type vertexBuffer struct {
	handle      gpu.Handle
	layout      VertexBufferLayout
	vertexCount int
	dynamic     bool
}

type indexBuffer struct {
	handle       gpu.Handle
	elementCount int
	indexType    gpu.IndexType
}

type vertexArray struct {
	handle gpu.Handle
	age    int
	stale  bool
}

// Mesh is GPU geometry: vertex buffers drawn together and optional index
// buffers, one per part. It caches one vertex array per Effect because
// attribute locations differ between programs.
type Mesh struct {
	r              *Renderer
	primitive      gpu.PrimitiveType
	vertexBuffers  []vertexBuffer
	parts          []indexBuffer
	minVertexCount int
	cache          map[EffectID]*vertexArray
}

func (r *Renderer) NewMesh(primitive gpu.PrimitiveType) *Mesh {
	m := &Mesh{
		r:         r,
		primitive: primitive,
		cache:     make(map[EffectID]*vertexArray),
	}
	r.meshes[m] = struct{}{}
	return m
}

func (m *Mesh) PrimitiveType() gpu.PrimitiveType     { return m.primitive }
func (m *Mesh) SetPrimitiveType(p gpu.PrimitiveType) { m.primitive = p }
func (m *Mesh) VertexBufferCount() int               { return len(m.vertexBuffers) }
func (m *Mesh) PartCount() int                       { return len(m.parts) }

// MinVertexCount is the number of vertices a non-indexed draw covers, the
// smallest vertex count among the buffers.
func (m *Mesh) MinVertexCount() int { return m.minVertexCount }

// PartElementCount returns the number of indices of part.
func (m *Mesh) PartElementCount(part int) int {
	if part < 0 || part >= len(m.parts) {
		return 0
	}
	return m.parts[part].elementCount
}

// ── Vertex buffers ────────────────────────────────────────────────────────────

// AddVertexBuffer uploads vertexCount vertices of layout and returns the
// buffer index.
func (m *Mesh) AddVertexBuffer(layout VertexBufferLayout, data []float32, vertexCount int) (int, error) {
	return m.addVertexBuffer(layout, data, vertexCount, false)
}

// AddDynamicVertexBuffer is AddVertexBuffer for data later changed with
// UpdateVertexBuffer. Nil data allocates zeroed storage.
func (m *Mesh) AddDynamicVertexBuffer(layout VertexBufferLayout, data []float32, vertexCount int) (int, error) {
	return m.addVertexBuffer(layout, data, vertexCount, true)
}

func (m *Mesh) addVertexBuffer(layout VertexBufferLayout, data []float32, vertexCount int, dynamic bool) (int, error) {
	if layout.size == 0 {
		return 0, fmt.Errorf("add vertex buffer: empty layout")
	}
	floats := vertexCount * layout.size / 4
	if vertexCount < 0 || (data != nil && len(data) < floats) || (data == nil && !dynamic) {
		return 0, fmt.Errorf("add vertex buffer: %d floats for %d vertices of %d bytes: %w",
			len(data), vertexCount, layout.size, ErrBufferRange)
	}
	var bytes []byte
	if data != nil {
		bytes = gpu.Bytes(data[:floats])
	} else {
		bytes = make([]byte, floats*4)
	}
	h, err := m.r.backend.CreateBuffer(gpu.VertexBuffer, bytes, dynamic)
	if err != nil {
		return 0, fmt.Errorf("add vertex buffer: %w", err)
	}
	m.vertexBuffers = append(m.vertexBuffers, vertexBuffer{
		handle:      h,
		layout:      layout,
		vertexCount: vertexCount,
		dynamic:     dynamic,
	})
	m.vertexBuffersChanged()
	return len(m.vertexBuffers) - 1, nil
}

// UpdateVertexBuffer overwrites vertexCount vertices starting at
// offsetVertices in a dynamic buffer.
func (m *Mesh) UpdateVertexBuffer(index, offsetVertices int, data []float32, vertexCount int) error {
	if index < 0 || index >= len(m.vertexBuffers) {
		return fmt.Errorf("update vertex buffer %d of %d: %w", index, len(m.vertexBuffers), ErrBufferRange)
	}
	vb := m.vertexBuffers[index]
	if !vb.dynamic {
		return fmt.Errorf("update vertex buffer %d: %w", index, ErrBufferNotDynamic)
	}
	floats := vertexCount * vb.layout.size / 4
	if offsetVertices < 0 || vertexCount < 0 || offsetVertices+vertexCount > vb.vertexCount || len(data) < floats {
		return fmt.Errorf("update vertex buffer %d: vertices [%d, %d) of %d: %w",
			index, offsetVertices, offsetVertices+vertexCount, vb.vertexCount, ErrBufferRange)
	}
	m.r.backend.UpdateBuffer(gpu.VertexBuffer, vb.handle, offsetVertices*vb.layout.size, gpu.Bytes(data[:floats]))
	return nil
}

func (m *Mesh) RemoveVertexBuffer(index int) error {
	if index < 0 || index >= len(m.vertexBuffers) {
		return fmt.Errorf("remove vertex buffer %d of %d: %w", index, len(m.vertexBuffers), ErrBufferRange)
	}
	m.r.backend.DestroyBuffer(m.vertexBuffers[index].handle)
	m.vertexBuffers = slices.Delete(m.vertexBuffers, index, index+1)
	m.vertexBuffersChanged()
	return nil
}

func (m *Mesh) vertexBuffersChanged() {
	m.minVertexCount = 0
	for i, vb := range m.vertexBuffers {
		if i == 0 || vb.vertexCount < m.minVertexCount {
			m.minVertexCount = vb.vertexCount
		}
	}
	for _, va := range m.cache {
		va.stale = true
	}
}

// ── Index buffers ─────────────────────────────────────────────────────────────

// AddIndexBuffer adds a part drawn with 32-bit indices and returns its index.
func (m *Mesh) AddIndexBuffer(indices []uint32) (int, error) {
	return m.addIndexBuffer(gpu.Bytes(indices), len(indices), gpu.IndexUint32)
}

// AddIndexBuffer16 adds a part drawn with 16-bit indices.
func (m *Mesh) AddIndexBuffer16(indices []uint16) (int, error) {
	return m.addIndexBuffer(gpu.Bytes(indices), len(indices), gpu.IndexUint16)
}

func (m *Mesh) addIndexBuffer(data []byte, count int, t gpu.IndexType) (int, error) {
	if count == 0 {
		return 0, fmt.Errorf("add index buffer: no indices")
	}
	h, err := m.r.backend.CreateBuffer(gpu.IndexBuffer, data, false)
	if err != nil {
		return 0, fmt.Errorf("add index buffer: %w", err)
	}
	m.parts = append(m.parts, indexBuffer{handle: h, elementCount: count, indexType: t})
	return len(m.parts) - 1, nil
}

func (m *Mesh) RemoveIndexBuffer(part int) error {
	if part < 0 || part >= len(m.parts) {
		return fmt.Errorf("remove index buffer %d of %d: %w", part, len(m.parts), ErrBufferRange)
	}
	m.r.backend.DestroyBuffer(m.parts[part].handle)
	m.parts = slices.Delete(m.parts, part, part+1)
	return nil
}

// ── Vertex array cache ────────────────────────────────────────────────────────

// VertexArray returns the vertex array binding this mesh's buffers to the
// attributes of effect, building it when missing or stale.
func (m *Mesh) VertexArray(effect *Effect) (gpu.Handle, error) {
	va, ok := m.cache[effect.ID()]
	if ok && !va.stale {
		va.age = 0
		return va.handle, nil
	}
	if ok {
		m.r.backend.DestroyVertexArray(va.handle)
		delete(m.cache, effect.ID())
	}
	h, err := m.buildVertexArray(effect)
	if err != nil {
		return 0, err
	}
	m.cache[effect.ID()] = &vertexArray{handle: h}
	return h, nil
}

func (m *Mesh) buildVertexArray(effect *Effect) (gpu.Handle, error) {
	backend := m.r.backend
	h, err := backend.CreateVertexArray()
	if err != nil {
		return 0, fmt.Errorf("build vertex array for %s: %w", effect.ID(), err)
	}
	backend.BindVertexArray(h)
	for _, vb := range m.vertexBuffers {
		backend.BindBuffer(gpu.VertexBuffer, vb.handle)
		for _, a := range vb.layout.attributes {
			loc := a.Location
			if a.Name != "" {
				l, ok := effect.attributes[a.Name]
				if !ok {
					continue
				}
				loc = uint32(l)
			}
			backend.VertexAttribute(loc, a.Components, vb.layout.size, a.Offset)
		}
	}
	backend.BindVertexArray(0)
	return h, nil
}

// ageVertexArrays ages every cached entry except current and destroys the
// ones unused for the eviction age.
func (m *Mesh) ageVertexArrays(current EffectID) {
	for id, va := range m.cache {
		if id == current {
			continue
		}
		va.age++
		if va.age >= m.r.evictionAge {
			m.r.backend.DestroyVertexArray(va.handle)
			delete(m.cache, id)
		}
	}
}

// dropVertexArray destroys the entry built for a released effect.
func (m *Mesh) dropVertexArray(id EffectID) {
	if va, ok := m.cache[id]; ok {
		m.r.backend.DestroyVertexArray(va.handle)
		delete(m.cache, id)
	}
}

// CachedVertexArrays is the number of live cache entries.
func (m *Mesh) CachedVertexArrays() int { return len(m.cache) }

// ── Drawing ───────────────────────────────────────────────────────────────────

// Draw draws every part, or the first MinVertexCount vertices when the mesh
// has no index buffers.
func (m *Mesh) Draw(effect *Effect) error {
	if len(m.parts) > 0 {
		for i := range m.parts {
			if err := m.DrawPart(effect, i); err != nil {
				return err
			}
		}
		return nil
	}
	if m.minVertexCount == 0 {
		return nil
	}
	vao, err := m.VertexArray(effect)
	if err != nil {
		return err
	}
	m.ageVertexArrays(effect.ID())

	backend := m.r.backend
	backend.BindVertexArray(vao)
	backend.DrawArrays(m.primitive, 0, m.minVertexCount)
	backend.BindVertexArray(0)
	m.r.stats.DrawCalls++
	m.r.stats.Vertices += m.minVertexCount
	return nil
}

func (m *Mesh) DrawPart(effect *Effect, part int) error {
	if part < 0 || part >= len(m.parts) {
		return fmt.Errorf("draw part %d of %d: %w", part, len(m.parts), ErrBufferRange)
	}
	vao, err := m.VertexArray(effect)
	if err != nil {
		return err
	}
	m.ageVertexArrays(effect.ID())

	p := m.parts[part]
	backend := m.r.backend
	backend.BindVertexArray(vao)
	backend.BindBuffer(gpu.IndexBuffer, p.handle)
	backend.DrawElements(m.primitive, p.elementCount, p.indexType)
	backend.BindVertexArray(0)
	m.r.stats.DrawCalls++
	m.r.stats.Vertices += p.elementCount
	return nil
}

// Destroy releases every buffer and cached vertex array.
func (m *Mesh) Destroy() {
	backend := m.r.backend
	delete(m.r.meshes, m)
	for _, va := range m.cache {
		backend.DestroyVertexArray(va.handle)
	}
	clear(m.cache)
	for _, vb := range m.vertexBuffers {
		backend.DestroyBuffer(vb.handle)
	}
	for _, p := range m.parts {
		backend.DestroyBuffer(p.handle)
	}
	m.vertexBuffers = nil
	m.parts = nil
	m.minVertexCount = 0
}
