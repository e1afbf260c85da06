package renderer

import (
	"fmt"
	"strings"

	"solo-engine/gpu"
)

// EffectID identifies an Effect for as long as it lives. Index slots are
// reused after an Effect is destroyed, with a bumped Generation, so a stale
// ID never matches a newer Effect.
type EffectID struct {
	Index      uint32
	Generation uint32
}

func (id EffectID) String() string { return fmt.Sprintf("effect#%d.%d", id.Index, id.Generation) }

type effectSlot struct {
	generation uint32
	live       bool
}

type effectArena struct {
	slots []effectSlot
	free  []uint32
}

func (a *effectArena) alloc() EffectID {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.slots[idx].live = true
		return EffectID{Index: idx, Generation: a.slots[idx].generation}
	}
	a.slots = append(a.slots, effectSlot{live: true})
	return EffectID{Index: uint32(len(a.slots) - 1)}
}

func (a *effectArena) release(id EffectID) {
	if !a.valid(id) {
		return
	}
	s := &a.slots[id.Index]
	s.live = false
	s.generation++
	a.free = append(a.free, id.Index)
}

func (a *effectArena) valid(id EffectID) bool {
	return int(id.Index) < len(a.slots) &&
		a.slots[id.Index].live &&
		a.slots[id.Index].generation == id.Generation
}

// UniformInfo is the introspected binding point of one uniform.
type UniformInfo struct {
	Location int32
	// SamplerIndex is the texture unit of a sampler uniform, -1 otherwise.
	SamplerIndex int
	IsArray      bool
	// Size is the declared array length, 1 for a plain uniform.
	Size int
	Type gpu.UniformType
}

// Effect is a linked shader program with its uniform and attribute tables.
// It is shared by the Materials that use it and destroyed with the last
// reference.
type Effect struct {
	r          *Renderer
	id         EffectID
	program    gpu.Handle
	uniforms   map[string]UniformInfo
	attributes map[string]int32
	refs       int
}

// NewEffect compiles and links a vertex/fragment pair. The caller owns the
// first reference.
func (r *Renderer) NewEffect(vertexSrc, fragmentSrc string) (*Effect, error) {
	program, err := r.backend.CreateProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("create effect: %w", err)
	}
	e := &Effect{
		r:       r,
		id:      r.effects.alloc(),
		program: program,
		refs:    1,
	}
	e.introspect()
	r.log.Debug("effect created", "id", e.id, "uniforms", len(e.uniforms), "attributes", len(e.attributes))
	return e, nil
}

func (e *Effect) introspect() {
	uniforms := e.r.backend.ActiveUniforms(e.program)
	e.uniforms = make(map[string]UniformInfo, len(uniforms))
	samplers := 0
	for _, u := range uniforms {
		name, isArray := u.Name, u.Size > 1
		if i := strings.IndexByte(name, '['); i >= 0 {
			name, isArray = name[:i], true
		}
		info := UniformInfo{Location: u.Location, SamplerIndex: -1, IsArray: isArray, Size: max(int(u.Size), 1), Type: u.Type}
		if u.Type.IsSampler() {
			info.SamplerIndex = samplers
			samplers++
		}
		e.uniforms[name] = info
	}

	attributes := e.r.backend.ActiveAttributes(e.program)
	e.attributes = make(map[string]int32, len(attributes))
	for _, a := range attributes {
		e.attributes[a.Name] = a.Location
	}
}

func (e *Effect) ID() EffectID { return e.id }

// Uniform looks up a uniform by name, without any array suffix.
func (e *Effect) Uniform(name string) (UniformInfo, error) {
	info, ok := e.uniforms[name]
	if !ok {
		return UniformInfo{}, fmt.Errorf("%w: %q", gpu.ErrUniformNotFound, name)
	}
	return info, nil
}

func (e *Effect) Attribute(name string) (int32, error) {
	loc, ok := e.attributes[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", gpu.ErrAttributeNotFound, name)
	}
	return loc, nil
}

func (e *Effect) HasAttribute(name string) bool {
	_, ok := e.attributes[name]
	return ok
}

// Use makes the program current.
func (e *Effect) Use() { e.r.backend.UseProgram(e.program) }

// Alive reports whether the program has not been destroyed yet.
func (e *Effect) Alive() bool { return e.refs > 0 }

func (e *Effect) Retain() {
	if e.refs <= 0 {
		panic(fmt.Sprintf("renderer: retain of destroyed %s", e.id))
	}
	e.refs++
}

// Release drops one reference. The last one deletes the program, destroys
// the vertex arrays meshes built for it and frees the ID.
func (e *Effect) Release() {
	if e.refs <= 0 {
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	e.r.backend.DestroyProgram(e.program)
	for m := range e.r.meshes {
		m.dropVertexArray(e.id)
	}
	e.r.effects.release(e.id)
	e.r.log.Debug("effect destroyed", "id", e.id)
}
