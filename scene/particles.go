package scene

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"

	"solo-engine/core"
	"solo-engine/gpu"
	"solo-engine/math"
	"solo-engine/renderer"
)

// BlendMode controls how particle colors composite with the scene.
type BlendMode int

const (
	BlendAlpha    BlendMode = iota // smoke, mist, dust
	BlendAdditive                  // fire, sparks, glow
)

// Particle is a single live particle, in the emitter node's local space.
type Particle struct {
	Position math.Vec3
	Velocity math.Vec3
	Life     float32 // remaining seconds
	MaxLife  float32
	Size     float32
	Color    core.Color
}

// ParticleEmitter spawns and simulates CPU particles. A node built with
// NewNode streams them into a dynamic point mesh every update.
type ParticleEmitter struct {
	Position  math.Vec3
	Direction math.Vec3 // normalized
	Spread    float32   // cone half-angle in radians

	Rate int // particles per second

	MinLife, MaxLife   float32
	MinSpeed, MaxSpeed float32
	MinSize, MaxSize   float32

	StartColor core.Color
	EndColor   core.Color

	Gravity math.Vec3

	BlendMode BlendMode

	// Active stops spawning when false; live particles finish out.
	Active bool

	Particles []Particle

	pool       int
	spawnAccum float32
	rng        *rand.Rand
	vertices   []float32
}

// NewParticleEmitter returns a fire-like emitter holding at most
// maxParticles particles.
func NewParticleEmitter(maxParticles int) *ParticleEmitter {
	return &ParticleEmitter{
		Direction:  math.Vec3Up,
		Spread:     0.4,
		Rate:       80,
		MinLife:    0.6,
		MaxLife:    1.8,
		MinSpeed:   2.0,
		MaxSpeed:   5.0,
		MinSize:    0.06,
		MaxSize:    0.22,
		StartColor: core.Color{R: 1.0, G: 0.7, B: 0.15, A: 1.0},
		EndColor:   core.Color{R: 0.8, G: 0.05, B: 0.0, A: 0.0},
		Gravity:    math.Vec3{Y: 0.3},
		BlendMode:  BlendAdditive,
		Active:     true,
		Particles:  make([]Particle, 0, maxParticles),
		pool:       maxParticles,
		rng:        rand.New(rand.NewSource(42)),
	}
}

// NewSmokeEmitter returns a slow rising smoke emitter.
func NewSmokeEmitter(maxParticles int) *ParticleEmitter {
	e := NewParticleEmitter(maxParticles)
	e.Spread = 0.5
	e.Rate = 20
	e.MinLife, e.MaxLife = 2.0, 4.0
	e.MinSpeed, e.MaxSpeed = 0.5, 1.5
	e.MinSize, e.MaxSize = 0.15, 0.5
	e.StartColor = core.Color{R: 0.3, G: 0.3, B: 0.3, A: 0.4}
	e.EndColor = core.Color{R: 0.6, G: 0.6, B: 0.6, A: 0.0}
	e.Gravity = math.Vec3{Y: 0.1}
	e.BlendMode = BlendAlpha
	e.rng = rand.New(rand.NewSource(99))
	return e
}

// Capacity is the maximum number of live particles.
func (e *ParticleEmitter) Capacity() int { return e.pool }

// Count returns the number of live particles.
func (e *ParticleEmitter) Count() int { return len(e.Particles) }

// Update spawns, integrates and retires particles over dt seconds.
func (e *ParticleEmitter) Update(dt float32) {
	if e.Active {
		e.spawnAccum += float32(e.Rate) * dt
		for e.spawnAccum >= 1 && len(e.Particles) < e.pool {
			e.spawn()
			e.spawnAccum--
		}
		if len(e.Particles) == e.pool {
			e.spawnAccum = 0
		}
	}

	live := e.Particles[:0]
	for _, p := range e.Particles {
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		p.Velocity = p.Velocity.Add(e.Gravity.Mul(dt))
		p.Position = p.Position.Add(p.Velocity.Mul(dt))

		t := 1 - p.Life/p.MaxLife
		p.Color = lerpColor(e.StartColor, e.EndColor, t)
		p.Size = e.MinSize + (e.MaxSize-e.MinSize)*(1-t)
		live = append(live, p)
	}
	e.Particles = live
}

func (e *ParticleEmitter) spawn() {
	life := e.MinLife + e.rng.Float32()*(e.MaxLife-e.MinLife)
	speed := e.MinSpeed + e.rng.Float32()*(e.MaxSpeed-e.MinSpeed)
	dir := randomInCone(e.Direction, e.Spread, e.rng)
	e.Particles = append(e.Particles, Particle{
		Position: e.Position,
		Velocity: dir.Mul(speed),
		Life:     life,
		MaxLife:  life,
		Size:     e.MinSize,
		Color:    e.StartColor,
	})
}

// randomInCone returns a unit vector uniformly distributed over the
// spherical cap of half-angle spread around axis.
func randomInCone(axis math.Vec3, spread float32, rng *rand.Rand) math.Vec3 {
	phi := rng.Float32() * 2 * math32.Pi
	cosMin := math32.Cos(spread)
	cosTheta := cosMin + rng.Float32()*(1-cosMin)
	sinTheta := math32.Sqrt(1 - cosTheta*cosTheta)

	up := math.Vec3Up
	if math32.Abs(axis.Dot(up)) > 0.99 {
		up = math.Vec3Right
	}
	right := axis.Cross(up).Normalize()
	up = right.Cross(axis).Normalize()

	sinPhi, cosPhi := math32.Sincos(phi)
	return axis.Mul(cosTheta).
		Add(right.Mul(sinTheta * cosPhi)).
		Add(up.Mul(sinTheta * sinPhi)).
		Normalize()
}

func lerpColor(a, b core.Color, t float32) core.Color {
	return core.Color{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}

// ParticleLayout is the point vertex layout read by the particle prefab.
func ParticleLayout() renderer.VertexBufferLayout {
	var l renderer.VertexBufferLayout
	l.AddNamedAttribute(3, renderer.AttributePosition)
	l.AddNamedAttribute(4, renderer.AttributeColor)
	l.AddNamedAttribute(1, renderer.AttributeSize)
	return l
}

const particleFloats = 8

// Vertices packs every pool slot in ParticleLayout order. Slots without a
// live particle are transparent and zero-sized.
func (e *ParticleEmitter) Vertices() []float32 {
	if cap(e.vertices) < e.pool*particleFloats {
		e.vertices = make([]float32, e.pool*particleFloats)
	}
	out := e.vertices[:e.pool*particleFloats]
	clear(out)
	for i, p := range e.Particles {
		v := out[i*particleFloats:]
		v[0], v[1], v[2] = p.Position.X, p.Position.Y, p.Position.Z
		v[3], v[4], v[5], v[6] = p.Color.R, p.Color.G, p.Color.B, p.Color.A
		v[7] = p.Size
	}
	return out
}

// NewNode builds a node that simulates the emitter on Update and draws it
// as blended points. pointScale converts world size to pixels at unit
// distance; the canvas height is a good start.
func (e *ParticleEmitter) NewNode(r *renderer.Renderer, name string, pointScale float32) (*Node, error) {
	if e.pool <= 0 {
		return nil, fmt.Errorf("particle emitter %q has no capacity", name)
	}
	effect, err := r.NewPrefabEffect(renderer.PrefabParticles)
	if err != nil {
		return nil, err
	}
	mat := renderer.NewMaterial(effect)
	effect.Release()

	if err := mat.BindParameter(renderer.UniformWorldViewProjMatrix, renderer.WorldViewProjectionMatrix); err != nil {
		mat.Release()
		return nil, err
	}
	if err := mat.SetFloatParameter(renderer.UniformPointScale, pointScale); err != nil {
		mat.Release()
		return nil, err
	}
	mat.SetBlendEnabled(true)
	mat.SetDepthWrite(false)
	mat.SetFaceCull(gpu.FaceCullAll)
	if e.BlendMode == BlendAdditive {
		mat.SetBlendFactors(gpu.BlendSrcAlpha, gpu.BlendOne)
	}

	mesh := r.NewMesh(gpu.PrimitivePoints)
	if _, err := mesh.AddDynamicVertexBuffer(ParticleLayout(), e.Vertices(), e.pool); err != nil {
		mesh.Destroy()
		mat.Release()
		return nil, fmt.Errorf("particle emitter %q: %w", name, err)
	}

	log := r.Logger().With("emitter", name)
	n := NewNode(name)
	n.Renderer = NewMeshRenderer(mesh, mat)
	n.OnUpdate = func(_ *Node, dt float32) {
		e.Update(dt)
		if err := mesh.UpdateVertexBuffer(0, 0, e.Vertices(), e.pool); err != nil {
			log.Error("particle upload failed", "err", err)
		}
	}
	return n, nil
}
