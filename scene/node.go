package scene

import (
	"solo-engine/math"
	"solo-engine/renderer"
)

// Transform is a local translation, rotation and scale.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// Matrix scales, then rotates, then translates.
func (t Transform) Matrix() math.Mat4 {
	return math.Mat4TRS(t.Position, t.Rotation, t.Scale)
}

const DefaultTags uint32 = 1

// Node is an element of the scene graph. It implements renderer.Transform
// with its world matrix.
type Node struct {
	Name     string
	Parent   *Node
	Children []*Node
	Visible  bool

	// Renderer draws the node when set.
	Renderer *MeshRenderer
	// Bounds is the local bounding box used for frustum culling. A node
	// without bounds is never culled.
	Bounds    AABB
	HasBounds bool
	// Tags are matched against Camera.TagMask.
	Tags uint32
	// OnUpdate runs once per Scene.Update.
	OnUpdate func(n *Node, deltaTime float32)
	// Source names the geometry a scene file attached, saved back by
	// SaveScene.
	Source string

	id        uint32
	transform Transform

	worldMatrixDirty bool
	worldMatrix      math.Mat4
}

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Visible:          true,
		Tags:             DefaultTags,
		transform:        NewTransform(),
		worldMatrixDirty: true,
	}
}

// ID is assigned when the node joins a Scene. Zero means detached.
func (n *Node) ID() uint32 { return n.id }

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

func (n *Node) Transform() Transform { return n.transform }

func (n *Node) SetTransform(t Transform) {
	n.transform = t
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetPosition(pos math.Vec3) {
	n.transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot math.Quaternion) {
	n.transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale math.Vec3) {
	n.transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta math.Vec3) {
	n.transform.Position = n.transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

// Rotate applies a rotation about a local axis.
func (n *Node) Rotate(axis math.Vec3, angle float32) {
	rotation := math.QuaternionFromAxisAngle(axis, angle)
	n.transform.Rotation = n.transform.Rotation.Mul(rotation).Normalize()
	n.MarkWorldMatrixDirty()
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

// WorldMatrix is the local matrix followed by the parent's world matrix.
func (n *Node) WorldMatrix() math.Mat4 {
	if n.worldMatrixDirty {
		local := n.transform.Matrix()
		if n.Parent != nil {
			n.worldMatrix = local.Mul(n.Parent.WorldMatrix())
		} else {
			n.worldMatrix = local
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

func (n *Node) WorldPosition() math.Vec3 {
	return n.WorldMatrix().TransformPoint(math.Vec3Zero)
}

func (n *Node) WorldViewMatrix(c renderer.Camera) math.Mat4 {
	return n.WorldMatrix().Mul(c.ViewMatrix())
}

func (n *Node) WorldViewProjectionMatrix(c renderer.Camera) math.Mat4 {
	return n.WorldMatrix().Mul(c.ViewProjectionMatrix())
}

func (n *Node) InverseTransposedWorldMatrix() math.Mat4 {
	return n.WorldMatrix().InverseTranspose()
}

func (n *Node) InverseTransposedWorldViewMatrix(c renderer.Camera) math.Mat4 {
	return n.WorldViewMatrix(c).InverseTranspose()
}

// WorldBounds transforms Bounds into world space.
func (n *Node) WorldBounds() AABB {
	return n.Bounds.Transform(n.WorldMatrix())
}

func (n *Node) Update(deltaTime float32) {
	if n.OnUpdate != nil {
		n.OnUpdate(n, deltaTime)
	}
	for _, child := range n.Children {
		child.Update(deltaTime)
	}
}

// Traverse visits n and its descendants depth first, parents before children.
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}

var _ renderer.Transform = (*Node)(nil)
