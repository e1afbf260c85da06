package scene

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solo-engine/math"
)

func TestNodeWorldMatrixAppliesParentAfterChild(t *testing.T) {
	parent := NewNode("parent")
	parent.SetPosition(math.NewVec3(10, 0, 0))
	parent.SetRotation(math.QuaternionFromAxisAngle(math.Vec3Up, math32.Pi/2))

	child := NewNode("child")
	child.SetPosition(math.NewVec3(1, 0, 0))
	parent.AddChild(child)

	assertVec3(t, math.NewVec3(10, 0, -1), child.WorldPosition())
}

func TestNodeDirtyPropagation(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)
	assertVec3(t, math.Vec3Zero, child.WorldPosition())

	parent.Translate(math.NewVec3(0, 3, 0))
	assertVec3(t, math.NewVec3(0, 3, 0), child.WorldPosition())

	parent.RemoveChild(child)
	assertVec3(t, math.Vec3Zero, child.WorldPosition())
	assert.Nil(t, child.Parent)
}

func TestNodeReparent(t *testing.T) {
	a, b, child := NewNode("a"), NewNode("b"), NewNode("child")
	a.AddChild(child)
	b.AddChild(child)

	assert.Empty(t, a.Children)
	assert.Equal(t, []*Node{child}, b.Children)
	assert.Same(t, b, child.Parent)
}

func TestNodeTransformMatrices(t *testing.T) {
	n := NewNode("n")
	n.SetPosition(math.NewVec3(1, 2, 3))
	n.SetScale(math.NewVec3(2, 2, 2))
	c := newTestCamera()

	assertMat4(t, n.WorldMatrix().Mul(c.ViewMatrix()), n.WorldViewMatrix(c))
	assertMat4(t, n.WorldMatrix().Mul(c.ViewProjectionMatrix()), n.WorldViewProjectionMatrix(c))
	assertMat4(t, n.WorldMatrix().Inverse().Transpose(), n.InverseTransposedWorldMatrix())
	assertMat4(t, n.WorldViewMatrix(c).Inverse().Transpose(), n.InverseTransposedWorldViewMatrix(c))
}

func TestNodeTraverseAndFind(t *testing.T) {
	root := NewNode("root")
	a, b, c := NewNode("a"), NewNode("b"), NewNode("c")
	root.AddChild(a)
	root.AddChild(c)
	a.AddChild(b)

	var names []string
	root.Traverse(func(n *Node) { names = append(names, n.Name) })
	assert.Equal(t, []string{"root", "a", "b", "c"}, names)

	assert.Same(t, b, root.Find("b"))
	assert.Nil(t, root.Find("missing"))
}

func TestNodeUpdateRunsHooks(t *testing.T) {
	root := NewNode("root")
	child := NewNode("child")
	root.AddChild(child)

	var total float32
	child.OnUpdate = func(n *Node, dt float32) { n.Translate(math.NewVec3(dt, 0, 0)); total += dt }
	root.Update(0.5)
	root.Update(0.25)

	assert.InDelta(t, 0.75, total, tol)
	assertVec3(t, math.NewVec3(0.75, 0, 0), child.WorldPosition())
}

func TestSceneAssignsIDs(t *testing.T) {
	s := NewScene()
	parent, child := NewNode("parent"), NewNode("child")
	parent.AddChild(child)
	assert.Zero(t, parent.ID())

	s.AddNode(parent)
	require.NotZero(t, parent.ID())
	assert.NotEqual(t, parent.ID(), child.ID())
	assert.NotEqual(t, s.Root().ID(), parent.ID())

	other := NewScene()
	n := NewNode("n")
	other.AddNode(n)
	assert.Equal(t, s.Root().ID()+1, n.ID(), "ids are per scene")

	s.RemoveNode(parent)
	assert.Zero(t, child.ID())
}
