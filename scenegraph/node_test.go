package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformMatrixTranslation(t *testing.T) {
	tr := IdentityTransform()
	tr.Translation = [3]float32{1, 2, 3}

	m := tr.Matrix()
	assert.Equal(t, float32(1), m[12])
	assert.Equal(t, float32(2), m[13])
	assert.Equal(t, float32(3), m[14])
	assert.Equal(t, float32(1), m[0])
	assert.Equal(t, float32(1), m[5])
	assert.Equal(t, float32(1), m[10])
}

func TestWorldMatrixComposition(t *testing.T) {
	root := &Node{Name: "root", Local: IdentityTransform()}
	root.Local.Translation = [3]float32{10, 0, 0}

	child := &Node{Name: "child", Local: IdentityTransform(), Parent: root}
	child.Local.Translation = [3]float32{0, 5, 0}
	child.Local.Scale = [3]float32{2, 2, 2}
	root.Children = append(root.Children, child)

	m := child.WorldMatrix()
	assert.InDelta(t, 10, float64(m[12]), 1e-6)
	assert.InDelta(t, 5, float64(m[13]), 1e-6)
	assert.InDelta(t, 2, float64(m[0]), 1e-6)
}

func TestWalkAndFind(t *testing.T) {
	root := &Node{Name: "root", Local: IdentityTransform()}
	a := &Node{Name: "a", Local: IdentityTransform(), Parent: root}
	b := &Node{Name: "b", Local: IdentityTransform(), Parent: root}
	inner := &Node{Name: "target", Local: IdentityTransform(), Parent: a}
	root.Children = []*Node{a, b}
	a.Children = []*Node{inner}

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "a", "target", "b"}, visited)

	found := root.Find("target")
	require.NotNil(t, found)
	assert.Same(t, inner, found)
	assert.Nil(t, root.Find("missing"))

	// Early termination.
	count := 0
	root.Walk(func(*Node) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestMeshBindingSkinned(t *testing.T) {
	binding := &MeshBinding{Mesh: &Mesh{}}
	assert.False(t, binding.Skinned())

	binding.Skin = &Skin{}
	assert.False(t, binding.Skinned(), "a skin without joints does not skin anything")

	binding.Skin.Joints = []*Node{{Name: "joint"}}
	assert.True(t, binding.Skinned())
}

func TestSceneNodeCount(t *testing.T) {
	root := &Node{Name: "scene", Index: -1, Local: IdentityTransform()}
	a := &Node{Name: "a", Local: IdentityTransform(), Parent: root}
	b := &Node{Name: "b", Local: IdentityTransform(), Parent: a}
	root.Children = []*Node{a}
	a.Children = []*Node{b}

	scene := &Scene{Name: "scene", Root: root}
	assert.Equal(t, 2, scene.NodeCount())
	assert.Same(t, b, scene.FindNode("b"))
}
