// Package scenegraph defines the in-memory scene representation produced by an
// import: a transform hierarchy of nodes carrying meshes, materials, skins,
// and animation clips. Everything here is plain CPU data — no GPU resources.
package scenegraph

import (
	"github.com/lodestone3d/lodestone/common"
)

// Transform is a decomposed local transform (translation, rotation, scale).
type Transform struct {
	// Translation is the position offset.
	Translation [3]float32

	// Rotation is the orientation as a quaternion (x, y, z, w).
	Rotation [4]float32

	// Scale is the scale factor along each axis.
	Scale [3]float32
}

// IdentityTransform returns a Transform with no translation, identity rotation,
// and unit scale.
//
// Returns:
//   - Transform: the identity transform
func IdentityTransform() Transform {
	return Transform{
		Translation: [3]float32{0, 0, 0},
		Rotation:    [4]float32{0, 0, 0, 1},
		Scale:       [3]float32{1, 1, 1},
	}
}

// Matrix composes the transform into a 4x4 column-major matrix (T * R * S).
//
// Returns:
//   - [16]float32: the composed local matrix
func (t Transform) Matrix() [16]float32 {
	var m [16]float32
	common.ComposeTRS(m[:], t.Translation, t.Rotation, t.Scale)
	return m
}

// Node is one element of the transform hierarchy. A node has at most one
// parent; parent links are established once during construction and never
// change afterwards.
type Node struct {
	// Name is the node identifier (may be empty in the source document).
	Name string

	// Index is the node's index in the source document, preserved so that
	// animation channels and skin joints can resolve their targets.
	Index int

	// Local is the node's transform relative to its parent.
	Local Transform

	// Parent is the owning node, nil for scene roots.
	Parent *Node

	// Children are the node's child nodes in document order.
	Children []*Node

	// Mesh is the renderable binding attached to this node, nil when the
	// node is a pure transform.
	Mesh *MeshBinding
}

// WorldMatrix computes the node's model-to-world matrix by composing local
// matrices from the root down to this node.
//
// Returns:
//   - [16]float32: the world matrix (column-major)
func (n *Node) WorldMatrix() [16]float32 {
	local := n.Local.Matrix()
	if n.Parent == nil {
		return local
	}
	parent := n.Parent.WorldMatrix()
	var out [16]float32
	common.Mul4(out[:], parent[:], local[:])
	return out
}

// Walk visits the node and all of its descendants depth-first, in child
// order. The walk stops early if fn returns false.
//
// Parameters:
//   - fn: callback invoked for each node; return false to stop the walk
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

// Find returns the first node in the subtree with the given name, or nil.
//
// Parameters:
//   - name: the node name to look up
//
// Returns:
//   - *Node: the matching node or nil
func (n *Node) Find(name string) *Node {
	var found *Node
	n.Walk(func(node *Node) bool {
		if node.Name == name {
			found = node
			return false
		}
		return true
	})
	return found
}

// MeshBinding attaches a mesh to a node, together with its skinning or
// blend-shape state. A binding with a nil Skin and non-empty MorphWeights is
// a morph-only binding: it carries blend-shape state without a skeleton.
type MeshBinding struct {
	// Mesh is the shared mesh geometry.
	Mesh *Mesh

	// Skin is the skeletal binding, nil for static and morph-only meshes.
	Skin *Skin

	// MorphWeights are the current blend-shape weights, one per morph
	// target. Initialized from the mesh's default weights.
	MorphWeights []float32
}

// Skinned reports whether the binding deforms through a skeleton.
//
// Returns:
//   - bool: true when a skin with at least one joint is attached
func (b *MeshBinding) Skinned() bool {
	return b.Skin != nil && len(b.Skin.Joints) > 0
}

// Skin maps mesh vertices to a joint hierarchy via inverse bind matrices.
// Joints reference nodes of the same scene graph; the joint and matrix
// sequences are always the same length.
type Skin struct {
	// Name is the skin identifier.
	Name string

	// Joints are the joint nodes in document order.
	Joints []*Node

	// InverseBindMatrices transform from model space to each joint's space
	// at bind pose (column-major).
	InverseBindMatrices [][16]float32
}
