package scenegraph

// Scene is the finished product of an import: the root of the node hierarchy
// plus the animation clips that drive it. The root is synthetic; its children
// are the document's scene roots.
type Scene struct {
	// Name is the scene identifier.
	Name string

	// Root is the hierarchy root with identity transform.
	Root *Node

	// Animations are the clips targeting nodes in this scene.
	Animations []*AnimationClip

	// Warnings lists non-fatal problems encountered during the import, in
	// encounter order.
	Warnings []string
}

// NodeCount returns the number of nodes in the hierarchy, excluding the
// synthetic root.
//
// Returns:
//   - int: the node count
func (s *Scene) NodeCount() int {
	count := -1
	s.Root.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}

// FindNode returns the first node with the given name in depth-first order,
// or nil when no node matches.
//
// Parameters:
//   - name: the node name to search for
//
// Returns:
//   - *Node: the matching node, or nil
func (s *Scene) FindNode(name string) *Node {
	return s.Root.Find(name)
}
