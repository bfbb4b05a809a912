package importer

import (
	"github.com/chewxy/math32"
	"github.com/lodestone3d/lodestone/common"
	"github.com/lodestone3d/lodestone/scenegraph"
	"go.uber.org/zap"
)

// nodeStage builds the transform hierarchy. Each document node becomes one
// step; a final step wires parent/child links and assembles the scene root.
// Skins referenced by nodes are created here as empty placeholders so mesh
// bindings can point at them before the skin stage fills them in.
type nodeStage struct {
	count int
}

var _ pipelineStage = &nodeStage{}

func (s *nodeStage) stage() Stage { return StageNodes }

func (s *nodeStage) prepare(st *importState) error {
	// One step per node plus the hierarchy assembly step.
	s.count = len(st.doc.Nodes) + 1
	return nil
}

func (s *nodeStage) total() int { return s.count }

func (s *nodeStage) step(st *importState, i int) error {
	if i < len(st.doc.Nodes) {
		return s.buildNode(st, i)
	}
	return s.assemble(st)
}

func (s *nodeStage) buildNode(st *importState, i int) error {
	src := &st.doc.Nodes[i]

	node := &scenegraph.Node{
		Name:  fallbackName(src.Name, "node", i),
		Index: i,
		Local: nodeTransform(src),
	}

	if src.Mesh != nil {
		if *src.Mesh < 0 || *src.Mesh >= len(st.cache.meshes) {
			return referenceError("node %d references mesh %d out of range (%d meshes)", i, *src.Mesh, len(st.cache.meshes))
		}
		binding := &scenegraph.MeshBinding{Mesh: st.cache.meshes[*src.Mesh]}

		if weights := morphWeights(src, binding.Mesh); weights != nil {
			binding.MorphWeights = weights
		}
		if src.Skin != nil {
			skinIdx := *src.Skin
			if skinIdx < 0 || skinIdx >= len(st.cache.skins) {
				return referenceError("node %d references skin %d out of range (%d skins)", i, skinIdx, len(st.cache.skins))
			}
			if st.cache.skins[skinIdx] == nil {
				st.cache.skins[skinIdx] = &scenegraph.Skin{
					Name: fallbackName(st.doc.Skins[skinIdx].Name, "skin", skinIdx),
				}
			}
			binding.Skin = st.cache.skins[skinIdx]
			st.cache.skinBindings[skinIdx] = append(st.cache.skinBindings[skinIdx], binding)
		}
		node.Mesh = binding
	}

	st.cache.nodes[i] = node
	return nil
}

// assemble wires the hierarchy and hangs the default scene's roots under a
// synthetic root node. The document's node arrays form a forest; any node
// claimed as a child twice, or reachable from itself, is a broken reference.
func (s *nodeStage) assemble(st *importState) error {
	for i := range st.doc.Nodes {
		parent := st.cache.nodes[i]
		for _, childIdx := range st.doc.Nodes[i].Children {
			if childIdx < 0 || childIdx >= len(st.cache.nodes) {
				return referenceError("node %d references child %d out of range (%d nodes)", i, childIdx, len(st.cache.nodes))
			}
			child := st.cache.nodes[childIdx]
			if child.Parent != nil {
				return referenceError("node %d has multiple parents (%d and %d)", childIdx, child.Parent.Index, i)
			}
			if childIdx == i {
				return referenceError("node %d lists itself as a child", i)
			}
			child.Parent = parent
			parent.Children = append(parent.Children, child)
		}
	}

	// Parent links cannot express a cycle unless a node ends up above
	// itself. Walking up from every node bounds the check.
	for i, node := range st.cache.nodes {
		seen := 0
		for p := node.Parent; p != nil; p = p.Parent {
			seen++
			if seen > len(st.cache.nodes) {
				return referenceError("node %d is part of a hierarchy cycle", i)
			}
		}
	}

	sceneIdx := st.doc.defaultScene()
	scene := &st.doc.Scenes[sceneIdx]

	root := &scenegraph.Node{
		Name:  fallbackName(scene.Name, "scene", sceneIdx),
		Index: -1,
		Local: scenegraph.IdentityTransform(),
	}
	for _, rootIdx := range scene.Nodes {
		if rootIdx < 0 || rootIdx >= len(st.cache.nodes) {
			return referenceError("scene %d references node %d out of range (%d nodes)", sceneIdx, rootIdx, len(st.cache.nodes))
		}
		node := st.cache.nodes[rootIdx]
		if node.Parent != nil {
			return referenceError("scene %d lists node %d as a root but it has parent %d", sceneIdx, rootIdx, node.Parent.Index)
		}
		node.Parent = root
		root.Children = append(root.Children, node)
	}

	st.cache.root = root
	st.logger.Debug("scene hierarchy assembled",
		zap.String("asset", st.name),
		zap.Int("nodes", len(st.cache.nodes)),
		zap.Int("roots", len(root.Children)))
	return nil
}

// nodeTransform extracts a node's local TRS. A matrix transform is
// decomposed; TRS properties win when both are present.
func nodeTransform(src *gltfNode) scenegraph.Transform {
	t := scenegraph.IdentityTransform()
	if src.Matrix != nil {
		t = decomposeMatrix(*src.Matrix)
	}
	if src.Translation != nil {
		t.Translation = *src.Translation
	}
	if src.Rotation != nil {
		t.Rotation = *src.Rotation
	}
	if src.Scale != nil {
		t.Scale = *src.Scale
	}
	return t
}

// morphWeights picks the binding's initial morph weights: the node's own
// weights override the mesh defaults.
func morphWeights(src *gltfNode, mesh *scenegraph.Mesh) []float32 {
	if len(src.Weights) > 0 {
		return append([]float32(nil), src.Weights...)
	}
	if len(mesh.DefaultWeights) > 0 {
		return append([]float32(nil), mesh.DefaultWeights...)
	}
	return nil
}

// decomposeMatrix splits a column-major affine matrix into TRS. Shear is
// discarded; glTF exporters only emit TRS-composable matrices.
func decomposeMatrix(m [16]float32) scenegraph.Transform {
	t := scenegraph.Transform{
		Translation: [3]float32{m[12], m[13], m[14]},
		Scale: [3]float32{
			common.Length3(m[0], m[1], m[2]),
			common.Length3(m[4], m[5], m[6]),
			common.Length3(m[8], m[9], m[10]),
		},
	}

	// Negative determinant means one axis is mirrored.
	det := m[0]*(m[5]*m[10]-m[6]*m[9]) -
		m[4]*(m[1]*m[10]-m[2]*m[9]) +
		m[8]*(m[1]*m[6]-m[2]*m[5])
	if det < 0 {
		t.Scale[0] = -t.Scale[0]
	}

	// Rotation matrix with scale divided out.
	var r [9]float32
	for c := 0; c < 3; c++ {
		s := t.Scale[c]
		if s == 0 {
			s = 1
		}
		r[c*3+0] = m[c*4+0] / s
		r[c*3+1] = m[c*4+1] / s
		r[c*3+2] = m[c*4+2] / s
	}
	t.Rotation = matrixToQuaternion(r)
	return t
}

// matrixToQuaternion converts a 3x3 column-major rotation matrix to a unit
// quaternion (x, y, z, w) using the Shepperd branch selection.
func matrixToQuaternion(r [9]float32) [4]float32 {
	trace := r[0] + r[4] + r[8]
	var q [4]float32
	switch {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2
		q[3] = 0.25 * s
		q[0] = (r[5] - r[7]) / s
		q[1] = (r[6] - r[2]) / s
		q[2] = (r[1] - r[3]) / s
	case r[0] > r[4] && r[0] > r[8]:
		s := math32.Sqrt(1+r[0]-r[4]-r[8]) * 2
		q[3] = (r[5] - r[7]) / s
		q[0] = 0.25 * s
		q[1] = (r[3] + r[1]) / s
		q[2] = (r[6] + r[2]) / s
	case r[4] > r[8]:
		s := math32.Sqrt(1+r[4]-r[0]-r[8]) * 2
		q[3] = (r[6] - r[2]) / s
		q[0] = (r[3] + r[1]) / s
		q[1] = 0.25 * s
		q[2] = (r[7] + r[5]) / s
	default:
		s := math32.Sqrt(1+r[8]-r[0]-r[4]) * 2
		q[3] = (r[1] - r[3]) / s
		q[0] = (r[6] + r[2]) / s
		q[1] = (r[7] + r[5]) / s
		q[2] = 0.25 * s
	}
	return q
}
