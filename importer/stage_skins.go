package importer

import (
	"github.com/lodestone3d/lodestone/scenegraph"
)

// skinStage resolves skins last, after nodes and animations, because joints
// reference arbitrary nodes. The node stage already handed placeholder skins
// to mesh bindings; this stage fills them in. A skin that fails validation
// is detached from its bindings so the affected meshes render statically
// instead of failing the import.
type skinStage struct {
	count int
}

var _ pipelineStage = &skinStage{}

func (s *skinStage) stage() Stage { return StageSkins }

func (s *skinStage) prepare(st *importState) error {
	s.count = len(st.doc.Skins)
	return nil
}

func (s *skinStage) total() int { return s.count }

func (s *skinStage) step(st *importState, i int) error {
	src := &st.doc.Skins[i]

	skin := st.cache.skins[i]
	if skin == nil {
		// No node binds this skin; build it anyway so it is validated.
		skin = &scenegraph.Skin{Name: fallbackName(src.Name, "skin", i)}
		st.cache.skins[i] = skin
	}

	if len(src.Joints) == 0 {
		st.warn("skin %d (%s) has no joints, bound meshes fall back to static rendering", i, skin.Name)
		s.detach(st, i)
		return nil
	}

	joints := make([]*scenegraph.Node, len(src.Joints))
	for j, nodeIdx := range src.Joints {
		if nodeIdx < 0 || nodeIdx >= len(st.cache.nodes) {
			st.warn("skin %d joint %d references node %d out of range (%d nodes), bound meshes fall back to static rendering", i, j, nodeIdx, len(st.cache.nodes))
			s.detach(st, i)
			return nil
		}
		joints[j] = st.cache.nodes[nodeIdx]
	}

	var ibms [][16]float32
	if src.InverseBindMatrices != nil {
		var err error
		ibms, err = st.reader.readMat4(*src.InverseBindMatrices)
		if err != nil {
			return err
		}
	} else {
		ibms = make([][16]float32, len(joints))
		for j := range ibms {
			ibms[j] = identityMat4()
		}
	}

	if len(ibms) != len(joints) {
		st.warn("skin %d (%s) has %d joints but %d inverse bind matrices, bound meshes fall back to static rendering", i, skin.Name, len(joints), len(ibms))
		s.detach(st, i)
		return nil
	}

	skin.Joints = joints
	skin.InverseBindMatrices = ibms
	return nil
}

// detach removes the skin from every mesh binding that referenced it.
func (s *skinStage) detach(st *importState, skinIdx int) {
	for _, binding := range st.cache.skinBindings[skinIdx] {
		binding.Skin = nil
	}
	st.cache.skins[skinIdx].Joints = nil
	st.cache.skins[skinIdx].InverseBindMatrices = nil
}

func identityMat4() [16]float32 {
	var m [16]float32
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}
