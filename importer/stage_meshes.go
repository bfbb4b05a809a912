package importer

import (
	"fmt"

	"github.com/lodestone3d/lodestone/common"
	"github.com/lodestone3d/lodestone/scenegraph"
)

// meshStage converts mesh geometry, one primitive per step. Mesh shells are
// created up front in prepare (cheap, no buffer access) so empty meshes
// exist even though they contribute no step. Geometry problems inside a
// primitive degrade that primitive only: the rest of the mesh still imports.
type meshStage struct {
	units []meshUnit
}

// meshUnit addresses one primitive of one mesh.
type meshUnit struct {
	mesh int
	prim int
}

var _ pipelineStage = &meshStage{}

func (s *meshStage) stage() Stage { return StageMeshes }

func (s *meshStage) prepare(st *importState) error {
	for i := range st.doc.Meshes {
		src := &st.doc.Meshes[i]
		mesh := &scenegraph.Mesh{
			Name: fallbackName(src.Name, "mesh", i),
		}
		if len(src.Weights) > 0 {
			mesh.DefaultWeights = append([]float32(nil), src.Weights...)
		}
		st.cache.meshes[i] = mesh

		if len(src.Primitives) == 0 {
			st.warn("mesh %d (%s) declares no primitives", i, mesh.Name)
		}
		for p := range src.Primitives {
			s.units = append(s.units, meshUnit{mesh: i, prim: p})
		}
	}
	return nil
}

func (s *meshStage) total() int { return len(s.units) }

func (s *meshStage) step(st *importState, i int) error {
	u := s.units[i]
	prim, err := extractPrimitive(st, u.mesh, u.prim, &st.doc.Meshes[u.mesh].Primitives[u.prim])
	if err != nil {
		return err
	}
	if prim != nil {
		mesh := st.cache.meshes[u.mesh]
		mesh.Primitives = append(mesh.Primitives, st.sink.InternPrimitive(prim))
	}
	return nil
}

// extractPrimitive converts one primitive. A nil result with nil error means
// the primitive was skipped with a warning.
func extractPrimitive(st *importState, meshIdx, primIdx int, src *gltfPrimitive) (*scenegraph.Primitive, error) {
	if src.Mode != nil && *src.Mode != gltfPrimitiveModeTriangles {
		st.warn("mesh %d primitive %d uses topology mode %d, only triangles are supported, skipped", meshIdx, primIdx, *src.Mode)
		return nil, nil
	}
	posAcc, ok := src.Attributes["POSITION"]
	if !ok {
		st.warn("mesh %d primitive %d has no POSITION attribute, skipped", meshIdx, primIdx)
		return nil, nil
	}

	prim := &scenegraph.Primitive{
		Name: fmt.Sprintf("%s_prim_%d", fallbackName(st.doc.Meshes[meshIdx].Name, "mesh", meshIdx), primIdx),
	}

	var err error
	prim.Positions, err = st.reader.readVec3(posAcc)
	if err != nil {
		return nil, err
	}
	vertexCount := len(prim.Positions)

	// checkCount validates an optional attribute against the vertex count.
	// Mismatched attributes are dropped rather than failing the primitive.
	checkCount := func(attr string, n int) bool {
		if n != vertexCount {
			st.warn("mesh %d primitive %d attribute %s has %d elements, expected %d, dropped", meshIdx, primIdx, attr, n, vertexCount)
			return false
		}
		return true
	}

	if acc, ok := src.Attributes["NORMAL"]; ok {
		normals, err := st.reader.readVec3(acc)
		if err != nil {
			return nil, err
		}
		if checkCount("NORMAL", len(normals)) {
			prim.Normals = normals
		}
	}
	if acc, ok := src.Attributes["TANGENT"]; ok {
		tangents, err := st.reader.readVec4(acc, 1)
		if err != nil {
			return nil, err
		}
		if checkCount("TANGENT", len(tangents)) {
			prim.Tangents = tangents
		}
	}
	for set := 0; set < scenegraph.MaxUVSets; set++ {
		attr := fmt.Sprintf("TEXCOORD_%d", set)
		acc, ok := src.Attributes[attr]
		if !ok {
			continue
		}
		uvs, err := st.reader.readVec2(acc)
		if err != nil {
			return nil, err
		}
		if checkCount(attr, len(uvs)) {
			prim.UVs[set] = uvs
		}
	}
	if acc, ok := src.Attributes["COLOR_0"]; ok {
		colors, err := st.reader.readVec4(acc, 1)
		if err != nil {
			return nil, err
		}
		if checkCount("COLOR_0", len(colors)) {
			prim.Colors = colors
		}
	}
	if acc, ok := src.Attributes["JOINTS_0"]; ok {
		joints, err := st.reader.readJoints(acc)
		if err != nil {
			return nil, err
		}
		if checkCount("JOINTS_0", len(joints)) {
			prim.Joints = joints
		}
	}
	if acc, ok := src.Attributes["WEIGHTS_0"]; ok {
		weights, err := st.reader.readVec4(acc, 0)
		if err != nil {
			return nil, err
		}
		if checkCount("WEIGHTS_0", len(weights)) {
			prim.Weights = weights
			normalizeBoneWeights(prim.Weights)
		}
	}
	// Joints without weights (or the reverse) cannot skin anything.
	if (prim.Joints == nil) != (prim.Weights == nil) {
		st.warn("mesh %d primitive %d has incomplete skinning attributes, dropped", meshIdx, primIdx)
		prim.Joints = nil
		prim.Weights = nil
	}

	if src.Indices != nil {
		indices, err := st.reader.readIndices(*src.Indices)
		if err != nil {
			return nil, err
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return nil, referenceError("mesh %d primitive %d index %d exceeds vertex count %d", meshIdx, primIdx, idx, vertexCount)
			}
		}
		prim.Indices = indices
	} else {
		prim.Indices = make([]uint32, vertexCount)
		for v := range prim.Indices {
			prim.Indices[v] = uint32(v)
		}
	}
	if len(prim.Indices)%3 != 0 {
		st.warn("mesh %d primitive %d index count %d is not a multiple of 3, trailing indices dropped", meshIdx, primIdx, len(prim.Indices))
		prim.Indices = prim.Indices[:len(prim.Indices)/3*3]
	}

	if prim.Normals == nil {
		prim.Normals = generateNormals(prim.Positions, prim.Indices)
	}
	// Tangents can only be derived when a UV set exists to orient them.
	if prim.Tangents == nil && prim.UVs[0] != nil {
		prim.Tangents = generateTangents(prim.Positions, prim.Normals, prim.UVs[0], prim.Indices)
	}

	for t, target := range src.Targets {
		mt, err := extractMorphTarget(st, meshIdx, primIdx, t, target, vertexCount)
		if err != nil {
			return nil, err
		}
		prim.MorphTargets = append(prim.MorphTargets, mt)
	}

	if src.Material != nil {
		if *src.Material < 0 || *src.Material >= len(st.cache.materials) {
			st.warn("mesh %d primitive %d references material %d out of range (%d materials), using default", meshIdx, primIdx, *src.Material, len(st.cache.materials))
			prim.Material = st.sink.InternMaterial(scenegraph.DefaultMaterial())
		} else {
			prim.Material = st.cache.materials[*src.Material]
		}
	} else {
		prim.Material = st.sink.InternMaterial(scenegraph.DefaultMaterial())
	}

	prim.BoundingMin, prim.BoundingMax = boundingBox(prim.Positions)
	return prim, nil
}

// extractMorphTarget reads one morph target's POSITION and NORMAL deltas.
func extractMorphTarget(st *importState, meshIdx, primIdx, targetIdx int, attrs map[string]int, vertexCount int) (scenegraph.MorphTarget, error) {
	var mt scenegraph.MorphTarget
	if acc, ok := attrs["POSITION"]; ok {
		deltas, err := st.reader.readVec3(acc)
		if err != nil {
			return mt, err
		}
		if len(deltas) != vertexCount {
			return mt, referenceError("mesh %d primitive %d morph target %d POSITION has %d deltas, expected %d", meshIdx, primIdx, targetIdx, len(deltas), vertexCount)
		}
		mt.PositionDeltas = deltas
	}
	if acc, ok := attrs["NORMAL"]; ok {
		deltas, err := st.reader.readVec3(acc)
		if err != nil {
			return mt, err
		}
		if len(deltas) != vertexCount {
			return mt, referenceError("mesh %d primitive %d morph target %d NORMAL has %d deltas, expected %d", meshIdx, primIdx, targetIdx, len(deltas), vertexCount)
		}
		mt.NormalDeltas = deltas
	}
	return mt, nil
}

// normalizeBoneWeights clamps negative weights to zero and rescales each
// vertex's weights to sum to one. Vertices whose weights sum to zero are
// bound fully to their first joint.
func normalizeBoneWeights(weights [][4]float32) {
	for i := range weights {
		var sum float32
		for c := 0; c < 4; c++ {
			if weights[i][c] < 0 {
				weights[i][c] = 0
			}
			sum += weights[i][c]
		}
		if sum <= 0 {
			weights[i] = [4]float32{1, 0, 0, 0}
			continue
		}
		inv := 1 / sum
		for c := 0; c < 4; c++ {
			weights[i][c] *= inv
		}
	}
}

// generateNormals computes flat per-vertex normals from triangle geometry.
// Vertices shared between triangles accumulate and average the face normals.
func generateNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	for t := 0; t+2 < len(indices); t += 3 {
		i0, i1, i2 := indices[t], indices[t+1], indices[t+2]
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]

		e1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		e2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		n := [3]float32{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, idx := range []uint32{i0, i1, i2} {
			normals[idx][0] += n[0]
			normals[idx][1] += n[1]
			normals[idx][2] += n[2]
		}
	}
	for i := range normals {
		if common.Length3(normals[i][0], normals[i][1], normals[i][2]) == 0 {
			normals[i] = [3]float32{0, 1, 0}
			continue
		}
		normals[i] = common.Normalize3(normals[i])
	}
	return normals
}

// generateTangents derives per-vertex tangents from positions, normals and
// the first UV set. Tangents accumulate per triangle in UV space, then each
// vertex tangent is Gram-Schmidt orthonormalized against its normal; the w
// component carries the bitangent handedness.
func generateTangents(positions, normals [][3]float32, uvs [][2]float32, indices []uint32) [][4]float32 {
	n := len(positions)
	tan := make([][3]float32, n)
	btan := make([][3]float32, n)

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0, p1, p2 := positions[i0], positions[i1], positions[i2]
		uv0, uv1, uv2 := uvs[i0], uvs[i1], uvs[i2]

		edge1 := [3]float32{p1[0] - p0[0], p1[1] - p0[1], p1[2] - p0[2]}
		edge2 := [3]float32{p2[0] - p0[0], p2[1] - p0[1], p2[2] - p0[2]}
		duv1 := [2]float32{uv1[0] - uv0[0], uv1[1] - uv0[1]}
		duv2 := [2]float32{uv2[0] - uv0[0], uv2[1] - uv0[1]}

		det := duv1[0]*duv2[1] - duv1[1]*duv2[0]
		if det == 0 {
			continue
		}
		invDet := 1.0 / det

		t := [3]float32{
			invDet * (duv2[1]*edge1[0] - duv1[1]*edge2[0]),
			invDet * (duv2[1]*edge1[1] - duv1[1]*edge2[1]),
			invDet * (duv2[1]*edge1[2] - duv1[1]*edge2[2]),
		}
		b := [3]float32{
			invDet * (-duv2[0]*edge1[0] + duv1[0]*edge2[0]),
			invDet * (-duv2[0]*edge1[1] + duv1[0]*edge2[1]),
			invDet * (-duv2[0]*edge1[2] + duv1[0]*edge2[2]),
		}
		for _, idx := range []uint32{i0, i1, i2} {
			tan[idx][0] += t[0]
			tan[idx][1] += t[1]
			tan[idx][2] += t[2]
			btan[idx][0] += b[0]
			btan[idx][1] += b[1]
			btan[idx][2] += b[2]
		}
	}

	out := make([][4]float32, n)
	for i := 0; i < n; i++ {
		normal := normals[i]
		t := tan[i]

		nDotT := normal[0]*t[0] + normal[1]*t[1] + normal[2]*t[2]
		ortho := [3]float32{
			t[0] - normal[0]*nDotT,
			t[1] - normal[1]*nDotT,
			t[2] - normal[2]*nDotT,
		}
		if common.Length3(ortho[0], ortho[1], ortho[2]) < 1e-6 {
			out[i] = [4]float32{1, 0, 0, 1}
			continue
		}
		ortho = common.Normalize3(ortho)

		cross := [3]float32{
			normal[1]*ortho[2] - normal[2]*ortho[1],
			normal[2]*ortho[0] - normal[0]*ortho[2],
			normal[0]*ortho[1] - normal[1]*ortho[0],
		}
		w := float32(1)
		if cross[0]*btan[i][0]+cross[1]*btan[i][1]+cross[2]*btan[i][2] < 0 {
			w = -1
		}
		out[i] = [4]float32{ortho[0], ortho[1], ortho[2], w}
	}
	return out
}

// boundingBox returns the axis-aligned bounds of a position array.
func boundingBox(positions [][3]float32) ([3]float32, [3]float32) {
	if len(positions) == 0 {
		return [3]float32{}, [3]float32{}
	}
	min, max := positions[0], positions[0]
	for _, p := range positions[1:] {
		for c := 0; c < 3; c++ {
			if p[c] < min[c] {
				min[c] = p[c]
			}
			if p[c] > max[c] {
				max[c] = p[c]
			}
		}
	}
	return min, max
}
