package scenegraph

// MaxUVSets is the number of texture coordinate sets a primitive can carry
// (TEXCOORD_0 through TEXCOORD_3).
const MaxUVSets = 4

// Mesh is an ordered list of primitives sharing a name and default morph
// weights. Meshes are shared: multiple nodes may bind the same mesh.
type Mesh struct {
	// Name is the mesh identifier.
	Name string

	// Primitives are the drawable sub-meshes in document order.
	Primitives []*Primitive

	// DefaultWeights are the mesh's default morph target weights.
	DefaultWeights []float32
}

// Primitive is one drawable sub-mesh: per-vertex attribute arrays, an index
// buffer, a material, and optional morph targets. All attribute arrays are
// either empty or exactly as long as Positions.
type Primitive struct {
	// Name is a derived identifier (mesh name plus primitive index).
	Name string

	// Positions are the vertex positions (required, model space).
	Positions [][3]float32

	// Normals are the per-vertex normals. Generated from geometry when the
	// source omits them.
	Normals [][3]float32

	// Tangents are per-vertex tangents: xyz direction, w handedness (±1).
	// Generated from UV gradients when the source omits them.
	Tangents [][4]float32

	// UVs are up to MaxUVSets texture coordinate sets; unused sets are nil.
	UVs [MaxUVSets][][2]float32

	// Colors are per-vertex RGBA colors, nil when absent.
	Colors [][4]float32

	// Joints are per-vertex joint indices (4 influences), nil for unskinned
	// primitives.
	Joints [][4]uint16

	// Weights are per-vertex joint blend weights. Always normalized: each
	// vertex's weights are non-negative and sum to 1.
	Weights [][4]float32

	// Indices is the triangle index buffer. Sequential indices are generated
	// when the source primitive is non-indexed.
	Indices []uint32

	// Material is the primitive's material; never nil — primitives without a
	// material reference get the default material.
	Material *Material

	// MorphTargets are the blend-shape deltas for this primitive.
	MorphTargets []MorphTarget

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}

// VertexCount returns the number of vertices in the primitive.
//
// Returns:
//   - int: the vertex count (length of Positions)
func (p *Primitive) VertexCount() int {
	return len(p.Positions)
}

// TriangleCount returns the number of triangles in the primitive.
//
// Returns:
//   - int: the triangle count
func (p *Primitive) TriangleCount() int {
	return len(p.Indices) / 3
}

// MorphTarget holds per-vertex deltas for one blend shape. Delta arrays are
// the same length as the primitive's Positions, or nil when the target does
// not affect that attribute.
type MorphTarget struct {
	// PositionDeltas are added to Positions at weight 1.
	PositionDeltas [][3]float32

	// NormalDeltas are added to Normals at weight 1.
	NormalDeltas [][3]float32
}
