package importer

import (
	"bytes"
	"encoding/binary"

	"github.com/lodestone3d/lodestone/common"
)

// buildGLB assembles a GLB container from a JSON document and an optional
// binary chunk, applying the required 4-byte chunk padding.
func buildGLB(jsonDoc string, bin []byte) []byte {
	jsonPayload := []byte(jsonDoc)
	for len(jsonPayload)%4 != 0 {
		jsonPayload = append(jsonPayload, ' ')
	}
	binPayload := append([]byte(nil), bin...)
	for len(binPayload)%4 != 0 {
		binPayload = append(binPayload, 0)
	}

	total := 12 + 8 + len(jsonPayload)
	if bin != nil {
		total += 8 + len(binPayload)
	}

	var buf bytes.Buffer
	write := func(v uint32) {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	write(gltfGLBMagic)
	write(gltfGLBVersion)
	write(uint32(total))
	write(uint32(len(jsonPayload)))
	write(gltfGLBChunkJSON)
	buf.Write(jsonPayload)
	if bin != nil {
		write(uint32(len(binPayload)))
		write(gltfGLBChunkBIN)
		buf.Write(binPayload)
	}
	return buf.Bytes()
}

// triangleGLB is a minimal valid asset: one mesh with a single indexed
// triangle, one node, one scene.
func triangleGLB() []byte {
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	bin := common.SliceToBytes(positions)
	indices := []uint16{0, 1, 2}
	bin = append(bin, common.SliceToBytes(indices)...)

	doc := `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"name": "tri", "nodes": [0]}],
		"nodes": [{"name": "root", "mesh": 0}],
		"meshes": [{"name": "triangle", "primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5123, "count": 3, "type": "SCALAR"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 6}
		],
		"buffers": [{"byteLength": 42}]
	}`
	return buildGLB(doc, bin)
}

// overrunAccessorGLB declares an accessor with more elements than its buffer
// view can hold.
func overrunAccessorGLB() []byte {
	positions := make([]float32, 8)
	bin := common.SliceToBytes(positions)

	doc := `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0]}],
		"nodes": [{"mesh": 0}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"accessors": [{"bufferView": 0, "componentType": 5126, "count": 10, "type": "VEC3"}],
		"bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": 32}],
		"buffers": [{"byteLength": 32}]
	}`
	return buildGLB(doc, bin)
}

// mismatchedSkinGLB binds a mesh to a skin declaring three joints but only
// two inverse bind matrices.
func mismatchedSkinGLB() []byte {
	var bin []byte
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	bin = append(bin, common.SliceToBytes(positions)...)

	joints := make([]byte, 12)
	bin = append(bin, joints...)

	weights := []float32{
		1, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 0, 0,
	}
	bin = append(bin, common.SliceToBytes(weights)...)

	ibms := make([]float32, 32)
	for m := 0; m < 2; m++ {
		for d := 0; d < 4; d++ {
			ibms[m*16+d*5] = 1
		}
	}
	bin = append(bin, common.SliceToBytes(ibms)...)

	doc := `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0, 1, 2]}],
		"nodes": [
			{"name": "skinned", "mesh": 0, "skin": 0},
			{"name": "jointA"},
			{"name": "jointB"}
		],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0, "JOINTS_0": 1, "WEIGHTS_0": 2}}]}],
		"skins": [{"joints": [0, 1, 2], "inverseBindMatrices": 3}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5121, "count": 3, "type": "VEC4"},
			{"bufferView": 2, "componentType": 5126, "count": 3, "type": "VEC4"},
			{"bufferView": 3, "componentType": 5126, "count": 2, "type": "MAT4"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 12},
			{"buffer": 0, "byteOffset": 48, "byteLength": 48},
			{"buffer": 0, "byteOffset": 96, "byteLength": 128}
		],
		"buffers": [{"byteLength": 224}]
	}`
	return buildGLB(doc, bin)
}

// animatedGLB drives a node's translation with a linear track and its
// rotation with a STEP track flipping between two orientations.
func animatedGLB() []byte {
	var bin []byte
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	bin = append(bin, common.SliceToBytes(positions)...)

	times := []float32{0, 1, 2}
	bin = append(bin, common.SliceToBytes(times)...)

	translations := []float32{
		0, 0, 0,
		1, 0, 0,
		1, 2, 0,
	}
	bin = append(bin, common.SliceToBytes(translations)...)

	rotations := []float32{
		0, 0, 0, 1,
		0, 0, 0.7071068, 0.7071068,
		0, 0, 1, 0,
	}
	bin = append(bin, common.SliceToBytes(rotations)...)

	doc := `{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0]}],
		"nodes": [{"name": "spinner", "mesh": 0}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
		"animations": [{
			"name": "spin",
			"channels": [
				{"sampler": 0, "target": {"node": 0, "path": "translation"}},
				{"sampler": 1, "target": {"node": 0, "path": "rotation"}}
			],
			"samplers": [
				{"input": 1, "output": 2, "interpolation": "LINEAR"},
				{"input": 1, "output": 3, "interpolation": "STEP"}
			]
		}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5126, "count": 3, "type": "SCALAR"},
			{"bufferView": 2, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 3, "componentType": 5126, "count": 3, "type": "VEC4"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 12},
			{"buffer": 0, "byteOffset": 48, "byteLength": 36},
			{"buffer": 0, "byteOffset": 84, "byteLength": 48}
		],
		"buffers": [{"byteLength": 132}]
	}`
	return buildGLB(doc, bin)
}
