package importer

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lodestone3d/lodestone/common"
	"github.com/lodestone3d/lodestone/scenegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngDataURI encodes a solid 2x2 PNG as a base64 data URI.
func pngDataURI(t *testing.T, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// texturedGLTF is a loose JSON asset with two textures sharing identical
// image bytes, a sampler, and a masked double-sided material.
func texturedGLTF(t *testing.T) []byte {
	t.Helper()

	var bin []byte
	positions := []float32{
		0, 0, 0,
		1, 0, 0,
		0, 1, 0,
	}
	bin = append(bin, common.SliceToBytes(positions)...)
	uvs := []float32{
		0, 0,
		1, 0,
		0, 1,
	}
	bin = append(bin, common.SliceToBytes(uvs)...)
	bufURI := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(bin)

	imgURI := pngDataURI(t, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	doc := fmt.Sprintf(`{
		"asset": {"version": "2.0"},
		"scene": 0,
		"scenes": [{"nodes": [0]}],
		"nodes": [{"name": "quad", "mesh": 0}],
		"meshes": [{"primitives": [{"attributes": {"POSITION": 0, "TEXCOORD_0": 1}, "material": 0}]}],
		"materials": [{
			"name": "painted",
			"pbrMetallicRoughness": {
				"baseColorFactor": [1, 0, 0, 1],
				"baseColorTexture": {"index": 0}
			},
			"emissiveTexture": {"index": 1},
			"emissiveFactor": [0.5, 0.5, 0.5],
			"alphaMode": "MASK",
			"alphaCutoff": 0.25,
			"doubleSided": true
		}],
		"textures": [
			{"source": 0, "sampler": 0},
			{"source": 1}
		],
		"samplers": [{"magFilter": 9728, "wrapS": 33071}],
		"images": [{"uri": %q}, {"uri": %q}],
		"accessors": [
			{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"},
			{"bufferView": 1, "componentType": 5126, "count": 3, "type": "VEC2"}
		],
		"bufferViews": [
			{"buffer": 0, "byteOffset": 0, "byteLength": 36},
			{"buffer": 0, "byteOffset": 36, "byteLength": 24}
		],
		"buffers": [{"uri": %q, "byteLength": 60}]
	}`, imgURI, imgURI, bufURI)
	return []byte(doc)
}

func TestEditorSinkCatalogsAndDeduplicates(t *testing.T) {
	sink := NewEditorSink()
	imp := NewImporter(WithSink(sink))

	task, err := imp.BeginBytes("textured.gltf", texturedGLTF(t))
	require.NoError(t, err)
	for task.Advance() {
	}
	require.Equal(t, TaskCompleted, task.State())

	// Two document images with identical pixels collapse to one.
	assert.Len(t, sink.Images, 1)
	assert.Len(t, sink.Textures, 2)
	assert.Len(t, sink.Materials, 1)
	assert.Len(t, sink.Primitives, 1)
	require.Len(t, sink.Scenes, 1)
	assert.Same(t, sink.Scenes[0], task.Result())

	img := sink.Images[0]
	assert.Equal(t, 2, img.Width)
	assert.Equal(t, 2, img.Height)
	assert.Len(t, img.Pixels, 16)

	// Both textures reference the deduplicated image.
	assert.Same(t, img, sink.Textures[0].Image)
	assert.Same(t, img, sink.Textures[1].Image)
}

func TestMaterialConversion(t *testing.T) {
	imp := NewImporter()
	task, err := imp.BeginBytes("textured.gltf", texturedGLTF(t))
	require.NoError(t, err)
	for task.Advance() {
	}
	require.Equal(t, TaskCompleted, task.State())

	node := task.Result().FindNode("quad")
	require.NotNil(t, node)
	mat := node.Mesh.Mesh.Primitives[0].Material
	require.NotNil(t, mat)

	assert.Equal(t, "painted", mat.Name)
	assert.Equal(t, scenegraph.WorkflowMetallicRoughness, mat.Workflow)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, mat.BaseColorFactor)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, mat.EmissiveFactor)
	assert.Equal(t, scenegraph.AlphaMask, mat.Alpha)
	assert.InDelta(t, 0.25, float64(mat.AlphaCutoff), 1e-6)
	assert.True(t, mat.DoubleSided)

	require.NotNil(t, mat.BaseColorTexture)
	assert.Equal(t, 0, mat.BaseColorTexture.UVSet)
	require.NotNil(t, mat.EmissiveTexture)

	// Sampler 0: nearest magnification, clamped U, default V.
	params := mat.BaseColorTexture.Texture.Sampler
	assert.Equal(t, wgpu.FilterModeNearest, params.MagFilter)
	assert.Equal(t, wgpu.AddressModeClampToEdge, params.AddressModeU)
	assert.Equal(t, wgpu.AddressModeRepeat, params.AddressModeV)

	// Emissive texture has no sampler and uses the defaults.
	assert.Equal(t, scenegraph.DefaultSamplerParams(), mat.EmissiveTexture.Texture.Sampler)
}
