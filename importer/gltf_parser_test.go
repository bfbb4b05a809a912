package importer

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLooseJSON(t *testing.T) {
	data := []byte(`{"asset": {"version": "2.0"}, "scenes": [{"nodes": []}]}`)

	doc, bin, err := newGLTFParser().parse(data)
	require.NoError(t, err)
	assert.Nil(t, bin)
	assert.Equal(t, "2.0", doc.Asset.Version)
	assert.Equal(t, 0, doc.defaultScene())
}

func TestParseGLB(t *testing.T) {
	doc, bin, err := newGLTFParser().parse(triangleGLB())
	require.NoError(t, err)
	require.NotNil(t, bin)
	assert.Len(t, doc.Meshes, 1)
	assert.Len(t, doc.Accessors, 2)
	// The bin chunk is padded to alignment but never shorter than the
	// declared buffer length.
	assert.GreaterOrEqual(t, len(bin), doc.Buffers[0].ByteLength)
}

func TestParseIsIdempotent(t *testing.T) {
	data := triangleGLB()
	p := newGLTFParser()

	first, _, err := p.parse(data)
	require.NoError(t, err)
	second, _, err := p.parse(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := triangleGLB()
	binary.LittleEndian.PutUint32(data, 0xDEADBEEF)

	_, _, err := newGLTFParser().parse(data)
	// Without the magic the data is treated as JSON, which it is not.
	assert.ErrorIs(t, err, ErrContainer)
}

func TestParseRejectsBadVersion(t *testing.T) {
	data := triangleGLB()
	binary.LittleEndian.PutUint32(data[4:], 1)

	_, _, err := newGLTFParser().parse(data)
	assert.ErrorIs(t, err, ErrContainer)
	assert.Contains(t, err.Error(), "version")
}

func TestParseRejectsLengthMismatch(t *testing.T) {
	data := triangleGLB()
	binary.LittleEndian.PutUint32(data[8:], uint32(len(data)+8))

	_, _, err := newGLTFParser().parse(data)
	assert.ErrorIs(t, err, ErrContainer)
}

func TestParseRejectsTruncatedChunk(t *testing.T) {
	data := triangleGLB()
	truncated := data[:len(data)-4]
	binary.LittleEndian.PutUint32(truncated[8:], uint32(len(truncated)))

	_, _, err := newGLTFParser().parse(truncated)
	assert.ErrorIs(t, err, ErrContainer)
}

func TestParseRejectsUnknownChunkType(t *testing.T) {
	data := buildGLB(`{"asset": {"version": "2.0"}, "scenes": [{"nodes": []}]}`, []byte{1, 2, 3, 4})
	// Corrupt the BIN chunk tag. The BIN chunk header sits right after the
	// JSON chunk; find it from the JSON chunk length.
	jsonLen := int(binary.LittleEndian.Uint32(data[12:]))
	binary.LittleEndian.PutUint32(data[12+8+jsonLen+4:], 0x12345678)

	_, _, err := newGLTFParser().parse(data)
	assert.ErrorIs(t, err, ErrContainer)
	assert.Contains(t, err.Error(), "unknown chunk type")
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	data := []byte(`{"asset": {"version": "1.0"}, "scenes": [{"nodes": []}]}`)

	_, _, err := newGLTFParser().parse(data)
	assert.ErrorIs(t, err, ErrSchema)
}

func TestParseRejectsMissingScenes(t *testing.T) {
	data := []byte(`{"asset": {"version": "2.0"}}`)

	_, _, err := newGLTFParser().parse(data)
	assert.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "no scenes")
}

func TestParseRejectsDefaultSceneOutOfRange(t *testing.T) {
	data := []byte(`{"asset": {"version": "2.0"}, "scene": 3, "scenes": [{"nodes": []}]}`)

	_, _, err := newGLTFParser().parse(data)
	assert.ErrorIs(t, err, ErrReference)
}

func TestParseRejectsUnsupportedRequiredExtension(t *testing.T) {
	data := []byte(`{
		"asset": {"version": "2.0"},
		"scenes": [{"nodes": []}],
		"extensionsRequired": ["KHR_draco_mesh_compression"]
	}`)

	_, _, err := newGLTFParser().parse(data)
	assert.ErrorIs(t, err, ErrUnsupported)
}
