package importer

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
)

// bufferStage resolves every glTF buffer into the asset cache. Sources are
// the GLB binary chunk, base64 data URIs and external files relative to the
// asset's directory. Progress is reported in bytes because a single buffer
// can dominate the whole import.
type bufferStage struct {
	doneBytes  int64
	totalBytes int64
	count      int
}

var _ pipelineStage = &bufferStage{}
var _ byteProgresser = &bufferStage{}

func (s *bufferStage) stage() Stage { return StageBuffers }

func (s *bufferStage) prepare(st *importState) error {
	s.count = len(st.doc.Buffers)
	for i := range st.doc.Buffers {
		s.totalBytes += int64(st.doc.Buffers[i].ByteLength)
	}
	return nil
}

func (s *bufferStage) total() int { return s.count }

func (s *bufferStage) byteProgress() (int64, int64) {
	return s.doneBytes, s.totalBytes
}

func (s *bufferStage) step(st *importState, i int) error {
	buf := &st.doc.Buffers[i]

	data, err := resolveBufferData(st, i, buf)
	if err != nil {
		return err
	}
	if len(data) < buf.ByteLength {
		return referenceError("buffer %d declares %d bytes but source yields %d", i, buf.ByteLength, len(data))
	}
	// Trailing padding past the declared length is allowed and trimmed.
	st.cache.buffers[i] = data[:buf.ByteLength]
	s.doneBytes += int64(buf.ByteLength)
	return nil
}

func resolveBufferData(st *importState, idx int, buf *gltfBuffer) ([]byte, error) {
	switch {
	case buf.URI == "":
		if st.cache.binChunk == nil {
			return nil, referenceError("buffer %d has no URI and the container carries no binary chunk", idx)
		}
		if idx != 0 {
			return nil, schemaError("buffer %d has no URI but only buffer 0 may use the binary chunk", idx)
		}
		return st.cache.binChunk, nil
	case strings.HasPrefix(buf.URI, "data:"):
		data, err := decodeDataURI(buf.URI)
		if err != nil {
			return nil, containerError("buffer %d has malformed data URI: %v", idx, err)
		}
		return data, nil
	default:
		path := filepath.Join(st.baseDir, filepath.FromSlash(buf.URI))
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, containerError("buffer %d external file %q: %v", idx, buf.URI, err)
		}
		return data, nil
	}
}

// decodeDataURI decodes a base64 data URI of the form
// "data:<mime>;base64,<payload>".
func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, containerError("data URI has no payload separator")
	}
	meta := uri[:comma]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, containerError("data URI is not base64 encoded")
	}
	return base64.StdEncoding.DecodeString(uri[comma+1:])
}
