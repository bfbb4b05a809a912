package importer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"strings"
)

// gltfParser parses glTF containers into documents. Parsing is pure: it
// validates framing and decodes JSON but never touches buffers, images or
// external files. Resource resolution happens in the pipeline stages.
type gltfParser interface {
	// parse detects the container format (GLB or loose JSON) and returns
	// the decoded document together with the embedded binary chunk, which
	// is nil for loose JSON documents.
	//
	// Parameters:
	//   - data: the raw container bytes.
	//
	// Returns:
	//   - *gltfDocument: the decoded document.
	//   - []byte: the GLB binary chunk, or nil.
	//   - error: a container or schema error if the data is not a valid glTF asset.
	parse(data []byte) (*gltfDocument, []byte, error)
}

type gltfParserImpl struct{}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a parser.
//
// Returns:
//   - gltfParser: the parser instance.
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) parse(data []byte) (*gltfDocument, []byte, error) {
	jsonData := data
	var binChunk []byte

	if isGLB(data) {
		var err error
		jsonData, binChunk, err = p.parseGLB(data)
		if err != nil {
			return nil, nil, err
		}
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, nil, containerError("invalid glTF JSON: %v", err)
	}

	if err := p.validateDocument(&doc); err != nil {
		return nil, nil, err
	}
	return &doc, binChunk, nil
}

// isGLB reports whether data starts with the GLB magic number.
func isGLB(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data) == gltfGLBMagic
}

// parseGLB validates GLB framing and returns the JSON chunk payload and the
// optional binary chunk payload. Framing is strict: the 12-byte header must
// carry the correct magic and version, the declared length must match the
// data, chunks must be 4-byte aligned, the first chunk must be JSON, and at
// most one BIN chunk may follow. An unknown chunk type is a container error.
func (p *gltfParserImpl) parseGLB(data []byte) ([]byte, []byte, error) {
	reader := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, nil, containerError("truncated GLB header")
	}
	if header.Magic != gltfGLBMagic {
		return nil, nil, containerError("invalid GLB magic 0x%08X", header.Magic)
	}
	if header.Version != gltfGLBVersion {
		return nil, nil, containerError("unsupported GLB container version %d", header.Version)
	}
	if int(header.Length) != len(data) {
		return nil, nil, containerError("GLB length mismatch: header declares %d bytes, got %d", header.Length, len(data))
	}

	var jsonChunk []byte
	var binChunk []byte
	offset := 12

	for offset < len(data) {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(bytes.NewReader(data[offset:]), binary.LittleEndian, &chunk); err != nil {
			return nil, nil, containerError("truncated chunk header at offset %d", offset)
		}
		chunkLen := int(chunk.ChunkLength)
		chunkType := chunk.ChunkType
		offset += 8

		if chunkLen%4 != 0 {
			return nil, nil, containerError("chunk at offset %d has unaligned length %d", offset-8, chunkLen)
		}
		if offset+chunkLen > len(data) {
			return nil, nil, containerError("chunk at offset %d overruns file: %d bytes declared, %d remain", offset-8, chunkLen, len(data)-offset)
		}
		payload := data[offset : offset+chunkLen]
		offset += chunkLen

		switch chunkType {
		case gltfGLBChunkJSON:
			if jsonChunk != nil {
				return nil, nil, containerError("duplicate JSON chunk")
			}
			if binChunk != nil {
				return nil, nil, containerError("JSON chunk must precede BIN chunk")
			}
			jsonChunk = payload
		case gltfGLBChunkBIN:
			if jsonChunk == nil {
				return nil, nil, containerError("BIN chunk before JSON chunk")
			}
			if binChunk != nil {
				return nil, nil, containerError("duplicate BIN chunk")
			}
			binChunk = payload
		default:
			return nil, nil, containerError("unknown chunk type 0x%08X at offset %d", chunkType, offset-chunkLen-8)
		}
	}

	if jsonChunk == nil {
		return nil, nil, containerError("missing JSON chunk")
	}
	return jsonChunk, binChunk, nil
}

// validateDocument performs the schema checks that must hold before any
// stage runs. Deeper referential checks (accessor ranges, index bounds) are
// deferred to the stages that consume the data.
func (p *gltfParserImpl) validateDocument(doc *gltfDocument) error {
	if doc.Asset.Version == "" {
		return schemaError("missing asset.version")
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return schemaError("unsupported glTF version %q", doc.Asset.Version)
	}
	if len(doc.Scenes) == 0 {
		return schemaError("document contains no scenes")
	}
	scene := doc.defaultScene()
	if scene < 0 || scene >= len(doc.Scenes) {
		return referenceError("default scene index %d out of range (%d scenes)", scene, len(doc.Scenes))
	}
	for _, ext := range doc.ExtensionsRequired {
		if ext != gltfExtSpecularGlossiness {
			return unsupportedError("required extension %q is not supported", ext)
		}
	}
	return nil
}
