package importer

import (
	"encoding/binary"
	"math"
)

// accessorReader resolves accessor data against the buffers already loaded
// into the asset cache. Every read validates that the accessor fits inside
// its buffer view before touching memory; violations surface as reference
// errors naming the accessor index.
type accessorReader struct {
	doc   *gltfDocument
	cache *assetCache
}

// accessorView is a validated window into a buffer: base points at the first
// element, stride is the distance between elements in bytes.
type accessorView struct {
	data     []byte
	stride   int
	count    int
	compType int
	elemType string
}

// viewBytes returns the raw bytes of a buffer view.
func (r *accessorReader) viewBytes(viewIdx int) ([]byte, error) {
	if viewIdx < 0 || viewIdx >= len(r.doc.BufferViews) {
		return nil, referenceError("bufferView index %d out of range (%d views)", viewIdx, len(r.doc.BufferViews))
	}
	view := &r.doc.BufferViews[viewIdx]
	if view.Buffer < 0 || view.Buffer >= len(r.cache.buffers) {
		return nil, referenceError("bufferView %d references buffer %d out of range (%d buffers)", viewIdx, view.Buffer, len(r.cache.buffers))
	}
	buf := r.cache.buffers[view.Buffer]
	if view.ByteOffset < 0 || view.ByteLength < 0 || view.ByteOffset+view.ByteLength > len(buf) {
		return nil, referenceError("bufferView %d range [%d:%d] exceeds buffer %d length %d",
			viewIdx, view.ByteOffset, view.ByteOffset+view.ByteLength, view.Buffer, len(buf))
	}
	return buf[view.ByteOffset : view.ByteOffset+view.ByteLength], nil
}

// open validates accessor accIdx and returns a window over its data.
func (r *accessorReader) open(accIdx int) (*accessorView, error) {
	if accIdx < 0 || accIdx >= len(r.doc.Accessors) {
		return nil, referenceError("accessor index %d out of range (%d accessors)", accIdx, len(r.doc.Accessors))
	}
	acc := &r.doc.Accessors[accIdx]
	if acc.Sparse != nil {
		return nil, unsupportedError("accessor %d uses sparse storage", accIdx)
	}

	compSize := gltfComponentTypeSize(acc.ComponentType)
	compCount := gltfAccessorTypeComponentCount(acc.Type)
	if compSize == 0 {
		return nil, schemaError("accessor %d has unknown component type %d", accIdx, acc.ComponentType)
	}
	if compCount == 0 {
		return nil, schemaError("accessor %d has unknown type %q", accIdx, acc.Type)
	}
	elemSize := compSize * compCount

	if acc.BufferView == nil {
		// Zero-filled accessor, valid per spec. Synthesize zeroed storage.
		return &accessorView{
			data:     make([]byte, acc.Count*elemSize),
			stride:   elemSize,
			count:    acc.Count,
			compType: acc.ComponentType,
			elemType: acc.Type,
		}, nil
	}

	viewData, err := r.viewBytes(*acc.BufferView)
	if err != nil {
		return nil, err
	}
	view := &r.doc.BufferViews[*acc.BufferView]

	stride := elemSize
	if view.ByteStride != nil && *view.ByteStride > 0 {
		stride = *view.ByteStride
	}
	if acc.ByteOffset < 0 || acc.ByteOffset > len(viewData) {
		return nil, referenceError("accessor %d byte offset %d exceeds bufferView %d length %d",
			accIdx, acc.ByteOffset, *acc.BufferView, len(viewData))
	}
	avail := len(viewData) - acc.ByteOffset
	if acc.Count > 0 {
		need := (acc.Count-1)*stride + elemSize
		if need > avail {
			return nil, referenceError("accessor %d requires %d bytes (count %d) but bufferView %d holds %d",
				accIdx, need, acc.Count, *acc.BufferView, avail)
		}
	}

	return &accessorView{
		data:     viewData[acc.ByteOffset:],
		stride:   stride,
		count:    acc.Count,
		compType: acc.ComponentType,
		elemType: acc.Type,
	}, nil
}

// component decodes component c of element i as a float32, applying
// normalization for normalized integer accessors where the caller wants
// normalized output.
func (v *accessorView) component(i, c int, normalized bool) float32 {
	off := i*v.stride + c*gltfComponentTypeSize(v.compType)
	switch v.compType {
	case gltfComponentTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(v.data[off:]))
	case gltfComponentTypeUnsignedByte:
		u := v.data[off]
		if normalized {
			return float32(u) / 255.0
		}
		return float32(u)
	case gltfComponentTypeByte:
		s := int8(v.data[off])
		if normalized {
			f := float32(s) / 127.0
			if f < -1 {
				f = -1
			}
			return f
		}
		return float32(s)
	case gltfComponentTypeUnsignedShort:
		u := binary.LittleEndian.Uint16(v.data[off:])
		if normalized {
			return float32(u) / 65535.0
		}
		return float32(u)
	case gltfComponentTypeShort:
		s := int16(binary.LittleEndian.Uint16(v.data[off:]))
		if normalized {
			f := float32(s) / 32767.0
			if f < -1 {
				f = -1
			}
			return f
		}
		return float32(s)
	case gltfComponentTypeUnsignedInt:
		return float32(binary.LittleEndian.Uint32(v.data[off:]))
	}
	return 0
}

// uintComponent decodes component c of element i as an unsigned integer.
func (v *accessorView) uintComponent(i, c int) uint32 {
	off := i*v.stride + c*gltfComponentTypeSize(v.compType)
	switch v.compType {
	case gltfComponentTypeUnsignedByte:
		return uint32(v.data[off])
	case gltfComponentTypeUnsignedShort:
		return uint32(binary.LittleEndian.Uint16(v.data[off:]))
	case gltfComponentTypeUnsignedInt:
		return binary.LittleEndian.Uint32(v.data[off:])
	}
	return 0
}

// readScalars reads a SCALAR accessor as float32 values.
func (r *accessorReader) readScalars(accIdx int) ([]float32, error) {
	v, err := r.open(accIdx)
	if err != nil {
		return nil, err
	}
	out := make([]float32, v.count)
	for i := range out {
		out[i] = v.component(i, 0, true)
	}
	return out, nil
}

// readVec2 reads a VEC2 accessor as [2]float32 values.
func (r *accessorReader) readVec2(accIdx int) ([][2]float32, error) {
	v, err := r.open(accIdx)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, v.count)
	for i := range out {
		out[i] = [2]float32{v.component(i, 0, true), v.component(i, 1, true)}
	}
	return out, nil
}

// readVec3 reads a VEC3 accessor as [3]float32 values.
func (r *accessorReader) readVec3(accIdx int) ([][3]float32, error) {
	v, err := r.open(accIdx)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, v.count)
	for i := range out {
		out[i] = [3]float32{v.component(i, 0, true), v.component(i, 1, true), v.component(i, 2, true)}
	}
	return out, nil
}

// readVec4 reads a VEC4 accessor as [4]float32 values. VEC3 accessors are
// widened with w defaulting to the given fill value, which accommodates RGB
// vertex colors.
func (r *accessorReader) readVec4(accIdx int, wFill float32) ([][4]float32, error) {
	v, err := r.open(accIdx)
	if err != nil {
		return nil, err
	}
	comps := gltfAccessorTypeComponentCount(v.elemType)
	if comps != 3 && comps != 4 {
		return nil, schemaError("accessor %d has type %q, expected VEC3 or VEC4", accIdx, v.elemType)
	}
	out := make([][4]float32, v.count)
	for i := range out {
		out[i] = [4]float32{v.component(i, 0, true), v.component(i, 1, true), v.component(i, 2, true), wFill}
		if comps == 4 {
			out[i][3] = v.component(i, 3, true)
		}
	}
	return out, nil
}

// readIndices reads a SCALAR index accessor, widening to uint32.
func (r *accessorReader) readIndices(accIdx int) ([]uint32, error) {
	v, err := r.open(accIdx)
	if err != nil {
		return nil, err
	}
	switch v.compType {
	case gltfComponentTypeUnsignedByte, gltfComponentTypeUnsignedShort, gltfComponentTypeUnsignedInt:
	default:
		return nil, schemaError("accessor %d has component type %d, expected an unsigned index type", accIdx, v.compType)
	}
	out := make([]uint32, v.count)
	for i := range out {
		out[i] = v.uintComponent(i, 0)
	}
	return out, nil
}

// readJoints reads a VEC4 joint-index accessor as [4]uint16 values.
func (r *accessorReader) readJoints(accIdx int) ([][4]uint16, error) {
	v, err := r.open(accIdx)
	if err != nil {
		return nil, err
	}
	out := make([][4]uint16, v.count)
	for i := range out {
		for c := 0; c < 4; c++ {
			out[i][c] = uint16(v.uintComponent(i, c))
		}
	}
	return out, nil
}

// readMat4 reads a MAT4 accessor as column-major [16]float32 values.
func (r *accessorReader) readMat4(accIdx int) ([][16]float32, error) {
	v, err := r.open(accIdx)
	if err != nil {
		return nil, err
	}
	if v.elemType != gltfAccessorTypeMat4 {
		return nil, schemaError("accessor %d has type %q, expected MAT4", accIdx, v.elemType)
	}
	out := make([][16]float32, v.count)
	for i := range out {
		for c := 0; c < 16; c++ {
			out[i][c] = v.component(i, c, false)
		}
	}
	return out, nil
}
