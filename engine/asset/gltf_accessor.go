// gltf_accessor.go decodes typed, normalized element sequences out of
// resolved buffer bytes. The decoder holds no mutable state and is safe to
// call concurrently over the same immutable buffers.
package asset

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// componentKind is the closed set of accessor component types.
type componentKind int

const (
	compByte componentKind = iota
	compUnsignedByte
	compShort
	compUnsignedShort
	compUnsignedInt
	compFloat
)

// parseComponentKind validates a raw componentType code.
func parseComponentKind(componentType int) (componentKind, error) {
	switch componentType {
	case 5120:
		return compByte, nil
	case 5121:
		return compUnsignedByte, nil
	case 5122:
		return compShort, nil
	case 5123:
		return compUnsignedShort, nil
	case 5125:
		return compUnsignedInt, nil
	case 5126:
		return compFloat, nil
	default:
		return 0, formatErrf("unknown accessor component type %d", componentType)
	}
}

// size returns the byte width of one component.
func (c componentKind) size() int {
	switch c {
	case compByte, compUnsignedByte:
		return 1
	case compShort, compUnsignedShort:
		return 2
	default:
		return 4
	}
}

// elementKind is the closed set of accessor element types.
type elementKind int

const (
	elemScalar elementKind = iota
	elemVec2
	elemVec3
	elemVec4
	elemMat2
	elemMat3
	elemMat4
)

// parseElementKind validates a raw accessor type string.
func parseElementKind(accessorType string) (elementKind, error) {
	switch accessorType {
	case "SCALAR":
		return elemScalar, nil
	case "VEC2":
		return elemVec2, nil
	case "VEC3":
		return elemVec3, nil
	case "VEC4":
		return elemVec4, nil
	case "MAT2":
		return elemMat2, nil
	case "MAT3":
		return elemMat3, nil
	case "MAT4":
		return elemMat4, nil
	default:
		return 0, formatErrf("unknown accessor element type %q", accessorType)
	}
}

// componentCount returns the number of components per element.
func (e elementKind) componentCount() int {
	switch e {
	case elemScalar:
		return 1
	case elemVec2:
		return 2
	case elemVec3:
		return 3
	case elemVec4, elemMat2:
		return 4
	case elemMat3:
		return 9
	default:
		return 16
	}
}

// accessorDecoder reads typed element sequences from resolved buffers.
type accessorDecoder struct {
	doc     *gltfDocument
	buffers []bufferSlot
}

// elementRange resolves an accessor's byte layout and bounds-checks the full
// read range against the owning buffer view before any element is touched.
// An out-of-range accessor is a bounds error, never a partial read.
func (d *accessorDecoder) elementRange(acc *gltfAccessor) (data []byte, stride, elemSize int, err error) {
	comp, _ := parseComponentKind(acc.ComponentType)
	elem, _ := parseElementKind(acc.Type)
	elemSize = comp.size() * elem.componentCount()

	if acc.BufferView == nil {
		return nil, elemSize, elemSize, nil
	}

	bv := &d.doc.BufferViews[*acc.BufferView]
	stride = elemSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	if acc.Count > 0 {
		lastEnd := acc.ByteOffset + (acc.Count-1)*stride + elemSize
		if acc.ByteOffset < 0 || lastEnd > bv.ByteLength {
			return nil, 0, 0, boundsErrf("accessor range [%d, %d) exceeds bufferView length %d", acc.ByteOffset, lastEnd, bv.ByteLength)
		}
	}

	buf := d.buffers[bv.Buffer].data
	return buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], stride, elemSize, nil
}

// readComponent decodes one component at the given offset, applying
// fixed-point normalization when requested. The signed normalized mapping
// clamps at -1.0 per the format's rescaling rule.
func readComponent(data []byte, offset int, comp componentKind, normalized bool) float32 {
	switch comp {
	case compByte:
		v := int8(data[offset])
		if normalized {
			f := float32(v) / 127.0
			if f < -1 {
				f = -1
			}
			return f
		}
		return float32(v)
	case compUnsignedByte:
		v := data[offset]
		if normalized {
			return float32(v) / 255.0
		}
		return float32(v)
	case compShort:
		v := int16(binary.LittleEndian.Uint16(data[offset:]))
		if normalized {
			f := float32(v) / 32767.0
			if f < -1 {
				f = -1
			}
			return f
		}
		return float32(v)
	case compUnsignedShort:
		v := binary.LittleEndian.Uint16(data[offset:])
		if normalized {
			return float32(v) / 65535.0
		}
		return float32(v)
	case compUnsignedInt:
		v := binary.LittleEndian.Uint32(data[offset:])
		if normalized {
			return float32(float64(v) / 4294967295.0)
		}
		return float32(v)
	default:
		return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
	}
}

// readFloats decodes an accessor into a freshly allocated flat float array
// of count*componentCount values, converting and normalizing each component.
// An accessor without a bufferView decodes to zeros per the format.
func (d *accessorDecoder) readFloats(accessorIndex int) ([]float32, error) {
	acc := &d.doc.Accessors[accessorIndex]
	comp, _ := parseComponentKind(acc.ComponentType)
	elem, _ := parseElementKind(acc.Type)
	compCount := elem.componentCount()

	out := make([]float32, acc.Count*compCount)

	data, stride, _, err := d.elementRange(acc)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return out, nil
	}

	compSize := comp.size()
	for i := 0; i < acc.Count; i++ {
		base := acc.ByteOffset + i*stride
		for c := 0; c < compCount; c++ {
			out[i*compCount+c] = readComponent(data, base+c*compSize, comp, acc.Normalized)
		}
	}

	return out, nil
}

// requireElement checks that an accessor declares the expected element type.
// A mismatch for the requested semantic read is a bounds error.
func (d *accessorDecoder) requireElement(accessorIndex int, want elementKind, semantic string) error {
	acc := &d.doc.Accessors[accessorIndex]
	elem, _ := parseElementKind(acc.Type)
	if elem != want {
		return boundsErrf("%s accessor has element type %s", semantic, acc.Type)
	}
	return nil
}

// ReadVec2 decodes an accessor as vec2 float data.
func (d *accessorDecoder) ReadVec2(accessorIndex int) ([][2]float32, error) {
	if err := d.requireElement(accessorIndex, elemVec2, "vec2"); err != nil {
		return nil, err
	}
	flat, err := d.readFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	out := make([][2]float32, len(flat)/2)
	for i := range out {
		out[i] = [2]float32{flat[i*2], flat[i*2+1]}
	}
	return out, nil
}

// ReadVec3 decodes an accessor as vec3 float data.
func (d *accessorDecoder) ReadVec3(accessorIndex int) ([][3]float32, error) {
	if err := d.requireElement(accessorIndex, elemVec3, "vec3"); err != nil {
		return nil, err
	}
	flat, err := d.readFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	out := make([][3]float32, len(flat)/3)
	for i := range out {
		out[i] = [3]float32{flat[i*3], flat[i*3+1], flat[i*3+2]}
	}
	return out, nil
}

// ReadVec4 decodes an accessor as vec4 float data.
func (d *accessorDecoder) ReadVec4(accessorIndex int) ([][4]float32, error) {
	if err := d.requireElement(accessorIndex, elemVec4, "vec4"); err != nil {
		return nil, err
	}
	flat, err := d.readFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	out := make([][4]float32, len(flat)/4)
	for i := range out {
		out[i] = [4]float32{flat[i*4], flat[i*4+1], flat[i*4+2], flat[i*4+3]}
	}
	return out, nil
}

// ReadScalarFloats decodes an accessor as scalar float data.
func (d *accessorDecoder) ReadScalarFloats(accessorIndex int) ([]float32, error) {
	if err := d.requireElement(accessorIndex, elemScalar, "scalar"); err != nil {
		return nil, err
	}
	return d.readFloats(accessorIndex)
}

// ReadMat4 decodes an accessor as column-major 4x4 matrix data.
func (d *accessorDecoder) ReadMat4(accessorIndex int) ([]mgl32.Mat4, error) {
	if err := d.requireElement(accessorIndex, elemMat4, "mat4"); err != nil {
		return nil, err
	}
	flat, err := d.readFloats(accessorIndex)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Mat4, len(flat)/16)
	for i := range out {
		copy(out[i][:], flat[i*16:(i+1)*16])
	}
	return out, nil
}

// ReadIndices decodes an accessor as index data, widening UNSIGNED_BYTE and
// UNSIGNED_SHORT indices to uint32.
func (d *accessorDecoder) ReadIndices(accessorIndex int) ([]uint32, error) {
	acc := &d.doc.Accessors[accessorIndex]
	if err := d.requireElement(accessorIndex, elemScalar, "index"); err != nil {
		return nil, err
	}

	comp, _ := parseComponentKind(acc.ComponentType)
	switch comp {
	case compUnsignedByte, compUnsignedShort, compUnsignedInt:
	default:
		return nil, boundsErrf("unsupported index component type %d", acc.ComponentType)
	}

	data, stride, _, err := d.elementRange(acc)
	if err != nil {
		return nil, err
	}

	out := make([]uint32, acc.Count)
	if data == nil {
		return out, nil
	}

	for i := 0; i < acc.Count; i++ {
		offset := acc.ByteOffset + i*stride
		switch comp {
		case compUnsignedByte:
			out[i] = uint32(data[offset])
		case compUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(data[offset:]))
		default:
			out[i] = binary.LittleEndian.Uint32(data[offset:])
		}
	}

	return out, nil
}

// ReadJoints decodes an accessor as per-vertex joint indices, widening
// UNSIGNED_BYTE and UNSIGNED_SHORT components to uint32.
func (d *accessorDecoder) ReadJoints(accessorIndex int) ([][4]uint32, error) {
	acc := &d.doc.Accessors[accessorIndex]
	if err := d.requireElement(accessorIndex, elemVec4, "joints"); err != nil {
		return nil, err
	}

	comp, _ := parseComponentKind(acc.ComponentType)
	if comp != compUnsignedByte && comp != compUnsignedShort {
		return nil, boundsErrf("unsupported joints component type %d", acc.ComponentType)
	}

	data, stride, _, err := d.elementRange(acc)
	if err != nil {
		return nil, err
	}

	out := make([][4]uint32, acc.Count)
	if data == nil {
		return out, nil
	}

	compSize := comp.size()
	for i := 0; i < acc.Count; i++ {
		base := acc.ByteOffset + i*stride
		for c := 0; c < 4; c++ {
			if comp == compUnsignedByte {
				out[i][c] = uint32(data[base+c*compSize])
			} else {
				out[i][c] = uint32(binary.LittleEndian.Uint16(data[base+c*compSize:]))
			}
		}
	}

	return out, nil
}
