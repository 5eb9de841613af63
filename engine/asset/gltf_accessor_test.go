package asset

import (
	"math"
	"testing"
)

// newTestDecoder builds a decoder over a single buffer with one bufferView
// covering the whole buffer.
func newTestDecoder(data []byte, stride *int, accessors ...gltfAccessor) *accessorDecoder {
	bv := 0
	for i := range accessors {
		if accessors[i].BufferView == nil {
			accessors[i].BufferView = &bv
		}
	}
	doc := &gltfDocument{
		Accessors: accessors,
		BufferViews: []gltfBufferView{
			{Buffer: 0, ByteOffset: 0, ByteLength: len(data), ByteStride: stride},
		},
		Buffers: []gltfBuffer{{ByteLength: len(data)}},
	}
	return &accessorDecoder{
		doc:     doc,
		buffers: []bufferSlot{{data: data, source: bufferSourceExternal}},
	}
}

func TestReadVec3Floats(t *testing.T) {
	data := floatBytes(1, 2, 3, 4, 5, 6)
	dec := newTestDecoder(data, nil, gltfAccessor{ComponentType: 5126, Count: 2, Type: "VEC3"})

	got, err := dec.ReadVec3(0)
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d elements, want 2", len(got))
	}
	if got[0] != [3]float32{1, 2, 3} || got[1] != [3]float32{4, 5, 6} {
		t.Fatalf("unexpected values: %v", got)
	}
}

func TestReadVec3Strided(t *testing.T) {
	// Two vec3 elements interleaved with 4 bytes of padding each.
	data := append(floatBytes(1, 2, 3, 99), floatBytes(4, 5, 6, 99)...)
	stride := 16
	dec := newTestDecoder(data, &stride, gltfAccessor{ComponentType: 5126, Count: 2, Type: "VEC3"})

	got, err := dec.ReadVec3(0)
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	if got[1] != [3]float32{4, 5, 6} {
		t.Fatalf("strided read wrong: %v", got[1])
	}
}

func TestNormalizationRoundTripUnsignedByte(t *testing.T) {
	// Encode f in [0,1] as u8 normalized; decoding must reproduce f within 1/255.
	for _, f := range []float32{0, 0.25, 0.5, 0.75, 1} {
		encoded := byte(math.Round(float64(f) * 255))
		dec := newTestDecoder([]byte{encoded}, nil,
			gltfAccessor{ComponentType: 5121, Normalized: true, Count: 1, Type: "SCALAR"})

		got, err := dec.ReadScalarFloats(0)
		if err != nil {
			t.Fatalf("ReadScalarFloats failed: %v", err)
		}
		if diff := math.Abs(float64(got[0] - f)); diff > 1.0/255 {
			t.Fatalf("u8 round trip for %v: got %v (diff %v)", f, got[0], diff)
		}
	}
}

func TestNormalizationRoundTripSignedShort(t *testing.T) {
	for _, f := range []float32{-1, -0.5, 0, 0.5, 1} {
		encoded := int16(math.Round(float64(f) * 32767))
		dec := newTestDecoder(uint16Bytes(uint16(encoded)), nil,
			gltfAccessor{ComponentType: 5122, Normalized: true, Count: 1, Type: "SCALAR"})

		got, err := dec.ReadScalarFloats(0)
		if err != nil {
			t.Fatalf("ReadScalarFloats failed: %v", err)
		}
		if diff := math.Abs(float64(got[0] - f)); diff > 1.0/32767 {
			t.Fatalf("i16 round trip for %v: got %v (diff %v)", f, got[0], diff)
		}
	}
}

func TestNormalizedSignedByteClampsAtMinusOne(t *testing.T) {
	// -128/127 would undershoot -1; the decoder clamps.
	dec := newTestDecoder([]byte{0x80}, nil,
		gltfAccessor{ComponentType: 5120, Normalized: true, Count: 1, Type: "SCALAR"})

	got, err := dec.ReadScalarFloats(0)
	if err != nil {
		t.Fatalf("ReadScalarFloats failed: %v", err)
	}
	if got[0] != -1 {
		t.Fatalf("got %v, want -1", got[0])
	}
}

func TestAccessorRangeExceedsBuffer(t *testing.T) {
	data := floatBytes(1, 2, 3) // room for one vec3
	dec := newTestDecoder(data, nil, gltfAccessor{ComponentType: 5126, Count: 2, Type: "VEC3"})

	_, err := dec.ReadVec3(0)
	wantKind(t, err, KindBounds)
}

func TestAccessorCountMatchesDecodedLength(t *testing.T) {
	data := floatBytes(1, 2, 3, 4, 5, 6, 7, 8)
	dec := newTestDecoder(data, nil, gltfAccessor{ComponentType: 5126, Count: 4, Type: "VEC2"})

	got, err := dec.ReadVec2(0)
	if err != nil {
		t.Fatalf("ReadVec2 failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("decoded %d elements, want 4", len(got))
	}
}

func TestAccessorTypeMismatch(t *testing.T) {
	data := floatBytes(1, 2, 3)
	dec := newTestDecoder(data, nil, gltfAccessor{ComponentType: 5126, Count: 1, Type: "VEC3"})

	_, err := dec.ReadVec2(0)
	wantKind(t, err, KindBounds)
}

func TestAccessorWithoutBufferViewDecodesZeros(t *testing.T) {
	doc := &gltfDocument{
		Accessors: []gltfAccessor{{ComponentType: 5126, Count: 3, Type: "VEC3"}},
	}
	dec := &accessorDecoder{doc: doc}

	got, err := dec.ReadVec3(0)
	if err != nil {
		t.Fatalf("ReadVec3 failed: %v", err)
	}
	for i, v := range got {
		if v != [3]float32{} {
			t.Fatalf("element %d = %v, want zeros", i, v)
		}
	}
}

func TestReadIndicesWidths(t *testing.T) {
	tests := []struct {
		name          string
		componentType int
		data          []byte
	}{
		{"u8", 5121, []byte{0, 1, 2}},
		{"u16", 5123, uint16Bytes(0, 1, 2)},
		{"u32", 5125, []byte{0, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := newTestDecoder(tt.data, nil,
				gltfAccessor{ComponentType: tt.componentType, Count: 3, Type: "SCALAR"})

			got, err := dec.ReadIndices(0)
			if err != nil {
				t.Fatalf("ReadIndices failed: %v", err)
			}
			for i, v := range got {
				if v != uint32(i) {
					t.Fatalf("index %d = %d", i, v)
				}
			}
		})
	}
}

func TestReadIndicesRejectsSignedComponents(t *testing.T) {
	dec := newTestDecoder([]byte{0, 1, 2}, nil,
		gltfAccessor{ComponentType: 5120, Count: 3, Type: "SCALAR"})

	_, err := dec.ReadIndices(0)
	wantKind(t, err, KindBounds)
}

func TestReadJoints(t *testing.T) {
	dec := newTestDecoder([]byte{1, 2, 3, 4}, nil,
		gltfAccessor{ComponentType: 5121, Count: 1, Type: "VEC4"})

	got, err := dec.ReadJoints(0)
	if err != nil {
		t.Fatalf("ReadJoints failed: %v", err)
	}
	if got[0] != [4]uint32{1, 2, 3, 4} {
		t.Fatalf("joints = %v", got[0])
	}
}

func TestReadMat4(t *testing.T) {
	vals := make([]float32, 16)
	for i := range vals {
		vals[i] = float32(i)
	}
	dec := newTestDecoder(floatBytes(vals...), nil,
		gltfAccessor{ComponentType: 5126, Count: 1, Type: "MAT4"})

	got, err := dec.ReadMat4(0)
	if err != nil {
		t.Fatalf("ReadMat4 failed: %v", err)
	}
	for i := 0; i < 16; i++ {
		if got[0][i] != float32(i) {
			t.Fatalf("mat4[%d] = %v", i, got[0][i])
		}
	}
}
