package asset

import (
	"math"
	"testing"
)

// multiDecoder builds a decoder where accessor i reads from its own buffer
// through its own bufferView.
func multiDecoder(datas [][]byte, accessors []gltfAccessor) *accessorDecoder {
	doc := &gltfDocument{Accessors: accessors}
	buffers := make([]bufferSlot, len(datas))
	for i, data := range datas {
		bv := i
		doc.Accessors[i].BufferView = &bv
		doc.BufferViews = append(doc.BufferViews, gltfBufferView{Buffer: i, ByteLength: len(data)})
		doc.Buffers = append(doc.Buffers, gltfBuffer{ByteLength: len(data)})
		buffers[i] = bufferSlot{data: data, source: bufferSourceExternal}
	}
	return &accessorDecoder{doc: doc, buffers: buffers}
}

var triPositions = floatBytes(
	0, 0, 0,
	1, 0, 0,
	0, 1, 0,
)

func TestExtractPrimitiveSynthesizesIndices(t *testing.T) {
	dec := multiDecoder(
		[][]byte{triPositions},
		[]gltfAccessor{{ComponentType: 5126, Count: 3, Type: "VEC3"}},
	)
	prim := &gltfPrimitive{Attributes: map[string]int{attrPosition: 0}}

	mesh, err := extractPrimitive(dec, "tri", 0, prim)
	if err != nil {
		t.Fatalf("extractPrimitive failed: %v", err)
	}
	if len(mesh.Indices) != 3 {
		t.Fatalf("got %d indices, want 3", len(mesh.Indices))
	}
	for i, idx := range mesh.Indices {
		if idx != uint32(i) {
			t.Fatalf("index %d = %d, want %d", i, idx, i)
		}
	}
}

func TestExtractPrimitiveGeneratesNormals(t *testing.T) {
	dec := multiDecoder(
		[][]byte{triPositions},
		[]gltfAccessor{{ComponentType: 5126, Count: 3, Type: "VEC3"}},
	)
	prim := &gltfPrimitive{Attributes: map[string]int{attrPosition: 0}}

	mesh, err := extractPrimitive(dec, "tri", 0, prim)
	if err != nil {
		t.Fatalf("extractPrimitive failed: %v", err)
	}
	for i, v := range mesh.Vertices {
		n := v.Normal
		length := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1] + n[2]*n[2]))
		if math.Abs(length-1) > 1e-5 {
			t.Fatalf("vertex %d normal %v has length %v, want 1", i, n, length)
		}
		if n != [3]float32{0, 0, 1} {
			t.Fatalf("vertex %d normal = %v, want +Z face normal", i, n)
		}
	}
}

func TestGenerateNormalsDegenerateTriangle(t *testing.T) {
	// All three vertices coincide; the face normal is zero so the fallback
	// up vector applies.
	positions := [][3]float32{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	normals := generateNormals(positions, []uint32{0, 1, 2})

	for i, n := range normals {
		if n != [3]float32{0, 1, 0} {
			t.Fatalf("vertex %d normal = %v, want up vector", i, n)
		}
	}
}

func TestExtractPrimitiveMissingPosition(t *testing.T) {
	dec := multiDecoder(nil, nil)
	prim := &gltfPrimitive{Attributes: map[string]int{}}

	_, err := extractPrimitive(dec, "bad", 0, prim)
	wantKind(t, err, KindContent)
}

func TestExtractPrimitiveRejectsNonTriangleTopology(t *testing.T) {
	dec := multiDecoder(
		[][]byte{triPositions},
		[]gltfAccessor{{ComponentType: 5126, Count: 3, Type: "VEC3"}},
	)
	lines := 1
	prim := &gltfPrimitive{
		Attributes: map[string]int{attrPosition: 0},
		Mode:       &lines,
	}

	_, err := extractPrimitive(dec, "lines", 0, prim)
	wantKind(t, err, KindContent)
}

func TestExtractPrimitiveIndexOutOfRange(t *testing.T) {
	idx := 1
	dec := multiDecoder(
		[][]byte{triPositions, uint16Bytes(0, 1, 9)},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 3, Type: "VEC3"},
			{ComponentType: 5123, Count: 3, Type: "SCALAR"},
		},
	)
	prim := &gltfPrimitive{
		Attributes: map[string]int{attrPosition: 0},
		Indices:    &idx,
	}

	_, err := extractPrimitive(dec, "bad", 0, prim)
	wantKind(t, err, KindBounds)
}

func TestExtractPrimitiveShortAttributesFallBack(t *testing.T) {
	// UV and color arrays cover only the first vertex; the rest default.
	dec := multiDecoder(
		[][]byte{triPositions, floatBytes(0.5, 0.5), floatBytes(1, 0, 0)},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 3, Type: "VEC3"},
			{ComponentType: 5126, Count: 1, Type: "VEC2"},
			{ComponentType: 5126, Count: 1, Type: "VEC3"},
		},
	)
	prim := &gltfPrimitive{Attributes: map[string]int{
		attrPosition: 0,
		attrTexCoord: 1,
		attrColor:    2,
	}}

	mesh, err := extractPrimitive(dec, "tri", 0, prim)
	if err != nil {
		t.Fatalf("extractPrimitive failed: %v", err)
	}
	if mesh.Vertices[0].TexCoord != [2]float32{0.5, 0.5} {
		t.Fatalf("vertex 0 uv = %v", mesh.Vertices[0].TexCoord)
	}
	if mesh.Vertices[2].TexCoord != [2]float32{0, 0} {
		t.Fatalf("vertex 2 uv = %v, want zero default", mesh.Vertices[2].TexCoord)
	}
	// The VEC3 color picks up an opaque alpha.
	if mesh.Vertices[0].Color != [4]float32{1, 0, 0, 1} {
		t.Fatalf("vertex 0 color = %v", mesh.Vertices[0].Color)
	}
	if mesh.Vertices[2].Color != [4]float32{1, 1, 1, 1} {
		t.Fatalf("vertex 2 color = %v, want white default", mesh.Vertices[2].Color)
	}
}

func TestExtractPrimitiveSkinningAttributes(t *testing.T) {
	dec := multiDecoder(
		[][]byte{
			floatBytes(0, 0, 0),
			{1, 2, 3, 4},
			floatBytes(0.4, 0.3, 0.2, 0.1),
		},
		[]gltfAccessor{
			{ComponentType: 5126, Count: 1, Type: "VEC3"},
			{ComponentType: 5121, Count: 1, Type: "VEC4"},
			{ComponentType: 5126, Count: 1, Type: "VEC4"},
		},
	)
	prim := &gltfPrimitive{Attributes: map[string]int{
		attrPosition: 0,
		attrJoints:   1,
		attrWeights:  2,
	}}

	mesh, err := extractPrimitive(dec, "skinned", 0, prim)
	if err != nil {
		t.Fatalf("extractPrimitive failed: %v", err)
	}
	if mesh.Vertices[0].Joints != [4]uint32{1, 2, 3, 4} {
		t.Fatalf("joints = %v", mesh.Vertices[0].Joints)
	}
	if mesh.Vertices[0].Weights != [4]float32{0.4, 0.3, 0.2, 0.1} {
		t.Fatalf("weights = %v", mesh.Vertices[0].Weights)
	}
}

func TestExtractPrimitiveBoundsAndMaterial(t *testing.T) {
	dec := multiDecoder(
		[][]byte{triPositions},
		[]gltfAccessor{{ComponentType: 5126, Count: 3, Type: "VEC3"}},
	)

	mesh, err := extractPrimitive(dec, "tri", 0, &gltfPrimitive{
		Attributes: map[string]int{attrPosition: 0},
	})
	if err != nil {
		t.Fatalf("extractPrimitive failed: %v", err)
	}
	if mesh.MaterialIndex != -1 {
		t.Fatalf("material index = %d, want -1 for no material", mesh.MaterialIndex)
	}
	if mesh.BoundingMin != [3]float32{0, 0, 0} || mesh.BoundingMax != [3]float32{1, 1, 0} {
		t.Fatalf("bounds = %v, %v", mesh.BoundingMin, mesh.BoundingMax)
	}

	mat := 2
	mesh, err = extractPrimitive(dec, "tri", 0, &gltfPrimitive{
		Attributes: map[string]int{attrPosition: 0},
		Material:   &mat,
	})
	if err != nil {
		t.Fatalf("extractPrimitive failed: %v", err)
	}
	if mesh.MaterialIndex != 2 {
		t.Fatalf("material index = %d, want 2", mesh.MaterialIndex)
	}
}
