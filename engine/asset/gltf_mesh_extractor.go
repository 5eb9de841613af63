// gltf_mesh_extractor.go converts one mesh primitive's accessors into an
// engine vertex/index buffer pair, synthesizing missing attributes.
package asset

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/cwahlfeldt/ember-go/engine/model"
)

// Attribute semantics read from primitives.
const (
	attrPosition = "POSITION"
	attrNormal   = "NORMAL"
	attrTangent  = "TANGENT"
	attrTexCoord = "TEXCOORD_0"
	attrColor    = "COLOR_0"
	attrJoints   = "JOINTS_0"
	attrWeights  = "WEIGHTS_0"
)

// extractPrimitive decodes one primitive into a DecodedMesh. Only triangle
// topology is supported; position is mandatory; indices, normals, UVs,
// colors, tangents, and skinning attributes are optional with defaults.
func extractPrimitive(dec *accessorDecoder, meshName string, primIndex int, prim *gltfPrimitive) (model.DecodedMesh, error) {
	var out model.DecodedMesh

	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return out, contentErrf("mesh %q primitive %d has unsupported topology mode %d", meshName, primIndex, *prim.Mode)
	}

	posIndex, ok := prim.Attributes[attrPosition]
	if !ok {
		return out, contentErrf("mesh %q primitive %d has no POSITION attribute", meshName, primIndex)
	}

	positions, err := dec.ReadVec3(posIndex)
	if err != nil {
		return out, err
	}
	vertexCount := len(positions)

	// All downstream code assumes indexed geometry; a non-indexed primitive
	// gets a synthetic sequential index array.
	var indices []uint32
	if prim.Indices != nil {
		indices, err = dec.ReadIndices(*prim.Indices)
		if err != nil {
			return out, err
		}
		for _, idx := range indices {
			if int(idx) >= vertexCount {
				return out, boundsErrf("mesh %q primitive %d index %d exceeds vertex count %d", meshName, primIndex, idx, vertexCount)
			}
		}
	} else {
		indices = make([]uint32, vertexCount)
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	var normals [][3]float32
	if normalIndex, ok := prim.Attributes[attrNormal]; ok {
		normals, err = dec.ReadVec3(normalIndex)
		if err != nil {
			return out, err
		}
	} else {
		normals = generateNormals(positions, indices)
	}

	var uvs [][2]float32
	if uvIndex, ok := prim.Attributes[attrTexCoord]; ok {
		uvs, err = dec.ReadVec2(uvIndex)
		if err != nil {
			return out, err
		}
	}

	colors, err := readColorAttribute(dec, prim)
	if err != nil {
		return out, err
	}

	var tangents [][4]float32
	if tangentIndex, ok := prim.Attributes[attrTangent]; ok {
		tangents, err = dec.ReadVec4(tangentIndex)
		if err != nil {
			return out, err
		}
	}

	var joints [][4]uint32
	var weights [][4]float32
	if jointsIndex, ok := prim.Attributes[attrJoints]; ok {
		joints, err = dec.ReadJoints(jointsIndex)
		if err != nil {
			return out, err
		}
	}
	if weightsIndex, ok := prim.Attributes[attrWeights]; ok {
		weights, err = dec.ReadVec4(weightsIndex)
		if err != nil {
			return out, err
		}
	}

	vertices := make([]model.Vertex, vertexCount)
	for i := range vertices {
		v := &vertices[i]
		v.Position = positions[i]

		// Optional attribute arrays shorter than the vertex count fall back
		// per-vertex rather than erroring.
		if i < len(normals) {
			v.Normal = normals[i]
		} else {
			v.Normal = [3]float32{0, 1, 0}
		}
		if i < len(uvs) {
			v.TexCoord = uvs[i]
		}
		if i < len(colors) {
			v.Color = colors[i]
		} else {
			v.Color = [4]float32{1, 1, 1, 1}
		}
		if i < len(tangents) {
			v.Tangent = tangents[i]
		}
		if i < len(joints) {
			v.Joints = joints[i]
		}
		if i < len(weights) {
			v.Weights = weights[i]
		}
	}

	out.Name = fmt.Sprintf("%s/%d", meshName, primIndex)
	out.Vertices = vertices
	out.Indices = indices
	out.MaterialIndex = -1
	if prim.Material != nil {
		out.MaterialIndex = *prim.Material
	}
	out.BoundingMin, out.BoundingMax = calculateBoundingBox(positions)

	return out, nil
}

// readColorAttribute decodes COLOR_0, which may be VEC3 or VEC4 in any of
// the normalized component encodings. VEC3 colors get an opaque alpha.
func readColorAttribute(dec *accessorDecoder, prim *gltfPrimitive) ([][4]float32, error) {
	colorIndex, ok := prim.Attributes[attrColor]
	if !ok {
		return nil, nil
	}

	acc := &dec.doc.Accessors[colorIndex]
	elem, _ := parseElementKind(acc.Type)

	switch elem {
	case elemVec4:
		return dec.ReadVec4(colorIndex)
	case elemVec3:
		rgb, err := dec.ReadVec3(colorIndex)
		if err != nil {
			return nil, err
		}
		out := make([][4]float32, len(rgb))
		for i, c := range rgb {
			out[i] = [4]float32{c[0], c[1], c[2], 1}
		}
		return out, nil
	default:
		return nil, boundsErrf("color accessor has element type %s", acc.Type)
	}
}

// generateNormals computes flat per-vertex normals: each triangle's face
// normal is accumulated into its three vertices, then each sum is normalized.
// Vertices touched only by degenerate triangles fall back to an up vector.
func generateNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	accum := make([]mgl32.Vec3, len(positions))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		p0 := mgl32.Vec3(positions[i0])
		p1 := mgl32.Vec3(positions[i1])
		p2 := mgl32.Vec3(positions[i2])

		face := p1.Sub(p0).Cross(p2.Sub(p0))
		accum[i0] = accum[i0].Add(face)
		accum[i1] = accum[i1].Add(face)
		accum[i2] = accum[i2].Add(face)
	}

	out := make([][3]float32, len(positions))
	for i, n := range accum {
		if n.Len() < 1e-6 {
			out[i] = [3]float32{0, 1, 0}
			continue
		}
		unit := n.Normalize()
		out[i] = [3]float32{unit.X(), unit.Y(), unit.Z()}
	}

	return out
}

// calculateBoundingBox computes the axis-aligned bounds of a position array.
func calculateBoundingBox(positions [][3]float32) (boundsMin, boundsMax [3]float32) {
	if len(positions) == 0 {
		return
	}

	boundsMin = positions[0]
	boundsMax = positions[0]
	for _, p := range positions[1:] {
		for c := 0; c < 3; c++ {
			if p[c] < boundsMin[c] {
				boundsMin[c] = p[c]
			}
			if p[c] > boundsMax[c] {
				boundsMax[c] = p[c]
			}
		}
	}

	return
}
