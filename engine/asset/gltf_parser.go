// gltf_parser.go parses the glTF JSON document into its intermediate
// representation, validates every cross-reference, and resolves buffer bytes
// from their three possible sources.
package asset

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
)

// FileSource loads raw bytes for external buffer and image URIs. The
// default implementation reads from the local file system; tests and
// embedded-resource callers can substitute their own.
type FileSource interface {
	// ReadAll reads the entire contents of the named file.
	//
	// Parameters:
	//   - path: the path to read
	//
	// Returns:
	//   - []byte: the file contents
	//   - error: error if reading fails
	ReadAll(path string) ([]byte, error)
}

type osFileSource struct{}

var _ FileSource = osFileSource{}

// NewOSFileSource returns a FileSource backed by the local file system.
//
// Returns:
//   - FileSource: the file source
func NewOSFileSource() FileSource {
	return osFileSource{}
}

func (osFileSource) ReadAll(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// --- Document parsing ---

// parseDocument unmarshals and validates a glTF JSON document. Buffer bytes
// are not loaded here; see resolveBuffers.
func parseDocument(jsonData []byte) (*gltfDocument, error) {
	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, wrapFormat(err, "failed to parse glTF JSON")
	}

	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, formatErr(errInvalidGLTFVersion)
	}

	if err := validateDocument(&doc); err != nil {
		return nil, err
	}

	return &doc, nil
}

// validateDocument range-checks every cross-reference in the document so
// downstream stages can index without re-checking.
func validateDocument(doc *gltfDocument) error {
	if len(doc.ExtensionsRequired) > 0 {
		return contentErrf("unsupported required extensions: %v", doc.ExtensionsRequired)
	}

	for i, bv := range doc.BufferViews {
		if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
			return boundsErrf("bufferView %d references invalid buffer %d", i, bv.Buffer)
		}
		if bv.ByteOffset < 0 || bv.ByteLength < 0 {
			return boundsErrf("bufferView %d has negative offset or length", i)
		}
		if bv.ByteOffset+bv.ByteLength > doc.Buffers[bv.Buffer].ByteLength {
			return boundsErrf("bufferView %d exceeds buffer %d declared length", i, bv.Buffer)
		}
	}

	for i, acc := range doc.Accessors {
		if acc.Sparse != nil {
			return &DecodeError{Kind: KindFormat, msg: fmt.Sprintf("accessor %d", i), err: errSparseAccessor}
		}
		if acc.Count < 0 {
			return formatErrf("accessor %d has negative count", i)
		}
		if _, err := parseComponentKind(acc.ComponentType); err != nil {
			return wrapFormat(err, "accessor %d", i)
		}
		if _, err := parseElementKind(acc.Type); err != nil {
			return wrapFormat(err, "accessor %d", i)
		}
		if acc.BufferView != nil && (*acc.BufferView < 0 || *acc.BufferView >= len(doc.BufferViews)) {
			return boundsErrf("accessor %d references invalid bufferView %d", i, *acc.BufferView)
		}
	}

	for i, mesh := range doc.Meshes {
		for j, prim := range mesh.Primitives {
			for semantic, accIndex := range prim.Attributes {
				if accIndex < 0 || accIndex >= len(doc.Accessors) {
					return boundsErrf("mesh %d primitive %d attribute %s references invalid accessor %d", i, j, semantic, accIndex)
				}
			}
			if prim.Indices != nil && (*prim.Indices < 0 || *prim.Indices >= len(doc.Accessors)) {
				return boundsErrf("mesh %d primitive %d references invalid index accessor %d", i, j, *prim.Indices)
			}
			if prim.Material != nil && (*prim.Material < 0 || *prim.Material >= len(doc.Materials)) {
				return boundsErrf("mesh %d primitive %d references invalid material %d", i, j, *prim.Material)
			}
		}
	}

	for i, node := range doc.Nodes {
		if node.Matrix != nil && (node.Translation != nil || node.Rotation != nil || node.Scale != nil) {
			return formatErrf("node %d declares both matrix and TRS transforms", i)
		}
		for _, child := range node.Children {
			if child < 0 || child >= len(doc.Nodes) {
				return boundsErrf("node %d references invalid child %d", i, child)
			}
		}
		if node.Mesh != nil && (*node.Mesh < 0 || *node.Mesh >= len(doc.Meshes)) {
			return boundsErrf("node %d references invalid mesh %d", i, *node.Mesh)
		}
		if node.Camera != nil && (*node.Camera < 0 || *node.Camera >= len(doc.Cameras)) {
			return boundsErrf("node %d references invalid camera %d", i, *node.Camera)
		}
		if node.Skin != nil && (*node.Skin < 0 || *node.Skin >= len(doc.Skins)) {
			return boundsErrf("node %d references invalid skin %d", i, *node.Skin)
		}
	}

	if doc.Scene != nil && (*doc.Scene < 0 || *doc.Scene >= len(doc.Scenes)) {
		return boundsErrf("default scene index %d out of range", *doc.Scene)
	}
	for i, sc := range doc.Scenes {
		for _, n := range sc.Nodes {
			if n < 0 || n >= len(doc.Nodes) {
				return boundsErrf("scene %d references invalid node %d", i, n)
			}
		}
	}

	for i, tex := range doc.Textures {
		if tex.Source != nil && (*tex.Source < 0 || *tex.Source >= len(doc.Images)) {
			return boundsErrf("texture %d references invalid image %d", i, *tex.Source)
		}
		if tex.Sampler != nil && (*tex.Sampler < 0 || *tex.Sampler >= len(doc.Samplers)) {
			return boundsErrf("texture %d references invalid sampler %d", i, *tex.Sampler)
		}
	}
	for i, img := range doc.Images {
		if img.BufferView != nil && (*img.BufferView < 0 || *img.BufferView >= len(doc.BufferViews)) {
			return boundsErrf("image %d references invalid bufferView %d", i, *img.BufferView)
		}
	}
	for i, mat := range doc.Materials {
		if err := validateMaterialRefs(i, &mat, len(doc.Textures)); err != nil {
			return err
		}
	}

	for i, skin := range doc.Skins {
		for _, joint := range skin.Joints {
			if joint < 0 || joint >= len(doc.Nodes) {
				return boundsErrf("skin %d references invalid joint node %d", i, joint)
			}
		}
		if skin.InverseBindMatrices != nil && (*skin.InverseBindMatrices < 0 || *skin.InverseBindMatrices >= len(doc.Accessors)) {
			return boundsErrf("skin %d references invalid inverse-bind accessor %d", i, *skin.InverseBindMatrices)
		}
	}

	for i, anim := range doc.Animations {
		for j, sampler := range anim.Samplers {
			if sampler.Input < 0 || sampler.Input >= len(doc.Accessors) {
				return boundsErrf("animation %d sampler %d references invalid input accessor %d", i, j, sampler.Input)
			}
			if sampler.Output < 0 || sampler.Output >= len(doc.Accessors) {
				return boundsErrf("animation %d sampler %d references invalid output accessor %d", i, j, sampler.Output)
			}
		}
		for j, ch := range anim.Channels {
			if ch.Sampler < 0 || ch.Sampler >= len(anim.Samplers) {
				return boundsErrf("animation %d channel %d references invalid sampler %d", i, j, ch.Sampler)
			}
			if ch.Target.Node != nil && (*ch.Target.Node < 0 || *ch.Target.Node >= len(doc.Nodes)) {
				return boundsErrf("animation %d channel %d targets invalid node %d", i, j, *ch.Target.Node)
			}
		}
	}

	return nil
}

func validateMaterialRefs(i int, mat *gltfMaterial, textureCount int) error {
	check := func(info *gltfTextureInfo, slot string) error {
		if info != nil && (info.Index < 0 || info.Index >= textureCount) {
			return boundsErrf("material %d %s references invalid texture %d", i, slot, info.Index)
		}
		return nil
	}
	if pbr := mat.PbrMetallicRoughness; pbr != nil {
		if err := check(pbr.BaseColorTexture, "baseColorTexture"); err != nil {
			return err
		}
		if err := check(pbr.MetallicRoughnessTexture, "metallicRoughnessTexture"); err != nil {
			return err
		}
	}
	if mat.NormalTexture != nil {
		if err := check(&mat.NormalTexture.gltfTextureInfo, "normalTexture"); err != nil {
			return err
		}
	}
	if mat.OcclusionTexture != nil {
		if err := check(&mat.OcclusionTexture.gltfTextureInfo, "occlusionTexture"); err != nil {
			return err
		}
	}
	return check(mat.EmissiveTexture, "emissiveTexture")
}

// --- Buffer resolution ---

// bufferSource records where a buffer's bytes came from, so teardown and
// debugging do not need per-buffer special-casing.
type bufferSource int

const (
	// bufferSourceGLB means the bytes are a view into the GLB binary chunk.
	bufferSourceGLB bufferSource = iota

	// bufferSourceDataURI means the bytes were base64-decoded from a data URI.
	bufferSourceDataURI

	// bufferSourceExternal means the bytes were read from an external file.
	bufferSourceExternal
)

// bufferSlot is one resolved buffer: its bytes and their provenance.
type bufferSlot struct {
	data   []byte
	source bufferSource
}

// resolveBuffers loads the bytes for every declared buffer. Buffer 0 with no
// URI binds to the GLB binary chunk; data URIs are base64-decoded; everything
// else is read through the FileSource relative to baseDir.
func resolveBuffers(doc *gltfDocument, glbBin []byte, baseDir string, fs FileSource) ([]bufferSlot, error) {
	slots := make([]bufferSlot, len(doc.Buffers))

	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "":
			if i != 0 || glbBin == nil {
				return nil, contentErrf("buffer %d has no URI and no GLB binary chunk", i)
			}
			slots[i] = bufferSlot{data: glbBin, source: bufferSourceGLB}

		case strings.HasPrefix(buf.URI, "data:"):
			data, err := decodeDataURI(buf.URI)
			if err != nil {
				return nil, wrapFormat(err, "buffer %d", i)
			}
			slots[i] = bufferSlot{data: data, source: bufferSourceDataURI}

		default:
			data, err := fs.ReadAll(filepath.Join(baseDir, buf.URI))
			if err != nil {
				return nil, ioErr(fmt.Sprintf("failed to load buffer file %q", buf.URI), err)
			}
			slots[i] = bufferSlot{data: data, source: bufferSourceExternal}
		}

		if len(slots[i].data) < buf.ByteLength {
			return nil, &DecodeError{Kind: KindBounds, msg: fmt.Sprintf("buffer %d", i), err: errBufferSizeMismatch}
		}
	}

	return slots, nil
}

// decodeDataURI decodes a base64 data URI into a fresh allocation.
// Format: data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errInvalidBufferURI
	}

	header := uri[5:commaIdx]
	dataStr := uri[commaIdx+1:]

	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", header)
	}

	data, err := base64.StdEncoding.DecodeString(dataStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	return data, nil
}
