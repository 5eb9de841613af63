// gltf_importer.go orchestrates the decode pipeline: container framing,
// document parsing, buffer resolution, then eager mesh, texture, material,
// and camera extraction into a single Asset.
package asset

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/cwahlfeldt/ember-go/engine/model"
)

// wrapStage annotates a stage failure with its pipeline context. The typed
// DecodeError kinds stay reachable through errors.As.
func wrapStage(err error, format string, args ...any) error {
	return errors.Wrapf(err, format, args...)
}

// extractModelName derives a model name from a file path.
func extractModelName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// loadAssetBytes runs the full decode pipeline over raw file bytes. Each
// stage fully completes before the next begins; the first failure aborts
// the remaining stages and no partial Asset is returned. forceGLB routes
// bytes through GLB framing regardless of the magic sniff, so a .glb file
// with a corrupted header fails as a container, not as JSON.
func loadAssetBytes(name string, data []byte, baseDir string, fs FileSource, forceGLB bool) (*Asset, error) {
	var jsonData []byte
	var glbBin []byte

	if forceGLB || isGLB(data) {
		chunks, err := splitGLB(data)
		if err != nil {
			return nil, wrapStage(err, "failed to frame GLB container")
		}
		jsonData = chunks.jsonChunk
		glbBin = chunks.binChunk
	} else {
		jsonData = data
	}

	doc, err := parseDocument(jsonData)
	if err != nil {
		return nil, wrapStage(err, "failed to parse document")
	}

	buffers, err := resolveBuffers(doc, glbBin, baseDir, fs)
	if err != nil {
		return nil, wrapStage(err, "failed to resolve buffers")
	}

	a := &Asset{
		name:          name,
		doc:           doc,
		buffers:       buffers,
		dec:           accessorDecoder{doc: doc, buffers: buffers},
		meshLookup:    make(map[meshPrimKey]int),
		textureLookup: make(map[int]int),
		cameraLookup:  make(map[int]int),
	}

	for meshIndex := range doc.Meshes {
		mesh := &doc.Meshes[meshIndex]
		meshName := mesh.Name
		if meshName == "" {
			meshName = name
		}
		for primIndex := range mesh.Primitives {
			decoded, err := extractPrimitive(&a.dec, meshName, primIndex, &mesh.Primitives[primIndex])
			if err != nil {
				return nil, wrapStage(err, "failed to decode mesh %d primitive %d", meshIndex, primIndex)
			}
			a.meshLookup[meshPrimKey{mesh: meshIndex, primitive: primIndex}] = len(a.meshes)
			a.meshes = append(a.meshes, decoded)
		}
	}

	a.textures, err = extractTextures(doc, buffers, baseDir, fs)
	if err != nil {
		return nil, wrapStage(err, "failed to resolve textures")
	}
	for i := range a.textures {
		a.textureLookup[i] = i
	}

	a.materials, err = extractMaterials(doc)
	if err != nil {
		return nil, wrapStage(err, "failed to resolve materials")
	}

	for camIndex := range doc.Cameras {
		cam := &doc.Cameras[camIndex]
		// Orthographic cameras parse but attach nothing; the render model
		// is perspective-only.
		if cam.Type != "perspective" || cam.Perspective == nil {
			continue
		}
		imported := model.Camera{
			Name: cam.Name,
			FovY: cam.Perspective.Yfov,
			Near: cam.Perspective.Znear,
		}
		if cam.Perspective.Zfar != nil {
			imported.Far = *cam.Perspective.Zfar
		}
		if cam.Perspective.AspectRatio != nil {
			imported.Aspect = *cam.Perspective.AspectRatio
		}
		a.cameraLookup[camIndex] = len(a.cameras)
		a.cameras = append(a.cameras, imported)
	}

	return a, nil
}
