// asset.go defines the Asset aggregate root: the decoded arrays for one
// loaded file, the lookup tables preventing duplicate GPU uploads, and the
// GPU handles owned by the asset.
package asset

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
	"github.com/cwahlfeldt/ember-go/engine/renderer"
)

// meshPrimKey identifies one primitive of one document mesh.
type meshPrimKey struct {
	mesh      int
	primitive int
}

// Asset owns everything decoded from one glTF/GLB file: the document IR,
// resolved buffers, decoded meshes/materials/textures/cameras, and any GPU
// handles created by UploadAll. An Asset is created by a load call and torn
// down as a unit by Release.
type Asset struct {
	mu sync.Mutex

	name string

	doc     *gltfDocument
	buffers []bufferSlot
	dec     accessorDecoder

	meshes     []model.DecodedMesh
	meshLookup map[meshPrimKey]int

	materials []common.ImportedMaterial
	textures  []common.ImportedTexture
	// textureLookup maps document texture index -> decoded texture index.
	textureLookup map[int]int

	cameras []model.Camera
	// cameraLookup maps document camera index -> decoded camera index.
	// Orthographic cameras parse but are not imported, so gaps are expected.
	cameraLookup map[int]int

	uploader       renderer.ResourceUploader
	meshHandles    []renderer.MeshHandle
	textureHandles []renderer.TextureHandle
	released       bool
}

// Name returns the asset's identifier (derived from the source path).
func (a *Asset) Name() string {
	return a.name
}

// Meshes returns the decoded mesh primitives.
func (a *Asset) Meshes() []model.DecodedMesh {
	return a.meshes
}

// Materials returns the decoded materials.
func (a *Asset) Materials() []common.ImportedMaterial {
	return a.materials
}

// Textures returns the decoded textures.
func (a *Asset) Textures() []common.ImportedTexture {
	return a.textures
}

// Cameras returns the imported perspective cameras.
func (a *Asset) Cameras() []model.Camera {
	return a.cameras
}

// SkinCount returns the number of skins in the document.
func (a *Asset) SkinCount() int {
	return len(a.doc.Skins)
}

// AnimationCount returns the number of animations in the document.
func (a *Asset) AnimationCount() int {
	return len(a.doc.Animations)
}

// SceneCount returns the number of scenes in the document.
func (a *Asset) SceneCount() int {
	return len(a.doc.Scenes)
}

// MeshIndex resolves a (mesh, primitive) pair to a decoded mesh index.
//
// Parameters:
//   - meshIndex: the document mesh index
//   - primIndex: the primitive index within that mesh
//
// Returns:
//   - int: the decoded mesh index
//   - bool: true if the pair is known
func (a *Asset) MeshIndex(meshIndex, primIndex int) (int, bool) {
	idx, ok := a.meshLookup[meshPrimKey{mesh: meshIndex, primitive: primIndex}]
	return idx, ok
}

// MeshHandle returns the GPU handle for a decoded mesh index, or zero when
// the asset has not been uploaded.
func (a *Asset) MeshHandle(decodedIndex int) renderer.MeshHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	if decodedIndex < 0 || decodedIndex >= len(a.meshHandles) {
		return 0
	}
	return a.meshHandles[decodedIndex]
}

// TextureHandle returns the GPU handle for a document texture index, or zero
// when unknown or not uploaded.
func (a *Asset) TextureHandle(textureIndex int) renderer.TextureHandle {
	a.mu.Lock()
	defer a.mu.Unlock()
	idx, ok := a.textureLookup[textureIndex]
	if !ok || idx < 0 || idx >= len(a.textureHandles) {
		return 0
	}
	return a.textureHandles[idx]
}

// UploadAll uploads every decoded mesh and texture through the given
// uploader, recording the returned handles on the asset. Already-uploaded
// resources are skipped, so repeated calls never create duplicates. If any
// upload fails, every handle created by this call is released before the
// error propagates.
//
// Parameters:
//   - uploader: the resource uploader to create GPU resources with
//
// Returns:
//   - error: error if any upload fails
func (a *Asset) UploadAll(uploader renderer.ResourceUploader) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return errors.New("asset already released")
	}
	if a.uploader != nil && a.uploader != uploader {
		return errors.New("asset already bound to a different uploader")
	}
	a.uploader = uploader

	if a.meshHandles == nil {
		a.meshHandles = make([]renderer.MeshHandle, len(a.meshes))
	}
	if a.textureHandles == nil {
		a.textureHandles = make([]renderer.TextureHandle, len(a.textures))
	}

	var newMeshes []int
	var newTextures []int

	unwind := func() {
		for _, i := range newMeshes {
			uploader.ReleaseMesh(a.meshHandles[i])
			a.meshHandles[i] = 0
		}
		for _, i := range newTextures {
			uploader.ReleaseTexture(a.textureHandles[i])
			a.textureHandles[i] = 0
		}
	}

	for i := range a.meshes {
		if a.meshHandles[i] != 0 {
			continue
		}
		handle, err := uploader.UploadMesh(a.meshes[i].Name, a.meshes[i].Vertices, a.meshes[i].Indices)
		if err != nil {
			unwind()
			return errors.Wrapf(err, "failed to upload mesh %q", a.meshes[i].Name)
		}
		a.meshHandles[i] = handle
		newMeshes = append(newMeshes, i)
	}

	for i := range a.textures {
		if a.textureHandles[i] != 0 {
			continue
		}
		handle, err := uploader.UploadTexture(a.textures[i])
		if err != nil {
			unwind()
			return errors.Wrapf(err, "failed to upload texture %q", a.textures[i].Name)
		}
		a.textureHandles[i] = handle
		newTextures = append(newTextures, i)
	}

	return nil
}

// Release releases every GPU handle the asset owns through the uploader
// that created it. Safe to call after a partial upload; calling more than
// once is a no-op.
func (a *Asset) Release() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.released {
		return
	}
	a.released = true

	if a.uploader == nil {
		return
	}
	for i, h := range a.meshHandles {
		if h != 0 {
			a.uploader.ReleaseMesh(h)
			a.meshHandles[i] = 0
		}
	}
	for i, h := range a.textureHandles {
		if h != 0 {
			a.uploader.ReleaseTexture(h)
			a.textureHandles[i] = 0
		}
	}
}

// ImportModel bundles the asset's decoded products into a standalone
// model.ImportedModel. The first skin, when present, provides the skeleton,
// and every animation clip is resolved against that skin's joints; channels
// targeting other nodes are skipped.
//
// Returns:
//   - *model.ImportedModel: the bundled model
//   - error: error if a skin or animation is invalid
func (a *Asset) ImportModel() (*model.ImportedModel, error) {
	out := &model.ImportedModel{
		Name:      a.name,
		Meshes:    a.meshes,
		Materials: a.materials,
		Textures:  a.textures,
		Cameras:   a.cameras,
	}

	nodeToBone := map[int]int32{}
	if a.SkinCount() > 0 {
		skeleton, err := a.LoadSkeleton(0)
		if err != nil {
			return nil, err
		}
		out.Skeleton = skeleton
		nodeToBone, err = a.NodeToBoneMap(0)
		if err != nil {
			return nil, err
		}
	}

	for i := 0; i < a.AnimationCount(); i++ {
		clip, err := a.LoadAnimationClip(i, nodeToBone)
		if err != nil {
			return nil, err
		}
		out.Animations = append(out.Animations, clip)
	}

	return out, nil
}

// LoadSkeleton builds the bone hierarchy for a skin.
//
// Parameters:
//   - skinIndex: the document skin index
//
// Returns:
//   - *model.Skeleton: the skeleton, bones in skin joint order
//   - error: error if the skin is invalid
func (a *Asset) LoadSkeleton(skinIndex int) (*model.Skeleton, error) {
	return extractSkeleton(&a.dec, skinIndex)
}

// NodeToBoneMap returns the node-index to bone-index mapping for a skin,
// used to resolve animation channel targets.
//
// Parameters:
//   - skinIndex: the document skin index
//
// Returns:
//   - map[int]int32: node index -> bone index
//   - error: error if the skin index is out of range
func (a *Asset) NodeToBoneMap(skinIndex int) (map[int]int32, error) {
	if skinIndex < 0 || skinIndex >= len(a.doc.Skins) {
		return nil, boundsErrf("skin index %d out of range", skinIndex)
	}
	skin := &a.doc.Skins[skinIndex]
	out := make(map[int]int32, len(skin.Joints))
	for boneIndex, nodeIndex := range skin.Joints {
		out[nodeIndex] = int32(boneIndex)
	}
	return out, nil
}

// LoadAnimationClip converts one animation into per-bone keyframe tracks.
//
// Parameters:
//   - animIndex: the document animation index
//   - nodeToBone: the node-index to bone-index map from NodeToBoneMap
//
// Returns:
//   - *model.AnimationClip: the clip with computed duration
//   - error: error if the animation is invalid
func (a *Asset) LoadAnimationClip(animIndex int, nodeToBone map[int]int32) (*model.AnimationClip, error) {
	return extractAnimationClip(&a.dec, animIndex, nodeToBone)
}
