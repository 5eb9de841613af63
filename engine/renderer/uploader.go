// package renderer provides the GPU resource upload surface used by the
// asset pipeline. The importer hands decoded meshes and textures to a
// ResourceUploader and tracks the opaque handles it returns; the wgpu
// implementation lives alongside the interface.
package renderer

import (
	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
)

// MeshHandle is an opaque identifier for GPU mesh resources created by a
// ResourceUploader. Zero is never a valid handle.
type MeshHandle uint64

// TextureHandle is an opaque identifier for GPU texture resources created by
// a ResourceUploader. Zero is never a valid handle.
type TextureHandle uint64

// ResourceUploader creates and releases GPU resources for decoded asset
// data. Implementations own the mapping from handles to backend objects;
// callers must release every handle they receive exactly once.
type ResourceUploader interface {
	// UploadMesh creates GPU vertex and index buffers for a decoded mesh.
	//
	// Parameters:
	//   - name: a debug label for the created buffers
	//   - vertices: the interleaved vertex data
	//   - indices: the triangle indices
	//
	// Returns:
	//   - MeshHandle: the handle for the created buffers
	//   - error: error if buffer creation fails
	UploadMesh(name string, vertices []model.Vertex, indices []uint32) (MeshHandle, error)

	// UploadTexture decodes a texture's encoded bytes and creates a GPU
	// texture, view, and sampler for it.
	//
	// Parameters:
	//   - texture: the texture to upload, with encoded bytes and sampler params
	//
	// Returns:
	//   - TextureHandle: the handle for the created texture
	//   - error: error if decoding or texture creation fails
	UploadTexture(texture common.ImportedTexture) (TextureHandle, error)

	// ReleaseMesh releases the GPU buffers behind a mesh handle. Releasing
	// an unknown handle is a no-op.
	//
	// Parameters:
	//   - handle: the mesh handle to release
	ReleaseMesh(handle MeshHandle)

	// ReleaseTexture releases the GPU texture behind a texture handle.
	// Releasing an unknown handle is a no-op.
	//
	// Parameters:
	//   - handle: the texture handle to release
	ReleaseTexture(handle TextureHandle)
}
