package asset

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
	"github.com/cwahlfeldt/ember-go/engine/renderer"
)

// buildGLB assembles a GLB container from a JSON document and an optional
// binary chunk, padding chunks to 4-byte boundaries per the format.
func buildGLB(t *testing.T, jsonDoc string, bin []byte) []byte {
	t.Helper()

	jsonChunk := []byte(jsonDoc)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}

	var binChunk []byte
	if bin != nil {
		binChunk = append(binChunk, bin...)
		for len(binChunk)%4 != 0 {
			binChunk = append(binChunk, 0)
		}
	}

	total := 12 + 8 + len(jsonChunk)
	if bin != nil {
		total += 8 + len(binChunk)
	}

	var buf bytes.Buffer
	write := func(v uint32) {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		buf.Write(b[:])
	}

	write(gltfGLBMagic)
	write(gltfGLBVersion)
	write(uint32(total))

	write(uint32(len(jsonChunk)))
	write(gltfGLBChunkJSON)
	buf.Write(jsonChunk)

	if bin != nil {
		write(uint32(len(binChunk)))
		write(gltfGLBChunkBIN)
		buf.Write(binChunk)
	}

	return buf.Bytes()
}

// floatBytes encodes float32 values as little-endian bytes.
func floatBytes(values ...float32) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// uint16Bytes encodes uint16 values as little-endian bytes.
func uint16Bytes(values ...uint16) []byte {
	var buf bytes.Buffer
	for _, v := range values {
		binary.Write(&buf, binary.LittleEndian, v)
	}
	return buf.Bytes()
}

// dataURI wraps bytes as a base64 data URI.
func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// onePixelPNG encodes a 1x1 opaque red PNG.
func onePixelPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode fixture png: %v", err)
	}
	return buf.Bytes()
}

// mapFileSource serves files from an in-memory map.
type mapFileSource map[string][]byte

func (m mapFileSource) ReadAll(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, &DecodeError{Kind: KindIO, msg: "not found: " + path}
	}
	return data, nil
}

// countingUploader is a ResourceUploader that records upload and release
// counts without touching any GPU.
type countingUploader struct {
	mu sync.Mutex

	nextHandle    uint64
	meshUploads   int
	texUploads    int
	meshReleases  int
	texReleases   int
	liveMeshes    map[renderer.MeshHandle]bool
	liveTextures  map[renderer.TextureHandle]bool
	failMeshAfter int // fail the N+1th mesh upload when > -1
}

func newCountingUploader() *countingUploader {
	return &countingUploader{
		nextHandle:    1,
		liveMeshes:    make(map[renderer.MeshHandle]bool),
		liveTextures:  make(map[renderer.TextureHandle]bool),
		failMeshAfter: -1,
	}
}

func (u *countingUploader) UploadMesh(name string, vertices []model.Vertex, indices []uint32) (renderer.MeshHandle, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failMeshAfter >= 0 && u.meshUploads >= u.failMeshAfter {
		return 0, &DecodeError{Kind: KindIO, msg: "simulated upload failure"}
	}
	u.meshUploads++
	h := renderer.MeshHandle(u.nextHandle)
	u.nextHandle++
	u.liveMeshes[h] = true
	return h, nil
}

func (u *countingUploader) UploadTexture(texture common.ImportedTexture) (renderer.TextureHandle, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.texUploads++
	h := renderer.TextureHandle(u.nextHandle)
	u.nextHandle++
	u.liveTextures[h] = true
	return h, nil
}

func (u *countingUploader) ReleaseMesh(handle renderer.MeshHandle) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.liveMeshes[handle] {
		delete(u.liveMeshes, handle)
		u.meshReleases++
	}
}

func (u *countingUploader) ReleaseTexture(handle renderer.TextureHandle) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.liveTextures[handle] {
		delete(u.liveTextures, handle)
		u.texReleases++
	}
}

var _ renderer.ResourceUploader = &countingUploader{}

// wantKind asserts that an error chain carries the expected DecodeError kind.
func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", kind)
	}
	got, ok := KindOf(err)
	if !ok {
		t.Fatalf("expected %s error, got untyped error: %v", kind, err)
	}
	if got != kind {
		t.Fatalf("expected %s error, got %s: %v", kind, got, err)
	}
}
