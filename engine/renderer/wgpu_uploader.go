package renderer

import (
	"fmt"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/cwahlfeldt/ember-go/common"
	"github.com/cwahlfeldt/ember-go/engine/model"
)

type meshBuffers struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

type textureResources struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler
}

type wgpuUploaderImpl struct {
	mu sync.Mutex

	device *wgpu.Device
	queue  *wgpu.Queue

	decoder common.ImageDecoder

	nextMesh    MeshHandle
	nextTexture TextureHandle
	meshes      map[MeshHandle]*meshBuffers
	textures    map[TextureHandle]*textureResources
}

var _ ResourceUploader = &wgpuUploaderImpl{}

// NewWGPUUploader creates a ResourceUploader that uploads through a wgpu
// device and queue.
//
// Parameters:
//   - device: the wgpu device used to create buffers and textures
//   - queue: the wgpu queue used to write data
//   - options: functional options to configure the uploader
//
// Returns:
//   - ResourceUploader: the newly created uploader
func NewWGPUUploader(device *wgpu.Device, queue *wgpu.Queue, options ...WGPUUploaderBuilderOption) ResourceUploader {
	u := &wgpuUploaderImpl{
		device:      device,
		queue:       queue,
		decoder:     common.NewStdImageDecoder(),
		nextMesh:    1,
		nextTexture: 1,
		meshes:      make(map[MeshHandle]*meshBuffers),
		textures:    make(map[TextureHandle]*textureResources),
	}
	for _, option := range options {
		option(u)
	}
	return u
}

func (u *wgpuUploaderImpl) UploadMesh(name string, vertices []model.Vertex, indices []uint32) (MeshHandle, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if len(vertices) == 0 {
		return 0, fmt.Errorf("mesh %q has no vertices", name)
	}

	vertexData := common.SliceToBytes(vertices)
	indexData := common.SliceToBytes(indices)

	vertexBuf, err := u.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            name + " Vertex Buffer",
		Size:             uint64(len(vertexData)),
		Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		MappedAtCreation: false,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create vertex buffer for %q: %w", name, err)
	}
	u.queue.WriteBuffer(vertexBuf, 0, vertexData)

	var indexBuf *wgpu.Buffer
	if len(indexData) > 0 {
		indexBuf, err = u.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            name + " Index Buffer",
			Size:             uint64(len(indexData)),
			Usage:            wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			vertexBuf.Release()
			return 0, fmt.Errorf("failed to create index buffer for %q: %w", name, err)
		}
		u.queue.WriteBuffer(indexBuf, 0, indexData)
	}

	handle := u.nextMesh
	u.nextMesh++
	u.meshes[handle] = &meshBuffers{
		vertexBuffer: vertexBuf,
		indexBuffer:  indexBuf,
		indexCount:   len(indices),
	}

	return handle, nil
}

func (u *wgpuUploaderImpl) UploadTexture(texture common.ImportedTexture) (TextureHandle, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	pixels, width, height, err := u.decoder.Decode(texture.Data)
	if err != nil {
		return 0, fmt.Errorf("failed to decode texture %q: %w", texture.Name, err)
	}

	tex, err := u.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     texture.Name + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create texture %q: %w", texture.Name, err)
	}

	u.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return 0, fmt.Errorf("failed to create texture view for %q: %w", texture.Name, err)
	}

	sampler, err := u.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         texture.Name + " Sampler",
		AddressModeU:  wrapToAddressMode(texture.Sampler.WrapU),
		AddressModeV:  wrapToAddressMode(texture.Sampler.WrapV),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     filterToFilterMode(texture.Sampler.MagFilter),
		MinFilter:     filterToFilterMode(texture.Sampler.MinFilter),
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0.0,
		LodMaxClamp:   32.0,
		MaxAnisotropy: 1,
	})
	if err != nil {
		view.Release()
		tex.Release()
		return 0, fmt.Errorf("failed to create sampler for %q: %w", texture.Name, err)
	}

	handle := u.nextTexture
	u.nextTexture++
	u.textures[handle] = &textureResources{
		texture: tex,
		view:    view,
		sampler: sampler,
	}

	return handle, nil
}

func (u *wgpuUploaderImpl) ReleaseMesh(handle MeshHandle) {
	u.mu.Lock()
	defer u.mu.Unlock()

	bufs, ok := u.meshes[handle]
	if !ok {
		return
	}
	delete(u.meshes, handle)

	if bufs.vertexBuffer != nil {
		bufs.vertexBuffer.Release()
	}
	if bufs.indexBuffer != nil {
		bufs.indexBuffer.Release()
	}
}

func (u *wgpuUploaderImpl) ReleaseTexture(handle TextureHandle) {
	u.mu.Lock()
	defer u.mu.Unlock()

	res, ok := u.textures[handle]
	if !ok {
		return
	}
	delete(u.textures, handle)

	if res.sampler != nil {
		res.sampler.Release()
	}
	if res.view != nil {
		res.view.Release()
	}
	if res.texture != nil {
		res.texture.Release()
	}
}

func wrapToAddressMode(w common.TextureWrap) wgpu.AddressMode {
	switch w {
	case common.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case common.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func filterToFilterMode(f common.TextureFilter) wgpu.FilterMode {
	if f == common.FilterNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}
