// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
)

// AlphaMode selects how a material's alpha channel is interpreted.
type AlphaMode int

const (
	// AlphaOpaque renders the material fully opaque; alpha is ignored.
	AlphaOpaque AlphaMode = iota

	// AlphaMask discards fragments whose alpha falls below the cutoff.
	AlphaMask

	// AlphaBlend composites the material using standard alpha blending.
	AlphaBlend
)

// String returns the human-readable name of the alpha mode.
func (m AlphaMode) String() string {
	switch m {
	case AlphaOpaque:
		return "opaque"
	case AlphaMask:
		return "mask"
	case AlphaBlend:
		return "blend"
	default:
		return fmt.Sprintf("AlphaMode(%d)", int(m))
	}
}

// TextureWrap selects texture coordinate addressing outside the [0, 1] range.
type TextureWrap int

const (
	// WrapRepeat tiles the texture (the default).
	WrapRepeat TextureWrap = iota

	// WrapClampToEdge clamps coordinates to the edge texel.
	WrapClampToEdge

	// WrapMirroredRepeat tiles the texture, mirroring every other tile.
	WrapMirroredRepeat
)

// TextureFilter selects texture sampling filtering.
type TextureFilter int

const (
	// FilterLinear interpolates between texels (the default).
	FilterLinear TextureFilter = iota

	// FilterNearest picks the nearest texel.
	FilterNearest
)

// SamplerParams holds texture sampling parameters resolved from a model file.
// Fields the source leaves unset fall back to linear filtering and repeat
// wrapping.
type SamplerParams struct {
	// WrapU and WrapV are the addressing modes for each texture axis.
	WrapU, WrapV TextureWrap

	// MagFilter and MinFilter are the magnification and minification filters.
	MagFilter, MinFilter TextureFilter
}

// NoTexture marks an unset texture slot on an ImportedMaterial.
const NoTexture = -1

// ImportedMaterial represents PBR metallic-roughness material properties
// from an imported model file. Texture slots are indices into the owning
// asset's texture table, or NoTexture when unset.
type ImportedMaterial struct {
	// Name is the material identifier.
	Name string

	// BaseColor is the albedo/diffuse color (RGBA).
	BaseColor [4]float32

	// Metallic factor (0.0 = dielectric, 1.0 = metal).
	Metallic float32

	// Roughness factor (0.0 = smooth, 1.0 = rough).
	Roughness float32

	// EmissiveFactor is the emissive color (RGB).
	EmissiveFactor [3]float32

	// NormalScale scales the sampled normal map vector.
	NormalScale float32

	// OcclusionStrength scales the sampled occlusion value.
	OcclusionStrength float32

	// Alpha is the alpha rendering mode.
	Alpha AlphaMode

	// AlphaCutoff is the fragment discard threshold for AlphaMask mode.
	AlphaCutoff float32

	// DoubleSided disables back-face culling for this material.
	DoubleSided bool

	// BaseColorTexture is the base color texture slot, or NoTexture.
	BaseColorTexture int

	// MetallicRoughnessTexture packs roughness (G) and metallic (B), or NoTexture.
	MetallicRoughnessTexture int

	// NormalTexture is the tangent-space normal map slot, or NoTexture.
	NormalTexture int

	// OcclusionTexture is the ambient occlusion slot, or NoTexture.
	OcclusionTexture int

	// EmissiveTexture is the emissive map slot, or NoTexture.
	EmissiveTexture int
}

// DefaultMaterial returns an ImportedMaterial populated with the standard
// defaults: opaque white base color, full metallic, full roughness, and
// every texture slot unset.
//
// Returns:
//   - ImportedMaterial: the default material
func DefaultMaterial() ImportedMaterial {
	return ImportedMaterial{
		BaseColor:                [4]float32{1, 1, 1, 1},
		Metallic:                 1.0,
		Roughness:                1.0,
		NormalScale:              1.0,
		OcclusionStrength:        1.0,
		Alpha:                    AlphaOpaque,
		AlphaCutoff:              0.5,
		BaseColorTexture:         NoTexture,
		MetallicRoughnessTexture: NoTexture,
		NormalTexture:            NoTexture,
		OcclusionTexture:         NoTexture,
		EmissiveTexture:          NoTexture,
	}
}

// ImportedTexture represents texture data extracted from a model file.
// Data always holds the raw encoded image bytes (PNG/JPEG) once the owning
// asset is loaded, regardless of whether the source was an embedded buffer
// view, a data URI, or an external file.
type ImportedTexture struct {
	// Name is an identifier for this texture.
	Name string

	// Path is the resolved source path for external textures (empty for embedded).
	Path string

	// Data contains the raw encoded image bytes (PNG/JPEG).
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string

	// Sampler holds sampling parameters resolved from the model file.
	Sampler SamplerParams
}

// ImageDecoder turns encoded image bytes (PNG/JPEG) into raw RGBA pixels.
// The import pipeline only resolves encoded bytes; pixel decoding is
// delegated to implementations of this interface.
type ImageDecoder interface {
	// Decode decodes encoded image bytes into RGBA pixel data.
	//
	// Parameters:
	//   - encoded: the raw encoded image bytes
	//
	// Returns:
	//   - []byte: RGBA pixel data (4 bytes per pixel, row-major order)
	//   - uint32: image width in pixels
	//   - uint32: image height in pixels
	//   - error: error if decoding fails
	Decode(encoded []byte) ([]byte, uint32, uint32, error)
}

type stdImageDecoder struct{}

var _ ImageDecoder = stdImageDecoder{}

// NewStdImageDecoder returns an ImageDecoder backed by the standard
// library's PNG and JPEG decoders.
//
// Returns:
//   - ImageDecoder: the decoder
func NewStdImageDecoder() ImageDecoder {
	return stdImageDecoder{}
}

func (stdImageDecoder) Decode(encoded []byte) ([]byte, uint32, uint32, error) {
	if len(encoded) == 0 {
		return nil, 0, 0, fmt.Errorf("image decode: empty input")
	}

	img, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	return rgba.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), nil
}

// Decode decodes the texture's encoded bytes to raw RGBA pixel data using
// the standard library decoders. Supports PNG and JPEG formats.
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: texture width in pixels
//   - uint32: texture height in pixels
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() ([]byte, uint32, uint32, error) {
	if t == nil {
		return nil, 0, 0, fmt.Errorf("texture is nil")
	}
	if len(t.Data) == 0 {
		return nil, 0, 0, fmt.Errorf("texture %q has no data", t.Name)
	}
	return stdImageDecoder{}.Decode(t.Data)
}
