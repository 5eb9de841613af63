// gltf_material_extractor.go resolves texture image sources and binds
// material PBR properties into engine material values. Pixel decoding is
// left to the image-decoder collaborator; only encoded bytes are produced.
package asset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cwahlfeldt/ember-go/common"
)

// extractTextures resolves every texture's image bytes and sampler
// parameters. The resulting slice is indexed by document texture index.
func extractTextures(doc *gltfDocument, buffers []bufferSlot, baseDir string, fs FileSource) ([]common.ImportedTexture, error) {
	textures := make([]common.ImportedTexture, len(doc.Textures))

	for i, tex := range doc.Textures {
		if tex.Source == nil {
			return nil, contentErrf("texture %d has no image source", i)
		}

		img := &doc.Images[*tex.Source]
		data, path, err := resolveImage(doc, buffers, img, baseDir, fs)
		if err != nil {
			return nil, wrapStage(err, "texture %d", i)
		}

		name := common.Coalesce(tex.Name, img.Name, fmt.Sprintf("texture_%d", i))

		textures[i] = common.ImportedTexture{
			Name:     name,
			Path:     path,
			Data:     data,
			MimeType: img.MimeType,
			Sampler:  resolveSamplerParams(doc, tex.Sampler),
		}
	}

	return textures, nil
}

// resolveImage produces encoded image bytes from exactly one of three
// sources, in priority order: embedded buffer view, data URI, external file.
func resolveImage(doc *gltfDocument, buffers []bufferSlot, img *gltfImage, baseDir string, fs FileSource) ([]byte, string, error) {
	if img.BufferView != nil {
		bv := &doc.BufferViews[*img.BufferView]
		buf := buffers[bv.Buffer].data
		return buf[bv.ByteOffset : bv.ByteOffset+bv.ByteLength], "", nil
	}

	if strings.HasPrefix(img.URI, "data:") {
		data, err := decodeDataURI(img.URI)
		if err != nil {
			return nil, "", wrapFormat(err, "image data URI")
		}
		return data, "", nil
	}

	if img.URI != "" {
		fullPath := filepath.Join(baseDir, img.URI)
		data, err := fs.ReadAll(fullPath)
		if err != nil {
			return nil, "", ioErr(fmt.Sprintf("failed to load image file %q", img.URI), err)
		}
		return data, fullPath, nil
	}

	return nil, "", contentErrf("image has neither bufferView nor URI")
}

// resolveSamplerParams maps a sampler reference onto engine wrap/filter
// enums, applying the format defaults (repeat wrapping, linear filtering)
// for absent samplers and unset fields.
func resolveSamplerParams(doc *gltfDocument, samplerIndex *int) common.SamplerParams {
	params := common.SamplerParams{
		WrapU:     common.WrapRepeat,
		WrapV:     common.WrapRepeat,
		MagFilter: common.FilterLinear,
		MinFilter: common.FilterLinear,
	}

	if samplerIndex == nil {
		return params
	}
	sampler := &doc.Samplers[*samplerIndex]

	if sampler.WrapS != nil {
		params.WrapU = wrapMode(*sampler.WrapS)
	}
	if sampler.WrapT != nil {
		params.WrapV = wrapMode(*sampler.WrapT)
	}
	if sampler.MagFilter != nil {
		params.MagFilter = filterMode(*sampler.MagFilter)
	}
	if sampler.MinFilter != nil {
		params.MinFilter = filterMode(*sampler.MinFilter)
	}

	return params
}

// wrapMode maps a sampler wrap code onto the engine wrap mode. Unrecognized
// codes fall back to repeat, the format default.
func wrapMode(code int) common.TextureWrap {
	switch code {
	case gltfWrapRepeat:
		return common.WrapRepeat
	case gltfWrapClampToEdge:
		return common.WrapClampToEdge
	case gltfWrapMirroredRepeat:
		return common.WrapMirroredRepeat
	default:
		return common.WrapRepeat
	}
}

// filterMode maps a sampler filter code onto the engine filter mode. The
// mipmapped variants collapse onto their base filter; unrecognized codes
// fall back to linear.
func filterMode(code int) common.TextureFilter {
	switch code {
	case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
		return common.FilterNearest
	case gltfFilterLinear, gltfFilterLinearMipmapNearest, gltfFilterLinearMipmapLinear:
		return common.FilterLinear
	default:
		return common.FilterLinear
	}
}

// extractMaterials binds every document material into an engine material
// value. Absent factors use the format defaults; an unknown alpha mode is a
// format error, never a silent fallback.
func extractMaterials(doc *gltfDocument) ([]common.ImportedMaterial, error) {
	materials := make([]common.ImportedMaterial, len(doc.Materials))

	for i, mat := range doc.Materials {
		out := common.DefaultMaterial()
		out.Name = common.Coalesce(mat.Name, fmt.Sprintf("material_%d", i))

		if pbr := mat.PbrMetallicRoughness; pbr != nil {
			if pbr.BaseColorFactor != nil {
				out.BaseColor = *pbr.BaseColorFactor
			}
			if pbr.MetallicFactor != nil {
				out.Metallic = *pbr.MetallicFactor
			}
			if pbr.RoughnessFactor != nil {
				out.Roughness = *pbr.RoughnessFactor
			}
			if pbr.BaseColorTexture != nil {
				out.BaseColorTexture = pbr.BaseColorTexture.Index
			}
			if pbr.MetallicRoughnessTexture != nil {
				out.MetallicRoughnessTexture = pbr.MetallicRoughnessTexture.Index
			}
		}

		if mat.NormalTexture != nil {
			out.NormalTexture = mat.NormalTexture.Index
			if mat.NormalTexture.Scale != nil {
				out.NormalScale = *mat.NormalTexture.Scale
			}
		}
		if mat.OcclusionTexture != nil {
			out.OcclusionTexture = mat.OcclusionTexture.Index
			if mat.OcclusionTexture.Strength != nil {
				out.OcclusionStrength = *mat.OcclusionTexture.Strength
			}
		}
		if mat.EmissiveTexture != nil {
			out.EmissiveTexture = mat.EmissiveTexture.Index
		}
		if mat.EmissiveFactor != nil {
			out.EmissiveFactor = *mat.EmissiveFactor
		}

		switch mat.AlphaMode {
		case "", "OPAQUE":
			out.Alpha = common.AlphaOpaque
		case "MASK":
			out.Alpha = common.AlphaMask
		case "BLEND":
			out.Alpha = common.AlphaBlend
		default:
			return nil, formatErrf("material %d has unknown alpha mode %q", i, mat.AlphaMode)
		}
		if mat.AlphaCutoff != nil {
			out.AlphaCutoff = *mat.AlphaCutoff
		}
		out.DoubleSided = mat.DoubleSided

		materials[i] = out
	}

	return materials, nil
}
