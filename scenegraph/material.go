package scenegraph

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// PBRWorkflow identifies which of the two PBR shading models a material uses.
// A material uses exactly one.
type PBRWorkflow int

const (
	// WorkflowMetallicRoughness is the core glTF 2.0 PBR model.
	WorkflowMetallicRoughness PBRWorkflow = iota

	// WorkflowSpecularGlossiness is the KHR_materials_pbrSpecularGlossiness
	// extension model.
	WorkflowSpecularGlossiness
)

// String returns the workflow name.
func (w PBRWorkflow) String() string {
	if w == WorkflowSpecularGlossiness {
		return "specular-glossiness"
	}
	return "metallic-roughness"
}

// AlphaMode controls how a material's alpha channel is interpreted.
type AlphaMode int

const (
	// AlphaOpaque ignores the alpha channel (default).
	AlphaOpaque AlphaMode = iota

	// AlphaMask discards fragments below the alpha cutoff.
	AlphaMask

	// AlphaBlend alpha-blends the material.
	AlphaBlend
)

// Material is a decoded PBR material. Exactly one of the two workflow factor
// sets is meaningful, selected by Workflow.
type Material struct {
	// Name is the material identifier.
	Name string

	// Workflow selects metallic-roughness or specular-glossiness shading.
	Workflow PBRWorkflow

	// BaseColorFactor is the albedo color (RGBA, metallic-roughness) or
	// diffuse color (specular-glossiness).
	BaseColorFactor [4]float32

	// MetallicFactor is the metalness (0 = dielectric, 1 = metal).
	MetallicFactor float32

	// RoughnessFactor is the roughness (0 = smooth, 1 = rough).
	RoughnessFactor float32

	// SpecularFactor is the specular reflectance (specular-glossiness only).
	SpecularFactor [3]float32

	// GlossinessFactor is the glossiness (specular-glossiness only).
	GlossinessFactor float32

	// EmissiveFactor is the emissive color (RGB).
	EmissiveFactor [3]float32

	// BaseColorTexture is the albedo/diffuse texture, nil when absent.
	BaseColorTexture *TextureRef

	// MetallicRoughnessTexture packs roughness (G) and metallic (B), or the
	// specular-glossiness texture under that workflow. Nil when absent.
	MetallicRoughnessTexture *TextureRef

	// NormalTexture is the tangent-space normal map, nil when absent.
	NormalTexture *TextureRef

	// NormalScale scales the normal map's X/Y components.
	NormalScale float32

	// OcclusionTexture is the ambient occlusion map (R channel), nil when absent.
	OcclusionTexture *TextureRef

	// OcclusionStrength scales the occlusion effect.
	OcclusionStrength float32

	// EmissiveTexture is the emissive map, nil when absent.
	EmissiveTexture *TextureRef

	// Alpha is the alpha rendering mode.
	Alpha AlphaMode

	// AlphaCutoff is the discard threshold for AlphaMask mode.
	AlphaCutoff float32

	// DoubleSided disables backface culling when true.
	DoubleSided bool
}

// DefaultMaterial returns the material used by primitives without a material
// reference: white metallic-roughness with full metalness and roughness, per
// the glTF default values.
//
// Returns:
//   - *Material: a fresh default material
func DefaultMaterial() *Material {
	return &Material{
		Name:              "default",
		Workflow:          WorkflowMetallicRoughness,
		BaseColorFactor:   [4]float32{1, 1, 1, 1},
		MetallicFactor:    1,
		RoughnessFactor:   1,
		NormalScale:       1,
		OcclusionStrength: 1,
		AlphaCutoff:       0.5,
	}
}

// TextureRef points a material slot at a texture and names the UV set the
// slot samples.
type TextureRef struct {
	// Texture is the referenced texture.
	Texture *Texture

	// UVSet is the texture coordinate set index (0-3).
	UVSet int
}

// Texture pairs a decoded image with sampler parameters. Multiple textures
// may share one image.
type Texture struct {
	// Name is the texture identifier.
	Name string

	// Image is the decoded pixel data.
	Image *Image

	// Sampler holds the filtering and wrapping parameters.
	Sampler SamplerParams
}

// SamplerParams are GPU sampler settings carried in wgpu terms so a host
// renderer can use them directly when creating its sampler objects.
type SamplerParams struct {
	// AddressModeU and AddressModeV control wrapping outside [0, 1] in each
	// texture coordinate dimension.
	AddressModeU, AddressModeV wgpu.AddressMode

	// MagFilter and MinFilter are the magnification/minification filters.
	MagFilter, MinFilter wgpu.FilterMode

	// MipmapFilter selects between mipmap levels.
	MipmapFilter wgpu.MipmapFilterMode
}

// DefaultSamplerParams returns the glTF default sampler: linear filtering and
// repeat wrapping.
//
// Returns:
//   - SamplerParams: the default sampler parameters
func DefaultSamplerParams() SamplerParams {
	return SamplerParams{
		AddressModeU: wgpu.AddressModeRepeat,
		AddressModeV: wgpu.AddressModeRepeat,
		MagFilter:    wgpu.FilterModeLinear,
		MinFilter:    wgpu.FilterModeLinear,
		MipmapFilter: wgpu.MipmapFilterModeLinear,
	}
}

// Image is decoded pixel data in RGBA order, 4 bytes per pixel, row-major.
type Image struct {
	// Name is the image identifier.
	Name string

	// MimeType is the source encoding ("image/png", "image/jpeg", ...).
	MimeType string

	// Pixels is the decoded RGBA data (Width*Height*4 bytes).
	Pixels []byte

	// Width is the image width in pixels.
	Width int

	// Height is the image height in pixels.
	Height int
}
