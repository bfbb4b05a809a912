package importer

import (
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/lodestone3d/lodestone/scenegraph"
)

// textureStage pairs decoded images with sampler parameters. Textures whose
// image failed to decode, or which reference no image at all, receive a
// shared placeholder so materials downstream never hold a nil image.
type textureStage struct {
	count       int
	placeholder *scenegraph.Image
}

var _ pipelineStage = &textureStage{}

func (s *textureStage) stage() Stage { return StageTextures }

func (s *textureStage) prepare(st *importState) error {
	s.count = len(st.doc.Textures)
	return nil
}

func (s *textureStage) total() int { return s.count }

func (s *textureStage) step(st *importState, i int) error {
	tex := &st.doc.Textures[i]

	var img *scenegraph.Image
	if tex.Source != nil {
		if *tex.Source < 0 || *tex.Source >= len(st.cache.images) {
			return referenceError("texture %d references image %d out of range (%d images)", i, *tex.Source, len(st.cache.images))
		}
		img = st.cache.images[*tex.Source]
	}
	if img == nil {
		if tex.Source == nil {
			st.warn("texture %d has no image source, using placeholder", i)
		} else {
			st.warn("texture %d image %d unavailable, using placeholder", i, *tex.Source)
		}
		img = s.placeholderImage(st)
	}

	params := scenegraph.DefaultSamplerParams()
	if tex.Sampler != nil {
		if *tex.Sampler < 0 || *tex.Sampler >= len(st.doc.Samplers) {
			return referenceError("texture %d references sampler %d out of range (%d samplers)", i, *tex.Sampler, len(st.doc.Samplers))
		}
		params = samplerParams(&st.doc.Samplers[*tex.Sampler])
	}

	st.cache.textures[i] = st.sink.InternTexture(&scenegraph.Texture{
		Name:    fallbackName(tex.Name, "texture", i),
		Image:   img,
		Sampler: params,
	})
	return nil
}

// placeholderImage returns the lazily created 1x1 opaque white stand-in used
// for unavailable images.
func (s *textureStage) placeholderImage(st *importState) *scenegraph.Image {
	if s.placeholder == nil {
		s.placeholder = st.sink.InternImage(&scenegraph.Image{
			Name:     "placeholder",
			MimeType: "image/png",
			Pixels:   []byte{255, 255, 255, 255},
			Width:    1,
			Height:   1,
		})
	}
	return s.placeholder
}

// samplerParams converts a glTF sampler to wgpu sampler settings.
func samplerParams(s *gltfSampler) scenegraph.SamplerParams {
	params := scenegraph.DefaultSamplerParams()
	if s.WrapS != nil {
		params.AddressModeU = wrapToAddressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		params.AddressModeV = wrapToAddressMode(*s.WrapT)
	}
	if s.MagFilter != nil && *s.MagFilter == gltfFilterNearest {
		params.MagFilter = wgpu.FilterModeNearest
	}
	if s.MinFilter != nil {
		params.MinFilter, params.MipmapFilter = minFilterModes(*s.MinFilter)
	}
	return params
}

func wrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case gltfWrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltfWrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func minFilterModes(filter int) (wgpu.FilterMode, wgpu.MipmapFilterMode) {
	switch filter {
	case gltfFilterNearest, gltfFilterNearestMipmapNearest:
		return wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest
	case gltfFilterNearestMipmapLinear:
		return wgpu.FilterModeNearest, wgpu.MipmapFilterModeLinear
	case gltfFilterLinearMipmapNearest:
		return wgpu.FilterModeLinear, wgpu.MipmapFilterModeNearest
	default:
		return wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear
	}
}
