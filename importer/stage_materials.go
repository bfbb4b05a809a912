package importer

import (
	"encoding/json"

	"github.com/lodestone3d/lodestone/scenegraph"
)

// materialStage converts document materials. The metallic-roughness model is
// the baseline; when KHR_materials_pbrSpecularGlossiness is present it takes
// precedence, matching how exporters use the extension. Unresolvable texture
// references degrade to untextured slots with a warning.
type materialStage struct {
	count int
}

var _ pipelineStage = &materialStage{}

func (s *materialStage) stage() Stage { return StageMaterials }

func (s *materialStage) prepare(st *importState) error {
	s.count = len(st.doc.Materials)
	return nil
}

func (s *materialStage) total() int { return s.count }

func (s *materialStage) step(st *importState, i int) error {
	src := &st.doc.Materials[i]

	mat := scenegraph.DefaultMaterial()
	mat.Name = fallbackName(src.Name, "material", i)

	if pbr := src.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			mat.BaseColorFactor = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			mat.MetallicFactor = *pbr.MetallicFactor
		}
		if pbr.RoughnessFactor != nil {
			mat.RoughnessFactor = *pbr.RoughnessFactor
		}
		mat.BaseColorTexture = s.textureRef(st, i, "baseColor", pbr.BaseColorTexture)
		mat.MetallicRoughnessTexture = s.textureRef(st, i, "metallicRoughness", pbr.MetallicRoughnessTexture)
	}

	if raw, ok := src.Extensions[gltfExtSpecularGlossiness]; ok {
		s.applySpecularGlossiness(st, i, mat, raw)
	}
	for name := range src.Extensions {
		if name != gltfExtSpecularGlossiness {
			st.warn("material %d uses unsupported extension %q, ignored", i, name)
		}
	}

	if src.NormalTexture != nil {
		mat.NormalTexture = s.textureRef(st, i, "normal", &src.NormalTexture.gltfTextureInfo)
		if src.NormalTexture.Scale != nil {
			mat.NormalScale = *src.NormalTexture.Scale
		}
	}
	if src.OcclusionTexture != nil {
		mat.OcclusionTexture = s.textureRef(st, i, "occlusion", &src.OcclusionTexture.gltfTextureInfo)
		if src.OcclusionTexture.Strength != nil {
			mat.OcclusionStrength = *src.OcclusionTexture.Strength
		}
	}
	mat.EmissiveTexture = s.textureRef(st, i, "emissive", src.EmissiveTexture)
	if src.EmissiveFactor != nil {
		mat.EmissiveFactor = *src.EmissiveFactor
	}

	switch src.AlphaMode {
	case "", "OPAQUE":
		mat.Alpha = scenegraph.AlphaOpaque
	case "MASK":
		mat.Alpha = scenegraph.AlphaMask
		if src.AlphaCutoff != nil {
			mat.AlphaCutoff = *src.AlphaCutoff
		}
	case "BLEND":
		mat.Alpha = scenegraph.AlphaBlend
	default:
		st.warn("material %d has unknown alphaMode %q, treating as opaque", i, src.AlphaMode)
	}
	mat.DoubleSided = src.DoubleSided

	st.cache.materials[i] = st.sink.InternMaterial(mat)
	return nil
}

func (s *materialStage) applySpecularGlossiness(st *importState, idx int, mat *scenegraph.Material, raw json.RawMessage) {
	var sg gltfPbrSpecularGlossiness
	if err := json.Unmarshal(raw, &sg); err != nil {
		st.warn("material %d has malformed specular-glossiness payload: %v", idx, err)
		return
	}
	mat.Workflow = scenegraph.WorkflowSpecularGlossiness
	mat.SpecularFactor = [3]float32{1, 1, 1}
	mat.GlossinessFactor = 1
	if sg.DiffuseFactor != nil {
		mat.BaseColorFactor = *sg.DiffuseFactor
	}
	if sg.SpecularFactor != nil {
		mat.SpecularFactor = *sg.SpecularFactor
	}
	if sg.GlossinessFactor != nil {
		mat.GlossinessFactor = *sg.GlossinessFactor
	}
	if sg.DiffuseTexture != nil {
		mat.BaseColorTexture = s.textureRef(st, idx, "diffuse", sg.DiffuseTexture)
	}
	if sg.SpecularGlossinessTexture != nil {
		mat.MetallicRoughnessTexture = s.textureRef(st, idx, "specularGlossiness", sg.SpecularGlossinessTexture)
	}
}

// textureRef resolves a texture info block to a cached texture. Bad
// references degrade to nil with a warning so the material stays usable.
func (s *materialStage) textureRef(st *importState, matIdx int, slot string, info *gltfTextureInfo) *scenegraph.TextureRef {
	if info == nil {
		return nil
	}
	if info.Index < 0 || info.Index >= len(st.cache.textures) {
		st.warn("material %d %s texture index %d out of range (%d textures), slot left empty", matIdx, slot, info.Index, len(st.cache.textures))
		return nil
	}
	uvSet := info.TexCoord
	if uvSet < 0 || uvSet >= scenegraph.MaxUVSets {
		st.warn("material %d %s texture uses UV set %d, clamped to 0", matIdx, slot, uvSet)
		uvSet = 0
	}
	return &scenegraph.TextureRef{
		Texture: st.cache.textures[info.Index],
		UVSet:   uvSet,
	}
}
