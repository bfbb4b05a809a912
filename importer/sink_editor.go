package importer

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/lodestone3d/lodestone/scenegraph"
)

// EditorSink is an AssetSink that catalogs every product and deduplicates
// identical images by content hash. Tooling uses the catalog to list an
// asset's contents without walking the scene graph; the runtime path never
// pays for it.
type EditorSink struct {
	// Images are the interned images, deduplicated.
	Images []*scenegraph.Image

	// Textures are all textures in creation order.
	Textures []*scenegraph.Texture

	// Materials are all materials in creation order.
	Materials []*scenegraph.Material

	// Primitives are all mesh primitives in creation order.
	Primitives []*scenegraph.Primitive

	// Scenes are the finished scenes, one per completed import.
	Scenes []*scenegraph.Scene

	imageByHash map[string]*scenegraph.Image
}

var _ AssetSink = &EditorSink{}

// NewEditorSink creates an empty editor sink.
//
// Returns:
//   - *EditorSink: the sink instance.
func NewEditorSink() *EditorSink {
	return &EditorSink{
		imageByHash: make(map[string]*scenegraph.Image),
	}
}

func (s *EditorSink) InternImage(img *scenegraph.Image) *scenegraph.Image {
	sum := sha1.Sum(img.Pixels)
	key := hex.EncodeToString(sum[:])
	if existing, ok := s.imageByHash[key]; ok {
		return existing
	}
	s.imageByHash[key] = img
	s.Images = append(s.Images, img)
	return img
}

func (s *EditorSink) InternTexture(tex *scenegraph.Texture) *scenegraph.Texture {
	s.Textures = append(s.Textures, tex)
	return tex
}

func (s *EditorSink) InternMaterial(mat *scenegraph.Material) *scenegraph.Material {
	s.Materials = append(s.Materials, mat)
	return mat
}

func (s *EditorSink) InternPrimitive(prim *scenegraph.Primitive) *scenegraph.Primitive {
	s.Primitives = append(s.Primitives, prim)
	return prim
}

func (s *EditorSink) InternScene(scene *scenegraph.Scene) *scenegraph.Scene {
	s.Scenes = append(s.Scenes, scene)
	return scene
}
