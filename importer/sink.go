package importer

import "github.com/lodestone3d/lodestone/scenegraph"

// AssetSink receives every product the pipeline creates, in dependency order
// (images before textures, textures before materials, and so on). A sink can
// pass products through untouched, deduplicate them, or record provenance for
// editor tooling. Sinks run on the thread driving the task.
type AssetSink interface {
	// InternImage accepts a decoded image. The returned image replaces the
	// input in everything built afterwards, which lets a sink substitute a
	// previously seen equivalent.
	//
	// Parameters:
	//   - img: the decoded image.
	//
	// Returns:
	//   - *scenegraph.Image: the image to use downstream.
	InternImage(img *scenegraph.Image) *scenegraph.Image

	// InternTexture accepts a texture.
	//
	// Parameters:
	//   - tex: the texture.
	//
	// Returns:
	//   - *scenegraph.Texture: the texture to use downstream.
	InternTexture(tex *scenegraph.Texture) *scenegraph.Texture

	// InternMaterial accepts a material.
	//
	// Parameters:
	//   - mat: the material.
	//
	// Returns:
	//   - *scenegraph.Material: the material to use downstream.
	InternMaterial(mat *scenegraph.Material) *scenegraph.Material

	// InternPrimitive accepts a mesh primitive.
	//
	// Parameters:
	//   - prim: the primitive.
	//
	// Returns:
	//   - *scenegraph.Primitive: the primitive to use downstream.
	InternPrimitive(prim *scenegraph.Primitive) *scenegraph.Primitive

	// InternScene accepts the finished scene. Called exactly once, as the
	// last act of a successful import.
	//
	// Parameters:
	//   - scene: the finished scene.
	//
	// Returns:
	//   - *scenegraph.Scene: the scene delivered to the completion handler.
	InternScene(scene *scenegraph.Scene) *scenegraph.Scene
}

// runtimeSink is the default sink: every product passes through unchanged.
type runtimeSink struct{}

var _ AssetSink = runtimeSink{}

func (runtimeSink) InternImage(img *scenegraph.Image) *scenegraph.Image { return img }

func (runtimeSink) InternTexture(tex *scenegraph.Texture) *scenegraph.Texture { return tex }

func (runtimeSink) InternMaterial(mat *scenegraph.Material) *scenegraph.Material { return mat }

func (runtimeSink) InternPrimitive(p *scenegraph.Primitive) *scenegraph.Primitive { return p }

func (runtimeSink) InternScene(scene *scenegraph.Scene) *scenegraph.Scene { return scene }
