package importer

import "github.com/lodestone3d/lodestone/scenegraph"

// assetCache holds the intermediate products of an import while its stages
// run. Slices are indexed by the corresponding glTF array index so later
// stages can resolve references in constant time. The cache is owned by a
// single task and released wholesale when the task reaches a terminal state.
type assetCache struct {
	// buffers holds the decoded bytes of every glTF buffer.
	buffers [][]byte

	// images holds decoded images, nil where decoding failed and the
	// texture stage should fall back to a placeholder.
	images []*scenegraph.Image

	// textures pairs images with sampler parameters.
	textures []*scenegraph.Texture

	// materials holds converted materials.
	materials []*scenegraph.Material

	// meshes holds converted meshes.
	meshes []*scenegraph.Mesh

	// nodes holds the built node hierarchy, indexed by glTF node index.
	nodes []*scenegraph.Node

	// skins holds skin placeholders created by the node stage and filled
	// in by the skin stage.
	skins []*scenegraph.Skin

	// skinBindings tracks which mesh bindings reference each skin, so a
	// skin that fails validation can be detached again.
	skinBindings map[int][]*scenegraph.MeshBinding

	// animations holds the finished animation clips.
	animations []*scenegraph.AnimationClip

	// root is the scene root assembled by the node stage.
	root *scenegraph.Node

	// binChunk is the GLB binary chunk, nil for loose JSON documents.
	binChunk []byte
}

func newAssetCache(doc *gltfDocument, binChunk []byte) *assetCache {
	return &assetCache{
		buffers:      make([][]byte, len(doc.Buffers)),
		images:       make([]*scenegraph.Image, len(doc.Images)),
		textures:     make([]*scenegraph.Texture, len(doc.Textures)),
		materials:    make([]*scenegraph.Material, len(doc.Materials)),
		meshes:       make([]*scenegraph.Mesh, len(doc.Meshes)),
		nodes:        make([]*scenegraph.Node, len(doc.Nodes)),
		skins:        make([]*scenegraph.Skin, len(doc.Skins)),
		skinBindings: make(map[int][]*scenegraph.MeshBinding),
		binChunk:     binChunk,
	}
}

// release drops every cached reference so the backing memory can be
// reclaimed. Called once per task regardless of how it ended; products that
// were already handed to the sink survive through the scene graph.
func (c *assetCache) release() {
	c.buffers = nil
	c.images = nil
	c.textures = nil
	c.materials = nil
	c.meshes = nil
	c.nodes = nil
	c.skins = nil
	c.skinBindings = nil
	c.animations = nil
	c.root = nil
	c.binChunk = nil
}
