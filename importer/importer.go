// Package importer loads glTF 2.0 assets (.gltf and .glb) into scene graphs
// through a cooperative, resumable pipeline. An import is split into small
// units of work driven by Task.Advance, so a frame loop can interleave
// loading with rendering without threads; Importer.Load drives a task to
// completion for callers that just want the scene.
package importer

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lodestone3d/lodestone/scenegraph"
	"go.uber.org/zap"
)

// Importer creates import tasks. An importer is immutable after construction
// and safe to share; each task it creates is independent.
type Importer interface {
	// Begin starts an import from a file. The file's directory becomes the
	// base for resolving external buffer and image URIs.
	//
	// Parameters:
	//   - path: the .glb or .gltf file path.
	//
	// Returns:
	//   - Task: the new task, ready to advance.
	//   - error: a read, container or schema error.
	Begin(path string) (Task, error)

	// BeginBytes starts an import from an in-memory container. External
	// URIs resolve against the current working directory.
	//
	// Parameters:
	//   - name: a label for the asset, used in logs and errors.
	//   - data: the raw container bytes.
	//
	// Returns:
	//   - Task: the new task, ready to advance.
	//   - error: a container or schema error.
	BeginBytes(name string, data []byte) (Task, error)

	// Load imports a file synchronously, driving the task to completion.
	//
	// Parameters:
	//   - path: the .glb or .gltf file path.
	//
	// Returns:
	//   - *scenegraph.Scene: the imported scene.
	//   - error: the first fatal error.
	Load(path string) (*scenegraph.Scene, error)
}

type importerImpl struct {
	parser     gltfParser
	logger     *zap.Logger
	sink       AssetSink
	onComplete func(*scenegraph.Scene)
	onError    func(error)
	onProgress func(ProgressSnapshot)
}

var _ Importer = &importerImpl{}

// ImporterOption configures an Importer.
type ImporterOption func(*importerImpl)

// WithLogger sets the logger for import diagnostics and warnings. The
// default discards everything.
//
// Parameters:
//   - logger: the zap logger to use.
//
// Returns:
//   - ImporterOption: the option.
func WithLogger(logger *zap.Logger) ImporterOption {
	return func(i *importerImpl) {
		i.logger = logger
	}
}

// WithSink sets the asset sink receiving every pipeline product. The default
// sink passes products through unchanged.
//
// Parameters:
//   - sink: the sink implementation.
//
// Returns:
//   - ImporterOption: the option.
func WithSink(sink AssetSink) ImporterOption {
	return func(i *importerImpl) {
		i.sink = sink
	}
}

// WithCompletionHandler sets a callback fired once per task, from within the
// Advance call that completes it.
//
// Parameters:
//   - handler: the completion callback.
//
// Returns:
//   - ImporterOption: the option.
func WithCompletionHandler(handler func(*scenegraph.Scene)) ImporterOption {
	return func(i *importerImpl) {
		i.onComplete = handler
	}
}

// WithErrorHandler sets a callback fired once per task when it fails.
// Cancellation never fires it.
//
// Parameters:
//   - handler: the error callback.
//
// Returns:
//   - ImporterOption: the option.
func WithErrorHandler(handler func(error)) ImporterOption {
	return func(i *importerImpl) {
		i.onError = handler
	}
}

// WithProgressHandler sets a callback fired after every unit of work, from
// within Advance.
//
// Parameters:
//   - handler: the progress callback.
//
// Returns:
//   - ImporterOption: the option.
func WithProgressHandler(handler func(ProgressSnapshot)) ImporterOption {
	return func(i *importerImpl) {
		i.onProgress = handler
	}
}

// NewImporter creates an importer.
//
// Parameters:
//   - opts: optional configuration.
//
// Returns:
//   - Importer: the importer instance.
func NewImporter(opts ...ImporterOption) Importer {
	imp := &importerImpl{
		parser: newGLTFParser(),
		logger: zap.NewNop(),
		sink:   runtimeSink{},
	}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

func (i *importerImpl) Begin(path string) (Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	return i.begin(filepath.Base(path), filepath.Dir(path), data)
}

func (i *importerImpl) BeginBytes(name string, data []byte) (Task, error) {
	return i.begin(name, ".", data)
}

func (i *importerImpl) begin(name, baseDir string, data []byte) (Task, error) {
	doc, binChunk, err := i.parser.parse(data)
	if err != nil {
		i.logger.Error("parse failed", zap.String("asset", name), zap.Error(err))
		return nil, err
	}

	cache := newAssetCache(doc, binChunk)

	st := &importState{
		name:    name,
		baseDir: baseDir,
		doc:     doc,
		cache:   cache,
		sink:    i.sink,
		logger:  i.logger,
	}
	st.reader = &accessorReader{doc: doc, cache: cache}

	i.logger.Info("import started",
		zap.String("asset", name),
		zap.Int("buffers", len(doc.Buffers)),
		zap.Int("meshes", len(doc.Meshes)),
		zap.Int("nodes", len(doc.Nodes)),
		zap.Int("animations", len(doc.Animations)))

	return &taskImpl{
		st:         st,
		stages:     newPipeline(),
		tracker:    newProgressTracker(),
		onComplete: i.onComplete,
		onError:    i.onError,
		onProgress: i.onProgress,
	}, nil
}

func (i *importerImpl) Load(path string) (*scenegraph.Scene, error) {
	task, err := i.Begin(path)
	if err != nil {
		return nil, err
	}
	for task.Advance() {
	}
	if err := task.Err(); err != nil {
		return nil, err
	}
	return task.Result(), nil
}
