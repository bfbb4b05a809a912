package importer

import (
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/lodestone3d/lodestone/scenegraph"
)

// Library caches imported scenes by path and offers asynchronous loading on
// a shared worker pool. Scenes are parallelized across imports, never within
// one: each import still runs its pipeline on a single goroutine.
type Library interface {
	// Load returns the cached scene for path, importing it on a miss.
	//
	// Parameters:
	//   - path: the .glb or .gltf file path.
	//
	// Returns:
	//   - *scenegraph.Scene: the scene.
	//   - error: the first fatal import error.
	Load(path string) (*scenegraph.Scene, error)

	// LoadAsync imports path on the worker pool and invokes done from the
	// worker goroutine when finished. Cached scenes still go through the
	// pool so done always runs off the caller's goroutine.
	//
	// Parameters:
	//   - path: the .glb or .gltf file path.
	//   - done: the completion callback, receiving the scene or the error.
	LoadAsync(path string, done func(*scenegraph.Scene, error))

	// Get returns the cached scene for path without importing.
	//
	// Parameters:
	//   - path: the file path used to load the scene.
	//
	// Returns:
	//   - *scenegraph.Scene: the cached scene, or nil.
	//   - bool: true when the scene was cached.
	Get(path string) (*scenegraph.Scene, bool)

	// Evict removes a cached scene.
	//
	// Parameters:
	//   - path: the file path used to load the scene.
	Evict(path string)

	// Clear removes every cached scene.
	Clear()
}

type libraryImpl struct {
	mu     sync.RWMutex
	imp    Importer
	scenes map[string]*scenegraph.Scene

	pool   worker.DynamicWorkerPool
	taskMu sync.Mutex
	taskID int
}

var _ Library = &libraryImpl{}

// LibraryOption configures a Library.
type LibraryOption func(*libraryImpl)

// WithWorkers sets the worker pool size for asynchronous loads. The default
// is 2.
//
// Parameters:
//   - n: the worker count, minimum 1.
//
// Returns:
//   - LibraryOption: the option.
func WithWorkers(n int) LibraryOption {
	return func(l *libraryImpl) {
		if n < 1 {
			n = 1
		}
		l.pool = worker.NewDynamicWorkerPool(n, 64, 1*time.Second)
	}
}

// NewLibrary creates a scene library backed by the given importer.
//
// Parameters:
//   - imp: the importer used on cache misses.
//   - opts: optional configuration.
//
// Returns:
//   - Library: the library instance.
func NewLibrary(imp Importer, opts ...LibraryOption) Library {
	l := &libraryImpl{
		imp:    imp,
		scenes: make(map[string]*scenegraph.Scene),
		pool:   worker.NewDynamicWorkerPool(2, 64, 1*time.Second),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *libraryImpl) Load(path string) (*scenegraph.Scene, error) {
	l.mu.RLock()
	scene, ok := l.scenes[path]
	l.mu.RUnlock()
	if ok {
		return scene, nil
	}

	scene, err := l.imp.Load(path)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	// Another goroutine may have finished the same import first; keep the
	// scene already cached so callers share one instance.
	if cached, ok := l.scenes[path]; ok {
		scene = cached
	} else {
		l.scenes[path] = scene
	}
	l.mu.Unlock()
	return scene, nil
}

func (l *libraryImpl) LoadAsync(path string, done func(*scenegraph.Scene, error)) {
	l.taskMu.Lock()
	id := l.taskID
	l.taskID++
	l.taskMu.Unlock()

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			scene, err := l.Load(path)
			if done != nil {
				done(scene, err)
			}
			return nil, nil
		},
	})
}

func (l *libraryImpl) Get(path string) (*scenegraph.Scene, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	scene, ok := l.scenes[path]
	return scene, ok
}

func (l *libraryImpl) Evict(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.scenes, path)
}

func (l *libraryImpl) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.scenes = make(map[string]*scenegraph.Scene)
}
