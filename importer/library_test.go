package importer

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lodestone3d/lodestone/scenegraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAsset(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLibraryCachesScenes(t *testing.T) {
	path := writeAsset(t, "tri.glb", triangleGLB())
	lib := NewLibrary(NewImporter())

	first, err := lib.Load(path)
	require.NoError(t, err)
	second, err := lib.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)

	cached, ok := lib.Get(path)
	assert.True(t, ok)
	assert.Same(t, first, cached)
}

func TestLibraryEvict(t *testing.T) {
	path := writeAsset(t, "tri.glb", triangleGLB())
	lib := NewLibrary(NewImporter())

	first, err := lib.Load(path)
	require.NoError(t, err)

	lib.Evict(path)
	_, ok := lib.Get(path)
	assert.False(t, ok)

	second, err := lib.Load(path)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestLibraryLoadAsync(t *testing.T) {
	path := writeAsset(t, "tri.glb", triangleGLB())
	lib := NewLibrary(NewImporter(), WithWorkers(2))

	var wg sync.WaitGroup
	var mu sync.Mutex
	scenes := make([]*scenegraph.Scene, 0, 4)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		lib.LoadAsync(path, func(scene *scenegraph.Scene, err error) {
			defer wg.Done()
			assert.NoError(t, err)
			mu.Lock()
			scenes = append(scenes, scene)
			mu.Unlock()
		})
	}
	wg.Wait()

	require.Len(t, scenes, 4)
	for _, s := range scenes[1:] {
		assert.Same(t, scenes[0], s)
	}
}

func TestLibraryLoadAsyncReportsErrors(t *testing.T) {
	path := writeAsset(t, "broken.glb", overrunAccessorGLB())
	lib := NewLibrary(NewImporter())

	var wg sync.WaitGroup
	wg.Add(1)
	lib.LoadAsync(path, func(scene *scenegraph.Scene, err error) {
		defer wg.Done()
		assert.Nil(t, scene)
		assert.ErrorIs(t, err, ErrReference)
	})
	wg.Wait()

	_, ok := lib.Get(path)
	assert.False(t, ok)
}
