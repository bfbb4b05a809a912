package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock advances only when told to.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestProgressStatusLineUnits(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	tracker := newProgressTracker()
	tracker.now = clock.now

	tracker.beginStage(StageTextures, 7)
	tracker.update(1, 0, 0)
	assert.True(t, tracker.snapshot().StageStart)

	tracker.update(3, 0, 0)
	assert.False(t, tracker.snapshot().StageStart)
	assert.Equal(t, "Loading textures 3/7...", tracker.snapshot().StatusLine())

	clock.advance(842 * time.Millisecond)
	tracker.update(7, 0, 0)
	tracker.finishStage()

	snap := tracker.snapshot()
	assert.Equal(t, "Loading textures 7/7... done (842 ms)", snap.StatusLine())
	assert.Equal(t, 842*time.Millisecond, tracker.stageElapsed(StageTextures))
}

func TestProgressStatusLineBytes(t *testing.T) {
	tracker := newProgressTracker()
	tracker.beginStage(StageBuffers, 3)
	tracker.update(1, 512*1024, 1258291) // ~1.2 MB

	assert.Equal(t, "Loading buffers 512.0 KB / 1.2 MB...", tracker.snapshot().StatusLine())
}

func TestProgressElapsedTicksWhileRunning(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	tracker := newProgressTracker()
	tracker.now = clock.now

	tracker.beginStage(StageMeshes, 10)
	clock.advance(50 * time.Millisecond)

	assert.Equal(t, 50*time.Millisecond, tracker.snapshot().Elapsed)
	assert.False(t, tracker.snapshot().StageDone)
}

func TestProgressPerStageTimings(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	tracker := newProgressTracker()
	tracker.now = clock.now

	tracker.beginStage(StageBuffers, 1)
	clock.advance(10 * time.Millisecond)
	tracker.finishStage()

	tracker.beginStage(StageImages, 2)
	clock.advance(30 * time.Millisecond)
	tracker.finishStage()

	assert.Equal(t, 10*time.Millisecond, tracker.stageElapsed(StageBuffers))
	assert.Equal(t, 30*time.Millisecond, tracker.stageElapsed(StageImages))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "0 B", formatBytes(0))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KB", formatBytes(1024))
	assert.Equal(t, "1.5 MB", formatBytes(3*1<<20/2))
}
