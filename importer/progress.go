package importer

import (
	"fmt"
	"time"
)

// ProgressSnapshot describes how far an import has advanced. Snapshots are
// immutable copies; holding one across further Advance calls is safe.
type ProgressSnapshot struct {
	// Stage is the pipeline stage the snapshot describes.
	Stage Stage

	// Current is the number of completed units in the stage.
	Current int

	// Total is the number of units in the stage.
	Total int

	// BytesDone and BytesTotal carry byte progress for stages that report
	// it; both are zero otherwise.
	BytesDone, BytesTotal int64

	// StageStart reports whether this is the first snapshot of its stage.
	StageStart bool

	// StageDone reports whether the stage has finished.
	StageDone bool

	// Elapsed is the time the stage has been running, or its final
	// duration once StageDone is set.
	Elapsed time.Duration
}

// StatusLine renders the snapshot as a one-line status suitable for a
// console or a window title, e.g. "Loading textures 3/7..." while running
// and "Loading textures 7/7... done (842 ms)" once the stage completes.
// Byte-reporting stages render sizes instead of unit counts.
//
// Returns:
//   - string: the rendered status line.
func (p ProgressSnapshot) StatusLine() string {
	var line string
	if p.BytesTotal > 0 {
		line = fmt.Sprintf("Loading %s %s / %s...", p.Stage, formatBytes(p.BytesDone), formatBytes(p.BytesTotal))
	} else {
		line = fmt.Sprintf("Loading %s %d/%d...", p.Stage, p.Current, p.Total)
	}
	if p.StageDone {
		line += fmt.Sprintf(" done (%d ms)", p.Elapsed.Milliseconds())
	}
	return line
}

// formatBytes renders a byte count with a binary unit, one decimal place
// above KB.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// progressTracker records per-stage timing and exposes snapshots. The clock
// is injectable for tests.
type progressTracker struct {
	now        func() time.Time
	stageStart time.Time
	elapsed    [stageCount]time.Duration

	current      Stage
	currentDone  int
	currentTotal int
	bytesDone    int64
	bytesTotal   int64
	stageDone    bool
	started      bool
}

func newProgressTracker() *progressTracker {
	return &progressTracker{now: time.Now}
}

// beginStage starts timing a stage.
func (t *progressTracker) beginStage(s Stage, total int) {
	t.current = s
	t.currentDone = 0
	t.currentTotal = total
	t.bytesDone = 0
	t.bytesTotal = 0
	t.stageDone = false
	t.started = true
	t.stageStart = t.now()
}

// update records unit progress, with optional byte progress for stages that
// report it.
func (t *progressTracker) update(done int, bytesDone, bytesTotal int64) {
	t.currentDone = done
	t.bytesDone = bytesDone
	t.bytesTotal = bytesTotal
}

// finishStage stops the stage clock and records the final duration.
func (t *progressTracker) finishStage() {
	t.stageDone = true
	t.elapsed[t.current] = t.now().Sub(t.stageStart)
}

// stageElapsed returns the recorded duration of a finished stage.
func (t *progressTracker) stageElapsed(s Stage) time.Duration {
	return t.elapsed[s]
}

// snapshot returns the current progress.
func (t *progressTracker) snapshot() ProgressSnapshot {
	snap := ProgressSnapshot{
		Stage:      t.current,
		Current:    t.currentDone,
		Total:      t.currentTotal,
		BytesDone:  t.bytesDone,
		BytesTotal: t.bytesTotal,
		StageStart: t.currentDone <= 1 && !t.stageDone,
		StageDone:  t.stageDone,
	}
	if !t.started {
		return snap
	}
	if t.stageDone {
		snap.Elapsed = t.elapsed[t.current]
	} else {
		snap.Elapsed = t.now().Sub(t.stageStart)
	}
	return snap
}
