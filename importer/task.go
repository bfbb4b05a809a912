package importer

import (
	"fmt"
	"sync/atomic"

	"github.com/lodestone3d/lodestone/scenegraph"
	"go.uber.org/zap"
)

// TaskState is the lifecycle state of an import task.
type TaskState int

const (
	// TaskIdle is a created task that has not advanced yet.
	TaskIdle TaskState = iota

	// TaskRunning is a task with work remaining.
	TaskRunning

	// TaskCompleted is a task that finished and delivered its scene.
	TaskCompleted

	// TaskFailed is a task that stopped on a fatal error.
	TaskFailed

	// TaskAborted is a task cancelled before completion.
	TaskAborted
)

// String returns the state name.
func (s TaskState) String() string {
	switch s {
	case TaskIdle:
		return "idle"
	case TaskRunning:
		return "running"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// terminal reports whether the state is final.
func (s TaskState) terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskAborted
}

// Task is one in-flight import. The caller drives it by calling Advance
// repeatedly from a single goroutine; each call performs a small bounded
// amount of work, so the driving loop stays responsive. Cancel is the only
// method safe to call from other goroutines.
type Task interface {
	// Advance performs one unit of work.
	//
	// Returns:
	//   - bool: true while more work remains; false once the task reached
	//     a terminal state.
	Advance() bool

	// Cancel requests cancellation. The task aborts at the start of the
	// next Advance call; no completion or error handler fires. Safe to
	// call from any goroutine, and a no-op on finished tasks.
	Cancel()

	// State returns the current lifecycle state.
	//
	// Returns:
	//   - TaskState: the task state.
	State() TaskState

	// Progress returns a snapshot of the current stage's progress.
	//
	// Returns:
	//   - ProgressSnapshot: the progress snapshot.
	Progress() ProgressSnapshot

	// Result returns the imported scene once the task completed.
	//
	// Returns:
	//   - *scenegraph.Scene: the scene, or nil before completion.
	Result() *scenegraph.Scene

	// Err returns the fatal error of a failed task.
	//
	// Returns:
	//   - error: the error, or nil unless the task failed.
	Err() error
}

type taskImpl struct {
	st      *importState
	stages  []pipelineStage
	tracker *progressTracker

	state     TaskState
	stageIdx  int
	unitIdx   int
	prepared  bool
	cancelled atomic.Bool

	result *scenegraph.Scene
	err    error

	onComplete func(*scenegraph.Scene)
	onError    func(error)
	onProgress func(ProgressSnapshot)
}

var _ Task = &taskImpl{}

func (t *taskImpl) Advance() bool {
	if t.state.terminal() {
		return false
	}
	if t.cancelled.Load() {
		t.abort()
		return false
	}
	t.state = TaskRunning

	// Empty stages finish without consuming the call, so every Advance
	// that returns true did real work.
	for {
		stage := t.stages[t.stageIdx]
		if !t.prepared {
			if err := stage.prepare(t.st); err != nil {
				t.fail(fmt.Errorf("loading %s: %w", stage.stage(), err))
				return false
			}
			t.tracker.beginStage(stage.stage(), stage.total())
			t.prepared = true
		}
		if t.unitIdx < stage.total() {
			break
		}
		if !t.finishStage() {
			return false
		}
	}

	stage := t.stages[t.stageIdx]
	if err := stage.step(t.st, t.unitIdx); err != nil {
		t.fail(fmt.Errorf("loading %s, item %d of %d: %w", stage.stage(), t.unitIdx+1, stage.total(), err))
		return false
	}
	t.unitIdx++
	t.recordProgress(stage)

	if t.unitIdx >= stage.total() {
		return t.finishStage()
	}
	return true
}

// finishStage closes the current stage and moves to the next, completing the
// task after the last one. Returns false once the task is terminal.
func (t *taskImpl) finishStage() bool {
	t.tracker.finishStage()
	if t.onProgress != nil {
		t.onProgress(t.tracker.snapshot())
	}
	t.st.logger.Debug("stage finished",
		zap.String("asset", t.st.name),
		zap.Stringer("stage", t.stages[t.stageIdx].stage()),
		zap.Duration("elapsed", t.tracker.stageElapsed(t.stages[t.stageIdx].stage())))

	t.stageIdx++
	t.unitIdx = 0
	t.prepared = false

	if t.stageIdx >= len(t.stages) {
		t.complete()
		return false
	}
	return true
}

func (t *taskImpl) recordProgress(stage pipelineStage) {
	var bytesDone, bytesTotal int64
	if bp, ok := stage.(byteProgresser); ok {
		bytesDone, bytesTotal = bp.byteProgress()
	}
	t.tracker.update(t.unitIdx, bytesDone, bytesTotal)
	if t.onProgress != nil {
		t.onProgress(t.tracker.snapshot())
	}
}

func (t *taskImpl) complete() {
	scene := &scenegraph.Scene{
		Name:       t.st.cache.root.Name,
		Root:       t.st.cache.root,
		Animations: t.st.cache.animations,
		Warnings:   t.st.warnings,
	}
	scene = t.st.sink.InternScene(scene)

	t.result = scene
	t.state = TaskCompleted
	t.st.cache.release()
	t.st.logger.Info("import completed",
		zap.String("asset", t.st.name),
		zap.Int("nodes", scene.NodeCount()),
		zap.Int("animations", len(scene.Animations)),
		zap.Int("warnings", len(scene.Warnings)))
	if t.onComplete != nil {
		t.onComplete(scene)
	}
}

func (t *taskImpl) fail(err error) {
	t.err = err
	t.state = TaskFailed
	t.st.cache.release()
	t.st.logger.Error("import failed",
		zap.String("asset", t.st.name),
		zap.Error(err))
	if t.onError != nil {
		t.onError(err)
	}
}

// abort tears the task down without firing handlers. Cancellation is not an
// error: the caller asked for it and gets silence, not a callback.
func (t *taskImpl) abort() {
	t.state = TaskAborted
	t.st.cache.release()
	t.st.logger.Info("import aborted", zap.String("asset", t.st.name))
}

func (t *taskImpl) Cancel() {
	t.cancelled.Store(true)
}

func (t *taskImpl) State() TaskState {
	return t.state
}

func (t *taskImpl) Progress() ProgressSnapshot {
	return t.tracker.snapshot()
}

func (t *taskImpl) Result() *scenegraph.Scene {
	return t.result
}

func (t *taskImpl) Err() error {
	return t.err
}
