package importer

import (
	"fmt"

	"github.com/lodestone3d/lodestone/common"
	"go.uber.org/zap"
)

// Stage identifies one phase of the import pipeline. Stages run strictly in
// declaration order; each stage only consumes products of earlier stages.
type Stage int

const (
	StageBuffers Stage = iota
	StageImages
	StageTextures
	StageMaterials
	StageMeshes
	StageNodes
	StageAnimations
	StageSkins

	stageCount
)

// String returns the stage name used in progress lines, e.g. "textures".
func (s Stage) String() string {
	switch s {
	case StageBuffers:
		return "buffers"
	case StageImages:
		return "images"
	case StageTextures:
		return "textures"
	case StageMaterials:
		return "materials"
	case StageMeshes:
		return "meshes"
	case StageNodes:
		return "nodes"
	case StageAnimations:
		return "animations"
	case StageSkins:
		return "skins"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// importState is the shared context threaded through every pipeline stage.
type importState struct {
	name    string
	baseDir string
	doc     *gltfDocument
	cache   *assetCache
	reader  *accessorReader
	sink    AssetSink
	logger  *zap.Logger

	// warnings accumulates non-fatal problems in encounter order.
	warnings []string
}

// warn records a non-fatal problem and logs it. Warned elements get a
// fallback instead of failing the import.
func (st *importState) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	st.warnings = append(st.warnings, msg)
	st.logger.Warn("import warning", zap.String("asset", st.name), zap.String("detail", msg))
}

// fallbackName returns name, or a synthesized "<kind>_<idx>" when the
// document left the element unnamed.
func fallbackName(name, kind string, idx int) string {
	return common.Coalesce(name, fmt.Sprintf("%s_%d", kind, idx))
}

// pipelineStage is one resumable phase of the import. A stage declares how
// many units of work it has after prepare runs, and processes exactly one
// unit per step call. Steps must be independent of wall-clock state so a
// task can pause between any two of them.
type pipelineStage interface {
	// stage identifies this phase.
	stage() Stage

	// prepare runs once when the pipeline enters this stage.
	//
	// Parameters:
	//   - st: the shared import state.
	//
	// Returns:
	//   - error: a fatal error aborting the import.
	prepare(st *importState) error

	// total returns the number of step units, valid after prepare.
	total() int

	// step processes unit i.
	//
	// Parameters:
	//   - st: the shared import state.
	//   - i: the unit index, 0 <= i < total().
	//
	// Returns:
	//   - error: a fatal error aborting the import.
	step(st *importState, i int) error
}

// byteProgresser is implemented by stages whose progress is better expressed
// in bytes than in unit counts. The buffer stage reports loaded bytes so
// large assets show smooth progress.
type byteProgresser interface {
	byteProgress() (done, total int64)
}

// newPipeline returns the stage sequence for one import, in execution order.
func newPipeline() []pipelineStage {
	return []pipelineStage{
		&bufferStage{},
		&imageStage{},
		&textureStage{},
		&materialStage{},
		&meshStage{},
		&nodeStage{},
		&animationStage{},
		&skinStage{},
	}
}
