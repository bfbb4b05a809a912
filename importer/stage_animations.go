package importer

import (
	"github.com/lodestone3d/lodestone/common"
	"github.com/lodestone3d/lodestone/scenegraph"
)

// animationStage converts animations, one clip per step. Channels are
// grouped per target node so a clip holds at most one channel entry per
// node. Rotation tracks get quaternion continuity correction, and STEP
// samplers are baked into duplicated keyframes so every curve samples with
// plain linear interpolation.
type animationStage struct {
	count int
}

var _ pipelineStage = &animationStage{}

func (s *animationStage) stage() Stage { return StageAnimations }

func (s *animationStage) prepare(st *importState) error {
	s.count = len(st.doc.Animations)
	return nil
}

func (s *animationStage) total() int { return s.count }

func (s *animationStage) step(st *importState, i int) error {
	src := &st.doc.Animations[i]

	clip := &scenegraph.AnimationClip{
		Name: fallbackName(src.Name, "animation", i),
	}

	// Channels targeting the same node merge into one clip channel.
	channelByNode := make(map[int]*scenegraph.AnimationChannel)

	for c := range src.Channels {
		ch := &src.Channels[c]
		if ch.Target.Node == nil {
			st.warn("animation %d channel %d targets no node, skipped", i, c)
			continue
		}
		nodeIdx := *ch.Target.Node
		if nodeIdx < 0 || nodeIdx >= len(st.cache.nodes) || st.cache.nodes[nodeIdx] == nil {
			st.warn("animation %d channel %d targets node %d which does not exist, skipped", i, c, nodeIdx)
			continue
		}
		if ch.Sampler < 0 || ch.Sampler >= len(src.Samplers) {
			return referenceError("animation %d channel %d references sampler %d out of range (%d samplers)", i, c, ch.Sampler, len(src.Samplers))
		}
		sampler := &src.Samplers[ch.Sampler]

		times, err := st.reader.readScalars(sampler.Input)
		if err != nil {
			return err
		}
		if !monotonic(times) {
			st.warn("animation %d channel %d has non-monotonic keyframe times, skipped", i, c)
			continue
		}

		out := channelByNode[nodeIdx]
		if out == nil {
			out = &scenegraph.AnimationChannel{Target: st.cache.nodes[nodeIdx]}
			channelByNode[nodeIdx] = out
			clip.Channels = append(clip.Channels, out)
		}

		if err := s.extractTrack(st, i, c, ch, sampler, times, out); err != nil {
			return err
		}
		if len(times) > 0 && times[len(times)-1] > clip.Duration {
			clip.Duration = times[len(times)-1]
		}
	}

	st.cache.animations = append(st.cache.animations, clip)
	return nil
}

func (s *animationStage) extractTrack(st *importState, animIdx, chanIdx int, ch *gltfAnimChannel, sampler *gltfAnimSampler, times []float32, out *scenegraph.AnimationChannel) error {
	cubic := sampler.Interpolation == gltfAnimInterpolationCubicSpline
	step := sampler.Interpolation == gltfAnimInterpolationStep
	if cubic {
		st.warn("animation %d channel %d uses cubic spline interpolation, downgraded to linear", animIdx, chanIdx)
	}

	switch ch.Target.Path {
	case gltfAnimPathTranslation, gltfAnimPathScale:
		values, err := st.reader.readVec3(sampler.Output)
		if err != nil {
			return err
		}
		if cubic {
			values = middleVec3(values)
		}
		if len(values) != len(times) {
			return referenceError("animation %d channel %d has %d keyframe values for %d times", animIdx, chanIdx, len(values), len(times))
		}
		curve := buildVec3Curve(times, values, step)
		if ch.Target.Path == gltfAnimPathTranslation {
			out.Translation = curve
		} else {
			out.Scale = curve
		}

	case gltfAnimPathRotation:
		values, err := st.reader.readVec4(sampler.Output, 1)
		if err != nil {
			return err
		}
		if cubic {
			values = middleVec4(values)
		}
		if len(values) != len(times) {
			return referenceError("animation %d channel %d has %d keyframe values for %d times", animIdx, chanIdx, len(values), len(times))
		}
		out.Rotation = buildQuatCurve(times, values, step)

	case gltfAnimPathWeights:
		values, err := st.reader.readScalars(sampler.Output)
		if err != nil {
			return err
		}
		if cubic {
			values = middleScalars(values, len(times))
		}
		if len(times) == 0 || len(values)%len(times) != 0 {
			return referenceError("animation %d channel %d weight count %d does not divide into %d keyframes", animIdx, chanIdx, len(values), len(times))
		}
		targets := len(values) / len(times)
		out.Weights = make([]*scenegraph.ScalarCurve, targets)
		for t := 0; t < targets; t++ {
			per := make([]float32, len(times))
			for k := range times {
				per[k] = values[k*targets+t]
			}
			out.Weights[t] = buildScalarCurve(times, per, step)
		}

	default:
		st.warn("animation %d channel %d animates unknown path %q, skipped", animIdx, chanIdx, ch.Target.Path)
	}
	return nil
}

// monotonic reports whether keyframe times never decrease.
func monotonic(times []float32) bool {
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return false
		}
	}
	return true
}

// middleVec3 extracts the value elements from cubic spline output, which
// stores in-tangent, value, out-tangent triplets.
func middleVec3(values [][3]float32) [][3]float32 {
	out := make([][3]float32, 0, len(values)/3)
	for i := 1; i < len(values); i += 3 {
		out = append(out, values[i])
	}
	return out
}

func middleVec4(values [][4]float32) [][4]float32 {
	out := make([][4]float32, 0, len(values)/3)
	for i := 1; i < len(values); i += 3 {
		out = append(out, values[i])
	}
	return out
}

func middleScalars(values []float32, keyCount int) []float32 {
	if keyCount == 0 {
		return nil
	}
	targets := len(values) / (3 * keyCount)
	out := make([]float32, 0, keyCount*targets)
	for k := 0; k < keyCount; k++ {
		base := (k*3 + 1) * targets
		out = append(out, values[base:base+targets]...)
	}
	return out
}

// buildVec3Curve assembles a curve, baking STEP interpolation by duplicating
// each keyframe's value at the next keyframe's timestamp.
func buildVec3Curve(times []float32, values [][3]float32, step bool) *scenegraph.Vec3Curve {
	curve := &scenegraph.Vec3Curve{}
	for i := range times {
		if step && i > 0 {
			curve.Keys = append(curve.Keys, scenegraph.VectorKeyframe{Time: times[i], Value: values[i-1]})
		}
		curve.Keys = append(curve.Keys, scenegraph.VectorKeyframe{Time: times[i], Value: values[i]})
	}
	return curve
}

// buildQuatCurve assembles a rotation curve with continuity correction:
// consecutive quaternions on opposite hemispheres get their sign flipped so
// interpolation always takes the short arc.
func buildQuatCurve(times []float32, values [][4]float32, step bool) *scenegraph.QuatCurve {
	fixed := make([][4]float32, len(values))
	for i := range values {
		q := common.NormalizeQuat(values[i])
		if i > 0 && common.DotQuat(fixed[i-1], q) < 0 {
			q = [4]float32{-q[0], -q[1], -q[2], -q[3]}
		}
		fixed[i] = q
	}

	curve := &scenegraph.QuatCurve{}
	for i := range times {
		if step && i > 0 {
			curve.Keys = append(curve.Keys, scenegraph.QuaternionKeyframe{Time: times[i], Value: fixed[i-1]})
		}
		curve.Keys = append(curve.Keys, scenegraph.QuaternionKeyframe{Time: times[i], Value: fixed[i]})
	}
	return curve
}

func buildScalarCurve(times []float32, values []float32, step bool) *scenegraph.ScalarCurve {
	curve := &scenegraph.ScalarCurve{}
	for i := range times {
		if step && i > 0 {
			curve.Keys = append(curve.Keys, scenegraph.ScalarKeyframe{Time: times[i], Value: values[i-1]})
		}
		curve.Keys = append(curve.Keys, scenegraph.ScalarKeyframe{Time: times[i], Value: values[i]})
	}
	return curve
}
