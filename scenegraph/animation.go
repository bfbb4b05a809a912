package scenegraph

import (
	"github.com/lodestone3d/lodestone/common"
)

// AnimationClip is one named animation: a set of channels, each driving one
// node property through a keyframe curve. All interpolation is pre-baked into
// keyframe density; sampling is always piecewise linear.
type AnimationClip struct {
	// Name is the animation identifier.
	Name string

	// Duration is the clip length in seconds (the largest keyframe time
	// across all channels).
	Duration float32

	// Channels are the animated node properties. Pointers, because channels
	// targeting the same node accumulate curves while a clip is built.
	Channels []*AnimationChannel
}

// AnimationChannel groups the curves animating a single node. Unused
// properties are nil.
type AnimationChannel struct {
	// Target is the animated node.
	Target *Node

	// Translation drives the node's local translation.
	Translation *Vec3Curve

	// Rotation drives the node's local rotation.
	Rotation *QuatCurve

	// Scale drives the node's local scale.
	Scale *Vec3Curve

	// Weights drive the node's morph target weights, one curve per target.
	Weights []*ScalarCurve
}

// VectorKeyframe stores a 3D vector value at a specific time.
type VectorKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the 3D vector value at this keyframe.
	Value [3]float32
}

// QuaternionKeyframe stores a quaternion rotation at a specific time.
type QuaternionKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the quaternion value at this keyframe (x, y, z, w).
	Value [4]float32
}

// ScalarKeyframe stores a scalar value at a specific time.
type ScalarKeyframe struct {
	// Time is the keyframe timestamp in seconds.
	Time float32

	// Value is the scalar value at this keyframe.
	Value float32
}

// Vec3Curve is a piecewise-linear 3D vector curve.
type Vec3Curve struct {
	// Keys are the keyframes in ascending time order.
	Keys []VectorKeyframe
}

// Sample evaluates the curve at time t. Times outside the keyframe range
// clamp to the first/last value.
//
// Parameters:
//   - t: the sample time in seconds
//
// Returns:
//   - [3]float32: the interpolated value
func (c *Vec3Curve) Sample(t float32) [3]float32 {
	if len(c.Keys) == 0 {
		return [3]float32{}
	}
	i, frac := locateKey(t, len(c.Keys), func(j int) float32 { return c.Keys[j].Time })
	if frac == 0 {
		return c.Keys[i].Value
	}
	return common.LerpVec3(c.Keys[i].Value, c.Keys[i+1].Value, frac)
}

// QuatCurve is a piecewise spherically-interpolated quaternion curve. Key
// values are continuity-corrected at build time so consecutive keys always
// lie on the short arc.
type QuatCurve struct {
	// Keys are the keyframes in ascending time order.
	Keys []QuaternionKeyframe
}

// Sample evaluates the curve at time t using spherical interpolation. Times
// outside the keyframe range clamp to the first/last value.
//
// Parameters:
//   - t: the sample time in seconds
//
// Returns:
//   - [4]float32: the interpolated unit quaternion
func (c *QuatCurve) Sample(t float32) [4]float32 {
	if len(c.Keys) == 0 {
		return [4]float32{0, 0, 0, 1}
	}
	i, frac := locateKey(t, len(c.Keys), func(j int) float32 { return c.Keys[j].Time })
	if frac == 0 {
		return c.Keys[i].Value
	}
	return common.SlerpQuat(c.Keys[i].Value, c.Keys[i+1].Value, frac)
}

// ScalarCurve is a piecewise-linear scalar curve.
type ScalarCurve struct {
	// Keys are the keyframes in ascending time order.
	Keys []ScalarKeyframe
}

// Sample evaluates the curve at time t. Times outside the keyframe range
// clamp to the first/last value.
//
// Parameters:
//   - t: the sample time in seconds
//
// Returns:
//   - float32: the interpolated value
func (c *ScalarCurve) Sample(t float32) float32 {
	if len(c.Keys) == 0 {
		return 0
	}
	i, frac := locateKey(t, len(c.Keys), func(j int) float32 { return c.Keys[j].Time })
	if frac == 0 {
		return c.Keys[i].Value
	}
	a, b := c.Keys[i].Value, c.Keys[i+1].Value
	return a + (b-a)*frac
}

// locateKey finds the keyframe segment containing time t. Returns the index
// of the segment's left key and the interpolation fraction within the
// segment. A fraction of 0 means the left key's value should be used as-is
// (clamped or exact hit). An exact hit on a duplicated timestamp resolves to
// the later key, so step changes take effect at the keyframe time.
func locateKey(t float32, n int, timeAt func(int) float32) (int, float32) {
	if t <= timeAt(0) {
		return 0, 0
	}
	last := n - 1
	if t >= timeAt(last) {
		return last, 0
	}

	// Binary search for the segment: largest i with timeAt(i) <= t. The early
	// returns guarantee timeAt(lo) <= t < timeAt(hi) throughout, so the
	// segment always has positive width.
	lo, hi := 0, last
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if timeAt(mid) <= t {
			lo = mid
		} else {
			hi = mid
		}
	}

	t0, t1 := timeAt(lo), timeAt(hi)
	return lo, (t - t0) / (t1 - t0)
}
