package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3CurveSample(t *testing.T) {
	curve := &Vec3Curve{Keys: []VectorKeyframe{
		{Time: 0, Value: [3]float32{0, 0, 0}},
		{Time: 2, Value: [3]float32{4, 0, 0}},
	}}

	assert.Equal(t, [3]float32{0, 0, 0}, curve.Sample(-1), "clamps before the first key")
	assert.Equal(t, [3]float32{4, 0, 0}, curve.Sample(5), "clamps after the last key")
	mid := curve.Sample(1)
	assert.InDelta(t, 2, float64(mid[0]), 1e-6)
}

func TestVec3CurveEmpty(t *testing.T) {
	curve := &Vec3Curve{}
	assert.Equal(t, [3]float32{}, curve.Sample(1))
}

func TestScalarCurveDuplicatedKeyStepsAtSharedTime(t *testing.T) {
	// Duplicated timestamps encode a step change: the old value holds up to
	// the shared time, the new value applies at it and onward.
	curve := &ScalarCurve{Keys: []ScalarKeyframe{
		{Time: 0, Value: 1},
		{Time: 1, Value: 1},
		{Time: 1, Value: 5},
		{Time: 2, Value: 5},
	}}

	assert.Equal(t, float32(1), curve.Sample(0.999))
	assert.Equal(t, float32(5), curve.Sample(1))
	assert.Equal(t, float32(5), curve.Sample(1.001))
	assert.Equal(t, float32(5), curve.Sample(2))
}

func TestQuatCurveSample(t *testing.T) {
	identity := [4]float32{0, 0, 0, 1}
	zQuarter := [4]float32{0, 0, 0.7071068, 0.7071068}

	curve := &QuatCurve{Keys: []QuaternionKeyframe{
		{Time: 0, Value: identity},
		{Time: 1, Value: zQuarter},
	}}

	assert.Equal(t, identity, curve.Sample(0))
	assert.Equal(t, zQuarter, curve.Sample(1))

	// Halfway between identity and a 90 degree z rotation is 45 degrees.
	mid := curve.Sample(0.5)
	assert.InDelta(t, 0.3826834, float64(mid[2]), 1e-4)
	assert.InDelta(t, 0.9238795, float64(mid[3]), 1e-4)
}

func TestQuatCurveEmpty(t *testing.T) {
	curve := &QuatCurve{}
	assert.Equal(t, [4]float32{0, 0, 0, 1}, curve.Sample(0))
}

func TestScalarCurveBinarySearch(t *testing.T) {
	keys := make([]ScalarKeyframe, 100)
	for i := range keys {
		keys[i] = ScalarKeyframe{Time: float32(i), Value: float32(i * 10)}
	}
	curve := &ScalarCurve{Keys: keys}

	assert.InDelta(t, 425, float64(curve.Sample(42.5)), 1e-3)
	assert.Equal(t, float32(0), curve.Sample(0))
	assert.Equal(t, float32(990), curve.Sample(99))
}
