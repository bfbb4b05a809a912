package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeTRSTranslationOnly(t *testing.T) {
	var m [16]float32
	ComposeTRS(m[:], [3]float32{3, 4, 5}, [4]float32{0, 0, 0, 1}, [3]float32{1, 1, 1})

	assert.Equal(t, float32(3), m[12])
	assert.Equal(t, float32(4), m[13])
	assert.Equal(t, float32(5), m[14])
	assert.Equal(t, float32(1), m[0])
	assert.Equal(t, float32(1), m[15])
}

func TestComposeTRSRotation(t *testing.T) {
	// 90 degrees around Z maps +X to +Y.
	var m [16]float32
	ComposeTRS(m[:], [3]float32{}, [4]float32{0, 0, 0.7071068, 0.7071068}, [3]float32{1, 1, 1})

	x := [3]float32{m[0], m[1], m[2]}
	assert.InDelta(t, 0, float64(x[0]), 1e-5)
	assert.InDelta(t, 1, float64(x[1]), 1e-5)
	assert.InDelta(t, 0, float64(x[2]), 1e-5)
}

func TestMul4Identity(t *testing.T) {
	var id, m, out [16]float32
	Identity(id[:])
	ComposeTRS(m[:], [3]float32{1, 2, 3}, [4]float32{0, 0, 0, 1}, [3]float32{2, 2, 2})

	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)
}

func TestInvert4Roundtrip(t *testing.T) {
	var m, inv, out, id [16]float32
	ComposeTRS(m[:], [3]float32{5, -2, 1}, [4]float32{0, 0.7071068, 0, 0.7071068}, [3]float32{2, 3, 4})
	Identity(id[:])

	require.True(t, Invert4(inv[:], m[:]))
	Mul4(out[:], m[:], inv[:])
	for i := range out {
		assert.InDelta(t, float64(id[i]), float64(out[i]), 1e-4)
	}
}

func TestInvert4Singular(t *testing.T) {
	var m, inv [16]float32
	assert.False(t, Invert4(inv[:], m[:]))
}

func TestNormalizeQuat(t *testing.T) {
	q := NormalizeQuat([4]float32{0, 0, 2, 0})
	assert.Equal(t, [4]float32{0, 0, 1, 0}, q)

	// Zero quaternion normalizes to identity.
	q = NormalizeQuat([4]float32{})
	assert.Equal(t, [4]float32{0, 0, 0, 1}, q)
}

func TestSlerpQuatEndpoints(t *testing.T) {
	a := [4]float32{0, 0, 0, 1}
	b := [4]float32{0, 0.7071068, 0, 0.7071068}

	got := SlerpQuat(a, b, 0)
	for i := range got {
		assert.InDelta(t, float64(a[i]), float64(got[i]), 1e-5)
	}
	got = SlerpQuat(a, b, 1)
	for i := range got {
		assert.InDelta(t, float64(b[i]), float64(got[i]), 1e-5)
	}
}

func TestSlerpQuatTakesShortArc(t *testing.T) {
	a := [4]float32{0, 0, 0, 1}
	b := [4]float32{0, 0, -0, -1} // same orientation, opposite sign

	got := SlerpQuat(a, b, 0.5)
	// Interpolating between equivalent rotations must not swing through
	// the long arc; the result stays the identity orientation.
	assert.InDelta(t, 1, float64(abs32(got[3])), 1e-5)
}

func TestLerpVec3(t *testing.T) {
	got := LerpVec3([3]float32{0, 0, 0}, [3]float32{10, -10, 4}, 0.25)
	assert.InDelta(t, 2.5, float64(got[0]), 1e-6)
	assert.InDelta(t, -2.5, float64(got[1]), 1e-6)
	assert.InDelta(t, 1, float64(got[2]), 1e-6)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, 7, Coalesce(0, 7))
}

func abs32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
