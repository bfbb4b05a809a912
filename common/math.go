package common

import (
	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order (glTF/WebGPU convention).
// Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := float32(0)
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			buf[i*4+j] = sum
		}
	}
	copy(out, buf[:])
}

// ComposeTRS builds a 4x4 column-major matrix from a translation vector,
// a rotation quaternion (x, y, z, w), and a scale vector, in that
// application order: M = T * R * S.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - t: translation (x, y, z)
//   - r: rotation quaternion (x, y, z, w)
//   - s: scale (x, y, z)
func ComposeTRS(out []float32, t [3]float32, r [4]float32, s [3]float32) {
	x, y, z, w := r[0], r[1], r[2], r[3]

	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	out[0] = (1 - 2*(yy+zz)) * s[0]
	out[1] = 2 * (xy + wz) * s[0]
	out[2] = 2 * (xz - wy) * s[0]
	out[3] = 0

	out[4] = 2 * (xy - wz) * s[1]
	out[5] = (1 - 2*(xx+zz)) * s[1]
	out[6] = 2 * (yz + wx) * s[1]
	out[7] = 0

	out[8] = 2 * (xz + wy) * s[2]
	out[9] = 2 * (yz - wx) * s[2]
	out[10] = (1 - 2*(xx+yy)) * s[2]
	out[11] = 0

	out[12] = t[0]
	out[13] = t[1]
	out[14] = t[2]
	out[15] = 1
}

// Invert4 computes the inverse of a 4x4 column-major matrix using the Laplace
// expansion (cofactor) method. If the matrix is singular (determinant ≈ 0) the
// output is left unchanged and the function returns false.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was successfully inverted, false if singular
func Invert4(out, m []float32) bool {
	// 2x2 sub-determinants of the upper-left and lower-right quadrants.
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return false
	}

	invDet := 1.0 / det

	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet

	return true
}

// Length3 computes the length of a 3D vector.
//
// Parameters:
//   - x, y, z: the vector components
//
// Returns:
//   - float32: the Euclidean length
func Length3(x, y, z float32) float32 {
	return math32.Sqrt(x*x + y*y + z*z)
}

// Normalize3 normalizes a 3D vector. Zero-length vectors are returned
// unchanged.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the normalized vector
func Normalize3(v [3]float32) [3]float32 {
	length := Length3(v[0], v[1], v[2])
	if length < 1e-6 {
		return v
	}
	inv := 1.0 / length
	return [3]float32{v[0] * inv, v[1] * inv, v[2] * inv}
}

// NormalizeQuat normalizes a quaternion (x, y, z, w). A degenerate
// quaternion normalizes to identity.
//
// Parameters:
//   - q: the quaternion to normalize
//
// Returns:
//   - [4]float32: the unit quaternion
func NormalizeQuat(q [4]float32) [4]float32 {
	length := math32.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if length < 1e-6 {
		return [4]float32{0, 0, 0, 1}
	}
	inv := 1.0 / length
	return [4]float32{q[0] * inv, q[1] * inv, q[2] * inv, q[3] * inv}
}

// DotQuat computes the 4D dot product of two quaternions.
//
// Parameters:
//   - a, b: the quaternions
//
// Returns:
//   - float32: the dot product
func DotQuat(a, b [4]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3]
}

// LerpVec3 linearly interpolates between two 3D vectors.
//
// Parameters:
//   - a, b: the endpoints
//   - t: the interpolation factor in [0, 1]
//
// Returns:
//   - [3]float32: the interpolated vector
func LerpVec3(a, b [3]float32, t float32) [3]float32 {
	return [3]float32{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// SlerpQuat spherically interpolates between two unit quaternions. When the
// quaternions are nearly parallel it falls back to normalized linear
// interpolation to avoid division by a vanishing sine.
//
// Parameters:
//   - a, b: the endpoint quaternions (x, y, z, w)
//   - t: the interpolation factor in [0, 1]
//
// Returns:
//   - [4]float32: the interpolated unit quaternion
func SlerpQuat(a, b [4]float32, t float32) [4]float32 {
	cosTheta := DotQuat(a, b)

	// Take the short arc.
	if cosTheta < 0 {
		b = [4]float32{-b[0], -b[1], -b[2], -b[3]}
		cosTheta = -cosTheta
	}

	if cosTheta > 0.9995 {
		return NormalizeQuat([4]float32{
			a[0] + (b[0]-a[0])*t,
			a[1] + (b[1]-a[1])*t,
			a[2] + (b[2]-a[2])*t,
			a[3] + (b[3]-a[3])*t,
		})
	}

	theta := math32.Acos(cosTheta)
	sinTheta := math32.Sin(theta)
	wa := math32.Sin((1-t)*theta) / sinTheta
	wb := math32.Sin(t*theta) / sinTheta

	return [4]float32{
		a[0]*wa + b[0]*wb,
		a[1]*wa + b[1]*wb,
		a[2]*wa + b[2]*wb,
		a[3]*wa + b[3]*wb,
	}
}
