// Package spatialmath defines spatial mathematical operations.
// Poses represent a position in 3D space as a translation and an orientation. They are backed by
// unit dual quaternions so that composition never leaves the rigid-transform manifold.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// dualQuaternion defines functions to perform rigid dual quaternion transformations in 3D.
// The real part holds the unit rotation quaternion, the dual part holds 0.5 * t * real.
type dualQuaternion struct {
	dualquat.Number
}

// newDualQuaternion returns a pointer to a new dualQuaternion object whose rotation is the
// normalized q and whose translation is pt.
func newDualQuaternion(pt r3.Vector, q quat.Number) *dualQuaternion {
	q = normalizeQuat(q)
	return &dualQuaternion{dualquat.Number{
		Real: q,
		Dual: quat.Scale(0.5, quat.Mul(quat.Number{Imag: pt.X, Jmag: pt.Y, Kmag: pt.Z}, q)),
	}}
}

// dualQuaternionFromPose casts or converts a Pose to its dual quaternion form.
func dualQuaternionFromPose(p Pose) *dualQuaternion {
	if q, ok := p.(*dualQuaternion); ok {
		return q
	}
	return newDualQuaternion(p.Point(), p.Orientation().Quaternion())
}

// Point multiplies the dual part by the conjugate of the real part to recover the translation.
func (q *dualQuaternion) Point() r3.Vector {
	t := quat.Scale(2, quat.Mul(q.Dual, quat.Conj(q.Real)))
	return r3.Vector{X: t.Imag, Y: t.Jmag, Z: t.Kmag}
}

// Orientation returns the rotation quaternion as an Orientation.
func (q *dualQuaternion) Orientation() Orientation {
	o := Quaternion(q.Real)
	return &o
}

// Transformation multiplies the dual quat contained in this dualQuaternion by another dual quat.
func (q *dualQuaternion) Transformation(by *dualQuaternion) *dualQuaternion {
	return &dualQuaternion{dualquat.Mul(q.Number, by.Number)}
}

// inverse returns the inverse rigid transform. For a unit dual quaternion this is the quaternion
// conjugate of both parts.
func (q *dualQuaternion) inverse() *dualQuaternion {
	return &dualQuaternion{dualquat.Number{
		Real: quat.Conj(q.Real),
		Dual: quat.Conj(q.Dual),
	}}
}

// normalizeQuat scales q to unit length; a zero quaternion becomes the identity.
func normalizeQuat(q quat.Number) quat.Number {
	norm := quat.Abs(q)
	if norm == 0 {
		return quat.Number{Real: 1}
	}
	if math.Abs(norm-1) < 1e-15 {
		return q
	}
	return quat.Scale(1/norm, q)
}

// Norm returns the norm of the imaginary parts of the quaternion.
func Norm(q quat.Number) float64 {
	return math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same orientation but in the opposing octant.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}
