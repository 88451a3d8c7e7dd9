package simplify

import "github.com/go-gl/mathgl/mgl64"

// quadric is a symmetric 4x4 plane quadric stored as the ten scalars of its
// upper triangle, row-major:
//
//	[ 0 1 2 3 ]
//	[ 1 4 5 6 ]
//	[ 2 5 7 8 ]
//	[ 3 6 8 9 ]
//
// Summing quadrics built from the planes of a vertex's incident triangles
// gives a matrix whose evaluation at a point is the summed squared distance
// from that point to every plane.
type quadric [10]float64

// quadricFromPlane builds the quadric of the plane ax + by + cz + d = 0.
// The normal (a, b, c) must be unit length for eval to be a true distance.
func quadricFromPlane(a, b, c, d float64) quadric {
	return quadric{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}
}

// add returns the element-wise sum q + o.
func (q quadric) add(o quadric) quadric {
	for i := range q {
		q[i] += o[i]
	}
	return q
}

// eval computes v'Qv for the homogeneous point (x, y, z, 1).
func (q quadric) eval(x, y, z float64) float64 {
	return q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
}

// det returns the determinant of the 3x3 matrix assembled from the stored
// scalars at the given indices (row-major order).
func (q quadric) det(a11, a12, a13, a21, a22, a23, a31, a32, a33 int) float64 {
	// mgl64.Mat3 literals are column-major.
	return mgl64.Mat3{
		q[a11], q[a21], q[a31],
		q[a12], q[a22], q[a32],
		q[a13], q[a23], q[a33],
	}.Det()
}
