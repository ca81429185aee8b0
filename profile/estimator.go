package profile

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// EstimateSimilarity computes the least-squares similarity transform
// mapping src onto dst (matched correspondences of equal length) using
// the closed-form Umeyama solution: SVD of the 2x2 cross-covariance
// gives the rotation, the singular values give the scale, and the
// centroids give the translation.
//
// With allowScale false the scale is fixed at 1 (rigid / Procrustes
// fit). The returned residual is the mean Euclidean distance between
// the transformed src points and dst.
//
// Degenerate inputs (empty sets, mismatched lengths) yield the identity
// transform and an infinite residual; the function never panics. A
// zero-variance src (all points coincident) fixes the scale at 1.
func EstimateSimilarity(src, dst Curve, allowScale bool) (AffineMatrix, float64) {
	n := len(src)
	if n < 1 || n != len(dst) {
		return Identity(), math.Inf(1)
	}

	srcCentroid := src.Centroid()
	dstCentroid := dst.Centroid()

	// Cross-covariance H = src_centered^T * dst_centered / N and the
	// mean squared norm of the centered src (the variance that
	// normalizes the scale estimate).
	var h11, h12, h21, h22, variance float64
	for i := range src {
		sx := src[i].X - srcCentroid.X
		sy := src[i].Y - srcCentroid.Y
		dx := dst[i].X - dstCentroid.X
		dy := dst[i].Y - dstCentroid.Y

		h11 += sx * dx
		h12 += sx * dy
		h21 += sy * dx
		h22 += sy * dy
		variance += sx*sx + sy*sy
	}
	fn := float64(n)
	h := mat.NewDense(2, 2, []float64{h11 / fn, h12 / fn, h21 / fn, h22 / fn})
	variance /= fn

	var svd mat.SVD
	if !svd.Factorize(h, mat.SVDFull) {
		return Identity(), math.Inf(1)
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	// R = V * U^T; a negative determinant means the best orthogonal
	// map is a reflection, which is fixed by negating the last row of
	// V^T (= last column of V).
	var r mat.Dense
	r.Mul(&v, u.T())
	if mat.Det(&r) < 0 {
		v.Set(0, 1, -v.At(0, 1))
		v.Set(1, 1, -v.At(1, 1))
		r.Mul(&v, u.T())
	}

	scale := 1.0
	if allowScale && variance > 1e-12 {
		scale = (values[0] + values[1]) / variance
	}

	a := scale * r.At(0, 0)
	b := scale * r.At(0, 1)
	c := scale * r.At(1, 0)
	d := scale * r.At(1, 1)

	// t = dstCentroid - scale*R*srcCentroid
	tx := dstCentroid.X - (a*srcCentroid.X + b*srcCentroid.Y)
	ty := dstCentroid.Y - (c*srcCentroid.X + d*srcCentroid.Y)

	m := AffineMatrix{A: a, B: b, Tx: tx, C: c, D: d, Ty: ty}
	return m, MeanResidual(src, dst, m)
}

// EstimateRigid is EstimateSimilarity with the scale fixed at 1.
func EstimateRigid(src, dst Curve) (AffineMatrix, float64) {
	return EstimateSimilarity(src, dst, false)
}
