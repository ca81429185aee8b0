package profile

import "errors"

// ErrCannotSegment is returned when a curve is too short to carve
// usable anchor regions from its ends.
var ErrCannotSegment = errors.New("profile: curve too short to segment anchors")

// AlignPiecewise warps the sample curve onto the reference with a
// position-dependent translation and nothing else: the first and last
// k points of each curve form top and bottom anchors, each anchor pair
// yields a centroid-difference offset, and every sample point receives
// a blend of the two offsets interpolated linearly by curve index.
// Curve order carries the geometry here, so both inputs must run the
// same direction end to end.
//
// The anchor length is k = max(10, round(0.25*N)), shrunk to N/3 when
// the two anchors would overlap. Rotation and scale are deliberately
// untouched; this is the degraded path for curves a global fit cannot
// handle.
func AlignPiecewise(ref, sample Curve) (Curve, error) {
	n := len(sample)
	if n == 0 || len(ref) == 0 {
		return nil, ErrCannotSegment
	}

	k := anchorLength(n)
	kr := anchorLength(len(ref))
	if k == 0 || kr == 0 {
		return nil, ErrCannotSegment
	}

	topDelta := anchorOffset(ref[:kr], sample[:k])
	bottomDelta := anchorOffset(ref[len(ref)-kr:], sample[n-k:])

	out := make(Curve, n)
	for i, p := range sample {
		w := 1.0
		if n > 1 {
			w = float64(n-1-i) / float64(n-1)
		}
		out[i] = Point{
			X: p.X + w*topDelta.X + (1-w)*bottomDelta.X,
			Y: p.Y + w*topDelta.Y + (1-w)*bottomDelta.Y,
		}
	}
	return out, nil
}

func anchorLength(n int) int {
	k := int(float64(n)*0.25 + 0.5)
	if k < 10 {
		k = 10
	}
	if 2*k > n {
		k = n / 3
	}
	return k
}

// anchorOffset is the translation moving the sample anchor's centroid
// onto the reference anchor's centroid. Empty anchors contribute no
// correction.
func anchorOffset(ref, sample Curve) Point {
	if len(ref) == 0 || len(sample) == 0 {
		return Point{}
	}
	rc := ref.Centroid()
	sc := sample.Centroid()
	return Point{X: rc.X - sc.X, Y: rc.Y - sc.Y}
}
