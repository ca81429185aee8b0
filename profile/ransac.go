package profile

import (
	"math"
	"math/rand"
)

// AlignRANSAC fits a global rigid or similarity transform mapping src
// onto dst by minimal-sample consensus. Correspondences are looked up
// once, from every initial src point to its nearest neighbour in dst,
// and that fixed table is scored against by every candidate; the loop
// never requeries dst. rng supplies the sampling so callers can seed
// runs reproducibly.
//
// The winner is the candidate with the most inliers, ties broken by
// the lower mean inlier residual. With fewer than 2 points on either
// side, or when no candidate reaches cfg.MinInliers, the result is the
// identity transform, an infinite residual and an all-false mask.
func AlignRANSAC(src, dst Curve, cfg AlignSettings, rng *rand.Rand) (AffineMatrix, float64, []bool) {
	mask := make([]bool, len(src))
	if len(src) < 2 || len(dst) < 2 {
		return Identity(), math.Inf(1), mask
	}

	// Fixed correspondence table against the untransformed src.
	index := newNNIndex(dst)
	corr := make(Curve, len(src))
	for i, p := range src {
		j, _ := index.Nearest(p)
		corr[i] = dst[j]
	}

	bestM := Identity()
	bestErr := math.Inf(1)
	bestInliers := 0
	found := false

	samplePair := make(Curve, 2)
	targetPair := make(Curve, 2)
	candMask := make([]bool, len(src))

	for iter := 0; iter < cfg.RANSACIterations; iter++ {
		i := rng.Intn(len(src))
		j := rng.Intn(len(src))
		if i == j {
			continue
		}
		samplePair[0], samplePair[1] = src[i], src[j]
		targetPair[0], targetPair[1] = corr[i], corr[j]

		m, _ := EstimateSimilarity(samplePair, targetPair, cfg.AllowScale)

		inliers := 0
		errSum := 0.0
		for k, p := range src {
			d := Distance(TransformPoint(p, m), corr[k])
			if d < cfg.InlierThreshold {
				candMask[k] = true
				inliers++
				errSum += d
			} else {
				candMask[k] = false
			}
		}
		if inliers < cfg.MinInliers {
			continue
		}
		meanErr := errSum / float64(inliers)
		if inliers > bestInliers || (inliers == bestInliers && meanErr < bestErr) {
			bestM = m
			bestErr = meanErr
			bestInliers = inliers
			copy(mask, candMask)
			found = true
		}
	}

	if !found {
		return Identity(), math.Inf(1), make([]bool, len(src))
	}
	return bestM, bestErr, mask
}

// CountInliers returns the number of true entries in an inlier mask.
func CountInliers(mask []bool) int {
	n := 0
	for _, in := range mask {
		if in {
			n++
		}
	}
	return n
}
