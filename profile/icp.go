package profile

import "math"

// RefineICP iteratively aligns src onto dst: nearest-neighbour
// correspondences, outlier rejection, closed-form re-estimation on the
// surviving pairs, and application of the step transform to the whole
// current cloud. The mean inlier residual is measured from the cloud
// after the step is applied. dst never moves, so its spatial index is
// built once and reused across iterations.
//
// The accumulated transform is composed as a full matrix product every
// step (T = T_step * T), since rotation and scale change per
// iteration. Refinement stops when the mean inlier residual changes by
// less than cfg.ConvergenceTol, when fewer than 2 correspondences
// survive the outlier gate, or after cfg.MaxIterations.
func RefineICP(src, dst Curve, cfg AlignSettings) (Curve, AffineMatrix, float64, int) {
	total := Identity()
	current := append(Curve(nil), src...)
	if len(src) < 2 || len(dst) < 2 {
		return current, total, math.Inf(1), 0
	}

	index := newNNIndex(dst)
	prevErr := math.Inf(1)
	lastErr := math.Inf(1)
	iterations := 0

	srcInliers := make(Curve, 0, len(src))
	dstInliers := make(Curve, 0, len(src))

	for iter := 0; iter < cfg.MaxIterations; iter++ {
		srcInliers = srcInliers[:0]
		dstInliers = dstInliers[:0]
		for _, p := range current {
			j, d := index.Nearest(p)
			if d > cfg.OutlierThreshold {
				continue
			}
			srcInliers = append(srcInliers, p)
			dstInliers = append(dstInliers, dst[j])
		}
		if len(srcInliers) < 2 {
			break
		}

		step, _ := EstimateSimilarity(srcInliers, dstInliers, cfg.AllowScale)
		current = TransformCurve(current, step)
		total = Multiply(step, total)
		iterations++

		// Residual comes from the cloud the step was just applied to,
		// not from the correspondences it was estimated on.
		errSum := 0.0
		gated := 0
		for _, p := range current {
			_, d := index.Nearest(p)
			if d > cfg.OutlierThreshold {
				continue
			}
			gated++
			errSum += d
		}
		if gated == 0 {
			break
		}
		lastErr = errSum / float64(gated)
		if math.Abs(prevErr-lastErr) < cfg.ConvergenceTol {
			break
		}
		prevErr = lastErr
	}

	return current, total, lastErr, iterations
}
