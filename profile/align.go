package profile

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// ErrNoProfile is returned when one of the input curves is empty, i.e.
// upstream extraction produced no usable contour.
var ErrNoProfile = errors.New("profile: no usable profile curve")

// RANSAC acceptance floors: the global fit is kept only when it is
// supported by at least this many inliers and its mean inlier error is
// below max(acceptErrorFloor, configured inlier threshold).
const (
	acceptInlierFloor = 20
	acceptErrorFloor  = 20.0
)

// Align registers the sample curve onto the reference curve and
// reports which stage produced the result. ModeRANSAC (and ModeAuto)
// tries the global RANSAC fit first; a rejected fit falls through to
// ICP refinement seeded with the best RANSAC model when one exists.
// ModeICP runs the refiner directly and ModePiecewise forces the
// translation-only anchor warp. Any failure in a stronger stage
// degrades to the next weaker one; only completely empty input
// surfaces as an error.
func Align(ref, sample Curve, cfg AlignSettings) (AlignmentResult, error) {
	if len(ref) == 0 || len(sample) == 0 {
		return AlignmentResult{Transform: Identity(), Error: math.Inf(1), Path: PathNone}, ErrNoProfile
	}

	mode := cfg.Mode
	if mode == ModeAuto || !mode.Valid() {
		mode = ModeRANSAC
	}

	switch mode {
	case ModePiecewise:
		return alignPiecewiseStage(ref, sample)
	case ModeICP:
		return alignICPStage(ref, sample, sample, Identity(), cfg, PathICP)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	m, meanErr, mask := AlignRANSAC(sample, ref, cfg, rng)
	if ransacAccepted(mask, meanErr, cfg) {
		return AlignmentResult{
			Aligned:    TransformCurve(sample, m),
			Transform:  m,
			Error:      meanErr,
			InlierMask: mask,
			Path:       PathRANSAC,
		}, nil
	}

	// Rejected fits still make a useful ICP seed when they produced a
	// finite model.
	initial := Identity()
	start := sample
	if !math.IsInf(meanErr, 1) {
		initial = m
		start = TransformCurve(sample, m)
	}
	return alignICPStage(ref, sample, start, initial, cfg, PathRANSACICP)
}

func ransacAccepted(mask []bool, meanErr float64, cfg AlignSettings) bool {
	return CountInliers(mask) >= acceptInlierFloor &&
		meanErr < math.Max(acceptErrorFloor, cfg.InlierThreshold)
}

// alignICPStage refines start (sample already advanced by seed) onto
// ref and composes the refinement with the seed. An unusable
// refinement degrades to the piecewise warp.
func alignICPStage(ref, sample, start Curve, seed AffineMatrix, cfg AlignSettings, path AlignPath) (AlignmentResult, error) {
	aligned, step, icpErr, iters := RefineICP(start, ref, cfg)
	if math.IsInf(icpErr, 1) {
		return alignPiecewiseStage(ref, sample)
	}
	return AlignmentResult{
		Aligned:    aligned,
		Transform:  Multiply(step, seed),
		Error:      icpErr,
		Path:       path,
		Iterations: iters,
	}, nil
}

// alignPiecewiseStage is the last rung of the degradation chain. When
// even anchor segmentation fails, the sample is passed through
// untouched so deviation can still be reported against raw positions.
func alignPiecewiseStage(ref, sample Curve) (AlignmentResult, error) {
	warped, err := AlignPiecewise(ref, sample)
	if err != nil {
		return AlignmentResult{
			Aligned:   append(Curve(nil), sample...),
			Transform: Identity(),
			Error:     math.Inf(1),
			Path:      PathNone,
		}, nil
	}
	// The warp is per-point rather than a single matrix, so the
	// transform stays identity and no fit residual is defined.
	return AlignmentResult{
		Aligned:   warped,
		Transform: Identity(),
		Error:     0,
		Path:      PathPiecewise,
	}, nil
}
