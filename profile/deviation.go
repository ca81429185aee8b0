package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// resamplePoints is the fixed point count both curves are resampled to
// before comparison, so deviation is measured at matching fractions of
// traversed arc length rather than at raw point indices.
const resamplePoints = 300

// ResampleByArcLength redistributes n points uniformly along the
// curve's cumulative arc length, linearly interpolating between the
// original vertices. Curves with fewer than 2 points or zero total
// length are returned unchanged.
func ResampleByArcLength(c Curve, n int) Curve {
	if len(c) < 2 || n < 2 {
		return c
	}

	cum := make([]float64, len(c))
	for i := 1; i < len(c); i++ {
		cum[i] = cum[i-1] + Distance(c[i-1], c[i])
	}
	total := cum[len(cum)-1]
	if total == 0 {
		return c
	}

	out := make(Curve, n)
	seg := 1
	for i := 0; i < n; i++ {
		target := total * float64(i) / float64(n-1)
		for seg < len(cum)-1 && cum[seg] < target {
			seg++
		}
		span := cum[seg] - cum[seg-1]
		t := 0.0
		if span > 0 {
			t = (target - cum[seg-1]) / span
		}
		out[i] = Point{
			X: c[seg-1].X + t*(c[seg].X-c[seg-1].X),
			Y: c[seg-1].Y + t*(c[seg].Y-c[seg-1].Y),
		}
	}
	return out
}

// ComputeDeviation resamples both curves by arc length, truncates to
// the shorter common length and reports per-index deviation
// statistics. The returned slice holds the unrounded per-index
// deviations of the resampled curves, in order. Empty input yields
// (nil, nil): metrics are absent, not zero.
//
// Statistics and the profile length are rounded to 2 decimals,
// worst-point coordinates to 1, as a presentation contract.
func ComputeDeviation(ref, sample Curve) (*DeviationMetrics, []float64) {
	if len(ref) == 0 || len(sample) == 0 {
		return nil, nil
	}

	refR := ResampleByArcLength(ref, resamplePoints)
	samR := ResampleByArcLength(sample, resamplePoints)
	n := len(refR)
	if len(samR) < n {
		n = len(samR)
	}
	if n == 0 {
		return nil, nil
	}

	devs := make([]float64, n)
	maxIdx := 0
	for i := 0; i < n; i++ {
		devs[i] = Distance(refR[i], samR[i])
		if devs[i] > devs[maxIdx] {
			maxIdx = i
		}
	}

	sorted := append([]float64(nil), devs...)
	sort.Float64s(sorted)

	var sumSq float64
	for _, d := range devs {
		sumSq += d * d
	}

	metrics := &DeviationMetrics{
		MaxDeviation:  round2(devs[maxIdx]),
		MeanDeviation: round2(stat.Mean(devs, nil)),
		RMSDeviation:  round2(math.Sqrt(sumSq / float64(n))),
		P95Deviation:  round2(stat.Quantile(0.95, stat.Empirical, sorted, nil)),
		ProfileLength: round2(math.Max(ref.Length(), sample.Length())),
		Worst: WorstPoint{
			Reference: roundPoint(refR[maxIdx]),
			Sample:    roundPoint(samR[maxIdx]),
			Index:     maxIdx,
		},
	}
	return metrics, devs
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round1(v float64) float64 { return math.Round(v*10) / 10 }

func roundPoint(p Point) Point {
	return Point{X: round1(p.X), Y: round1(p.Y)}
}
