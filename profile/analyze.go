package profile

import "time"

// Analyze runs the full pipeline on one curve pair: registration of
// the sample onto the reference, then deviation measurement of the
// aligned result. The returned report carries both curves, the
// resolved transform, the alignment path taken and the metrics.
// ErrNoProfile is returned when either curve is empty.
func Analyze(ref, sample Curve, cfg AlignSettings) (*AnalysisReport, error) {
	start := time.Now()

	res, err := Align(ref, sample, cfg)
	if err != nil {
		return nil, err
	}

	metrics, devs := ComputeDeviation(ref, res.Aligned)

	return &AnalysisReport{
		Reference:  ref,
		Aligned:    res.Aligned,
		Transform:  res.Transform,
		Path:       res.Path,
		AlignError: res.Error,
		Metrics:    metrics,
		Deviations: devs,
		Elapsed:    round2(time.Since(start).Seconds()),
	}, nil
}
