package profile

import (
	"errors"
	"testing"
)

func TestAnalyzeFullPipeline(t *testing.T) {
	ref := ellipse(100, 60, 300)
	sample := TransformCurve(ref, Multiply(Translation(2, -1), UniformScale(1.05)))

	cfg := DefaultAlignSettings()
	cfg.Seed = 8

	report, err := Analyze(ref, sample, cfg)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Path != PathRANSAC {
		t.Errorf("Path = %q, want %q", report.Path, PathRANSAC)
	}
	if report.Metrics == nil {
		t.Fatal("report has no metrics")
	}
	if len(report.Deviations) != resamplePoints {
		t.Errorf("got %d deviations, want %d", len(report.Deviations), resamplePoints)
	}
	// The fixed-table residual leaves a gap on the order of the point
	// spacing, so clean data registers a small but nonzero deviation.
	if report.Metrics.MaxDeviation > 5.0 {
		t.Errorf("MaxDeviation = %v, clean data should register below 5px", report.Metrics.MaxDeviation)
	}
	if len(report.Aligned) != len(sample) {
		t.Errorf("aligned curve has %d points, want %d", len(report.Aligned), len(sample))
	}
	if report.Elapsed < 0 {
		t.Errorf("Elapsed = %v", report.Elapsed)
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	if _, err := Analyze(nil, ellipse(10, 5, 20), DefaultAlignSettings()); !errors.Is(err, ErrNoProfile) {
		t.Errorf("error = %v, want ErrNoProfile", err)
	}
	if _, err := Analyze(ellipse(10, 5, 20), nil, DefaultAlignSettings()); !errors.Is(err, ErrNoProfile) {
		t.Errorf("error = %v, want ErrNoProfile", err)
	}
}
