package profile

import (
	"bytes"
	"image/png"
	"testing"
)

func TestComparisonRendererRender(t *testing.T) {
	report := &AnalysisReport{
		Reference: line(50, 0, 0, 4, 2),
		Aligned:   line(50, 0, 5, 4, 2),
		Metrics: &DeviationMetrics{
			MaxDeviation: 5,
			Worst:        WorstPoint{Sample: Point{100, 55}, Index: 25},
		},
	}

	r := NewComparisonRenderer(report)
	img := r.Render()

	bounds := img.Bounds()
	if bounds.Dx() < 100 || bounds.Dy() < 100 {
		t.Errorf("image %dx%d below minimum size", bounds.Dx(), bounds.Dy())
	}

	var refPixels, samplePixels int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			switch img.RGBAAt(x, y) {
			case r.Colors.Reference:
				refPixels++
			case r.Colors.Sample:
				samplePixels++
			}
		}
	}
	if refPixels == 0 {
		t.Error("reference curve not drawn")
	}
	if samplePixels == 0 {
		t.Error("sample curve not drawn")
	}
}

func TestComparisonRendererEmptyCurves(t *testing.T) {
	r := NewComparisonRenderer(&AnalysisReport{})
	img := r.Render()
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Errorf("empty render is %dx%d, want the 100x100 floor", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestComparisonRendererWritePNG(t *testing.T) {
	r := NewComparisonRenderer(&AnalysisReport{
		Reference: ellipse(40, 25, 80),
		Aligned:   ellipse(40, 25, 80),
	})

	var buf bytes.Buffer
	if err := r.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG() error = %v", err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Fatalf("output is not decodable PNG: %v", err)
	}
}

func TestCalculateBounds(t *testing.T) {
	r := &ComparisonRenderer{
		Reference: Curve{{-5, 2}, {10, 8}},
		Aligned:   Curve{{0, -3}, {7, 12}},
	}

	minX, minY, maxX, maxY := r.CalculateBounds()
	if minX != -5 || minY != -3 || maxX != 10 || maxY != 12 {
		t.Errorf("bounds = (%v,%v)-(%v,%v), want (-5,-3)-(10,12)", minX, minY, maxX, maxY)
	}

	empty := &ComparisonRenderer{}
	if a, b, c, d := empty.CalculateBounds(); a != 0 || b != 0 || c != 0 || d != 0 {
		t.Error("empty renderer must report zero bounds")
	}
}
