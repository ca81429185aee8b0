package profile

import (
	"errors"
	"testing"
)

func line(n int, x0, y0, dx, dy float64) Curve {
	c := make(Curve, n)
	for i := 0; i < n; i++ {
		c[i] = Point{X: x0 + float64(i)*dx, Y: y0 + float64(i)*dy}
	}
	return c
}

func TestAnchorLength(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{100, 25},    // round(0.25*100)
		{200, 50},    // large curve
		{40, 10},     // floor of 10 applies
		{30, 10},     // 2k == 20 <= 30, floor stays
		{15, 5},      // 2*10 > 15, shrink to 15/3
		{5, 1},       // shrink to 5/3
		{2, 0},       // cannot segment
		{1, 0},       // cannot segment
	}

	for _, tt := range tests {
		if got := anchorLength(tt.n); got != tt.want {
			t.Errorf("anchorLength(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestAlignPiecewiseConstantOffset(t *testing.T) {
	// Sample displaced by a constant offset: both anchor deltas equal
	// the offset, so every point is corrected exactly.
	ref := line(100, 0, 0, 1, 0.5)
	sample := TransformCurve(ref, Translation(8, -3))

	warped, err := AlignPiecewise(ref, sample)
	if err != nil {
		t.Fatalf("AlignPiecewise() error = %v", err)
	}
	for i := range warped {
		if !withinTol(Distance(warped[i], ref[i]), 0, 1e-9) {
			t.Fatalf("point %d: got %v, want %v", i, warped[i], ref[i])
		}
	}
}

func TestAlignPiecewiseInterpolatesBetweenAnchors(t *testing.T) {
	// Different corrections at the two ends must blend linearly by
	// curve index: full top correction at index 0, full bottom
	// correction at index N-1.
	n := 101
	ref := line(n, 0, 0, 1, 0)
	sample := make(Curve, n)
	copy(sample, ref)
	// Shear the sample: top end offset (0, -4), bottom end offset (0, +6).
	for i := range sample {
		w := float64(n-1-i) / float64(n-1)
		sample[i].Y += w*(-4) + (1-w)*6
	}

	warped, err := AlignPiecewise(ref, sample)
	if err != nil {
		t.Fatalf("AlignPiecewise() error = %v", err)
	}

	// The anchor centroids see averaged offsets rather than the pure
	// endpoint values, so correction is approximate away from exact
	// linearity but endpoints must move toward the reference.
	if Distance(warped[0], ref[0]) >= Distance(sample[0], ref[0]) {
		t.Error("top endpoint was not improved")
	}
	if Distance(warped[n-1], ref[n-1]) >= Distance(sample[n-1], ref[n-1]) {
		t.Error("bottom endpoint was not improved")
	}

	// X stays untouched: the warp is translation-only.
	for i := range warped {
		if !almostEqual(warped[i].X, sample[i].X) {
			t.Fatalf("point %d: X changed from %v to %v", i, sample[i].X, warped[i].X)
		}
	}
}

func TestAlignPiecewiseSinglePoint(t *testing.T) {
	// N==1 cannot carve anchors.
	_, err := AlignPiecewise(Curve{{0, 0}}, Curve{{5, 5}})
	if !errors.Is(err, ErrCannotSegment) {
		t.Errorf("error = %v, want ErrCannotSegment", err)
	}
}

func TestAlignPiecewiseTooShort(t *testing.T) {
	tests := []struct {
		name   string
		ref    Curve
		sample Curve
	}{
		{"empty sample", line(50, 0, 0, 1, 0), nil},
		{"empty ref", nil, line(50, 0, 0, 1, 0)},
		{"two-point sample", line(50, 0, 0, 1, 0), line(2, 0, 0, 1, 0)},
		{"two-point ref", line(2, 0, 0, 1, 0), line(50, 0, 0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := AlignPiecewise(tt.ref, tt.sample); !errors.Is(err, ErrCannotSegment) {
				t.Errorf("error = %v, want ErrCannotSegment", err)
			}
		})
	}
}

func TestAlignPiecewiseNoRotationOrScale(t *testing.T) {
	// A rotated sample keeps its shape: the warp only translates.
	ref := line(60, 0, 0, 0, 2)
	sample := TransformCurve(ref, RotationDeg(10))

	warped, err := AlignPiecewise(ref, sample)
	if err != nil {
		t.Fatalf("AlignPiecewise() error = %v", err)
	}

	// Segment lengths are preserved only under pure translation per
	// index pair with equal offsets; under the blended warp they may
	// change slightly, but the overall chord length change stays far
	// below what a scale correction would introduce.
	origChord := Distance(sample[0], sample[len(sample)-1])
	warpChord := Distance(warped[0], warped[len(warped)-1])
	if withinTol(origChord, 0, 1e-9) {
		t.Fatal("degenerate sample chord")
	}
	if ratio := warpChord / origChord; ratio < 0.9 || ratio > 1.1 {
		t.Errorf("chord ratio = %v, warp should not rescale the curve", ratio)
	}
}
