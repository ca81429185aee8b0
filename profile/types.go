// Package profile implements robust 2D registration of laser-profile
// curves and deviation measurement between a reference ("perfect")
// curve and a sample ("test") curve.
package profile

import "math"

// Point represents a 2D pixel coordinate
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Curve is an ordered sequence of points tracing a profile line.
// Order matters for the piecewise fallback (first/last points are the
// curve endpoints) and for arc-length traversal in the deviation
// analyzer; RANSAC and ICP treat it as an unordered cloud.
type Curve []Point

// AffineMatrix encodes a 2D homogeneous transform with implicit bottom
// row (0 0 1): x' = ax + by + tx, y' = cx + dy + ty.
// Transforms produced by the registration engine keep the top-left 2x2
// block equal to scale*R with det > 0 (proper rotation, no reflection).
type AffineMatrix struct {
	A  float64 `json:"a"`
	B  float64 `json:"b"`
	Tx float64 `json:"tx"`
	C  float64 `json:"c"`
	D  float64 `json:"d"`
	Ty float64 `json:"ty"`
}

// Identity returns an identity matrix (no transformation)
func Identity() AffineMatrix {
	return AffineMatrix{A: 1, B: 0, Tx: 0, C: 0, D: 1, Ty: 0}
}

// AlignMode selects the registration strategy
type AlignMode string

const (
	// ModeRANSAC tries the RANSAC global fit first and falls through
	// to ICP when the fit is rejected.
	ModeRANSAC AlignMode = "ransac"
	// ModeICP skips RANSAC and runs ICP refinement directly.
	ModeICP AlignMode = "icp"
	// ModePiecewise forces the translation-only anchor warp.
	ModePiecewise AlignMode = "piecewise"
	// ModeAuto is an alias for ModeRANSAC kept for config compatibility.
	ModeAuto AlignMode = "auto"
)

// Valid reports whether m names a known alignment mode.
func (m AlignMode) Valid() bool {
	switch m {
	case ModeRANSAC, ModeICP, ModePiecewise, ModeAuto:
		return true
	}
	return false
}

// AlignSettings holds the caller-tunable registration parameters.
// Distances are in pixels.
type AlignSettings struct {
	Mode             AlignMode `yaml:"mode" json:"mode"`
	InlierThreshold  float64   `yaml:"inlierThreshold" json:"inlierThreshold"`   // RANSAC inlier distance (default 25)
	AllowScale       bool      `yaml:"allowScale" json:"allowScale"`             // similarity vs rigid estimation
	RANSACIterations int       `yaml:"ransacIterations" json:"ransacIterations"` // sampling loop length (default 300)
	MinInliers       int       `yaml:"minInliers" json:"minInliers"`             // candidate support floor (default 10)
	MaxIterations    int       `yaml:"maxIterations" json:"maxIterations"`       // ICP iteration cap (default 80)
	ConvergenceTol   float64   `yaml:"convergenceTol" json:"convergenceTol"`     // ICP error-delta stop (default 1e-3)
	OutlierThreshold float64   `yaml:"outlierThreshold" json:"outlierThreshold"` // ICP correspondence gate (default 12)
	Seed             int64     `yaml:"seed" json:"seed"`                         // RANSAC RNG seed; 0 = time-based
}

// DefaultAlignSettings returns the parameter set used when the caller
// supplies nothing.
func DefaultAlignSettings() AlignSettings {
	return AlignSettings{
		Mode:             ModeRANSAC,
		InlierThreshold:  25.0,
		AllowScale:       true,
		RANSACIterations: 300,
		MinInliers:       10,
		MaxIterations:    80,
		ConvergenceTol:   1e-3,
		OutlierThreshold: 12.0,
	}
}

// AlignPath records which registration stage produced the final result
type AlignPath string

const (
	PathRANSAC    AlignPath = "ransac"
	PathRANSACICP AlignPath = "ransac+icp"
	PathICP       AlignPath = "icp"
	PathPiecewise AlignPath = "piecewise"
	PathNone      AlignPath = "none"
)

// AlignmentResult is the output of the registration engine
type AlignmentResult struct {
	Aligned    Curve        `json:"aligned"`    // transformed sample curve
	Transform  AffineMatrix `json:"transform"`  // resolved total transform
	Error      float64      `json:"error"`      // mean residual, +Inf when undefined
	InlierMask []bool       `json:"-"`          // per sample point; nil for ICP/piecewise paths
	Path       AlignPath    `json:"path"`       // which stage produced the result
	Iterations int          `json:"iterations"` // ICP iterations, 0 otherwise
}

// WorstPoint locates the maximal-deviation sample on both curves
type WorstPoint struct {
	Reference Point `json:"reference"`
	Sample    Point `json:"sample"`
	Index     int   `json:"index"`
}

// DeviationMetrics summarizes the per-index deviation of two aligned,
// arc-length-resampled curves. Numeric fields are rounded for
// presentation: 2 decimals for statistics and lengths, 1 decimal for
// worst-point coordinates.
type DeviationMetrics struct {
	MaxDeviation  float64    `json:"max_deviation_px"`
	MeanDeviation float64    `json:"mean_deviation_px"`
	RMSDeviation  float64    `json:"rms_deviation_px"`
	P95Deviation  float64    `json:"p95_deviation_px"`
	ProfileLength float64    `json:"total_profile_length_px"`
	Worst         WorstPoint `json:"worst_point"`
}

// AnalysisReport bundles everything a single engine invocation produced
type AnalysisReport struct {
	Reference  Curve             `json:"-"`
	Aligned    Curve             `json:"-"`
	Transform  AffineMatrix      `json:"transform"`
	Path       AlignPath         `json:"path"`
	AlignError float64           `json:"align_error"`
	Metrics    *DeviationMetrics `json:"metrics"` // nil when no usable curve data
	Deviations []float64         `json:"-"`       // per-index deviation of the resampled curves
	Elapsed    float64           `json:"time"`    // seconds
}

// Length returns the total arc length of the curve (sum of segment
// chord lengths).
func (c Curve) Length() float64 {
	total := 0.0
	for i := 1; i < len(c); i++ {
		total += Distance(c[i-1], c[i])
	}
	return total
}

// Centroid returns the arithmetic mean of the curve's points, or the
// zero point for an empty curve.
func (c Curve) Centroid() Point {
	if len(c) == 0 {
		return Point{}
	}
	var sumX, sumY float64
	for _, p := range c {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(c))
	return Point{X: sumX / n, Y: sumY / n}
}

// Bounds returns the axis-aligned bounding box of the curve.
// Returns zeros for an empty curve.
func (c Curve) Bounds() (minX, minY, maxX, maxY float64) {
	if len(c) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = c[0].X, c[0].X
	minY, maxY = c[0].Y, c[0].Y
	for _, p := range c[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return minX, minY, maxX, maxY
}
