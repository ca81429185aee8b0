package profile

import "math"

// TransformPoint applies an affine transform to a point
// x' = a*x + b*y + tx
// y' = c*x + d*y + ty
func TransformPoint(p Point, m AffineMatrix) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.Tx,
		Y: m.C*p.X + m.D*p.Y + m.Ty,
	}
}

// TransformCurve applies an affine transform to every point of a curve,
// preserving order.
func TransformCurve(c Curve, m AffineMatrix) Curve {
	result := make(Curve, len(c))
	for i, p := range c {
		result[i] = TransformPoint(p, m)
	}
	return result
}

// Multiply composes two affine transforms: result = m1 * m2
// Applying result is equivalent to applying m2 first, then m1
func Multiply(m1, m2 AffineMatrix) AffineMatrix {
	return AffineMatrix{
		A:  m1.A*m2.A + m1.B*m2.C,
		B:  m1.A*m2.B + m1.B*m2.D,
		Tx: m1.A*m2.Tx + m1.B*m2.Ty + m1.Tx,
		C:  m1.C*m2.A + m1.D*m2.C,
		D:  m1.C*m2.B + m1.D*m2.D,
		Ty: m1.C*m2.Tx + m1.D*m2.Ty + m1.Ty,
	}
}

// Invert computes the inverse of an affine transform
// Returns identity if the matrix is singular (determinant ~= 0)
func Invert(m AffineMatrix) AffineMatrix {
	det := m.A*m.D - m.B*m.C
	if math.Abs(det) < 1e-10 {
		return Identity()
	}

	invDet := 1.0 / det
	return AffineMatrix{
		A:  m.D * invDet,
		B:  -m.B * invDet,
		Tx: (m.B*m.Ty - m.D*m.Tx) * invDet,
		C:  -m.C * invDet,
		D:  m.A * invDet,
		Ty: (m.C*m.Tx - m.A*m.Ty) * invDet,
	}
}

// Translation creates a translation-only transform
func Translation(tx, ty float64) AffineMatrix {
	return AffineMatrix{A: 1, B: 0, Tx: tx, C: 0, D: 1, Ty: ty}
}

// Rotation creates a rotation transform (angle in radians, around origin)
func Rotation(angle float64) AffineMatrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return AffineMatrix{A: cos, B: -sin, Tx: 0, C: sin, D: cos, Ty: 0}
}

// RotationDeg creates a rotation transform (angle in degrees, around origin)
func RotationDeg(degrees float64) AffineMatrix {
	return Rotation(degrees * math.Pi / 180.0)
}

// UniformScale creates a uniform scaling transform around the origin
func UniformScale(s float64) AffineMatrix {
	return AffineMatrix{A: s, B: 0, Tx: 0, C: 0, D: s, Ty: 0}
}

// Similarity builds a similarity transform from its parameters:
// rotate by angle (radians) and scale around the origin, then translate.
func Similarity(angle, scale, tx, ty float64) AffineMatrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return AffineMatrix{
		A: scale * cos, B: -scale * sin, Tx: tx,
		C: scale * sin, D: scale * cos, Ty: ty,
	}
}

// RotationAngle extracts the rotation component in degrees, normalized
// to [0, 360).
func (m AffineMatrix) RotationAngle() float64 {
	deg := math.Atan2(m.C, m.A) * 180 / math.Pi
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ScaleFactor extracts the uniform scale component of the transform.
func (m AffineMatrix) ScaleFactor() float64 {
	return math.Hypot(m.A, m.C)
}

// IsProper reports whether the transform preserves orientation (no
// reflection) with a strictly positive scale.
func (m AffineMatrix) IsProper() bool {
	return m.A*m.D-m.B*m.C > 0
}

// Distance calculates the Euclidean distance between two points
func Distance(p1, p2 Point) float64 {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// MeanResidual returns the mean Euclidean distance between paired
// points of src transformed by m and dst. Returns +Inf for empty or
// mismatched inputs.
func MeanResidual(src, dst Curve, m AffineMatrix) float64 {
	if len(src) == 0 || len(src) != len(dst) {
		return math.Inf(1)
	}
	total := 0.0
	for i, p := range src {
		total += Distance(TransformPoint(p, m), dst[i])
	}
	return total / float64(len(src))
}
