package profile

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// CurveColors holds the plot colors for the two curves and the
// worst-point marker.
type CurveColors struct {
	Reference color.RGBA
	Sample    color.RGBA
	Worst     color.RGBA
}

// DefaultCurveColors returns the standard palette: blue reference,
// red sample, orange worst-point marker.
func DefaultCurveColors() CurveColors {
	return CurveColors{
		Reference: color.RGBA{0, 0, 255, 255},
		Sample:    color.RGBA{255, 0, 0, 255},
		Worst:     color.RGBA{255, 140, 0, 255},
	}
}

// ComparisonRenderer renders the reference and aligned sample curves
// into a single raster image.
type ComparisonRenderer struct {
	Reference Curve
	Aligned   Curve
	Worst     *WorstPoint
	Colors    CurveColors
	Scale     float64 // pixels per curve unit
	Padding   int     // padding around the image
}

// NewComparisonRenderer creates a renderer with default settings
func NewComparisonRenderer(report *AnalysisReport) *ComparisonRenderer {
	r := &ComparisonRenderer{
		Colors:  DefaultCurveColors(),
		Scale:   1.0,
		Padding: 30,
	}
	if report != nil {
		r.Reference = report.Reference
		r.Aligned = report.Aligned
		if report.Metrics != nil {
			worst := report.Metrics.Worst
			r.Worst = &worst
		}
	}
	return r
}

// CalculateBounds computes the joint bounding box of both curves.
func (r *ComparisonRenderer) CalculateBounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64
	for _, c := range []Curve{r.Reference, r.Aligned} {
		for _, p := range c {
			minX = math.Min(minX, p.X)
			minY = math.Min(minY, p.Y)
			maxX = math.Max(maxX, p.X)
			maxY = math.Max(maxY, p.Y)
		}
	}
	if minX > maxX {
		return 0, 0, 0, 0
	}
	return minX, minY, maxX, maxY
}

// Render draws both curves onto a white background with a legend and,
// when known, a marker ring at the worst-deviation point.
func (r *ComparisonRenderer) Render() *image.RGBA {
	minX, minY, maxX, maxY := r.CalculateBounds()

	width := int((maxX-minX)*r.Scale) + 2*r.Padding
	height := int((maxY-minY)*r.Scale) + 2*r.Padding
	if width < 100 {
		width = 100
	}
	if height < 100 {
		height = 100
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}

	toPixel := func(p Point) (int, int) {
		return int((p.X-minX)*r.Scale) + r.Padding, int((p.Y-minY)*r.Scale) + r.Padding
	}

	r.drawCurve(img, r.Reference, r.Colors.Reference, toPixel)
	r.drawCurve(img, r.Aligned, r.Colors.Sample, toPixel)

	if r.Worst != nil {
		x, y := toPixel(r.Worst.Sample)
		drawRing(img, x, y, 6, r.Colors.Worst)
	}

	r.drawLegend(img)
	return img
}

func (r *ComparisonRenderer) drawCurve(img *image.RGBA, c Curve, col color.RGBA, toPixel func(Point) (int, int)) {
	for i := 1; i < len(c); i++ {
		x0, y0 := toPixel(c[i-1])
		x1, y1 := toPixel(c[i])
		drawLine(img, x0, y0, x1, y1, col)
	}
	if len(c) == 1 {
		x, y := toPixel(c[0])
		drawDot(img, x, y, 2, col)
	}
}

// drawLine draws a 1px line using Bresenham's algorithm
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if image.Pt(x0, y0).In(img.Bounds()) {
			img.Set(x0, y0, c)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawDot draws a filled circle
func drawDot(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				if image.Pt(cx+dx, cy+dy).In(img.Bounds()) {
					img.Set(cx+dx, cy+dy, c)
				}
			}
		}
	}
}

// drawRing draws an unfilled circle outline two pixels thick
func drawRing(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := dx*dx + dy*dy
			if d2 <= radius*radius && d2 >= (radius-2)*(radius-2) {
				if image.Pt(cx+dx, cy+dy).In(img.Bounds()) {
					img.Set(cx+dx, cy+dy, c)
				}
			}
		}
	}
}

// drawLegend adds the two curve labels with color swatches in the
// top-left corner.
func (r *ComparisonRenderer) drawLegend(img *image.RGBA) {
	entries := []struct {
		label string
		col   color.RGBA
	}{
		{"reference", r.Colors.Reference},
		{"sample", r.Colors.Sample},
	}

	y := 15
	for _, e := range entries {
		for dy := 0; dy < 12; dy++ {
			for dx := 0; dx < 12; dx++ {
				img.Set(10+dx, y+dy-6, e.col)
			}
		}
		drawText(img, 28, y+4, e.label, color.RGBA{0, 0, 0, 255})
		y += 18
	}
}

// drawText renders text onto an image at the specified position
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(text)
}

// WritePNG encodes the rendered comparison to w.
func (r *ComparisonRenderer) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.Render()); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// SavePNG renders and writes the comparison image to a file.
func (r *ComparisonRenderer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return r.WritePNG(f)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
