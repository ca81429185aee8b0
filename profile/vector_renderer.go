package profile

import (
	"image/png"
	"io"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer draws the reference and aligned sample curves as
// scalable vector output: stroked polylines over a white background
// with a ring marking the worst-deviation point.
type VectorRenderer struct {
	Reference Curve
	Aligned   Curve
	Worst     *WorstPoint

	StrokeWidth float64           // curve stroke width in curve units
	Padding     float64           // padding around the drawing in curve units
	Resolution  canvas.Resolution // resolution for PNG output (default: 300 DPI)
}

// NewVectorRenderer creates a renderer with default settings
func NewVectorRenderer(report *AnalysisReport) *VectorRenderer {
	r := &VectorRenderer{
		StrokeWidth: 1.5,
		Padding:     20,
		Resolution:  canvas.DPI(300),
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

// canvasRenderer is the surface both the svg and rasterizer renderers
// implement.
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the comparison plot as an SVG to the provided writer
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()

	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, width, height)
	return svgRenderer.Close()
}

// RenderToPNG writes the comparison plot as a PNG to the provided writer
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()

	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, width, height)

	// Rasterizer implements draw.Image, which embeds image.Image
	return png.Encode(w, rast)
}

// renderToCanvas draws both curves (shared logic for SVG and PNG).
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, width, height float64) {
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	// Image pixel coordinates grow downward; canvas Y grows upward.
	toCanvas := func(p Point) (float64, float64) {
		return (p.X - minX) + r.Padding, height - ((p.Y - minY) + r.Padding)
	}

	refStyle := canvas.DefaultStyle
	refStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	refStyle.Stroke = canvas.Paint{Color: canvas.Blue}
	refStyle.StrokeWidth = r.StrokeWidth
	r.strokeCurve(renderer, r.Reference, refStyle, toCanvas)

	sampleStyle := canvas.DefaultStyle
	sampleStyle.Fill = canvas.Paint{Color: canvas.Transparent}
	sampleStyle.Stroke = canvas.Paint{Color: canvas.Red}
	sampleStyle.StrokeWidth = r.StrokeWidth
	r.strokeCurve(renderer, r.Aligned, sampleStyle, toCanvas)

	if r.Worst != nil {
		worstStyle := canvas.DefaultStyle
		worstStyle.Fill = canvas.Paint{Color: canvas.Transparent}
		worstStyle.Stroke = canvas.Paint{Color: canvas.Orange}
		worstStyle.StrokeWidth = r.StrokeWidth

		cx, cy := toCanvas(r.Worst.Sample)
		marker := canvas.Circle(4.0)
		renderer.RenderPath(marker, worstStyle, canvas.Identity.Translate(cx, cy))
	}
}

func (r *VectorRenderer) strokeCurve(renderer canvasRenderer, c Curve, style canvas.Style, toCanvas func(Point) (float64, float64)) {
	if len(c) < 2 {
		return
	}
	cp := &canvas.Path{}
	for i, pt := range c {
		cx, cy := toCanvas(pt)
		if i == 0 {
			cp.MoveTo(cx, cy)
		} else {
			cp.LineTo(cx, cy)
		}
	}
	renderer.RenderPath(cp, style, canvas.Identity)
}

func (r *VectorRenderer) bounds() (minX, minY, maxX, maxY float64) {
	both := append(append(Curve(nil), r.Reference...), r.Aligned...)
	return both.Bounds()
}
