package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/kwv/profilegauge/profile"
)

// maxUploadBytes caps multipart curve uploads at 32 MiB.
const maxUploadBytes = 32 << 20

// newHTTPServer creates an HTTP server with all endpoints
func newHTTPServer(app *App) http.Handler {
	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		log.Printf("[HTTP] /health request from %s", r.RemoteAddr)
		w.Header().Set("Content-Type", "application/json")
		status := struct {
			Status      string    `json:"status"`
			Timestamp   time.Time `json:"timestamp"`
			HasBaseline bool      `json:"hasBaseline"`
			Results     int       `json:"results"`
		}{
			Status:      "ok",
			Timestamp:   time.Now(),
			HasBaseline: app.Baseline != nil,
			Results:     app.Store.Len(),
		}
		if err := json.NewEncoder(w).Encode(status); err != nil {
			log.Printf("Error encoding health status: %v", err)
		}
	})

	// Upload + analyze endpoint
	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}
		handleProcess(app, w, r)
	})

	// Result endpoints: /result/{id}.png, .svg, .geojson
	mux.HandleFunc("/result/", func(w http.ResponseWriter, r *http.Request) {
		handleResult(app, w, r)
	})

	// Deviation chart endpoint
	mux.HandleFunc("/report/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/report/")
		rec, ok := app.Store.Get(id)
		if !ok {
			http.Error(w, "Result not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := renderDeviationChart(w, rec); err != nil {
			log.Printf("Error rendering deviation chart for %s: %v", id, err)
		}
	})

	// Minimal upload console
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, indexHTML)
	})

	return mux
}

// handleProcess accepts a multipart upload of two curve files, runs
// the engine and returns the stored result as JSON.
func handleProcess(app *App, w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, fmt.Sprintf("Parsing upload: %v", err), http.StatusBadRequest)
		return
	}

	ref, err := readCurveUpload(r, "reference")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sample, err := readCurveUpload(r, "sample")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	cfg := app.Config.Align
	if mode := r.FormValue("align_mode"); mode != "" {
		am := profile.AlignMode(mode)
		if !am.Valid() {
			http.Error(w, fmt.Sprintf("Unknown align_mode %q", mode), http.StatusBadRequest)
			return
		}
		cfg.Mode = am
	}
	if v := r.FormValue("inlier_px"); v != "" {
		var px float64
		if _, err := fmt.Sscanf(v, "%f", &px); err != nil || px <= 0 {
			http.Error(w, fmt.Sprintf("Invalid inlier_px %q", v), http.StatusBadRequest)
			return
		}
		cfg.InlierThreshold = px
	}
	if v := r.FormValue("allow_scale"); v != "" {
		cfg.AllowScale = v == "true" || v == "on" || v == "1"
	}

	if tol := app.Config.SimplifyTolerance; tol > 0 {
		ref = profile.SimplifyCurve(ref, tol)
		sample = profile.SimplifyCurve(sample, tol)
	}

	report, err := profile.Analyze(ref, sample, cfg)
	if err != nil {
		http.Error(w, fmt.Sprintf("Analysis failed: %v", err), http.StatusUnprocessableEntity)
		return
	}

	rec := app.Store.Put(report)
	log.Printf("[HTTP] processed curve pair: id=%s path=%s points=%d/%d",
		rec.ID, report.Path, len(ref), len(sample))

	w.Header().Set("Content-Type", "application/json")
	resp := struct {
		ID        string                    `json:"id"`
		Elapsed   float64                   `json:"time"`
		Path      profile.AlignPath         `json:"path"`
		Metrics   *profile.DeviationMetrics `json:"metrics"`
		Transform profile.AffineMatrix      `json:"transform"`
	}{
		ID:        rec.ID,
		Elapsed:   report.Elapsed,
		Path:      report.Path,
		Metrics:   report.Metrics,
		Transform: report.Transform,
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Error encoding process response: %v", err)
	}
}

// readCurveUpload parses one named multipart file into a curve.
func readCurveUpload(r *http.Request, field string) (profile.Curve, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("missing %q file: %w", field, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading %q file: %w", field, err)
	}

	curve, err := profile.ParseCurve(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %q curve: %w", field, err)
	}
	if len(curve) == 0 {
		return nil, fmt.Errorf("%q curve holds no points", field)
	}
	return curve, nil
}

// handleResult serves a stored result in the format implied by the
// path suffix: .png (raster plot), .svg (vector plot), .geojson.
func handleResult(app *App, w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/result/")

	var id, format string
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		id, format = name[:idx], name[idx+1:]
	} else {
		id, format = name, "geojson"
	}

	rec, ok := app.Store.Get(id)
	if !ok {
		http.Error(w, "Result not found", http.StatusNotFound)
		return
	}

	switch format {
	case "png":
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		if err := profile.NewComparisonRenderer(rec.Report).WritePNG(w); err != nil {
			log.Printf("Error encoding result PNG for %s: %v", id, err)
		}
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Header().Set("Cache-Control", "no-cache")
		if err := profile.NewVectorRenderer(rec.Report).RenderToSVG(w); err != nil {
			log.Printf("Error rendering result SVG for %s: %v", id, err)
		}
	case "geojson", "json":
		data, err := profile.ReportToGeoJSON(rec.Report)
		if err != nil {
			http.Error(w, "Encoding failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write(data)
	default:
		http.Error(w, fmt.Sprintf("Unknown result format %q", format), http.StatusNotFound)
	}
}

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>profilegauge</title></head>
<body>
<h1>profilegauge</h1>
<p>Upload a reference and a sample curve (JSON [[x,y],...] or x,y CSV).</p>
<form action="/process" method="post" enctype="multipart/form-data">
  <p>Reference: <input type="file" name="reference"></p>
  <p>Sample: <input type="file" name="sample"></p>
  <p>Mode:
    <select name="align_mode">
      <option value="ransac">ransac</option>
      <option value="icp">icp</option>
      <option value="piecewise">piecewise</option>
      <option value="auto">auto</option>
    </select>
  </p>
  <p>Inlier threshold (px): <input type="text" name="inlier_px" value="25"></p>
  <p>Allow scale: <input type="checkbox" name="allow_scale" checked></p>
  <p><input type="submit" value="Analyze"></p>
</form>
<p>Results: /result/{id}.png | /result/{id}.svg | /result/{id}.geojson | /report/{id}</p>
</body>
</html>`
