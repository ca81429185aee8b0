package profile

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// CurveToLineString converts a curve to an orb LineString in pixel
// coordinates.
func CurveToLineString(c Curve) orb.LineString {
	ls := make(orb.LineString, len(c))
	for i, p := range c {
		ls[i] = orb.Point{p.X, p.Y}
	}
	return ls
}

// ReportToFeatureCollection converts an analysis report to a GeoJSON
// FeatureCollection: one LineString per curve (role "reference" /
// "aligned"), and a Point marking the worst deviation when metrics
// exist. Coordinates are pixel-space, not geographic.
func ReportToFeatureCollection(report *AnalysisReport) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if report == nil {
		return fc
	}

	if len(report.Reference) > 0 {
		f := geojson.NewFeature(CurveToLineString(report.Reference))
		f.Properties["role"] = "reference"
		fc.Append(f)
	}
	if len(report.Aligned) > 0 {
		f := geojson.NewFeature(CurveToLineString(report.Aligned))
		f.Properties["role"] = "aligned"
		f.Properties["alignPath"] = string(report.Path)
		fc.Append(f)
	}
	if report.Metrics != nil {
		f := geojson.NewFeature(orb.Point{report.Metrics.Worst.Sample.X, report.Metrics.Worst.Sample.Y})
		f.Properties["role"] = "worstPoint"
		f.Properties["deviationPx"] = report.Metrics.MaxDeviation
		f.Properties["index"] = report.Metrics.Worst.Index
		fc.Append(f)
	}
	return fc
}

// ReportToGeoJSON renders the report's feature collection to JSON.
func ReportToGeoJSON(report *AnalysisReport) ([]byte, error) {
	data, err := json.Marshal(ReportToFeatureCollection(report))
	if err != nil {
		return nil, fmt.Errorf("marshaling GeoJSON: %w", err)
	}
	return data, nil
}
