package profile

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// ParseCurveFile reads an ordered profile curve from a JSON or CSV
// file, picking the decoder by content.
func ParseCurveFile(path string) (Curve, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return ParseCurve(data)
}

// ParseCurve decodes an ordered profile curve. Three layouts are
// accepted: a bare JSON array of [x,y] pairs, a JSON object with a
// "points" array of the same pairs, and two-column CSV (an optional
// header row is skipped).
func ParseCurve(data []byte) (Curve, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("empty curve data")
	}
	if trimmed[0] == '[' || trimmed[0] == '{' {
		return parseCurveJSON([]byte(trimmed))
	}
	return parseCurveCSV(trimmed)
}

func parseCurveJSON(data []byte) (Curve, error) {
	var pairs [][]float64
	if data[0] == '{' {
		var wrapper struct {
			Points [][]float64 `json:"points"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("parsing JSON: %w", err)
		}
		pairs = wrapper.Points
	} else if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	curve := make(Curve, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) < 2 {
			return nil, fmt.Errorf("point %d: expected [x,y], got %d values", i, len(pair))
		}
		curve = append(curve, Point{X: pair[0], Y: pair[1]})
	}
	return curve, nil
}

func parseCurveCSV(data string) (Curve, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	curve := make(Curve, 0, len(records))
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("row %d: expected 2 columns, got %d", i, len(rec))
		}
		x, errX := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if errX != nil || errY != nil {
			// Header row
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("row %d: non-numeric coordinates", i)
		}
		curve = append(curve, Point{X: x, Y: y})
	}
	return curve, nil
}

// SimplifyCurve reduces the curve with Douglas-Peucker at the given
// pixel tolerance while preserving traversal order and endpoints.
// Tolerances <= 0 return the curve unchanged.
func SimplifyCurve(c Curve, tolerance float64) Curve {
	if tolerance <= 0 || len(c) < 3 {
		return c
	}
	ls := make(orb.LineString, len(c))
	for i, p := range c {
		ls[i] = orb.Point{p.X, p.Y}
	}
	reduced := simplify.DouglasPeucker(tolerance).Simplify(ls).(orb.LineString)
	out := make(Curve, len(reduced))
	for i, p := range reduced {
		out[i] = Point{X: p[0], Y: p[1]}
	}
	return out
}
