package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultBaselinePath is the default location of the persisted
// reference curve.
const DefaultBaselinePath = ".baseline.json"

// Baseline is a persisted reference curve plus the settings samples
// should be checked against. MQTT service mode loads it once so
// incoming sample curves can be compared without re-uploading the
// reference each time.
type Baseline struct {
	Reference   Curve         `json:"reference"`
	Settings    AlignSettings `json:"settings"`
	Label       string        `json:"label,omitempty"`
	LastUpdated int64         `json:"lastUpdated"`
}

// LoadBaseline loads a persisted baseline from a JSON file. A missing
// file is not an error; it returns (nil, nil).
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading baseline file: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing baseline file: %w", err)
	}
	if len(b.Reference) == 0 {
		return nil, fmt.Errorf("baseline file %s holds no reference curve", path)
	}

	return &b, nil
}

// SaveBaseline persists the baseline to a JSON file, stamping the
// update time.
func SaveBaseline(path string, b *Baseline) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating baseline directory: %w", err)
	}

	b.LastUpdated = time.Now().Unix()

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling baseline: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing baseline file: %w", err)
	}

	return nil
}
