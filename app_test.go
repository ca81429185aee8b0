package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kwv/profilegauge/profile"
)

func writeCurveFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSettingsFlagOverrides(t *testing.T) {
	app := NewApp()
	app.ApplyOptions(AppOptions{
		AlignMode:  "icp",
		InlierPx:   12.5,
		AllowScale: false,
		Seed:       77,
	})

	cfg := app.settings()
	assert.Equal(t, profile.ModeICP, cfg.Mode)
	assert.Equal(t, 12.5, cfg.InlierThreshold)
	assert.False(t, cfg.AllowScale)
	assert.Equal(t, int64(77), cfg.Seed)
}

func TestSettingsConfigDefaultsPassThrough(t *testing.T) {
	app := NewApp()
	app.ApplyOptions(AppOptions{AllowScale: true})

	cfg := app.settings()
	def := profile.DefaultAlignSettings()
	assert.Equal(t, def.Mode, cfg.Mode)
	assert.Equal(t, def.InlierThreshold, cfg.InlierThreshold)
	assert.True(t, cfg.AllowScale)
	assert.Zero(t, cfg.Seed)
}

func TestRunSaveBaseline(t *testing.T) {
	refPath := writeCurveFile(t, "ref.json", curveJSON(1, 0, 0))
	baselinePath := filepath.Join(t.TempDir(), "baseline.json")

	app := NewApp()
	app.ApplyOptions(AppOptions{
		ReferencePath: refPath,
		BaselinePath:  baselinePath,
		AllowScale:    true,
	})
	require.NoError(t, app.RunSaveBaseline())

	b, err := profile.LoadBaseline(baselinePath)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Len(t, b.Reference, 120)
	assert.Equal(t, "ref.json", b.Label)
	assert.NotZero(t, b.LastUpdated)
}

func TestRunSaveBaselineRequiresReference(t *testing.T) {
	app := NewApp()
	assert.Error(t, app.RunSaveBaseline())
}

func TestRunAnalyzeWritesOutputs(t *testing.T) {
	refPath := writeCurveFile(t, "ref.json", curveJSON(1, 0, 0))
	samplePath := writeCurveFile(t, "sample.json", curveJSON(1.02, 1, 0))

	for _, ext := range []string{".png", ".svg", ".geojson"} {
		t.Run(ext, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "report"+ext)
			app := NewApp()
			app.ApplyOptions(AppOptions{
				ReferencePath: refPath,
				SamplePath:    samplePath,
				OutputFile:    out,
				AllowScale:    true,
				Seed:          6,
			})
			require.NoError(t, app.RunAnalyze())

			info, err := os.Stat(out)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		})
	}
}

func TestRunAnalyzeRejectsUnknownExtension(t *testing.T) {
	refPath := writeCurveFile(t, "ref.json", curveJSON(1, 0, 0))
	samplePath := writeCurveFile(t, "sample.json", curveJSON(1.02, 1, 0))

	app := NewApp()
	app.ApplyOptions(AppOptions{
		ReferencePath: refPath,
		SamplePath:    samplePath,
		OutputFile:    filepath.Join(t.TempDir(), "report.docx"),
		AllowScale:    true,
	})
	assert.Error(t, app.RunAnalyze())
}

func TestWriteReportFileGeoJSON(t *testing.T) {
	report := &profile.AnalysisReport{
		Reference: profile.Curve{{X: 0, Y: 0}, {X: 1, Y: 1}},
		Aligned:   profile.Curve{{X: 0, Y: 0}, {X: 1, Y: 1}},
		Path:      profile.PathICP,
	}
	out := filepath.Join(t.TempDir(), "r.geojson")
	require.NoError(t, writeReportFile(out, report))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var fc struct {
		Type string `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
}

func TestHandleSampleCurve(t *testing.T) {
	ref, err := profile.ParseCurve([]byte(curveJSON(1, 0, 0)))
	require.NoError(t, err)
	sample, err := profile.ParseCurve([]byte(curveJSON(1.03, 2, 1)))
	require.NoError(t, err)

	settings := profile.DefaultAlignSettings()
	settings.Seed = 21

	mock := profile.NewMockClient()
	mock.Connect()

	app := NewApp()
	app.Store = profile.NewResultStore(10)
	app.Baseline = &profile.Baseline{Reference: ref, Settings: settings}
	app.Publisher = profile.NewPublisher(mock, "gauge")

	app.handleSampleCurve("scanner/profile", nil, sample, nil)

	require.Equal(t, 1, app.Store.Len())
	msgs := mock.GetPublishedMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "gauge/metrics", msgs[0].Topic)

	var msg profile.MetricsMessage
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &msg))
	assert.NotNil(t, msg.Metrics)
}

func TestHandleSampleCurveWithoutBaseline(t *testing.T) {
	app := NewApp()
	app.Store = profile.NewResultStore(10)

	sample, err := profile.ParseCurve([]byte(curveJSON(1, 0, 0)))
	require.NoError(t, err)
	app.handleSampleCurve("scanner/profile", nil, sample, nil)

	assert.Zero(t, app.Store.Len())
}

func TestHandleSampleCurveDropsParseFailures(t *testing.T) {
	ref, err := profile.ParseCurve([]byte(curveJSON(1, 0, 0)))
	require.NoError(t, err)

	app := NewApp()
	app.Store = profile.NewResultStore(10)
	app.Baseline = &profile.Baseline{Reference: ref, Settings: profile.DefaultAlignSettings()}

	app.handleSampleCurve("scanner/profile", []byte("junk"), nil, assert.AnError)
	assert.Zero(t, app.Store.Len())
}
