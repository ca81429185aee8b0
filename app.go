package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/kwv/profilegauge/profile"
)

// App encapsulates the application state and dependencies
type App struct {
	Config     *profile.Config
	Store      *profile.ResultStore
	Baseline   *profile.Baseline
	MQTTClient *profile.MQTTClient
	Publisher  *profile.Publisher

	// CLI flags (effectively dependencies)
	ConfigFile    string
	ReferencePath string
	SamplePath    string
	AlignMode     string
	InlierPx      float64
	AllowScale    bool
	Seed          int64
	OutputFile    string
	BaselinePath  string
	HttpPort      int
	MqttMode      bool
	HttpMode      bool
}

// AppOptions carries parsed CLI flags into the App
type AppOptions struct {
	ConfigFile    string
	ReferencePath string
	SamplePath    string
	AlignMode     string
	InlierPx      float64
	AllowScale    bool
	Seed          int64
	OutputFile    string
	BaselinePath  string
	HttpPort      int
	MqttMode      bool
	HttpMode      bool
}

// NewApp creates a new App instance
func NewApp() *App {
	return &App{
		Config: profile.DefaultConfig(),
	}
}

// ApplyOptions applies CLI options to the App instance
func (a *App) ApplyOptions(opts AppOptions) {
	a.ConfigFile = opts.ConfigFile
	a.ReferencePath = opts.ReferencePath
	a.SamplePath = opts.SamplePath
	a.AlignMode = opts.AlignMode
	a.InlierPx = opts.InlierPx
	a.AllowScale = opts.AllowScale
	a.Seed = opts.Seed
	a.OutputFile = opts.OutputFile
	a.BaselinePath = opts.BaselinePath
	a.HttpPort = opts.HttpPort
	a.MqttMode = opts.MqttMode
	a.HttpMode = opts.HttpMode
}

// LoadConfig reads the YAML config named by the -config flag and
// installs it as the app configuration.
func (a *App) LoadConfig(path string) error {
	config, err := profile.LoadConfig(path)
	if err != nil {
		return err
	}
	a.Config = config
	log.Printf("Loaded config from %s", path)
	return nil
}

// RunSaveBaseline persists the -reference curve plus the effective
// engine settings as the service baseline.
func (a *App) RunSaveBaseline() error {
	if a.ReferencePath == "" {
		return fmt.Errorf("-save-baseline requires a -reference curve file")
	}
	ref, err := profile.ParseCurveFile(a.ReferencePath)
	if err != nil {
		return fmt.Errorf("loading reference curve: %w", err)
	}
	if len(ref) == 0 {
		return fmt.Errorf("reference curve holds no points")
	}

	path := a.BaselinePath
	if path == "" {
		path = a.Config.BaselinePath
	}
	if path == "" {
		path = profile.DefaultBaselinePath
	}

	b := &profile.Baseline{
		Reference: ref,
		Settings:  a.settings(),
		Label:     filepath.Base(a.ReferencePath),
	}
	if err := profile.SaveBaseline(path, b); err != nil {
		return err
	}
	fmt.Printf("Saved baseline (%d points) to %s\n", len(ref), path)
	return nil
}

// settings resolves the effective engine parameters: config file
// values overridden by CLI flags.
func (a *App) settings() profile.AlignSettings {
	cfg := a.Config.Align
	if a.AlignMode != "" {
		cfg.Mode = profile.AlignMode(a.AlignMode)
	}
	if a.InlierPx > 0 {
		cfg.InlierThreshold = a.InlierPx
	}
	cfg.AllowScale = a.AllowScale
	if a.Seed != 0 {
		cfg.Seed = a.Seed
	}
	return cfg
}

// RunAnalyze performs a one-shot comparison of two curve files and
// writes the result picked by the -output extension.
func (a *App) RunAnalyze() error {
	ref, err := profile.ParseCurveFile(a.ReferencePath)
	if err != nil {
		return fmt.Errorf("loading reference curve: %w", err)
	}
	sample, err := profile.ParseCurveFile(a.SamplePath)
	if err != nil {
		return fmt.Errorf("loading sample curve: %w", err)
	}

	if tol := a.Config.SimplifyTolerance; tol > 0 {
		ref = profile.SimplifyCurve(ref, tol)
		sample = profile.SimplifyCurve(sample, tol)
	}

	report, err := profile.Analyze(ref, sample, a.settings())
	if err != nil {
		return fmt.Errorf("analyzing curves: %w", err)
	}

	printReport(report)

	if a.OutputFile != "" {
		if err := writeReportFile(a.OutputFile, report); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", a.OutputFile)
	}
	return nil
}

func printReport(report *profile.AnalysisReport) {
	fmt.Printf("Alignment path: %s (residual %.3f px, %.2fs)\n", report.Path, report.AlignError, report.Elapsed)
	if report.Metrics == nil {
		fmt.Println("No deviation metrics (empty curve)")
		return
	}
	m := report.Metrics
	fmt.Printf("Max deviation:  %.2f px (at index %d)\n", m.MaxDeviation, m.Worst.Index)
	fmt.Printf("Mean deviation: %.2f px\n", m.MeanDeviation)
	fmt.Printf("RMS deviation:  %.2f px\n", m.RMSDeviation)
	fmt.Printf("P95 deviation:  %.2f px\n", m.P95Deviation)
	fmt.Printf("Profile length: %.2f px\n", m.ProfileLength)
}

// writeReportFile renders the report into the format implied by the
// output file extension: .png, .svg or .geojson.
func writeReportFile(path string, report *profile.AnalysisReport) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return profile.NewComparisonRenderer(report).SavePNG(path)
	case ".svg":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		defer f.Close()
		return profile.NewVectorRenderer(report).RenderToSVG(f)
	case ".geojson", ".json":
		data, err := profile.ReportToGeoJSON(report)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	default:
		return fmt.Errorf("unsupported output format %q (use .png, .svg or .geojson)", filepath.Ext(path))
	}
}

// RunService starts the long-running service: HTTP endpoints and/or
// MQTT sample checking against the persisted baseline.
func (a *App) RunService() {
	fmt.Println("Starting profilegauge service...")

	if a.HttpPort != 0 {
		a.Config.HTTPPort = a.HttpPort
	}

	a.Store = profile.NewResultStore(a.Config.HistoryLimit)

	// Baseline is optional for HTTP-only mode; MQTT checking needs it.
	baselinePath := a.BaselinePath
	if baselinePath == "" {
		baselinePath = a.Config.BaselinePath
	}
	if baselinePath == "" {
		baselinePath = profile.DefaultBaselinePath
	}
	baseline, err := profile.LoadBaseline(baselinePath)
	if err != nil {
		log.Printf("Warning: failed to load baseline %s: %v", baselinePath, err)
	} else if baseline != nil {
		a.Baseline = baseline
		log.Printf("Loaded baseline from %s (%d reference points)", baselinePath, len(baseline.Reference))
	} else {
		log.Printf("No baseline at %s; MQTT samples cannot be checked until one is saved", baselinePath)
	}

	if a.MqttMode {
		client, err := profile.InitMQTT(a.Config, a.handleSampleCurve)
		if err != nil {
			log.Fatalf("Failed to initialize MQTT: %v", err)
		}
		if client != nil {
			a.MQTTClient = client
			a.Publisher = profile.NewPublisher(client.GetClient(), a.Config.MQTT.PublishPrefix)
		}
	}

	if a.HttpMode {
		server := newHTTPServer(a)
		addr := fmt.Sprintf(":%d", a.Config.HTTPPort)
		log.Printf("[HTTP] listening on %s", addr)
		go func() {
			if err := http.ListenAndServe(addr, server); err != nil {
				log.Fatalf("HTTP server failed: %v", err)
			}
		}()
	}

	// Block until interrupted
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("Shutting down...")
	if a.MQTTClient != nil {
		a.MQTTClient.Disconnect()
	}
}

// handleSampleCurve checks an incoming MQTT sample curve against the
// baseline and publishes the deviation result.
func (a *App) handleSampleCurve(topic string, raw []byte, sample profile.Curve, err error) {
	if err != nil {
		log.Printf("[MQTT] dropping sample from %s: %v", topic, err)
		return
	}
	if a.Baseline == nil {
		log.Printf("[MQTT] sample received on %s but no baseline is loaded", topic)
		return
	}

	cfg := a.Baseline.Settings
	if cfg.Mode == "" {
		cfg = a.Config.Align
	}

	report, err := profile.Analyze(a.Baseline.Reference, sample, cfg)
	if err != nil {
		log.Printf("[MQTT] analysis failed for sample from %s: %v", topic, err)
		return
	}

	rec := a.Store.Put(report)
	log.Printf("[MQTT] checked sample from %s: id=%s path=%s", topic, rec.ID, report.Path)

	if a.Publisher != nil {
		if err := a.Publisher.PublishMetrics(rec); err != nil {
			log.Printf("[MQTT] error publishing metrics: %v", err)
		}
	}
}
