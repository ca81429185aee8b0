package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
)

// Version is set at build time via -ldflags
var Version = "dev"

// appRunner is the surface main drives, split out so flag routing can
// be tested without starting the service.
type appRunner interface {
	ApplyOptions(opts AppOptions)
	LoadConfig(path string) error
	RunSaveBaseline() error
	RunAnalyze() error
	RunService()
}

func run(args []string, out io.Writer, app appRunner) error {
	fs := flag.NewFlagSet("profilegauge", flag.ContinueOnError)
	fs.SetOutput(out)

	configFile := fs.String("config", "", "Path to configuration file (YAML)")
	analyzeMode := fs.Bool("analyze", false, "Run a one-shot curve comparison and exit")
	referencePath := fs.String("reference", "", "Reference curve file (JSON or CSV)")
	samplePath := fs.String("sample", "", "Sample curve file for -analyze (JSON or CSV)")
	alignMode := fs.String("align-mode", "", "Alignment mode: ransac, icp, piecewise or auto")
	inlierPx := fs.Float64("inlier-px", 0, "RANSAC inlier threshold in pixels (default from config: 25)")
	allowScale := fs.Bool("allow-scale", true, "Estimate uniform scale in addition to rotation and translation")
	seed := fs.Int64("seed", 0, "RANSAC random seed (0 = time-based)")
	outputFile := fs.String("output", "", "Output file for -analyze: .png, .svg or .geojson")
	saveBaseline := fs.Bool("save-baseline", false, "Persist the -reference curve as the service baseline and exit")
	baselinePath := fs.String("baseline", "", "Baseline file path (default .baseline.json)")
	mqttMode := fs.Bool("mqtt", false, "Run MQTT service mode checking samples against the baseline")
	httpMode := fs.Bool("http", false, "Enable the HTTP upload and result server")
	httpPort := fs.Int("http-port", 0, "HTTP server port (default 8080)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Fprintf(out, "profilegauge version: %s\n", Version)

	app.ApplyOptions(AppOptions{
		ConfigFile:    *configFile,
		ReferencePath: *referencePath,
		SamplePath:    *samplePath,
		AlignMode:     *alignMode,
		InlierPx:      *inlierPx,
		AllowScale:    *allowScale,
		Seed:          *seed,
		OutputFile:    *outputFile,
		BaselinePath:  *baselinePath,
		HttpPort:      *httpPort,
		MqttMode:      *mqttMode,
		HttpMode:      *httpMode,
	})

	if *configFile != "" {
		if err := app.LoadConfig(*configFile); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	if *saveBaseline {
		return app.RunSaveBaseline()
	}

	if *analyzeMode {
		if *referencePath == "" || *samplePath == "" {
			return fmt.Errorf("-analyze requires -reference and -sample curve files")
		}
		return app.RunAnalyze()
	}

	if *mqttMode || *httpMode {
		app.RunService()
		return nil
	}

	fmt.Fprintln(out, "profilegauge compares a sample profile curve against a reference")
	fmt.Fprintln(out, "Use -analyze -reference ref.json -sample sample.json for a one-shot check")
	fmt.Fprintln(out, "Use -save-baseline -reference ref.json to persist the service baseline")
	fmt.Fprintln(out, "Use -http to run the upload server, -mqtt for broker-fed checking")
	fmt.Fprintln(out, "Use -config config.yaml for broker, baseline and engine settings")
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, NewApp()); err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatal(err)
	}
}
