package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, "ataraxia: true\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if cfg.VectorResolution != 300 {
		t.Errorf("VectorResolution = %v, want 300", cfg.VectorResolution)
	}
	if cfg.MQTT.PublishPrefix != "profilegauge" {
		t.Errorf("PublishPrefix = %q, want profilegauge", cfg.MQTT.PublishPrefix)
	}
	def := DefaultAlignSettings()
	if cfg.Align != def {
		t.Errorf("Align = %+v, want defaults %+v", cfg.Align, def)
	}
}

func TestLoadConfigPartialOverride(t *testing.T) {
	path := writeConfigFile(t, `
httpPort: 9090
align:
  mode: icp
  outlierThreshold: 6.5
mqtt:
  broker: tcp://localhost:1883
  sampleTopic: scanner/profile
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.HTTPPort != 9090 {
		t.Errorf("HTTPPort = %d, want 9090", cfg.HTTPPort)
	}
	if cfg.Align.Mode != ModeICP {
		t.Errorf("Mode = %q, want icp", cfg.Align.Mode)
	}
	if cfg.Align.OutlierThreshold != 6.5 {
		t.Errorf("OutlierThreshold = %v, want 6.5", cfg.Align.OutlierThreshold)
	}
	// Unnamed fields keep their defaults.
	if cfg.Align.InlierThreshold != 25 {
		t.Errorf("InlierThreshold = %v, want default 25", cfg.Align.InlierThreshold)
	}
	if cfg.Align.RANSACIterations != 300 {
		t.Errorf("RANSACIterations = %d, want default 300", cfg.Align.RANSACIterations)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" {
		t.Errorf("Broker = %q", cfg.MQTT.Broker)
	}
}

func TestLoadConfigInvalidMode(t *testing.T) {
	path := writeConfigFile(t, "align:\n  mode: kalman\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for an unknown align mode")
	}
}

func TestLoadConfigBrokerWithoutTopic(t *testing.T) {
	path := writeConfigFile(t, "mqtt:\n  broker: tcp://localhost:1883\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error when broker is set without sampleTopic")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadConfigMalformedYAML(t *testing.T) {
	path := writeConfigFile(t, "mqtt: [broken\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for malformed YAML")
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := DefaultConfig()
	cfg.HTTPPort = 7070
	cfg.Align.Mode = ModePiecewise
	cfg.MQTT.Broker = "tcp://broker:1883"
	cfg.MQTT.SampleTopic = "scanner/profile"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig() error = %v", err)
	}
	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if loaded.HTTPPort != 7070 {
		t.Errorf("HTTPPort = %d, want 7070", loaded.HTTPPort)
	}
	if loaded.Align.Mode != ModePiecewise {
		t.Errorf("Mode = %q, want piecewise", loaded.Align.Mode)
	}
	if loaded.MQTT.SampleTopic != "scanner/profile" {
		t.Errorf("SampleTopic = %q", loaded.MQTT.SampleTopic)
	}
}
