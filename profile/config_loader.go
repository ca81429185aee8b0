package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MQTTConfig holds MQTT connection settings. Broker credentials may be
// overridden by the MQTT_BROKER / MQTT_CLIENT_ID / MQTT_USERNAME /
// MQTT_PASSWORD environment variables at connect time.
type MQTTConfig struct {
	Broker        string `yaml:"broker" json:"broker"`
	SampleTopic   string `yaml:"sampleTopic" json:"sampleTopic"`     // incoming sample-curve payloads
	PublishPrefix string `yaml:"publishPrefix" json:"publishPrefix"` // defaults to "profilegauge"
	ClientID      string `yaml:"clientId" json:"clientId"`
	Username      string `yaml:"username,omitempty" json:"username,omitempty"`
	Password      string `yaml:"password,omitempty" json:"password,omitempty"`
}

// Config represents the full configuration file
type Config struct {
	MQTT              MQTTConfig    `yaml:"mqtt" json:"mqtt"`
	HTTPPort          int           `yaml:"httpPort,omitempty" json:"httpPort,omitempty"`                   // default 8080
	Align             AlignSettings `yaml:"align" json:"align"`                                             // engine parameters
	BaselinePath      string        `yaml:"baseline,omitempty" json:"baseline,omitempty"`                   // persisted reference curve
	SimplifyTolerance float64       `yaml:"simplifyTolerance,omitempty" json:"simplifyTolerance,omitempty"` // Douglas-Peucker px; 0 disables
	HistoryLimit      int           `yaml:"historyLimit,omitempty" json:"historyLimit,omitempty"`           // result store depth (default 50)
	VectorResolution  float64       `yaml:"vectorResolution,omitempty" json:"vectorResolution,omitempty"`   // vector PNG DPI (default 300)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		HTTPPort:         8080,
		Align:            DefaultAlignSettings(),
		HistoryLimit:     50,
		VectorResolution: 300,
	}
}

// LoadConfig loads the service configuration from a YAML file and
// fills unset fields with defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}
	applyConfigDefaults(config)

	if config.MQTT.Broker != "" && config.MQTT.SampleTopic == "" {
		return nil, fmt.Errorf("mqtt.sampleTopic is required when mqtt.broker is set")
	}
	if config.Align.Mode != "" && !config.Align.Mode.Valid() {
		return nil, fmt.Errorf("align.mode %q is not one of ransac, icp, piecewise, auto", config.Align.Mode)
	}

	return config, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("marshaling config YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// applyConfigDefaults backfills zero-valued fields, so a partial YAML
// file only overrides what it names.
func applyConfigDefaults(c *Config) {
	def := DefaultAlignSettings()
	if c.Align.Mode == "" {
		c.Align.Mode = def.Mode
	}
	if c.Align.InlierThreshold == 0 {
		c.Align.InlierThreshold = def.InlierThreshold
	}
	if c.Align.RANSACIterations == 0 {
		c.Align.RANSACIterations = def.RANSACIterations
	}
	if c.Align.MinInliers == 0 {
		c.Align.MinInliers = def.MinInliers
	}
	if c.Align.MaxIterations == 0 {
		c.Align.MaxIterations = def.MaxIterations
	}
	if c.Align.ConvergenceTol == 0 {
		c.Align.ConvergenceTol = def.ConvergenceTol
	}
	if c.Align.OutlierThreshold == 0 {
		c.Align.OutlierThreshold = def.OutlierThreshold
	}
	if c.HTTPPort == 0 {
		c.HTTPPort = 8080
	}
	if c.HistoryLimit == 0 {
		c.HistoryLimit = 50
	}
	if c.VectorResolution == 0 {
		c.VectorResolution = 300
	}
	if c.MQTT.PublishPrefix == "" {
		c.MQTT.PublishPrefix = "profilegauge"
	}
}
