// Package config loads runtime settings for the atlas tooling from YAML,
// an optional .env file and ATLAS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Matza-labs/atlas-sdk/pkg/events"
	"github.com/Matza-labs/atlas-sdk/pkg/findings"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/logging"
	"github.com/Matza-labs/atlas-sdk/pkg/masking"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
	"github.com/Matza-labs/atlas-sdk/pkg/notify"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Environment variables consulted by Load. Values override the file.
const (
	EnvConfigFile      = "ATLAS_CONFIG"
	EnvLogLevel        = "ATLAS_LOG_LEVEL"
	EnvEventsCompress  = "ATLAS_EVENTS_COMPRESS"
	EnvMonitorCapacity = "ATLAS_MONITOR_CAPACITY"
)

type LogConfig struct {
	Level string `yaml:"level"`
}

type EventsConfig struct {
	Compress bool `yaml:"compress"`
	Redact   bool `yaml:"redact"`
}

// ScoringConfig holds per-severity weights keyed by severity name.
type ScoringConfig struct {
	Weights map[string]float64 `yaml:"weights"`
}

type MonitorConfig struct {
	Capacity int `yaml:"capacity"`
}

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Events  EventsConfig  `yaml:"events"`
	Scoring ScoringConfig `yaml:"scoring"`
	Monitor MonitorConfig `yaml:"monitor"`

	// Notifications come from the `notifications` list of the same file.
	Notifications []*notify.Config `yaml:"-"`
}

// Default returns a configuration that needs no file.
func Default() *Config {
	weights := make(map[string]float64)
	for sev, w := range scoring.DefaultWeights() {
		weights[string(sev)] = w
	}
	return &Config{
		Log:     LogConfig{Level: "info"},
		Events:  EventsConfig{Compress: false, Redact: true},
		Scoring: ScoringConfig{Weights: weights},
		Monitor: MonitorConfig{Capacity: notify.DefaultCapacity},
	}
}

// Load reads path over Default. An empty path falls back to $ATLAS_CONFIG,
// and when that is unset only defaults and environment overrides apply.
// A .env file in the working directory is loaded first if present; a
// malformed one is an error.
func Load(p ids.Provider, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfigFile)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.parse(p, data); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes a YAML document over Default and validates the result.
// Environment variables are not consulted.
func Parse(p ids.Provider, data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.parse(p, data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(p ids.Provider, data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if c.Scoring.Weights == nil {
		c.Scoring.Weights = Default().Scoring.Weights
	}
	notifications, err := notify.LoadConfigs(p, data)
	if err != nil {
		return err
	}
	c.Notifications = notifications
	return nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEventsCompress)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEventsCompress, err)
		}
		c.Events.Compress = b
	}
	if v := strings.TrimSpace(os.Getenv(EnvMonitorCapacity)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMonitorCapacity, err)
		}
		c.Monitor.Capacity = n
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	cv := validation.NewConfigValidator("config").
		OneOf("log.level", strings.ToLower(c.Log.Level), []string{"debug", "info", "warn", "warning", "error"}).
		Positive("monitor.capacity", c.Monitor.Capacity)

	keys := make([]string, 0, len(c.Scoring.Weights))
	for k := range c.Scoring.Weights {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		field := "scoring.weights." + k
		cv.Custom(field, func() error {
			if !findings.Severity(k).Valid() {
				return fmt.Errorf("unknown severity: %w", validation.ErrInvalid)
			}
			return nil
		})
		cv.NonNegativeFloat(field, c.Scoring.Weights[k])
	}
	return cv.Validate()
}

// Logger returns a JSON logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) logging.Logger {
	return logging.NewJSONLogger(w, logging.ParseLevel(c.Log.Level))
}

// Scorer returns a severity scorer with the configured weights.
func (c *Config) Scorer() *scoring.SeverityScorer {
	weights := make(map[findings.Severity]float64, len(c.Scoring.Weights))
	for k, w := range c.Scoring.Weights {
		weights[findings.Severity(k)] = w
	}
	return scoring.NewSeverityScorer(weights)
}

// Codec returns an event codec; credentials are masked unless events.redact
// is false.
func (c *Config) Codec(reg *metrics.Registry) *events.Codec {
	codec := &events.Codec{Compress: c.Events.Compress, Metrics: reg}
	if c.Events.Redact {
		codec.Masker = masking.Default()
	}
	return codec
}

// MonitorOptions wires the configured capacity with the given collaborators.
func (c *Config) MonitorOptions(p ids.Provider, logger logging.Logger, reg *metrics.Registry) notify.MonitorOptions {
	return notify.MonitorOptions{
		Capacity: c.Monitor.Capacity,
		Provider: p,
		Logger:   logger,
		Metrics:  reg,
	}
}
