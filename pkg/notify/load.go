package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Matza-labs/atlas-sdk/pkg/ids"
)

// configEntry mirrors Config with optional fields so omitted values can be
// defaulted.
type configEntry struct {
	ID         string             `json:"id" yaml:"id"`
	GraphName  string             `json:"graph_name" yaml:"graph_name"`
	Channel    Channel            `json:"channel" yaml:"channel"`
	Target     string             `json:"target" yaml:"target"`
	Enabled    *bool              `json:"enabled" yaml:"enabled"`
	Thresholds map[string]float64 `json:"thresholds" yaml:"thresholds"`
	CreatedAt  *time.Time         `json:"created_at" yaml:"created_at"`
}

// config builds the Config, defaulting channel to slack, enabled to true and
// thresholds to DefaultThresholds. Id and timestamp are copied as given.
func (e configEntry) config() *Config {
	c := &Config{
		ID:         e.ID,
		GraphName:  e.GraphName,
		Channel:    e.Channel,
		Target:     e.Target,
		Enabled:    true,
		Thresholds: e.Thresholds,
	}
	if c.Channel == "" {
		c.Channel = ChannelSlack
	}
	if e.Enabled != nil {
		c.Enabled = *e.Enabled
	}
	if c.Thresholds == nil {
		c.Thresholds = DefaultThresholds()
	}
	if e.CreatedAt != nil {
		c.CreatedAt = e.CreatedAt.UTC()
	}
	return c
}

// UnmarshalJSON applies the same defaults as LoadConfigs to omitted fields.
// It does not mint ids or timestamps.
func (c *Config) UnmarshalJSON(data []byte) error {
	var e configEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return err
	}
	*c = *e.config()
	return nil
}

type configFile struct {
	Notifications []configEntry `yaml:"notifications"`
}

// LoadConfigs parses a YAML document holding a `notifications` list.
// Missing ids and timestamps come from p, channel defaults to slack, enabled
// to true, and thresholds to DefaultThresholds.
func LoadConfigs(p ids.Provider, data []byte) ([]*Config, error) {
	var f configFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse notifications: %w", err)
	}
	p = ids.OrSystem(p)

	out := make([]*Config, 0, len(f.Notifications))
	for i, e := range f.Notifications {
		c := e.config()
		if c.ID == "" {
			c.ID = p.NewID()
		}
		if e.CreatedAt == nil {
			c.CreatedAt = p.Now()
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("notification %d: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// LoadConfigsFile reads path and parses it with LoadConfigs.
func LoadConfigsFile(p ids.Provider, path string) ([]*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return LoadConfigs(p, data)
}
