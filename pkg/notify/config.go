// Package notify raises alerts when a graph's scores cross configured
// thresholds and fans them out to delivery channels.
package notify

import (
	"fmt"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

type Channel string

const (
	ChannelSlack   Channel = "slack"
	ChannelEmail   Channel = "email"
	ChannelWebhook Channel = "webhook"
)

func (c Channel) Valid() bool {
	switch c {
	case ChannelSlack, ChannelEmail, ChannelWebhook:
		return true
	}
	return false
}

// Topic is the pubsub topic alerts for c are published on.
func (c Channel) Topic() string { return "alerts." + string(c) }

// Threshold keys.
const (
	ComplexityMax = "complexity_max"
	FragilityMax  = "fragility_max"
	MaturityMin   = "maturity_min"
)

// DefaultThresholds returns complexity_max=80 fragility_max=70 maturity_min=30.
func DefaultThresholds() map[string]float64 {
	return map[string]float64{
		ComplexityMax: 80,
		FragilityMax:  70,
		MaturityMin:   30,
	}
}

// limit returns the configured limit for key. An absent key never breaches:
// maxima default to 100 and the minimum to 0.
func limit(thresholds map[string]float64, key string) float64 {
	if v, ok := thresholds[key]; ok {
		return v
	}
	if key == MaturityMin {
		return 0
	}
	return 100
}

// Config says where alerts for one graph go and when they fire.
type Config struct {
	ID         string             `json:"id" yaml:"id" validate:"required"`
	GraphName  string             `json:"graph_name" yaml:"graph_name" validate:"required"`
	Channel    Channel            `json:"channel" yaml:"channel" validate:"enum"`
	Target     string             `json:"target" yaml:"target"`
	Enabled    bool               `json:"enabled" yaml:"enabled"`
	Thresholds map[string]float64 `json:"thresholds" yaml:"thresholds"`
	CreatedAt  time.Time          `json:"created_at" yaml:"created_at"`
}

// NewConfig returns an enabled config with the default thresholds.
func NewConfig(p ids.Provider, graphName string, channel Channel, target string) (*Config, error) {
	p = ids.OrSystem(p)
	c := &Config{
		ID:         p.NewID(),
		GraphName:  graphName,
		Channel:    channel,
		Target:     target,
		Enabled:    true,
		Thresholds: DefaultThresholds(),
		CreatedAt:  p.Now(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	return validation.Struct("notification_config", c)
}

// ShouldAlert reports whether an enabled config is breached by the scores:
// complexity or fragility above its maximum, or maturity below its minimum.
func (c *Config) ShouldAlert(complexity, fragility, maturity float64) bool {
	if !c.Enabled {
		return false
	}
	return complexity > limit(c.Thresholds, ComplexityMax) ||
		fragility > limit(c.Thresholds, FragilityMax) ||
		maturity < limit(c.Thresholds, MaturityMin)
}

// Breach is one threshold crossed by a score.
type Breach struct {
	Threshold string
	Metric    scoring.Metric
	Limit     float64
	Value     float64
}

func (b Breach) String() string {
	dir := "above"
	if b.Metric.HigherIsBetter() {
		dir = "below"
	}
	return fmt.Sprintf("%s %.1f %s %.1f", b.Metric, b.Value, dir, b.Limit)
}

// Breaches lists every threshold the scores cross, complexity first. It
// ignores Enabled.
func (c *Config) Breaches(s scoring.Scores) []Breach {
	var out []Breach
	if l := limit(c.Thresholds, ComplexityMax); s.Complexity > l {
		out = append(out, Breach{ComplexityMax, scoring.MetricComplexity, l, s.Complexity})
	}
	if l := limit(c.Thresholds, FragilityMax); s.Fragility > l {
		out = append(out, Breach{FragilityMax, scoring.MetricFragility, l, s.Fragility})
	}
	if l := limit(c.Thresholds, MaturityMin); s.Maturity < l {
		out = append(out, Breach{MaturityMin, scoring.MetricMaturity, l, s.Maturity})
	}
	return out
}
