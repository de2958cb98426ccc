package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/history"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

type AlertSeverity string

const (
	SeverityInfo     AlertSeverity = "info"
	SeverityWarning  AlertSeverity = "warning"
	SeverityCritical AlertSeverity = "critical"
)

func (s AlertSeverity) Valid() bool {
	switch s {
	case SeverityInfo, SeverityWarning, SeverityCritical:
		return true
	}
	return false
}

// AlertEvent is a threshold breach ready for delivery.
type AlertEvent struct {
	ID          string             `json:"id" validate:"required"`
	ConfigID    string             `json:"config_id" validate:"required"`
	GraphName   string             `json:"graph_name" validate:"required"`
	Message     string             `json:"message"`
	Severity    AlertSeverity      `json:"severity" validate:"enum"`
	Scores      map[string]float64 `json:"scores"`
	TriggeredAt time.Time          `json:"triggered_at"`
	Delivered   bool               `json:"delivered"`
	Metadata    metadata.Map       `json:"metadata"`
}

func (e *AlertEvent) Validate() error {
	if err := validation.Struct("alert_event", e); err != nil {
		return err
	}
	return e.Metadata.Validate()
}

func (e *AlertEvent) Clone() *AlertEvent {
	clone := *e
	if e.Scores != nil {
		clone.Scores = make(map[string]float64, len(e.Scores))
		for k, v := range e.Scores {
			clone.Scores[k] = v
		}
	}
	clone.Metadata = e.Metadata.Clone()
	return &clone
}

// Evaluate checks a snapshot against the config. It returns an event when
// the config is enabled, belongs to the snapshot's graph and at least one
// threshold is crossed. Two or more breaches make the alert critical.
func (c *Config) Evaluate(p ids.Provider, s *history.Snapshot) (*AlertEvent, bool) {
	if !c.Enabled || s.GraphName != c.GraphName {
		return nil, false
	}
	scores := s.Scores()
	breaches := c.Breaches(scores)
	if len(breaches) == 0 {
		return nil, false
	}

	severity := SeverityWarning
	if len(breaches) > 1 {
		severity = SeverityCritical
	}
	parts := make([]string, len(breaches))
	keys := make([]any, len(breaches))
	for i, b := range breaches {
		parts[i] = b.String()
		keys[i] = b.Threshold
	}

	p = ids.OrSystem(p)
	return &AlertEvent{
		ID:        p.NewID(),
		ConfigID:  c.ID,
		GraphName: c.GraphName,
		Message:   fmt.Sprintf("%s: %s", c.GraphName, strings.Join(parts, "; ")),
		Severity:  severity,
		Scores: map[string]float64{
			string(scoring.MetricComplexity): scores.Complexity,
			string(scoring.MetricFragility):  scores.Fragility,
			string(scoring.MetricMaturity):   scores.Maturity,
		},
		TriggeredAt: p.Now(),
		Metadata: metadata.Map{
			"snapshot_id": s.ID,
			"channel":     string(c.Channel),
			"breaches":    keys,
		}.Clone(),
	}, true
}
