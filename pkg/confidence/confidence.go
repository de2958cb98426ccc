// Package confidence records how a structural fact or finding was
// established and how far to trust it.
//
// Confidence is categorical. The High/Medium/Low constructors pair each level
// with its conventional source (static+runtime, static, AI inference), but any
// other combination can still be written as a literal: the pairing is a
// convention of the constructors, not an invariant of Score.
package confidence

import (
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Level is the trust placed in a fact.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Valid reports whether l is a known level
func (l Level) Valid() bool {
	switch l {
	case LevelHigh, LevelMedium, LevelLow:
		return true
	}
	return false
}

// Source is how a fact was discovered.
type Source string

const (
	SourceStatic        Source = "static"
	SourceRuntime       Source = "runtime"
	SourceStaticRuntime Source = "static_runtime"
	SourceAIInference   Source = "ai_inference"
)

// Valid reports whether s is a known source
func (s Source) Valid() bool {
	switch s {
	case SourceStatic, SourceRuntime, SourceStaticRuntime, SourceAIInference:
		return true
	}
	return false
}

// Score is a confidence assessment with optional free-text rationale.
type Score struct {
	Level     Level   `json:"level" yaml:"level" validate:"enum"`
	Source    Source  `json:"source" yaml:"source" validate:"enum"`
	Reasoning *string `json:"reasoning,omitempty" yaml:"reasoning,omitempty"`
}

// High is a fact confirmed by both static analysis and runtime observation.
// An optional reasoning is attached as the rationale.
func High(reasoning ...string) Score {
	return withOptional(Score{Level: LevelHigh, Source: SourceStaticRuntime}, reasoning)
}

// Medium is a fact established by static analysis only.
func Medium(reasoning ...string) Score {
	return withOptional(Score{Level: LevelMedium, Source: SourceStatic}, reasoning)
}

// Low is an AI-inferred fact.
func Low(reasoning ...string) Score {
	return withOptional(Score{Level: LevelLow, Source: SourceAIInference}, reasoning)
}

// withOptional attaches the first non-empty reasoning, if any.
func withOptional(s Score, reasoning []string) Score {
	for _, r := range reasoning {
		if r != "" {
			return s.WithReasoning(r)
		}
	}
	return s
}

// Default returns Medium().
func Default() Score {
	return Medium()
}

// WithReasoning returns a copy of s carrying the given rationale.
func (s Score) WithReasoning(reasoning string) Score {
	s.Reasoning = &reasoning
	return s
}

// Rationale returns the reasoning text, or "" when absent.
func (s Score) Rationale() string {
	if s.Reasoning == nil {
		return ""
	}
	return *s.Reasoning
}

// Validate checks that level and source are known values.
func (s Score) Validate() error {
	return validation.Struct("confidence", &s)
}
