// Package constraints checks a graph against pluggable structural rules and
// collects every violation instead of stopping at the first.
package constraints

import (
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// Severity indicates the importance of a violation
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "Info"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// ViolationType categorizes the type of constraint violation
type ViolationType int

const (
	InvalidShape ViolationType = iota
	DanglingReference
	DuplicateID
	UniquenessViolation
	CardinalityViolation
	MissingMetadata
	SecretExposure
	CycleDetected
)

func (vt ViolationType) String() string {
	switch vt {
	case InvalidShape:
		return "InvalidShape"
	case DanglingReference:
		return "DanglingReference"
	case DuplicateID:
		return "DuplicateID"
	case UniquenessViolation:
		return "UniquenessViolation"
	case CardinalityViolation:
		return "CardinalityViolation"
	case MissingMetadata:
		return "MissingMetadata"
	case SecretExposure:
		return "SecretExposure"
	case CycleDetected:
		return "CycleDetected"
	default:
		return "Unknown"
	}
}

// Violation represents a constraint violation. NodeID and EdgeID are empty
// when the violation is not tied to one element.
type Violation struct {
	Type       ViolationType
	Severity   Severity
	NodeID     string
	EdgeID     string
	Constraint string
	Message    string
	Details    map[string]any
}

// Constraint is one structural rule.
type Constraint interface {
	// Validate returns the violations found in g (empty if valid)
	Validate(g *graph.Graph) ([]Violation, error)

	// Name returns a human-readable name for the constraint
	Name() string
}
