package constraints

import (
	"fmt"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// ValidationResult contains the results of validating a graph against constraints
type ValidationResult struct {
	Valid      bool        // True if no Error-severity violation was found
	Violations []Violation // All violations, in constraint order
	CheckedAt  time.Time   // When validation was performed (UTC)
}

// GetViolationsBySeverity returns violations filtered by severity level
func (vr *ValidationResult) GetViolationsBySeverity(severity Severity) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range vr.Violations {
		if v.Severity == severity {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// GetViolationsByType returns violations filtered by type
func (vr *ValidationResult) GetViolationsByType(violationType ViolationType) []Violation {
	filtered := make([]Violation, 0)
	for _, v := range vr.Violations {
		if v.Type == violationType {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// Validator manages a set of constraints and validates graphs against them
type Validator struct {
	constraints []Constraint
	now         func() time.Time
}

// NewValidator creates a new empty validator
func NewValidator() *Validator {
	return &Validator{
		constraints: make([]Constraint, 0),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Default returns a validator with the structural checks every graph should
// pass: node and edge shape, unique node ids, no dangling edges, no secret
// values on secret references or in clear text, and a warning for cycles
// over any edge type.
func Default() *Validator {
	v := NewValidator()
	v.AddConstraints([]Constraint{
		&NodeShapeConstraint{},
		&UniqueNodeIDConstraint{},
		&DanglingEdgeConstraint{},
		&SecretHygieneConstraint{},
		&LeakedCredentialConstraint{},
		&AcyclicConstraint{},
	})
	return v
}

// WithClock sets the clock used for CheckedAt.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	v.now = now
	return v
}

// AddConstraint adds a constraint to the validator
func (v *Validator) AddConstraint(constraint Constraint) {
	v.constraints = append(v.constraints, constraint)
}

// AddConstraints adds multiple constraints to the validator
func (v *Validator) AddConstraints(constraints []Constraint) {
	v.constraints = append(v.constraints, constraints...)
}

// Validate runs all constraints against the graph and returns the results
func (v *Validator) Validate(g *graph.Graph) (*ValidationResult, error) {
	result := &ValidationResult{
		Valid:      true,
		Violations: make([]Violation, 0),
		CheckedAt:  v.now(),
	}

	for _, constraint := range v.constraints {
		violations, err := constraint.Validate(g)
		if err != nil {
			return nil, fmt.Errorf("constraint %s: %w", constraint.Name(), err)
		}
		for _, vi := range violations {
			if vi.Severity == Error {
				result.Valid = false
			}
		}
		result.Violations = append(result.Violations, violations...)
	}

	return result, nil
}

// GetConstraints returns all constraints in the validator
func (v *Validator) GetConstraints() []Constraint {
	return append([]Constraint(nil), v.constraints...)
}

// ClearConstraints removes all constraints from the validator
func (v *Validator) ClearConstraints() {
	v.constraints = make([]Constraint, 0)
}
