// Package proposal tracks refactor proposals through review.
//
// A proposal starts as a draft, is submitted for review and is then either
// approved or rejected:
//
//	draft -> pending -> approved
//	                 -> rejected
//
// Any other transition fails with ErrInvalidTransition and leaves the
// proposal untouched.
package proposal

import (
	"errors"
	"fmt"
	"time"

	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// ErrInvalidTransition is returned for a status change the workflow does not
// allow from the proposal's current status.
var ErrInvalidTransition = errors.New("invalid proposal transition")

type Status string

const (
	StatusDraft    Status = "draft"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

var transitions = map[Status][]Status{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransition reports whether the workflow allows from -> to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Comment is an entry in a proposal's discussion. Comments are never edited
// or removed.
type Comment struct {
	ID        string    `json:"id" validate:"required"`
	Author    string    `json:"author" validate:"required"`
	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"created_at"`
}

// Proposal is a refactor plan put up for review.
type Proposal struct {
	ID              string       `json:"id" validate:"required"`
	GraphID         string       `json:"graph_id" validate:"required"`
	PlanID          string       `json:"plan_id" validate:"required"`
	Title           string       `json:"title" validate:"required"`
	Description     string       `json:"description"`
	Status          Status       `json:"status" validate:"enum"`
	Author          string       `json:"author"`
	PlanSummary     string       `json:"plan_summary"`
	SuggestionCount int          `json:"suggestion_count" validate:"gte=0"`
	DiffPreview     string       `json:"diff_preview"`
	Comments        []Comment    `json:"comments" validate:"dive"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	Metadata        metadata.Map `json:"metadata"`
}

func (p *Proposal) Validate() error {
	if err := validation.Struct("proposal", p); err != nil {
		return err
	}
	if err := p.Metadata.Validate(); err != nil {
		return fmt.Errorf("proposal %s: %w", p.ID, err)
	}
	return nil
}

func (p *Proposal) Clone() *Proposal {
	clone := *p
	if p.Comments != nil {
		clone.Comments = append([]Comment{}, p.Comments...)
	}
	clone.Metadata = p.Metadata.Clone()
	return &clone
}
