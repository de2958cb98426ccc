package proposal

import (
	"fmt"

	"github.com/Matza-labs/atlas-sdk/pkg/audit"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/logging"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
	"github.com/Matza-labs/atlas-sdk/pkg/refactor"
	"github.com/Matza-labs/atlas-sdk/pkg/simulation"
	"github.com/Matza-labs/atlas-sdk/pkg/validation"
)

// Workflow applies status changes to proposals. Ids and timestamps come from
// Provider; Logger, Metrics and Audit are optional.
type Workflow struct {
	Provider ids.Provider
	Logger   logging.Logger
	Metrics  *metrics.Registry
	Audit    *audit.Trail
}

var transitionActions = map[Status]audit.Action{
	StatusPending:  audit.ActionSubmit,
	StatusApproved: audit.ActionApprove,
	StatusRejected: audit.ActionReject,
}

func (w *Workflow) record(p *Proposal, action audit.Action, actor string, md metadata.Map, err error) {
	if w.Audit == nil {
		return
	}
	ev := audit.Event{
		Actor:        actor,
		Action:       action,
		ResourceType: audit.ResourceProposal,
		ResourceID:   p.ID,
		Status:       audit.StatusSuccess,
		Metadata:     md,
	}
	if err != nil {
		ev.Status = audit.StatusFailure
		ev.Message = err.Error()
	}
	if _, aerr := w.Audit.Record(ev); aerr != nil {
		w.logger(p).Error("audit record failed", logging.Error(aerr))
	}
}

func (w *Workflow) provider() ids.Provider { return ids.OrSystem(w.Provider) }

func (w *Workflow) logger(p *Proposal) logging.Logger {
	return logging.OrNop(w.Logger).With(logging.Component("proposal"), logging.ProposalID(p.ID))
}

// New creates a draft proposal.
func (w *Workflow) New(graphID, planID, title, author string) (*Proposal, error) {
	pv := w.provider()
	now := pv.Now()
	p := &Proposal{
		ID:        pv.NewID(),
		GraphID:   graphID,
		PlanID:    planID,
		Title:     title,
		Status:    StatusDraft,
		Author:    author,
		Comments:  []Comment{},
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata.Map{},
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	w.record(p, audit.ActionCreate, author, metadata.Map{"graph_id": graphID, "plan_id": planID}, nil)
	return p, nil
}

// FromPlan drafts a proposal for plan. When sim is non-nil its diff preview
// and projected improvements are attached.
func (w *Workflow) FromPlan(plan *refactor.Plan, sim *simulation.Result, title, author string) (*Proposal, error) {
	graphID := plan.GraphID
	if graphID == "" && sim != nil {
		graphID = sim.GraphID
	}
	p, err := w.New(graphID, plan.ID, title, author)
	if err != nil {
		return nil, err
	}
	p.Description = plan.Name
	p.SuggestionCount = plan.TotalSuggestions()
	p.PlanSummary = summarize(plan)
	if sim != nil {
		p.DiffPreview = sim.DiffPreview
		p.Metadata["simulation_id"] = sim.ID
		p.Metadata["projected_improvements"] = float64(sim.TotalImprovements())
	}
	return p, nil
}

func summarize(plan *refactor.Plan) string {
	effort, unparsed := plan.TotalEffort()
	s := fmt.Sprintf("%d suggestions, %d high risk, estimated effort %s",
		plan.TotalSuggestions(), plan.HighRiskCount(), effort)
	if unparsed > 0 {
		s += fmt.Sprintf(" (+%d unestimated)", unparsed)
	}
	return s
}

// Submit moves a draft to pending review.
func (w *Workflow) Submit(p *Proposal) error {
	return w.transition(p, StatusPending, "", "")
}

// Approve accepts a pending proposal. A non-empty comment is recorded under
// the reviewer's name.
func (w *Workflow) Approve(p *Proposal, reviewer, comment string) error {
	if reviewer == "" {
		return validation.Invalid("proposal", "reviewer", reviewer)
	}
	return w.transition(p, StatusApproved, reviewer, comment)
}

// Reject declines a pending proposal. A non-empty reason is recorded under
// the reviewer's name.
func (w *Workflow) Reject(p *Proposal, reviewer, reason string) error {
	if reviewer == "" {
		return validation.Invalid("proposal", "reviewer", reviewer)
	}
	return w.transition(p, StatusRejected, reviewer, reason)
}

// Comment appends to the discussion. Comments are accepted in every status
// and do not change UpdatedAt.
func (w *Workflow) Comment(p *Proposal, author, text string) (Comment, error) {
	c := w.newComment(author, text)
	if err := validation.Struct("comment", &c); err != nil {
		return Comment{}, err
	}
	p.Comments = append(p.Comments, c)
	w.record(p, audit.ActionComment, author, metadata.Map{"comment_id": c.ID}, nil)
	w.logger(p).Debug("comment added", logging.String("author", author))
	return c, nil
}

func (w *Workflow) newComment(author, text string) Comment {
	pv := w.provider()
	return Comment{ID: pv.NewID(), Author: author, Text: text, CreatedAt: pv.Now()}
}

func (w *Workflow) transition(p *Proposal, to Status, author, text string) error {
	from := p.Status
	actor := author
	if actor == "" {
		actor = p.Author
	}
	md := metadata.Map{"from": string(from), "to": string(to)}
	if !CanTransition(from, to) {
		err := fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
		w.Metrics.RecordProposalTransition(string(from), string(to), err)
		w.record(p, transitionActions[to], actor, md, err)
		w.logger(p).Warn("transition rejected",
			logging.String("from", string(from)), logging.String("to", string(to)))
		return err
	}

	var c *Comment
	if text != "" {
		nc := w.newComment(author, text)
		if err := validation.Struct("comment", &nc); err != nil {
			return err
		}
		c = &nc
	}

	p.Status = to
	p.UpdatedAt = w.provider().Now()
	if c != nil {
		p.Comments = append(p.Comments, *c)
	}
	w.Metrics.RecordProposalTransition(string(from), string(to), nil)
	w.record(p, transitionActions[to], actor, md, nil)
	w.logger(p).Info("proposal transitioned",
		logging.String("from", string(from)), logging.String("to", string(to)))
	return nil
}
