package simulation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/Matza-labs/atlas-sdk/pkg/algorithms"
	"github.com/Matza-labs/atlas-sdk/pkg/findings"
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/ids"
	"github.com/Matza-labs/atlas-sdk/pkg/logging"
	"github.com/Matza-labs/atlas-sdk/pkg/metadata"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
	"github.com/Matza-labs/atlas-sdk/pkg/refactor"
	"github.com/Matza-labs/atlas-sdk/pkg/scoring"
)

// ErrPlanGraphMismatch is returned when a plan bound to one graph is
// simulated against another.
var ErrPlanGraphMismatch = errors.New("plan targets a different graph")

// diffContext is the number of unchanged lines shown around each hunk.
const diffContext = 3

// Simulator runs plans against graphs. The zero value is usable: it scores
// with the default severity weights, mints ids from the system provider and
// does not log or record metrics.
type Simulator struct {
	Scorer   scoring.Scorer
	Provider ids.Provider
	Logger   logging.Logger
	Metrics  *metrics.Registry
}

// Simulate projects plan onto g given the findings currently raised against
// it. A finding is addressed when a suggestion names its id, or when a
// suggestion without a finding id shares its rule id.
func (s *Simulator) Simulate(g *graph.Graph, plan *refactor.Plan, fs []*findings.Finding) (*Result, error) {
	logger := logging.OrNop(s.Logger).With(logging.Component("simulation"), logging.GraphID(g.ID()), logging.PlanID(plan.ID))
	start := time.Now()

	res, err := s.simulate(g, plan, fs)
	if err != nil {
		s.Metrics.RecordSimulation("error", time.Since(start))
		logger.Warn("simulation rejected", logging.Error(err))
		return nil, err
	}

	s.Metrics.RecordSimulation("ok", time.Since(start))
	logger.Info("simulation complete",
		logging.Int("findings_removed", res.FindingsRemoved),
		logging.Int("findings_remaining", res.FindingsRemaining),
		logging.Int("improvements", res.TotalImprovements()),
		logging.Latency(time.Since(start)))
	return res, nil
}

func (s *Simulator) simulate(g *graph.Graph, plan *refactor.Plan, fs []*findings.Finding) (*Result, error) {
	if plan.GraphID != "" && plan.GraphID != g.ID() {
		return nil, fmt.Errorf("%w: plan %s is for graph %s, not %s", ErrPlanGraphMismatch, plan.ID, plan.GraphID, g.ID())
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	scorer := s.Scorer
	if scorer == nil {
		scorer = scoring.NewSeverityScorer(nil)
	}

	remaining := make([]*findings.Finding, 0, len(fs))
	for _, f := range fs {
		if !addressed(plan, f) {
			remaining = append(remaining, f.Clone())
		}
	}

	projected := g.Clone()
	before := scorer.Score(g, fs)
	after := scorer.Score(projected, remaining)

	deltas := make([]ScoreDelta, 0, len(scoring.AllMetrics()))
	for _, m := range scoring.AllMetrics() {
		deltas = append(deltas, ScoreDelta{Metric: m, Before: before.Get(m), After: after.Get(m)})
	}

	preview, err := diffPreview(plan)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ID:                 ids.OrSystem(s.Provider).NewID(),
		PlanID:             plan.ID,
		GraphID:            g.ID(),
		FindingsRemoved:    len(fs) - len(remaining),
		FindingsRemaining:  len(remaining),
		ScoreDeltas:        deltas,
		DiffPreview:        preview,
		ProjectedNodeCount: projected.NodeCount(),
		ProjectedEdgeCount: projected.EdgeCount(),
		ImpactedNodeIDs:    algorithms.Downstream(projected, affectedNodes(plan)),
		Metadata: metadata.Map{
			"suggestion_count": plan.TotalSuggestions(),
			"high_risk_count":  plan.HighRiskCount(),
		}.Clone(),
	}
	if err := res.Validate(); err != nil {
		return nil, err
	}
	return res, nil
}

func addressed(plan *refactor.Plan, f *findings.Finding) bool {
	for _, sg := range plan.Suggestions {
		if sg.FindingID != nil && *sg.FindingID != "" {
			if *sg.FindingID == f.ID {
				return true
			}
			continue
		}
		if sg.RuleID == f.RuleID {
			return true
		}
	}
	return false
}

// affectedNodes lists the plan's affected node ids once each, in plan order.
func affectedNodes(plan *refactor.Plan) []string {
	seen := make(map[string]bool)
	var out []string
	for _, sg := range plan.Suggestions {
		for _, id := range sg.AffectedNodeIDs {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// diffPreview renders one unified diff per suggestion whose snippets differ.
func diffPreview(plan *refactor.Plan) (string, error) {
	var b strings.Builder
	for _, sg := range plan.Suggestions {
		if sg.BeforeSnippet == sg.AfterSnippet {
			continue
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        snippetLines(sg.BeforeSnippet),
			B:        snippetLines(sg.AfterSnippet),
			FromFile: "a/" + sg.RuleID,
			ToFile:   "b/" + sg.RuleID,
			Context:  diffContext,
		})
		if err != nil {
			return "", fmt.Errorf("diff for suggestion %s: %w", sg.ID, err)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

func snippetLines(s string) []string {
	if s == "" {
		return nil
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return difflib.SplitLines(s)
}
