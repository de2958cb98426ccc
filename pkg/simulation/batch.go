package simulation

import (
	"context"
	"sort"

	"github.com/Matza-labs/atlas-sdk/pkg/findings"
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/parallel"
	"github.com/Matza-labs/atlas-sdk/pkg/refactor"
)

// SimulateAll runs every plan against g on up to workers goroutines. Results
// are in plan order; a failed plan leaves a nil entry and contributes to the
// joined error. g and fs are only read.
func (s *Simulator) SimulateAll(ctx context.Context, g *graph.Graph, plans []*refactor.Plan, fs []*findings.Finding, workers int) ([]*Result, error) {
	return parallel.Map(ctx, workers, plans, func(_ context.Context, plan *refactor.Plan) (*Result, error) {
		return s.Simulate(g, plan, fs)
	})
}

// Rank orders results by improved metrics, then by findings removed, best
// first. Nil entries sort last. The input slice is not modified.
func Rank(results []*Result) []*Result {
	out := append([]*Result(nil), results...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		if a.TotalImprovements() != b.TotalImprovements() {
			return a.TotalImprovements() > b.TotalImprovements()
		}
		return a.FindingsRemoved > b.FindingsRemoved
	})
	return out
}
