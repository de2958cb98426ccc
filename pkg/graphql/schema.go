// Package graphql exposes a read-only GraphQL view over a multi-project
// dependency graph.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"

	"github.com/Matza-labs/atlas-sdk/pkg/algorithms"
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// NewSchema builds a schema whose resolvers read from m. The graphs are read
// at query time, so later additions to m are visible to later queries.
func NewSchema(m *graph.MultiProjectGraph) (graphql.Schema, error) {
	if m == nil {
		return graphql.Schema{}, fmt.Errorf("graphql: nil multi-project graph")
	}

	nodeType := createNodeType()
	edgeType := createEdgeType()
	graphType := createGraphType(nodeType, edgeType)
	crossEdgeType := createCrossEdgeType()

	r := &resolver{multi: m}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"graphs": &graphql.Field{
				Type:    graphql.NewList(graphType),
				Resolve: r.graphs,
			},
			"graph": &graphql.Field{
				Type: graphType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: r.graph,
			},
			"node": &graphql.Field{
				Type:    nodeType,
				Args:    nodeArgs(),
				Resolve: r.node,
			},
			"edgesFrom": &graphql.Field{
				Type:    graphql.NewList(edgeType),
				Args:    nodeArgs(),
				Resolve: r.edgesFrom,
			},
			"edgesTo": &graphql.Field{
				Type:    graphql.NewList(edgeType),
				Args:    nodeArgs(),
				Resolve: r.edgesTo,
			},
			"downstream": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: graphql.FieldConfigArgument{
					"graphId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
					"nodeIds": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
				},
				Resolve: r.downstream,
			},
			"crossEdges": &graphql.Field{
				Type: graphql.NewList(crossEdgeType),
				Args: graphql.FieldConfigArgument{
					"unresolved": &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: r.crossEdges,
			},
			"totals": &graphql.Field{
				Type:    totalsType,
				Resolve: r.totals,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func nodeArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"graphId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
	}
}

type resolver struct {
	multi *graph.MultiProjectGraph
}

func (r *resolver) lookup(p graphql.ResolveParams, key string) (*graph.Graph, error) {
	id, _ := p.Args[key].(string)
	g, ok := r.multi.Graph(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", graph.ErrGraphNotFound, id)
	}
	return g, nil
}

func (r *resolver) graphs(graphql.ResolveParams) (any, error) {
	return r.multi.Graphs(), nil
}

// graph returns null for an unknown id rather than an error.
func (r *resolver) graph(p graphql.ResolveParams) (any, error) {
	id, _ := p.Args["id"].(string)
	if g, ok := r.multi.Graph(id); ok {
		return g, nil
	}
	return nil, nil
}

func (r *resolver) node(p graphql.ResolveParams) (any, error) {
	g, err := r.lookup(p, "graphId")
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	if n, ok := g.GetNode(id); ok {
		return n, nil
	}
	return nil, nil
}

func (r *resolver) edgesFrom(p graphql.ResolveParams) (any, error) {
	g, err := r.lookup(p, "graphId")
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	return g.EdgesFrom(id), nil
}

func (r *resolver) edgesTo(p graphql.ResolveParams) (any, error) {
	g, err := r.lookup(p, "graphId")
	if err != nil {
		return nil, err
	}
	id, _ := p.Args["id"].(string)
	return g.EdgesTo(id), nil
}

func (r *resolver) downstream(p graphql.ResolveParams) (any, error) {
	g, err := r.lookup(p, "graphId")
	if err != nil {
		return nil, err
	}
	raw, _ := p.Args["nodeIds"].([]any)
	start := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			start = append(start, s)
		}
	}
	var out []*graph.Node
	for _, id := range algorithms.Downstream(g, start) {
		if n, ok := g.GetNode(id); ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *resolver) crossEdges(p graphql.ResolveParams) (any, error) {
	if only, _ := p.Args["unresolved"].(bool); only {
		return r.multi.UnresolvedCrossEdges(), nil
	}
	return r.multi.CrossEdges(), nil
}

func (r *resolver) totals(graphql.ResolveParams) (any, error) {
	return map[string]any{
		"graphs":     len(r.multi.Graphs()),
		"nodes":      r.multi.TotalNodes(),
		"edges":      r.multi.TotalEdges(),
		"crossEdges": len(r.multi.CrossEdges()),
		"unresolved": len(r.multi.UnresolvedCrossEdges()),
	}, nil
}
