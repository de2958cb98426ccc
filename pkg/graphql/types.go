package graphql

import (
	"encoding/json"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// jsonString renders v as a JSON document. Attribute and metadata shapes
// vary per node type, so they are exposed as strings.
func jsonString(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func nodeField(t graphql.Output, get func(n *graph.Node) (any, error)) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if n, ok := p.Source.(*graph.Node); ok {
				return get(n)
			}
			return nil, nil
		},
	}
}

func edgeField(t graphql.Output, get func(e *graph.Edge) any) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			if e, ok := p.Source.(*graph.Edge); ok {
				return get(e), nil
			}
			return nil, nil
		},
	}
}

func createNodeType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Node",
		Fields: graphql.Fields{
			"id":       nodeField(graphql.NewNonNull(graphql.ID), func(n *graph.Node) (any, error) { return n.ID(), nil }),
			"name":     nodeField(graphql.String, func(n *graph.Node) (any, error) { return n.Name, nil }),
			"nodeType": nodeField(graphql.String, func(n *graph.Node) (any, error) { return string(n.Type()), nil }),
			"platform": nodeField(graphql.String, func(n *graph.Node) (any, error) {
				if n.Platform == nil {
					return nil, nil
				}
				return string(*n.Platform), nil
			}),
			"source":     nodeField(graphql.String, func(n *graph.Node) (any, error) { return string(n.Source), nil }),
			"confidence": nodeField(graphql.String, func(n *graph.Node) (any, error) { return string(n.Confidence), nil }),
			"attributes": nodeField(graphql.String, func(n *graph.Node) (any, error) { return jsonString(n.Attributes()) }),
			"metadata":   nodeField(graphql.String, func(n *graph.Node) (any, error) { return jsonString(n.Metadata) }),
		},
	})
}

func createEdgeType() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Edge",
		Fields: graphql.Fields{
			"id":           edgeField(graphql.NewNonNull(graphql.ID), func(e *graph.Edge) any { return e.ID() }),
			"edgeType":     edgeField(graphql.String, func(e *graph.Edge) any { return string(e.Type) }),
			"sourceNodeId": edgeField(graphql.String, func(e *graph.Edge) any { return e.SourceNodeID }),
			"targetNodeId": edgeField(graphql.String, func(e *graph.Edge) any { return e.TargetNodeID }),
			"label": edgeField(graphql.String, func(e *graph.Edge) any {
				if e.Label == nil {
					return nil
				}
				return *e.Label
			}),
			"source":     edgeField(graphql.String, func(e *graph.Edge) any { return string(e.Source) }),
			"confidence": edgeField(graphql.String, func(e *graph.Edge) any { return string(e.Confidence) }),
		},
	})
}

func createCrossEdgeType() *graphql.Object {
	get := func(f func(c *graph.CrossProjectEdge) any) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (any, error) {
			if c, ok := p.Source.(*graph.CrossProjectEdge); ok {
				return f(c), nil
			}
			return nil, nil
		}
	}
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "CrossProjectEdge",
		Fields: graphql.Fields{
			"id":            &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: get(func(c *graph.CrossProjectEdge) any { return c.ID })},
			"sourceGraphId": &graphql.Field{Type: graphql.String, Resolve: get(func(c *graph.CrossProjectEdge) any { return c.SourceGraphID })},
			"sourceNodeId":  &graphql.Field{Type: graphql.String, Resolve: get(func(c *graph.CrossProjectEdge) any { return c.SourceNodeID })},
			"targetGraphId": &graphql.Field{Type: graphql.String, Resolve: get(func(c *graph.CrossProjectEdge) any { return c.TargetGraphID })},
			"targetNodeId":  &graphql.Field{Type: graphql.String, Resolve: get(func(c *graph.CrossProjectEdge) any { return c.TargetNodeID })},
			"linkType":      &graphql.Field{Type: graphql.String, Resolve: get(func(c *graph.CrossProjectEdge) any { return string(c.LinkType) })},
			"confidence":    &graphql.Field{Type: graphql.Float, Resolve: get(func(c *graph.CrossProjectEdge) any { return c.Confidence })},
		},
	})
}

// createGraphType exposes one project graph. nodes and edges accept an
// optional type filter.
func createGraphType(nodeType, edgeType *graphql.Object) *graphql.Object {
	get := func(f func(g *graph.Graph, p graphql.ResolveParams) any) graphql.FieldResolveFn {
		return func(p graphql.ResolveParams) (any, error) {
			if g, ok := p.Source.(*graph.Graph); ok {
				return f(g, p), nil
			}
			return nil, nil
		}
	}
	typeArg := graphql.FieldConfigArgument{"type": &graphql.ArgumentConfig{Type: graphql.String}}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Graph",
		Fields: graphql.Fields{
			"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID), Resolve: get(func(g *graph.Graph, _ graphql.ResolveParams) any { return g.ID() })},
			"name": &graphql.Field{Type: graphql.String, Resolve: get(func(g *graph.Graph, _ graphql.ResolveParams) any { return g.Name })},
			"platform": &graphql.Field{Type: graphql.String, Resolve: get(func(g *graph.Graph, _ graphql.ResolveParams) any {
				if g.Platform == nil {
					return nil
				}
				return string(*g.Platform)
			})},
			"scannedAt": &graphql.Field{Type: graphql.String, Resolve: get(func(g *graph.Graph, _ graphql.ResolveParams) any {
				return g.ScannedAt.Format(time.RFC3339Nano)
			})},
			"nodeCount": &graphql.Field{Type: graphql.Int, Resolve: get(func(g *graph.Graph, _ graphql.ResolveParams) any { return g.NodeCount() })},
			"edgeCount": &graphql.Field{Type: graphql.Int, Resolve: get(func(g *graph.Graph, _ graphql.ResolveParams) any { return g.EdgeCount() })},
			"nodes": &graphql.Field{
				Type: graphql.NewList(nodeType),
				Args: typeArg,
				Resolve: get(func(g *graph.Graph, p graphql.ResolveParams) any {
					if t, ok := p.Args["type"].(string); ok && t != "" {
						return g.NodesOfType(graph.NodeType(t))
					}
					return g.Nodes()
				}),
			},
			"edges": &graphql.Field{
				Type: graphql.NewList(edgeType),
				Args: typeArg,
				Resolve: get(func(g *graph.Graph, p graphql.ResolveParams) any {
					if t, ok := p.Args["type"].(string); ok && t != "" {
						return g.EdgesOfType(graph.EdgeType(t))
					}
					return g.Edges()
				}),
			},
		},
	})
}

var totalsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Totals",
	Fields: graphql.Fields{
		"graphs":     &graphql.Field{Type: graphql.Int},
		"nodes":      &graphql.Field{Type: graphql.Int},
		"edges":      &graphql.Field{Type: graphql.Int},
		"crossEdges": &graphql.Field{Type: graphql.Int},
		"unresolved": &graphql.Field{Type: graphql.Int},
	},
})
