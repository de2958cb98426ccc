package graphql

import (
	"context"
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// DefaultMaxDepth bounds graph -> nodes style nesting for untrusted callers.
const DefaultMaxDepth = 4

// QueryDepth returns the deepest object nesting of any operation in query.
// Scalar leaves and introspection fields do not add depth.
func QueryDepth(query string) (int, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return 0, fmt.Errorf("failed to parse query: %w", err)
	}

	fragments := make(map[string]*ast.FragmentDefinition)
	for _, def := range doc.Definitions {
		if f, ok := def.(*ast.FragmentDefinition); ok && f.Name != nil {
			fragments[f.Name.Value] = f
		}
	}

	d := depthWalker{fragments: fragments, visiting: map[string]bool{}}
	max := 0
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			if n := d.selectionSet(op.SelectionSet, 0); n > max {
				max = n
			}
		}
	}
	return max, nil
}

type depthWalker struct {
	fragments map[string]*ast.FragmentDefinition
	visiting  map[string]bool
}

func (d depthWalker) selectionSet(set *ast.SelectionSet, depth int) int {
	if set == nil {
		return depth
	}
	max := depth
	for _, sel := range set.Selections {
		n := depth
		switch s := sel.(type) {
		case *ast.Field:
			if strings.HasPrefix(s.Name.Value, "__") || s.SelectionSet == nil {
				continue
			}
			n = d.selectionSet(s.SelectionSet, depth+1)
		case *ast.InlineFragment:
			n = d.selectionSet(s.SelectionSet, depth)
		case *ast.FragmentSpread:
			name := s.Name.Value
			f, ok := d.fragments[name]
			if !ok || d.visiting[name] {
				continue
			}
			d.visiting[name] = true
			n = d.selectionSet(f.SelectionSet, depth)
			delete(d.visiting, name)
		}
		if n > max {
			max = n
		}
	}
	return max
}

// ValidateQueryDepth fails when query nests deeper than maxDepth.
func ValidateQueryDepth(query string, maxDepth int) error {
	if maxDepth <= 0 {
		return fmt.Errorf("max depth must be greater than 0, got %d", maxDepth)
	}
	depth, err := QueryDepth(query)
	if err != nil {
		return err
	}
	if depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", depth, maxDepth)
	}
	return nil
}

// ExecuteWithDepthLimit validates the depth of query before running it.
func ExecuteWithDepthLimit(ctx context.Context, schema graphql.Schema, query string, maxDepth int, variables map[string]any) *graphql.Result {
	if err := ValidateQueryDepth(query, maxDepth); err != nil {
		return &graphql.Result{Errors: []gqlerrors.FormattedError{gqlerrors.FormatError(err)}}
	}
	return ExecuteQueryWithVariables(ctx, schema, query, variables)
}
