package graphql

import (
	"context"

	"github.com/graphql-go/graphql"
)

// ExecuteQuery runs query against schema.
func ExecuteQuery(ctx context.Context, schema graphql.Schema, query string) *graphql.Result {
	return ExecuteQueryWithVariables(ctx, schema, query, nil)
}

// ExecuteQueryWithVariables runs query with the given variable values.
func ExecuteQueryWithVariables(ctx context.Context, schema graphql.Schema, query string, variables map[string]any) *graphql.Result {
	if ctx == nil {
		ctx = context.Background()
	}
	return graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  query,
		VariableValues: variables,
		Context:        ctx,
	})
}
