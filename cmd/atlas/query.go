package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/Matza-labs/atlas-sdk/pkg/graph"
	"github.com/Matza-labs/atlas-sdk/pkg/graphql"
)

type fileList []string

func (f *fileList) String() string { return strings.Join(*f, ",") }

func (f *fileList) Set(v string) error {
	*f = append(*f, v)
	return nil
}

func runQuery(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var files fileList
	fs.Var(&files, "graph", "graph file, repeatable")
	q := fs.String("q", "", "GraphQL query")
	vars := fs.String("vars", "", "JSON object of query variables")
	depth := fs.Int("depth", graphql.DefaultMaxDepth, "maximum query depth")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(files) == 0 || *q == "" {
		return errors.New("query: -graph and -q are required")
	}

	multi := graph.NewMulti()
	for _, path := range files {
		g, err := loadGraph(path)
		if err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		multi.AddGraph(g)
	}

	var variables map[string]any
	if *vars != "" {
		if err := json.Unmarshal([]byte(*vars), &variables); err != nil {
			return fmt.Errorf("parse -vars: %w", err)
		}
	}

	schema, err := graphql.NewSchema(multi)
	if err != nil {
		return err
	}
	res := graphql.ExecuteWithDepthLimit(context.Background(), schema, *q, *depth, variables)

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	if res.HasErrors() {
		return fmt.Errorf("query returned %d error(s)", len(res.Errors))
	}
	return nil
}
