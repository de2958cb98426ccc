package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Matza-labs/atlas-sdk/pkg/algorithms"
	"github.com/Matza-labs/atlas-sdk/pkg/constraints"
	"github.com/Matza-labs/atlas-sdk/pkg/graph"
)

// errViolations marks a graph that decoded but failed an error-level rule.
var errViolations = errors.New("graph has error-level violations")

const topNodes = 5

// loadGraph decodes a graph file; .yaml and .yml go through the YAML path.
func loadGraph(path string) (*graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return graph.DecodeGraphYAML(data)
	default:
		var g graph.Graph
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		return &g, nil
	}
}

func runInspect(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("graph", "", "graph file (.json, .yaml or .yml)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return errors.New("inspect: -graph is required")
	}

	g, err := loadGraph(*path)
	if err != nil {
		return fmt.Errorf("decode %s: %w", *path, err)
	}
	result, err := constraints.Default().Validate(g)
	if err != nil {
		return err
	}

	st := newStyles(stdout)
	fmt.Fprintln(stdout, st.title.Render("atlas inspect: "+g.Name))

	platform := "unknown"
	if g.Platform != nil {
		platform = string(*g.Platform)
	}
	fmt.Fprintln(stdout, st.box.Render(st.kv(
		[2]string{"graph id", g.ID()},
		[2]string{"platform", platform},
		[2]string{"nodes", strconv.Itoa(g.NodeCount())},
		[2]string{"edges", strconv.Itoa(g.EdgeCount())},
	)))

	var types []string
	for _, t := range graph.AllNodeTypes() {
		if n := len(g.NodesOfType(t)); n > 0 {
			types = append(types, fmt.Sprintf("  %-18s %d", t, n))
		}
	}
	fmt.Fprintln(stdout, st.section("Node types", types))

	var cycles []string
	for _, comp := range algorithms.CyclicComponents(g) {
		cycles = append(cycles, st.warn.Render("  "+strings.Join(comp, ", ")))
	}
	fmt.Fprintln(stdout, st.section("Cycles", cycles))

	var top []string
	for _, r := range algorithms.TopByDegree(g, topNodes) {
		name := r.NodeID
		if n, ok := g.GetNode(r.NodeID); ok {
			name = n.Name
		}
		top = append(top, fmt.Sprintf("  %-24s %.0f", name, r.Score))
	}
	fmt.Fprintln(stdout, st.section("Most connected", top))

	var lines []string
	for _, v := range result.Violations {
		style := st.dimmed
		switch v.Severity {
		case constraints.Error:
			style = st.err
		case constraints.Warning:
			style = st.warn
		}
		lines = append(lines, fmt.Sprintf("  %s %s: %s", style.Render(v.Severity.String()), v.Type, v.Message))
	}
	fmt.Fprintln(stdout, st.section("Violations", lines))

	if !result.Valid {
		fmt.Fprintln(stdout, st.err.Render("FAIL"))
		return errViolations
	}
	fmt.Fprintln(stdout, st.ok.Render("OK"))
	return nil
}
