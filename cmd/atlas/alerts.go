package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Matza-labs/atlas-sdk/pkg/config"
	"github.com/Matza-labs/atlas-sdk/pkg/history"
	"github.com/Matza-labs/atlas-sdk/pkg/metrics"
	"github.com/Matza-labs/atlas-sdk/pkg/notify"
)

func loadSnapshots(path string) ([]*history.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snaps []*history.Snapshot
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, fmt.Errorf("parse snapshots: %w", err)
	}
	return snaps, nil
}

func runAlerts(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("alerts", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML file with a notifications list")
	snapPath := fs.String("snapshots", "", "JSON array of snapshots, oldest first")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *cfgPath == "" || *snapPath == "" {
		return errors.New("alerts: -config and -snapshots are required")
	}

	cfg, err := config.Load(nil, *cfgPath)
	if err != nil {
		return err
	}
	snaps, err := loadSnapshots(*snapPath)
	if err != nil {
		return err
	}

	logger := cfg.Logger(stderr)
	reg := metrics.NewRegistry()
	dispatcher := notify.NewDispatcher(logger, reg)
	defer dispatcher.Close()

	monitor, err := notify.NewMonitor(dispatcher, cfg.MonitorOptions(nil, logger, reg))
	if err != nil {
		return err
	}
	for _, c := range cfg.Notifications {
		if err := monitor.AddConfig(c); err != nil {
			return err
		}
	}

	st := newStyles(stdout)
	fmt.Fprintln(stdout, st.title.Render(fmt.Sprintf("atlas alerts: %d snapshot(s), %d config(s)", len(snaps), len(cfg.Notifications))))

	graphs := map[string]bool{}
	var fired []string
	for _, s := range snaps {
		res, err := monitor.Ingest(s)
		if err != nil {
			return err
		}
		graphs[s.GraphName] = true
		for _, ev := range res.Alerts {
			style := st.warn
			if ev.Severity == notify.SeverityCritical {
				style = st.err
			}
			fired = append(fired, fmt.Sprintf("  %s %s (%s)",
				style.Render(string(ev.Severity)), ev.Message, ev.Metadata["channel"]))
		}
	}
	fmt.Fprintln(stdout, st.section("Alerts", fired))

	names := make([]string, 0, len(graphs))
	for name := range graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	var trends []string
	for _, name := range names {
		report, ok := monitor.Report(name)
		if !ok {
			continue
		}
		for _, t := range report.Trends() {
			trends = append(trends, fmt.Sprintf("  %-12s %-10s %6.1f -> %6.1f  %s",
				name, t.Metric, t.Previous, t.Current, t.Direction()))
		}
	}
	fmt.Fprintln(stdout, st.section("Trends", trends))
	return nil
}
