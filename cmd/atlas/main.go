// Command atlas inspects pipeline graphs and replays score snapshots
// through the alerting monitor.
package main

import (
	"fmt"
	"io"
	"os"
)

const usage = `usage: atlas <command> [flags]

commands:
  inspect  -graph file.(json|yaml)              validate a graph and summarise it
  alerts   -config file.yaml -snapshots file.json  replay snapshots and print fired alerts
  query    -graph file [-graph file ...] -q '{...}' run a GraphQL query over graphs
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches to a subcommand and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	var err error
	switch args[0] {
	case "inspect":
		err = runInspect(args[1:], stdout, stderr)
	case "alerts":
		err = runAlerts(args[1:], stdout, stderr)
	case "query":
		err = runQuery(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
	if err != nil {
		newStyles(stderr).printError(stderr, err)
		return 1
	}
	return 0
}
