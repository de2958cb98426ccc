package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	box    lipgloss.Style
	label  lipgloss.Style
	ok     lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	dimmed lipgloss.Style
}

// newStyles binds the palette to w so colour is dropped for non-terminals.
func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginBottom(1),
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")),
		box: r.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1),
		label:  r.NewStyle().Foreground(lipgloss.Color("#888888")).Width(14),
		ok:     r.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00")),
		warn:   r.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		err:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000")),
		dimmed: r.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// kv renders aligned "label value" rows.
func (s styles) kv(rows ...[2]string) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, s.label.Render(r[0]), r[1]))
	}
	return strings.Join(lines, "\n")
}

func (s styles) section(title string, lines []string) string {
	if len(lines) == 0 {
		lines = []string{s.dimmed.Render("none")}
	}
	return s.header.Render(title) + "\n" + strings.Join(lines, "\n")
}

func (s styles) printError(w io.Writer, err error) {
	fmt.Fprintln(w, s.err.Render("error: ")+err.Error())
}
