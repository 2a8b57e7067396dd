package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/jdigger/aem-grapher/pkg/jcr"
	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - clientlibs
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleComponent   = lipgloss.NewStyle().Foreground(colorCyan)
	styleClientlib   = lipgloss.NewStyle().Foreground(colorYellow)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconArrow   = "→"
)

// printSuccess prints a success message.
func printSuccess(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printStats prints scan statistics on a single line.
func printStats(w io.Writer, s pipeline.Stats) {
	parts := []string{
		fmt.Sprintf("%d components", s.ComponentCount),
		fmt.Sprintf("%d clientlibs", s.ClientlibCount),
	}
	for _, t := range jcr.AssociationTypes() {
		if n := s.ByType[t]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(t.String())))
		}
	}
	fmt.Fprintln(w, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// kindStyle colors a node by its kind.
func kindStyle(k jcr.Kind) lipgloss.Style {
	if k == jcr.KindComponent {
		return styleComponent
	}
	return styleClientlib
}

// nodeRow returns the table cells describing n.
func nodeRow(n jcr.Node) []string {
	switch n.Kind() {
	case jcr.KindComponent:
		c, _ := jcr.AsComponent(n)
		return []string{n.Kind().String(), c.ResourceType, c.Title, c.ComponentGroup}
	case jcr.KindClientlib:
		l, _ := jcr.AsClientlib(n)
		return []string{n.Kind().String(), l.Path, strings.Join(l.Categories, ", "), clientlibRefs(l)}
	}
	return []string{n.Kind().String(), n.Key(), "", ""}
}

func clientlibRefs(l jcr.Clientlib) string {
	var refs []string
	if len(l.Dependencies) > 0 {
		refs = append(refs, "deps: "+strings.Join(l.Dependencies, ", "))
	}
	if len(l.Embed) > 0 {
		refs = append(refs, "embed: "+strings.Join(l.Embed, ", "))
	}
	return strings.Join(refs, "; ")
}

// nodeTable renders nodes as a bordered table.
func nodeTable(nodes []jcr.Node) string {
	rows := make([][]string, len(nodes))
	for i, n := range nodes {
		rows[i] = nodeRow(n)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Key", "Title / Categories", "Group / References").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styleHeader
			case col == 0:
				return kindStyle(nodes[row].Kind())
			case col == 3:
				return StyleDim
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
