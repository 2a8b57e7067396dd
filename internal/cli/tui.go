package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jdigger/aem-grapher/pkg/jcr"
	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// exploreCommand creates the explore command, an interactive browser over
// the nodes of a package and their associations.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags pipeline.Options

	cmd := &cobra.Command{
		Use:   "explore <package.zip|dir>",
		Short: "Browse nodes and their associations interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, flags, args[0])
			return runExplore(cmd.Context(), opts)
		},
	}

	addScanFlags(cmd, &flags)
	return cmd
}

func runExplore(ctx context.Context, opts pipeline.Options) error {
	result, err := newRunner(loggerFromContext(ctx)).Execute(ctx, opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(NewExploreModel(result.Nodes, result.Associations), tea.WithContext(ctx)).Run()
	return err
}

// ExploreModel is the bubbletea model for browsing a scan. The upper table
// lists nodes; the lower pane lists associations of the node under the
// cursor.
type ExploreModel struct {
	Nodes        []jcr.Node
	Associations []jcr.Association
	Cursor       int
	Height       int
	Offset       int
}

// NewExploreModel creates an explore model over a scan result.
func NewExploreModel(nodes []jcr.Node, assocs []jcr.Association) ExploreModel {
	return ExploreModel{
		Nodes:        nodes,
		Associations: assocs,
		Height:       12,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			if n := len(m.Nodes); n > 0 {
				m.Cursor = n - 1
				m.Offset = max(0, n-m.Height)
			}
		}
	case tea.WindowSizeMsg:
		// Leave room for the header and the association pane.
		m.Height = max(msg.Height/2-4, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

// Selected returns the node under the cursor.
func (m ExploreModel) Selected() (jcr.Node, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Nodes) {
		return nil, false
	}
	return m.Nodes[m.Cursor], true
}

// related returns the associations touching n.
func (m ExploreModel) related(n jcr.Node) []jcr.Association {
	var out []jcr.Association
	for _, a := range m.Associations {
		if jcr.Equal(a.Left, n) || jcr.Equal(a.Right, n) {
			out = append(out, a)
		}
	}
	return out
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Package Nodes"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("No components or clientlibs found."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Nodes))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, append([]string{cursor}, nodeRow(m.Nodes[i])[:3]...))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Kind", "Key", "Title / Categories").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			idx := m.Offset + row
			if idx == m.Cursor {
				return listSelectedStyle
			}
			if col == 1 && idx < len(m.Nodes) {
				return kindStyle(m.Nodes[idx].Kind())
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Nodes))))
	b.WriteString("\n\n")

	sel, _ := m.Selected()
	related := m.related(sel)
	b.WriteString(StyleTitle.Render(fmt.Sprintf("Associations of %s", sel.Key())))
	b.WriteString("\n")
	if len(related) == 0 {
		b.WriteString(listDimStyle.Render("  none"))
		b.WriteString("\n")
	}
	for _, a := range related {
		b.WriteString("  " + formatAssociation(a, sel) + "\n")
	}
	return b.String()
}

// formatAssociation describes a from the point of view of n.
func formatAssociation(a jcr.Association, n jcr.Node) string {
	arrow, other := iconArrow, a.Right
	if jcr.Equal(a.Right, n) {
		arrow, other = "←", a.Left
	}
	line := fmt.Sprintf("%s %s %s", listDimStyle.Render(a.Type.String()), arrow, kindStyle(other.Kind()).Render(other.Key()))
	if a.Data != "" {
		line += listDimStyle.Render(" (" + a.Data + ")")
	}
	return line
}
