package dot

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/samber/lo"

	"github.com/jdigger/aem-grapher/pkg/jcr"
)

// DefaultName is the graph name used when [Options.Name] is empty.
const DefaultName = "aem"

// Options configures DOT output.
type Options struct {
	// Name is the graph name. Names that are not plain DOT identifiers are
	// quoted.
	Name string
	// Detailed declares nodes with labels and labels every edge with the
	// association type and data.
	Detailed bool
}

// ToDOT renders assocs as a directed graph, one edge line per association,
// in the order given.
func ToDOT(assocs []jcr.Association, opts Options) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", graphID(opts.Name))

	if opts.Detailed {
		buf.WriteString("  rankdir=LR;\n")
		for _, n := range nodesOf(assocs) {
			fmt.Fprintf(&buf, "  %q [%s];\n", n.Key(), strings.Join(nodeAttrs(n), ", "))
		}
		buf.WriteString("\n")
	}

	for _, a := range assocs {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", a.Left.Key(), a.Right.Key(), edgeLabel(a))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", a.Left.Key(), a.Right.Key())
	}

	buf.WriteString("}\n")
	return buf.String()
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func graphID(name string) string {
	if name == "" {
		return DefaultName
	}
	if identRe.MatchString(name) {
		return name
	}
	return fmt.Sprintf("%q", name)
}

// nodesOf returns the distinct nodes of assocs in first-seen order.
func nodesOf(assocs []jcr.Association) []jcr.Node {
	all := lo.FlatMap(assocs, func(a jcr.Association, _ int) []jcr.Node {
		return []jcr.Node{a.Left, a.Right}
	})
	return lo.UniqBy(all, jcr.Node.Key)
}

func nodeAttrs(n jcr.Node) []string {
	switch n.Kind() {
	case jcr.KindComponent:
		c, _ := jcr.AsComponent(n)
		return []string{"shape=box", fmt.Sprintf("label=%q", c.ResourceType+"\n"+c.Title)}
	case jcr.KindClientlib:
		l, _ := jcr.AsClientlib(n)
		return []string{"shape=ellipse", fmt.Sprintf("label=%q", l.Path+"\n["+strings.Join(l.Categories, ",")+"]")}
	}
	return []string{fmt.Sprintf("label=%q", n.Key())}
}

func edgeLabel(a jcr.Association) string {
	if a.Data == "" {
		return a.Type.String()
	}
	return a.Type.String() + "\n" + a.Data
}

// Validate parses dot with Graphviz and reports syntax errors.
func Validate(dot string) error {
	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	if g == nil {
		return errors.New("parse DOT: no graph")
	}
	return g.Close()
}
