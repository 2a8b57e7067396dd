package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	aemio "github.com/jdigger/aem-grapher/pkg/io"
	"github.com/jdigger/aem-grapher/pkg/jcr"
	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

// nodesCommand creates the nodes command, which lists extracted descriptors.
func (c *CLI) nodesCommand() *cobra.Command {
	var (
		flags  pipeline.Options
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "nodes <package.zip|dir>",
		Short: "List the components and clientlibs of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, flags, args[0])
			return runNodes(cmd.Context(), cmd.OutOrStdout(), opts, asJSON)
		},
	}

	addScanFlags(cmd, &flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print nodes as JSON")

	return cmd
}

func runNodes(ctx context.Context, w io.Writer, opts pipeline.Options, asJSON bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger, opts.Path)

	nodes, err := newRunner(logger).Scan(ctx, opts)
	if err != nil {
		return err
	}
	jcr.SortNodes(nodes)
	prog.done("scanned package", "nodes", len(nodes))

	if asJSON {
		return aemio.WriteJSON(aemio.Document{Root: opts.Path, Nodes: nodes}, w)
	}
	if len(nodes) == 0 {
		fmt.Fprintln(w, StyleDim.Render("No components or clientlibs found."))
		return nil
	}
	fmt.Fprintln(w, nodeTable(nodes))
	return nil
}
