package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

// graphCommand creates the graph command, which prints DOT to stdout.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		flags  pipeline.Options
		output string
	)

	cmd := &cobra.Command{
		Use:   "graph <package.zip|dir>",
		Short: "Print the association graph of a package as DOT",
		Long: `Scan a content package and print the associations between its components
and client libraries as a Graphviz DOT graph.

The path may be a package .zip, a directory containing jcr_root, or any
directory inside a jcr_root tree.`,
		Example: `  aemgrapher graph target/mypackage.zip | dot -Tsvg > graph.svg
  aemgrapher graph ui.apps/src/main/content --detailed -o graph.dot`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, flags, args[0])
			opts.Format = pipeline.FormatDOT
			return runGraph(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, output)
		},
	}

	addGraphFlags(cmd, &flags)
	addScanFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write DOT to a file instead of stdout")

	return cmd
}

func runGraph(ctx context.Context, stdout, stderr io.Writer, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger, opts.Path)

	result, err := newRunner(logger).Execute(ctx, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(stdout, output, result.Output); err != nil {
		return err
	}
	prog.done("graphed package", "nodes", result.Stats.NodeCount, "associations", result.Stats.AssociationCount)

	if output != "" {
		printSuccess(stderr, "Wrote graph")
		printFile(stderr, output)
		printStats(stderr, result.Stats)
	}
	return nil
}
