package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

// exportCommand creates the export command, which writes a JSON scan document.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		flags  pipeline.Options
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <package.zip|dir>",
		Short: "Write the nodes and associations of a package as JSON",
		Long: `Scan a content package and write a JSON document with every extracted node
and inferred association. The document can be turned into DOT later with
"aemgrapher render".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.options(cmd, flags, args[0])
			opts.Format = pipeline.FormatJSON
			return runExport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, output)
		},
	}

	addScanFlags(cmd, &flags)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to a file instead of stdout")

	return cmd
}

func runExport(ctx context.Context, stdout, stderr io.Writer, opts pipeline.Options, output string) error {
	logger := loggerFromContext(ctx)

	result, err := newRunner(logger).Execute(ctx, opts)
	if err != nil {
		return err
	}
	if err := writeOutput(stdout, output, result.Output); err != nil {
		return err
	}
	logger.Debug("exported scan", "scan", result.ScanID)

	if output != "" {
		printSuccess(stderr, "Exported scan %s", result.ScanID)
		printFile(stderr, output)
		printStats(stderr, result.Stats)
	}
	return nil
}
