// Package cli implements the aemgrapher command-line interface.
//
// # Commands
//
//   - graph: print the association graph of a package as DOT
//   - nodes: list the components and clientlibs of a package
//   - export: write a JSON scan document
//   - render: turn a JSON scan document back into DOT
//   - explore: browse nodes and their associations interactively
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context and writes to stderr, so stdout carries only
// command output.
//
// # Configuration
//
// Defaults for the scan flags can be set in a TOML file, read from --config
// or $XDG_CONFIG_HOME/aemgrapher/config.toml. Flags given on the command line
// win over the file.
package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/jdigger/aem-grapher/pkg/buildinfo"
	"github.com/jdigger/aem-grapher/pkg/pipeline"
)

// appName is the application name used for directories and display.
const appName = "aemgrapher"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     pipeline.Options
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "aemgrapher graphs the components and client libraries of AEM content packages",
		Long: `aemgrapher scans an AEM content package (a jcr_root tree or a package .zip),
extracts component and client library descriptors, infers how they relate,
and prints the result as a Graphviz DOT graph.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/"+appName+"/config.toml)")

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner for CLI use.
func newRunner(logger *log.Logger) *pipeline.Runner {
	return pipeline.NewRunner(logger)
}

// addScanFlags registers the flags shared by every command that scans a
// package.
func addScanFlags(cmd *cobra.Command, flags *pipeline.Options) {
	cmd.Flags().StringSliceVar(&flags.Exclude, "exclude", nil, "doublestar pattern relative to jcr_root to skip (repeatable)")
	cmd.Flags().IntVar(&flags.Workers, "workers", pipeline.DefaultWorkers, "number of inference workers")
}

// addGraphFlags registers the DOT output flags.
func addGraphFlags(cmd *cobra.Command, flags *pipeline.Options) {
	cmd.Flags().StringVar(&flags.Name, "name", pipeline.DefaultName, "DOT graph name")
	cmd.Flags().BoolVar(&flags.Detailed, "detailed", false, "declare nodes and label edges with type and data")
	cmd.Flags().BoolVar(&flags.Validate, "validate", false, "check the generated DOT with Graphviz")
}

// options combines the config file with the flags of cmd. Flags set on the
// command line win; exclude patterns from both are kept.
func (c *CLI) options(cmd *cobra.Command, flags pipeline.Options, path string) pipeline.Options {
	return mergeOptions(c.config, flags, cmd.Flags().Changed, path)
}

func mergeOptions(cfg, flags pipeline.Options, changed func(string) bool, path string) pipeline.Options {
	out := cfg
	out.Path = path
	if changed("name") || out.Name == "" {
		out.Name = flags.Name
	}
	if changed("detailed") {
		out.Detailed = flags.Detailed
	}
	if changed("validate") {
		out.Validate = flags.Validate
	}
	if changed("workers") || out.Workers == 0 {
		out.Workers = flags.Workers
	}
	out.Exclude = lo.Uniq(append(append([]string(nil), cfg.Exclude...), flags.Exclude...))
	return out
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
