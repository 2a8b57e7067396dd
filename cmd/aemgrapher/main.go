package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jdigger/aem-grapher/internal/cli"
	aemerrors "github.com/jdigger/aem-grapher/pkg/errors"
	"github.com/jdigger/aem-grapher/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx)
	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(130) // Standard shell convention for SIGINT
	}
	fmt.Fprintln(os.Stderr, aemerrors.UserMessage(err))
	os.Exit(exitCode(err))
}

// exitCode is 2 for bad invocations (config, paths, unusable input files)
// and 1 for everything else.
func exitCode(err error) int {
	switch aemerrors.GetCode(err) {
	case aemerrors.ErrCodeInvalidConfig, aemerrors.ErrCodeInvalidPath, aemerrors.ErrCodeNotAPackageFile:
		return 2
	}
	return 1
}

func run(ctx context.Context) error {
	var verbose, quiet bool

	c := cli.New(os.Stderr, cli.LogInfo)
	observability.SetPipelineHooks(observability.NewLogHooks(c.Logger))

	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	// Levels are known only after flag parsing, so hook in ahead of config loading.
	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch {
		case verbose:
			c.SetLogLevel(cli.LogDebug)
		case quiet:
			c.SetLogLevel(cli.LogWarn)
		}
		if loadConfig == nil {
			return nil
		}
		return loadConfig(cmd, args)
	}

	return root.ExecuteContext(ctx)
}
