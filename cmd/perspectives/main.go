// Command perspectives generates diverse perspectives on fixed policy
// questions with few-shot prompting, formats them for side-by-side reading
// and scores their semantic diversity.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// globalOptions are shared by every subcommand.
type globalOptions struct {
	verbose    bool
	topicsFile string
	envFile    string
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "perspectives",
		Short: "Generate and compare few-shot diverse perspectives",
		Long: `perspectives asks a language model for ten diverse perspectives on each
configured question, once per example count (1-shot, 5-shot) and prompting
method (criteria-based, free-form). Results are stored as JSON artifacts and
are never regenerated once present.

  perspectives generate --shot-type all
  perspectives format --shot-type 5-shot
  perspectives evaluate`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			if g.verbose {
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&g.topicsFile, "config", "", "topics YAML file (default: built-in topics)")
	pf.StringVar(&g.envFile, "env-file", "", "env file with secrets (default: .env if present)")

	root.AddCommand(newGenerateCmd(g), newFormatCmd(g), newEvaluateCmd(g))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
