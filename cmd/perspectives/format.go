package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perspectives/internal/config"
	"perspectives/internal/report"
	"perspectives/internal/types"
)

type formatOptions struct {
	shotType  string
	outputDir string
	save      string
}

func newFormatCmd(g *globalOptions) *cobra.Command {
	o := &formatOptions{}
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Print stored perspectives grouped by topic, shot type and method",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.shotType, "shot-type", "all", "1-shot, 5-shot or all")
	f.StringVar(&o.outputDir, "output-dir", "outputs", "directory holding generated artifacts")
	f.StringVar(&o.save, "save", "", "also write the report here (default: <output-dir>/formatted_results_<shot-type>.txt)")
	return cmd
}

func runFormat(cmd *cobra.Command, g *globalOptions, o *formatOptions) error {
	ctx := cmd.Context()
	scope, err := types.ParseShotScope(o.shotType)
	if err != nil {
		return err
	}
	topicList, err := loadTopics(g.topicsFile, nil)
	if err != nil {
		return err
	}
	cfg, err := config.Load(g.envFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if cfg.Artifact.Backend == config.BackendFS {
		if _, err := os.Stat(o.outputDir); errors.Is(err, fs.ErrNotExist) {
			logger.Warn("output directory not found", zap.String("dir", o.outputDir))
			fmt.Fprintf(out, "Output directory %q not found. Run generate first.\n", o.outputDir)
			return nil
		}
	}
	store, closeStore, err := openStore(ctx, cfg.Artifact, o.outputDir)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer closeStore()

	text, err := report.Render(ctx, store, scope, topicList)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, text)

	path := o.save
	if path == "" {
		path = report.DefaultSavePath(o.outputDir, scope)
	}
	if err := report.Save(path, text); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	fmt.Fprintf(out, "\nFormatted results saved to %s\n", path)
	return nil
}
