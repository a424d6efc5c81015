package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"perspectives/internal/config"
	"perspectives/internal/diversity"
	"perspectives/internal/report"
)

func newEvaluateCmd(g *globalOptions) *cobra.Command {
	var outputDir string
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Score the semantic diversity of every stored artifact",
		Long: `Embeds the Reason of each perspective and reports the mean pairwise
cosine distance per artifact, also grouped by topic. Scores are written to
<output-dir>/diversity_scores.txt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load(g.envFile)
			if err != nil {
				return err
			}
			embedder, err := newEmbedder(ctx, cfg.LLM)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(ctx, cfg.Artifact, outputDir)
			if err != nil {
				return fmt.Errorf("open artifact store: %w", err)
			}
			defer closeStore()

			ev := &diversity.Evaluator{Store: store, Embedder: embedder, Logger: logger}
			res, err := ev.Run(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			res.WriteSummary(out)

			path := filepath.Join(outputDir, diversity.ReportName)
			if err := report.Save(path, res.Text()); err != nil {
				return fmt.Errorf("save scores: %w", err)
			}
			fmt.Fprintf(out, "\nNumerical results saved to %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "outputs", "directory holding generated artifacts")
	return cmd
}
