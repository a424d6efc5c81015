package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"perspectives/internal/config"
	"perspectives/internal/llm"
	"perspectives/internal/pipeline"
	"perspectives/internal/prompt"
	"perspectives/internal/types"
)

type generateOptions struct {
	shotType    string
	outputDir   string
	method      string
	topicIDs    []string
	promptsDir  string
	savePrompts bool
}

func newGenerateCmd(g *globalOptions) *cobra.Command {
	o := &generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate perspective sets for every shot type, topic and method",
		Long: `Runs one model request per (shot type, topic, method) and writes
{prefix}{method}_{topic}.json into the output directory. Existing artifacts are
skipped, so an interrupted batch can simply be re-run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, g, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.shotType, "shot-type", "all", "1-shot, 5-shot or all")
	f.StringVar(&o.outputDir, "output-dir", "outputs", "directory for generated artifacts")
	f.StringVar(&o.method, "method", "all", "criteria-based, free-form or all")
	f.StringSliceVar(&o.topicIDs, "topic", nil, "restrict to these topic ids (repeatable)")
	f.StringVar(&o.promptsDir, "prompts-dir", "prompts", "directory holding the few-shot templates")
	f.BoolVar(&o.savePrompts, "save-prompts", false, "write each prompt and raw reply under <output-dir>/prompt/")
	return cmd
}

func runGenerate(cmd *cobra.Command, g *globalOptions, o *generateOptions) error {
	ctx := cmd.Context()
	scope, err := types.ParseShotScope(o.shotType)
	if err != nil {
		return err
	}
	methods, err := parseMethods(o.method)
	if err != nil {
		return err
	}
	topicList, err := loadTopics(g.topicsFile, o.topicIDs)
	if err != nil {
		return err
	}
	cfg, err := config.Load(g.envFile)
	if err != nil {
		return err
	}
	client, err := newClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	defer client.Close()

	templates, err := prompt.NewStore(o.promptsDir)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, cfg.Artifact, o.outputDir)
	if err != nil {
		return fmt.Errorf("open artifact store: %w", err)
	}
	defer closeStore()

	gen := &pipeline.Generator{
		LLM:       client,
		Templates: templates,
		Store:     store,
		Topics:    topicList,
		Options:   llm.GenerateOptions{MaxOutputTokens: cfg.LLM.MaxOutputTokens},
		Logger:    logger,
	}
	if o.savePrompts {
		gen.Hook = &llm.TranscriptSaver{Dir: o.outputDir}
	}

	logger.Info("starting generation",
		zap.String("shot_type", string(scope)),
		zap.String("method", o.method),
		zap.Int("topics", len(topicList)),
		zap.String("client", client.Name()),
	)
	sum, err := gen.Run(ctx, scope.GenerationOrder(), methods)
	fmt.Fprintf(cmd.OutOrStdout(), "Generation finished: %s\n", sum)
	if err != nil {
		return err
	}
	if n := sum.Count(pipeline.KindTemplateMissing); n > 0 {
		return fmt.Errorf("%d request(s) had no prompt template in %s", n, o.promptsDir)
	}
	return nil
}
