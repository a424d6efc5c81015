package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"perspectives/internal/artifact"
	"perspectives/internal/config"
	"perspectives/internal/llm"
	"perspectives/internal/topics"
	"perspectives/internal/types"
)

// loadTopics returns the registry from --config (or the built-ins),
// narrowed to ids when any are given.
func loadTopics(path string, ids []string) ([]types.Topic, error) {
	reg := topics.Default()
	if strings.TrimSpace(path) != "" {
		var err error
		if reg, err = topics.Load(path); err != nil {
			return nil, err
		}
	}
	if len(ids) > 0 {
		var err error
		if reg, err = reg.Filter(ids...); err != nil {
			return nil, err
		}
	}
	return reg.All(), nil
}

func parseMethods(s string) ([]types.Method, error) {
	if s = strings.TrimSpace(s); s == "" || s == "all" {
		return types.Methods, nil
	}
	m, err := types.ParseMethod(s)
	if err != nil {
		return nil, err
	}
	return []types.Method{m}, nil
}

// openStore builds the configured artifact backend. Object and SQL
// backends are namespaced by the output directory's base name.
func openStore(ctx context.Context, cfg config.ArtifactConfig, outputDir string) (artifact.Store, func(), error) {
	noop := func() {}
	namespace := filepath.Base(filepath.Clean(outputDir))
	switch cfg.Backend {
	case config.BackendS3:
		prefix := cfg.S3.Prefix
		if prefix == "" {
			prefix = namespace
		}
		s, err := artifact.NewS3Store(artifact.S3Config{
			Endpoint:  cfg.S3.Endpoint,
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			Bucket:    cfg.S3.Bucket,
			Prefix:    prefix,
			UseSSL:    cfg.S3.UseSSL,
		})
		return s, noop, err
	case config.BackendPostgres:
		db, err := artifact.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, err
		}
		s, err := artifact.NewPostgresStore(db, namespace)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return s, func() { _ = db.Close() }, nil
	default:
		s, err := artifact.NewFileStore(outputDir)
		return s, noop, err
	}
}

// newClient builds the model client and wraps it:
// logging → hooks → retry → rate limit → provider.
func newClient(ctx context.Context, cfg config.LLMConfig) (llm.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var base llm.Client
	switch cfg.Provider {
	case config.ProviderFake:
		base = llm.NewFakeClient()
	default:
		g, err := llm.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		base = g
	}
	return llm.Wrap(base,
		llm.WithLogging(logger),
		llm.WithHooks(),
		llm.Retry(cfg.Retries, 0),
		llm.RateLimit(cfg.RPS, cfg.Burst),
	), nil
}

func newEmbedder(ctx context.Context, cfg config.LLMConfig) (llm.Embedder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Provider == config.ProviderFake {
		return llm.FakeEmbedder{}, nil
	}
	e, err := llm.NewGeminiEmbedder(ctx, cfg.APIKey, cfg.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	return e, nil
}
