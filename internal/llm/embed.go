package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// Embedder turns texts into vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GeminiEmbedder calls the Gemini embedding endpoint in batches.
type GeminiEmbedder struct {
	cli       *genai.Client
	model     string
	batchSize int
}

func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("llm: gemini api key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	return &GeminiEmbedder{cli: cli, model: model, batchSize: 100}, nil
}

func (e *GeminiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))
		contents := make([]*genai.Content, 0, end-start)
		for _, s := range texts[start:end] {
			contents = append(contents, &genai.Content{Parts: []*genai.Part{{Text: s}}})
		}
		resp, err := e.cli.Models.EmbedContent(ctx, e.model, contents, nil)
		if err != nil {
			return nil, classify(err)
		}
		if len(resp.Embeddings) != end-start {
			return nil, fmt.Errorf("llm: embed: got %d vectors for %d texts", len(resp.Embeddings), end-start)
		}
		for _, emb := range resp.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
