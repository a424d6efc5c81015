// Package config reads runtime settings from the environment, after loading
// an optional .env file that usually carries the API key.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	ProviderGemini = "gemini"
	ProviderFake   = "fake"

	BackendFS       = "fs"
	BackendS3       = "s3"
	BackendPostgres = "postgres"
)

// ErrMissingCredential is returned when the selected provider needs an API
// key and none is configured.
var ErrMissingCredential = errors.New("GEMINI_API_KEY is not set")

type Config struct {
	LLM      LLMConfig
	Artifact ArtifactConfig
}

type LLMConfig struct {
	Provider        string
	APIKey          string
	Model           string
	EmbeddingModel  string
	MaxOutputTokens int
	Retries         int
	RPS             float64
	Burst           int
}

type ArtifactConfig struct {
	Backend     string
	DatabaseURL string
	S3          S3Config
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// Load reads envFile (".env" when empty, silently skipped if absent) and
// then the process environment. Variables already set in the environment
// win over the file.
func Load(envFile string) (*Config, error) {
	if strings.TrimSpace(envFile) == "" {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFile); err != nil {
		return nil, fmt.Errorf("load env file %s: %w", envFile, err)
	}

	llm, err := loadLLMConfig()
	if err != nil {
		return nil, err
	}
	art, err := loadArtifactConfig()
	if err != nil {
		return nil, err
	}
	return &Config{LLM: llm, Artifact: art}, nil
}

func loadLLMConfig() (LLMConfig, error) {
	cfg := LLMConfig{
		Provider:       strings.ToLower(firstNonEmpty(env("LLM_PROVIDER"), ProviderGemini)),
		APIKey:         firstNonEmpty(env("GEMINI_API_KEY"), env("GOOGLE_API_KEY")),
		Model:          firstNonEmpty(env("LLM_MODEL"), "gemini-2.5-flash"),
		EmbeddingModel: firstNonEmpty(env("EMBEDDING_MODEL"), "gemini-embedding-001"),
	}
	switch cfg.Provider {
	case ProviderGemini, ProviderFake:
	default:
		return LLMConfig{}, fmt.Errorf("LLM_PROVIDER: unknown provider %q", cfg.Provider)
	}

	var err error
	if cfg.MaxOutputTokens, err = envInt("LLM_MAX_OUTPUT_TOKENS", 4000); err != nil {
		return LLMConfig{}, err
	}
	if cfg.Retries, err = envInt("LLM_RETRIES", 1); err != nil {
		return LLMConfig{}, err
	}
	if cfg.Retries < 1 {
		cfg.Retries = 1
	}
	rpsKey := "LLM_RPS"
	if env(rpsKey) == "" {
		rpsKey = "GEMINI_RPS"
	}
	if cfg.RPS, err = envFloat(rpsKey, 0); err != nil {
		return LLMConfig{}, err
	}
	burstKey := "LLM_BURST"
	if env(burstKey) == "" {
		burstKey = "GEMINI_BURST"
	}
	if cfg.Burst, err = envInt(burstKey, 1); err != nil {
		return LLMConfig{}, err
	}
	return cfg, nil
}

// Validate reports a missing credential for providers that need one.
func (c LLMConfig) Validate() error {
	if c.Provider == ProviderGemini && strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingCredential
	}
	return nil
}

func loadArtifactConfig() (ArtifactConfig, error) {
	cfg := ArtifactConfig{
		Backend:     strings.ToLower(firstNonEmpty(env("ARTIFACT_BACKEND"), BackendFS)),
		DatabaseURL: firstNonEmpty(env("ARTIFACT_DATABASE_URL"), env("DATABASE_URL")),
		S3: S3Config{
			Endpoint:  env("ARTIFACT_S3_ENDPOINT"),
			Region:    firstNonEmpty(env("ARTIFACT_S3_REGION"), "us-east-1"),
			AccessKey: firstNonEmpty(env("ARTIFACT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER")),
			SecretKey: firstNonEmpty(env("ARTIFACT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD")),
			Bucket:    firstNonEmpty(env("ARTIFACT_S3_BUCKET"), "perspectives"),
			Prefix:    env("ARTIFACT_S3_PREFIX"),
			UseSSL:    envBool("ARTIFACT_S3_USE_SSL", true),
		},
	}
	switch cfg.Backend {
	case BackendFS:
	case BackendS3:
		if cfg.S3.Endpoint == "" {
			return ArtifactConfig{}, fmt.Errorf("ARTIFACT_S3_ENDPOINT is required for the s3 backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return ArtifactConfig{}, fmt.Errorf("ARTIFACT_DATABASE_URL is required for the postgres backend")
		}
	default:
		return ArtifactConfig{}, fmt.Errorf("ARTIFACT_BACKEND: unknown backend %q", cfg.Backend)
	}
	return cfg, nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func envInt(key string, def int) (int, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	raw := env(key)
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func envBool(key string, def bool) bool {
	raw := env(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
