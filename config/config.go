package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port      string          `mapstructure:"port"`
	UploadDir string          `mapstructure:"upload_dir"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Weaviate  WeaviateConfig  `mapstructure:"weaviate"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Chunking  ChunkingConfig  `mapstructure:"chunking"`
	// UUIDNamespace is the fixed namespace UUID used for deterministic
	// document and chunk identifiers.
	UUIDNamespace string `mapstructure:"uuid_namespace"`
}

// AnalysisConfig points at the document analysis service and controls the
// submit/poll loop.
type AnalysisConfig struct {
	Endpoint            string `mapstructure:"endpoint"`
	APIKey              string `mapstructure:"ANALYSIS_API_KEY"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds"`
	JobTimeoutSeconds   int    `mapstructure:"job_timeout_seconds"`
}

type WeaviateConfig struct {
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider      string   `mapstructure:"provider"` // "openai" or "gemini"
	BaseURL       string   `mapstructure:"base_url"`
	APIKey        string   `mapstructure:"OPENAI_API_KEY"`
	Model         string   `mapstructure:"model"`
	GeminiAPIKeys []string `mapstructure:"gemini_api_keys"`
	GeminiModel   string   `mapstructure:"gemini_model"`
}

// ChunkingConfig carries the chunking engine's tuning values.
type ChunkingConfig struct {
	MaximumChunkSize   int     `mapstructure:"maximum_chunk_size"`
	YToleranceRatio    float64 `mapstructure:"y_tolerance_ratio"`
	MaxVerticalGap     float64 `mapstructure:"max_vertical_gap"`
	LineChunkCharLimit int     `mapstructure:"line_chunk_char_limit"`
	WordLimit          int     `mapstructure:"word_limit"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Environment variables override file values for secrets.
	v.AutomaticEnv()
	v.BindEnv("analysis.ANALYSIS_API_KEY", "ANALYSIS_API_KEY")
	v.BindEnv("weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")
	v.BindEnv("embedding.OPENAI_API_KEY", "OPENAI_API_KEY")

	v.SetDefault("port", "8080")
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("analysis.poll_interval_seconds", 5)
	v.SetDefault("analysis.job_timeout_seconds", 600)
	v.SetDefault("embedding.provider", "openai")
	v.SetDefault("chunking.maximum_chunk_size", 80)
	v.SetDefault("chunking.y_tolerance_ratio", 0.5)
	v.SetDefault("chunking.max_vertical_gap", 0.5)
	v.SetDefault("chunking.line_chunk_char_limit", 300)
	v.SetDefault("chunking.word_limit", 80)
	v.SetDefault("uuid_namespace", "f0e1c2d3-4567-89ab-cdef-fedcba987654")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
