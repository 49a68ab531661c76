package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
port: "9090"
upload_dir: "/tmp/uploads"
analysis:
  endpoint: "http://analysis:8000"
  poll_interval_seconds: 2
weaviate:
  host: "http://weaviate:8080"
embedding:
  provider: "openai"
  model: "text-embedding-3-small"
chunking:
  maximum_chunk_size: 120
  word_limit: 90
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Analysis.Endpoint != "http://analysis:8000" {
		t.Errorf("Analysis.Endpoint = %q", cfg.Analysis.Endpoint)
	}
	if cfg.Analysis.PollIntervalSeconds != 2 {
		t.Errorf("PollIntervalSeconds = %d", cfg.Analysis.PollIntervalSeconds)
	}
	if cfg.Chunking.MaximumChunkSize != 120 {
		t.Errorf("MaximumChunkSize = %d", cfg.Chunking.MaximumChunkSize)
	}
	if cfg.Chunking.WordLimit != 90 {
		t.Errorf("WordLimit = %d", cfg.Chunking.WordLimit)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
weaviate:
  host: "http://weaviate:8080"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Port != "8080" {
		t.Errorf("default Port = %q", cfg.Port)
	}
	if cfg.Analysis.PollIntervalSeconds != 5 || cfg.Analysis.JobTimeoutSeconds != 600 {
		t.Errorf("default analysis poll settings = %d/%d", cfg.Analysis.PollIntervalSeconds, cfg.Analysis.JobTimeoutSeconds)
	}
	if cfg.Chunking.MaximumChunkSize != 80 {
		t.Errorf("default MaximumChunkSize = %d", cfg.Chunking.MaximumChunkSize)
	}
	if cfg.Chunking.YToleranceRatio != 0.5 || cfg.Chunking.MaxVerticalGap != 0.5 {
		t.Errorf("default tolerances = %v/%v", cfg.Chunking.YToleranceRatio, cfg.Chunking.MaxVerticalGap)
	}
	if cfg.Chunking.LineChunkCharLimit != 300 || cfg.Chunking.WordLimit != 80 {
		t.Errorf("default limits = %d/%d", cfg.Chunking.LineChunkCharLimit, cfg.Chunking.WordLimit)
	}
	if cfg.UUIDNamespace == "" {
		t.Error("default UUIDNamespace must not be empty")
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("default embedding provider = %q", cfg.Embedding.Provider)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
