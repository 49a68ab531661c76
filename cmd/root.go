/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/casedocsearch/ingest-be/chunking"
	"github.com/casedocsearch/ingest-be/config"
	"github.com/casedocsearch/ingest-be/database"
	"github.com/casedocsearch/ingest-be/service"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ingest-be",
	Short: "Document ingestion backend for case correspondence search",
	Long: `ingest-be analyzes scanned case correspondence, segments the
recognized layout into text chunks, embeds them and indexes them for
semantic search.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

func loadConfig() (*config.Config, error) {
	return config.LoadConfig(cfgFile)
}

// buildPipeline wires the full ingestion pipeline from configuration. The
// chunk store and ingest service share the same UUID namespace so object
// ids stay stable across runs.
func buildPipeline(cfg *config.Config) (*service.IngestService, *database.ChunkStore, error) {
	namespace, err := uuid.Parse(cfg.UUIDNamespace)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid uuid namespace: %w", err)
	}

	store, err := database.NewChunkStore(cfg.Weaviate, namespace)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to weaviate: %w", err)
	}

	embedder, err := service.NewEmbedder(cfg.Embedding)
	if err != nil {
		return nil, nil, err
	}

	chunker := chunking.NewDocumentChunker(chunking.Config{
		MaximumChunkSize:   cfg.Chunking.MaximumChunkSize,
		YToleranceRatio:    cfg.Chunking.YToleranceRatio,
		MaxVerticalGap:     cfg.Chunking.MaxVerticalGap,
		LineChunkCharLimit: cfg.Chunking.LineChunkCharLimit,
		WordLimit:          cfg.Chunking.WordLimit,
	})

	analysis := service.NewAnalysisService(cfg.Analysis)

	ingest := service.NewIngestService(cfg.UploadDir, analysis, chunker, embedder, store, namespace)
	return ingest, store, nil
}
