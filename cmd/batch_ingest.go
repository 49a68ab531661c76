/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/casedocsearch/ingest-be/service"
	"github.com/casedocsearch/ingest-be/types"
)

// batchIngestCmd represents the batchIngest command
var batchIngestCmd = &cobra.Command{
	Use:   "batch-ingest",
	Short: "Ingest every supported document in a directory",
	Long: `Runs the ingestion pipeline on each supported file in the given
directory. Files that fail are logged and skipped so one bad document
does not abort the batch.`,
	Run: func(cmd *cobra.Command, args []string) {
		directory, _ := cmd.Flags().GetString("directory")
		caseRef, _ := cmd.Flags().GetString("case-ref")
		receivedDate, _ := cmd.Flags().GetString("received-date")
		correspondenceType, _ := cmd.Flags().GetString("correspondence-type")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if directory == "" {
			log.Fatal().Msg("--directory is required")
		}

		cfg, err := loadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		ingestService, store, err := buildPipeline(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build ingestion pipeline")
		}
		if reinit {
			if err := store.ReInit(); err != nil {
				log.Fatal().Err(err).Msg("failed to reinitialize the search index")
			}
		}

		files, err := os.ReadDir(directory)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to read directory")
		}

		ingested := 0
		for _, file := range files {
			if file.IsDir() {
				continue
			}

			filePath := filepath.Join(directory, file.Name())
			req := types.IngestRequest{
				SourceFileName:     file.Name(),
				CaseRef:            caseRef,
				ReceivedDate:       receivedDate,
				CorrespondenceType: correspondenceType,
			}

			if err := ingestOne(ingestService, filePath, req); err != nil {
				log.Error().Err(err).Str("file", filePath).Msg("failed to ingest document")
				continue
			}
			ingested++
		}

		log.Info().Int("ingested", ingested).Msg("batch complete")
	},
}

func init() {
	rootCmd.AddCommand(batchIngestCmd)

	batchIngestCmd.Flags().String("directory", "", "Path to the directory to ingest")
	batchIngestCmd.Flags().String("case-ref", "", "Case reference the documents belong to")
	batchIngestCmd.Flags().String("received-date", "", "Date the documents were received (ISO date)")
	batchIngestCmd.Flags().String("correspondence-type", "", "Correspondence type of the documents")
	batchIngestCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the search index first")
}

func ingestOne(ingestService *service.IngestService, filePath string, req types.IngestRequest) error {
	statusChan := make(chan types.IngestStatus)
	defer close(statusChan)

	go func() {
		for status := range statusChan {
			log.Info().
				Str("file", req.SourceFileName).
				Str("stage", status.Stage).
				Msg("ingest progress")
		}
	}()

	_, err := ingestService.IngestFile(context.Background(), filePath, req, statusChan)
	return err
}
