/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/casedocsearch/ingest-be/service"
	"github.com/casedocsearch/ingest-be/types"
)

// ingestDocumentCmd represents the ingestDocument command
var ingestDocumentCmd = &cobra.Command{
	Use:   "ingest-document",
	Short: "Ingest a single document from disk",
	Long: `Runs the full ingestion pipeline on one file: layout analysis,
chunking, embedding and indexing. Pass --payload to reuse a previously
saved raw analysis result instead of calling the analysis service.`,
	Run: func(cmd *cobra.Command, args []string) {
		filePath, _ := cmd.Flags().GetString("file")
		payloadPath, _ := cmd.Flags().GetString("payload")
		caseRef, _ := cmd.Flags().GetString("case-ref")
		receivedDate, _ := cmd.Flags().GetString("received-date")
		correspondenceType, _ := cmd.Flags().GetString("correspondence-type")
		reinit, _ := cmd.Flags().GetBool("reinit")

		if filePath == "" {
			log.Fatal().Msg("--file is required")
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

		req := types.IngestRequest{
			SourceFileName:     filepath.Base(filePath),
			CaseRef:            caseRef,
			ReceivedDate:       receivedDate,
			CorrespondenceType: correspondenceType,
		}

		statusChan := make(chan types.IngestStatus)
		go func() {
			for status := range statusChan {
				log.Info().
					Str("stage", status.Stage).
					Str("message", status.Message).
					Int("chunks", status.ChunkCount).
					Msg("ingest progress")
			}
		}()

		var processed *types.ProcessedDocument
		if payloadPath != "" {
			payload, err := service.LoadPayloadFromFile(payloadPath)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to load analysis payload")
			}
			processed, err = ingestService.IngestPayload(context.Background(), payload, req, statusChan)
			if err != nil {
				log.Fatal().Err(err).Msg("ingestion failed")
			}
		} else {
			processed, err = ingestService.IngestFile(context.Background(), filePath, req, statusChan)
			if err != nil {
				log.Fatal().Err(err).Msg("ingestion failed")
			}
		}
		close(statusChan)

		log.Info().
			Str("document_id", processed.Metadata.DocumentID).
			Int("chunks", len(processed.Chunks)).
			Int("pages", len(processed.Pages)).
			Msg("document ingested")
	},
}

func init() {
	rootCmd.AddCommand(ingestDocumentCmd)

	ingestDocumentCmd.Flags().StringP("file", "f", "", "Path to the file to ingest")
	ingestDocumentCmd.Flags().String("payload", "", "Path to a saved raw analysis payload (skips the analysis service)")
	ingestDocumentCmd.Flags().String("case-ref", "", "Case reference the document belongs to")
	ingestDocumentCmd.Flags().String("received-date", "", "Date the document was received (ISO date)")
	ingestDocumentCmd.Flags().String("correspondence-type", "", "Correspondence type of the document")
	ingestDocumentCmd.Flags().BoolP("reinit", "r", false, "Reinitialize the search index first")
}
