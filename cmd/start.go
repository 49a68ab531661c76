/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/casedocsearch/ingest-be/handler"
	"github.com/casedocsearch/ingest-be/service"
)

// startServerCmd represents the startServer command
var startServerCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ingestion server",
	Long:  `Starts a server that accepts document uploads, ingests them and serves chunk search queries.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		ingestService, store, err := buildPipeline(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build ingestion pipeline")
		}

		wsService := service.NewWebSocketService()

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		ingestHandler := handler.NewIngestHandler(ingestService, wsService)
		searchHandler := handler.NewSearchHandler(store, ingestService)

		// Setup routes
		mux := http.NewServeMux()
		mux.HandleFunc("/api/v1/documents/ingest", ingestHandler.IngestDocumentHandler)
		mux.Handle("/api/v1/documents/search", searchHandler.HandleSearch())
		mux.HandleFunc("/ws/status", wsService.HandleStatus)
		mux.Handle("/health", wsService.Health())

		log.Info().Str("port", cfg.Port).Msg("starting server")
		if err := http.ListenAndServe(":"+cfg.Port, corsHandler.CorsMiddleware(mux)); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	},
}

func init() {
	rootCmd.AddCommand(startServerCmd)
}
