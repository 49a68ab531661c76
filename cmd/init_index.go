/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/casedocsearch/ingest-be/database"
)

// initIndexCmd represents the initIndex command
var initIndexCmd = &cobra.Command{
	Use:   "init-index",
	Short: "Drop and recreate the search index schema",
	Long:  `Deletes the chunk class from the search index and recreates it empty. All indexed chunks are lost.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}

		namespace, err := uuid.Parse(cfg.UUIDNamespace)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid uuid namespace")
		}

		store, err := database.NewChunkStore(cfg.Weaviate, namespace)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to weaviate")
		}

		if err := store.ReInit(); err != nil {
			log.Fatal().Err(err).Msg("failed to reinitialize the search index")
		}
		log.Info().Msg("search index reinitialized")
	},
}

func init() {
	rootCmd.AddCommand(initIndexCmd)
}
