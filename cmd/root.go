/*
Copyright © 2024 Dean
*/
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qamentor",
	Short: "Retrieval-augmented QA mentor backend",
	Long: `qamentor answers QA engineering questions grounded in a PDF
knowledge base. It builds a vector index over the knowledge base and
serves a chat API that retrieves relevant passages before asking the
language model.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// .env is optional for local development
	_ = godotenv.Load()

	settingDefaultConfig()
}
