// Package main provides the entry point for the atelier AI orchestration service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "atelier_agent",
	Short: "Atelier AI orchestration service",
	Long:  "Atelier orchestrates AI artwork analysis for the gallery storefront: persona-aware prompts, provider selection with fallback, concurrent analysis jobs, and structured results for content creation.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
