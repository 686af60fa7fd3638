package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/marisol/atelier/internal/llm"
	"github.com/marisol/atelier/internal/settings"
)

var (
	setPrimary  string
	setFallback string
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect or change the active provider settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Print the active provider settings",
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update the active provider settings",
	RunE:  runSettingsSet,
}

func init() {
	settingsSetCmd.Flags().StringVar(&setPrimary, "primary", "", "Primary provider (chatgpt|gemini, required)")
	settingsSetCmd.Flags().StringVar(&setFallback, "fallback", "", "Fallback provider (chatgpt|gemini, empty to clear)")
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func settingsStore(ctx context.Context) (*settings.Store, *pgxpool.Pool, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return settings.NewStore(pool), pool, nil
}

func runSettingsGet(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	store, pool, err := settingsStore(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	current, err := store.Get(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Primary:  %s\n", current.PrimaryProvider)
	if current.FallbackProvider != "" {
		fmt.Printf("Fallback: %s\n", current.FallbackProvider)
	} else {
		fmt.Printf("Fallback: (none)\n")
	}
	return nil
}

func runSettingsSet(_ *cobra.Command, _ []string) error {
	if setPrimary == "" {
		return fmt.Errorf("--primary is required")
	}

	ctx := context.Background()
	store, pool, err := settingsStore(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	updated := &settings.Settings{
		PrimaryProvider:  llm.Provider(setPrimary),
		FallbackProvider: llm.Provider(setFallback),
	}
	if err := store.Update(ctx, updated); err != nil {
		return err
	}
	fmt.Printf("Provider settings updated: primary=%s fallback=%s\n", setPrimary, setFallback)
	return nil
}
