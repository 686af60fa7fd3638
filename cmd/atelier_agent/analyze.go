package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marisol/atelier/internal/analysis"
	"github.com/marisol/atelier/internal/artifact"
	"github.com/marisol/atelier/internal/config"
	"github.com/marisol/atelier/internal/gateway"
	"github.com/marisol/atelier/internal/llm"
	"github.com/marisol/atelier/internal/logging"
	"github.com/marisol/atelier/internal/persona"
	"github.com/marisol/atelier/internal/settings"
	"github.com/marisol/atelier/internal/types"
)

var (
	analyzeRef      string
	analyzeTitle    string
	analyzeMedium   string
	analyzeText     string
	analyzeTextFile string
	analyzeBioHTML  string
	analyzeTasks    []string
	analyzeRole     string
	analyzePrimary  string
	analyzeFallback string
	analyzeJSON     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a one-shot artwork analysis",
	Long:  "Analyze a single artifact from the command line: build persona-framed prompts per task, call the configured provider with fallback, and print the normalized results.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRef, "ref", "", "Artifact reference (required)")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "Artwork title")
	analyzeCmd.Flags().StringVar(&analyzeMedium, "medium", "", "Artwork medium")
	analyzeCmd.Flags().StringVar(&analyzeText, "text", "", "Source text describing the artifact")
	analyzeCmd.Flags().StringVar(&analyzeTextFile, "text-file", "", "Path to a file with the source text")
	analyzeCmd.Flags().StringVar(&analyzeBioHTML, "bio-html", "", "Path to an HTML bio page to extract text from")
	analyzeCmd.Flags().StringSliceVar(&analyzeTasks, "tasks", nil, "Task types to run (default: all)")
	analyzeCmd.Flags().StringVar(&analyzeRole, "role", "", "Viewer role for persona resolution")
	analyzeCmd.Flags().StringVar(&analyzePrimary, "provider", "gemini", "Primary provider (chatgpt|gemini)")
	analyzeCmd.Flags().StringVar(&analyzeFallback, "fallback", "", "Fallback provider (chatgpt|gemini)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw outcome as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// staticSettings satisfies settings.Reader without a database, so one-shot
// runs can pick providers from flags.
type staticSettings struct {
	s settings.Settings
}

func (r staticSettings) Get(context.Context) (*settings.Settings, error) {
	out := r.s
	return &out, nil
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	if analyzeRef == "" {
		return fmt.Errorf("--ref is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	descriptor, err := buildDescriptor()
	if err != nil {
		return err
	}

	static := settings.Settings{
		PrimaryProvider:  llm.Provider(analyzePrimary),
		FallbackProvider: llm.Provider(analyzeFallback),
	}
	if err := static.Validate(); err != nil {
		return err
	}

	tasks := types.AllTasks()
	if len(analyzeTasks) > 0 {
		tasks = tasks[:0]
		for _, t := range analyzeTasks {
			tasks = append(tasks, types.TaskType(strings.TrimSpace(t)))
		}
	}

	pers := persona.Resolve(types.Role(analyzeRole))
	fmt.Printf("Analyzing %s as %s (%d tasks)...\n", descriptor.Ref, pers.Name, len(tasks))

	registry := gateway.NewRegistry(llm.Credentials{
		GeminiAPIKey: cfg.GeminiAPIKey,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	})
	defer registry.Close()

	gw := gateway.New(staticSettings{s: static}, registry, cfg.GenerationTimeout, logging.NewNop())
	pipeline := analysis.New(gw, logging.NewNop())

	outcome, err := pipeline.Run(context.Background(), descriptor, tasks, pers)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		jsonBytes, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal outcome: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	printOutcome(outcome)
	return nil
}

// buildDescriptor assembles the artifact descriptor from the text flags, in
// precedence order: --text, --text-file, --bio-html.
func buildDescriptor() (*artifact.Descriptor, error) {
	if analyzeBioHTML != "" {
		htmlContent, err := os.ReadFile(analyzeBioHTML)
		if err != nil {
			return nil, fmt.Errorf("failed to read bio HTML: %w", err)
		}
		return artifact.FromBioHTML(analyzeRef, uuid.Nil, string(htmlContent))
	}

	text := analyzeText
	if text == "" && analyzeTextFile != "" {
		data, err := os.ReadFile(analyzeTextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(data)
	}
	if text == "" {
		return nil, fmt.Errorf("one of --text, --text-file, or --bio-html is required")
	}

	return &artifact.Descriptor{
		Ref:    analyzeRef,
		Kind:   artifact.KindArtwork,
		Title:  analyzeTitle,
		Medium: analyzeMedium,
		Text:   text,
	}, nil
}

func printOutcome(outcome *analysis.Outcome) {
	fmt.Printf("Verdict: %s\n", outcome.Verdict)
	if outcome.AggregateConfidence != nil {
		fmt.Printf("Confidence: %.2f\n", *outcome.AggregateConfidence)
	}
	for task, result := range outcome.Results {
		fmt.Printf("\n[%s]", task)
		if !result.Succeeded {
			fmt.Printf(" FAILED (%s)\n  %s\n", result.ErrorKind, result.ErrorDetail)
			continue
		}
		if result.FallbackUsed {
			fmt.Printf(" via %s (fallback)", result.ProviderUsed)
		} else {
			fmt.Printf(" via %s", result.ProviderUsed)
		}
		fmt.Printf(" conf=%.2f\n", result.Confidence)
		if len(result.Tags) > 0 {
			fmt.Printf("  %s\n", strings.Join(result.Tags, ", "))
		} else {
			fmt.Printf("  %s\n", result.Text)
		}
	}
}
