package cmd

import (
	"os"

	"github.com/medbyte/medbyte/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "medbyte",
	Short: "Generate validated medical study content with LLMs",
	Long: "Medbyte turns source material into board-style MCQs, clinical vignettes,\n" +
		"and summary blocks using a two-stage generate/format pipeline with\n" +
		"deterministic structural validation.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite event database (overrides MEDBYTE_DB env var)")
	rootCmd.PersistentFlags().String("prompts", "", "Path to prompt template directory (overrides MEDBYTE_PROMPTS env var)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then MEDBYTE_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if p := os.Getenv("MEDBYTE_DB"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// resolvePromptsDir returns the template directory using --prompts, then
// MEDBYTE_PROMPTS, then ./prompts.
func resolvePromptsDir(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("prompts"); p != "" {
		return p
	}
	if p := os.Getenv("MEDBYTE_PROMPTS"); p != "" {
		return p
	}
	return "prompts"
}
