package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medbyte/medbyte/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent pipeline runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		runs, err := s.EventRepo().ListRuns(context.Background(), limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-8s  %-28s  %-3s  %-7s  %-4s  %s\n",
			"Run", "Timestamp", "Type", "Generator", "Qs", "Retries", "Errs", "OK")
		fmt.Println(strings.Repeat("─", 120))

		for _, r := range runs {
			ok := "✓"
			if !r.Success {
				ok = "✗"
			}
			model := r.GeneratorModel
			if len(model) > 28 {
				model = model[:28]
			}
			fmt.Printf("%-36s  %-19s  %-8s  %-28s  %-3d  %-7d  %-4d  %s\n",
				r.ID,
				r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				r.ContentType,
				model,
				r.NumQuestions,
				r.FormatterRetries,
				r.ValidationErrors,
				ok,
			)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
}
