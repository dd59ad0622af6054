package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medbyte/medbyte/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List generator models available to a role",
	RunE: func(cmd *cobra.Command, args []string) error {
		role, _ := cmd.Flags().GetString("role")
		restrictionsPath, _ := cmd.Flags().GetString("restrictions")
		all, _ := cmd.Flags().GetBool("all")

		var restrictions models.Restrictions
		if restrictionsPath != "" {
			var err error
			restrictions, err = models.LoadRestrictions(restrictionsPath)
			if err != nil {
				return err
			}
		}

		hasKey := func(envVar string) bool { return os.Getenv(envVar) != "" }
		if all {
			hasKey = nil
		}

		available := restrictions.Available(role, hasKey)
		if len(available) == 0 {
			fmt.Println("No models available. Set ANTHROPIC_API_KEY or GOOGLE_API_KEY, or pass --all.")
			return nil
		}

		category := ""
		for _, m := range available {
			if m.Category != category {
				category = m.Category
				fmt.Println(styleHeading.Render(category))
			}
			marker := styleSuccess.Render("•")
			if hasKey != nil && !hasKey(m.RequiresKey) {
				marker = styleDim.Render("•")
			}
			fmt.Printf("  %s %-28s %s\n", marker, m.ID, styleDim.Render(m.DisplayName))
		}
		return nil
	},
}

func init() {
	modelsCmd.Flags().String("role", "editor", "User role for model restrictions (admin bypasses them)")
	modelsCmd.Flags().String("restrictions", "", "Path to the model restrictions YAML file")
	modelsCmd.Flags().Bool("all", false, "List the full catalog regardless of configured API keys")
}
