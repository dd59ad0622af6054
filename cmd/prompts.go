package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/medbyte/medbyte/internal/prompts"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Inspect prompt templates",
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List template keys with content hashes",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := prompts.Dir{Path: resolvePromptsDir(cmd)}
		hashes := prompts.Hashes(context.Background(), dir)

		fmt.Println(styleHeading.Render("Prompt templates"), styleDim.Render("("+dir.Path+")"))
		for _, key := range prompts.Keys {
			status := hashes[key]
			if _, err := dir.Template(context.Background(), key); err != nil {
				status = styleError.Render("missing")
			}
			fmt.Printf("  %-20s %s\n", key, status)
		}
		return nil
	},
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a template's text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := prompts.Dir{Path: resolvePromptsDir(cmd)}
		text, err := dir.Template(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
}
