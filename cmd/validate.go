package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/medbyte/medbyte/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate formatted content against its structural grammar",
	Long: "Checks a formatted document with the same deterministic validator the\n" +
		"pipeline uses, without calling any model. Reads stdin when no file is given.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		contentType, _ := cmd.Flags().GetString("type")
		ct, okType := validate.ParseContentType(contentType)
		if !okType {
			return fmt.Errorf("unknown content type: %s", contentType)
		}

		path := "-"
		if len(args) == 1 {
			path = args[0]
		}
		text, err := readInput(path)
		if err != nil {
			return err
		}

		ok, errs := validate.Content(text, ct)
		if ok {
			fmt.Println(styleSuccess.Render("Valid"), styleDim.Render(string(ct)))
			return nil
		}

		fmt.Fprintln(os.Stderr, styleError.Render(fmt.Sprintf("Invalid: %d error(s)", len(errs))))
		for _, e := range errs {
			fmt.Fprintln(os.Stderr, "  "+e.String())
		}
		return fmt.Errorf("validation failed")
	},
}

func init() {
	validateCmd.Flags().StringP("type", "t", "", "Content type: MCQ, NMCQ, or SUMMARY (required)")
	validateCmd.MarkFlagRequired("type")
}
