package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/medbyte/medbyte/internal/llm"
	"github.com/medbyte/medbyte/internal/models"
	"github.com/medbyte/medbyte/internal/pipeline"
	"github.com/medbyte/medbyte/internal/prompts"
	"github.com/medbyte/medbyte/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate study content from source material",
	Long: "Runs the full pipeline: a generator model drafts content from the\n" +
		"input text, a formatter model restructures it, and the structural\n" +
		"validator accepts or rejects the result (with one formatting retry).",
	RunE: runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringP("type", "t", "", "Content type: MCQ, NMCQ, or SUMMARY (required)")
	f.StringP("model", "m", "", "Generator model id (required)")
	f.StringP("input", "i", "-", "Input file path, or '-' for stdin")
	f.IntP("count", "n", 5, "Number of questions/blocks to generate")
	f.String("focus", "", "Focus areas to steer generation toward")
	f.Float64("generator-temperature", 0, "Generator sampling temperature [0,1]")
	f.Float64("generator-top-p", 0, "Generator nucleus sampling [0,1]")
	f.Float64("formatter-temperature", 0, "Formatter sampling temperature [0,1]")
	f.Float64("formatter-top-p", 0, "Formatter nucleus sampling [0,1]")
	f.String("formatter-model", "", "Override the formatter model id")
	f.Int("max-retries", 1, "Max formatter retries after failed validation")
	f.Bool("stream", false, "Stream model tokens to stderr as they arrive")
	f.Bool("json", false, "Emit the full result as JSON on stdout")
	f.StringP("out", "o", "", "Write accepted output to a file instead of stdout")
	f.String("role", "editor", "User role for model restrictions (admin bypasses them)")
	f.String("restrictions", "", "Path to the model restrictions YAML file")

	generateCmd.MarkFlagRequired("type")
	generateCmd.MarkFlagRequired("model")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	req, err := requestFromFlags(cmd)
	if err != nil {
		return err
	}

	role, _ := cmd.Flags().GetString("role")
	restrictionsPath, _ := cmd.Flags().GetString("restrictions")
	if restrictionsPath != "" {
		restrictions, err := models.LoadRestrictions(restrictionsPath)
		if err != nil {
			return err
		}
		if !restrictions.IsAllowed(req.GeneratorModel, role) {
			return fmt.Errorf("model %q is not allowed for role %q", req.GeneratorModel, role)
		}
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()
	repo := s.EventRepo()

	cfg := pipeline.DefaultConfig()
	if n, _ := cmd.Flags().GetInt("max-retries"); cmd.Flags().Changed("max-retries") {
		cfg.MaxFormatterRetries = n
	}
	if m, _ := cmd.Flags().GetString("formatter-model"); m != "" {
		cfg.FormatterModel = m
	}

	runner := pipeline.New(pipeline.Options{
		Models:  llm.NewRegistry(llm.ConfigFromEnv(), repo),
		Prompts: prompts.Dir{Path: resolvePromptsDir(cmd)},
		Events:  repo,
		Logger:  slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
		Config:  cfg,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stream, _ := cmd.Flags().GetBool("stream")
	var result *pipeline.Result
	if stream {
		events, err := runner.RunStream(ctx, req)
		if err != nil {
			return err
		}
		for ev := range events {
			switch ev.Kind {
			case pipeline.EventStage:
				fmt.Fprintln(os.Stderr, styleDim.Render("["+ev.Stage+"]"))
			case pipeline.EventToken:
				fmt.Fprint(os.Stderr, ev.Token)
			case pipeline.EventResult:
				result = ev.Result
			}
		}
		fmt.Fprintln(os.Stderr)
		if result == nil {
			return fmt.Errorf("stream ended without a result")
		}
	} else {
		result, err = runner.Run(ctx, req)
		if err != nil {
			return err
		}
	}

	return emitResult(cmd, result)
}

func requestFromFlags(cmd *cobra.Command) (pipeline.Request, error) {
	f := cmd.Flags()
	contentType, _ := f.GetString("type")
	model, _ := f.GetString("model")
	inputPath, _ := f.GetString("input")
	count, _ := f.GetInt("count")
	focus, _ := f.GetString("focus")

	text, err := readInput(inputPath)
	if err != nil {
		return pipeline.Request{}, err
	}

	req := pipeline.Request{
		ContentType:    contentType,
		GeneratorModel: model,
		InputText:      text,
		NumQuestions:   count,
		FocusAreas:     focus,
	}

	// Sampling flags only count when explicitly set; zero is a valid
	// temperature, so flag presence is the signal, not the value.
	samplers := []struct {
		name string
		dst  **float64
	}{
		{"generator-temperature", &req.GeneratorTemperature},
		{"generator-top-p", &req.GeneratorTopP},
		{"formatter-temperature", &req.FormatterTemperature},
		{"formatter-top-p", &req.FormatterTopP},
	}
	for _, s := range samplers {
		if f.Changed(s.name) {
			v, _ := f.GetFloat64(s.name)
			*s.dst = llm.Float(v)
		}
	}
	return req, nil
}

func readInput(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

func emitResult(cmd *cobra.Command, result *pipeline.Result) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	outPath, _ := cmd.Flags().GetString("out")

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if !result.Success {
			return fmt.Errorf("generation failed")
		}
		return nil
	}

	if !result.Success {
		fmt.Fprintln(os.Stderr, styleError.Render("Generation failed"))
		if result.Error != "" {
			fmt.Fprintln(os.Stderr, "  "+result.Error)
		}
		for _, ve := range result.ValidationErrors {
			fmt.Fprintln(os.Stderr, "  "+ve.String())
		}
		if result.PartialOutput != nil {
			fmt.Fprintln(os.Stderr, styleDim.Render("Partial output retained; rerun with --json to inspect it."))
		}
		return fmt.Errorf("generation failed")
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(*result.Output), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintln(os.Stderr, styleSuccess.Render("Done"),
			styleDim.Render(fmt.Sprintf("(%s, %d retries, %.1fs) → %s",
				result.Metadata.GeneratorModel, result.Metadata.FormatterRetries,
				result.Metadata.TotalTime, outPath)))
		return nil
	}

	fmt.Print(*result.Output)
	fmt.Fprintln(os.Stderr, styleSuccess.Render("Done"),
		styleDim.Render(fmt.Sprintf("(%s, %d retries, %.1fs)",
			result.Metadata.GeneratorModel, result.Metadata.FormatterRetries,
			result.Metadata.TotalTime)))
	return nil
}
