package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/runner"
)

const generateTimeout = 5 * time.Minute

// generateOptions is the flag surface shared by generate and demo.
// Pointer fields are only forwarded to the toolkit when set.
type generateOptions struct {
	Prompt          string
	Checkpoint      string
	DraftCheckpoint string
	Precision       string
	Temperature     *float64
	TopK            *int
	MaxNewTokens    *int
	BatchSize       *int
	CompileModel    bool
}

// args builds the examples.generate argument list.
func (o *generateOptions) args() []string {
	args := []string{"--prompt", o.Prompt}

	if o.Checkpoint != "" {
		args = append(args, "--checkpoint", o.Checkpoint)
	}
	if o.DraftCheckpoint != "" {
		args = append(args, "--draft-checkpoint", o.DraftCheckpoint)
	}
	if o.Precision != "" {
		args = append(args, "--precision", o.Precision)
	}
	if o.Temperature != nil {
		args = append(args, "--temperature", strconv.FormatFloat(*o.Temperature, 'g', -1, 64))
	}
	if o.TopK != nil {
		args = append(args, "--top-k", strconv.Itoa(*o.TopK))
	}
	if o.MaxNewTokens != nil {
		args = append(args, "--max-new-tokens", strconv.Itoa(*o.MaxNewTokens))
	}
	if o.BatchSize != nil {
		args = append(args, "--batch-size", strconv.Itoa(*o.BatchSize))
	}
	if o.CompileModel {
		args = append(args, "--compile-model")
	}

	return args
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate text with the base model or a trained adapter",
	RunE:  runGenerate,
}

var (
	genPrompt          string
	genCheckpoint      string
	genDraftCheckpoint string
	genPrecision       string
	genTemperature     float64
	genTopK            int
	genMaxNewTokens    int
	genBatchSize       int
	genCompileModel    bool
)

func init() {
	generateCmd.Flags().StringVar(&genPrompt, "prompt", "", "prompt to generate from (required)")
	generateCmd.Flags().StringVar(&genCheckpoint, "checkpoint", "", "trained adapter checkpoint")
	generateCmd.Flags().StringVar(&genDraftCheckpoint, "draft-checkpoint", "", "draft model checkpoint for speculative decoding")
	generateCmd.Flags().StringVar(&genPrecision, "precision", "", "model precision (e.g. bf16, f32)")
	generateCmd.Flags().Float64Var(&genTemperature, "temperature", 0, "sampling temperature")
	generateCmd.Flags().IntVar(&genTopK, "top-k", 0, "top-k sampling cutoff")
	generateCmd.Flags().IntVar(&genMaxNewTokens, "max-new-tokens", 0, "maximum tokens to generate")
	generateCmd.Flags().IntVar(&genBatchSize, "batch-size", 0, "generation batch size")
	generateCmd.Flags().BoolVar(&genCompileModel, "compile-model", false, "compile the model before generation")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	fmt.Println()

	tk, err := requireToolkit()
	if err != nil {
		return err
	}

	if genPrompt == "" {
		return studioerrors.InputMissing("prompt")
	}

	opts := &generateOptions{
		Prompt:       genPrompt,
		Precision:    genPrecision,
		CompileModel: genCompileModel,
	}
	if cmd.Flags().Changed("temperature") {
		opts.Temperature = &genTemperature
	}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = &genTopK
	}
	if cmd.Flags().Changed("max-new-tokens") {
		opts.MaxNewTokens = &genMaxNewTokens
	}
	if cmd.Flags().Changed("batch-size") {
		opts.BatchSize = &genBatchSize
	}

	if genCheckpoint != "" {
		opts.Checkpoint, err = statPath("checkpoint", genCheckpoint)
		if err != nil {
			return err
		}
	}
	if genDraftCheckpoint != "" {
		opts.DraftCheckpoint, err = statPath("draft checkpoint", genDraftCheckpoint)
		if err != nil {
			return err
		}
	}

	if opts.Checkpoint != "" {
		fmt.Println("Generating text with trained adapter...")
		fmt.Println()
		fmt.Printf("Prompt: %s\n", opts.Prompt)
		fmt.Printf("Adapter checkpoint: %s\n", opts.Checkpoint)
		if opts.DraftCheckpoint != "" {
			fmt.Printf("Draft checkpoint: %s\n", opts.DraftCheckpoint)
		}
	} else {
		fmt.Println("Generating text with base model...")
		fmt.Println()
		fmt.Printf("Prompt: %s\n", opts.Prompt)
	}
	fmt.Println()

	fmt.Println("Generating...")
	fmt.Println()

	ctx, cancel := notifyContext()
	defer cancel()

	code, err := runner.New(logger).Run(ctx, &runner.Invocation{
		Python:  tk.VenvPython(),
		Module:  "examples.generate",
		Args:    opts.args(),
		Dir:     tk.Path,
		Timeout: generateTimeout,
	})
	switch {
	case errors.Is(err, runner.ErrTimeout):
		fmt.Println("\nGeneration timed out (exceeded 5 minutes). Check model size or system resources.")
		return studioerrors.NewExitError(1)
	case errors.Is(err, runner.ErrInterrupted):
		fmt.Println("\nGeneration cancelled.")
		return studioerrors.NewExitError(1)
	case err != nil:
		return err
	case code != 0:
		return studioerrors.NewExitError(code)
	}
	return nil
}
