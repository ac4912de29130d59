package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/runner"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Quick generation test against the base model",
	RunE:  runDemo,
}

var (
	demoPrompt       string
	demoPrecision    string
	demoTemperature  float64
	demoTopK         int
	demoMaxNewTokens int
	demoBatchSize    int
	demoCompileModel bool
)

func init() {
	demoCmd.Flags().StringVar(&demoPrompt, "prompt", "", "prompt to generate from (required)")
	demoCmd.Flags().StringVar(&demoPrecision, "precision", "", "model precision (e.g. bf16, f32)")
	demoCmd.Flags().Float64Var(&demoTemperature, "temperature", 0, "sampling temperature")
	demoCmd.Flags().IntVar(&demoTopK, "top-k", 0, "top-k sampling cutoff")
	demoCmd.Flags().IntVar(&demoMaxNewTokens, "max-new-tokens", 0, "maximum tokens to generate")
	demoCmd.Flags().IntVar(&demoBatchSize, "batch-size", 0, "generation batch size")
	demoCmd.Flags().BoolVar(&demoCompileModel, "compile-model", false, "compile the model before generation")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	fmt.Println()

	tk, err := requireToolkit()
	if err != nil {
		return err
	}

	if demoPrompt == "" {
		return studioerrors.InputMissing("prompt")
	}

	opts := &generateOptions{
		Prompt:       demoPrompt,
		Precision:    demoPrecision,
		CompileModel: demoCompileModel,
	}
	if cmd.Flags().Changed("temperature") {
		opts.Temperature = &demoTemperature
	}
	if cmd.Flags().Changed("top-k") {
		opts.TopK = &demoTopK
	}
	if cmd.Flags().Changed("max-new-tokens") {
		opts.MaxNewTokens = &demoMaxNewTokens
	}
	if cmd.Flags().Changed("batch-size") {
		opts.BatchSize = &demoBatchSize
	}

	fmt.Println("Generating text with base model...")
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
