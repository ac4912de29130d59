package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/runner"
)

const (
	venvTimeout = 5 * time.Minute
	pipTimeout  = 30 * time.Minute
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the toolkit's Python environment",
	Long: `Create a virtual environment inside the toolkit and install its
requirements. Run after 'adapter-studio init'.`,
	RunE: runSetup,
}

var setupPython string

func init() {
	setupCmd.Flags().StringVar(&setupPython, "python", "python3", "python interpreter used to create the venv")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println()

	tk, err := requireConfigured()
	if err != nil {
		return err
	}

	if _, err := os.Stat(tk.RequirementsFile()); err != nil {
		return studioerrors.InputNotFound("requirements.txt", tk.RequirementsFile())
	}

	fmt.Printf("Toolkit: %s\n", tk.Path)
	fmt.Printf("Virtual environment: %s\n\n", tk.VenvDir())

	run := runner.New(logger)
	ctx, cancel := notifyContext()
	defer cancel()

	fmt.Println("Creating Python virtual environment...")
	code, err := run.Run(ctx, &runner.Invocation{
		Python:  setupPython,
		Module:  "venv",
		Args:    []string{tk.VenvDir()},
		Dir:     tk.Path,
		Timeout: venvTimeout,
	})
	if err != nil {
		return studioerrors.Wrap(studioerrors.CodeRunStartError, "creating virtual environment", err)
	}
	if code != 0 {
		fmt.Println("  Error: Failed to create venv")
		return studioerrors.NewExitError(code)
	}
	fmt.Println("  Virtual environment created.")
	fmt.Println()

	fmt.Println("Installing dependencies...")
	code, err = run.Run(ctx, &runner.Invocation{
		Python:  tk.VenvPython(),
		Module:  "pip",
		Args:    []string{"install", "-r", tk.RequirementsFile()},
		Dir:     tk.Path,
		Timeout: pipTimeout,
	})
	if err != nil {
		return studioerrors.Wrap(studioerrors.CodeRunStartError, "installing dependencies", err)
	}
	if code != 0 {
		fmt.Println("  Error: Failed to install dependencies")
		return studioerrors.NewExitError(code)
	}
	fmt.Println("  Dependencies installed.")
	fmt.Println()

	fmt.Println("Validating installation...")
	check := exec.CommandContext(ctx, tk.VenvPython(), "-c", "import torch; import tamm; import sentencepiece")
	if err := check.Run(); err != nil {
		fmt.Println("  Warning: Some packages may not be installed correctly")
	} else {
		fmt.Println("  All packages validated.")
	}
	fmt.Println()

	fmt.Println("Setup complete!")
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  1. Prepare your training dataset (JSONL format)")
	fmt.Println("  2. Run: adapter-studio generate --prompt 'Test prompt'")
	fmt.Println("  3. Train an adapter with: adapter-studio train-adapter --help")
	fmt.Println()
	fmt.Println("To activate venv manually:")
	fmt.Printf("  source %s/bin/activate\n", tk.VenvDir())

	return nil
}
