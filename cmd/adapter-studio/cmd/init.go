package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/adapter-studio/adapter-studio/internal/cli"
	"github.com/adapter-studio/adapter-studio/internal/config"
	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/toolkit"
)

const toolkitDownloadURL = "https://developer.apple.com/machine-learning/foundation-models/"

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Configure the toolkit location (run this first)",
	Long: `Configure where the adapter training toolkit lives.

Without flags this is interactive: common install locations are searched
for a valid toolkit, and you can accept the discovered path or type one
in. With --path the given directory is validated and saved directly.`,
	RunE: runInit,
}

var (
	initPath  string
	initForce bool
)

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "", "toolkit path to validate and save (non-interactive)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "replace an existing configuration without asking")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	// Non-interactive path: validate and save.
	if initPath != "" {
		normalized, err := config.NormalizePath(initPath)
		if err != nil {
			return err
		}
		if ok, problems := toolkit.Validate(normalized); !ok {
			printProblems(problems)
			return studioerrors.ToolkitInvalid(normalized, problems)
		}
		return saveAndConfirm(normalized)
	}

	fmt.Println()

	if existing, ok := config.ToolkitPath(); ok && !initForce {
		fmt.Println("Toolkit already configured at:")
		fmt.Printf("  %s\n\n", existing)
		change, err := cli.Confirm("Do you want to change it?", false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println("\nSetup cancelled.")
				return nil
			}
			return err
		}
		if !change {
			fmt.Println("Keeping existing configuration.")
			return nil
		}
	}

	fmt.Println("Searching for toolkit in common locations...")
	fmt.Println()

	finder := toolkit.NewFinder(settings.Discovery.ExtraRoots)
	if found, ok := finder.Find(); ok {
		fmt.Printf("Found toolkit at: %s\n\n", found)
		use, err := cli.Confirm("Use this toolkit?", true)
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println("\nSetup cancelled.")
				return nil
			}
			return err
		}
		if use {
			return saveAndConfirm(found)
		}
		fmt.Println()
	} else {
		fmt.Println("No toolkit found in common locations.")
		fmt.Println("(Searched: ~/Downloads/, ~/adapter-toolkit, /opt/adapter-toolkit)")
		fmt.Println()
	}

	fmt.Println("This tool requires the Apple Foundation Models Adapter Training Toolkit.")
	fmt.Printf("Download it from: %s\n\n", toolkitDownloadURL)

	for {
		input, err := cli.Ask("Enter path to toolkit")
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println("\nSetup cancelled.")
				return nil
			}
			return err
		}

		if input == "" {
			fmt.Println("Error: Path cannot be empty.")
			fmt.Println()
			continue
		}

		normalized, err := config.NormalizePath(input)
		if err != nil {
			fmt.Printf("Error: Invalid path: %v\n", err)
			fmt.Println("   Tip: Use absolute paths or ~/path (e.g., ~/Downloads/adapter_toolkit)")
			fmt.Println()
			continue
		}

		if ok, problems := toolkit.Validate(normalized); !ok {
			fmt.Println("\nError: Toolkit validation failed:")
			printProblems(problems)
			fmt.Println("\nPlease check the path and try again.")
			fmt.Println()
			continue
		}

		return saveAndConfirm(normalized)
	}
}

func printProblems(problems []string) {
	for _, p := range problems {
		fmt.Printf("   - %s\n", p)
	}
}

func saveAndConfirm(path string) error {
	fmt.Println("\nValidating toolkit structure...")
	fmt.Println("  Found examples/")
	fmt.Println("  Found assets/")
	fmt.Println("  Found export/")
	fmt.Println("  Found requirements.txt")
	fmt.Println("  All files present!")
	fmt.Println()

	if err := config.SetToolkitPath(path); err != nil {
		return studioerrors.Wrap(studioerrors.CodeConfigWriteError, "saving toolkit path", err)
	}

	logger.Debug("toolkit configured", "path", path)

	fmt.Println("Config saved to: ~/.adapter-studio/config.json")
	fmt.Println("Ready to go!")
	fmt.Println()
	fmt.Println("Try: adapter-studio generate --help")
	return nil
}
