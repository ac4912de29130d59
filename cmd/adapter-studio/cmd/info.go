package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adapter-studio/adapter-studio/internal/config"
	"github.com/adapter-studio/adapter-studio/internal/toolkit"
	"github.com/adapter-studio/adapter-studio/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show configuration and toolkit status",
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	fmt.Println()
	fmt.Println(ui.Rule(50))

	configPath, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Printf("Config file: %s\n", configPath)

	path, ok := config.ToolkitPath()
	if !ok {
		fmt.Println("Toolkit: not configured")
		fmt.Println()
		fmt.Println("Run 'adapter-studio init' to configure the toolkit.")
		return nil
	}
	fmt.Printf("Toolkit: %s\n", path)

	tk := toolkit.New(path)

	if valid, problems := toolkit.Validate(path); valid {
		fmt.Println("Structure: valid")
	} else {
		fmt.Println("Structure: INVALID")
		printProblems(problems)
	}

	if tk.HasVenv() {
		fmt.Printf("Virtual environment: %s\n", tk.VenvDir())
	} else {
		fmt.Println("Virtual environment: not set up (run 'adapter-studio setup')")
	}

	// Checkpoint spec metadata is informational; a missing or malformed
	// file is not an error here.
	if spec, err := tk.ReadCheckpointSpec(); err == nil {
		fmt.Println()
		fmt.Printf("Base model: %s %s\n", spec.Model.Name, spec.Model.Version)
		if spec.Precision != "" {
			fmt.Printf("Precision: %s\n", spec.Precision)
		}
		if spec.Rank > 0 {
			fmt.Printf("Adapter rank: %d\n", spec.Rank)
		}
	} else {
		logger.Debug("checkpoint spec unavailable", "err", err)
	}

	fmt.Println(ui.Rule(50))
	return nil
}
