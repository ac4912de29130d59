// Package cmd implements the adapter-studio command tree.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/adapter-studio/adapter-studio/internal/config"
	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/logging"
	"github.com/adapter-studio/adapter-studio/internal/toolkit"
	"github.com/adapter-studio/adapter-studio/internal/ui"
)

var (
	// Version is set at build time via ldflags
	Version = "dev"

	// settings and logger are initialized before any command runs.
	settings *config.Settings
	logger   *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "adapter-studio",
	Short: "Adapter Studio - command-line front end for the adapter training toolkit",
	Long: `Adapter Studio wraps the Apple Foundation Models Adapter Training
Toolkit: it locates the toolkit on disk, sets up its Python environment,
and drives its generate, train, and export scripts.

Run 'adapter-studio init' first to configure the toolkit location.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		// No subcommand: banner plus interactive menu on a terminal,
		// plain help everywhere else.
		fmt.Println(ui.Banner())

		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			_ = cmd.Help()
			return
		}

		choice, err := ui.RunMenu(ui.DefaultEntries())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return
		}
		if choice == nil || choice.Command == "" {
			fmt.Println("Goodbye!")
			return
		}
		fmt.Printf("Run: %s\n", choice.Command)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("adapter-studio {{.Version}}\n")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		settings, err = config.LoadSettings()
		if err != nil {
			return err
		}
		if err := settings.Validate(); err != nil {
			return fmt.Errorf("invalid settings.toml: %w", err)
		}
		logger = logging.NewFromSettings(settings)
		return nil
	}
}

// requireConfigured returns a handle on the configured toolkit, without
// requiring its virtual environment (init and setup run before it exists).
func requireConfigured() (*toolkit.Toolkit, error) {
	path, ok := config.ToolkitPath()
	if !ok {
		return nil, studioerrors.NotConfigured()
	}
	return toolkit.New(path), nil
}

// requireToolkit returns the configured toolkit and verifies its virtual
// environment exists. Every dispatch to a toolkit script starts here.
func requireToolkit() (*toolkit.Toolkit, error) {
	tk, err := requireConfigured()
	if err != nil {
		return nil, err
	}
	if !tk.HasVenv() {
		return nil, studioerrors.VenvMissing()
	}
	return tk, nil
}

// notifyContext returns a context cancelled by SIGINT/SIGTERM so a ^C
// tears the child process down before the studio exits.
func notifyContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// statPath verifies a flag-referenced path exists, returning the
// normalized form.
func statPath(what, path string) (string, error) {
	normalized, err := config.NormalizePath(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(normalized); err != nil {
		return "", studioerrors.InputNotFound(what, normalized)
	}
	return normalized, nil
}

// statReadableFile verifies a flag-referenced path is a readable regular
// file, returning the normalized form.
func statReadableFile(what, path string) (string, error) {
	normalized, err := config.NormalizePath(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(normalized)
	if err != nil {
		return "", studioerrors.InputNotFound(what, normalized)
	}
	if !info.Mode().IsRegular() {
		return "", studioerrors.Newf(studioerrors.CodeInputUnreadable, "%s is not a regular file: %s", what, normalized)
	}
	f, err := os.Open(normalized)
	if err != nil {
		return "", studioerrors.Newf(studioerrors.CodeInputUnreadable, "%s is not readable: %s", what, normalized)
	}
	f.Close()
	return normalized, nil
}
