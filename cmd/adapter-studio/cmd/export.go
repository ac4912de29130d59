package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/spf13/cobra"

	"github.com/adapter-studio/adapter-studio/internal/config"
	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
	"github.com/adapter-studio/adapter-studio/internal/runner"
)

const exportTimeout = 30 * time.Minute

// adapterNamePattern matches names the toolkit accepts for .fmadapter
// packages.
var adapterNamePattern = regexp.MustCompile(`^\w+$`)

// validAdapterName reports whether name is usable as an adapter name.
func validAdapterName(name string) bool {
	return name != "" && len(name) <= 255 && adapterNamePattern.MatchString(name)
}

// exportOptions holds the resolved export.export_fmadapter inputs.
type exportOptions struct {
	AdapterName     string
	Checkpoint      string
	OutputDir       string
	DraftCheckpoint string
	Author          string
	Description     string
}

// args builds the export.export_fmadapter argument list.
func (o *exportOptions) args() []string {
	args := []string{
		"--adapter-name", o.AdapterName,
		"--checkpoint", o.Checkpoint,
		"--output-dir", o.OutputDir,
	}
	if o.DraftCheckpoint != "" {
		args = append(args, "--draft-checkpoint", o.DraftCheckpoint)
	}
	if o.Author != "" {
		args = append(args, "--author", o.Author)
	}
	if o.Description != "" {
		args = append(args, "--description", o.Description)
	}
	return args
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a trained adapter to .fmadapter format",
	RunE:  runExport,
}

var (
	expAdapterName     string
	expCheckpoint      string
	expOutputDir       string
	expDraftCheckpoint string
	expAuthor          string
	expDescription     string
)

func init() {
	f := exportCmd.Flags()
	f.StringVar(&expAdapterName, "adapter-name", "", "adapter package name (letters, digits, underscores)")
	f.StringVar(&expCheckpoint, "checkpoint", "", "trained adapter checkpoint")
	f.StringVar(&expOutputDir, "output-dir", "", "directory to write the .fmadapter package")
	f.StringVar(&expDraftCheckpoint, "draft-checkpoint", "", "draft model checkpoint to bundle")
	f.StringVar(&expAuthor, "author", "", "adapter author metadata")
	f.StringVar(&expDescription, "description", "", "adapter description metadata")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	fmt.Println()

	tk, err := requireToolkit()
	if err != nil {
		return err
	}

	if expAdapterName == "" {
		return studioerrors.InputMissing("adapter-name")
	}
	if !validAdapterName(expAdapterName) {
		return studioerrors.Newf(studioerrors.CodeInputOutOfRange,
			"--adapter-name must contain only letters, numbers, and underscores (1-255 chars)")
	}
	if expCheckpoint == "" {
		return studioerrors.InputMissing("checkpoint")
	}
	if expOutputDir == "" {
		return studioerrors.InputMissing("output-dir")
	}

	opts := &exportOptions{
		AdapterName: expAdapterName,
		Author:      expAuthor,
		Description: expDescription,
	}

	opts.Checkpoint, err = statPath("checkpoint", expCheckpoint)
	if err != nil {
		return err
	}

	opts.OutputDir, err = config.NormalizePath(expOutputDir)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	if expDraftCheckpoint != "" {
		opts.DraftCheckpoint, err = statPath("draft checkpoint", expDraftCheckpoint)
		if err != nil {
			return err
		}
	}

	fmt.Println("Exporting adapter to .fmadapter format...")
	fmt.Println()
	fmt.Printf("Adapter name: %s\n", opts.AdapterName)
	fmt.Printf("Checkpoint: %s\n", opts.Checkpoint)
	if opts.DraftCheckpoint != "" {
		fmt.Printf("Draft checkpoint: %s\n", opts.DraftCheckpoint)
	}
	fmt.Printf("Output directory: %s\n\n", opts.OutputDir)

	fmt.Println("Starting export...")
	fmt.Println()

	ctx, cancel := notifyContext()
	defer cancel()

	code, err := runner.New(logger).Run(ctx, &runner.Invocation{
		Python:  tk.VenvPython(),
		Module:  "export.export_fmadapter",
		Args:    opts.args(),
		Dir:     tk.Path,
		Timeout: exportTimeout,
	})
	switch {
	case errors.Is(err, runner.ErrTimeout):
		fmt.Println("\nExport timed out (exceeded 30 minutes). The adapter may be very large.")
		return studioerrors.NewExitError(1)
	case errors.Is(err, runner.ErrInterrupted):
		fmt.Println("\nExport cancelled.")
		return studioerrors.NewExitError(1)
	case err != nil:
		return err
	case code != 0:
		return studioerrors.NewExitError(code)
	}

	fmadapter := filepath.Join(opts.OutputDir, opts.AdapterName+".fmadapter")
	fmt.Println("\nExport complete!")
	fmt.Printf("Adapter saved to: %s\n\n", fmadapter)
	fmt.Println("You can now:")
	fmt.Println("  1. Add it to Xcode for testing")
	fmt.Println("  2. Deploy via Background Assets framework")
	fmt.Println("  3. Use it in your app with Foundation Models framework")
	return nil
}
