// Package toolkit locates and validates the external adapter training
// toolkit and describes the layout this CLI relies on.
package toolkit

import (
	"fmt"
	"os"
	"path/filepath"
)

// Structure the toolkit distribution must have. Validation is purely
// structural; file contents are never inspected here.
var (
	requiredDirs   = []string{"assets", "examples", "export"}
	requiredFiles  = []string{"requirements.txt"}
	requiredAssets = []string{"base-model.pt", "tokenizer.model", "checkpoint_spec.yaml"}
)

// Validate checks a candidate toolkit directory against the required
// layout. It returns whether the candidate passed and a human-readable
// problem list when it did not.
func Validate(path string) (bool, []string) {
	var problems []string

	info, err := os.Stat(path)
	if err != nil {
		problems = append(problems, fmt.Sprintf("toolkit path does not exist: %s", path))
		return false, problems
	}
	if !info.IsDir() {
		problems = append(problems, fmt.Sprintf("toolkit path is not a directory: %s", path))
		return false, problems
	}

	for _, name := range requiredDirs {
		dir := filepath.Join(path, name)
		info, err := os.Stat(dir)
		switch {
		case err != nil:
			problems = append(problems, fmt.Sprintf("missing directory: %s/", name))
		case !info.IsDir():
			problems = append(problems, fmt.Sprintf("%s/ exists but is not a directory", name))
		}
	}

	for _, name := range requiredFiles {
		if _, err := os.Stat(filepath.Join(path, name)); err != nil {
			problems = append(problems, fmt.Sprintf("missing file: %s", name))
		}
	}

	// Asset checks only make sense once assets/ itself exists.
	assetsDir := filepath.Join(path, "assets")
	if _, err := os.Stat(assetsDir); err == nil {
		for _, name := range requiredAssets {
			if _, err := os.Stat(filepath.Join(assetsDir, name)); err != nil {
				problems = append(problems, fmt.Sprintf("missing asset: assets/%s", name))
			}
		}
	}

	return len(problems) == 0, problems
}
