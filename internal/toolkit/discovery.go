package toolkit

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// namePatterns match directory names that look like a toolkit
// distribution, e.g. adapter_training_toolkit_v26_0_0.
var namePatterns = []string{
	"*adapter_training_toolkit*",
	"*adapter-toolkit*",
}

// Finder searches an ordered list of candidate roots for a valid toolkit.
type Finder struct {
	// Roots are searched in order; the first valid candidate wins.
	Roots []string

	// Patterns are glob patterns matched against subdirectory names.
	Patterns []string
}

// NewFinder returns a Finder over the common install locations plus any
// extra roots from the user's settings.
func NewFinder(extraRoots []string) *Finder {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots,
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "adapter-toolkit"),
		)
	}
	roots = append(roots, "/opt/adapter-toolkit")
	roots = append(roots, extraRoots...)

	return &Finder{
		Roots:    roots,
		Patterns: namePatterns,
	}
}

// Find returns the first root or matching subdirectory that passes
// validation, or false when none does. Roots are checked themselves
// before their immediate subdirectories; there is no recursion.
func (f *Finder) Find() (string, bool) {
	for _, root := range f.Roots {
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}

		if ok, _ := Validate(root); ok {
			return root, true
		}

		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if !entry.IsDir() || !f.matches(entry.Name()) {
				continue
			}
			candidate := filepath.Join(root, entry.Name())
			if ok, _ := Validate(candidate); ok {
				return candidate, true
			}
		}
	}
	return "", false
}

func (f *Finder) matches(name string) bool {
	for _, pattern := range f.Patterns {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
