package toolkit

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Toolkit is a handle on a configured toolkit directory. It only reads
// the directory; the toolkit distribution owns its contents.
type Toolkit struct {
	Path string
}

// New returns a handle on the toolkit at path.
func New(path string) *Toolkit {
	return &Toolkit{Path: path}
}

// VenvDir returns the virtual environment directory created by setup.
func (t *Toolkit) VenvDir() string {
	return filepath.Join(t.Path, "venv")
}

// VenvPython returns the virtual environment's interpreter path.
func (t *Toolkit) VenvPython() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(t.VenvDir(), "Scripts", "python.exe")
	}
	return filepath.Join(t.VenvDir(), "bin", "python")
}

// HasVenv reports whether the virtual environment interpreter exists.
func (t *Toolkit) HasVenv() bool {
	_, err := os.Stat(t.VenvPython())
	return err == nil
}

// RequirementsFile returns the toolkit's requirements.txt path.
func (t *Toolkit) RequirementsFile() string {
	return filepath.Join(t.Path, "requirements.txt")
}

// ToyDataset returns the bundled playwriting train/eval files used by
// train-adapter --demo.
func (t *Toolkit) ToyDataset() (train, eval string) {
	dir := filepath.Join(t.Path, "examples", "toy_dataset")
	return filepath.Join(dir, "playwriting_train.jsonl"),
		filepath.Join(dir, "playwriting_valid.jsonl")
}

// CheckpointsDir returns the directory demo training writes under.
func (t *Toolkit) CheckpointsDir() string {
	return filepath.Join(t.Path, "checkpoints")
}

// Contains reports whether path resolves inside the toolkit directory.
// Checkpoint directories must stay inside the toolkit so cleanup can
// never escape it.
func (t *Toolkit) Contains(path string) (bool, error) {
	root, err := filepath.Abs(t.Path)
	if err != nil {
		return false, fmt.Errorf("resolving toolkit path: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolving path: %w", err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// CheckpointSpec is the metadata block the toolkit ships in
// assets/checkpoint_spec.yaml. Only the fields the info command shows
// are decoded.
type CheckpointSpec struct {
	Model struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"model"`
	Precision string `yaml:"precision"`
	Rank      int    `yaml:"rank"`
}

// CheckpointSpecPath returns the checkpoint spec asset path.
func (t *Toolkit) CheckpointSpecPath() string {
	return filepath.Join(t.Path, "assets", "checkpoint_spec.yaml")
}

// ReadCheckpointSpec parses assets/checkpoint_spec.yaml.
func (t *Toolkit) ReadCheckpointSpec() (*CheckpointSpec, error) {
	data, err := os.ReadFile(t.CheckpointSpecPath())
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint spec: %w", err)
	}
	var spec CheckpointSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing checkpoint spec: %w", err)
	}
	return &spec, nil
}
