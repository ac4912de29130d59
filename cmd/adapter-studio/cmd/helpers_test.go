package cmd

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/adapter-studio/adapter-studio/internal/config"
	"github.com/adapter-studio/adapter-studio/internal/logging"
)

// setupTest initializes the package state PersistentPreRunE would have
// set before a command runs.
func setupTest(t *testing.T) {
	t.Helper()
	settings = config.DefaultSettings()
	logger = logging.NewForTest()
}

// captureOutput runs fn while capturing everything written to stdout.
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = oldStdout

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %v", err)
	}
	return string(out), fnErr
}

// writeToolkitFixture creates a valid toolkit with a venv interpreter
// under the test home and configures it as the active toolkit.
func writeToolkitFixture(t *testing.T, home string) string {
	t.Helper()

	dir := filepath.Join(home, "adapter-toolkit")
	for _, d := range []string{"assets", "examples", "export"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
	files := []string{
		"requirements.txt",
		filepath.Join("assets", "base-model.pt"),
		filepath.Join("assets", "tokenizer.model"),
		filepath.Join("assets", "checkpoint_spec.yaml"),
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", f, err)
		}
	}

	python := filepath.Join(dir, "venv", "bin", "python")
	if err := os.MkdirAll(filepath.Dir(python), 0755); err != nil {
		t.Fatalf("mkdir venv: %v", err)
	}
	if err := os.WriteFile(python, []byte("#!/bin/sh\nexit 0\n"), 0755); err != nil {
		t.Fatalf("write venv python: %v", err)
	}

	if err := config.SetToolkitPath(dir); err != nil {
		t.Fatalf("SetToolkitPath failed: %v", err)
	}
	return dir
}

// removeVenv strips the venv from a toolkit fixture.
func removeVenv(t *testing.T, dir string) {
	t.Helper()
	if err := os.RemoveAll(filepath.Join(dir, "venv")); err != nil {
		t.Fatalf("removing venv: %v", err)
	}
}

// writeDataFile creates a small readable JSONL file.
func writeDataFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(`{"prompt":"p","completion":"c"}`+"\n"), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}
