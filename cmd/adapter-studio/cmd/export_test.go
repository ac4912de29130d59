package cmd

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
)

func TestExportArgs(t *testing.T) {
	opts := &exportOptions{
		AdapterName: "my_adapter",
		Checkpoint:  "/toolkit/checkpoints/final.pt",
		OutputDir:   "/out",
	}

	want := []string{
		"--adapter-name", "my_adapter",
		"--checkpoint", "/toolkit/checkpoints/final.pt",
		"--output-dir", "/out",
	}
	if got := opts.args(); !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestExportArgs_Optional(t *testing.T) {
	opts := &exportOptions{
		AdapterName:     "my_adapter",
		Checkpoint:      "/ckpt",
		OutputDir:       "/out",
		DraftCheckpoint: "/draft",
		Author:          "studio",
		Description:     "test adapter",
	}

	got := strings.Join(opts.args(), " ")
	for _, fragment := range []string{
		"--draft-checkpoint /draft",
		"--author studio",
		"--description test adapter",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("args missing %q: %s", fragment, got)
		}
	}
}

func TestValidAdapterName(t *testing.T) {
	valid := []string{"adapter", "my_adapter_2", "A1"}
	for _, name := range valid {
		if !validAdapterName(name) {
			t.Errorf("expected %q to be valid", name)
		}
	}

	invalid := []string{"", "my-adapter", "my adapter", "name!", strings.Repeat("a", 256)}
	for _, name := range invalid {
		if validAdapterName(name) {
			t.Errorf("expected %q to be invalid", name)
		}
	}
}

func resetExportFlags(t *testing.T) {
	t.Helper()
	expAdapterName = ""
	expCheckpoint = ""
	expOutputDir = ""
	expDraftCheckpoint = ""
	expAuthor = ""
	expDescription = ""
}

func TestRunExport_RequiresConfiguration(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	setupTest(t)
	resetExportFlags(t)

	_, err := captureOutput(t, func() error {
		return runExport(exportCmd, nil)
	})
	if err == nil {
		t.Fatal("expected error without configured toolkit")
	}
	if !strings.Contains(err.Error(), "adapter-studio init") {
		t.Errorf("error should point at init, got %v", err)
	}
}

func TestRunExport_RequiresAdapterName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setupTest(t)
	resetExportFlags(t)
	writeToolkitFixture(t, home)

	_, err := captureOutput(t, func() error {
		return runExport(exportCmd, nil)
	})
	if err == nil {
		t.Fatal("expected error for missing adapter name")
	}
	if !strings.Contains(err.Error(), "--adapter-name") {
		t.Errorf("error = %v", err)
	}
}

func TestRunExport_RejectsBadAdapterName(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setupTest(t)
	resetExportFlags(t)
	writeToolkitFixture(t, home)

	expAdapterName = "bad-name!"
	_, err := captureOutput(t, func() error {
		return runExport(exportCmd, nil)
	})
	if err == nil {
		t.Fatal("expected error for invalid adapter name")
	}
	if !strings.Contains(err.Error(), "letters, numbers, and underscores") {
		t.Errorf("error = %v", err)
	}
}

func TestRunExport_MissingCheckpoint(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setupTest(t)
	resetExportFlags(t)
	writeToolkitFixture(t, home)

	expAdapterName = "my_adapter"
	expCheckpoint = "/nonexistent/ckpt"
	expOutputDir = home + "/out"

	_, err := captureOutput(t, func() error {
		return runExport(exportCmd, nil)
	})
	if err == nil {
		t.Fatal("expected error for missing checkpoint")
	}

	var serr *studioerrors.StudioError
	if !errors.As(err, &serr) || serr.Code != studioerrors.CodeInputNotFound {
		t.Errorf("error = %v, want %s", err, studioerrors.CodeInputNotFound)
	}
}
