package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/adapter-studio/adapter-studio/internal/logging"
)

// writeScript writes an executable shell script standing in for the venv
// interpreter. It ignores the "-m module" arguments the runner passes.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "python")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestCommandLine(t *testing.T) {
	inv := &Invocation{
		Python: "/opt/toolkit/venv/bin/python",
		Module: "examples.generate",
		Args:   []string{"--prompt", "hello"},
	}

	want := []string{"/opt/toolkit/venv/bin/python", "-m", "examples.generate", "--prompt", "hello"}
	if got := inv.CommandLine(); !reflect.DeepEqual(got, want) {
		t.Errorf("CommandLine = %v, want %v", got, want)
	}
}

func TestRun_Success(t *testing.T) {
	script := writeScript(t, "exit 0")
	r := New(logging.NewForTest())

	code, err := r.Run(context.Background(), &Invocation{
		Python:  script,
		Module:  "examples.generate",
		Timeout: time.Minute,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if code != 0 {
		t.Errorf("code = %d, want 0", code)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	script := writeScript(t, "exit 3")
	r := New(logging.NewForTest())

	code, err := r.Run(context.Background(), &Invocation{
		Python:  script,
		Module:  "examples.train_adapter",
		Timeout: time.Minute,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if code != 3 {
		t.Errorf("code = %d, want 3", code)
	}
}

func TestRun_Timeout(t *testing.T) {
	script := writeScript(t, "sleep 30")
	r := New(logging.NewForTest())

	start := time.Now()
	code, err := r.Run(context.Background(), &Invocation{
		Python:  script,
		Module:  "examples.train_adapter",
		Timeout: 100 * time.Millisecond,
	})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if code != -1 {
		t.Errorf("code = %d, want -1", code)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("run took too long to terminate: %v", elapsed)
	}
}

func TestRun_Interrupted(t *testing.T) {
	script := writeScript(t, "sleep 30")
	r := New(logging.NewForTest())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	code, err := r.Run(ctx, &Invocation{
		Python:  script,
		Module:  "examples.train_adapter",
		Timeout: time.Minute,
	})
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("err = %v, want ErrInterrupted", err)
	}
	if code != -1 {
		t.Errorf("code = %d, want -1", code)
	}
}

func TestRun_StartFailure(t *testing.T) {
	r := New(logging.NewForTest())

	_, err := r.Run(context.Background(), &Invocation{
		Python:  filepath.Join(t.TempDir(), "missing-python"),
		Module:  "examples.generate",
		Timeout: time.Minute,
	})
	if err == nil {
		t.Fatal("expected start error")
	}
}

func TestRun_Workdir(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "marker")
	script := writeScript(t, "touch marker")
	r := New(logging.NewForTest())

	code, err := r.Run(context.Background(), &Invocation{
		Python:  script,
		Module:  "examples.generate",
		Dir:     dir,
		Timeout: time.Minute,
	})
	if err != nil || code != 0 {
		t.Fatalf("Run failed: code=%d err=%v", code, err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Errorf("expected child to run in %s: %v", dir, err)
	}
}
