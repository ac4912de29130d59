package cmd

import (
	"reflect"
	"strings"
	"testing"
)

func TestGenerateArgs_Minimal(t *testing.T) {
	opts := &generateOptions{Prompt: "Write a play"}

	want := []string{"--prompt", "Write a play"}
	if got := opts.args(); !reflect.DeepEqual(got, want) {
		t.Errorf("args = %v, want %v", got, want)
	}
}

func TestGenerateArgs_Full(t *testing.T) {
	temperature := 0.7
	topK := 40
	maxNewTokens := 256
	batchSize := 2

	opts := &generateOptions{
		Prompt:          "Write a play",
		Checkpoint:      "/ckpt",
		DraftCheckpoint: "/draft",
		Precision:       "bf16",
		Temperature:     &temperature,
		TopK:            &topK,
		MaxNewTokens:    &maxNewTokens,
		BatchSize:       &batchSize,
		CompileModel:    true,
	}

	got := strings.Join(opts.args(), " ")
	for _, fragment := range []string{
		"--prompt Write a play",
		"--checkpoint /ckpt",
		"--draft-checkpoint /draft",
		"--precision bf16",
		"--temperature 0.7",
		"--top-k 40",
		"--max-new-tokens 256",
		"--batch-size 2",
		"--compile-model",
	} {
		if !strings.Contains(got, fragment) {
			t.Errorf("args missing %q: %s", fragment, got)
		}
	}
}

func TestGenerateArgs_UnsetOptionalsOmitted(t *testing.T) {
	opts := &generateOptions{Prompt: "p"}

	got := strings.Join(opts.args(), " ")
	for _, flag := range []string{"--temperature", "--top-k", "--max-new-tokens", "--batch-size", "--checkpoint", "--precision"} {
		if strings.Contains(got, flag) {
			t.Errorf("args should omit %s when unset: %s", flag, got)
		}
	}
}

func resetGenerateFlags(t *testing.T) {
	t.Helper()
	genPrompt = ""
	genCheckpoint = ""
	genDraftCheckpoint = ""
	genPrecision = ""
	genCompileModel = false
}

func TestRunGenerate_RequiresPrompt(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setupTest(t)
	resetGenerateFlags(t)
	writeToolkitFixture(t, home)

	_, err := captureOutput(t, func() error {
		return runGenerate(generateCmd, nil)
	})
	if err == nil {
		t.Fatal("expected error for missing prompt")
	}
	if !strings.Contains(err.Error(), "--prompt") {
		t.Errorf("error = %v", err)
	}
}

func TestRunGenerate_RequiresVenv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setupTest(t)
	resetGenerateFlags(t)

	// Configured toolkit without a venv.
	dir := writeToolkitFixture(t, home)
	removeVenv(t, dir)

	genPrompt = "hello"
	_, err := captureOutput(t, func() error {
		return runGenerate(generateCmd, nil)
	})
	if err == nil {
		t.Fatal("expected error for missing venv")
	}
	if !strings.Contains(err.Error(), "adapter-studio setup") {
		t.Errorf("error should point at setup, got %v", err)
	}
}

func TestRunGenerate_MissingCheckpoint(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	setupTest(t)
	resetGenerateFlags(t)
	writeToolkitFixture(t, home)

	genPrompt = "hello"
	genCheckpoint = "/nonexistent/ckpt"

	_, err := captureOutput(t, func() error {
		return runGenerate(generateCmd, nil)
	})
	if err == nil {
		t.Fatal("expected error for missing checkpoint")
	}
	if !strings.Contains(err.Error(), "checkpoint not found") {
		t.Errorf("error = %v", err)
	}
}
