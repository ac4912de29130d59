package toolkit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeToolkit lays down a complete valid toolkit structure and returns
// its path.
func writeToolkit(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

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
	return dir
}

func TestValidate_Valid(t *testing.T) {
	dir := writeToolkit(t)

	ok, problems := Validate(dir)
	if !ok {
		t.Errorf("expected valid toolkit, got problems: %v", problems)
	}
	if len(problems) != 0 {
		t.Errorf("expected no problems, got %v", problems)
	}
}

func TestValidate_Nonexistent(t *testing.T) {
	ok, problems := Validate(filepath.Join(t.TempDir(), "nope"))
	if ok {
		t.Error("expected invalid")
	}
	if len(problems) != 1 || !strings.Contains(problems[0], "does not exist") {
		t.Errorf("problems = %v", problems)
	}
}

func TestValidate_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "toolkit")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ok, problems := Validate(file)
	if ok {
		t.Error("expected invalid")
	}
	if len(problems) != 1 || !strings.Contains(problems[0], "not a directory") {
		t.Errorf("problems = %v", problems)
	}
}

func TestValidate_MissingAssetsDir(t *testing.T) {
	dir := writeToolkit(t)
	if err := os.RemoveAll(filepath.Join(dir, "assets")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	ok, problems := Validate(dir)
	if ok {
		t.Error("expected invalid")
	}

	found := false
	for _, p := range problems {
		if strings.Contains(p, "assets") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a problem mentioning assets, got %v", problems)
	}
}

func TestValidate_MissingAsset(t *testing.T) {
	dir := writeToolkit(t)
	if err := os.Remove(filepath.Join(dir, "assets", "tokenizer.model")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	ok, problems := Validate(dir)
	if ok {
		t.Error("expected invalid")
	}
	if len(problems) != 1 || !strings.Contains(problems[0], "assets/tokenizer.model") {
		t.Errorf("problems = %v", problems)
	}
}

func TestValidate_MissingRequirements(t *testing.T) {
	dir := writeToolkit(t)
	if err := os.Remove(filepath.Join(dir, "requirements.txt")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	ok, problems := Validate(dir)
	if ok {
		t.Error("expected invalid")
	}
	if len(problems) != 1 || !strings.Contains(problems[0], "requirements.txt") {
		t.Errorf("problems = %v", problems)
	}
}

func TestValidate_DirIsFile(t *testing.T) {
	dir := writeToolkit(t)
	if err := os.RemoveAll(filepath.Join(dir, "export")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "export"), []byte("x"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	ok, problems := Validate(dir)
	if ok {
		t.Error("expected invalid")
	}
	if len(problems) != 1 || !strings.Contains(problems[0], "export/ exists but is not a directory") {
		t.Errorf("problems = %v", problems)
	}
}
