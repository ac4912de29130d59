package cli

import (
	"errors"
	"io"
	"os"
	"testing"
)

// withStdin runs fn with os.Stdin replaced by a pipe fed the given input.
// An empty input closes the pipe immediately so reads see EOF.
func withStdin(t *testing.T, input string, fn func()) {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe failed: %v", err)
	}
	oldStdin := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = oldStdin
		r.Close()
	}()

	if input != "" {
		if _, err := w.WriteString(input); err != nil {
			t.Fatalf("writing stdin: %v", err)
		}
	}
	w.Close()

	fn()
}

func TestConfirm_Responses(t *testing.T) {
	cases := []struct {
		input      string
		defaultYes bool
		want       bool
	}{
		{"y\n", false, true},
		{"yes\n", false, true},
		{"n\n", true, false},
		{"no\n", true, false},
		{"\n", true, true},
		{"\n", false, false},
		{"Y\n", false, true},
	}
	for _, tc := range cases {
		withStdin(t, tc.input, func() {
			got, err := Confirm("Proceed?", tc.defaultYes)
			if err != nil {
				t.Fatalf("Confirm(%q) error: %v", tc.input, err)
			}
			if got != tc.want {
				t.Errorf("Confirm(%q, default=%v) = %v, want %v", tc.input, tc.defaultYes, got, tc.want)
			}
		})
	}
}

func TestConfirm_EOFPropagated(t *testing.T) {
	withStdin(t, "", func() {
		_, err := Confirm("Proceed?", false)
		if !errors.Is(err, io.EOF) {
			t.Errorf("error = %v, want io.EOF", err)
		}
	})
}

func TestAsk_TrimsInput(t *testing.T) {
	withStdin(t, "  ~/Downloads/toolkit  \n", func() {
		got, err := Ask("Enter path")
		if err != nil {
			t.Fatalf("Ask error: %v", err)
		}
		if got != "~/Downloads/toolkit" {
			t.Errorf("Ask = %q", got)
		}
	})
}

func TestAsk_EOFPropagated(t *testing.T) {
	withStdin(t, "", func() {
		_, err := Ask("Enter path")
		if !errors.Is(err, io.EOF) {
			t.Errorf("error = %v, want io.EOF", err)
		}
	})
}
