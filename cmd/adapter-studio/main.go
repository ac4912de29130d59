package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/adapter-studio/adapter-studio/cmd/adapter-studio/cmd"
	studioerrors "github.com/adapter-studio/adapter-studio/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		// Child exit codes are relayed untouched; the child already
		// reported its own failure.
		var exitErr *studioerrors.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
