// Package cli provides interactive terminal prompts.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Confirm asks a yes/no question with the given default.
// Returns true for yes, false for no. io.EOF is returned unchanged so
// callers can treat ^D as a cancel.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	suffix := "[y/N]"
	if defaultYes {
		suffix = "[Y/n]"
	}

	fmt.Printf("%s %s ", prompt, suffix)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return false, io.EOF
		}
		return false, fmt.Errorf("reading response: %w", err)
	}

	response = strings.TrimSpace(strings.ToLower(response))

	if response == "" {
		return defaultYes, nil
	}

	return response == "y" || response == "yes", nil
}

// Ask prompts for a free-text line and returns it trimmed. io.EOF is
// returned unchanged so callers can treat ^D as a cancel.
func Ask(prompt string) (string, error) {
	fmt.Printf("%s: ", prompt)

	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", io.EOF
		}
		return "", fmt.Errorf("reading response: %w", err)
	}

	return strings.TrimSpace(response), nil
}
