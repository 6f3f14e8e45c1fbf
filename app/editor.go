package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

const editorMarker = "# Enter one url on each line to add it to the database. This line will not be recorded."

// editURLList opens the user's editor on a marker-headed temp file and
// returns the non-empty lines entered below the marker.
func editURLList() ([]string, error) {
	file, err := os.CreateTemp("", "ao3scraper-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := file.Name()
	defer os.Remove(path)

	if _, err := file.WriteString(editorMarker + "\n"); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}

	editor := findEditor()
	if editor == "" {
		return nil, fmt.Errorf("no editor found: set $EDITOR environment variable")
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("editor exited with error: %w", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read temp file: %w", err)
	}

	// Everything above and including the marker line is discarded.
	_, body, found := strings.Cut(string(content), editorMarker)
	if !found {
		body = string(content)
	}

	var urls []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}

	return urls, nil
}

func findEditor() string {
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}
	if visual := os.Getenv("VISUAL"); visual != "" {
		return visual
	}
	for _, editor := range []string{"nvim", "vim", "vi", "nano"} {
		if path, err := exec.LookPath(editor); err == nil {
			return path
		}
	}
	return ""
}
