package common

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"resumalyzer/internal/formatters"
)

// ValidateOutputFormat accepts format when a formatter is registered for it
// and, with a non-empty configured list, the configuration allows it.
func ValidateOutputFormat(format string, configured []string) error {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if !slices.Contains(registered, format) {
		return fmt.Errorf("unknown output format %q (available: %s)", format, strings.Join(registered, ", "))
	}
	if len(configured) > 0 && !slices.Contains(configured, format) {
		return fmt.Errorf("output format %q is disabled by configuration (allowed: %s)",
			format, strings.Join(configured, ", "))
	}
	return nil
}

// AllowedFormats lists the registered formats the configuration allows, in
// registry order. An empty configured list allows every registered format.
func AllowedFormats(configured []string) []string {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if len(configured) == 0 {
		return registered
	}
	return slices.DeleteFunc(registered, func(f string) bool { return !slices.Contains(configured, f) })
}

// ValidateOutputFile checks that the output file's directory exists or can be
// created. An empty name means stdout.
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil
	}

	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	}

	dir := filepath.Dir(filename)
	if dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("cannot create directory %s: %w", dir, err)
			}
		}
	}

	return nil
}
