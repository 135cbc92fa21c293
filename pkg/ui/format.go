package ui

import (
	"os"
	"strings"

	"github.com/arthur-debert/appsync/pkg/errors"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format represents the output format type
type Format int

const (
	// FormatTable renders grouped tables for people
	FormatTable Format = iota
	// FormatJSON renders machine-readable JSON output
	FormatJSON
	// FormatYAML renders YAML output
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTable:
		return "table"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// ParseFormat parses a string into a Format value
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "text", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatTable, errors.Newf(errors.ErrInvalidInput, "unknown format: %s (use table, json or yaml)", s).
			WithDetail("format", s)
	}
}

// FormatNames lists the accepted --format values
func FormatNames() []string {
	return []string{FormatTable.String(), FormatJSON.String(), FormatYAML.String()}
}

// DetectColor reports whether output can show colors
func DetectColor(output *os.File) bool {
	// Check if NO_COLOR is set
	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	// Check if we're being piped or redirected
	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return false
	}

	// Check terminal color support
	return termenv.NewOutput(output).ColorProfile() != termenv.Ascii
}

// DetectInteractive reports whether input is a terminal a person can answer
func DetectInteractive(input *os.File) bool {
	return isatty.IsTerminal(input.Fd()) || isatty.IsCygwinTerminal(input.Fd())
}
