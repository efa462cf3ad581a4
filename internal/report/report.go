package report

import "github.com/grokify/releaseconductor/pkg/model"

// Formatter defines the interface for formatting results.
type Formatter interface {
	// FormatRunResult formats a pipeline run result.
	FormatRunResult(result *model.RunResult) (string, error)

	// FormatValidationResult formats a validation-only result.
	FormatValidationResult(result *model.ValidationResult) (string, error)
}

// ForFormat returns the formatter for a format name. Unknown names fall back
// to the table formatter.
func ForFormat(format string) Formatter {
	switch format {
	case "json":
		return NewJSONFormatter()
	case "markdown", "md":
		return NewMarkdownFormatter()
	case "csv":
		return NewCSVFormatter()
	default:
		return NewTableFormatter()
	}
}
