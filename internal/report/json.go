package report

import (
	"encoding/json"

	"github.com/grokify/releaseconductor/pkg/model"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	Indent bool
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{Indent: true}
}

// FormatRunResult formats a pipeline run result as JSON.
func (f *JSONFormatter) FormatRunResult(result *model.RunResult) (string, error) {
	return f.marshal(result)
}

// FormatValidationResult formats a validation-only result as JSON.
func (f *JSONFormatter) FormatValidationResult(result *model.ValidationResult) (string, error) {
	return f.marshal(result)
}

func (f *JSONFormatter) marshal(v any) (string, error) {
	var data []byte
	var err error

	if f.Indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return "", err
	}

	return string(data) + "\n", nil
}
