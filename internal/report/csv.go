package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/grokify/releaseconductor/pkg/model"
)

// CSVFormatter formats results as CSV.
type CSVFormatter struct{}

// NewCSVFormatter creates a new CSV formatter.
func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

// FormatRunResult formats a pipeline run result as CSV, one row per stage.
func (f *CSVFormatter) FormatRunResult(result *model.RunResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"Stage", "Status", "Duration", "Detail"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	rows := result.Stages
	if result.Cleanup != nil {
		rows = append(rows, *result.Cleanup)
	}
	for _, st := range rows {
		detail := st.Reason
		if st.Error != "" {
			detail = st.Error
		}
		row := []string{st.Name, string(st.Status), st.Duration.String(), detail}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}

// FormatValidationResult formats a validation-only result as CSV.
func (f *CSVFormatter) FormatValidationResult(result *model.ValidationResult) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Field", "Value"}); err != nil {
		return "", err
	}

	if result.Error != "" {
		if err := w.Write([]string{"Error", result.Error}); err != nil {
			return "", err
		}
		w.Flush()
		return buf.String(), w.Error()
	}

	spec := result.Spec
	rows := [][]string{
		{"SourceTag", spec.SourceTag},
		{"Version", spec.Version},
		{"Branch", spec.Branch},
		{"ReleaseTag", spec.ReleaseTag},
		{"Prerelease", fmt.Sprintf("%v", spec.Prerelease)},
		{"NotesBytes", fmt.Sprintf("%d", result.NotesBytes)},
		{"TagsSeen", fmt.Sprintf("%d", result.TagsSeen)},
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	w.Flush()
	return buf.String(), w.Error()
}
