package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/grokify/releaseconductor/pkg/model"
)

// TableFormatter formats results as text tables.
type TableFormatter struct{}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// FormatRunResult formats a pipeline run result as a text table.
func (f *TableFormatter) FormatRunResult(result *model.RunResult) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Release Pipeline Run (%s)\n", result.Timestamp.Format(time.RFC3339)))
	if result.Spec != nil {
		sb.WriteString(fmt.Sprintf("Release: %s | Branch: %s | Prerelease: %v\n",
			result.Spec.ReleaseTag, result.Spec.Branch, result.Spec.Prerelease))
	}
	if result.DryRun {
		sb.WriteString("Mode: DRY RUN (no external side effects)\n")
	}
	sb.WriteString(fmt.Sprintf("Passed: %d | Skipped: %d | Failed: %d\n",
		result.PassedCount, result.SkippedCount, result.FailedCount))
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	sb.WriteString(fmt.Sprintf("%-24s %-8s %-10s %s\n", "STAGE", "STATUS", "DURATION", "DETAIL"))
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	for _, st := range result.Stages {
		sb.WriteString(formatStageRow(st))
	}
	if result.Cleanup != nil {
		sb.WriteString(formatStageRow(*result.Cleanup))
	}

	if result.ReleaseURL != "" {
		sb.WriteString(fmt.Sprintf("\nRelease: %s\n", result.ReleaseURL))
	}
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("\nError: %s\n", result.Error))
	}

	return sb.String(), nil
}

func formatStageRow(st model.StageResult) string {
	detail := st.Reason
	if st.Error != "" {
		detail = st.Error
	}
	return fmt.Sprintf("%-24s %-8s %-10s %s\n",
		st.Name, string(st.Status), st.Duration.Round(time.Millisecond), detail)
}

// FormatValidationResult formats a validation-only result as a text table.
func (f *TableFormatter) FormatValidationResult(result *model.ValidationResult) (string, error) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Trigger Tag Validation (%s)\n", result.Timestamp.Format(time.RFC3339)))
	sb.WriteString(strings.Repeat("-", 72) + "\n")

	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("INVALID: %s\n", result.Error))
		return sb.String(), nil
	}

	spec := result.Spec
	sb.WriteString(fmt.Sprintf("%-16s %s\n", "Source tag:", spec.SourceTag))
	sb.WriteString(fmt.Sprintf("%-16s %s\n", "Version:", spec.Version))
	sb.WriteString(fmt.Sprintf("%-16s %s\n", "Branch:", spec.Branch))
	sb.WriteString(fmt.Sprintf("%-16s %s\n", "Release tag:", spec.ReleaseTag))
	sb.WriteString(fmt.Sprintf("%-16s %v\n", "Prerelease:", spec.Prerelease))
	sb.WriteString(fmt.Sprintf("%-16s %d bytes\n", "Release notes:", result.NotesBytes))
	sb.WriteString(fmt.Sprintf("%-16s %d\n", "Tags checked:", result.TagsSeen))

	return sb.String(), nil
}
