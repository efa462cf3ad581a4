package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/grokify/releaseconductor/pkg/model"
)

// MarkdownFormatter formats results as Markdown.
type MarkdownFormatter struct{}

// NewMarkdownFormatter creates a new Markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// FormatRunResult formats a pipeline run result as Markdown.
func (f *MarkdownFormatter) FormatRunResult(result *model.RunResult) (string, error) {
	var sb strings.Builder

	sb.WriteString("# Release Pipeline Run\n\n")
	sb.WriteString(fmt.Sprintf("**Run Time:** %s\n\n", result.Timestamp.Format(time.RFC3339)))
	if result.Spec != nil {
		sb.WriteString(fmt.Sprintf("**Release:** %s (branch %s)\n\n", result.Spec.ReleaseTag, result.Spec.Branch))
	}
	if result.DryRun {
		sb.WriteString("**Mode:** dry run\n\n")
	}
	sb.WriteString(fmt.Sprintf("**Passed:** %d | **Skipped:** %d | **Failed:** %d\n\n",
		result.PassedCount, result.SkippedCount, result.FailedCount))

	sb.WriteString("| Stage | Status | Duration | Detail |\n")
	sb.WriteString("|-------|--------|----------|--------|\n")
	for _, st := range result.Stages {
		sb.WriteString(markdownStageRow(st))
	}
	if result.Cleanup != nil {
		sb.WriteString(markdownStageRow(*result.Cleanup))
	}
	sb.WriteString("\n")

	if result.ReleaseURL != "" {
		sb.WriteString(fmt.Sprintf("**Release:** %s\n\n", result.ReleaseURL))
	}
	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("**Error:** %s\n", result.Error))
	}

	return sb.String(), nil
}

func markdownStageRow(st model.StageResult) string {
	detail := st.Reason
	if st.Error != "" {
		detail = st.Error
	}
	return fmt.Sprintf("| %s | %s | %s | %s |\n",
		st.Name, string(st.Status), st.Duration.Round(time.Millisecond), detail)
}

// FormatValidationResult formats a validation-only result as Markdown.
func (f *MarkdownFormatter) FormatValidationResult(result *model.ValidationResult) (string, error) {
	var sb strings.Builder

	sb.WriteString("# Trigger Tag Validation\n\n")
	sb.WriteString(fmt.Sprintf("**Time:** %s\n\n", result.Timestamp.Format(time.RFC3339)))

	if result.Error != "" {
		sb.WriteString(fmt.Sprintf("**Invalid:** %s\n", result.Error))
		return sb.String(), nil
	}

	spec := result.Spec
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Source tag | %s |\n", spec.SourceTag))
	sb.WriteString(fmt.Sprintf("| Version | %s |\n", spec.Version))
	sb.WriteString(fmt.Sprintf("| Branch | %s |\n", spec.Branch))
	sb.WriteString(fmt.Sprintf("| Release tag | %s |\n", spec.ReleaseTag))
	sb.WriteString(fmt.Sprintf("| Prerelease | %v |\n", spec.Prerelease))
	sb.WriteString(fmt.Sprintf("| Release notes | %d bytes |\n", result.NotesBytes))
	sb.WriteString(fmt.Sprintf("| Tags checked | %d |\n", result.TagsSeen))

	return sb.String(), nil
}
