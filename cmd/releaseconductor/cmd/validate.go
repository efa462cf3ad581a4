package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grokify/releaseconductor/internal/gitrepo"
	"github.com/grokify/releaseconductor/internal/guard"
	"github.com/grokify/releaseconductor/internal/notes"
	"github.com/grokify/releaseconductor/internal/report"
	"github.com/grokify/releaseconductor/internal/trigger"
	"github.com/grokify/releaseconductor/pkg/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a trigger tag without releasing",
	Long: `Validate a trigger tag against the local repository: version grammar,
conflicting releases on the same branch, and release notes in the tag
annotation. No external side effect is performed.

Examples:
  releaseconductor validate --tag release-v2.4.0
  releaseconductor validate --tag release-v2.4.0-rc1 --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().String("tag", "", "Trigger tag to validate (release-vX.Y.Z[-rcN])")

	_ = viper.BindPFlag("validate.tag", validateCmd.Flags().Lookup("tag"))
}

// validated carries the outcome of trigger-tag validation into the pipeline.
type validated struct {
	spec     *model.ReleaseSpec
	repo     *gitrepo.Repo
	tagsSeen int
}

// validateTriggerTag runs validator, guard, and notes extraction against the
// local clone. All three checks are read-only.
func validateTriggerTag(sourceTag string, verbose bool) (*validated, error) {
	spec, err := trigger.Parse(sourceTag)
	if err != nil {
		return nil, err
	}

	repo, err := gitrepo.Open(viper.GetString("repo-path"),
		viper.GetString("run.git-name"), viper.GetString("run.git-email"))
	if err != nil {
		return nil, err
	}

	tags, err := repo.TagNames()
	if err != nil {
		return nil, err
	}
	if err := guard.Check(spec, tags); err != nil {
		return nil, err
	}

	show, err := repo.ShowTag(sourceTag)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMissingAnnotation, err)
	}
	body, err := notes.Extract(show, sourceTag)
	if err != nil {
		return nil, err
	}
	spec.Notes = body

	if verbose {
		fmt.Fprintf(os.Stderr, "Validated %s: branch %s, prerelease %v, %d notes bytes\n",
			sourceTag, spec.Branch, spec.Prerelease, len(body))
	}

	return &validated{spec: spec, repo: repo, tagsSeen: len(tags)}, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	sourceTag := viper.GetString("validate.tag")
	if sourceTag == "" {
		return fmt.Errorf("trigger tag required (--tag)")
	}

	result := newValidationResult()

	v, err := validateTriggerTag(sourceTag, viper.GetBool("verbose"))
	if err != nil {
		result.Error = err.Error()
	} else {
		result.Spec = v.spec
		result.NotesBytes = len(v.spec.Notes)
		result.TagsSeen = v.tagsSeen
	}

	formatter := report.ForFormat(viper.GetString("format"))
	output, ferr := formatter.FormatValidationResult(result)
	if ferr != nil {
		return fmt.Errorf("failed to format output: %w", ferr)
	}
	fmt.Print(output)

	return err
}
