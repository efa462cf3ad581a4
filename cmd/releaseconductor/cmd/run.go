package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/grokify/releaseconductor/internal/pipeline"
	"github.com/grokify/releaseconductor/internal/publisher"
	"github.com/grokify/releaseconductor/internal/report"
	"github.com/grokify/releaseconductor/pkg/model"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the release pipeline for a trigger tag",
	Long: `Run the full release pipeline for a pushed trigger tag.

The tag must be of the form release-v<major>.<minor>.<patch>[-rcN]. The run
validates the tag, checks that no conflicting release is in flight, extracts
release notes from the tag annotation, and then executes the publish stages
in order, aborting on the first failure. The trigger tag is deleted from the
remote at the end regardless of the outcome.

Examples:
  # Dry-run: validate and show what would happen
  releaseconductor run --tag release-v2.4.0 --repo example/controller --dry-run

  # Full release
  releaseconductor run --tag release-v2.4.0 --repo example/controller \
    --image quay.io/example/controller --manifests manifests/install.yaml

  # Release candidate (marked prerelease, package index not notified)
  releaseconductor run --tag release-v2.4.0-rc1 --repo example/controller`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("tag", "", "Trigger tag that started the release (release-vX.Y.Z[-rcN])")
	runCmd.Flags().String("image", "", "Namespaced image repository, e.g. quay.io/example/controller")
	runCmd.Flags().String("community-image", "", "Community alias image repository")
	runCmd.Flags().StringSlice("platforms", []string{"linux/amd64", "linux/arm64"}, "Image build platforms")
	runCmd.Flags().StringSlice("manifests", nil, "Install manifests to retag, relative to the repo")
	runCmd.Flags().String("dist-dir", "dist", "Output directory for binaries, checksums, and SBOM")
	runCmd.Flags().String("registry", "quay.io", "Registry host for docker login")
	runCmd.Flags().String("registry-user", "", "Registry username")
	runCmd.Flags().String("registry-password", "", "Registry password")
	runCmd.Flags().String("cosign-key", "", "Cosign signing key reference")
	runCmd.Flags().String("cosign-password", "", "Cosign key passphrase")
	runCmd.Flags().String("tap-repo", "", "Package-index repository to notify (owner/repo format)")
	runCmd.Flags().String("tap-token", "", "Package-index token")
	runCmd.Flags().Bool("draft", false, "Create the release as a draft")
	runCmd.Flags().String("git-name", "releaseconductor", "Author name for release commits")
	runCmd.Flags().String("git-email", "release@localhost", "Author email for release commits")

	_ = viper.BindPFlag("run.tag", runCmd.Flags().Lookup("tag"))
	_ = viper.BindPFlag("run.image", runCmd.Flags().Lookup("image"))
	_ = viper.BindPFlag("run.community-image", runCmd.Flags().Lookup("community-image"))
	_ = viper.BindPFlag("run.platforms", runCmd.Flags().Lookup("platforms"))
	_ = viper.BindPFlag("run.manifests", runCmd.Flags().Lookup("manifests"))
	_ = viper.BindPFlag("run.dist-dir", runCmd.Flags().Lookup("dist-dir"))
	_ = viper.BindPFlag("run.registry", runCmd.Flags().Lookup("registry"))
	_ = viper.BindPFlag("run.registry-user", runCmd.Flags().Lookup("registry-user"))
	_ = viper.BindPFlag("run.registry-password", runCmd.Flags().Lookup("registry-password"))
	_ = viper.BindPFlag("run.cosign-key", runCmd.Flags().Lookup("cosign-key"))
	_ = viper.BindPFlag("run.cosign-password", runCmd.Flags().Lookup("cosign-password"))
	_ = viper.BindPFlag("run.tap-repo", runCmd.Flags().Lookup("tap-repo"))
	_ = viper.BindPFlag("run.tap-token", runCmd.Flags().Lookup("tap-token"))
	_ = viper.BindPFlag("run.draft", runCmd.Flags().Lookup("draft"))
	_ = viper.BindPFlag("run.git-name", runCmd.Flags().Lookup("git-name"))
	_ = viper.BindPFlag("run.git-email", runCmd.Flags().Lookup("git-email"))
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	sourceTag := viper.GetString("run.tag")
	if sourceTag == "" {
		return fmt.Errorf("trigger tag required (--tag)")
	}

	repoFull := viper.GetString("repo")
	if repoFull == "" {
		return fmt.Errorf("repository required (--repo owner/repo)")
	}

	dryRun := viper.GetBool("dry-run")
	verbose := viper.GetBool("verbose")
	token := viper.GetString("token")
	if token == "" && !dryRun {
		return fmt.Errorf("GitHub token required. Set GITHUB_TOKEN or use --token flag")
	}

	// Validation runs before any mutating operation.
	v, err := validateTriggerTag(sourceTag, verbose)
	if err != nil {
		return err
	}

	cfg := pipeline.Config{
		Repo:             model.ParseRepoRef(repoFull),
		RepoPath:         viper.GetString("repo-path"),
		Image:            viper.GetString("run.image"),
		CommunityImage:   viper.GetString("run.community-image"),
		Platforms:        viper.GetStringSlice("run.platforms"),
		ManifestPaths:    viper.GetStringSlice("run.manifests"),
		DistDir:          viper.GetString("run.dist-dir"),
		TapRepo:          model.ParseRepoRef(viper.GetString("run.tap-repo")),
		Token:            token,
		TapToken:         viper.GetString("run.tap-token"),
		Registry:         viper.GetString("run.registry"),
		RegistryUser:     viper.GetString("run.registry-user"),
		RegistryPassword: viper.GetString("run.registry-password"),
		CosignKey:        viper.GetString("run.cosign-key"),
		CosignPassword:   viper.GetString("run.cosign-password"),
		Draft:            viper.GetBool("run.draft"),
		DryRun:           dryRun,
		Verbose:          verbose,
	}

	pub := publisher.New(token, cfg.Repo)
	orch := pipeline.NewOrchestrator(cfg, v.spec, v.repo, pub)

	if verbose {
		fmt.Fprintf(os.Stderr, "Releasing %s on %s\n", v.spec.ReleaseTag, v.spec.Branch)
	}

	result := orch.Pipeline().Execute(ctx)
	result.DryRun = dryRun
	result.Spec = v.spec
	result.ReleaseURL = orch.ReleaseURL()

	formatter := report.ForFormat(viper.GetString("format"))
	output, err := formatter.FormatRunResult(result)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	fmt.Print(output)

	if !result.Succeeded() {
		return fmt.Errorf("release pipeline failed: %s", result.Error)
	}
	return nil
}

// newValidationResult fills the shared fields of a validation result.
func newValidationResult() *model.ValidationResult {
	return &model.ValidationResult{Timestamp: time.Now()}
}
