package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/grokify/releaseconductor/internal/execx"
	"github.com/grokify/releaseconductor/internal/gitrepo"
	"github.com/grokify/releaseconductor/internal/manifest"
	"github.com/grokify/releaseconductor/internal/publisher"
	"github.com/grokify/releaseconductor/pkg/model"
)

// ChecksumsFile is the name of the checksum list generated over the CLI
// binaries before signing.
const ChecksumsFile = "cli_checksums.txt"

// Config holds everything the release stages need. Secrets are opaque
// strings injected by the caller and never logged.
type Config struct {
	Repo     model.RepoRef // repository being released
	RepoPath string        // local clone path

	Image          string   // namespaced image repo, e.g. quay.io/example/controller
	CommunityImage string   // community alias, e.g. ghcr.io/example-community/controller
	Platforms      []string // build platforms, e.g. linux/amd64, linux/arm64
	ManifestPaths  []string // install manifests to retag, relative to the repo
	DistDir        string   // output directory for binaries, checksums, SBOM

	TapRepo model.RepoRef // package-index repository to notify

	Token            string // release-host token
	TapToken         string // package-index token
	Registry         string // registry host for docker login
	RegistryUser     string
	RegistryPassword string
	CosignKey        string // signing key reference
	CosignPassword   string // signing key passphrase

	Draft   bool
	DryRun  bool
	Verbose bool
}

// Orchestrator builds the concrete stage list for a release run.
type Orchestrator struct {
	cfg  Config
	spec *model.ReleaseSpec
	repo *gitrepo.Repo
	pub  publisher.Publisher
	run  *execx.Runner
	log  io.Writer

	releaseID  int64
	releaseURL string
}

// NewOrchestrator wires the stage dependencies together.
func NewOrchestrator(cfg Config, spec *model.ReleaseSpec, repo *gitrepo.Repo, pub publisher.Publisher) *Orchestrator {
	run := execx.New(cfg.RepoPath, cfg.DryRun, cfg.Verbose)
	if cfg.CosignPassword != "" {
		run.Env["COSIGN_PASSWORD"] = cfg.CosignPassword
	}
	return &Orchestrator{
		cfg:  cfg,
		spec: spec,
		repo: repo,
		pub:  pub,
		run:  run,
		log:  os.Stderr,
	}
}

// ReleaseURL returns the URL of the created release, once known.
func (o *Orchestrator) ReleaseURL() string {
	return o.releaseURL
}

// Pipeline assembles the ordered stage list with the trigger-tag cleanup as
// the always-run stage.
func (o *Orchestrator) Pipeline() *Pipeline {
	stages := []Stage{
		{Name: "checkout-branch", Run: o.checkoutBranch},
		{Name: "write-version", Skip: o.skipDryRun, Run: o.writeVersion},
		{Name: "regenerate-manifests", Skip: o.skipDryRun, Run: o.regenerateManifests},
		{Name: "tag-release", Skip: o.skipDryRun, Run: o.tagRelease},
		{Name: "registry-login", Skip: o.skipDryRun, Run: o.registryLogin},
		{Name: "build-image", Skip: o.skipDryRun, Run: o.buildImage},
		{Name: "build-cli", Skip: o.skipDryRun, Run: o.buildCLI},
		{Name: "sign-artifacts", Skip: o.skipDryRun, Run: o.signArtifacts},
		{Name: "push-branch-and-tag", Skip: o.skipDryRun, Run: o.pushBranchAndTag},
		{Name: "create-release", Skip: o.skipDryRun, Run: o.createRelease},
		{Name: "generate-sbom", Skip: o.skipDryRun, Run: o.generateSBOM},
		{Name: "upload-assets", Skip: o.skipDryRun, Run: o.uploadAssets},
		{Name: "notify-package-index", Skip: o.skipNotify, Run: o.notifyPackageIndex},
	}

	p := New(stages, &Stage{Name: "delete-trigger-tag", Run: o.deleteTriggerTag})
	p.Verbose = o.cfg.Verbose
	return p
}

func (o *Orchestrator) skipDryRun() (bool, string) {
	if o.cfg.DryRun {
		return true, "dry-run"
	}
	return false, ""
}

func (o *Orchestrator) skipNotify() (bool, string) {
	if o.cfg.DryRun {
		return true, "dry-run"
	}
	if o.spec.Prerelease {
		return true, "prerelease"
	}
	if o.cfg.TapToken == "" || o.cfg.TapRepo.Name == "" {
		return true, "no package-index credentials"
	}
	return false, ""
}

func (o *Orchestrator) checkoutBranch(ctx context.Context) error {
	return o.repo.CheckoutBranch(ctx, o.spec.Branch)
}

func (o *Orchestrator) writeVersion(ctx context.Context) error {
	if err := manifest.WriteVersion(o.cfg.RepoPath, o.spec.Version); err != nil {
		return err
	}
	_, err := o.repo.CommitAll(ctx, "Bump version to "+o.spec.Version)
	return err
}

func (o *Orchestrator) regenerateManifests(ctx context.Context) error {
	if len(o.cfg.ManifestPaths) > 0 {
		err := manifest.Regenerate(o.cfg.RepoPath, o.cfg.Image, o.spec.ReleaseTag, o.cfg.ManifestPaths)
		if err != nil {
			return err
		}
		if _, err := o.repo.CommitAll(ctx, "Regenerate manifests for "+o.spec.ReleaseTag); err != nil {
			return err
		}
	}

	sha, err := o.repo.HeadSHA()
	if err != nil {
		return err
	}
	o.spec.TargetSHA = sha
	return nil
}

func (o *Orchestrator) tagRelease(ctx context.Context) error {
	return o.repo.CreateAnnotatedTag(ctx, o.spec.ReleaseTag, o.spec.ReleaseTag+"\n\n"+o.spec.Notes)
}

func (o *Orchestrator) registryLogin(ctx context.Context) error {
	_, err := o.run.RunWithInput(ctx, o.cfg.RegistryPassword,
		"docker", "login", o.cfg.Registry, "--username", o.cfg.RegistryUser, "--password-stdin")
	return err
}

func (o *Orchestrator) buildImage(ctx context.Context) error {
	args := []string{
		"buildx", "build",
		"--platform", strings.Join(o.cfg.Platforms, ","),
		"--push",
		"-t", o.cfg.Image + ":" + o.spec.ReleaseTag,
	}
	if o.cfg.CommunityImage != "" {
		args = append(args, "-t", o.cfg.CommunityImage+":"+o.spec.ReleaseTag)
	}
	args = append(args, ".")

	_, err := o.run.Run(ctx, "docker", args...)
	return err
}

func (o *Orchestrator) buildCLI(ctx context.Context) error {
	_, err := o.run.Run(ctx, "make", "release-cli", "VERSION="+o.spec.Version, "DIST_DIR="+o.cfg.DistDir)
	if err != nil {
		return err
	}
	return writeChecksums(o.cfg.DistDir)
}

func (o *Orchestrator) signArtifacts(ctx context.Context) error {
	if _, err := o.run.Run(ctx, "cosign", "sign", "--key", o.cfg.CosignKey, "--yes",
		o.cfg.Image+":"+o.spec.ReleaseTag); err != nil {
		return err
	}

	checksums := filepath.Join(o.cfg.DistDir, ChecksumsFile)
	if _, err := o.run.Run(ctx, "cosign", "sign-blob", "--key", o.cfg.CosignKey, "--yes",
		"--output-signature", checksums+".sig", checksums); err != nil {
		return err
	}

	_, err := o.run.Run(ctx, "cosign", "public-key", "--key", o.cfg.CosignKey,
		"--outfile", filepath.Join(o.cfg.DistDir, "cosign.pub"))
	return err
}

func (o *Orchestrator) pushBranchAndTag(ctx context.Context) error {
	return o.repo.PushBranchAndTag(ctx, o.cfg.Token, o.spec.Branch, o.spec.ReleaseTag)
}

func (o *Orchestrator) createRelease(ctx context.Context) error {
	created, err := o.pub.CreateRelease(ctx, &model.ReleaseRequest{
		Repo:            o.cfg.Repo,
		TagName:         o.spec.ReleaseTag,
		TargetCommitish: o.spec.Branch,
		Name:            o.spec.ReleaseTag,
		Body:            o.spec.Notes,
		Draft:           o.cfg.Draft,
		Prerelease:      o.spec.Prerelease,
	})
	if err != nil {
		return err
	}

	o.releaseID = created.ID
	o.releaseURL = created.HTMLURL
	return nil
}

func (o *Orchestrator) generateSBOM(ctx context.Context) error {
	sbomJSON := filepath.Join(o.cfg.DistDir, "sbom.spdx.json")
	if _, err := o.run.Run(ctx, "syft", "scan", "dir:.", "-o", "spdx-json="+sbomJSON); err != nil {
		return err
	}

	if _, err := o.run.Run(ctx, "tar", "-C", o.cfg.DistDir, "-czf",
		filepath.Join(o.cfg.DistDir, "sbom.tar.gz"), "sbom.spdx.json"); err != nil {
		return err
	}

	sbom := filepath.Join(o.cfg.DistDir, "sbom.tar.gz")
	_, err := o.run.Run(ctx, "cosign", "sign-blob", "--key", o.cfg.CosignKey, "--yes",
		"--output-signature", sbom+".sig", sbom)
	return err
}

func (o *Orchestrator) uploadAssets(ctx context.Context) error {
	assets, err := collectAssets(o.cfg.DistDir)
	if err != nil {
		return err
	}
	return o.pub.UploadAssets(ctx, o.releaseID, assets)
}

func (o *Orchestrator) notifyPackageIndex(ctx context.Context) error {
	return o.pub.Dispatch(ctx, o.cfg.TapRepo, "release", map[string]string{
		"version": o.spec.ReleaseTag,
	})
}

// deleteTriggerTag removes the trigger tag on the remote. It runs even when
// a prior stage failed so no dangling trigger survives the run.
func (o *Orchestrator) deleteTriggerTag(ctx context.Context) error {
	if o.cfg.DryRun {
		if o.cfg.Verbose {
			fmt.Fprintf(o.log, "dry-run: would delete remote tag %s\n", o.spec.SourceTag)
		}
		return nil
	}

	err := o.repo.DeleteRemoteTag(ctx, o.cfg.Token, o.spec.SourceTag)
	if err == nil {
		return nil
	}

	// API fallback when no usable local remote exists.
	if apiErr := o.pub.DeleteTagRef(ctx, o.spec.SourceTag); apiErr != nil {
		return fmt.Errorf("push delete failed (%v); api delete failed: %w", err, apiErr)
	}
	return nil
}

// writeChecksums writes a sha256 list over the regular files in distDir.
func writeChecksums(distDir string) error {
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return fmt.Errorf("failed to read dist dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() && e.Name() != ChecksumsFile {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		f, err := os.Open(filepath.Join(distDir, name)) // #nosec G304
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", name, err)
		}
		h := sha256.New()
		_, err = io.Copy(h, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("failed to hash %s: %w", name, err)
		}
		sb.WriteString(fmt.Sprintf("%x  %s\n", h.Sum(nil), name))
	}

	return os.WriteFile(filepath.Join(distDir, ChecksumsFile), []byte(sb.String()), 0600)
}

// collectAssets lists the files in distDir for upload.
func collectAssets(distDir string) ([]model.Artifact, error) {
	entries, err := os.ReadDir(distDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read dist dir: %w", err)
	}

	var assets []model.Artifact
	for _, e := range entries {
		if e.Type().IsRegular() {
			assets = append(assets, model.Artifact{Path: filepath.Join(distDir, e.Name())})
		}
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Path < assets[j].Path })
	return assets, nil
}
