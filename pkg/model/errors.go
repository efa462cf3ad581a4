package model

import "errors"

// Sentinel errors for the release pipeline. All of them are fatal: the run
// aborts on the first one encountered and only the cleanup stage still fires.
// Check with errors.Is.

// ErrMalformedVersion is returned when the trigger tag does not yield a
// version matching major.minor.patch with optional -rcN suffixes.
var ErrMalformedVersion = errors.New("malformed version")

// ErrConcurrentRelease is returned when another tag for the same
// major.minor series exists that is not the version being released.
var ErrConcurrentRelease = errors.New("concurrent release in progress")

// ErrReleaseExists is returned when the release tag already resolves to a
// commit in the repository.
var ErrReleaseExists = errors.New("release already exists")

// ErrMissingAnnotation is returned when the trigger tag carries no
// annotation body to extract release notes from.
var ErrMissingAnnotation = errors.New("missing tag annotation")

// ErrInvalidReleaseNotes is returned when the annotation body is too short
// or lacks the required quick-start section near the top.
var ErrInvalidReleaseNotes = errors.New("invalid release notes")

// ErrBranchNotFound is returned when the derived release branch does not
// exist in the repository.
var ErrBranchNotFound = errors.New("release branch not found")

// ErrExternalTool is returned when an external command (docker, cosign,
// syft, git push) exits non-zero.
var ErrExternalTool = errors.New("external tool failed")
