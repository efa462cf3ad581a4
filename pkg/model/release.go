package model

import "time"

// ReleaseSpec holds everything derived from a trigger tag. It is computed once
// at pipeline start and read-only afterwards.
type ReleaseSpec struct {
	SourceTag  string `json:"sourceTag"`           // e.g. "release-v2.4.0"
	Version    string `json:"version"`             // e.g. "2.4.0" or "2.4.0-rc1"
	Branch     string `json:"branch"`              // e.g. "release-2.4"
	ReleaseTag string `json:"releaseTag"`          // e.g. "v2.4.0"
	Prerelease bool   `json:"prerelease"`          // true for -rcN versions
	Notes      string `json:"notes,omitempty"`     // release notes from the annotated tag
	TargetSHA  string `json:"targetSha,omitempty"` // branch head after version commits
}

// Release represents a published GitHub release.
type Release struct {
	ID          int64     `json:"id"`
	TagName     string    `json:"tagName"`
	Name        string    `json:"name"`
	Body        string    `json:"body,omitempty"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	CreatedAt   time.Time `json:"createdAt"`
	PublishedAt time.Time `json:"publishedAt"`
	HTMLURL     string    `json:"htmlUrl"`
	Repo        RepoRef   `json:"repo"`
}

// ReleaseRequest contains the information needed to create a new release.
type ReleaseRequest struct {
	Repo            RepoRef `json:"repo"`
	TagName         string  `json:"tagName"`
	TargetCommitish string  `json:"targetCommitish,omitempty"` // Branch or commit SHA
	Name            string  `json:"name"`
	Body            string  `json:"body"`
	Draft           bool    `json:"draft"`
	Prerelease      bool    `json:"prerelease"`
}

// Artifact describes a file produced by the pipeline for upload to a release.
type Artifact struct {
	Path  string `json:"path"`
	Label string `json:"label,omitempty"`
}
