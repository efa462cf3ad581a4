package notes

import (
	"errors"
	"strings"
	"testing"

	"github.com/grokify/releaseconductor/pkg/model"
)

const sourceTag = "release-v2.4.0"

// tagShow builds a plausible `git show` output for an annotated tag.
func tagShow(body string) string {
	return strings.Join([]string{
		"tag " + sourceTag,
		"Tagger: Release Bot <bot@example.com>",
		"Date:   Mon Aug 24 10:00:00 2026 +0000",
		"",
		body,
		"commit 0a1b2c3d4e5f60718293a4b5c6d7e8f901234567",
		"Author: Someone <someone@example.com>",
		"",
		"    fix: last commit on branch",
	}, "\n")
}

func validBody() string {
	return strings.Join([]string{
		"## Quick Start",
		"",
		"Install with `kubectl apply -f install.yaml` and point it at your",
		"cluster. This release fixes sync drift and upgrades the bundled CLI.",
	}, "\n")
}

func TestExtractWellFormed(t *testing.T) {
	body := validBody()
	got, err := Extract(tagShow(body), sourceTag)
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if got != body {
		t.Errorf("Extract = %q, want body verbatim %q", got, body)
	}
	if strings.Contains(got, "commit ") {
		t.Error("extracted notes must exclude the commit header and after")
	}
}

func TestExtractMarkerCaseInsensitive(t *testing.T) {
	body := strings.Replace(validBody(), "## Quick Start", "## QUICK START", 1)
	if _, err := Extract(tagShow(body), sourceTag); err != nil {
		t.Errorf("Extract returned error for upper-case marker: %v", err)
	}
}

func TestExtractTooShort(t *testing.T) {
	_, err := Extract(tagShow("## Quick Start\nshort."), sourceTag)
	if !errors.Is(err, model.ErrInvalidReleaseNotes) {
		t.Errorf("Extract error = %v, want ErrInvalidReleaseNotes", err)
	}
}

func TestExtractMarkerMissing(t *testing.T) {
	body := strings.Join([]string{
		"Highlights of this release, with plenty of text to clear the length",
		"threshold but no quick-start heading anywhere near the top at all.",
		"## Quick Start appears too late to count for the structural check.",
	}, "\n")

	_, err := Extract(tagShow(body), sourceTag)
	if !errors.Is(err, model.ErrInvalidReleaseNotes) {
		t.Errorf("Extract error = %v, want ErrInvalidReleaseNotes", err)
	}
}

func TestExtractNoAnnotation(t *testing.T) {
	// Lightweight tag: show output starts directly at the commit.
	out := strings.Join([]string{
		"commit 0a1b2c3d4e5f60718293a4b5c6d7e8f901234567",
		"Author: Someone <someone@example.com>",
	}, "\n")

	_, err := Extract(out, sourceTag)
	if !errors.Is(err, model.ErrMissingAnnotation) {
		t.Errorf("Extract error = %v, want ErrMissingAnnotation", err)
	}
}

func TestExtractEmptyBody(t *testing.T) {
	out := strings.Join([]string{
		"tag " + sourceTag,
		"Tagger: Release Bot <bot@example.com>",
		"",
		"",
		"commit 0a1b2c3d4e5f60718293a4b5c6d7e8f901234567",
	}, "\n")

	_, err := Extract(out, sourceTag)
	if !errors.Is(err, model.ErrMissingAnnotation) {
		t.Errorf("Extract error = %v, want ErrMissingAnnotation", err)
	}
}

func TestExtractWrongTagIgnored(t *testing.T) {
	// Output for a different tag must not satisfy the seek for ours.
	out := strings.Join([]string{
		"tag release-v2.3.0",
		"Tagger: Release Bot <bot@example.com>",
		"",
		validBody(),
		"commit 0a1b2c3d4e5f60718293a4b5c6d7e8f901234567",
	}, "\n")

	_, err := Extract(out, sourceTag)
	if !errors.Is(err, model.ErrMissingAnnotation) {
		t.Errorf("Extract error = %v, want ErrMissingAnnotation", err)
	}
}
