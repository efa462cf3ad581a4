package guard

import (
	"errors"
	"testing"

	"github.com/grokify/releaseconductor/internal/trigger"
	"github.com/grokify/releaseconductor/pkg/model"
)

func mustSpec(t *testing.T, sourceTag string) *model.ReleaseSpec {
	t.Helper()
	spec, err := trigger.Parse(sourceTag)
	if err != nil {
		t.Fatalf("trigger.Parse(%q): %v", sourceTag, err)
	}
	return spec
}

func TestCheckClean(t *testing.T) {
	spec := mustSpec(t, "release-v2.4.0")
	tags := []string{"v2.3.0", "v2.3.1", "release-v2.4.0", "release-v2.3.1"}

	if err := Check(spec, tags); err != nil {
		t.Errorf("Check returned error: %v", err)
	}
}

func TestCheckConcurrentRelease(t *testing.T) {
	spec := mustSpec(t, "release-v2.4.0")
	tags := []string{"release-v2.4.1"}

	err := Check(spec, tags)
	if !errors.Is(err, model.ErrConcurrentRelease) {
		t.Errorf("Check error = %v, want ErrConcurrentRelease", err)
	}
}

func TestCheckReleaseExists(t *testing.T) {
	spec := mustSpec(t, "release-v2.4.0")
	tags := []string{"v2.4.0"}

	err := Check(spec, tags)
	if !errors.Is(err, model.ErrReleaseExists) {
		t.Errorf("Check error = %v, want ErrReleaseExists", err)
	}
}

func TestCheckDistinctSeries(t *testing.T) {
	// Lexically overlapping series must not trip the guard.
	spec := mustSpec(t, "release-v2.4.0")
	tags := []string{"release-v2.40.1", "v2.40.0"}

	if err := Check(spec, tags); err != nil {
		t.Errorf("Check returned error for distinct series: %v", err)
	}
}

func TestCheckConcurrentCandidateSameSeries(t *testing.T) {
	// A candidate for the same series is a different version and conflicts.
	spec := mustSpec(t, "release-v2.4.0")
	tags := []string{"release-v2.4.0-rc1"}

	err := Check(spec, tags)
	if !errors.Is(err, model.ErrConcurrentRelease) {
		t.Errorf("Check error = %v, want ErrConcurrentRelease", err)
	}
}

func TestCheckIgnoresUnparsableTags(t *testing.T) {
	spec := mustSpec(t, "release-v2.4.0")
	tags := []string{"release-vnext", "nightly-2024", "release-v2.4.0"}

	if err := Check(spec, tags); err != nil {
		t.Errorf("Check returned error: %v", err)
	}
}
