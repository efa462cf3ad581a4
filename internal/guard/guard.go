// Package guard performs the read-only conflict checks that must pass
// before the pipeline writes anything.
package guard

import (
	"fmt"
	"strings"

	"github.com/grokify/releaseconductor/internal/semver"
	"github.com/grokify/releaseconductor/internal/trigger"
	"github.com/grokify/releaseconductor/pkg/model"
)

// Check inspects the full tag list of the repository and fails when another
// release for the same major.minor series is in flight, or when the release
// tag itself already exists. Series matching is structural (parsed versions),
// so 2.4 never collides with 2.40.
func Check(spec *model.ReleaseSpec, tags []string) error {
	target, err := semver.Parse(spec.Version)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedVersion, err)
	}

	for _, tag := range tags {
		if tag == spec.ReleaseTag {
			return fmt.Errorf("%w: tag %s already exists", model.ErrReleaseExists, spec.ReleaseTag)
		}

		if !strings.HasPrefix(tag, trigger.Prefix) {
			continue
		}

		v, err := semver.Parse(strings.TrimPrefix(tag, trigger.Prefix))
		if err != nil {
			continue
		}
		// The run's own trigger tag compares equal and is not a conflict.
		if semver.SameSeries(v, target) && v.Compare(target) != 0 {
			return fmt.Errorf("%w: found trigger tag %s for branch %s", model.ErrConcurrentRelease, tag, spec.Branch)
		}
	}

	return nil
}
