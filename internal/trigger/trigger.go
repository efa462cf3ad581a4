// Package trigger validates the tag that starts a release run and derives
// the branch, version, and release tag from it.
package trigger

import (
	"fmt"
	"strings"

	"github.com/grokify/releaseconductor/internal/semver"
	"github.com/grokify/releaseconductor/pkg/model"
)

// Prefix is the fixed prefix a trigger tag must carry, e.g. "release-v2.4.0".
const Prefix = "release-v"

// Parse validates a trigger tag and derives the release spec from it.
// It must run before any mutating operation.
func Parse(sourceTag string) (*model.ReleaseSpec, error) {
	if !strings.HasPrefix(sourceTag, Prefix) {
		return nil, fmt.Errorf("%w: tag %q does not start with %q", model.ErrMalformedVersion, sourceTag, Prefix)
	}

	version := strings.TrimPrefix(sourceTag, Prefix)
	if !semver.IsReleaseVersion(version) {
		return nil, fmt.Errorf("%w: %q is not of the form major.minor.patch[-rcN]", model.ErrMalformedVersion, version)
	}

	v, err := semver.Parse(version)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrMalformedVersion, err)
	}

	return &model.ReleaseSpec{
		SourceTag:  sourceTag,
		Version:    version,
		Branch:     "release-" + v.Series(),
		ReleaseTag: "v" + version,
		Prerelease: strings.Contains(version, "-rc"),
	}, nil
}
