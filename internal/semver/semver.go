package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Version represents a semantic version.
type Version struct {
	Major      int
	Minor      int
	Patch      int
	Prerelease string
	Prefix     string // "v" or empty
}

// releasePattern is the strict grammar accepted for release versions:
// major.minor.patch with zero or more -rcN suffixes.
var releasePattern = regexp.MustCompile(`^\d+\.\d+\.\d+(-rc\d+)*$`)

// Parse parses a version string into a Version struct.
func Parse(v string) (*Version, error) {
	ver := &Version{}

	// Check for 'v' prefix
	if strings.HasPrefix(v, "v") {
		ver.Prefix = "v"
		v = strings.TrimPrefix(v, "v")
	}

	// Split on '-' for prerelease
	if idx := strings.Index(v, "-"); idx >= 0 {
		ver.Prerelease = v[idx+1:]
		v = v[:idx]
	}

	// Parse major.minor.patch
	parts := strings.Split(v, ".")
	if len(parts) < 1 {
		return nil, fmt.Errorf("invalid version format: %s", v)
	}

	var err error

	ver.Major, err = strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid major version: %s", parts[0])
	}

	if len(parts) >= 2 {
		ver.Minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return nil, fmt.Errorf("invalid minor version: %s", parts[1])
		}
	}

	if len(parts) >= 3 {
		ver.Patch, err = strconv.Atoi(parts[2])
		if err != nil {
			return nil, fmt.Errorf("invalid patch version: %s", parts[2])
		}
	}

	return ver, nil
}

// String returns the version as a string.
func (v *Version) String() string {
	s := fmt.Sprintf("%s%d.%d.%d", v.Prefix, v.Major, v.Minor, v.Patch)
	if v.Prerelease != "" {
		s += "-" + v.Prerelease
	}
	return s
}

// Series returns the major.minor release series, e.g. "2.4".
func (v *Version) Series() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare compares two versions.
// Returns -1 if v < other, 0 if v == other, 1 if v > other.
func (v *Version) Compare(other *Version) int {
	if v.Major != other.Major {
		if v.Major < other.Major {
			return -1
		}
		return 1
	}

	if v.Minor != other.Minor {
		if v.Minor < other.Minor {
			return -1
		}
		return 1
	}

	if v.Patch != other.Patch {
		if v.Patch < other.Patch {
			return -1
		}
		return 1
	}

	// Prerelease versions have lower precedence
	if v.Prerelease != "" && other.Prerelease == "" {
		return -1
	}
	if v.Prerelease == "" && other.Prerelease != "" {
		return 1
	}

	return strings.Compare(v.Prerelease, other.Prerelease)
}

// SameSeries reports whether two versions share the same major.minor pair.
// Comparison is structural, so 2.4 and 2.40 never collide.
func SameSeries(a, b *Version) bool {
	return a.Major == b.Major && a.Minor == b.Minor
}

// IsReleaseVersion checks a string against the strict release grammar.
func IsReleaseVersion(s string) bool {
	return releasePattern.MatchString(s)
}
