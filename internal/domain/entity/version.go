package entity

import (
	"strconv"
	"strings"

	errs "github.com/amirhossein-jamali/graph-migrator/internal/domain/error"
)

// VersionDelimiter separates the numeric components of a version string
const VersionDelimiter = "."

// Version is a parsed migration version such as "1", "0001" or "0.20.3".
// Ordering is numeric per component, never lexicographic, so "0.20.0"
// sorts after "0.3.0". The original string is preserved for persistence.
type Version struct {
	raw        string
	components []int
}

// ParseVersion parses a dotted version string into its numeric components.
// Returns ErrMalformedVersion when any component is not a non-negative integer.
func ParseVersion(raw string) (Version, error) {
	split := strings.Split(raw, VersionDelimiter)
	components := make([]int, len(split))
	for i, part := range split {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, errs.NewMalformedVersionError(raw, part)
		}
		components[i] = n
	}
	return Version{raw: raw, components: components}, nil
}

// MustParseVersion parses a version string and panics on failure.
// Intended for registering procedural migrations with literal versions.
func MustParseVersion(raw string) Version {
	v, err := ParseVersion(raw)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 ordering v against other. Components are
// compared numerically left to right; when one sequence is a prefix of the
// other, the shorter orders first.
func (v Version) Compare(other Version) int {
	for i := 0; i < len(v.components) && i < len(other.components); i++ {
		switch {
		case v.components[i] < other.components[i]:
			return -1
		case v.components[i] > other.components[i]:
			return 1
		}
	}
	switch {
	case len(v.components) < len(other.components):
		return -1
	case len(v.components) > len(other.components):
		return 1
	default:
		return 0
	}
}

// Less reports whether v orders strictly before other
func (v Version) Less(other Version) bool {
	return v.Compare(other) < 0
}

// Equal reports whether both versions parse to the same numeric sequence
func (v Version) Equal(other Version) bool {
	return v.Compare(other) == 0
}

// IsZero reports whether v is the zero value rather than a parsed version
func (v Version) IsZero() bool {
	return v.components == nil
}

// String returns the version string exactly as it was parsed
func (v Version) String() string {
	return v.raw
}
