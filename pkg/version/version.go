// Package version parses release versions and range constraints and
// decides ordering and set relationships between them.
package version

import (
	"github.com/blang/semver/v4"

	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
)

var (
	// ErrInvalidVersion indicates a malformed release version string
	ErrInvalidVersion = errors.New("invalid version")

	// ErrInvalidConstraint indicates a malformed constraint string
	ErrInvalidConstraint = errors.New("invalid constraint")
)

// Comparison is the outcome of ordering two release versions
type Comparison int

const (
	// Older means the first version sorts before the second
	Older Comparison = iota - 1
	// Same means both versions have equal precedence
	Same
	// Newer means the first version sorts after the second
	Newer
)

func (c Comparison) String() string {
	switch c {
	case Newer:
		return "newer"
	case Older:
		return "older"
	default:
		return "same"
	}
}

// Parse parses a release version string.
//
// Parsing is tolerant about abbreviated versions ("1", "1.2") and a
// leading "v", but never guesses at otherwise malformed input.
func Parse(s string) (semver.Version, error) {
	if s == "" {
		return semver.Version{}, ErrInvalidVersion.WrapMessage("version string is empty")
	}
	v, err := semver.ParseTolerant(s)
	if err != nil {
		return semver.Version{}, ErrInvalidVersion.WrapMessage("%q: %v", s, err)
	}
	return v, nil
}

// Compare orders two release version strings.
//
// Precedence follows semver rules: numeric segment comparison, with
// pre-release sorting before the release. Build metadata is ignored, so
// versions differing only in metadata compare as Same.
func Compare(a, b string) (Comparison, error) {
	va, err := Parse(a)
	if err != nil {
		return Same, err
	}
	vb, err := Parse(b)
	if err != nil {
		return Same, err
	}
	return Comparison(va.Compare(vb)), nil
}

// IsValid reports whether s parses as a release version
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}
