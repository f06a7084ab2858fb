package model

import (
	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
)

// FormatVersion selects the catalog rule set
type FormatVersion string

const (
	// FormatV1 is the simple catalog format: one entry per name, no
	// host platform constraints
	FormatV1 FormatVersion = "v1"

	// FormatV2 is the constraint-aware format: entries sharing a name
	// must declare pairwise disjoint kamiwaza_version constraints
	FormatV2 FormatVersion = "v2"
)

// ErrUnknownFormat indicates an unsupported catalog format version
var ErrUnknownFormat = errors.New("unknown catalog format version")

// ParseFormat validates a format version string. "default" is accepted
// as an alias of v1 for compatibility with older registries.
func ParseFormat(s string) (FormatVersion, error) {
	switch s {
	case "v1", "default":
		return FormatV1, nil
	case "v2":
		return FormatV2, nil
	default:
		return "", ErrUnknownFormat.WrapMessage("%q", s)
	}
}

// GardenDir is the registry sub-directory this format publishes under
func (f FormatVersion) GardenDir() string {
	if f == FormatV1 {
		return "default"
	}
	return string(f)
}

// ImagesDir is the preview image asset directory mirrored alongside
// the catalog files. The core never interprets its contents.
func (f FormatVersion) ImagesDir() string {
	if f == FormatV1 {
		return "app-garden-images"
	}
	return "images"
}
