package model

import (
	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
	"github.com/kamiwaza-ai/garden-registry/pkg/version"
)

// ErrValidation indicates an entry failing schema or field checks
var ErrValidation = errors.New("validation failed")

// ValidateEntry checks one entry against the catalog format rules.
// All problems are collected so a batch reports every error at once.
func ValidateEntry(e Entry, format FormatVersion) []error {
	var errs []error

	if e.Name == "" {
		errs = append(errs, ErrValidation.WrapMessage("missing required field %q", fieldName))
	}
	if e.Version == "" {
		errs = append(errs, ErrValidation.WrapMessage("missing required field %q", fieldVersion))
	} else if _, err := version.Parse(e.Version); err != nil {
		errs = append(errs, ErrValidation.Wrap(err))
	}

	if format == FormatV2 {
		if e.KamiwazaVersion == "" {
			errs = append(errs, ErrValidation.WrapMessage("%s catalog requires field %q", format, fieldKamiwazaVersion))
		} else if _, err := version.ParseConstraint(e.KamiwazaVersion); err != nil {
			errs = append(errs, ErrValidation.Wrap(err))
		}
	}
	return errs
}

// ValidateCatalog validates every entry, prefixing errors with the
// entry position so operators can locate the offending record.
func ValidateCatalog(entries []Entry, kind Kind, format FormatVersion) []error {
	var errs []error
	for i, e := range entries {
		for _, err := range ValidateEntry(e, format) {
			errs = append(errs, errors.Newf("%s[%d]", kind.File(), i).Wrap(err))
		}
	}
	return errs
}
