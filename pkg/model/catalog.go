package model

import (
	"bytes"
	"encoding/json"
	"os"
	"path"

	"github.com/spf13/afero"

	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
)

// Kind distinguishes the two catalogs kept side by side in a registry
type Kind string

const (
	// KindApps is the applications catalog
	KindApps Kind = "apps"
	// KindTools is the tools catalog
	KindTools Kind = "tools"
)

// Kinds lists the catalog kinds in their canonical order
func Kinds() []Kind {
	return []Kind{KindApps, KindTools}
}

// File returns the catalog file name for this kind
func (k Kind) File() string {
	return string(k) + ".json"
}

// ErrInvalidCatalog indicates a catalog file which could not be decoded
var ErrInvalidCatalog = errors.New("invalid catalog file")

// catalogEnvelope supports the legacy object layout {"entries": [...]}
type catalogEnvelope struct {
	Entries []Entry `json:"entries"`
}

// DecodeCatalog parses catalog bytes into entries. Both the bare array
// layout and the legacy {"entries": [...]} envelope are accepted.
func DecodeCatalog(data []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var envelope catalogEnvelope
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, ErrInvalidCatalog.Wrap(err)
		}
		return envelope.Entries, nil
	}
	var entries []Entry
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, ErrInvalidCatalog.Wrap(err)
	}
	return entries, nil
}

// EncodeCatalog serializes entries deterministically: sorted object
// keys, two space indentation and a trailing newline, so byte-for-byte
// verification after upload is meaningful.
func EncodeCatalog(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// ReadCatalog loads a catalog file. A missing file is an empty catalog.
func ReadCatalog(fs afero.Fs, filePath string) ([]Entry, error) {
	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	entries, err := DecodeCatalog(data)
	if err != nil {
		return nil, errors.Newf("reading %s", filePath).Wrap(err)
	}
	return entries, nil
}

// WriteCatalog writes a catalog file, creating parent directories
func WriteCatalog(fs afero.Fs, filePath string, entries []Entry) error {
	data, err := EncodeCatalog(entries)
	if err != nil {
		return err
	}
	if dir := path.Dir(filePath); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return afero.WriteFile(fs, filePath, data, 0644)
}
