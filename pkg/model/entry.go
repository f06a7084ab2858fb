// Package model describes the catalog data model: registry entries,
// catalog files, format versions and the publish lock descriptor.
package model

import (
	"bytes"
	"encoding/json"

	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
)

// Well-known entry fields interpreted by the registry core. Everything
// else in an entry is opaque payload and travels untouched.
const (
	fieldName            = "name"
	fieldVersion         = "version"
	fieldKamiwazaVersion = "kamiwaza_version"
)

// ErrInvalidEntry indicates an entry which could not be decoded
var ErrInvalidEntry = errors.New("invalid registry entry")

// Entry is one named, versioned catalog record.
//
// Only the identifying fields are typed. Payload holds every other
// field of the original JSON object, preserved byte-for-byte.
type Entry struct {
	Name            string
	Version         string
	KamiwazaVersion string
	Payload         map[string]json.RawMessage
}

// EntryKey identifies an entry inside a catalog
type EntryKey struct {
	Name       string
	Version    string
	Constraint string
}

// Key returns the identity triple of this entry
func (e Entry) Key() EntryKey {
	return EntryKey{Name: e.Name, Version: e.Version, Constraint: e.KamiwazaVersion}
}

// UnmarshalJSON decodes an entry, keeping unknown fields as raw payload
func (e *Entry) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ErrInvalidEntry.Wrap(err)
	}
	decoded := Entry{Payload: make(map[string]json.RawMessage, len(fields))}
	for k, v := range fields {
		switch k {
		case fieldName:
			if err := json.Unmarshal(v, &decoded.Name); err != nil {
				return ErrInvalidEntry.WrapMessage("field %q: %v", k, err)
			}
		case fieldVersion:
			if err := json.Unmarshal(v, &decoded.Version); err != nil {
				return ErrInvalidEntry.WrapMessage("field %q: %v", k, err)
			}
		case fieldKamiwazaVersion:
			if err := json.Unmarshal(v, &decoded.KamiwazaVersion); err != nil {
				return ErrInvalidEntry.WrapMessage("field %q: %v", k, err)
			}
		default:
			decoded.Payload[k] = v
		}
	}
	*e = decoded
	return nil
}

// MarshalJSON encodes the entry with its payload fields merged back in.
// encoding/json sorts object keys, so the output is deterministic.
func (e Entry) MarshalJSON() ([]byte, error) {
	fields := make(map[string]json.RawMessage, len(e.Payload)+3)
	for k, v := range e.Payload {
		fields[k] = v
	}
	name, err := json.Marshal(e.Name)
	if err != nil {
		return nil, err
	}
	fields[fieldName] = name
	ver, err := json.Marshal(e.Version)
	if err != nil {
		return nil, err
	}
	fields[fieldVersion] = ver
	if e.KamiwazaVersion != "" {
		kv, err := json.Marshal(e.KamiwazaVersion)
		if err != nil {
			return nil, err
		}
		fields[fieldKamiwazaVersion] = kv
	}
	return json.Marshal(fields)
}

// Equal compares two entries including their payload bytes
func (e Entry) Equal(o Entry) bool {
	if e.Key() != o.Key() || len(e.Payload) != len(o.Payload) {
		return false
	}
	for k, v := range e.Payload {
		if !bytes.Equal(v, o.Payload[k]) {
			return false
		}
	}
	return true
}
