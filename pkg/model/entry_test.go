package model

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleEntry = `{
  "name": "kaizen",
  "version": "1.2.0",
  "kamiwaza_version": ">=0.8.0,<1.0.0",
  "description": "Process automation",
  "image": "registry.example.com/kaizen:1.2.0",
  "risk_tier": 1,
  "ports": [8080, 8443]
}`

func TestEntryRoundTrip(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(sampleEntry), &e))

	assert.Equal(t, "kaizen", e.Name)
	assert.Equal(t, "1.2.0", e.Version)
	assert.Equal(t, ">=0.8.0,<1.0.0", e.KamiwazaVersion)

	// opaque payload preserved untouched
	assert.Contains(t, e.Payload, "description")
	assert.Contains(t, e.Payload, "risk_tier")
	assert.JSONEq(t, `[8080, 8443]`, string(e.Payload["ports"]))

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, sampleEntry, string(out))
}

func TestEntryMarshalDeterministic(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(sampleEntry), &e))

	first, err := json.Marshal(e)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(e)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestEntryWithoutConstraint(t *testing.T) {
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(`{"name":"app","version":"1.0.0"}`), &e))
	assert.Empty(t, e.KamiwazaVersion)

	out, err := json.Marshal(e)
	require.NoError(t, err)
	// kamiwaza_version must not be invented on output
	assert.NotContains(t, string(out), "kamiwaza_version")
}

func TestEntryKey(t *testing.T) {
	a := Entry{Name: "app", Version: "1.0.0", KamiwazaVersion: ">=0.8.0"}
	b := Entry{Name: "app", Version: "1.0.0", KamiwazaVersion: ">=0.9.0"}
	assert.NotEqual(t, a.Key(), b.Key())
	assert.Equal(t, a.Key(), Entry{Name: "app", Version: "1.0.0", KamiwazaVersion: ">=0.8.0"}.Key())
}

func TestDecodeCatalogLayouts(t *testing.T) {
	array := `[{"name":"a","version":"1.0.0"},{"name":"b","version":"2.0.0"}]`
	entries, err := DecodeCatalog([]byte(array))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	envelope := `{"entries":[{"name":"a","version":"1.0.0"}]}`
	entries, err = DecodeCatalog([]byte(envelope))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name)

	_, err = DecodeCatalog([]byte(`{"entries": 42}`))
	require.Error(t, err)
}

func TestReadCatalogMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	entries, err := ReadCatalog(fs, "nowhere/apps.json")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteReadCatalog(t *testing.T) {
	fs := afero.NewMemMapFs()
	in := []Entry{
		{Name: "a", Version: "1.0.0", KamiwazaVersion: ">=0.8.0"},
		{Name: "b", Version: "2.0.0", Payload: map[string]json.RawMessage{"description": json.RawMessage(`"two"`)}},
	}
	require.NoError(t, WriteCatalog(fs, "garden/v2/apps.json", in))

	out, err := ReadCatalog(fs, "garden/v2/apps.json")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.True(t, in[0].Equal(out[0]))
	assert.True(t, in[1].Equal(out[1]))

	// deterministic bytes across rewrites
	first, err := afero.ReadFile(fs, "garden/v2/apps.json")
	require.NoError(t, err)
	require.NoError(t, WriteCatalog(fs, "garden/v2/apps.json", out))
	second, err := afero.ReadFile(fs, "garden/v2/apps.json")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestValidateEntry(t *testing.T) {
	ok := Entry{Name: "app", Version: "1.0.0", KamiwazaVersion: ">=0.8.0"}
	assert.Empty(t, ValidateEntry(ok, FormatV2))
	assert.Empty(t, ValidateEntry(Entry{Name: "app", Version: "1.0.0"}, FormatV1))

	missing := Entry{}
	errs := ValidateEntry(missing, FormatV2)
	assert.Len(t, errs, 3)

	badVersion := Entry{Name: "app", Version: "nope", KamiwazaVersion: ">=0.8.0"}
	assert.Len(t, ValidateEntry(badVersion, FormatV2), 1)

	badConstraint := Entry{Name: "app", Version: "1.0.0", KamiwazaVersion: "whenever"}
	assert.Len(t, ValidateEntry(badConstraint, FormatV2), 1)

	// v1 does not require a constraint
	assert.Empty(t, ValidateEntry(Entry{Name: "app", Version: "1.0.0"}, FormatV1))
}

func TestParseFormat(t *testing.T) {
	for in, expected := range map[string]FormatVersion{"v1": FormatV1, "default": FormatV1, "v2": FormatV2} {
		f, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, expected, f)
	}
	_, err := ParseFormat("v3")
	require.Error(t, err)
}

func TestFormatDirs(t *testing.T) {
	assert.Equal(t, "default", FormatV1.GardenDir())
	assert.Equal(t, "v2", FormatV2.GardenDir())
	assert.Equal(t, "app-garden-images", FormatV1.ImagesDir())
	assert.Equal(t, "images", FormatV2.ImagesDir())
}

func TestLockRoundTrip(t *testing.T) {
	in := LockDescriptor{Owner: "ci-1234", Hostname: "runner-7", PID: 4242}
	data, err := MarshalLock(in)
	require.NoError(t, err)

	out, err := UnmarshalLock(data)
	require.NoError(t, err)
	assert.Equal(t, in.Owner, out.Owner)
	assert.Equal(t, in.Hostname, out.Hostname)
	assert.Equal(t, in.PID, out.PID)

	_, err = UnmarshalLock([]byte("not json"))
	require.Error(t, err)
}
