package core

import (
	"bytes"
	"context"
	"io"
	"path"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamiwaza-ai/garden-registry/pkg/core/status"
	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
	"github.com/kamiwaza-ai/garden-registry/pkg/model"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage/localfs"
)

const testLocalRoot = "build/test-registry"

type fixture struct {
	fs     afero.Fs
	remote storage.Store
}

// newFixture lays out a local registry build and a remote store on one
// in-memory file system
func newFixture(t *testing.T, format model.FormatVersion, apps, tools []model.Entry) fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := path.Join(testLocalRoot, "garden", format.GardenDir())
	if apps != nil {
		require.NoError(t, model.WriteCatalog(fs, path.Join(dir, "apps.json"), apps))
	}
	if tools != nil {
		require.NoError(t, model.WriteCatalog(fs, path.Join(dir, "tools.json"), tools))
	}
	return fixture{fs: fs, remote: localfs.New(fs, "remote")}
}

func (f fixture) registry(opts ...Option) *Registry {
	base := []Option{LocalFS(f.fs), Owner("tester", "testhost", 42)}
	return New(f.remote, testLocalRoot, append(base, opts...)...)
}

func (f fixture) seedRemote(t *testing.T, key string, entries []model.Entry) {
	t.Helper()
	data, err := model.EncodeCatalog(entries)
	require.NoError(t, err)
	require.NoError(t, f.remote.Put(context.Background(), key, bytes.NewReader(data), false))
}

func (f fixture) remoteCatalog(t *testing.T, key string) []model.Entry {
	t.Helper()
	data, err := storage.ReadAll(context.Background(), f.remote, key)
	require.NoError(t, err)
	entries, err := model.DecodeCatalog(data)
	require.NoError(t, err)
	return entries
}

func TestPublishFirstTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "1.0.0", ">=0.9.0")},
		[]model.Entry{entry("tool", "0.1.0", ">=0.8.0")},
	)

	res, err := Publish(ctx, f.registry())
	require.NoError(t, err)
	assert.True(t, res.Uploaded)
	assert.NotEmpty(t, res.BackupDir)

	apps := f.remoteCatalog(t, "apps.json")
	require.Len(t, apps, 1)
	assert.Equal(t, "app", apps[0].Name)
	tools := f.remoteCatalog(t, "tools.json")
	require.Len(t, tools, 1)

	// lock is gone after a successful run
	has, err := f.remote.Has(ctx, model.DefaultLockKey)
	require.NoError(t, err)
	assert.False(t, has)

	// a backup exists even though the remote was empty
	ok, err := afero.DirExists(f.fs, res.BackupDir)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPublishMergesWithRemote(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "1.1.0", ">=0.9.0")},
		nil,
	)
	f.seedRemote(t, "apps.json", []model.Entry{
		entry("app", "1.0.0", ">=0.9.0"),
		entry("other", "2.0.0", ">=0.8.0"),
	})

	res, err := Publish(ctx, f.registry())
	require.NoError(t, err)
	_, replaces, _ := res.Merges[model.KindApps].Counts()
	assert.Equal(t, 1, replaces)

	apps := f.remoteCatalog(t, "apps.json")
	require.Len(t, apps, 2)
	byName := map[string]string{}
	for _, e := range apps {
		byName[e.Name] = e.Version
	}
	assert.Equal(t, "1.1.0", byName["app"])
	assert.Equal(t, "2.0.0", byName["other"])
}

func TestPublishConflictLeavesRemoteUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "1.0.0", ">=0.9.0")},
		nil,
	)
	f.seedRemote(t, "apps.json", []model.Entry{entry("app", "1.0.0", ">=0.9.0")})

	_, err := Publish(ctx, f.registry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrConflict))

	apps := f.remoteCatalog(t, "apps.json")
	require.Len(t, apps, 1)
	assert.Equal(t, "1.0.0", apps[0].Version)

	// conflict aborts before upload, the lock is still released
	has, err := f.remote.Has(ctx, model.DefaultLockKey)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestPublishLockHeld(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "1.0.0", ">=0.9.0")},
		nil,
	)
	desc := model.LockDescriptor{Owner: "ci-123", Hostname: "runner", AcquiredAt: time.Now(), PID: 1}
	data, err := model.MarshalLock(desc)
	require.NoError(t, err)
	require.NoError(t, f.remote.Put(ctx, model.DefaultLockKey, bytes.NewReader(data), false))

	_, err = Publish(ctx, f.registry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrLockHeld))
	assert.Contains(t, err.Error(), "ci-123")

	// the foreign lock is not removed
	has, err := f.remote.Has(ctx, model.DefaultLockKey)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestPlanDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "1.0.0", ">=0.9.0")},
		nil,
	)

	res, err := Plan(ctx, f.registry())
	require.NoError(t, err)
	assert.True(t, res.DryRun)
	assert.False(t, res.Uploaded)
	assert.Empty(t, res.BackupDir)

	// no lock, no catalogs, nothing on the remote
	keys, err := f.remote.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestPlanReportsConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "0.5.0", ">=0.9.0")},
		nil,
	)
	f.seedRemote(t, "apps.json", []model.Entry{entry("app", "1.0.0", ">=0.9.0")})

	res, err := Plan(ctx, f.registry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrConflict))
	assert.NotEmpty(t, res.Merges[model.KindApps].Errors)
}

func TestPublishRequiresLocalCatalog(t *testing.T) {
	f := fixture{fs: afero.NewMemMapFs(), remote: localfs.New(afero.NewMemMapFs(), "remote")}
	_, err := Publish(context.Background(), f.registry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestPublishValidatesLocalEntries(t *testing.T) {
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "not-a-version", ">=0.9.0")},
		nil,
	)
	_, err := Publish(context.Background(), f.registry())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrValidation))
}

func TestPublishCarriesImages(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "1.0.0", ">=0.9.0")},
		nil,
	)
	localImage := path.Join(testLocalRoot, "garden", "v2", "images", "app.png")
	require.NoError(t, afero.WriteFile(f.fs, localImage, []byte("local-png"), 0644))
	require.NoError(t, f.remote.Put(ctx, "images/published.png", bytes.NewReader([]byte("remote-png")), false))
	// the remote copy of a shared asset wins over the local one
	require.NoError(t, f.remote.Put(ctx, "images/app.png", bytes.NewReader([]byte("published-app-png")), false))

	_, err := Publish(ctx, f.registry())
	require.NoError(t, err)

	b, err := storage.ReadAll(ctx, f.remote, "images/published.png")
	require.NoError(t, err)
	assert.Equal(t, "remote-png", string(b))
	b, err = storage.ReadAll(ctx, f.remote, "images/app.png")
	require.NoError(t, err)
	assert.Equal(t, "published-app-png", string(b))
}

// tamperStore corrupts the first write of one key, to exercise the
// verification and rollback path
type tamperStore struct {
	storage.Store
	key      string
	tampered bool
}

func (s *tamperStore) Put(ctx context.Context, key string, rdr io.Reader, exclusive bool) error {
	if key == s.key && !s.tampered {
		s.tampered = true
		data, err := io.ReadAll(rdr)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(append(data, []byte("corrupted")...))
	}
	return s.Store.Put(ctx, key, rdr, exclusive)
}

func TestPublishVerifyMismatchRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.FormatV2,
		[]model.Entry{entry("app", "1.1.0", ">=0.9.0")},
		nil,
	)
	before := []model.Entry{entry("app", "1.0.0", ">=0.9.0")}
	f.seedRemote(t, "apps.json", before)
	f.seedRemote(t, "tools.json", nil)

	tampered := &tamperStore{Store: f.remote, key: "apps.json"}
	r := New(tampered, testLocalRoot, LocalFS(f.fs), Owner("tester", "testhost", 42))

	_, err := Publish(ctx, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, status.ErrVerifyMismatch))

	// the previous catalog is back and the lock is released
	apps := f.remoteCatalog(t, "apps.json")
	require.Len(t, apps, 1)
	assert.Equal(t, "1.0.0", apps[0].Version)
	has, err := f.remote.Has(ctx, model.DefaultLockKey)
	require.NoError(t, err)
	assert.False(t, has)
}
