package localfs

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamiwaza-ai/garden-registry/pkg/errors"
	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
)

func setupStore(t *testing.T) storage.Store {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "registry/apps.json", []byte(`[]`), 0644))
	require.NoError(t, afero.WriteFile(fs, "registry/images/kaizen.png", []byte("png bytes"), 0644))
	return New(fs, "registry")
}

func TestHas(t *testing.T) {
	bs := setupStore(t)

	has, err := bs.Has(context.Background(), "apps.json")
	require.NoError(t, err)
	require.True(t, has)

	has, err = bs.Has(context.Background(), "tools.json")
	require.NoError(t, err)
	require.False(t, has)
}

func TestGet(t *testing.T) {
	bs := setupStore(t)

	rdr, err := bs.Get(context.Background(), "images/kaizen.png")
	require.NoError(t, err)
	b, err := io.ReadAll(rdr)
	require.NoError(t, err)
	require.NoError(t, rdr.Close())
	assert.Equal(t, "png bytes", string(b))

	_, err = bs.Get(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPut(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Put(context.Background(), "sub/dir/tools.json", bytes.NewReader([]byte(`[]`)), false))
	has, err := bs.Has(context.Background(), "sub/dir/tools.json")
	require.NoError(t, err)
	assert.True(t, has)

	// plain put overwrites
	require.NoError(t, bs.Put(context.Background(), "apps.json", bytes.NewReader([]byte(`[{}]`)), false))
	b, err := storage.ReadAll(context.Background(), bs, "apps.json")
	require.NoError(t, err)
	assert.Equal(t, `[{}]`, string(b))
}

func TestPutExclusive(t *testing.T) {
	bs := setupStore(t)

	err := bs.Put(context.Background(), "apps.json", bytes.NewReader([]byte(`[]`)), true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrExists))

	require.NoError(t, bs.Put(context.Background(), "registry.lock", bytes.NewReader([]byte(`{}`)), true))
}

func TestDelete(t *testing.T) {
	bs := setupStore(t)

	require.NoError(t, bs.Delete(context.Background(), "apps.json"))
	has, err := bs.Has(context.Background(), "apps.json")
	require.NoError(t, err)
	assert.False(t, has)

	// deleting a missing key is not an error
	require.NoError(t, bs.Delete(context.Background(), "apps.json"))
}

func TestKeys(t *testing.T) {
	bs := setupStore(t)

	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"apps.json", "images/kaizen.png"}, keys)
}

func TestKeysEmptyRoot(t *testing.T) {
	bs := New(afero.NewMemMapFs(), "does/not/exist")
	keys, err := bs.Keys(context.Background())
	require.NoError(t, err)
	assert.Empty(t, keys)
}
