// Package gcs implements storage.Store against Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	gcsStorage "cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
)

type gcs struct {
	client   *gcsStorage.Client
	bucket   string
	prefix   string
	credFile string
}

// Option customizes the GCS store
type Option func(*gcs)

// Prefix scopes every key under a bucket prefix, e.g. "garden/v2/"
func Prefix(prefix string) Option {
	return func(g *gcs) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		g.prefix = prefix
	}
}

// Credential points the client at a service account credentials file
func Credential(path string) Option {
	return func(g *gcs) {
		g.credFile = path
	}
}

// New creates a GCS backed store
func New(ctx context.Context, bucket string, opts ...Option) (storage.Store, error) {
	g := &gcs{bucket: bucket}
	for _, apply := range opts {
		apply(g)
	}
	clientOpts := []option.ClientOption{option.WithScopes(gcsStorage.ScopeFullControl)}
	if g.credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(g.credFile))
	}
	client, err := gcsStorage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, storage.ErrStore.WrapMessage("gcs client: %v", err)
	}
	g.client = client
	return g, nil
}

func (g *gcs) String() string {
	return "gs://" + g.bucket + "/" + g.prefix
}

func (g *gcs) object(key string) *gcsStorage.ObjectHandle {
	return g.client.Bucket(g.bucket).Object(g.prefix + key)
}

func (g *gcs) Has(ctx context.Context, key string) (bool, error) {
	_, err := g.object(key).Attrs(ctx)
	if err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return false, nil
		}
		return false, storage.ErrStore.WrapMessage("attrs %q: %v", key, err)
	}
	return true, nil
}

func (g *gcs) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	rdr, err := g.object(key).NewReader(ctx)
	if err != nil {
		if err == gcsStorage.ErrObjectNotExist {
			return nil, storage.ErrNotFound.WrapMessage("%q", key)
		}
		return nil, storage.ErrStore.WrapMessage("get %q: %v", key, err)
	}
	return rdr, nil
}

// Put writes an object. The exclusive flag maps to a native
// put-if-absent condition, so lock acquisition is race free on GCS.
func (g *gcs) Put(ctx context.Context, key string, rdr io.Reader, exclusive bool) error {
	obj := g.object(key)
	if exclusive {
		obj = obj.If(gcsStorage.Conditions{DoesNotExist: true})
	}
	writer := obj.NewWriter(ctx)
	if _, err := io.Copy(writer, rdr); err != nil {
		_ = writer.Close()
		return storage.ErrStore.WrapMessage("put %q: %v", key, err)
	}
	if err := writer.Close(); err != nil {
		if exclusive && isPreconditionFailure(err) {
			return storage.ErrExists.WrapMessage("%q", key)
		}
		return storage.ErrStore.WrapMessage("put %q: %v", key, err)
	}
	return nil
}

func isPreconditionFailure(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusPreconditionFailed
	}
	return false
}

func (g *gcs) Delete(ctx context.Context, key string) error {
	if err := g.object(key).Delete(ctx); err != nil && err != gcsStorage.ErrObjectNotExist {
		return storage.ErrStore.WrapMessage("delete %q: %v", key, err)
	}
	return nil
}

func (g *gcs) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	it := g.client.Bucket(g.bucket).Objects(ctx, &gcsStorage.Query{Prefix: g.prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, storage.ErrStore.WrapMessage("list %s: %v", g, err)
		}
		keys = append(keys, strings.TrimPrefix(attrs.Name, g.prefix))
	}
	return keys, nil
}
