// Package sthree implements storage.Store against AWS S3 and
// S3-compatible stores such as Cloudflare R2 (via a custom endpoint).
package sthree

import (
	"context"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"

	"github.com/kamiwaza-ai/garden-registry/pkg/storage"
)

const pageSize = 1000

// Option customizes the S3 store
type Option func(*s3FS)

// Bucket sets the bucket name
func Bucket(bucket string) Option {
	return func(fs *s3FS) {
		fs.bucket = bucket
	}
}

// Prefix scopes every key under a bucket prefix, e.g. "garden/v2/"
func Prefix(prefix string) Option {
	return func(fs *s3FS) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		fs.prefix = prefix
	}
}

// Endpoint points the client at an S3-compatible endpoint (R2, minio)
func Endpoint(endpoint string) Option {
	return func(fs *s3FS) {
		fs.endpoint = endpoint
	}
}

// Region sets the client region
func Region(region string) Option {
	return func(fs *s3FS) {
		fs.region = region
	}
}

// AWSConfig overrides the full AWS client configuration
func AWSConfig(cfg *aws.Config) Option {
	return func(fs *s3FS) {
		fs.awsConfig = cfg
	}
}

// New creates an S3 backed store
func New(opts ...Option) storage.Store {
	fs := new(s3FS)
	for _, apply := range opts {
		apply(fs)
	}
	cfg := fs.awsConfig
	if cfg == nil {
		cfg = aws.NewConfig()
	}
	if fs.endpoint != "" {
		cfg = cfg.WithEndpoint(fs.endpoint).WithS3ForcePathStyle(true)
	}
	if fs.region != "" {
		cfg = cfg.WithRegion(fs.region)
	}
	client := s3.New(session.Must(session.NewSession(cfg)))
	fs.s3 = client
	fs.uploader = s3manager.NewUploaderWithClient(client)
	return fs
}

type s3FS struct {
	bucket    string
	prefix    string
	endpoint  string
	region    string
	awsConfig *aws.Config
	s3        s3iface.S3API
	uploader  *s3manager.Uploader
}

func (s *s3FS) String() string {
	return "s3://" + s.bucket + "/" + s.prefix
}

func (s *s3FS) key(key string) *string {
	return aws.String(s.prefix + key)
}

func (s *s3FS) Has(ctx context.Context, key string) (bool, error) {
	_, err := s.s3.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
	})
	if err != nil {
		if rerr, ok := err.(awserr.RequestFailure); ok && rerr.StatusCode() == 404 {
			return false, nil
		}
		return false, storage.ErrStore.WrapMessage("head %q: %v", key, err)
	}
	return true, nil
}

func (s *s3FS) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.s3.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
	})
	if err != nil {
		if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
			return nil, storage.ErrNotFound.WrapMessage("%q", key)
		}
		return nil, storage.ErrStore.WrapMessage("get %q: %v", key, err)
	}
	return obj.Body, nil
}

// Put writes an object. S3 has no conditional put in this API version,
// so the exclusive flag degrades to a check-then-write: the lock
// acquisition race documented by the publish workflow.
func (s *s3FS) Put(ctx context.Context, key string, rdr io.Reader, exclusive bool) error {
	if exclusive {
		has, err := s.Has(ctx, key)
		if err != nil {
			return err
		}
		if has {
			return storage.ErrExists.WrapMessage("%q", key)
		}
	}
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
		Body:   rdr,
	})
	if err != nil {
		return storage.ErrStore.WrapMessage("put %q: %v", key, err)
	}
	return nil
}

func (s *s3FS) Delete(ctx context.Context, key string) error {
	_, err := s.s3.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    s.key(key),
	})
	if err != nil {
		return storage.ErrStore.WrapMessage("delete %q: %v", key, err)
	}
	return nil
}

func (s *s3FS) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	eachPage := func(page *s3.ListObjectsV2Output, more bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			if key == "" {
				continue
			}
			keys = append(keys, strings.TrimPrefix(key, s.prefix))
		}
		return more
	}
	params := &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.prefix),
		MaxKeys: aws.Int64(pageSize),
	}
	if err := s.s3.ListObjectsV2PagesWithContext(ctx, params, eachPage); err != nil {
		return nil, storage.ErrStore.WrapMessage("list %s: %v", s, err)
	}
	return keys, nil
}
