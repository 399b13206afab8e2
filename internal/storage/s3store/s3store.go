// Package s3store presents a bucket as a browsable hierarchy.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sirupsen/logrus"

	"github.com/slmtnm/s3tui/internal/storage"
)

// Provider implements storage.Provider on top of one bucket
type Provider struct {
	client   API
	uploader *manager.Uploader
	bucket   string
	logger   logrus.FieldLogger
}

var _ storage.Provider = (*Provider)(nil)

// New creates a provider for bucket
func New(client API, bucket string, logger logrus.FieldLogger) *Provider {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	// one part in flight keeps each transfer a single sequential stream
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.Concurrency = 1
	})
	return &Provider{
		client:   client,
		uploader: uploader,
		bucket:   bucket,
		logger:   logger.WithFields(logrus.Fields{"provider": "s3", "bucket": bucket}),
	}
}

// Name returns the bucket name
func (p *Provider) Name() string {
	return p.bucket
}

// Root is the empty prefix
func (p *Provider) Root() string {
	return ""
}

// Join appends an entry name to a prefix
func (p *Provider) Join(prefix, name string) string {
	return prefix + name
}

// Parent strips the last directory from prefix
func (p *Provider) Parent(prefix string) string {
	return storage.ParentPrefix(prefix)
}

// HeadBucket checks if the bucket exists and is accessible
func (p *Provider) HeadBucket(ctx context.Context) error {
	_, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)})
	if err != nil {
		if kind := classify(err); kind == storage.ErrNotFound {
			return fmt.Errorf("bucket '%s' does not exist: %w", p.bucket, err)
		}
		return fmt.Errorf("failed to access bucket '%s': %w", p.bucket, err)
	}
	return nil
}

// List fetches every key under prefix and folds them into one directory level
func (p *Provider) List(ctx context.Context, prefix string) ([]storage.Entry, error) {
	input := &s3.ListObjectsV2Input{
		Bucket:     aws.String(p.bucket),
		FetchOwner: aws.Bool(true),
	}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var objects []storage.Object
	paginator := s3.NewListObjectsV2Paginator(p.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storage.NewError("list", prefix, storage.ErrBackend, err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			objects = append(objects, toObject(obj))
		}
	}

	p.logger.WithFields(logrus.Fields{"prefix": prefix, "keys": len(objects)}).Debug("listed objects")
	return storage.Virtualize(prefix, objects), nil
}

func toObject(obj types.Object) storage.Object {
	out := storage.Object{
		Key:          *obj.Key,
		Size:         obj.Size,
		LastModified: obj.LastModified,
	}
	if obj.StorageClass != "" {
		class := string(obj.StorageClass)
		out.StorageClass = &class
	}
	if obj.Owner != nil && obj.Owner.DisplayName != nil {
		owner := *obj.Owner.DisplayName
		out.Owner = &owner
	}
	return out
}

// Open streams the whole object body
func (p *Provider) Open(ctx context.Context, key string) (storage.Reader, error) {
	result, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, storage.NewError("open", key, classify(err), err)
	}

	size := int64(-1)
	if result.ContentLength != nil {
		size = *result.ContentLength
	}
	return storage.NewReader(result.Body, size), nil
}

// Create starts an upload of unknown length under key. The uploader splits
// the stream into parts, so nothing beyond one part is held in memory.
// Close blocks until the object is committed.
func (p *Provider) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	sink := &uploadSink{pipe: pw, done: make(chan error, 1)}

	go func() {
		err := p.Put(ctx, key, pr)
		pr.CloseWithError(err)
		sink.done <- err
	}()

	return sink, nil
}

// Put uploads r as the body of key
func (p *Provider) Put(ctx context.Context, key string, r io.Reader) error {
	_, err := p.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   r,
	})
	if err != nil {
		return storage.NewError("upload", key, classify(err), err)
	}
	return nil
}

// Delete removes exactly one object. Deleting a missing key succeeds.
func (p *Provider) Delete(ctx context.Context, key string) error {
	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		kind := classify(err)
		if kind == storage.ErrNotFound {
			return nil
		}
		return storage.NewError("delete", key, kind, err)
	}

	p.logger.WithField("key", key).Info("object deleted")
	return nil
}

// classify maps service errors onto storage kinds. Only missing keys and
// buckets are told apart; auth and transport failures stay opaque.
func classify(err error) error {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return storage.ErrNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return storage.ErrNotFound
		}
	}
	return storage.ErrBackend
}

type uploadSink struct {
	pipe *io.PipeWriter
	done chan error

	once sync.Once
	err  error
}

func (s *uploadSink) Write(b []byte) (int, error) {
	return s.pipe.Write(b)
}

func (s *uploadSink) Close() error {
	return s.CloseWithError(nil)
}

// CloseWithError aborts the upload with cause; a nil cause commits it like Close
func (s *uploadSink) CloseWithError(cause error) error {
	s.once.Do(func() {
		s.pipe.CloseWithError(cause)
		s.err = <-s.done
	})
	return s.err
}
