// Package archive keeps a copy of every generated quote in an S3 compatible
// bucket.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/diewo77/traiteur/internal/config"
)

var ErrDisabled = errors.New("archive: storage not configured")

// Archiver stores and fetches documents by key.
type Archiver interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Disabled refuses every operation.
type Disabled struct{}

func (Disabled) Put(context.Context, string, []byte, string) error { return ErrDisabled }

func (Disabled) Get(context.Context, string) (io.ReadCloser, error) { return nil, ErrDisabled }

// QuoteKey names the object of a quote: quotes/<yyyy/mm/dd>/<event>-<rand>.pdf
// dated by the event.
func QuoteKey(eventID string, date time.Time) string {
	return path.Join("quotes", date.Format("2006/01/02"), fmt.Sprintf("%s-%s.pdf", eventID, uuid.New().String()[:8]))
}

// Bucket is a minio backed Archiver.
type Bucket struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// New returns Disabled when no endpoint is configured.
func New(cfg config.StorageConfig, log *zap.Logger) (Archiver, error) {
	if !cfg.Enabled() {
		log.Info("quote archive disabled")
		return Disabled{}, nil
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return &Bucket{client: client, bucket: cfg.Bucket, log: log}, nil
}

// EnsureBucket creates the bucket when missing.
func (b *Bucket) EnsureBucket(ctx context.Context) error {
	ok, err := b.client.BucketExists(ctx, b.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", b.bucket, err)
	}
	if ok {
		return nil
	}
	if err := b.client.MakeBucket(ctx, b.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", b.bucket, err)
	}
	b.log.Info("bucket created", zap.String("bucket", b.bucket))
	return nil
}

func (b *Bucket) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	b.log.Debug("archived", zap.String("key", key), zap.Int("bytes", len(body)))
	return nil
}

func (b *Bucket) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", key, err)
	}
	return obj, nil
}
