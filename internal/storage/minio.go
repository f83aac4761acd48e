package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/MohdFaizan63/Resume-Builder/internal/config"
)

const bucketCheckTimeout = 5 * time.Second

// Client stores avatar images in a private bucket.
// Presigned links are signed against the public endpoint so browsers can reach them.
type Client struct {
	objects *minio.Client
	signer  *minio.Client
	bucket  string
}

// NewClient connects to the configured endpoint and makes sure the bucket exists.
func NewClient(cfg config.MinIOConfig) (*Client, error) {
	lookup, err := parseBucketLookup(cfg.BucketLookup)
	if err != nil {
		return nil, err
	}
	creds := credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	objects, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:        creds,
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	signer := objects
	if cfg.PublicEndpoint != "" {
		public, err := url.Parse(cfg.PublicEndpoint)
		if err != nil || public.Host == "" {
			return nil, fmt.Errorf("invalid minio public endpoint %q", cfg.PublicEndpoint)
		}
		signer, err = minio.New(public.Host, &minio.Options{
			Creds:        creds,
			Secure:       public.Scheme == "https",
			Region:       cfg.Region,
			BucketLookup: lookup,
		})
		if err != nil {
			return nil, fmt.Errorf("init public minio client: %w", err)
		}
	}

	c := &Client{objects: objects, signer: signer, bucket: cfg.Bucket}
	if err := c.ensureBucket(cfg); err != nil {
		return nil, err
	}
	return c, nil
}

func parseBucketLookup(v string) (minio.BucketLookupType, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return minio.BucketLookupAuto, nil
	case "dns":
		return minio.BucketLookupDNS, nil
	case "path":
		return minio.BucketLookupPath, nil
	}
	return minio.BucketLookupAuto, fmt.Errorf("invalid minio bucket lookup %q", v)
}

func (c *Client) ensureBucket(cfg config.MinIOConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), bucketCheckTimeout)
	defer cancel()

	exists, err := c.objects.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %q: %w", c.bucket, err)
	}
	if exists {
		return nil
	}
	if !cfg.AutoCreateBucket {
		return fmt.Errorf("bucket %q does not exist", c.bucket)
	}
	if err := c.objects.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
		return fmt.Errorf("make bucket %q: %w", c.bucket, err)
	}
	return nil
}

// UploadFile stores an avatar under objectName.
func (c *Client) UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	info, err := c.objects.PutObject(ctx, c.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "private, max-age=86400",
	})
	if err != nil {
		return nil, fmt.Errorf("put object %q: %w", objectName, err)
	}
	return &info, nil
}

// GeneratePresignedURL returns a time-limited GET link for objectKey.
func (c *Client) GeneratePresignedURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error) {
	u, err := c.signer.PresignedGetObject(ctx, c.bucket, objectKey, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presign %q: %w", objectKey, err)
	}
	return u.String(), nil
}

// DeletePrefix removes every object below prefix in one batch.
// Keys that vanished concurrently are not errors.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) error {
	if strings.TrimSpace(prefix) == "" {
		return errors.New("refusing to delete an empty prefix")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var listErr error
	objects := make(chan minio.ObjectInfo)
	go func() {
		defer close(objects)
		for obj := range c.objects.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
			if obj.Err != nil {
				listErr = obj.Err
				return
			}
			select {
			case objects <- obj:
			case <-ctx.Done():
				return
			}
		}
	}()

	var errs []error
	for res := range c.objects.RemoveObjects(ctx, c.bucket, objects, minio.RemoveObjectsOptions{}) {
		if res.Err != nil && !IsNotFound(res.Err) {
			errs = append(errs, fmt.Errorf("remove %q: %w", res.ObjectName, res.Err))
		}
	}
	if listErr != nil {
		errs = append(errs, fmt.Errorf("list %q: %w", prefix, listErr))
	}
	return errors.Join(errs...)
}
