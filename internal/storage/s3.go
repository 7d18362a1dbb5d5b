package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/SergeySenin/user-service/internal/config"
	"github.com/SergeySenin/user-service/internal/metrics"
)

// S3Client talks to an S3-compatible bucket (AWS S3 or MinIO)
type S3Client struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	presignExpiry time.Duration
	metrics       *metrics.Metrics
}

// SetMetrics enables per-operation storage metrics. Optional.
func (c *S3Client) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}

// recordOp counts one storage operation and observes its latency.
// Precondition rejections are counted with status "rejected".
func (c *S3Client) recordOp(op, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.StorageOperationsTotal.WithLabelValues(op, status).Inc()
	c.metrics.StorageOperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// NewS3Client creates an S3 client from service configuration.
// A custom endpoint plus path-style addressing makes it work against MinIO.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*S3Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	opts = append(opts, awsconfig.WithRegion(cfg.Region))

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Opts...)

	return &S3Client{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		presignExpiry: cfg.PresignExpiry,
	}, nil
}

// Put writes an object, overwriting anything already at the key.
// Blank keys and empty payloads are rejected before any network call.
func (c *S3Client) Put(ctx context.Context, key string, data []byte, contentType string) error {
	start := time.Now()

	if strings.TrimSpace(key) == "" {
		c.recordOp("put", "rejected", start)
		return newStorageError("put", key, ErrBlankKey)
	}
	if len(data) == 0 {
		c.recordOp("put", "rejected", start)
		return newStorageError("put", key, ErrEmptyObject)
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := c.client.PutObject(ctx, input); err != nil {
		c.recordOp("put", "error", start)
		return newStorageError("put", key, err)
	}

	c.recordOp("put", "ok", start)
	return nil
}

// Delete removes an object. Deleting a key that does not exist is not an
// error at this layer — S3 itself no-ops silently.
func (c *S3Client) Delete(ctx context.Context, key string) error {
	start := time.Now()

	if strings.TrimSpace(key) == "" {
		c.recordOp("delete", "rejected", start)
		return newStorageError("delete", key, ErrBlankKey)
	}

	_, err := c.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		c.recordOp("delete", "error", start)
		return newStorageError("delete", key, err)
	}

	c.recordOp("delete", "ok", start)
	return nil
}

// PresignGet returns a time-limited signed read URL for the object
func (c *S3Client) PresignGet(ctx context.Context, key string) (string, error) {
	start := time.Now()

	if strings.TrimSpace(key) == "" {
		c.recordOp("presign", "rejected", start)
		return "", newStorageError("presign", key, ErrBlankKey)
	}

	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = c.presignExpiry
	})
	if err != nil {
		c.recordOp("presign", "error", start)
		return "", newStorageError("presign", key, err)
	}

	c.recordOp("presign", "ok", start)
	return req.URL, nil
}

// ListKeys returns every object key under the given prefix
func (c *S3Client) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	start := time.Now()
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			c.recordOp("list", "error", start)
			return nil, newStorageError("list", prefix, err)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}

	c.recordOp("list", "ok", start)
	return keys, nil
}

// CheckBucketAccess verifies that the configured bucket is reachable
func (c *S3Client) CheckBucketAccess(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(c.bucket),
	})
	if err != nil {
		return fmt.Errorf("cannot access S3 bucket %s: %w", c.bucket, err)
	}

	return nil
}
