// Package storage presigns uploads to an S3-compatible bucket such as
// Cloudflare R2.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// UploadURLExpiry is how long a presigned upload URL stays valid
const UploadURLExpiry = time.Hour

// Options configures the bucket connection
type Options struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// Region defaults to "auto", which is what R2 expects
	Region string
}

// PresignedUpload is a URL the client can PUT the file body to
type PresignedUpload struct {
	URL       string    `json:"upload_url"`
	Key       string    `json:"key"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Bucket presigns object uploads
type Bucket struct {
	presigner *s3.PresignClient
	bucket    string
	now       func() time.Time
}

// NewBucket creates a presigning client. No request is made until a URL is used.
func NewBucket(ctx context.Context, opts Options) (*Bucket, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, errors.New("storage endpoint and bucket are required")
	}
	region := opts.Region
	if region == "" {
		region = "auto"
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(opts.Endpoint)
		o.UsePathStyle = true
	})

	return &Bucket{
		presigner: s3.NewPresignClient(client),
		bucket:    opts.Bucket,
		now:       time.Now,
	}, nil
}

// PresignUpload returns a PUT URL for key, restricted to contentType
func (b *Bucket) PresignUpload(ctx context.Context, key, contentType string) (*PresignedUpload, error) {
	req, err := b.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(UploadURLExpiry))
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	return &PresignedUpload{
		URL:       req.URL,
		Key:       key,
		Method:    req.Method,
		ExpiresAt: b.now().Add(UploadURLExpiry),
	}, nil
}
