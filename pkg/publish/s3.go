package publish

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Uploader is an Uploader that publishes artifacts to an AWS S3 bucket.
type S3Uploader struct {
	s3     *s3.Client
	bucket string
}

// NewS3Uploader creates a new instance of S3Uploader. Credentials are taken
// from the environment through the default AWS configuration chain.
func NewS3Uploader(ctx context.Context, region, bucket string) (*S3Uploader, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket name is required for S3 upload")
	}

	var optFns []func(*config.LoadOptions) error
	if region != "" {
		optFns = append(optFns, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("can't load AWS configuration: %w", err)
	}

	return &S3Uploader{
		s3:     s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

// Upload sends a single artifact to the S3 bucket.
func (u S3Uploader) Upload(ctx context.Context, targetPath string, body []byte) error {
	size := int64(len(body))
	query := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(targetPath),
		ACL:           types.ObjectCannedACLPrivate,
		Body:          bytes.NewReader(body),
		ContentLength: &size,
		ContentType:   aws.String(http.DetectContentType(body)),
	}

	_, err := u.s3.PutObject(ctx, query)
	if err != nil {
		return fmt.Errorf("can't send S3 PUT request: %w", err)
	}

	return nil
}

// URL returns the absolute path to the object in the form s3://bucket/target/file.
func (u S3Uploader) URL(targetPath string) string {
	return fmt.Sprintf("s3://%s/%s", u.bucket, targetPath)
}

// PresignedURL generates a presigned URL for accessing an object in the S3 bucket.
// The URL is valid for a limited time and allows temporary access to the specified object.
func (u S3Uploader) PresignedURL(ctx context.Context, targetPath string) (string, error) {
	presignClient := s3.NewPresignClient(u.s3)
	presignParams := &s3.GetObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(targetPath),
	}

	presignedURL, err := presignClient.PresignGetObject(ctx, presignParams, func(o *s3.PresignOptions) {
		o.Expires = 1 * time.Hour
	})
	if err != nil {
		return "", fmt.Errorf("can't generate presigned URL: %w", err)
	}

	return presignedURL.URL, nil
}
