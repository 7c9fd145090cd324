package sink

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/arkilian/loadgen/internal/errors"
)

// S3Uploader uploads finished workload files to an S3 bucket. Generation
// always streams to a local file first; upload happens once the run
// completes so a failed run never leaves a partial object behind.
type S3Uploader struct {
	client *s3.Client
	bucket string
}

// S3Config holds S3 upload configuration.
type S3Config struct {
	// Bucket is the destination bucket name.
	Bucket string
	// Region is the AWS region.
	Region string
	// Endpoint is an optional custom endpoint (MinIO, LocalStack).
	Endpoint string
	// UsePathStyle enables path-style addressing, required for MinIO.
	UsePathStyle bool
}

// NewS3Uploader creates an uploader for the configured bucket.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewIOError(errors.CodeOpenFailed, "loading AWS config", err)
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

	return &S3Uploader{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.Bucket,
	}, nil
}

// Upload puts the local file at objectPath in the bucket.
func (u *S3Uploader) Upload(ctx context.Context, localPath, objectPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return errors.NewIOError(errors.CodeOpenFailed, "opening workload file for upload", err)
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(objectPath),
		Body:   f,
	})
	if err != nil {
		return errors.NewIOError(errors.CodeWriteFailed,
			fmt.Sprintf("uploading %s to s3://%s/%s", localPath, u.bucket, objectPath), err)
	}
	return nil
}
