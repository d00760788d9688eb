package ioexport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config points to a bucket of AWS S3 or of a compatible service such
// as MinIO. Credentials come from the default AWS chain.
type S3Config struct {
	Bucket string
	// Prefix is prepended to the file name to make an object key.
	Prefix string
	// Region defaults to us-east-1.
	Region string
	// Endpoint is set for S3-compatible services.
	Endpoint  string
	PathStyle bool
}

// Validate checks that the bucket is given.
func (c S3Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("s3 bucket required")
	}
	return nil
}

// Key returns the object key of a local file.
func (c S3Config) Key(path string) string {
	name := filepath.Base(path)
	prefix := strings.Trim(c.Prefix, "/")
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Uploader publishes snapshots.
type Uploader struct {
	cfg    S3Config
	client *s3.Client
}

// NewUploader creates an S3 client for the bucket.
func NewUploader(ctx context.Context, cfg S3Config) (*Uploader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, UploadError(cfg.Bucket, "", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, UploadError(cfg.Bucket, "", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Uploader{cfg: cfg, client: client}, nil
}

// Upload copies a local file to the bucket and returns its location.
func (u *Uploader) Upload(ctx context.Context, path string) (string, error) {
	key := u.cfg.Key(path)
	f, err := os.Open(path)
	if err != nil {
		return "", UploadError(u.cfg.Bucket, key, err)
	}
	defer f.Close()

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.cfg.Bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String("application/vnd.sqlite3"),
	})
	if err != nil {
		return "", UploadError(u.cfg.Bucket, key, err)
	}

	loc := fmt.Sprintf("s3://%s/%s", u.cfg.Bucket, key)
	slog.Info("Uploaded snapshot", "location", loc)
	return loc, nil
}
