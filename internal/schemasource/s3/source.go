// Package s3 implements a schema definition source backed by an
// S3-compatible bucket (AWS S3 or MinIO).
package s3

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"archivecore/internal/schemasource"
)

// Source reads definition documents as objects under a key prefix.
type Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// Config holds explicit construction parameters (mostly for tests). For prod
// we rely primarily on environment variables.
type Config struct {
	Region    string
	Bucket    string
	Prefix    string // optional key prefix, e.g. "schemas/"
	Endpoint  string // optional; custom endpoint (e.g. MinIO)
	PathStyle bool
}

// Environment variables:
//   ARCHIVECORE_SCHEMA_SOURCE=s3
//   ARCHIVECORE_SCHEMA_S3_BUCKET=<bucket> (required)
//   ARCHIVECORE_SCHEMA_S3_PREFIX=<prefix> (optional)
//   ARCHIVECORE_SCHEMA_S3_REGION=<region> (default us-east-1)
//   ARCHIVECORE_SCHEMA_S3_ENDPOINT=<url> (optional, for MinIO)
//   ARCHIVECORE_SCHEMA_S3_PATH_STYLE=true|false (default false)
//   AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)

// New creates an S3 definition source from Config.
func New(ctx context.Context, cfg Config) (*Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Source{client: client, bucket: cfg.Bucket, prefix: normalizePrefix(cfg.Prefix)}, nil
}

// OpenFromEnv constructs an S3 definition source from process environment.
func OpenFromEnv(ctx context.Context) (*Source, error) {
	bucket := os.Getenv("ARCHIVECORE_SCHEMA_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("ARCHIVECORE_SCHEMA_S3_BUCKET required for s3 source")
	}
	cfg := Config{
		Bucket:    bucket,
		Prefix:    os.Getenv("ARCHIVECORE_SCHEMA_S3_PREFIX"),
		Region:    os.Getenv("ARCHIVECORE_SCHEMA_S3_REGION"),
		Endpoint:  os.Getenv("ARCHIVECORE_SCHEMA_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("ARCHIVECORE_SCHEMA_S3_PATH_STYLE"), "true"),
	}
	return New(ctx, cfg)
}

// Driver returns the source driver identifier.
func (s *Source) Driver() schemasource.Driver { return schemasource.DriverS3 }

// List returns document names under the configured prefix, paging through
// the bucket as needed.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var names []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            &s.bucket,
			Prefix:            &s.prefix,
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			names = append(names, strings.TrimPrefix(key, s.prefix))
		}
		if out.IsTruncated != nil && *out.IsTruncated && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		break
	}
	sort.Strings(names)
	return names, nil
}

// Read fetches one document body.
func (s *Source) Read(ctx context.Context, name string) ([]byte, error) {
	key := s.prefix + name
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		return nil, err
	}
	defer func() { _ = out.Body.Close() }()
	return io.ReadAll(out.Body)
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return strings.TrimPrefix(prefix, "/")
}
