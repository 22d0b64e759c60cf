package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// LoadAWSConfig loads the default AWS config. A non-empty endpoint (LocalStack)
// overrides the service endpoints.
func LoadAWSConfig(ctx context.Context, endpoint string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return cfg, fmt.Errorf("failed to load aws config: %w", err)
	}
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return cfg, nil
}

// S3API is the subset of the S3 client used here
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type S3Store struct {
	client   S3API
	bucket   string
	prefix   string
	endpoint string
}

// NewS3Store builds a store over bucket. With a custom endpoint, object URLs are
// path-style under that endpoint.
func NewS3Store(cfg aws.Config, bucket, prefix, endpoint string) *S3Store {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
	})
	return newS3Store(client, bucket, prefix, endpoint)
}

func newS3Store(client S3API, bucket, prefix, endpoint string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/"), endpoint: strings.TrimRight(endpoint, "/")}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to s3: %w", err)
	}
	return s.urlFor(key), nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFor(url)
	if !ok {
		return ErrNotOwned
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete s3 object %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) baseURL() string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/", s.endpoint, s.bucket)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/", s.bucket)
}

func (s *S3Store) urlFor(key string) string {
	return s.baseURL() + key
}

func (s *S3Store) keyFor(url string) (string, bool) {
	key, found := strings.CutPrefix(url, s.baseURL())
	return key, found && key != ""
}
