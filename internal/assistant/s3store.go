package assistant

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/helpfast/helpdesk/internal/config"
)

// DocumentStore fetches reference documents used to ground assistant prompts.
type DocumentStore interface {
	FetchDocumentText(ctx context.Context, key string) (string, error)
}

// S3DocumentStore reads documents from an S3-compatible bucket. A custom
// endpoint lets it target R2 or MinIO as well as plain S3.
type S3DocumentStore struct {
	client *s3.Client
	bucket string
}

func NewS3DocumentStore(cfg config.DocumentStoreConfig) (*S3DocumentStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("document store bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3DocumentStore{client: client, bucket: cfg.Bucket}, nil
}

// FetchDocumentText downloads the object and returns its contents as text.
func (s *S3DocumentStore) FetchDocumentText(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("fetching document %q: %w", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("reading document %q: %w", key, err)
	}

	return string(raw), nil
}
