package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const htmlContentType = "text/html; charset=utf-8"

// Store publishes a rendered page and returns where it can be found.
type Store interface {
	Save(ctx context.Context, name string, html []byte) (string, error)
}

// FileStore writes pages under Dir, creating it if needed.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) Save(_ context.Context, name string, html []byte) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating map directory: %w", err)
	}

	path := filepath.Join(s.Dir, filepath.Base(name))
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return "", fmt.Errorf("writing map: %w", err)
	}

	log.Debug().Str("path", path).Int("bytes", len(html)).Msg("Saved map to file")
	return path, nil
}

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads pages to a bucket
type S3Store struct {
	client     S3Client
	bucketName string
}

func NewS3Store(client S3Client, bucketName string) *S3Store {
	return &S3Store{
		client:     client,
		bucketName: bucketName,
	}
}

func (s *S3Store) Save(ctx context.Context, name string, html []byte) (string, error) {
	if s.bucketName == "" {
		return "", fmt.Errorf("empty bucket name")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(name),
		Body:        bytes.NewReader(html),
		ContentType: aws.String(htmlContentType),
	})
	if err != nil {
		return "", fmt.Errorf("saving to S3: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucketName, name)
	log.Debug().Str("location", location).Int("bytes", len(html)).Msg("Saved map to S3")
	return location, nil
}

// NewS3Client creates an S3 client, pointed at S3_ENDPOINT when set
func NewS3Client(ctx context.Context) (*s3.Client, error) {
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		log.Debug().Str("endpoint", endpoint).Msg("Using local S3 endpoint")
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithClientLogMode(aws.LogRetries),
		)
		if err != nil {
			return nil, err
		}

		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(cfg), nil
}
