package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config addresses any S3-compatible store: MinIO locally, GCS through its
// interoperability endpoint in production.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicBaseURL overrides the {endpoint}/{bucket} prefix of returned URLs.
	PublicBaseURL string
}

// S3Store uploads objects as public-read and returns unsigned URLs.
type S3Store struct {
	client     *minio.Client
	bucketName string
	region     string
	publicBase string

	initMu      sync.Mutex
	initialized bool
}

const bucketCheckTimeout = 10 * time.Second

func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("s3 access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	publicBase := strings.TrimSpace(cfg.PublicBaseURL)
	if publicBase == "" {
		publicBase = joinURL(client.EndpointURL().String(), bucket)
	}
	return &S3Store{
		client:     client,
		bucketName: bucket,
		region:     region,
		publicBase: publicBase,
	}, nil
}

func (s *S3Store) ensureBucket(ctx context.Context) error {
	if s == nil || s.client == nil {
		return fmt.Errorf("store is nil")
	}
	s.initMu.Lock()
	defer s.initMu.Unlock()
	if s.initialized {
		return nil
	}
	// A failed check is retried on the next call; the caller's cancellation
	// must not poison it.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), bucketCheckTimeout)
	defer cancel()
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return err
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return err
		}
	}
	s.initialized = true
	return nil
}

func (s *S3Store) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	key, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", fmt.Errorf("ensure bucket: %w", err)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, s.bucketName, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
		UserMetadata: map[string]string{"x-amz-acl": "public-read"},
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.PublicURL(key), nil
}

func (s *S3Store) GetURL(ctx context.Context, path string) (string, error) {
	key, err := cleanPath(path)
	if err != nil {
		return "", err
	}
	if _, err := s.client.StatObject(ctx, s.bucketName, key, minio.StatObjectOptions{}); err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "NoSuchKey" || code == "NoSuchBucket" {
			return "", ErrNotFound
		}
		return "", err
	}
	return s.PublicURL(key), nil
}

// PublicURL is the unsigned URL of key; it does not check existence.
func (s *S3Store) PublicURL(key string) string {
	return joinURL(s.publicBase, strings.TrimLeft(key, "/"))
}
