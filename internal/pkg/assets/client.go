package assets

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/LeadFox/internal/pkg/env"
)

// ObjectStore stores public objects and returns their URL
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// S3Client wraps the S3 client for site media uploads
type S3Client struct {
	s3Client *s3.Client
	config   env.AssetsConfig
}

// NewS3Client creates a client for an S3-compatible bucket
func NewS3Client(ctx context.Context, cfg env.AssetsConfig) (*S3Client, error) {
	if !cfg.Enabled {
		return nil, fmt.Errorf("asset storage is disabled")
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	log.Infof("[Assets] S3 client ready for bucket: %s", cfg.BucketName)
	return &S3Client{s3Client: s3Client, config: cfg}, nil
}

// Put uploads body under key with a public-read ACL
func (c *S3Client) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	_, err := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.config.BucketName),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
		CacheControl:  aws.String("public, max-age=31536000"),
		Metadata: map[string]string{
			"upload-source": "leadfox-site-media",
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	log.Infof("[Assets] Uploaded s3://%s/%s (%d bytes)", c.config.BucketName, key, len(body))
	return PublicURL(c.config, key), nil
}

// PublicURL builds the URL an uploaded object is served from
func PublicURL(cfg env.AssetsConfig, key string) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/") + "/" + key
	}
	if cfg.EndpointURL != "" {
		return strings.TrimRight(cfg.EndpointURL, "/") + "/" + cfg.BucketName + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", cfg.BucketName, cfg.Region, key)
}
