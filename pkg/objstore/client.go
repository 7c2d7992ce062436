// Package objstore stores photo objects in an S3-compatible bucket
// (Cloudflare R2, MinIO, Supabase Storage S3, AWS S3).
package objstore

import (
	"bytes"
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rotisserie/eris"
)

// ErrNoPublicURL is returned by PublicURL when no public base URL is configured.
var ErrNoPublicURL = eris.New("objstore: public url not configured")

// Store puts objects and resolves their public URLs.
type Store interface {
	// Put writes body at key, replacing any existing object.
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PublicURL(key string) (string, error)
}

// Config holds bucket connection settings.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
	UsePathStyle    bool
}

// putObjectAPI is the subset of *s3.Client used here.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client implements Store on top of the AWS SDK S3 client.
type Client struct {
	api       putObjectAPI
	bucket    string
	publicURL string
}

// New creates a Client for the configured endpoint using static credentials.
func New(cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, eris.New("objstore: bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	opts := s3.Options{
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
		Region:       region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	return newWithAPI(s3.New(opts), cfg.Bucket, cfg.PublicURL), nil
}

func newWithAPI(api putObjectAPI, bucket, publicURL string) *Client {
	return &Client{
		api:       api,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}
}

func (c *Client) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	return eris.Wrapf(err, "objstore: put %s", key)
}

// PublicURL joins the configured public base with key.
func (c *Client) PublicURL(key string) (string, error) {
	if c.publicURL == "" {
		return "", ErrNoPublicURL
	}
	return c.publicURL + "/" + strings.TrimLeft(key, "/"), nil
}
