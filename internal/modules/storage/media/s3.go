package media

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	appcfg "github.com/youth-club/core/internal/config"
)

// ObjectStore writes objects to the media bucket.
type ObjectStore interface {
	Put(ctx context.Context, key string, payload []byte, contentType string) error
}

type s3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store builds a client for AWS S3 or any S3-compatible endpoint.
func NewS3Store(opts appcfg.MediaOptions) (ObjectStore, error) {
	if !opts.Enabled() {
		return nil, fmt.Errorf("incomplete media config: bucket and region are required")
	}
	if opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete media config: access_key_id and secret_access_key are required")
	}

	s3Opts := s3.Options{
		Region: opts.Region,
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			opts.AccessKeyID, opts.SecretAccessKey, "")),
	}
	if opts.Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.Endpoint)
		s3Opts.UsePathStyle = true
	}
	if opts.PathStyle {
		s3Opts.UsePathStyle = true
	}
	return &s3Store{client: s3.New(s3Opts), bucket: opts.Bucket}, nil
}

func (s *s3Store) Put(ctx context.Context, key string, payload []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentLength: aws.Int64(int64(len(payload))),
		ContentType:   aws.String(contentType),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	return err
}

// publicURL is where a stored object can be fetched from.
func publicURL(opts appcfg.MediaOptions, key string) string {
	escaped := escapeKey(key)
	if opts.CustomDomain != "" {
		return opts.CustomDomain + "/" + escaped
	}

	endpoint := opts.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", opts.Region)
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return ""
	}
	base := strings.TrimSuffix(u.Path, "/")
	if opts.PathStyle || opts.Endpoint != "" {
		return u.Scheme + "://" + u.Host + base + "/" + opts.Bucket + "/" + escaped
	}
	return u.Scheme + "://" + opts.Bucket + "." + u.Host + base + "/" + escaped
}

func escapeKey(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}
