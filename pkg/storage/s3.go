package storage

import (
	"context"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `env:"BUCKET" yaml:"bucket"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `env:"ACCESS_KEY" yaml:"access_key"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `env:"SECRET_KEY" yaml:"secret_key"`

	// Endpoint is a custom endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `env:"ENDPOINT" yaml:"endpoint"`

	// Region is the AWS region (default: us-east-1).
	Region string `env:"REGION" yaml:"region"`

	// PathStyle enables path-style addressing (required for MinIO).
	PathStyle bool `env:"PATH_STYLE" yaml:"path_style"`
}

// DefaultRegion is used when S3Config.Region is empty.
const DefaultRegion = "us-east-1"

// deleteBatchSize is the DeleteObjects limit per request.
const deleteBatchSize = 1000

func (c *S3Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
}

func (c *S3Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// S3 is a storage facility that keeps one object per key under
// "<namespace>/" in a bucket. Keys are path-escaped in object names.
type S3 struct {
	client *s3.Client
	cfg    S3Config
	prefix string
}

// NewS3 creates an S3-backed facility.
// An empty namespace falls back to "finboard:durable".
func NewS3(cfg S3Config, namespace string) (*S3, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if namespace == "" {
		namespace = DefaultNamespace + ":" + string(ScopeDurable)
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)
		},
	}

	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return &S3{
		client: s3.New(s3.Options{}, opts...),
		cfg:    cfg,
		prefix: url.PathEscape(namespace) + "/",
	}, nil
}

// Get downloads the object holding key.
func (s *S3) Get(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return "", wrapS3Error(err, ErrReadFailed)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", wrapS3Error(err, ErrReadFailed)
	}
	return string(data), nil
}

// Set uploads value as the object holding key.
func (s *S3) Set(ctx context.Context, key, value string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.cfg.Bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          strings.NewReader(value),
		ContentLength: aws.Int64(int64(len(value))),
		ContentType:   aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return wrapS3Error(err, ErrWriteFailed)
	}
	return nil
}

// Remove deletes the object holding key.
func (s *S3) Remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(s.objectKey(key)),
	})
	if err != nil {
		return wrapS3Error(err, ErrDeleteFailed)
	}
	return nil
}

// Clear deletes every object under the namespace prefix.
func (s *S3) Clear(ctx context.Context) error {
	objects, err := s.list(ctx)
	if err != nil {
		return err
	}

	for batch := range slices.Chunk(objects, deleteBatchSize) {
		ids := make([]types.ObjectIdentifier, 0, len(batch))
		for _, obj := range batch {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(obj)})
		}

		_, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.cfg.Bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return wrapS3Error(err, ErrDeleteFailed)
		}
	}

	return nil
}

// Key returns the key at position index in the bucket's listing order.
func (s *S3) Key(ctx context.Context, index int) (string, error) {
	objects, err := s.list(ctx)
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(objects) {
		return "", ErrNotFound
	}

	key, err := url.PathUnescape(strings.TrimPrefix(objects[index], s.prefix))
	if err != nil {
		return "", wrapS3Error(err, ErrListFailed)
	}
	return key, nil
}

// Len returns the number of objects under the namespace prefix.
func (s *S3) Len(ctx context.Context) (int, error) {
	objects, err := s.list(ctx)
	if err != nil {
		return 0, err
	}
	return len(objects), nil
}

// list returns the object names under the namespace prefix.
func (s *S3) list(ctx context.Context) ([]string, error) {
	var objects []string

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.cfg.Bucket),
		Prefix: aws.String(s.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, wrapS3Error(err, ErrListFailed)
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				objects = append(objects, *obj.Key)
			}
		}
	}

	return objects, nil
}

func (s *S3) objectKey(key string) string {
	return s.prefix + url.PathEscape(key)
}

var _ Storage = (*S3)(nil)
