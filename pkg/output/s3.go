package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/df07/go-phong-raytracer/pkg/config"
)

// UploadTimeout bounds a single upload
const UploadTimeout = 30 * time.Second

var ErrS3Disabled = errors.New("s3 upload is not configured")

// S3Publisher uploads encoded images to a bucket
type S3Publisher struct {
	client s3iface.S3API
	bucket string
	prefix string
}

// NewS3Publisher creates a publisher from configuration. Static credentials
// are used when present; otherwise the default AWS credential chain applies.
func NewS3Publisher(cfg config.S3Config) (*S3Publisher, error) {
	if !cfg.Enabled() {
		return nil, ErrS3Disabled
	}

	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return NewS3PublisherWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix), nil
}

// NewS3PublisherWithClient creates a publisher around an existing client
func NewS3PublisherWithClient(client s3iface.S3API, bucket, prefix string) *S3Publisher {
	return &S3Publisher{client: client, bucket: bucket, prefix: prefix}
}

// Key returns the object key name is stored under
func (p *S3Publisher) Key(name string) string {
	return path.Join(p.prefix, name)
}

// Upload stores data under the prefixed key name and returns the full key
func (p *S3Publisher) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	key := p.Key(name)
	_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return key, nil
}

// UploadImage encodes img in format f and uploads it
func (p *S3Publisher) UploadImage(ctx context.Context, name string, img image.Image, f Format) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return "", err
	}
	return p.Upload(ctx, name, buf.Bytes(), f.ContentType())
}
