package objectstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_object_client.go -package=mocks c3ingest/internal/objectstore ObjectClient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"c3ingest/internal/contextutil"
)

// ObjectClient stores and fetches objects in a single bucket.
type ObjectClient interface {
	// UploadFile stores data under key and returns the object URL.
	UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// GetFile reads the whole object stored under key.
	GetFile(ctx context.Context, key string) ([]byte, error)
}

// Options configures an S3Client.
type Options struct {
	Bucket    string
	Region    string
	AccessKey string // Static credentials; the default AWS chain is used when empty
	SecretKey string
	Endpoint  string // Optional S3 compatible endpoint, addressed path style
}

// S3Client implements ObjectClient on AWS S3.
type S3Client struct {
	client   *s3.Client
	uploader *manager.Uploader
	region   string
	bucket   string
	endpoint string
}

// NewS3Client creates an S3 client for the configured bucket.
func NewS3Client(ctx context.Context, opts Options) (*S3Client, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}
	if opts.Region == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}

	loadOpts := []func(*config.LoadOptions) error{
		config.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" || opts.SecretKey != "" {
		if opts.AccessKey == "" || opts.SecretKey == "" {
			return nil, fmt.Errorf("AWS credentials must set both access key and secret key")
		}
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "object storage configured",
		"bucket", opts.Bucket, "region", opts.Region)

	return &S3Client{
		client:   client,
		uploader: manager.NewUploader(client),
		region:   opts.Region,
		bucket:   opts.Bucket,
		endpoint: opts.Endpoint,
	}, nil
}

// Bucket returns the bucket this client writes to.
func (c *S3Client) Bucket() string {
	return c.bucket
}

// UploadFile uploads data to the bucket and returns the object URL.
func (c *S3Client) UploadFile(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	_, err := c.uploader.Upload(ctxUpload, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	return c.objectURL(key), nil
}

// GetFile downloads an object into memory.
func (c *S3Client) GetFile(ctx context.Context, key string) ([]byte, error) {
	ctxGet, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	resp, err := c.client.GetObject(ctxGet, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return body, nil
}

func (c *S3Client) objectURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}
