package objectstore

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"reelsmith/internal/services"
)

// S3Config configures the S3 backend. Endpoint is optional for AWS and
// required for S3-compatible services.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Store uploads objects with the S3 upload manager, which switches to
// multipart uploads for large files.
type S3Store struct {
	bucket   string
	uploader *manager.Uploader
}

// S3Option customizes the underlying S3 client options.
type S3Option func(*s3.Options)

// WithS3HTTPClient overrides the HTTP client used by the S3 client.
func WithS3HTTPClient(client *http.Client) S3Option {
	return func(o *s3.Options) {
		if client != nil {
			o.HTTPClient = client
		}
	}
}

// NewS3Store constructs an S3 store with static credentials.
func NewS3Store(cfg S3Config, opts ...S3Option) *S3Store {
	options := s3.Options{
		Region: strings.TrimSpace(cfg.Region),
		Credentials: aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			strings.TrimSpace(cfg.AccessKeyID),
			strings.TrimSpace(cfg.SecretAccessKey),
			"",
		)),
		UsePathStyle:               cfg.UsePathStyle,
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	}
	if endpoint := strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"); endpoint != "" {
		options.BaseEndpoint = aws.String(endpoint)
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &S3Store{
		bucket:   strings.Trim(strings.TrimSpace(cfg.Bucket), "/"),
		uploader: manager.NewUploader(s3.New(options)),
	}
}

// Put uploads localPath as `<bucket>/<key>` and returns the upload location.
func (s *S3Store) Put(ctx context.Context, key, localPath, contentType string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "", err)
	}
	if s.bucket == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "put", "storage bucket not configured", nil)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "open artifact", err)
	}
	defer f.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(cleaned),
		Body:   f,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "s3 upload", err)
	}
	location := strings.TrimSpace(out.Location)
	if location == "" {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "s3 upload returned no location", nil)
	}
	return location, nil
}
