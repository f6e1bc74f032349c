package host

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// S3Config holds the configuration for an S3-backed library.
type S3Config struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string // Optional: for custom S3-compatible endpoints
	AccessKeyID     string // Optional: AWS access key ID
	SecretAccessKey string // Optional: AWS secret access key
}

// ObjectPutter is the subset of the S3 client the library uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Library stores added items in a bucket. Scratch space and visuals stay
// on the wrapped local library.
type S3Library struct {
	*FSLibrary
	client ObjectPutter
	bucket string
	prefix string
}

// NewS3Library builds an S3 client from cfg and wraps local.
func NewS3Library(ctx context.Context, local *FSLibrary, cfg S3Config) (*S3Library, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}

	var configOpts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		configOpts = append(configOpts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		})
	}

	return NewS3LibraryWithClient(local, s3.NewFromConfig(awsCfg, clientOpts...), cfg.Bucket, cfg.Prefix), nil
}

func NewS3LibraryWithClient(local *FSLibrary, client ObjectPutter, bucket, prefix string) *S3Library {
	return &S3Library{FSLibrary: local, client: client, bucket: bucket, prefix: prefix}
}

// ObjectKey is the key a file at p is stored under.
func (l *S3Library) ObjectKey(p string) string {
	prefix := strings.Trim(l.prefix, "/")
	if prefix == "" {
		return filepath.Base(p)
	}
	return path.Join(prefix, filepath.Base(p))
}

// AddFromPath uploads the file at p to the bucket.
func (l *S3Library) AddFromPath(ctx context.Context, p string) error {
	f, err := os.Open(p)
	if err != nil {
		return err
	}
	defer f.Close()

	key := l.ObjectKey(p)
	input := &s3.PutObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(key),
		Body:   f,
	}
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		input.ContentType = aws.String(ct)
	}

	if _, err := l.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("upload to S3: %w", err)
	}

	l.logger.Info("Uploaded item to S3", zap.String("bucket", l.bucket), zap.String("key", key))
	return nil
}
