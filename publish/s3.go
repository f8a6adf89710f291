// Package publish uploads batch summaries and reports to S3-compatible
// object storage.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/obsforge/obsvalidate/iox"
	"github.com/obsforge/obsvalidate/log"
)

// Config holds the object storage destination.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `yaml:"bucket"`
	// Prefix is the key prefix within the bucket (optional).
	Prefix string `yaml:"prefix"`
	// Region is the AWS region (optional, uses default chain if empty).
	Region string `yaml:"region"`
	// Endpoint is a custom S3 endpoint URL for S3-compatible providers
	// (e.g. MinIO). Empty uses the default AWS endpoint.
	Endpoint string `yaml:"endpoint"`
	// UsePathStyle forces path-style addressing (bucket in path, not
	// subdomain). Required by most S3-compatible providers.
	UsePathStyle bool `yaml:"use_path_style"`
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.Bucket == "" {
		return errors.New("S3 bucket is required")
	}
	return nil
}

// ParseS3Path parses a path in format "bucket/prefix" or "bucket".
func ParseS3Path(s string) (bucket, prefix string) {
	parts := strings.SplitN(s, "/", 2)
	bucket = parts[0]
	if len(parts) > 1 {
		prefix = parts[1]
	}
	return bucket, prefix
}

// Publisher uploads files to one bucket/prefix destination.
type Publisher struct {
	client *s3.Client
	config Config
	logger *log.Logger
}

// New creates a publisher using the AWS SDK default credential chain
// (env vars, shared config, IAM role).
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = &endpoint
		})
	}
	if cfg.UsePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	return &Publisher{
		client: s3.NewFromConfig(awsConfig, s3Opts...),
		config: cfg,
		logger: logger,
	}, nil
}

// Upload stores one local file under the configured prefix, keyed by name.
func (p *Publisher) Upload(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", localPath, err)
	}
	defer iox.DiscardClose(f)

	key := name
	if p.config.Prefix != "" {
		key = path.Join(p.config.Prefix, name)
	}

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.config.Bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3://%s/%s: %w", localPath, p.config.Bucket, key, err)
	}

	p.logger.Info("published", map[string]any{
		"file":   localPath,
		"bucket": p.config.Bucket,
		"key":    key,
	})
	return nil
}

// PublishSummary uploads the processing summary and any per-family status
// reports found next to it.
func (p *Publisher) PublishSummary(ctx context.Context, summaryPath string, reportPaths []string) error {
	if err := p.Upload(ctx, summaryPath, path.Base(summaryPath)); err != nil {
		return err
	}
	for _, report := range reportPaths {
		if err := p.Upload(ctx, report, path.Base(report)); err != nil {
			return err
		}
	}
	return nil
}
