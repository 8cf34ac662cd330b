package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds the S3-compatible endpoint settings. Endpoint may point at any
// S3 API (Supabase storage, R2, MinIO, AWS itself).
type Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	// PublicURL is the base under which uploaded objects are served.
	PublicURL string
	// Folder prefixes every object key, e.g. "payment-screenshots".
	Folder string
}

// S3Store is the production FileStore over an S3-compatible bucket.
type S3Store struct {
	client    *s3.Client
	bucket    string
	publicURL string
	folder    string
	logger    zerolog.Logger
}

func NewS3Store(ctx context.Context, cfg Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		// Supabase and MinIO endpoints do not support virtual-hosted buckets.
		o.UsePathStyle = true
	})

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimSuffix(cfg.PublicURL, "/"),
		folder:    strings.Trim(cfg.Folder, "/"),
		logger:    log.With().Str("component", "s3store").Logger(),
	}, nil
}

// Upload writes the file under a collision-resistant key and returns the key
// plus its public URL.
func (s *S3Store) Upload(ctx context.Context, body io.Reader, contentType, originalName string) (UploadResult, error) {
	key := objectKey(s.folder, originalName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         body,
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
	})
	if err != nil {
		return UploadResult{}, fmt.Errorf("uploading %s: %w", key, err)
	}

	result := UploadResult{
		Key:       key,
		PublicURL: fmt.Sprintf("%s/%s", s.publicURL, key),
	}
	s.logger.Info().Str("key", key).Msg("file uploaded")
	return result, nil
}

// Delete removes a stored file by key.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// objectKey builds "<folder>/<unix-ms>_<random><ext>". Timestamp plus random
// suffix keeps concurrent uploads from colliding or overwriting.
func objectKey(folder, originalName string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), suffix, ext)
	if folder == "" {
		return name
	}
	return fmt.Sprintf("%s/%s", folder, name)
}
