// Package store persists finished transcript artifacts to an S3-compatible
// object store.
package store

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/snarg/scribe-engine/internal/config"
)

// S3Sink writes transcript JSON documents under <prefix>/transcripts/.
type S3Sink struct {
	client *s3.Client
	bucket string
	prefix string
	log    zerolog.Logger
}

// NewS3Sink creates an S3 transcript sink from config.
func NewS3Sink(cfg *config.Config, log zerolog.Logger) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	var s3Opts []func(*s3.Options)
	if cfg.S3Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Sink{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: cfg.S3Bucket,
		prefix: cfg.S3Prefix,
		log:    log.With().Str("component", "s3-sink").Logger(),
	}, nil
}

// HeadBucket checks that the bucket exists and credentials are valid.
func (s *S3Sink) HeadBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: &s.bucket,
	})
	return err
}

// Save uploads one transcript document. name is the source recording's
// basename; the object lands at <prefix>/transcripts/<name>.json.
func (s *S3Sink) Save(ctx context.Context, name string, doc []byte) error {
	key := s.objectKey(name)
	contentType := "application/json"
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(doc),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("put transcript %s: %w", key, err)
	}
	s.log.Debug().Str("key", key).Int("bytes", len(doc)).Msg("transcript uploaded")
	return nil
}

func (s *S3Sink) objectKey(name string) string {
	key := path.Join("transcripts", name+".json")
	if s.prefix != "" {
		key = path.Join(s.prefix, key)
	}
	return key
}
