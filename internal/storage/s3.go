package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3API is the subset of *s3.Client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner is the subset of *s3.PresignClient used by S3Store.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Options struct {
	Client    S3API
	Presigner Presigner
	Bucket    string
	Logger    *zerolog.Logger
}

// S3Store keeps objects in a single bucket.
type S3Store struct {
	client    S3API
	presigner Presigner
	bucket    string
	logger    zerolog.Logger
}

func NewS3Store(opts S3Options) (*S3Store, error) {
	if opts.Client == nil {
		return nil, errors.New("storage: s3 client is required")
	}
	if opts.Bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &S3Store{client: opts.Client, presigner: opts.Presigner, bucket: opts.Bucket, logger: logger}, nil
}

// NewS3StoreFromClient wires a store and its presigner from one SDK client.
func NewS3StoreFromClient(client *s3.Client, bucket string, logger *zerolog.Logger) (*S3Store, error) {
	return NewS3Store(S3Options{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		Logger:    logger,
	})
}

func (s *S3Store) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("storage: get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	s.logger.Debug().Str("object_name", key).Int("bytes", len(data)).Msg("object loaded")
	return data, nil
}

func (s *S3Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("storage: put %s: %w", key, err)
	}
	s.logger.Info().Str("object_name", key).Int("bytes", len(data)).Msg("object stored")
	return nil
}

func (s *S3Store) Presign(ctx context.Context, key, method string, ttl time.Duration) (string, error) {
	if s.presigner == nil {
		return "", errors.New("storage: presigner is not configured")
	}
	expires := func(o *s3.PresignOptions) { o.Expires = ttl }
	var (
		req *v4.PresignedHTTPRequest
		err error
	)
	switch method {
	case MethodGet:
		req, err = s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, expires)
	case MethodPut:
		req, err = s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, expires)
	default:
		return "", fmt.Errorf("storage: unsupported presign method %q", method)
	}
	if err != nil {
		return "", fmt.Errorf("storage: presign %s %s: %w", method, key, err)
	}
	return req.URL, nil
}

var _ Store = (*S3Store)(nil)
