package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/suiblog/internal/common"
	"github.com/dmitrijs2005/suiblog/internal/cryptox"
	"github.com/dmitrijs2005/suiblog/internal/logging"
	"github.com/dmitrijs2005/suiblog/internal/metrics"
	"github.com/dmitrijs2005/suiblog/internal/netx"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sethvargo/go-retry"
)

// test seams
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config locates an S3-compatible bucket (AWS, MinIO).
type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// S3 stores blobs under content-addressed keys, so a repeated upload of the
// same bytes finds the existing object and is reported as already stored.
type S3 struct {
	client   s3API
	bucket   string
	endpoint string
	retry    netx.RetryPolicy
	metrics  metrics.Provider
	log      logging.Logger

	// fallback reads references that do not name an object in the bucket,
	// such as Walrus blob ids and aggregator URLs.
	fallback Fetcher
}

func NewS3(ctx context.Context, c S3Config, policy netx.RetryPolicy, m metrics.Provider, log logging.Logger) (*S3, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.Endpoint)
		o.UsePathStyle = true
	})

	if m == nil {
		m = metrics.Noop{}
	}
	return &S3{
		client:   client,
		bucket:   c.Bucket,
		endpoint: strings.TrimRight(c.Endpoint, "/"),
		retry:    policy,
		metrics:  m,
		log:      log.With("component", "s3"),
	}, nil
}

// WithFallback sets the fetcher used for references outside the bucket.
func (s *S3) WithFallback(f Fetcher) *S3 {
	s.fallback = f
	return s
}

const keyPrefix = "blobs/"

// Key returns the object key for data: blobs/<blake2b-256 hex>.
func Key(data []byte) string {
	return keyPrefix + cryptox.Digest(data)
}

func (s *S3) Upload(ctx context.Context, data []byte, epochs int, recipient string) (string, error) {
	key := Key(data)

	err := retry.Do(ctx, s.retry.Backoff(), func(ctx context.Context) error {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err == nil {
			s.log.Debug(ctx, "blob already stored", "key", key)
			return nil
		}

		var nf *types.NotFound
		if !errors.As(err, &nf) {
			return s3Retry(&common.UploadError{Err: err}, err)
		}

		meta := map[string]string{"epochs": fmt.Sprint(epochs)}
		if recipient != "" {
			meta["owner"] = recipient
		}
		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(mimetype.Detect(data).String()),
			Metadata:    meta,
		})
		if err != nil {
			return s3Retry(&common.UploadError{Err: err}, err)
		}
		return nil
	})

	s.metrics.IncrementUploads("s3", err == nil)
	if err != nil {
		return "", err
	}
	return key, nil
}

// s3Retry marks wrapped as retryable when cause is throttling, a 5xx answer
// or a transport failure. Other API errors (AccessDenied, NoSuchBucket) are final.
func s3Retry(wrapped, cause error) error {
	var status interface{ HTTPStatusCode() int }
	if errors.As(cause, &status) && status.HTTPStatusCode() != 0 {
		if netx.Retryable(status.HTTPStatusCode()) {
			return retry.RetryableError(wrapped)
		}
		return wrapped
	}
	var api smithy.APIError
	if errors.As(cause, &api) {
		switch api.ErrorCode() {
		case "SlowDown", "Throttling", "ThrottlingException", "RequestTimeout":
			return retry.RetryableError(wrapped)
		}
		return wrapped
	}
	return retry.RetryableError(wrapped)
}

func (s *S3) URL(id string) string {
	return s.endpoint + "/" + s.bucket + "/" + id
}

// objectKey maps ref to a bucket key. It reports false for anything that is
// neither a key produced by Key nor a URL produced by URL.
func (s *S3) objectKey(ref string) (string, bool) {
	if IsURL(ref) {
		return strings.CutPrefix(ref, s.endpoint+"/"+s.bucket+"/")
	}
	return ref, strings.HasPrefix(ref, keyPrefix)
}

// Fetch accepts a key or a URL previously returned by URL. Other references
// go to the fallback fetcher.
func (s *S3) Fetch(ctx context.Context, ref string) ([]byte, error) {
	key, ok := s.objectKey(ref)
	if !ok {
		if s.fallback == nil {
			return nil, &common.NotFoundError{ID: ref}
		}
		return s.fallback.Fetch(ctx, ref)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nk *types.NoSuchKey
		if errors.As(err, &nk) {
			return nil, &common.NotFoundError{ID: ref}
		}
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", key, err)
	}
	if digest, ok := strings.CutPrefix(key, keyPrefix); ok {
		if err := cryptox.Verify(data, digest); err != nil {
			return nil, fmt.Errorf("object %s: %w", key, err)
		}
	}
	return data, nil
}
