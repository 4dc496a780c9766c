// Package blob stores vehicle photos in an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"carshow-backend/config"
)

// ErrForeignURL is returned by Delete for URLs this store did not hand out.
var ErrForeignURL = errors.New("url does not belong to this store")

// Store is the object storage used for photos.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, opts PutOptions) (Object, error)
	Delete(ctx context.Context, url string) error
	Owns(url string) bool
}

// PutOptions controls object naming.
type PutOptions struct {
	// RandomSuffix appends a random token to the file name so uploads with the
	// same name do not overwrite each other.
	RandomSuffix bool
}

// Object describes a stored object.
type Object struct {
	URL      string `json:"url"`
	Pathname string `json:"pathname"`
	Size     int64  `json:"size"`
}

// objectAPI is the subset of *s3.Client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store implements Store on top of the AWS SDK.
type S3Store struct {
	client  objectAPI
	bucket  string
	baseURL string
	public  bool
}

// loadDefaultAWSConfig is a seam for tests.
var loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

// NewS3Store builds an S3Store from configuration. Static credentials are used
// when configured, otherwise the default AWS credential chain applies.
func NewS3Store(ctx context.Context, cfg config.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("storage.bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return newS3Store(client, cfg.Bucket, baseURL, cfg.PublicACL), nil
}

func newS3Store(client objectAPI, bucket, baseURL string, public bool) *S3Store {
	return &S3Store{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		public:  public,
	}
}

// Put uploads body under key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string, opts PutOptions) (Object, error) {
	if opts.RandomSuffix {
		key = withRandomSuffix(key)
	}

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if s.public {
		in.ACL = types.ObjectCannedACLPublicRead
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return Object{}, fmt.Errorf("put object %q: %w", key, err)
	}

	return Object{URL: s.baseURL + "/" + key, Pathname: key, Size: size}, nil
}

// Delete removes the object behind a URL previously returned by Put.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	if !s.Owns(url) {
		return ErrForeignURL
	}
	key := strings.TrimPrefix(url, s.baseURL+"/")
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %q: %w", key, err)
	}
	return nil
}

// Owns reports whether url points into this store.
func (s *S3Store) Owns(url string) bool {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	return ok && key != ""
}

// withRandomSuffix turns "dir/name.jpg" into "dir/name-<token>.jpg".
func withRandomSuffix(key string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	ext := path.Ext(key)
	return strings.TrimSuffix(key, ext) + "-" + token + ext
}
