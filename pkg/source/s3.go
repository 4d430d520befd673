package source

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dd0wney/cluso-conduit/pkg/model"
)

// ObjectStore is the part of the S3 client the loader uses.
type ObjectStore interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ ObjectStore = (*s3.Client)(nil)

// S3Options locates a document in an S3-compatible store.
type S3Options struct {
	Bucket    string
	Key       string
	Region    string
	Endpoint  string // for S3-compatible stores such as MinIO
	PathStyle bool

	// Static credentials. When empty the default AWS credential chain is used.
	AccessKeyID     string
	SecretAccessKey string
}

// S3Loader reads and writes one object.
type S3Loader struct {
	client ObjectStore
	bucket string
	key    string
}

// NewS3Loader builds a client from the default AWS configuration and opts.
func NewS3Loader(ctx context.Context, opts S3Options) (*S3Loader, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.PathStyle
	})
	return NewS3LoaderWithClient(client, opts.Bucket, opts.Key), nil
}

// NewS3LoaderWithClient uses an existing client.
func NewS3LoaderWithClient(client ObjectStore, bucket, key string) *S3Loader {
	return &S3Loader{client: client, bucket: bucket, key: key}
}

func (l *S3Loader) Load(ctx context.Context) (*model.Document, error) {
	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", l.bucket, l.key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", l.bucket, l.key, err)
	}
	return decode(l.key, data)
}

func (l *S3Loader) Save(ctx context.Context, doc *model.Document) error {
	data, err := encode(l.key, doc)
	if err != nil {
		return err
	}

	contentType := "application/json"
	if Compressed(l.key) {
		contentType = "application/x-snappy"
	}
	_, err = l.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(l.bucket),
		Key:         aws.String(l.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put s3://%s/%s: %w", l.bucket, l.key, err)
	}
	return nil
}
