package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config holds the construction parameters of an S3 store.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string // MinIO 等兼容服务
	AccessKeyID     string // 为空时使用默认凭证链
	SecretAccessKey string
	PathStyle       bool
}

// S3 stores blobs in a single bucket of an S3-compatible service.
type S3 struct {
	client *s3.Client
	bucket string
	base   string
}

// NewS3 builds a client from the default AWS config chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	base := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	if cfg.Endpoint != "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3{client: client, bucket: cfg.Bucket, base: base}, nil
}

func (s *S3) Driver() Driver { return DriverS3 }

func (s *S3) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return Info{}, err
	}
	// 先 Head 模拟只创建语义
	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &k}); err == nil {
		return Info{}, fmt.Errorf("blob %s already exists", k)
	}

	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &k, Body: r}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return Info{}, err
	}

	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &k})
	if err != nil {
		return Info{}, err
	}
	return s.info(k, head.ContentLength, head.ContentType, head.LastModified), nil
}

func (s *S3) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return Info{}, nil, ErrNotFound
		}
		return Info{}, nil, err
	}
	return s.info(key, out.ContentLength, out.ContentType, out.LastModified), out.Body, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key})
	return err
}

func (s *S3) info(key string, size *int64, contentType *string, lastModified *time.Time) Info {
	return Info{
		Key:          key,
		Size:         aws.ToInt64(size),
		ContentType:  aws.ToString(contentType),
		LastModified: aws.ToTime(lastModified),
		URL:          s.base + "/" + key,
	}
}
