// Package s3archive copies every quote as a JSON document into an S3
// compatible bucket.
package s3archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/hongminglow/itarix-api/internal/models"
)

// Config locates the bucket. Endpoint is only needed for S3 compatible
// stores such as MinIO.
type Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Prefix    string
}

// PutObjectAPI is the subset of the S3 client the archive uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archive writes quotes to a bucket.
type Archive struct {
	client PutObjectAPI
	bucket string
	prefix string
}

// New returns an archive writing through client.
func New(client PutObjectAPI, bucket, prefix string) *Archive {
	if prefix == "" {
		prefix = "quotes"
	}
	return &Archive{client: client, bucket: bucket, prefix: prefix}
}

// Open builds an S3 client from cfg and returns an archive using it.
func Open(ctx context.Context, cfg Config) (*Archive, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return New(client, cfg.Bucket, cfg.Prefix), nil
}

// Key is the object key a quote is stored under.
func (a *Archive) Key(q models.Quote) string {
	return path.Join(a.prefix, strconv.Itoa(q.CreatedAt.Year()), q.ID+".json")
}

// Archive uploads q as JSON.
func (a *Archive) Archive(ctx context.Context, q models.Quote) error {
	body, err := json.Marshal(q)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.Key(q)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"quote-id": q.ID,
			"user-id":  strconv.FormatInt(q.AccountID, 10),
		},
	})
	if err != nil {
		return fmt.Errorf("put quote %s: %w", q.ID, err)
	}
	return nil
}
