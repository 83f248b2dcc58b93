package s3bucket

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Bucket struct {
	client *s3.Client
	bucket string
	region string
}

func NewS3Bucket(cfg aws.Config, bucket string) *S3Bucket {
	return &S3Bucket{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		region: cfg.Region,
	}
}

type Object struct {
	Key             string
	Content         []byte
	MediaType       string
	ContentEncoding string // optional, e.g. "zstd"
}

// Upload stores the object under its key and returns the object URL.
func (bucket *S3Bucket) Upload(ctx context.Context, obj Object) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      &bucket.bucket,
		Key:         &obj.Key,
		Body:        bytes.NewReader(obj.Content),
		ContentType: &obj.MediaType,
	}
	if obj.ContentEncoding != "" {
		input.ContentEncoding = aws.String(obj.ContentEncoding)
	}
	_, err := bucket.client.PutObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	objectURL := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket.bucket, bucket.region, obj.Key)

	return objectURL, nil
}

func (bucket *S3Bucket) Delete(ctx context.Context, key string) error {
	_, err := bucket.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &bucket.bucket,
		Key:    &key,
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
