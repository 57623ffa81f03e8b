package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

// S3Client abstracts the S3 API operations used by [S3Sink].
// The [s3.Client] type satisfies this interface.
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink delivers event batches to an S3 bucket (or any S3-compatible
// object store). Each batch becomes one JSON object named
//
//	<prefix>/<unix-millis>-<uuid>.json
//
// so uploads sort by time and retried batches never collide.
type S3Sink struct {
	client S3Client
	bucket string
	prefix string
}

// NewS3Sink creates an S3-backed sink.
//
// The client should be pre-configured with credentials, region, and
// endpoint. Prefix is prepended to object keys; pass "" for none.
func NewS3Sink(client S3Client, bucket, prefix string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket, prefix: prefix}
}

// Deliver uploads the batch via PutObject. Failures the service reports
// as unfixable (missing bucket, rejected credentials) come back wrapped
// in [ErrPermanent].
func (s *S3Sink) Deliver(ctx context.Context, events []any) error {
	body, err := json.Marshal(map[string]any{"events": events})
	if err != nil {
		return fmt.Errorf("telemetry: encode batch: %w", err)
	}
	key := s.objectKey(time.Now())
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		if isPermanent(err) {
			return fmt.Errorf("%w: %w", ErrPermanent, err)
		}
		return fmt.Errorf("telemetry: put %s: %w", key, err)
	}
	return nil
}

// objectKey builds the object key for a batch uploaded at t.
func (s *S3Sink) objectKey(t time.Time) string {
	name := fmt.Sprintf("%d-%s.json", t.UnixMilli(), uuid.NewString())
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}

// isPermanent reports whether an S3 error cannot be fixed by retrying.
func isPermanent(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return true
		}
	}
	return false
}

var _ Sink = (*S3Sink)(nil)
