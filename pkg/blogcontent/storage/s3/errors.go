package s3

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/smithy-go"
)

// BucketErrorKind classifies why a bucket could not be used
type BucketErrorKind string

const (
	BucketNotFound     BucketErrorKind = "not_found"
	BucketAccessDenied BucketErrorKind = "access_denied"
	BucketUnavailable  BucketErrorKind = "other"
)

// BucketError is returned by New when the bucket check fails.
// It matches ErrBucketNotFound or ErrBucketAccessDenied with errors.Is.
type BucketError struct {
	Bucket string
	Kind   BucketErrorKind
	Err    error
}

func (e *BucketError) Error() string {
	switch e.Kind {
	case BucketNotFound:
		return fmt.Sprintf("S3 bucket '%s' does not exist: %v", e.Bucket, e.Err)
	case BucketAccessDenied:
		return fmt.Sprintf("access denied to S3 bucket '%s': %v", e.Bucket, e.Err)
	default:
		return fmt.Sprintf("failed to access S3 bucket '%s': %v", e.Bucket, e.Err)
	}
}

func (e *BucketError) Unwrap() []error {
	switch e.Kind {
	case BucketNotFound:
		return []error{ErrBucketNotFound, e.Err}
	case BucketAccessDenied:
		return []error{ErrBucketAccessDenied, e.Err}
	default:
		return []error{e.Err}
	}
}

func classifyBucketError(bucket string, err error) *BucketError {
	return &BucketError{Bucket: bucket, Kind: bucketErrorKind(err), Err: err}
}

func bucketErrorKind(err error) BucketErrorKind {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket", "404":
			return BucketNotFound
		case "Forbidden", "AccessDenied", "403":
			return BucketAccessDenied
		}
	}

	// HEAD responses carry no error body, so the status code is often all there is
	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		switch statusErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return BucketNotFound
		case http.StatusForbidden:
			return BucketAccessDenied
		}
	}

	return BucketUnavailable
}
