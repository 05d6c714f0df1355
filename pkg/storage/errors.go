package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a key does not exist or an index is out of range.
	ErrNotFound = errors.New("storage: key not found")

	// ErrUnavailable is returned when a facility is missing or fails its probe.
	ErrUnavailable = errors.New("storage: facility unavailable")

	// ErrQuotaExceeded is returned when a write would exceed the facility quota.
	ErrQuotaExceeded = errors.New("storage: quota exceeded")

	// ErrClosed is returned when an operation is attempted on a closed facility.
	ErrClosed = errors.New("storage: closed")

	// ErrInvalidConfig is returned when a backend is constructed with missing settings.
	ErrInvalidConfig = errors.New("storage: invalid configuration")

	// Backend operation errors.
	ErrReadFailed   = errors.New("storage: read failed")
	ErrWriteFailed  = errors.New("storage: write failed")
	ErrDeleteFailed = errors.New("storage: delete failed")
	ErrListFailed   = errors.New("storage: list failed")
)

// wrapS3Error maps S3 errors onto the storage sentinels.
// The original error is formatted with %v so callers match on sentinels only.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden", "NoSuchBucket":
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return fmt.Errorf("%w: %v", fallback, err)
}
