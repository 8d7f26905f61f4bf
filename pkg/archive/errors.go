package archive

import "errors"

var (
	ErrInvalidKey    = errors.New("invalid object key")
	ErrEmptyDocument = errors.New("document is empty")
	ErrNotFound      = errors.New("document not found")

	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrOperationTimeout   = errors.New("operation timed out")
	ErrOperationCanceled  = errors.New("operation canceled")

	ErrInvalidConfig      = errors.New("invalid archive configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
	ErrFailedToStore      = errors.New("failed to store document")
	ErrFailedToFetch      = errors.New("failed to fetch document")
	ErrFailedToDelete     = errors.New("failed to delete document")
)
