package directory

import "errors"

var (
	// ErrNotFound indicates the doctor id does not exist.
	ErrNotFound = errors.New("doctor not found")

	// ErrStoreUnavailable indicates the directory store failed; the caller
	// may retry. Never substituted with fabricated data.
	ErrStoreUnavailable = errors.New("doctor directory unavailable")
)
