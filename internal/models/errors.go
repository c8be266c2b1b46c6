package models

import "errors"

// Error taxonomy shared across the pipeline. Repositories and services wrap
// these sentinels with fmt.Errorf("%w: ...") so handlers can map them to
// status codes with errors.Is.
var (
	// ErrValidation marks a request rejected before any state mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a lookup that matched nothing. No mutation occurred.
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable marks a backing-store failure. The pipeline does
	// not retry; partial effects before the failure are not rolled back.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
