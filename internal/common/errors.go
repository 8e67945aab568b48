// Package common defines sentinel errors shared by the docarchive client
// layers. Callers should use errors.Is to match these values; concrete errors
// are wrapped with context via fmt.Errorf("...: %w").
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrNetwork marks a failed list, detail or image fetch. It is never
	// retried by the cache layer.
	ErrNetwork = errors.New("network failure")

	// ErrStoreWrite marks a persistent store rejecting a write. The cache
	// layer logs it and still returns the freshly fetched value.
	ErrStoreWrite = errors.New("store write failure")

	// ErrMalformedPayload marks an image payload too small to be real image
	// data. Reported, not persisted, still returned.
	ErrMalformedPayload = errors.New("malformed payload")

	// ErrCorruptEntry marks a cached JSON value that no longer decodes.
	ErrCorruptEntry = errors.New("corrupt cache entry")

	// ErrInvalidArgument is returned for ids or image indexes out of range.
	ErrInvalidArgument = errors.New("invalid argument")
)
