package services

import "context"

// DocumentServiceOption customises a DocumentService.
type DocumentServiceOption func(*documentService)

// WithDetailConcurrency lets a list refresh fetch up to n detail entries at
// once. Values below 2 keep the loop sequential.
func WithDetailConcurrency(n int) DocumentServiceOption {
	return func(s *documentService) {
		if n < 1 {
			n = 1
		}
		s.detailConcurrency = n
	}
}

// WithMinImageSize sets the smallest payload, in bytes, stored as an image.
func WithMinImageSize(n int) DocumentServiceOption {
	return func(s *documentService) {
		if n < 0 {
			n = 0
		}
		s.minImageSize = n
	}
}

// WithPurge replaces the default store-by-store Purge, e.g. with one that
// clears both stores in a single transaction.
func WithPurge(fn func(ctx context.Context) error) DocumentServiceOption {
	return func(s *documentService) {
		s.purge = fn
	}
}
