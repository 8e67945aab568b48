// Package images is the Binary Store: the persistent tier for image
// payloads, keyed by "docs/{id}/images/{index}". It is kept apart from the
// metadata store because payloads are larger and never re-encoded.
//
// Key Types
//
//   - type Repository         : contract used by the cache layer
//   - type SQLiteRepository   : BLOB table in the local database (default)
//   - type S3Repository       : S3-compatible bucket (aws-sdk-go-v2)
//   - type FileSystemRepository: one file per key under a root directory
//   - type MemoryRepository   : in-process map with an optional byte quota
//
// Get returns (nil, nil) on a miss. Set failures must not panic; the cache
// layer logs them and keeps serving the fetched bytes.
package images
