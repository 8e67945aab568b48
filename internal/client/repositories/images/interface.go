package images

import "context"

// Repository stores image payloads. Entries are write-once: a key is never
// rewritten with different content.
type Repository interface {
	// Get returns the payload for key, or (nil, nil) when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores data under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// TotalSize reports the number of payload bytes currently stored.
	TotalSize(ctx context.Context) (int64, error)

	// Clear removes every stored payload.
	Clear(ctx context.Context) error
}
