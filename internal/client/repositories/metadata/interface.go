// Package metadata is the Metadata Store: a persistent key/value tier for
// small JSON values (the list snapshot under "docs" and one detail entry per
// document under "docs/{id}").
//
// Implementations:
//
//   - SQLiteRepository  : local database file (default)
//   - PostgresRepository: shared database, pgx driver
//   - MemoryRepository  : process-local map, used by tests
//
// Contract: Get returns (nil, nil) when the key is absent. Keys returns the
// stored keys that start with prefix in ascending order.
package metadata

import (
	"context"
	"strings"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	Clear(ctx context.Context) error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePrefix turns prefix into a LIKE pattern matching it literally.
func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}
