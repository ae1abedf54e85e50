// Package cache provides a small read-through cache for store documents.
// The kiosk dashboard polls the same handful of documents continuously, so
// repositories put recently read documents here and drop them on every write.
package cache

import (
	"context"
	"time"
)

// DocumentCache holds generic documents under string keys with a TTL.
// Implementations must be safe for concurrent use. Failures are treated as
// misses: the cache is an optimization, never a source of truth.
type DocumentCache interface {
	Get(ctx context.Context, key string) (map[string]interface{}, bool)
	Set(ctx context.Context, key string, doc map[string]interface{}, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// Key builds the canonical cache key for a document.
func Key(collection, documentID string) string {
	return collection + ":" + documentID
}
