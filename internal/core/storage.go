package core

import "context"

// LongTermRepository is the pluggable persistence boundary for the
// long-term memory tier and the per-user aggregate store.
type LongTermRepository interface {
	// Get returns a user's stored items, optionally filtered by type,
	// newest first.
	Get(ctx context.Context, userID string, t *ContextType) ([]ContextItem, error)
	Put(ctx context.Context, userID string, item ContextItem) error
	Delete(ctx context.Context, userID, itemID string) error
}
