package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/sandevgo/kontext/internal/core"
)

// LongTermRepo keeps each user's promoted context items in one redis
// hash, field per item ID, JSON-encoded values.
type LongTermRepo struct {
	client *redis.Client
}

func NewLongTermRepo(addr string, db int) *LongTermRepo {
	return &LongTermRepo{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		}),
	}
}

func NewLongTermRepoWithClient(client *redis.Client) *LongTermRepo {
	return &LongTermRepo{client: client}
}

func (r *LongTermRepo) key(userID string) string {
	return "kontext:longterm:" + userID
}

func (r *LongTermRepo) Get(ctx context.Context, userID string, t *core.ContextType) ([]core.ContextItem, error) {
	fields, err := r.client.HGetAll(ctx, r.key(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read context items: %w", err)
	}

	items := make([]core.ContextItem, 0, len(fields))
	for _, raw := range fields {
		var it core.ContextItem
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, fmt.Errorf("failed to decode context item: %w", err)
		}
		if t != nil && it.Type != *t {
			continue
		}
		items = append(items, it)
	}

	// Newest first, matching the sqlite backend.
	sort.Slice(items, func(i, j int) bool {
		return items[i].ExtractedAt.After(items[j].ExtractedAt)
	})
	return items, nil
}

func (r *LongTermRepo) Put(ctx context.Context, userID string, item core.ContextItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("failed to encode context item: %w", err)
	}

	if err := r.client.HSet(ctx, r.key(userID), item.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to store context item: %w", err)
	}
	return nil
}

func (r *LongTermRepo) Delete(ctx context.Context, userID, itemID string) error {
	if err := r.client.HDel(ctx, r.key(userID), itemID).Err(); err != nil {
		return fmt.Errorf("failed to delete context item: %w", err)
	}
	return nil
}

func (r *LongTermRepo) Close() error {
	return r.client.Close()
}
