package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandevgo/kontext/internal/core"
)

// LongTermRepo is the sqlite-backed long-term memory, one row per
// promoted context item.
type LongTermRepo struct {
	db *sql.DB
}

func NewLongTermRepo(db *sql.DB) *LongTermRepo {
	return &LongTermRepo{db: db}
}

func (r *LongTermRepo) Get(ctx context.Context, userID string, t *core.ContextType) ([]core.ContextItem, error) {
	query := `
		SELECT id, type, value, confidence, extracted_at, turn_id
		FROM context_items
		WHERE user_id = ?
	`
	args := []any{userID}
	if t != nil {
		query += ` AND type = ?`
		args = append(args, t.String())
	}
	query += ` ORDER BY extracted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query context items: %w", err)
	}
	defer rows.Close()

	var items []core.ContextItem
	for rows.Next() {
		var it core.ContextItem
		var typ string
		if err := rows.Scan(&it.ID, &typ, &it.Value, &it.Confidence, &it.ExtractedAt, &it.TurnID); err != nil {
			return nil, fmt.Errorf("failed to scan context item: %w", err)
		}
		it.Type = core.ContextType(typ)
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *LongTermRepo) Put(ctx context.Context, userID string, item core.ContextItem) error {
	if err := item.Validate(); err != nil {
		return err
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO context_items (id, user_id, type, value, confidence, extracted_at, turn_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			value = excluded.value,
			confidence = excluded.confidence,
			extracted_at = excluded.extracted_at,
			turn_id = excluded.turn_id
	`, item.ID, userID, item.Type.String(), item.Value, item.Confidence, item.ExtractedAt, item.TurnID)
	if err != nil {
		return fmt.Errorf("failed to upsert context item: %w", err)
	}
	return nil
}

func (r *LongTermRepo) Delete(ctx context.Context, userID, itemID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM context_items WHERE user_id = ? AND id = ?`,
		userID, itemID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete context item: %w", err)
	}
	return nil
}
