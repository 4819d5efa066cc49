package store

import (
	"context"
	"database/sql"
	"fmt"

	"animeapi/internal/changes"
)

// PendingChanges returns unprocessed change-log rows in insertion order. A
// limit of zero returns all of them.
func (s *Store) PendingChanges(ctx context.Context, limit int) ([]changes.Entry, error) {
	query := "SELECT id, anime_id, title, change_type, run_id, created_at FROM change_log WHERE processed = 0 ORDER BY id"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending changes: %w", err)
	}
	defer rows.Close()

	var out []changes.Entry
	for rows.Next() {
		var (
			entry      changes.Entry
			changeType string
			runID      sql.NullString
			createdRaw string
		)
		if err := rows.Scan(&entry.ID, &entry.AnimeID, &entry.Title, &changeType, &runID, &createdRaw); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		entry.Type = changes.Type(changeType)
		entry.RunID = runID.String
		if created, err := parseTimeString(createdRaw); err == nil {
			entry.CreatedAt = created
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// MarkProcessed flags change-log rows as consumed.
func (s *Store) MarkProcessed(ctx context.Context, ids []int64) error {
	now := s.timestamp()
	for _, batch := range chunks(ids, s.batchSize) {
		args := append([]any{now}, int64Args(batch)...)
		if err := s.execWithRetry(ctx,
			"UPDATE change_log SET processed = 1, processed_at = ? WHERE id IN ("+makePlaceholders(len(batch))+")",
			args...); err != nil {
			return fmt.Errorf("mark changes processed: %w", err)
		}
	}
	return nil
}

// PendingCount returns the number of unprocessed change-log rows.
func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM change_log WHERE processed = 0").Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending changes: %w", err)
	}
	return count, nil
}
