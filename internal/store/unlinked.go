package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"animeapi/internal/link"
)

// ReplaceUnlinked swaps the stored unlinked list of a platform for entries.
func (s *Store) ReplaceUnlinked(ctx context.Context, platform, runID string, entries []link.Unlinked) error {
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin unlinked tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, "DELETE FROM unlinked_entries WHERE platform = ?", platform); err != nil {
			return fmt.Errorf("clear unlinked %s: %w", platform, err)
		}
		now := s.timestamp()
		for _, batch := range chunks(entries, s.batchSize) {
			values := make([]string, len(batch))
			args := make([]any, 0, len(batch)*6)
			for i, entry := range batch {
				values[i] = "(?, ?, ?, ?, ?, ?)"
				args = append(args, platform, entry.Title, entry.Key, nullableString(entry.Reason), nullableString(runID), now)
			}
			query := "INSERT INTO unlinked_entries (platform, title, entry_key, reason, run_id, created_at) VALUES " + strings.Join(values, ", ")
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert unlinked %s: %w", platform, err)
			}
		}
		return tx.Commit()
	})
}

// ListUnlinked returns the stored unlinked entries of platform, or of every
// platform when platform is empty.
func (s *Store) ListUnlinked(ctx context.Context, platform string) ([]link.Unlinked, error) {
	query := "SELECT platform, title, entry_key, reason FROM unlinked_entries"
	var args []any
	if platform != "" {
		query += " WHERE platform = ?"
		args = append(args, platform)
	}
	query += " ORDER BY platform, id"
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query unlinked: %w", err)
	}
	defer rows.Close()

	var out []link.Unlinked
	for rows.Next() {
		var (
			entry  link.Unlinked
			reason sql.NullString
		)
		if err := rows.Scan(&entry.Platform, &entry.Title, &entry.Key, &reason); err != nil {
			return nil, fmt.Errorf("scan unlinked: %w", err)
		}
		entry.Reason = reason.String
		out = append(out, entry)
	}
	return out, rows.Err()
}
