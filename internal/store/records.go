package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"animeapi/internal/anime"
	"animeapi/internal/changes"
	"animeapi/internal/services"
)

var (
	insertColumns = func() string {
		names := []string{"title"}
		for _, field := range anime.Fields {
			names = append(names, field.Name)
		}
		return strings.Join(names, ", ")
	}()
	updateAssignments = func() string {
		parts := []string{"title = ?"}
		for _, field := range anime.Fields {
			parts = append(parts, field.Name+" = ?")
		}
		return strings.Join(parts, ", ")
	}()
)

// Snapshot returns the identifying columns of every persisted record in ID
// order.
func (s *Store) Snapshot(ctx context.Context) ([]changes.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, title, myanimelist, data_hash FROM anime ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []changes.Snapshot
	for rows.Next() {
		var (
			row changes.Snapshot
			mal sql.NullInt64
		)
		if err := rows.Scan(&row.ID, &row.Title, &mal, &row.DataHash); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if mal.Valid {
			row.MyAnimeList = anime.Int(int(mal.Int64))
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Count returns the number of persisted records.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM anime").Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// ApplyChanges writes the changeset and its change-log rows in one
// transaction. Nothing is written if any statement fails.
func (s *Store) ApplyChanges(ctx context.Context, cs changes.Changeset, runID string) error {
	if cs.Empty() {
		return nil
	}
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin apply tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := s.timestamp()
		var logged []changes.Entry

		deleted, err := s.deleteRecords(ctx, tx, cs.Deletes)
		if err != nil {
			return err
		}
		logged = append(logged, deleted...)

		updateStmt, err := tx.PrepareContext(ctx, "UPDATE anime SET "+updateAssignments+", data_hash = ?, updated_at = ? WHERE id = ?")
		if err != nil {
			return fmt.Errorf("prepare update: %w", err)
		}
		defer updateStmt.Close()
		for _, update := range cs.Updates {
			args := append(recordArgs(update.Record), update.Record.DataHash, now, update.ID)
			if _, err := updateStmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("update record %d: %w", update.ID, err)
			}
			logged = append(logged, changes.Entry{AnimeID: update.ID, Title: update.Record.Title, Type: changes.Update})
		}

		insertStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
			"INSERT INTO anime (%s, data_hash, created_at, updated_at) VALUES (%s)",
			insertColumns, makePlaceholders(len(anime.Fields)+4)))
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer insertStmt.Close()
		for _, record := range cs.Inserts {
			args := append(recordArgs(record), record.DataHash, now, now)
			res, err := insertStmt.ExecContext(ctx, args...)
			if err != nil {
				return fmt.Errorf("insert record %q: %w", record.Title, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("insert record %q: %w", record.Title, err)
			}
			logged = append(logged, changes.Entry{AnimeID: id, Title: record.Title, Type: changes.Insert})
		}

		if err := s.appendChangeLog(ctx, tx, logged, runID, now); err != nil {
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit changes: %w", err)
		}
		return nil
	})
}

func (s *Store) deleteRecords(ctx context.Context, tx *sql.Tx, ids []int64) ([]changes.Entry, error) {
	var entries []changes.Entry
	for _, batch := range chunks(ids, s.batchSize) {
		placeholders := makePlaceholders(len(batch))
		rows, err := tx.QueryContext(ctx, "SELECT id, title FROM anime WHERE id IN ("+placeholders+") ORDER BY id", int64Args(batch)...)
		if err != nil {
			return nil, fmt.Errorf("select deleted titles: %w", err)
		}
		for rows.Next() {
			entry := changes.Entry{Type: changes.Delete}
			if err := rows.Scan(&entry.AnimeID, &entry.Title); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan deleted title: %w", err)
			}
			entries = append(entries, entry)
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM anime WHERE id IN ("+placeholders+")", int64Args(batch)...); err != nil {
			return nil, fmt.Errorf("delete records: %w", err)
		}
	}
	return entries, nil
}

func (s *Store) appendChangeLog(ctx context.Context, tx *sql.Tx, entries []changes.Entry, runID, now string) error {
	for _, batch := range chunks(entries, s.batchSize) {
		values := make([]string, len(batch))
		args := make([]any, 0, len(batch)*5)
		for i, entry := range batch {
			values[i] = "(?, ?, ?, ?, ?)"
			args = append(args, entry.AnimeID, entry.Title, string(entry.Type), nullableString(runID), now)
		}
		query := "INSERT INTO change_log (anime_id, title, change_type, run_id, created_at) VALUES " + strings.Join(values, ", ")
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("append change log: %w", err)
		}
	}
	return nil
}

// RecordsByID loads the records with the given IDs. Missing IDs are absent
// from the result.
func (s *Store) RecordsByID(ctx context.Context, ids []int64) (map[int64]*anime.Record, error) {
	out := make(map[int64]*anime.Record, len(ids))
	for _, batch := range chunks(ids, s.batchSize) {
		rows, err := s.db.QueryContext(ctx,
			"SELECT "+recordColumns+" FROM anime WHERE id IN ("+makePlaceholders(len(batch))+")",
			int64Args(batch)...)
		if err != nil {
			return nil, fmt.Errorf("query records: %w", err)
		}
		for rows.Next() {
			id, record, err := scanRecord(rows)
			if err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan record: %w", err)
			}
			out[id] = record
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// FindByPlatform returns the first record whose platform field equals value.
func (s *Store) FindByPlatform(ctx context.Context, platform anime.Platform, value string) (int64, *anime.Record, error) {
	probe := &anime.Record{}
	if err := platform.Field.Set(probe, value); err != nil {
		return 0, nil, fmt.Errorf("%w: %v", services.ErrValidation, err)
	}
	key := platform.Field.Value(probe)
	if key == nil {
		return 0, nil, fmt.Errorf("%w: empty %s id", services.ErrValidation, platform.Name)
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM anime WHERE "+platform.Field.Name+" = ? ORDER BY id LIMIT 1", key)
	id, record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil, fmt.Errorf("%w: %s/%s", services.ErrNotFound, platform.Name, value)
	}
	if err != nil {
		return 0, nil, fmt.Errorf("find by %s: %w", platform.Name, err)
	}
	return id, record, nil
}

// PlatformCounts returns how many persisted records carry each platform.
func (s *Store) PlatformCounts(ctx context.Context) (map[string]int, error) {
	exprs := make([]string, len(anime.Platforms))
	for i, p := range anime.Platforms {
		exprs[i] = "COUNT(" + p.Field.Name + ")"
	}
	counts := make([]int, len(anime.Platforms))
	dest := make([]any, len(counts))
	for i := range counts {
		dest[i] = &counts[i]
	}
	if err := s.db.QueryRowContext(ctx, "SELECT "+strings.Join(exprs, ", ")+" FROM anime").Scan(dest...); err != nil {
		return nil, fmt.Errorf("count platforms: %w", err)
	}
	out := make(map[string]int, len(counts))
	for i, p := range anime.Platforms {
		out[p.Name] = counts[i]
	}
	return out, nil
}
