// Package kvsync pushes persisted changes to the key-value store the lookup
// API reads. Every pending change-log row is turned into key writes, the
// writes go out in batches, and the rows are marked processed only after
// every batch succeeded.
package kvsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"animeapi/internal/anime"
	"animeapi/internal/changes"
	"animeapi/internal/logging"
)

// DefaultBatchSize is the number of operations per pipeline.
const DefaultBatchSize = 10000

// ChangeStore is the part of the store the sync reads and updates.
type ChangeStore interface {
	PendingChanges(ctx context.Context, limit int) ([]changes.Entry, error)
	RecordsByID(ctx context.Context, ids []int64) (map[int64]*anime.Record, error)
	MarkProcessed(ctx context.Context, ids []int64) error
}

// Syncer drains the change log into a Client.
type Syncer struct {
	Store     ChangeStore
	Client    Client
	BatchSize int
	KeyPrefix string
	Logger    *slog.Logger
}

// Result summarizes one sync.
type Result struct {
	Changes    int
	Operations int
	Batches    int
}

// Run syncs every pending change. A failed batch leaves all rows pending;
// the writes are idempotent so the next run repeats them.
func (s *Syncer) Run(ctx context.Context) (Result, error) {
	logger := s.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	pending, err := s.Store.PendingChanges(ctx, 0)
	if err != nil {
		return Result{}, err
	}
	result := Result{Changes: len(pending)}
	if len(pending) == 0 {
		logger.InfoContext(ctx, "no pending changes to sync")
		return result, nil
	}

	ops, err := s.plan(ctx, pending)
	if err != nil {
		return result, err
	}
	result.Operations = len(ops)

	size := s.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	total := (len(ops) + size - 1) / size
	for start := 0; start < len(ops); start += size {
		batch := ops[start:min(start+size, len(ops))]
		if err := s.Client.Apply(ctx, batch); err != nil {
			return result, fmt.Errorf("batch %d/%d: %w", result.Batches+1, total, err)
		}
		result.Batches++
		logger.DebugContext(ctx, "kv batch written",
			logging.String(logging.FieldEventType, logging.EventSyncBatch),
			logging.Int("batch", result.Batches),
			logging.Int("batches", total),
			logging.Int("operations", len(batch)),
		)
	}

	ids := make([]int64, len(pending))
	for i, entry := range pending {
		ids[i] = entry.ID
	}
	if err := s.Store.MarkProcessed(ctx, ids); err != nil {
		return result, err
	}
	logger.InfoContext(ctx, "kv sync complete",
		logging.Int("changes", result.Changes),
		logging.Int("operations", result.Operations),
		logging.Int("batches", result.Batches),
	)
	return result, nil
}

// plan turns change rows into operations. A key written twice keeps its
// first position and its last value.
func (s *Syncer) plan(ctx context.Context, pending []changes.Entry) ([]Op, error) {
	var upserts []int64
	for _, entry := range pending {
		if entry.Type != changes.Delete {
			upserts = append(upserts, entry.AnimeID)
		}
	}
	records, err := s.Store.RecordsByID(ctx, upserts)
	if err != nil {
		return nil, err
	}

	var ops []Op
	position := map[string]int{}
	put := func(op Op) {
		op.Key = s.KeyPrefix + op.Key
		if i, seen := position[op.Key]; seen {
			ops[i] = op
			return
		}
		position[op.Key] = len(ops)
		ops = append(ops, op)
	}

	for _, entry := range pending {
		if entry.Type == changes.Delete {
			put(Op{Key: strconv.FormatInt(entry.AnimeID, 10), Delete: true})
		}
	}
	for _, entry := range pending {
		if entry.Type == changes.Delete {
			continue
		}
		record, ok := records[entry.AnimeID]
		if !ok {
			// deleted by a later run before this sync
			continue
		}
		id := strconv.FormatInt(entry.AnimeID, 10)
		for _, key := range PlatformKeys(record) {
			put(Op{Key: key, Value: id})
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode record %d: %w", entry.AnimeID, err)
		}
		put(Op{Key: id, Value: string(payload)})
	}
	return ops, nil
}
