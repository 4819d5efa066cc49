package overrides

import (
	"context"
	"log/slog"

	"animeapi/internal/anime"
	"animeapi/internal/index"
	"animeapi/internal/link"
	"animeapi/internal/logging"
)

// Result summarizes one catalog application.
type Result struct {
	Platform string
	Applied  int
	// Guarded counts non-forced overrides whose key was no longer unlinked.
	Guarded int
	// Missing counts overrides whose title has no canonical record.
	Missing  int
	Unlinked []link.Unlinked
}

// Apply writes the catalog onto records and returns the unlinked list with
// every applied key removed. Entries run in file order, so a later entry for
// the same title wins. The unlinked guard sees keys removed by earlier
// entries.
func (c *Catalog) Apply(ctx context.Context, records []*anime.Record, unlinked []link.Unlinked, logger *slog.Logger) Result {
	if logger == nil {
		logger = logging.NewNop()
	}
	result := Result{Platform: c.Platform}
	idx := index.Build(records)
	open := link.Keys(unlinked)
	applied := map[string]struct{}{}

	for _, entry := range c.Entries {
		record, ok := idx.Title(entry.Title)
		if !ok {
			result.Missing++
			logger.DebugContext(ctx, "manual override title not found",
				logging.String("title", entry.Title))
			continue
		}
		if !entry.Force {
			if _, pending := open[entry.Key]; !pending {
				result.Guarded++
				logger.DebugContext(ctx, "manual override skipped, key already linked",
					logging.String(logging.FieldEventType, logging.EventOverrideSkipped),
					logging.String("title", entry.Title),
					logging.String("key", entry.Key))
				continue
			}
		}
		for _, assignment := range entry.Payload {
			// values were checked at parse time
			_ = assignment.Field.Set(record, assignment.Value)
		}
		if entry.Key != "" {
			delete(open, entry.Key)
			applied[entry.Key] = struct{}{}
		}
		result.Applied++
	}

	result.Unlinked = link.Without(unlinked, applied)
	logger.InfoContext(ctx, "manual overrides applied",
		logging.String(logging.FieldPlatform, c.Platform),
		logging.Int("applied", result.Applied),
		logging.Int("guarded", result.Guarded),
		logging.Int("missing", result.Missing),
		logging.Int("unlinked", len(result.Unlinked)),
	)
	return result
}
