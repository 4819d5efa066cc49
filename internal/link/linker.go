package link

import (
	"context"
	"log/slog"
	"runtime"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"animeapi/internal/anime"
	"animeapi/internal/index"
	"animeapi/internal/logging"
	"animeapi/internal/services"
	"animeapi/internal/textutil"
)

// DefaultEarlyExit stops a candidate scan once a score this high is found.
const DefaultEarlyExit = 95

// Linker runs the exact and fuzzy passes for one platform.
type Linker struct {
	Threshold int
	EarlyExit int
	// Workers bounds the fuzzy fan-out; zero means one per CPU.
	Workers int
	Logger  *slog.Logger
}

// Report summarizes one linking stage.
type Report struct {
	Platform string
	Items    int
	Exact    int
	Fuzzy    int
	Failed   int
	Unlinked []Unlinked
	Elapsed  time.Duration
}

// Linked is the number of items attached to a record by either pass.
func (r Report) Linked() int {
	return r.Exact + r.Fuzzy
}

type snapshot struct {
	titles  []string
	lengths []int
}

func takeSnapshot(records []*anime.Record) snapshot {
	snap := snapshot{
		titles:  make([]string, len(records)),
		lengths: make([]int, len(records)),
	}
	for i, record := range records {
		snap.titles[i] = record.Title
		snap.lengths[i] = utf8.RuneCountInString(record.Title)
	}
	return snap
}

// Link attaches src to records. The only error it returns is ctx's.
func (l Linker) Link(ctx context.Context, records []*anime.Record, src Source) (Report, error) {
	started := time.Now()
	logger := l.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx = services.WithPlatform(ctx, src.Platform())
	report := Report{Platform: src.Platform(), Items: src.Len()}

	idx := index.Build(records)
	pending := make([]int, 0, src.Len())
	for i := range src.Len() {
		if record, ok := src.Exact(i, idx); ok {
			src.Apply(i, record)
			report.Exact++
			continue
		}
		pending = append(pending, i)
	}

	results, err := l.search(ctx, src, pending, takeSnapshot(records))
	if err != nil {
		return Report{}, err
	}

	for _, res := range results {
		switch res.Outcome {
		case Match:
			src.Apply(res.Item, records[res.Candidate])
			report.Fuzzy++
		case Failure:
			report.Failed++
			entry := src.Unlinked(res.Item)
			entry.Reason = res.Reason
			report.Unlinked = append(report.Unlinked, entry)
			logging.WarnWithContext(ctx, logger, "fuzzy search failed", logging.EventUnlinked,
				logging.String("title", entry.Title),
				logging.String("reason", res.Reason),
				logging.String(logging.FieldErrorHint, "inspect the dataset entry for malformed text"),
				logging.String(logging.FieldImpact, "entry left unlinked"),
			)
		default:
			report.Unlinked = append(report.Unlinked, src.Unlinked(res.Item))
		}
	}
	report.Elapsed = time.Since(started)

	logger.InfoContext(ctx, "link stage complete",
		logging.String(logging.FieldEventType, logging.EventLinkSummary),
		logging.Int("items", report.Items),
		logging.Int("exact", report.Exact),
		logging.Int("fuzzy", report.Fuzzy),
		logging.Int("unlinked", len(report.Unlinked)),
		logging.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// search scores every pending item in parallel. Results come back in the
// order of pending regardless of completion order.
func (l Linker) search(ctx context.Context, src Source, pending []int, snap snapshot) ([]Result, error) {
	results := make([]Result, len(pending))
	if len(pending) == 0 {
		return results, nil
	}
	workers := l.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	earlyExit := l.EarlyExit
	if earlyExit <= 0 {
		earlyExit = DefaultEarlyExit
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for slot, item := range pending {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[slot] = scan(src, item, snap, l.Threshold, earlyExit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func scan(src Source, item int, snap snapshot, threshold, earlyExit int) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = failed(item, r)
		}
	}()
	title := src.Title(item)
	if title == "" {
		return unmatched(item)
	}
	matcher := textutil.NewMatcher(title)
	best, candidate := threshold-1, -1
	for i, other := range snap.titles {
		if title == other {
			return matched(item, i, 100)
		}
		if matcher.UpperBound(snap.lengths[i]) <= best {
			continue
		}
		ratio := matcher.Ratio(other)
		if ratio > best {
			best, candidate = ratio, i
			if ratio >= earlyExit {
				break
			}
		}
	}
	if candidate >= 0 && best >= threshold {
		return matched(item, candidate, best)
	}
	return unmatched(item)
}
