package pipeline

import (
	"context"
	"errors"
	"io/fs"

	"animeapi/internal/changes"
	"animeapi/internal/combine"
	"animeapi/internal/kvsync"
	"animeapi/internal/link"
	"animeapi/internal/logging"
	"animeapi/internal/overrides"
	"animeapi/internal/services"
	"animeapi/internal/sources"
	"animeapi/internal/store"
)

// inputs holds every dataset and manual catalog read by the load stage.
type inputs struct {
	base        []sources.BaseEntry
	arm         sources.Batch[sources.ARMEntry]
	anitrakt    sources.Batch[sources.AniTraktEntry]
	fribb       sources.Batch[sources.FribbEntry]
	kaize       sources.Batch[sources.KaizeEntry]
	nautiljon   sources.Batch[sources.NautiljonEntry]
	otakotaku   sources.Batch[sources.OtakOtakuEntry]
	silveryasha sources.Batch[sources.SilverYashaEntry]
	catalogs    map[string]*overrides.Catalog
}

func datasetError(operation, path string, err error) error {
	marker := services.ErrUpstream
	if errors.Is(err, fs.ErrNotExist) {
		marker = services.ErrNotFound
	}
	return services.Wrap(marker, StageLoad, operation, path, err)
}

// load reads everything before any mutation so a bad file aborts the run
// with the store untouched.
func (p *Pipeline) load(ctx context.Context, state *run) error {
	ds := p.cfg.Datasets
	in := &inputs{catalogs: map[string]*overrides.Catalog{}}
	var err error

	path := p.cfg.DatasetPath(ds.AOD)
	if in.base, err = sources.ReadBase(path); err != nil {
		return datasetError("read base dataset", path, err)
	}
	path = p.cfg.DatasetPath(ds.ARM)
	if in.arm, err = sources.ReadARM(path); err != nil {
		return datasetError("read arm dataset", path, err)
	}
	traktPaths := make([]string, len(ds.AniTrakt))
	for i, name := range ds.AniTrakt {
		traktPaths[i] = p.cfg.DatasetPath(name)
	}
	if in.anitrakt, err = sources.ReadAniTrakt(traktPaths...); err != nil {
		return datasetError("read anitrakt dataset", "", err)
	}
	path = p.cfg.DatasetPath(ds.Fribb)
	if in.fribb, err = sources.ReadFribb(path); err != nil {
		return datasetError("read fribb dataset", path, err)
	}
	path = p.cfg.DatasetPath(ds.Kaize)
	if in.kaize, err = sources.ReadKaize(path); err != nil {
		return datasetError("read kaize dataset", path, err)
	}
	path = p.cfg.DatasetPath(ds.Nautiljon)
	if in.nautiljon, err = sources.ReadNautiljon(path); err != nil {
		return datasetError("read nautiljon dataset", path, err)
	}
	path = p.cfg.DatasetPath(ds.OtakOtaku)
	if in.otakotaku, err = sources.ReadOtakOtaku(path); err != nil {
		return datasetError("read otakotaku dataset", path, err)
	}
	path = p.cfg.DatasetPath(ds.SilverYasha)
	if in.silveryasha, err = sources.ReadSilverYasha(path); err != nil {
		return datasetError("read silveryasha dataset", path, err)
	}

	for _, platform := range overrides.Platforms {
		path := p.cfg.ManualPath(platform)
		catalog, err := overrides.Load(path, platform)
		if err != nil {
			return services.Wrap(services.ErrValidation, StageLoad, "read manual overrides", path, err)
		}
		in.catalogs[platform] = catalog
	}

	skipped := map[string]int{
		"arm":         in.arm.Skipped,
		"anitrakt":    in.anitrakt.Skipped,
		"fribb":       in.fribb.Skipped,
		"kaize":       in.kaize.Skipped,
		"nautiljon":   in.nautiljon.Skipped,
		"otakotaku":   in.otakotaku.Skipped,
		"silveryasha": in.silveryasha.Skipped,
	}
	for name, count := range skipped {
		if count == 0 {
			continue
		}
		logging.WarnWithContext(ctx, p.logger, "dataset entries skipped", "dataset_skipped",
			logging.String("dataset", name),
			logging.Int("skipped", count),
			logging.String(logging.FieldErrorHint, "entries lack a title or identifier"),
			logging.String(logging.FieldImpact, "skipped entries are never linked"),
		)
	}
	p.logger.InfoContext(ctx, "datasets loaded",
		logging.Int("base", len(in.base)),
		logging.Int("arm", len(in.arm.Items)),
		logging.Int("anitrakt", len(in.anitrakt.Items)),
		logging.Int("fribb", len(in.fribb.Items)),
		logging.Int("kaize", len(in.kaize.Items)),
		logging.Int("nautiljon", len(in.nautiljon.Items)),
		logging.Int("otakotaku", len(in.otakotaku.Items)),
		logging.Int("silveryasha", len(in.silveryasha.Items)),
	)
	state.inputs = in
	return nil
}

func (p *Pipeline) base(ctx context.Context, state *run) error {
	state.records = sources.LoadBase(state.inputs.base)
	if len(state.records) == 0 {
		return services.Wrap(services.ErrUpstream, StageBase, "load base records", "base dataset holds no titled entries", nil)
	}
	p.logger.InfoContext(ctx, "base records loaded", logging.Int("records", len(state.records)))
	return nil
}

func (p *Pipeline) combineARM(ctx context.Context, state *run) error {
	p.recordCombine(ctx, state, combine.ARM(state.records, state.inputs.arm.Items))
	return nil
}

func (p *Pipeline) combineAniTrakt(ctx context.Context, state *run) error {
	p.recordCombine(ctx, state, combine.AniTrakt(state.records, state.inputs.anitrakt.Items))
	return nil
}

func (p *Pipeline) combineFribb(ctx context.Context, state *run) error {
	p.recordCombine(ctx, state, combine.Fribb(state.records, state.inputs.fribb.Items))
	return nil
}

func (p *Pipeline) recordCombine(ctx context.Context, state *run, stats combine.Stats) {
	state.summary.Combined = append(state.summary.Combined, stats)
	p.logger.InfoContext(ctx, "dataset combined",
		logging.String("source", stats.Source),
		logging.Int("matched", stats.Matched),
		logging.Int("missed", stats.Missed),
		logging.Int("skipped", stats.Skipped),
	)
}

func (in *inputs) source(platform string) link.Source {
	switch platform {
	case "kaize":
		return link.Kaize(in.kaize.Items)
	case "nautiljon":
		return link.Nautiljon(in.nautiljon.Items)
	case "otakotaku":
		return link.OtakOtaku(in.otakotaku.Items)
	default:
		return link.SilverYasha(in.silveryasha.Items)
	}
}

func (p *Pipeline) linker(platform string) func(context.Context, *run) error {
	return func(ctx context.Context, state *run) error {
		l := link.Linker{
			Threshold: p.cfg.Threshold(platform),
			EarlyExit: p.cfg.Matching.EarlyExit,
			Workers:   p.cfg.MatchWorkers(),
			Logger:    p.logger,
		}
		report, err := l.Link(ctx, state.records, state.inputs.source(platform))
		if err != nil {
			return services.Wrap(services.ErrTransient, StageLink+"_"+platform, "fuzzy link", "", err)
		}
		state.unlinked[platform] = report.Unlinked
		state.summary.Links = append(state.summary.Links, report)
		state.metrics.ObserveLink(platform, report.Exact, report.Fuzzy, len(report.Unlinked))
		return nil
	}
}

func (p *Pipeline) applyOverrides(ctx context.Context, state *run) error {
	for _, platform := range overrides.Platforms {
		catalog := state.inputs.catalogs[platform]
		res := catalog.Apply(ctx, state.records, state.unlinked[platform], p.logger)
		state.unlinked[platform] = res.Unlinked
		state.summary.Overrides = append(state.summary.Overrides, res)
	}
	return nil
}

// finalize normalizes and hashes every record. Records that fail
// validation are dropped so they never reach the store.
func (p *Pipeline) finalize(ctx context.Context, state *run) error {
	kept := state.records[:0]
	for _, record := range state.records {
		record.Finalize()
		if err := record.Validate(); err != nil {
			logging.WarnWithContext(ctx, p.logger, "record dropped", "record_invalid",
				logging.String("title", record.Title),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the manual override files for this title"),
				logging.String(logging.FieldImpact, "record not persisted"),
			)
			continue
		}
		kept = append(kept, record)
	}
	state.records = kept
	return nil
}

func (p *Pipeline) diff(ctx context.Context, state *run) error {
	prior, err := p.store.Snapshot(ctx)
	if err != nil {
		return services.Wrap(services.ErrPersistence, StageDiff, "read stored snapshot", "", err)
	}
	cs := changes.Detect(prior, state.records)
	state.changes = cs
	state.summary.Inserts = len(cs.Inserts)
	state.summary.Updates = len(cs.Updates)
	state.summary.Deletes = len(cs.Deletes)
	state.metrics.ObserveChanges(len(cs.Inserts), len(cs.Updates), len(cs.Deletes))
	p.logger.InfoContext(ctx, "changes detected",
		logging.Int("stored", len(prior)),
		logging.Int("inserts", len(cs.Inserts)),
		logging.Int("updates", len(cs.Updates)),
		logging.Int("deletes", len(cs.Deletes)),
	)
	return nil
}

func (p *Pipeline) apply(ctx context.Context, state *run) error {
	if err := p.store.ApplyChanges(ctx, state.changes, state.id); err != nil {
		return services.Wrap(services.ErrPersistence, StageApply, "apply changeset", "", err)
	}
	count, err := p.store.Count(ctx)
	if err != nil {
		return services.Wrap(services.ErrPersistence, StageApply, "count records", "", err)
	}
	state.summary.Records = count
	state.metrics.ObserveRecords(count)
	p.logger.InfoContext(ctx, "changeset applied",
		logging.String(logging.FieldEventType, logging.EventChangesetApplied),
		logging.Int("changes", state.changes.Len()),
		logging.Int("records", count),
	)
	return nil
}

func (p *Pipeline) publish(ctx context.Context, state *run) error {
	for _, platform := range overrides.Platforms {
		entries := state.unlinked[platform]
		if entries == nil {
			entries = []link.Unlinked{}
		}
		path := p.cfg.UnlinkedPath(platform)
		if err := writeUnlinked(path, entries); err != nil {
			return services.Wrap(services.ErrPersistence, StagePublish, "write unlinked list", path, err)
		}
		if err := p.store.ReplaceUnlinked(ctx, platform, state.id, entries); err != nil {
			return services.Wrap(services.ErrPersistence, StagePublish, "store unlinked list", platform, err)
		}
		state.summary.Unlinked[platform] = len(entries)
		state.metrics.ObserveUnlinked(platform, len(entries))
	}

	counts, err := p.store.PlatformCounts(ctx)
	if err != nil {
		return services.Wrap(services.ErrPersistence, StagePublish, "count platforms", "", err)
	}
	status := newStatus(state.id, counts, state.summary.Records, state.summary)
	if err := writeStatus(p.cfg.StatusPath(), status); err != nil {
		return services.Wrap(services.ErrPersistence, StagePublish, "write status", p.cfg.StatusPath(), err)
	}
	return nil
}

func (p *Pipeline) syncKV(ctx context.Context, state *run) error {
	syncer := kvsync.Syncer{
		Store:     p.store,
		Client:    p.kv,
		BatchSize: p.cfg.KV.BatchSize,
		KeyPrefix: p.cfg.KV.KeyPrefix,
		Logger:    p.logger,
	}
	result, err := syncer.Run(ctx)
	state.metrics.AddKVOperations(result.Operations)
	if err != nil {
		return services.Wrap(services.ErrUpstream, StageKVSync, "sync changes", "", err)
	}
	state.summary.KV = &result
	return nil
}

var _ kvsync.ChangeStore = (*store.Store)(nil)
