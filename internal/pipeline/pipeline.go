// Package pipeline drives one reconciliation run. Stages run in a fixed
// order over a single in-memory record set: load, base, the three exact
// combiners, the four fuzzy linkers, manual overrides, finalize, diff,
// apply, publish, and the optional KV sync. A file lock keeps two runs from
// sharing a store.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"animeapi/internal/anime"
	"animeapi/internal/changes"
	"animeapi/internal/combine"
	"animeapi/internal/config"
	"animeapi/internal/kvsync"
	"animeapi/internal/link"
	"animeapi/internal/logging"
	"animeapi/internal/metrics"
	"animeapi/internal/overrides"
	"animeapi/internal/services"
	"animeapi/internal/store"
)

// Stage names, also used as the failure stage on errors.
const (
	StageLock      = "lock"
	StageLoad      = "load"
	StageBase      = "base"
	StageCombine   = "combine"
	StageLink      = "link"
	StageOverrides = "overrides"
	StageFinalize  = "finalize"
	StageDiff      = "diff"
	StageApply     = "apply"
	StagePublish   = "publish"
	StageKVSync    = "kv_sync"
)

// Pipeline owns the collaborators of a run.
type Pipeline struct {
	cfg    *config.Config
	store  *store.Store
	kv     kvsync.Client
	logger *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithKV sets the client used by the KV sync stage. The stage only runs
// when the config enables it.
func WithKV(client kvsync.Client) Option {
	return func(p *Pipeline) {
		p.kv = client
	}
}

// New builds a pipeline over an open store.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	p := &Pipeline{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Summary reports what a run did. Fields for stages that did not run stay
// zero.
type Summary struct {
	RunID     string             `json:"run_id"`
	Records   int                `json:"records"`
	Combined  []combine.Stats    `json:"combined"`
	Links     []link.Report      `json:"links"`
	Overrides []overrides.Result `json:"overrides"`
	Inserts   int                `json:"inserts"`
	Updates   int                `json:"updates"`
	Deletes   int                `json:"deletes"`
	Unlinked  map[string]int     `json:"unlinked"`
	KV        *kvsync.Result     `json:"kv,omitempty"`
	Elapsed   time.Duration      `json:"elapsed"`
}

// run is the mutable state threaded through the stages.
type run struct {
	id       string
	inputs   *inputs
	records  []*anime.Record
	unlinked map[string][]link.Unlinked
	changes  changes.Changeset
	metrics  *metrics.Run
	summary  *Summary
}

type step struct {
	name string
	fn   func(context.Context, *run) error
}

// Run executes every stage under the run lock. The returned error carries
// the failing stage (see services.FailureStage).
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if err := p.cfg.EnsureDirectories(); err != nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, StageLock, "prepare directories", "", err)
	}
	lock := flock.New(p.cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, services.Wrap(services.ErrTransient, StageLock, "acquire run lock", p.cfg.LockPath(), err)
	}
	if !locked {
		return Summary{}, services.Wrap(services.ErrTransient, StageLock, "acquire run lock",
			fmt.Sprintf("another run holds %s", p.cfg.LockPath()), nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			p.logger.Warn("failed to release run lock", logging.Error(err))
		}
	}()

	started := time.Now()
	state := &run{
		id:       uuid.NewString(),
		unlinked: map[string][]link.Unlinked{},
		metrics:  metrics.NewRun(),
	}
	state.summary = &Summary{RunID: state.id, Unlinked: map[string]int{}}
	ctx = services.WithRunID(ctx, state.id)

	if err := p.store.BeginRun(ctx, state.id); err != nil {
		return *state.summary, services.Wrap(services.ErrPersistence, StageLock, "record run start", "", err)
	}
	p.logger.InfoContext(ctx, "run started", logging.String("store", p.store.Path()))

	runErr := p.execute(ctx, state)
	state.summary.Elapsed = time.Since(started)
	p.finish(ctx, state, started, runErr)
	return *state.summary, runErr
}

func (p *Pipeline) execute(ctx context.Context, state *run) error {
	for _, s := range p.steps() {
		if err := ctx.Err(); err != nil {
			return services.Wrap(services.ErrTransient, s.name, "run canceled", "", err)
		}
		if err := p.runStage(ctx, s, state); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) steps() []step {
	steps := []step{
		{StageLoad, p.load},
		{StageBase, p.base},
		{StageCombine + "_arm", p.combineARM},
		{StageCombine + "_anitrakt", p.combineAniTrakt},
		{StageCombine + "_fribb", p.combineFribb},
	}
	for _, platform := range overrides.Platforms {
		steps = append(steps, step{StageLink + "_" + platform, p.linker(platform)})
	}
	steps = append(steps,
		step{StageOverrides, p.applyOverrides},
		step{StageFinalize, p.finalize},
		step{StageDiff, p.diff},
		step{StageApply, p.apply},
		step{StagePublish, p.publish},
	)
	if p.cfg.KV.Enabled && p.kv != nil {
		steps = append(steps, step{StageKVSync, p.syncKV})
	}
	return steps
}

// runStage wraps one stage with start, completion, and failure logging.
// Errors without a stage are tagged with this one.
func (p *Pipeline) runStage(ctx context.Context, s step, state *run) error {
	stageCtx := services.WithStage(ctx, s.name)
	p.logger.InfoContext(stageCtx, "stage started",
		logging.String(logging.FieldEventType, logging.EventStageStart))

	started := time.Now()
	err := s.fn(stageCtx, state)
	elapsed := time.Since(started)
	state.metrics.ObserveStage(s.name, elapsed)

	if err != nil {
		if _, tagged := services.FailureStage(err); !tagged {
			err = services.Wrap(services.ErrTransient, s.name, "", "", err)
		}
		logging.ErrorWithContext(stageCtx, p.logger, "stage failed", logging.EventStageFailed,
			logging.Error(err),
			logging.Duration("elapsed", elapsed),
		)
		return err
	}
	p.logger.InfoContext(stageCtx, "stage completed",
		logging.String(logging.FieldEventType, logging.EventStageComplete),
		logging.Duration("elapsed", elapsed),
	)
	return nil
}

// finish records the outcome. It runs on a context detached from
// cancellation so a canceled run is still marked failed.
func (p *Pipeline) finish(ctx context.Context, state *run, started time.Time, runErr error) {
	ctx = context.WithoutCancel(ctx)
	summary := state.summary
	outcome := store.Run{
		ID:      state.id,
		Status:  store.RunSucceeded,
		Records: summary.Records,
		Inserts: summary.Inserts,
		Updates: summary.Updates,
		Deletes: summary.Deletes,
	}
	if runErr != nil {
		outcome.Status = store.RunFailed
		outcome.ErrorStage, _ = services.FailureStage(runErr)
		outcome.ErrorMessage = strings.TrimSpace(runErr.Error())
	}
	if err := p.store.FinishRun(ctx, outcome); err != nil {
		logging.WarnWithContext(ctx, p.logger, "failed to record run outcome", logging.EventStageFailed,
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the store file permissions"),
			logging.String(logging.FieldImpact, "status command shows the run as running"),
		)
	}

	state.metrics.Finish(started, runErr == nil)
	if err := state.metrics.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		logging.WarnWithContext(ctx, p.logger, "failed to export metrics", "metrics_export",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check [metrics] textfile"),
			logging.String(logging.FieldImpact, "run metrics not exported"),
		)
	}

	if runErr != nil {
		return
	}
	p.logger.InfoContext(ctx, "run complete",
		logging.Int("records", summary.Records),
		logging.Int("inserts", summary.Inserts),
		logging.Int("updates", summary.Updates),
		logging.Int("deletes", summary.Deletes),
		logging.Duration("elapsed", summary.Elapsed),
	)
}
