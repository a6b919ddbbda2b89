package rebuild

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fortuna/rinkboard/internal/docstore"
	"github.com/fortuna/rinkboard/internal/season"
)

const defaultWorkers = 4

// Options tune a Runner. The zero value is usable.
type Options struct {
	// Workers bounds parallel game-file reads within a season.
	Workers int

	// Now stamps SeasonIndex.UpdatedAt. Defaults to time.Now.
	Now func() time.Time

	// Location interprets record dates without an offset. Defaults to time.Local.
	Location *time.Location

	Logger *log.Logger
	Sinks  []Sink
}

// Runner recomputes every derived document under one storage root.
//
// A Runner serializes its own Run calls. Two processes rebuilding the same
// root concurrently are not coordinated: each file is replaced atomically,
// but readers may see a mix of old and new documents across files.
type Runner struct {
	root   string
	opts   Options
	logger *log.Logger

	mu sync.Mutex
}

// NewRunner constructs a runner for root.
func NewRunner(root string, opts Options) *Runner {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.Writer(), "[rebuild] ", log.LstdFlags)
	}

	return &Runner{
		root:   root,
		opts:   opts,
		logger: logger,
	}
}

// Rebuild runs a rebuild of root with default options.
func Rebuild(ctx context.Context, root string) (*Result, error) {
	return NewRunner(root, Options{}).Run(ctx, nil)
}

// Run discovers seasons, rebuilds each season's index and leaderboard, then
// the root index, then hands the result to the configured sinks.
//
// Only an inaccessible root, an unlistable finished/ area, a failed root index
// write or cancellation abort the run; the returned error then wraps ErrFatal.
// Seasons processed before the abort keep their freshly written documents and
// are listed in the partial Result.
func (r *Runner) Run(ctx context.Context, reporter Reporter) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := &Result{
		RunID:     uuid.NewString(),
		Root:      r.root,
		StartedAt: r.opts.Now(),
	}

	if reporter != nil {
		reporter.OnRebuildStart(r.root)
	}

	fail := func(err error) (*Result, error) {
		err = fmt.Errorf("%w: %w", ErrFatal, err)
		res.FinishedAt = r.opts.Now()
		r.logger.Printf("rebuild %s failed: %v", res.RunID, err)
		if reporter != nil {
			reporter.OnRebuildError(err)
		}
		return res, err
	}

	store, err := docstore.Open(r.root)
	if err != nil {
		return fail(err)
	}
	res.Root = store.Root()

	seasons, err := season.Discover(store)
	if err != nil {
		return fail(err)
	}

	total := len(seasons)
	for idx, id := range seasons {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		if reporter != nil {
			reporter.OnSeasonStart(id, idx, total)
		}

		sr, err := r.processSeason(ctx, store, id)
		if err != nil {
			return fail(fmt.Errorf("season %s: %w", id, err))
		}

		res.Seasons = append(res.Seasons, sr)
		r.record(res, reporter, sr.Diagnostics...)

		if reporter != nil {
			reporter.OnSeasonDone(sr)
		}
	}

	root, diags, err := r.rebuildRoot(store, seasons)
	r.record(res, reporter, diags...)
	if err != nil {
		return fail(err)
	}
	res.RootIndex = root

	for _, sink := range r.opts.Sinks {
		if err := sink.Publish(ctx, res); err != nil {
			r.record(res, reporter, Diagnostic{Kind: KindSinkFailed, Path: sink.Name(), Err: err})
		}
	}

	res.FinishedAt = r.opts.Now()
	r.logger.Printf("rebuild %s: %d seasons, %d games, %d players, %d soft failures",
		res.RunID, len(res.Seasons), res.GameCount(), res.PlayerCount(), res.SoftFailures())

	if reporter != nil {
		reporter.OnRebuildComplete(res)
	}
	return res, nil
}

func (r *Runner) record(res *Result, reporter Reporter, diags ...Diagnostic) {
	for _, d := range diags {
		res.Diagnostics = append(res.Diagnostics, d)
		if reporter != nil {
			reporter.OnDiagnostic(d)
			continue
		}
		r.logger.Printf("WARN: %s", d)
	}
}
