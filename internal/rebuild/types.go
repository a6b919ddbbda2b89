package rebuild

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fortuna/rinkboard/internal/docstore"
)

// ErrFatal wraps every error that aborted a rebuild. Soft failures never do.
var ErrFatal = errors.New("rebuild aborted")

// DiagnosticKind classifies a soft failure.
type DiagnosticKind string

const (
	KindUnreadableRecord DiagnosticKind = "unreadable_record"
	KindUnreadableSeason DiagnosticKind = "unreadable_season"
	KindMalformedRoot    DiagnosticKind = "malformed_root"
	KindWriteFailed      DiagnosticKind = "write_failed"
	KindSinkFailed       DiagnosticKind = "sink_failed"
)

// Diagnostic records a soft failure observed during a rebuild.
type Diagnostic struct {
	Kind   DiagnosticKind
	Season string
	Path   string
	Err    error
}

func (d Diagnostic) String() string {
	if d.Season != "" {
		return fmt.Sprintf("%s [%s] %s: %v", d.Kind, d.Season, d.Path, d.Err)
	}
	return fmt.Sprintf("%s %s: %v", d.Kind, d.Path, d.Err)
}

// SeasonResult holds the derived documents of one season.
type SeasonResult struct {
	Season      string
	Index       docstore.SeasonIndex
	Leaderboard docstore.PlayerLeaderboard
	Skipped     int
	Diagnostics []Diagnostic
}

// Result summarizes one rebuild invocation.
type Result struct {
	RunID       string
	Root        string
	Seasons     []SeasonResult
	RootIndex   docstore.RootIndex
	Diagnostics []Diagnostic
	StartedAt   time.Time
	FinishedAt  time.Time
}

// SoftFailures counts the diagnostics recorded during the run.
func (r *Result) SoftFailures() int {
	return len(r.Diagnostics)
}

// GameCount is the number of games indexed across all seasons.
func (r *Result) GameCount() int {
	n := 0
	for _, s := range r.Seasons {
		n += len(s.Index.Games)
	}
	return n
}

// PlayerCount is the number of leaderboard lines across all seasons.
func (r *Result) PlayerCount() int {
	n := 0
	for _, s := range r.Seasons {
		n += len(s.Leaderboard.Players)
	}
	return n
}

// CountKind counts diagnostics of one kind.
func (r *Result) CountKind(kind DiagnosticKind) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Reporter receives lifecycle callbacks from the runner.
type Reporter interface {
	OnRebuildStart(root string)
	OnSeasonStart(season string, index int, total int)
	OnSeasonDone(result SeasonResult)
	OnDiagnostic(d Diagnostic)
	OnRebuildComplete(result *Result)
	OnRebuildError(err error)
}

// Sink mirrors derived documents somewhere other than the storage tree.
// Sink failures are recorded as diagnostics and never abort a rebuild.
type Sink interface {
	Name() string
	Publish(ctx context.Context, result *Result) error
}
