package rebuild

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fortuna/rinkboard/internal/docstore"
)

var testNow = time.Date(2025, 10, 19, 12, 0, 0, 0, time.UTC)

func newRunner(root string, sinks ...Sink) *Runner {
	return NewRunner(root, Options{
		Workers:  2,
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
		Logger:   log.New(io.Discard, "", 0),
		Sinks:    sinks,
	})
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, root, rel string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return data
}

func readDoc(t *testing.T, root, rel string, v any) {
	t.Helper()
	store, err := docstore.Open(root)
	require.NoError(t, err)
	require.NoError(t, store.ReadDocument(rel, v))
}

// gameDoc renders a minimal finished game record.
func gameDoc(id, date string, red, white []string, scoreRed, scoreWhite int, goals ...string) string {
	events := ""
	for i, g := range goals {
		if i > 0 {
			events += ","
		}
		events += g
	}
	return fmt.Sprintf(`{
  "gameId": %q,
  "date": %q,
  "arena": "Лёд",
  "teams": {
    "RED": {"name": "Красные", "players": %s},
    "WHITE": {"name": "Белые", "players": %s}
  },
  "finalScore": {"RED": %d, "WHITE": %d},
  "goals": [%s]
}`, id, date, jsonList(red), jsonList(white), scoreRed, scoreWhite, events)
}

func jsonList(items []string) string {
	out := "["
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%q", s)
	}
	return out + "]"
}

type recordingSink struct {
	name string
	err  error

	mu      sync.Mutex
	results []*Result
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Publish(_ context.Context, res *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, res)
	return s.err
}

type recordingReporter struct {
	events []string
	diags  []Diagnostic
	err    error
	result *Result
}

func (r *recordingReporter) OnRebuildStart(root string) {
	r.events = append(r.events, "start")
}

func (r *recordingReporter) OnSeasonStart(season string, index int, total int) {
	r.events = append(r.events, fmt.Sprintf("season %s %d/%d", season, index+1, total))
}

func (r *recordingReporter) OnSeasonDone(result SeasonResult) {
	r.events = append(r.events, "done "+result.Season)
}

func (r *recordingReporter) OnDiagnostic(d Diagnostic) {
	r.diags = append(r.diags, d)
}

func (r *recordingReporter) OnRebuildComplete(result *Result) {
	r.events = append(r.events, "complete")
	r.result = result
}

func (r *recordingReporter) OnRebuildError(err error) {
	r.events = append(r.events, "error")
	r.err = err
}
