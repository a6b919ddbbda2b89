package rebuild

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fortuna/rinkboard/internal/docstore"
	"github.com/fortuna/rinkboard/internal/ingest"
	"github.com/fortuna/rinkboard/internal/stats"
)

// parsedGame is the per-file outcome of reading one record.
type parsedGame struct {
	record *ingest.GameRecord
	meta   docstore.GameMeta
	err    error
}

// processSeason rebuilds finished/<season>/index.json and
// stats/<season>/players.json. It only returns an error on cancellation.
func (r *Runner) processSeason(ctx context.Context, store *docstore.Store, seasonID string) (SeasonResult, error) {
	res := SeasonResult{Season: seasonID}

	files, err := listGameFiles(store, seasonID)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind:   KindUnreadableSeason,
			Season: seasonID,
			Path:   docstore.SeasonDir(seasonID),
			Err:    err,
		})
		files = nil
	}

	games := []docstore.GameMeta{}
	acc := stats.NewAccumulator()

	if len(files) > 0 {
		parsed, total, err := r.readGames(ctx, store, seasonID, files)
		if err != nil {
			return res, err
		}
		acc = total

		for i, p := range parsed {
			if p.err != nil {
				res.Skipped++
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Kind:   KindUnreadableRecord,
					Season: seasonID,
					Path:   docstore.GamePath(seasonID, files[i]),
					Err:    p.err,
				})
				continue
			}
			games = append(games, p.meta)
		}
		stats.SortGames(games)
	}

	res.Index = docstore.SeasonIndex{
		Season:    seasonID,
		UpdatedAt: r.opts.Now().Format(docstore.TimestampLayout),
		Games:     games,
	}
	res.Leaderboard = docstore.PlayerLeaderboard{
		Season:  seasonID,
		Players: acc.Leaderboard(),
	}

	if err := store.WriteDocument(docstore.SeasonIndexPath(seasonID), res.Index); err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind: KindWriteFailed, Season: seasonID, Path: docstore.SeasonIndexPath(seasonID), Err: err,
		})
	}
	if err := store.WriteDocument(docstore.PlayersPath(seasonID), res.Leaderboard); err != nil {
		res.Diagnostics = append(res.Diagnostics, Diagnostic{
			Kind: KindWriteFailed, Season: seasonID, Path: docstore.PlayersPath(seasonID), Err: err,
		})
	}

	return res, nil
}

// span is a half-open range of file positions.
type span struct {
	start, end int
}

// partition splits n files into at most parts contiguous spans of near-equal size.
func partition(n, parts int) []span {
	if parts > n {
		parts = n
	}
	spans := make([]span, 0, parts)
	for p := 0; p < parts; p++ {
		spans = append(spans, span{start: p * n / parts, end: (p + 1) * n / parts})
	}
	return spans
}

// readGames splits the files into one contiguous span per worker. Each worker
// folds its readable records into a partial accumulator; partials are merged
// afterwards. Per-file results are slotted by position so diagnostics and the
// game list keep directory order regardless of completion order.
func (r *Runner) readGames(ctx context.Context, store *docstore.Store, seasonID string, files []string) ([]parsedGame, *stats.Accumulator, error) {
	parsed := make([]parsedGame, len(files))
	spans := partition(len(files), r.opts.Workers)
	partials := make([]*stats.Accumulator, len(spans))

	g, gctx := errgroup.WithContext(ctx)
	for w, sp := range spans {
		w, sp := w, sp
		g.Go(func() error {
			acc := stats.NewAccumulator()
			for i := sp.start; i < sp.end; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				parsed[i] = r.readGame(store, seasonID, files[i])
				if parsed[i].err == nil {
					acc.AddGame(parsed[i].record)
				}
			}
			partials[w] = acc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	total := stats.NewAccumulator()
	for _, acc := range partials {
		total.Merge(acc)
	}
	return parsed, total, nil
}

func (r *Runner) readGame(store *docstore.Store, seasonID, name string) parsedGame {
	rel := docstore.GamePath(seasonID, name)

	doc, err := store.ReadObject(rel)
	if err != nil {
		return parsedGame{err: err}
	}

	rec := ingest.ParseGameRecord(doc, strings.TrimSuffix(name, filepath.Ext(name)))

	sortTime, ok := ingest.ParseDate(rec.Date, r.opts.Location)
	if !ok {
		sortTime, err = modTime(store, rel)
		if err != nil {
			return parsedGame{err: &docstore.ReadError{Path: rel, Err: err}}
		}
	}

	return parsedGame{
		record: rec,
		meta: docstore.GameMeta{
			ID:         rec.ID,
			Date:       rec.Date,
			Arena:      rec.Arena,
			TeamRed:    rec.Red.Name,
			TeamWhite:  rec.White.Name,
			ScoreRed:   rec.ScoreRed,
			ScoreWhite: rec.ScoreWhite,
			File:       rel,
			SortTime:   sortTime,
		},
	}
}

func modTime(store *docstore.Store, rel string) (time.Time, error) {
	info, err := store.Stat(rel)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// listGameFiles returns the game record file names of a season in directory
// order, skipping the season index and anything that is not a regular file.
func listGameFiles(store *docstore.Store, seasonID string) ([]string, error) {
	entries, err := store.ListDir(docstore.SeasonDir(seasonID))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == docstore.SeasonIndexFile {
			continue
		}
		if !strings.EqualFold(filepath.Ext(name), ".json") {
			continue
		}
		if !entry.Type().IsRegular() {
			info, err := store.Stat(docstore.GamePath(seasonID, name))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		files = append(files, name)
	}
	return files, nil
}
