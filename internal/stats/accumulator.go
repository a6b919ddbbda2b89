package stats

import (
	"github.com/fortuna/rinkboard/internal/docstore"
	"github.com/fortuna/rinkboard/internal/ingest"
)

// Accumulator collects per-player counters for one season.
// Entries are created only on first encounter of a normalized name.
type Accumulator struct {
	players map[string]*docstore.PlayerStat
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{players: make(map[string]*docstore.PlayerStat)}
}

func (a *Accumulator) entry(name string) *docstore.PlayerStat {
	st, ok := a.players[name]
	if !ok {
		st = &docstore.PlayerStat{Name: name}
		a.players[name] = st
	}
	return st
}

// AddGame folds one finished game into the counters.
//
// A name listed on both rosters counts one game but takes both sides'
// outcome. Malformed records are not corrected here.
func (a *Accumulator) AddGame(rec *ingest.GameRecord) {
	red := rosterSet(rec.Red.Players)
	white := rosterSet(rec.White.Players)

	all := make(map[string]struct{}, len(red)+len(white))
	for name := range red {
		all[name] = struct{}{}
	}
	for name := range white {
		all[name] = struct{}{}
	}
	for name := range all {
		a.entry(name).Games++
	}

	switch {
	case rec.ScoreRed > rec.ScoreWhite:
		a.credit(red, white)
	case rec.ScoreWhite > rec.ScoreRed:
		a.credit(white, red)
	default:
		for name := range all {
			a.entry(name).Draws++
		}
	}

	for _, g := range rec.Goals {
		if name, ok := ingest.NormalizeName(g.Scorer); ok {
			a.entry(name).Goals++
		}
		if name, ok := ingest.NormalizeName(g.Assist1); ok {
			a.entry(name).Assists++
		}
		if name, ok := ingest.NormalizeName(g.Assist2); ok {
			a.entry(name).Assists++
		}
	}
}

func (a *Accumulator) credit(winners, losers map[string]struct{}) {
	for name := range winners {
		a.entry(name).Wins++
	}
	for name := range losers {
		a.entry(name).Losses++
	}
}

// Merge adds other's counters field by field. Merging partials built from
// disjoint sets of games equals folding every game into one accumulator.
func (a *Accumulator) Merge(other *Accumulator) {
	if other == nil {
		return
	}
	for name, src := range other.players {
		dst := a.entry(name)
		dst.Games += src.Games
		dst.Goals += src.Goals
		dst.Assists += src.Assists
		dst.Wins += src.Wins
		dst.Draws += src.Draws
		dst.Losses += src.Losses
	}
}

// player returns a copy of one player's line with points computed.
func (a *Accumulator) player(name string) (docstore.PlayerStat, bool) {
	st, ok := a.players[name]
	if !ok {
		return docstore.PlayerStat{}, false
	}
	out := *st
	out.Points = out.Goals + out.Assists
	return out, true
}

// Leaderboard returns every player's line with points computed, ranked.
func (a *Accumulator) Leaderboard() []docstore.PlayerStat {
	out := make([]docstore.PlayerStat, 0, len(a.players))
	for _, st := range a.players {
		line := *st
		line.Points = line.Goals + line.Assists
		out = append(out, line)
	}
	SortLeaderboard(out)
	return out
}

func rosterSet(players []string) map[string]struct{} {
	set := make(map[string]struct{}, len(players))
	for _, raw := range players {
		if name, ok := ingest.NormalizeName(raw); ok {
			set[name] = struct{}{}
		}
	}
	return set
}
