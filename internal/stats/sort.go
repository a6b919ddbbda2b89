package stats

import (
	"sort"

	"github.com/fortuna/rinkboard/internal/docstore"
)

// SortLeaderboard orders by points desc, goals desc, then name asc.
func SortLeaderboard(players []docstore.PlayerStat) {
	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Goals != b.Goals {
			return a.Goals > b.Goals
		}
		return a.Name < b.Name
	})
}

// SortGames orders games by resolved timestamp, keeping input order on ties.
func SortGames(games []docstore.GameMeta) {
	sort.SliceStable(games, func(i, j int) bool {
		return games[i].SortTime.Before(games[j].SortTime)
	})
}
