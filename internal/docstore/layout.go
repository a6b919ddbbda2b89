package docstore

import "path"

// Storage layout, relative to the root. Paths are slash-separated.
const (
	FinishedDir     = "finished"
	StatsDir        = "stats"
	RootIndexFile   = "index.json"
	SeasonIndexFile = "index.json"
	PlayersFile     = "players.json"
	ActiveGameFile  = "active_game.json"
)

// SeasonDir is the finished-games directory of a season.
func SeasonDir(season string) string {
	return path.Join(FinishedDir, season)
}

// SeasonIndexPath is where the season game index is written.
func SeasonIndexPath(season string) string {
	return path.Join(FinishedDir, season, SeasonIndexFile)
}

// PlayersPath is where the season leaderboard is written.
func PlayersPath(season string) string {
	return path.Join(StatsDir, season, PlayersFile)
}

// GamePath is the location of a single finished game record.
func GamePath(season, fileName string) string {
	return path.Join(FinishedDir, season, fileName)
}
