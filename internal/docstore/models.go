package docstore

import "time"

// GameMeta is one entry of a season game index.
type GameMeta struct {
	ID         string `json:"id"`
	Date       string `json:"date"`
	Arena      string `json:"arena"`
	TeamRed    string `json:"teamRed"`
	TeamWhite  string `json:"teamWhite"`
	ScoreRed   int    `json:"scoreRed"`
	ScoreWhite int    `json:"scoreWhite"`
	File       string `json:"file"`

	// SortTime is the parsed date, or the record's modification time.
	SortTime time.Time `json:"-"`
}

// SeasonIndex is written to finished/<season>/index.json.
type SeasonIndex struct {
	Season    string     `json:"season"`
	UpdatedAt string     `json:"updatedAt"`
	Games     []GameMeta `json:"games"`
}

// PlayerStat is a player's aggregated season line.
type PlayerStat struct {
	Name    string `json:"name"`
	Games   int    `json:"games"`
	Goals   int    `json:"goals"`
	Assists int    `json:"assists"`
	Points  int    `json:"points"`
	Wins    int    `json:"wins"`
	Draws   int    `json:"draws"`
	Losses  int    `json:"losses"`
}

// PlayerLeaderboard is written to stats/<season>/players.json.
type PlayerLeaderboard struct {
	Season  string       `json:"season"`
	Players []PlayerStat `json:"players"`
}

// SeasonEntry describes one season in the root index.
type SeasonEntry struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	FinishedIndex string `json:"finishedIndex"`
	PlayersStats  string `json:"playersStats"`
	ActiveGame    string `json:"activeGame"`
}

// RootIndex is written to index.json at the storage root.
type RootIndex struct {
	CurrentSeason string        `json:"currentSeason"`
	Seasons       []SeasonEntry `json:"seasons"`
}

// TimestampLayout formats SeasonIndex.UpdatedAt.
const TimestampLayout = "2006-01-02T15:04:05"
