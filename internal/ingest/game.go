package ingest

import (
	"math"
	"strconv"
	"strings"
)

// Side labels used in game records.
const (
	SideRed   = "RED"
	SideWhite = "WHITE"
)

// Default display names when a record omits them.
const (
	DefaultRedName   = "Красные"
	DefaultWhiteName = "Белые"
)

// Team is one side of a finished game. Players holds raw roster entries;
// non-string entries are kept as empty strings so normalization drops them.
type Team struct {
	Name    string
	Players []string
}

// Goal is a single goal event. Missing names are empty.
type Goal struct {
	Scorer  string
	Assist1 string
	Assist2 string
}

// GameRecord is the tolerant view of a finished game document.
type GameRecord struct {
	ID         string
	Season     string
	Arena      string
	Date       string
	Red        Team
	White      Team
	ScoreRed   int
	ScoreWhite int
	Goals      []Goal
}

// ParseGameRecord extracts a GameRecord from a decoded document. Fields of the
// wrong type fall back to their defaults; fallbackID is used when the document
// carries no identifier.
func ParseGameRecord(doc map[string]interface{}, fallbackID string) *GameRecord {
	rec := &GameRecord{
		ID:     fallbackString(extractString(doc, "gameId"), extractString(doc, "id"), fallbackID),
		Season: extractString(doc, "season"),
		Arena:  extractString(doc, "arena"),
		Date:   extractString(doc, "date"),
	}

	teams := extractMap(doc, "teams")
	rec.Red = parseTeam(extractMap(teams, SideRed), DefaultRedName)
	rec.White = parseTeam(extractMap(teams, SideWhite), DefaultWhiteName)

	score := extractMap(doc, "finalScore")
	rec.ScoreRed = extractScore(score, SideRed)
	rec.ScoreWhite = extractScore(score, SideWhite)

	for _, item := range extractArray(doc, "goals") {
		event, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		rec.Goals = append(rec.Goals, Goal{
			Scorer:  extractString(event, "scorer"),
			Assist1: extractString(event, "assist1"),
			Assist2: extractString(event, "assist2"),
		})
	}

	return rec
}

func parseTeam(obj map[string]interface{}, defaultName string) Team {
	team := Team{Name: extractString(obj, "name")}
	if team.Name == "" {
		team.Name = defaultName
	}
	for _, p := range extractArray(obj, "players") {
		name, _ := p.(string)
		team.Players = append(team.Players, name)
	}
	return team
}

func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}

func fallbackString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]interface{}); ok {
			return mapVal
		}
	}
	return map[string]interface{}{}
}

func extractArray(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]interface{}); ok {
			return arrVal
		}
	}
	return []interface{}{}
}

// extractScore reads a non-negative score; anything else counts as 0.
func extractScore(m map[string]interface{}, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	n := parseInt(v)
	if n < 0 {
		return 0
	}
	return n
}

func parseInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0
		}
		return int(val)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0
		}
		return i
	case int:
		return val
	default:
		return 0
	}
}
