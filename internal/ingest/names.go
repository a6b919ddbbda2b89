package ingest

import "strings"

// nullMarkers are lower-cased placeholders scorekeepers type for "no player".
var nullMarkers = map[string]struct{}{
	"null": {},
	"none": {},
	"нул":  {},
}

// NormalizeName trims a player name and rejects empty values and null markers.
// Identity after trimming is case-sensitive.
func NormalizeName(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", false
	}
	if _, ok := nullMarkers[strings.ToLower(name)]; ok {
		return "", false
	}
	return name, true
}
