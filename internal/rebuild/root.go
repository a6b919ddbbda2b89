package rebuild

import (
	"github.com/fortuna/rinkboard/internal/docstore"
	"github.com/fortuna/rinkboard/internal/season"
)

// BuildRoot assembles the root index. prior is the previously selected
// season; it is kept only if it is still among seasons, otherwise the last
// season wins. seasons must already be in discovery order.
func BuildRoot(prior string, seasons []string) docstore.RootIndex {
	current := ""
	for _, s := range seasons {
		if s == prior {
			current = prior
			break
		}
	}
	if current == "" && len(seasons) > 0 {
		current = seasons[len(seasons)-1]
	}

	entries := make([]docstore.SeasonEntry, 0, len(seasons))
	for _, s := range seasons {
		entries = append(entries, docstore.SeasonEntry{
			ID:            s,
			Name:          season.Label(s),
			FinishedIndex: docstore.SeasonIndexPath(s),
			PlayersStats:  docstore.PlayersPath(s),
			ActiveGame:    docstore.ActiveGameFile,
		})
	}

	return docstore.RootIndex{
		CurrentSeason: current,
		Seasons:       entries,
	}
}

// rebuildRoot reads the prior root index, if any, and rewrites it. A missing
// or malformed prior document means no prior selection. Only the write can fail.
func (r *Runner) rebuildRoot(store *docstore.Store, seasons []string) (docstore.RootIndex, []Diagnostic, error) {
	var diags []Diagnostic

	prior := ""
	if store.Exists(docstore.RootIndexFile) {
		doc, err := store.ReadObject(docstore.RootIndexFile)
		if err != nil {
			diags = append(diags, Diagnostic{Kind: KindMalformedRoot, Path: docstore.RootIndexFile, Err: err})
		} else if s, ok := doc["currentSeason"].(string); ok {
			prior = s
		}
	}

	root := BuildRoot(prior, seasons)
	if err := store.WriteDocument(docstore.RootIndexFile, root); err != nil {
		return root, diags, err
	}
	return root, diags, nil
}
