package season

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/fortuna/rinkboard/internal/docstore"
)

// Lister is the part of the document store the discoverer needs.
type Lister interface {
	ListDir(rel string) ([]fs.DirEntry, error)
	Stat(rel string) (fs.FileInfo, error)
}

// Discover returns the sorted season identifiers found under finished/.
// A missing finished/ directory yields no seasons and no error. Symlinks to
// directories count as seasons.
func Discover(store Lister) ([]string, error) {
	entries, err := store.ListDir(docstore.FinishedDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", docstore.FinishedDir, err)
	}

	seasons := make([]string, 0, len(entries))
	for _, entry := range entries {
		if isDir(store, entry) {
			seasons = append(seasons, entry.Name())
		}
	}
	sort.Strings(seasons)
	return seasons, nil
}

func isDir(store Lister, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := store.Stat(path.Join(docstore.FinishedDir, entry.Name()))
	return err == nil && info.IsDir()
}

// Label is the human-readable season name shown in the root index.
func Label(season string) string {
	return "Сезон " + season
}
