package docstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	// ErrRootInaccessible marks a storage root that cannot be listed.
	ErrRootInaccessible = errors.New("storage root inaccessible")

	// ErrWrongShape is returned when a document decodes but is not a JSON object.
	ErrWrongShape = errors.New("document is not a JSON object")
)

// ReadError is a soft failure: the caller decides whether to skip and continue.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed document write. The target is left untouched.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Store reads and writes JSON documents at relative paths under a root directory.
type Store struct {
	root string
}

// Open validates that root can be listed and returns a Store for it.
func Open(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootInaccessible, root, err)
	}
	if _, err := os.ReadDir(abs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRootInaccessible, abs, err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute storage root.
func (s *Store) Root() string {
	return s.root
}

// Abs resolves a slash-separated relative path against the root.
func (s *Store) Abs(rel string) string {
	return filepath.Join(s.root, filepath.FromSlash(rel))
}

// ListDir returns the entries of a directory under the root, sorted by name.
func (s *Store) ListDir(rel string) ([]fs.DirEntry, error) {
	return os.ReadDir(s.Abs(rel))
}

// Stat returns file info for a path under the root.
func (s *Store) Stat(rel string) (fs.FileInfo, error) {
	return os.Stat(s.Abs(rel))
}

// Exists reports whether rel exists. Errors other than not-exist count as existing.
func (s *Store) Exists(rel string) bool {
	_, err := s.Stat(rel)
	return !errors.Is(err, fs.ErrNotExist)
}

// ReadDocument decodes the document at rel into v.
func (s *Store) ReadDocument(rel string, v any) error {
	data, err := os.ReadFile(s.Abs(rel))
	if err != nil {
		return &ReadError{Path: rel, Err: err}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &ReadError{Path: rel, Err: err}
	}
	return nil
}

// ReadObject decodes the document at rel as a generic JSON object.
func (s *Store) ReadObject(rel string) (map[string]interface{}, error) {
	var doc interface{}
	if err := s.ReadDocument(rel, &doc); err != nil {
		return nil, err
	}
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return nil, &ReadError{Path: rel, Err: ErrWrongShape}
	}
	return obj, nil
}

// WriteDocument encodes v and atomically replaces the document at rel.
// Parent directories are created as needed.
func (s *Store) WriteDocument(rel string, v any) error {
	data, err := Encode(v)
	if err != nil {
		return &WriteError{Path: rel, Err: err}
	}

	target := s.Abs(rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return &WriteError{Path: rel, Err: err}
	}

	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: rel, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Path: rel, Err: err}
	}
	return nil
}

// Encode renders v as 2-space indented JSON without HTML or non-ASCII escaping.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
