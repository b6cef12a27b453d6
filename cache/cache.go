// Package cache implements the content-addressed artifact cache of
// spec.md §4.2 and §4.4's on-disk model catalog envelope, grounded on
// original_source/biscuit-speaks/src/cache.rs's JSON cache: a
// schema-versioned envelope, temp-file-in-same-dir-plus-rename atomic
// writes, and cold-cache-on-version-mismatch semantics.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"llmpipe/perr"
)

// SchemaVersion is the current catalog envelope format version. Bump this
// when the envelope's Data shape changes incompatibly; ReadCatalog treats any
// mismatch as a cold cache rather than attempting migration, per spec.md
// §4.2's "cold-cache-on-version-mismatch" semantics.
const SchemaVersion = 1

// Envelope is the on-disk wrapper every catalog file uses, mirroring
// CacheEnvelope in biscuit-speaks/src/cache.rs.
type Envelope[T any] struct {
	SchemaVersion int   `json:"schema_version"`
	LastUpdated   int64 `json:"last_updated"`
	Data          T     `json:"data"`
}

// Store is a directory-scoped content-addressed artifact cache: Put/Get
// operate on raw byte blobs keyed by filename (typically a fingerprint hex
// string), and ReadCatalog/WriteCatalog operate on the single
// schema-versioned JSON catalog envelope that lives alongside the blobs.
type Store struct {
	dir         string
	catalogPath string
}

// New returns a Store rooted at dir, using catalogPath for the catalog
// envelope file. dir is created if it does not already exist.
func New(dir, catalogPath string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, perr.Internalf(err, "cache: create directory %q", dir)
	}
	return &Store{dir: dir, catalogPath: catalogPath}, nil
}

// Path returns the on-disk path an artifact keyed by key would live at.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key)
}

// Exists reports whether an artifact keyed by key is present.
func (s *Store) Exists(key string) bool {
	_, err := os.Stat(s.Path(key))
	return err == nil
}

// Get reads the artifact keyed by key.
func (s *Store) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return nil, perr.Internalf(err, "cache: read artifact %q", key)
	}
	return data, nil
}

// Put atomically writes data as the artifact keyed by key, using the same
// temp-file-in-target-directory-plus-rename pattern as
// write_cache_atomically in biscuit-speaks/src/cache.rs: flush, rename,
// remove-on-failure.
func (s *Store) Put(key string, data []byte) error {
	return atomicWrite(s.Path(key), data)
}

// atomicWrite writes data to path via a temp file created in path's own
// directory (so the subsequent rename is guaranteed atomic on the same
// filesystem), flushing before renaming and removing the temp file on any
// failure.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return perr.Internalf(err, "cache: create temp file in %q", dir)
	}
	tmpPath := tmp.Name()
	succeeded := false
	defer func() {
		if !succeeded {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return perr.Internalf(err, "cache: write temp file %q", tmpPath)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return perr.Internalf(err, "cache: flush temp file %q", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		return perr.Internalf(err, "cache: close temp file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return perr.Internalf(err, "cache: rename %q to %q", tmpPath, path)
	}
	succeeded = true
	return nil
}

// ReadCatalog reads and decodes the envelope at the store's catalog path.
// A version mismatch is surfaced as perr.KindSchemaMismatch, which callers
// should treat as a cold cache (spec.md §4.2) rather than a hard failure.
func ReadCatalog[T any](s *Store) (T, error) {
	var zero T
	raw, err := os.ReadFile(s.catalogPath)
	if err != nil {
		return zero, perr.Internalf(err, "cache: read catalog %q", s.catalogPath)
	}

	var env Envelope[T]
	if err := json.Unmarshal(raw, &env); err != nil {
		return zero, perr.ParseFailure(s.catalogPath, err)
	}
	if env.SchemaVersion != SchemaVersion {
		return zero, perr.SchemaMismatch(SchemaVersion, env.SchemaVersion)
	}
	return env.Data, nil
}

// WriteCatalog atomically writes data as the current schema-versioned
// envelope at the store's catalog path.
func WriteCatalog[T any](s *Store, data T) error {
	env := Envelope[T]{
		SchemaVersion: SchemaVersion,
		LastUpdated:   time.Now().Unix(),
		Data:          data,
	}
	raw, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return perr.Internalf(err, "cache: marshal catalog")
	}
	if err := os.MkdirAll(filepath.Dir(s.catalogPath), 0o755); err != nil {
		return perr.Internalf(err, "cache: create catalog directory")
	}
	return atomicWrite(s.catalogPath, raw)
}

// Invalidate deletes the catalog envelope file, forcing the next
// ReadCatalog to report a cold cache. It is not an error for the file to
// already be absent, mirroring bust_host_capability_cache's
// ignore-not-found removal.
func Invalidate(s *Store) error {
	err := os.Remove(s.catalogPath)
	if err != nil && !os.IsNotExist(err) {
		return perr.Internalf(err, "cache: invalidate catalog %q", s.catalogPath)
	}
	return nil
}

// Key formats a fingerprint hex digest into a stable artifact filename of
// the form "<hex>.<ext>", using "bin" when ext is empty. No producer-family
// prefix is added to the name.
func Key(fingerprintHex, ext string) string {
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s.%s", fingerprintHex, ext)
}
