package cache

import (
	"database/sql"
	"path/filepath"

	_ "modernc.org/sqlite"

	"llmpipe/perr"
)

// Index is a read-convenience SQLite secondary index over a Store's
// artifacts, so a CLI (mat, queue) can list cached entries without
// re-walking the artifact directory on every invocation. It is derived
// data, filled only through Record and Forget; the artifact files on disk
// remain the source of truth. OpenIndex creates a missing index file
// empty; nothing in this package repopulates it from the directory.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if absent) the SQLite index file alongside a
// Store's directory.
func OpenIndex(storeDir string) (*Index, error) {
	path := filepath.Join(storeDir, ".cache-index.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, perr.Internalf(err, "cache: open index at %q", path)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS artifacts (
	key TEXT PRIMARY KEY,
	size_bytes INTEGER NOT NULL,
	indexed_at INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, perr.Internalf(err, "cache: create index schema")
	}
	return &Index{db: db}, nil
}

// Close releases the underlying database handle.
func (idx *Index) Close() error { return idx.db.Close() }

// Record upserts one artifact's metadata into the index.
func (idx *Index) Record(key string, sizeBytes int64, indexedAtUnix int64) error {
	_, err := idx.db.Exec(
		`INSERT INTO artifacts (key, size_bytes, indexed_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET size_bytes = excluded.size_bytes, indexed_at = excluded.indexed_at`,
		key, sizeBytes, indexedAtUnix,
	)
	if err != nil {
		return perr.Internalf(err, "cache: record index entry %q", key)
	}
	return nil
}

// ArtifactInfo is one row of the index's artifact listing.
type ArtifactInfo struct {
	Key       string
	SizeBytes int64
	IndexedAt int64
}

// List returns every indexed artifact, ordered by most recently indexed
// first.
func (idx *Index) List() ([]ArtifactInfo, error) {
	rows, err := idx.db.Query(`SELECT key, size_bytes, indexed_at FROM artifacts ORDER BY indexed_at DESC`)
	if err != nil {
		return nil, perr.Internalf(err, "cache: list index entries")
	}
	defer rows.Close()

	var out []ArtifactInfo
	for rows.Next() {
		var info ArtifactInfo
		if err := rows.Scan(&info.Key, &info.SizeBytes, &info.IndexedAt); err != nil {
			return nil, perr.Internalf(err, "cache: scan index row")
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Forget removes key from the index without touching the underlying
// artifact file.
func (idx *Index) Forget(key string) error {
	_, err := idx.db.Exec(`DELETE FROM artifacts WHERE key = ?`, key)
	if err != nil {
		return perr.Internalf(err, "cache: forget index entry %q", key)
	}
	return nil
}
