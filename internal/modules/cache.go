package modules

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"

	_ "modernc.org/sqlite"
)

// DiskCache persists compiled bytecode blobs across CLI invocations, keyed
// by a module's canonical path and a content hash, so `atlas compile` can
// skip recompiling a file whose source hasn't changed since the last call.
// `atlas run` does not use it.
type DiskCache struct {
	db *sql.DB
}

// OpenDiskCache opens (creating if necessary) a SQLite-backed cache file.
func OpenDiskCache(file string) (*DiskCache, error) {
	db, err := sql.Open("sqlite", file)
	if err != nil {
		return nil, err
	}
	const schema = `CREATE TABLE IF NOT EXISTS bytecode_cache (
		path TEXT NOT NULL,
		hash TEXT NOT NULL,
		blob BLOB NOT NULL,
		PRIMARY KEY (path, hash)
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &DiskCache{db: db}, nil
}

// Close releases the underlying database handle.
func (c *DiskCache) Close() error { return c.db.Close() }

// Hash returns the content hash used as the cache key's second component.
func Hash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached bytecode blob for path at the given content hash,
// or ok=false on a cache miss (including a hash mismatch from a prior run).
func (c *DiskCache) Get(path, hash string) (blob []byte, ok bool) {
	row := c.db.QueryRow(`SELECT blob FROM bytecode_cache WHERE path = ? AND hash = ?`, path, hash)
	if err := row.Scan(&blob); err != nil {
		return nil, false
	}
	return blob, true
}

// Put stores (or replaces) the bytecode blob for path at the given hash,
// evicting any stale entry left over from a previous version of the file.
func (c *DiskCache) Put(path, hash string, blob []byte) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM bytecode_cache WHERE path = ? AND hash != ?`, path, hash); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT OR REPLACE INTO bytecode_cache (path, hash, blob) VALUES (?, ?, ?)`, path, hash, blob); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
