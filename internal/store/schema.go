package store

import "fmt"

// kvDDL backs the brute-force blob store.
const kvDDL = `
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS kv (
    key   TEXT PRIMARY KEY,
    value BLOB NOT NULL
);
`

// vecDDL backs the ANN store: chunk metadata rows plus a sqlite-vec virtual
// table with cosine distance and a filterable content_type column.
func vecDDL(dimension int) string {
	return fmt.Sprintf(`
PRAGMA journal_mode=WAL;

CREATE TABLE IF NOT EXISTS chunks (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    document_id  TEXT NOT NULL,
    content_type TEXT NOT NULL,
    title        TEXT NOT NULL,
    ordinal      INTEGER NOT NULL,
    content      TEXT NOT NULL,
    snippet      TEXT NOT NULL,
    UNIQUE(document_id, ordinal)
);

CREATE VIRTUAL TABLE IF NOT EXISTS vec_chunks USING vec0(
    chunk_id INTEGER PRIMARY KEY,
    embedding float[%d] distance_metric=cosine,
    content_type text
);

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`, dimension)
}
