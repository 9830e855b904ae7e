package sqlite3

import "time"

// ------------------------------------------------------------------------

// stgDedup is a SQLite3-backed deduplication-key store, an alternative
// to the BadgerDB backend when an LSM-tree footprint is undesirable.
type stgDedup struct {
	s *stgBase
}

// ------------------------------------------------------------------------

const defaultDedupTableName = "seen_requests"

// ------------------------------------------------------------------------

var cmdDedup = map[string]string{
	"create": `CREATE TABLE IF NOT EXISTS "<table>" ("key" TEXT PRIMARY KEY NOT NULL, "seen_at" INTEGER NOT NULL)`,
	"drop":   `DROP TABLE IF EXISTS "<table>"`,
	"trim":   `DELETE FROM "<table>"`,
	"insert": `INSERT INTO "<table>" ("key", "seen_at") VALUES (?, ?) ON CONFLICT("key") DO NOTHING`,
	"select": `SELECT EXISTS(SELECT 1 FROM "<table>" WHERE "key" = ?)`,
	"delete": `DELETE FROM "<table>" WHERE "key" = ?`,
	"count":  `SELECT COUNT(*) FROM "<table>"`,
}

// ------------------------------------------------------------------------

// NewDuplicateChecker returns a pointer to a newly created SQLite3
// DuplicateChecker. NewDuplicateChecker implements storage.DuplicateChecker.
func NewDuplicateChecker(path string, table string, keepData bool) (*stgDedup, error) {
	cfg := config{
		table:       setTable(table, defaultDedupTableName),
		dropOnClose: false,
		clearOnOpen: !keepData,
	}

	s, err := NewBaseStorage(path, &cfg, cmdDedup)
	if err != nil {
		return nil, err
	}

	return &stgDedup{
		s: s,
	}, nil
}

// ------------------------------------------------------------------------

// Close closes the SQLite3 deduplication store.
func (s *stgDedup) Close() error {
	return s.s.Close()
}

// ------------------------------------------------------------------------

// Clear removes all entries from the SQLite3 deduplication store.
func (s *stgDedup) Clear() error {
	return s.s.Clear()
}

// ------------------------------------------------------------------------

// Len returns the number of marked deduplication keys.
func (s *stgDedup) Len() (uint, error) {
	return s.s.Len()
}

// ------------------------------------------------------------------------

// Mark records key as seen. Marking an already-seen key is a no-op.
func (s *stgDedup) Mark(key string) error {
	s.s.lock.Lock()
	defer s.s.lock.Unlock()

	_, err := s.s.stmts["insert"].Exec(key, time.Now().Unix())

	return err
}

// ------------------------------------------------------------------------

// Seen reports whether key was marked before.
func (s *stgDedup) Seen(key string) (bool, error) {
	var check int

	s.s.lock.Lock()
	defer s.s.lock.Unlock()

	if err := s.s.stmts["select"].QueryRow(key).Scan(&check); err != nil {
		return false, err
	}

	return check == 1, nil
}
