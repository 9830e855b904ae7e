package badger

import "github.com/navindex/juriscraper/storage"

// ------------------------------------------------------------------------

// stgDedup is a BadgerDB-backed deduplication-key store. Unlike the
// in-memory default, marked keys survive process restarts, which matters
// for long speculative runs that resume across invocations.
type stgDedup struct {
	s *stgBase
}

// ------------------------------------------------------------------------

var prefixDedup = []byte{byte(TYPE_DEDUP), 0}

// ------------------------------------------------------------------------

// NewDuplicateChecker returns a pointer to a newly created BadgerDB
// DuplicateChecker. NewDuplicateChecker implements storage.DuplicateChecker.
func NewDuplicateChecker(path string, keepData bool) (*stgDedup, error) {
	cfg := config{
		prefix:      prefixDedup,
		clearOnOpen: !keepData,
	}

	s, err := NewBaseStorage(path, &cfg)
	if err != nil {
		return nil, err
	}

	return &stgDedup{
		s: s,
	}, nil
}

// ------------------------------------------------------------------------

// Close closes the BadgerDB deduplication store.
func (s *stgDedup) Close() error {
	return s.s.Close()
}

// ------------------------------------------------------------------------

// Clear removes all entries from the BadgerDB deduplication store.
func (s *stgDedup) Clear() error {
	return s.s.Clear()
}

// ------------------------------------------------------------------------

// Len returns the number of marked deduplication keys.
func (s *stgDedup) Len() (uint, error) {
	return s.s.Len()
}

// ------------------------------------------------------------------------

// Mark records key as seen, storing the time of first marking.
func (s *stgDedup) Mark(key string) error {
	seen, err := s.Seen(key)
	if err != nil {
		return err
	}
	if seen {
		return nil
	}

	return s.s.Set([]byte(key), storage.CurrentTimeToBytes())
}

// ------------------------------------------------------------------------

// Seen reports whether key was marked before.
func (s *stgDedup) Seen(key string) (bool, error) {
	value, err := s.s.Get([]byte(key))
	if err != nil {
		return false, err
	}

	return value != nil, nil
}
