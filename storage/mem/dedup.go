package mem

import (
	"sync"

	"github.com/navindex/juriscraper/storage"
)

// ------------------------------------------------------------------------

// stgDedup is an in-memory deduplication-key store.
type stgDedup struct {
	lock *sync.RWMutex
	keys map[string]struct{}
}

// ------------------------------------------------------------------------

// NewDuplicateChecker returns a pointer to a newly created in-memory
// DuplicateChecker. It is the driver's default.
func NewDuplicateChecker() *stgDedup {
	return &stgDedup{
		lock: &sync.RWMutex{},
		keys: map[string]struct{}{},
	}
}

// ------------------------------------------------------------------------

// Close closes the in-memory deduplication store.
func (s *stgDedup) Close() error {
	if s.keys == nil {
		return storage.ErrStorageClosed
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.keys = nil

	return nil
}

// ------------------------------------------------------------------------

// Clear removes all entries from the in-memory deduplication store.
func (s *stgDedup) Clear() error {
	if s.keys == nil {
		return storage.ErrStorageClosed
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.keys = map[string]struct{}{}

	return nil
}

// ------------------------------------------------------------------------

// Len returns the number of marked deduplication keys.
func (s *stgDedup) Len() (uint, error) {
	if s.keys == nil {
		return 0, storage.ErrStorageClosed
	}

	s.lock.RLock()
	defer s.lock.RUnlock()

	return uint(len(s.keys)), nil
}

// ------------------------------------------------------------------------

// Mark records key as seen. Marking an already-seen key is a no-op.
func (s *stgDedup) Mark(key string) error {
	if s.keys == nil {
		return storage.ErrStorageClosed
	}

	s.lock.Lock()
	s.keys[key] = struct{}{}
	s.lock.Unlock()

	return nil
}

// ------------------------------------------------------------------------

// Seen reports whether key was marked before.
func (s *stgDedup) Seen(key string) (bool, error) {
	if s.keys == nil {
		return false, storage.ErrStorageClosed
	}

	s.lock.RLock()
	_, present := s.keys[key]
	s.lock.RUnlock()

	return present, nil
}
