package badger

import (
	"path/filepath"
	"testing"
)

// ------------------------------------------------------------------------

func TestDuplicateChecker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dedup")

	s, err := NewDuplicateChecker(path, false)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}

	seen, err := s.Seen("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen {
		t.Fatalf("expected key %q to be unseen", "a")
	}

	if err := s.Mark("a"); err != nil {
		t.Fatalf("unexpected error marking key: %v", err)
	}

	seen, err = s.Seen("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatalf("expected key %q to be seen after marking", "a")
	}

	if n, _ := s.Len(); n != 1 {
		t.Fatalf("expected length 1, got %d", n)
	}

	if err := s.Mark("a"); err != nil {
		t.Fatalf("re-marking an existing key should not error: %v", err)
	}
	if n, _ := s.Len(); n != 1 {
		t.Fatalf("re-marking an existing key should not grow the store, got %d", n)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("unexpected error clearing: %v", err)
	}
	if n, _ := s.Len(); n != 0 {
		t.Fatalf("expected length 0 after clear, got %d", n)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}
}

// ------------------------------------------------------------------------

func TestDuplicateCheckerKeepData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dedup")

	s, err := NewDuplicateChecker(path, false)
	if err != nil {
		t.Fatalf("unexpected error opening store: %v", err)
	}
	if err := s.Mark("a"); err != nil {
		t.Fatalf("unexpected error marking key: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("unexpected error closing: %v", err)
	}

	reopened, err := NewDuplicateChecker(path, true)
	if err != nil {
		t.Fatalf("unexpected error reopening store: %v", err)
	}
	defer reopened.Close()

	seen, err := reopened.Seen("a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !seen {
		t.Fatalf("expected key %q marked before close to survive reopening with keepData=true", "a")
	}
}
