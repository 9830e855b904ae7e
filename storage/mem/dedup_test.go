package mem

import "testing"

// ------------------------------------------------------------------------

func TestDuplicateChecker(t *testing.T) {
	s := NewDuplicateChecker()

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
	if _, err := s.Seen("a"); err == nil {
		t.Fatalf("expected error reading from a closed store")
	}
}
