package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewBookStartsAvailable(t *testing.T) {
	b := NewBook("Dune", "Herbert", 1965, "")
	if !b.Available {
		t.Fatal("new book must be available")
	}
	if b.IssuedTo != "" {
		t.Fatalf("new book must have empty holder, got %q", b.IssuedTo)
	}
	if b.Cover != "" {
		t.Fatalf("expected empty cover, got %q", b.Cover)
	}
}

func TestIssuedTransition(t *testing.T) {
	lc := Issued("alice")
	if lc.Available {
		t.Fatal("issued book must not be available")
	}
	if lc.IssuedTo != "alice" {
		t.Fatalf("holder = %q, want alice", lc.IssuedTo)
	}
}

func TestIssuedOverwritesHolder(t *testing.T) {
	b := NewBook("Dune", "Herbert", 1965, "")
	b.Lifecycle = Issued("alice")
	b.Lifecycle = Issued("bob")
	if b.Available {
		t.Fatal("book must stay issued")
	}
	if b.IssuedTo != "bob" {
		t.Fatalf("holder = %q, want bob", b.IssuedTo)
	}
}

func TestReturnedClearsHolder(t *testing.T) {
	b := NewBook("Dune", "Herbert", 1965, "")
	b.Lifecycle = Issued("alice")
	b.Lifecycle = Returned()
	if !b.Available {
		t.Fatal("returned book must be available")
	}
	if b.IssuedTo != "" {
		t.Fatalf("holder = %q, want empty", b.IssuedTo)
	}
}

func TestReturnedIsIdempotent(t *testing.T) {
	b := NewBook("Dune", "Herbert", 1965, "")
	b.Lifecycle = Returned()
	b.Lifecycle = Returned()
	if !b.Available || b.IssuedTo != "" {
		t.Fatalf("repeated return changed state: %+v", b.Lifecycle)
	}
}

func TestLifecycleInvariant(t *testing.T) {
	// available=false のとき holder は非空、available=true のとき holder は空
	for _, lc := range []Lifecycle{Issued("alice"), Returned()} {
		if !lc.Available && lc.IssuedTo == "" {
			t.Fatalf("issued state without holder: %+v", lc)
		}
		if lc.Available && lc.IssuedTo != "" {
			t.Fatalf("available state with holder: %+v", lc)
		}
	}
}

func TestErrorKindMatching(t *testing.T) {
	err := fmt.Errorf("handler: %w", Conflict("username already exists"))

	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatal("expected wrapped *Error to match")
	}
	if serr.Kind != KindConflict {
		t.Fatalf("kind = %s, want %s", serr.Kind, KindConflict)
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("failed to fetch user", cause)

	if !errors.Is(err, cause) {
		t.Fatal("expected Unavailable to wrap its cause")
	}
	if err.Error() != "STORE_UNAVAILABLE: failed to fetch user: connection refused" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
}
