package preview

import (
	"errors"
	"testing"
)

func TestAllocateAndLookup(t *testing.T) {
	reg := NewRegistry()
	h, err := reg.Allocate("logo.png", "image/png", []byte("png"))
	if err != nil {
		t.Fatalf("Allocate error: %v", err)
	}
	if h.ID() == "" {
		t.Fatalf("expected handle id")
	}
	name, ct, data, err := reg.Lookup(h.ID())
	if err != nil {
		t.Fatalf("Lookup error: %v", err)
	}
	if name != "logo.png" || ct != "image/png" || string(data) != "png" {
		t.Fatalf("unexpected entry: %s %s %q", name, ct, data)
	}
	if reg.Live() != 1 {
		t.Fatalf("expected 1 live handle, got %d", reg.Live())
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	a, _ := reg.Allocate("a.png", "image/png", nil)
	b, _ := reg.Allocate("b.png", "image/png", nil)

	a.Release()
	a.Release()
	if reg.Live() != 1 {
		t.Fatalf("expected 1 live handle, got %d", reg.Live())
	}
	if _, _, _, err := reg.Lookup(a.ID()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, _, err := reg.Lookup(b.ID()); err != nil {
		t.Fatalf("expected b to stay live, got %v", err)
	}
}

func TestAllocateRejectsEmptyName(t *testing.T) {
	reg := NewRegistry()
	if _, err := reg.Allocate("", "image/png", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if reg.Live() != 0 {
		t.Fatalf("expected no live handles, got %d", reg.Live())
	}
}
