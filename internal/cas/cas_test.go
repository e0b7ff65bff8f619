package cas

import (
	"bytes"
	"testing"
)

func TestMemoryCASRoundTrip(t *testing.T) {
	store := NewMemoryCAS()

	data := []byte("save game payload")
	hash := SumB3(data)

	if err := store.Put(hash, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get returned %q, want %q", got, data)
	}

	exists, err := store.Has(hash)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !exists {
		t.Error("Has returned false for stored object")
	}
}

func TestMemoryCASRejectsHashMismatch(t *testing.T) {
	store := NewMemoryCAS()

	wrong := SumB3([]byte("other content"))
	if err := store.Put(wrong, []byte("payload")); err == nil {
		t.Fatal("expected hash mismatch error, got nil")
	}
}

func TestMemoryCASGetMissing(t *testing.T) {
	store := NewMemoryCAS()

	if _, err := store.Get(SumB3([]byte("missing"))); err == nil {
		t.Fatal("expected error for missing hash, got nil")
	}
}

func TestFileCASRoundTrip(t *testing.T) {
	store, err := NewFileCAS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCAS failed: %v", err)
	}

	data := []byte("file-backed save game payload")
	hash := SumB3(data)

	if err := store.Put(hash, data); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// Second Put of the same object is a no-op.
	if err := store.Put(hash, data); err != nil {
		t.Fatalf("repeated Put failed: %v", err)
	}

	got, err := store.Get(hash)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Get returned %q, want %q", got, data)
	}

	exists, err := store.Has(hash)
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !exists {
		t.Error("Has returned false for stored object")
	}

	missing, err := store.Has(SumB3([]byte("not stored")))
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if missing {
		t.Error("Has returned true for missing object")
	}
}

func TestParseHash(t *testing.T) {
	hash := SumB3([]byte("content"))

	parsed, err := ParseHash(hash.String())
	if err != nil {
		t.Fatalf("ParseHash failed: %v", err)
	}
	if parsed != hash {
		t.Errorf("ParseHash returned %s, want %s", parsed, hash)
	}

	if _, err := ParseHash("abc"); err == nil {
		t.Error("expected error for short hash string")
	}
	if _, err := ParseHash(string(make([]byte, 64))); err == nil {
		t.Error("expected error for non-hex hash string")
	}
}
