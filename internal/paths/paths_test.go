package paths

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistryByName(t *testing.T) {
	r := NewRegistry()

	if got := r.ByName("dda"); got != CataclysmDDA {
		t.Errorf("ByName(dda) = %+v", got)
	}
	if got := r.ByName("bn"); got != CataclysmBN {
		t.Errorf("ByName(bn) = %+v", got)
	}
	// Unknown names fall back to Other.
	if got := r.ByName("modded-fork"); got != Other {
		t.Errorf("ByName(modded-fork) = %+v, want Other", got)
	}
}

func TestSavesDirLayout(t *testing.T) {
	s := NewService("/data/savepoint")

	want := filepath.Join("/data/savepoint", "dda", "saves")
	if got := s.SavesDir(CataclysmDDA); got != want {
		t.Errorf("SavesDir = %q, want %q", got, want)
	}
	if s.RepoDir(CataclysmDDA) != s.SavesDir(CataclysmDDA) {
		t.Error("repo root must equal the saves directory")
	}
}

func TestEnsureSavesDir(t *testing.T) {
	s := NewService(t.TempDir())

	dir, err := s.EnsureSavesDir(CataclysmBN)
	if err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("saves dir not created: %v", err)
	}

	// Idempotent.
	if _, err := s.EnsureSavesDir(CataclysmBN); err != nil {
		t.Fatalf("second ensure failed: %v", err)
	}
}
