package config

import "testing"

func TestAuthor(t *testing.T) {
	cfg := &Config{}
	cfg.User.Name = "Survivor"
	cfg.User.Email = "survivor@example.com"
	if got := cfg.Author(); got != "Survivor <survivor@example.com>" {
		t.Errorf("Author = %q", got)
	}

	// Missing identity falls back to defaults.
	if got := (&Config{}).Author(); got != "savepoint <savepoint@localhost>" {
		t.Errorf("default Author = %q", got)
	}
}

func TestMergeConfig(t *testing.T) {
	dst := DefaultConfig()
	src := &Config{}
	src.User.Name = "Custom"
	src.Core.Debug = true

	mergeConfig(dst, src)

	if dst.User.Name != "Custom" {
		t.Errorf("name not merged: %q", dst.User.Name)
	}
	if dst.User.Email != "savepoint@localhost" {
		t.Errorf("empty email overwrote default: %q", dst.User.Email)
	}
	if !dst.Core.Debug {
		t.Error("debug flag not merged")
	}
}

func TestDataDirFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Core.DataDir = "/mnt/games/savepoint"

	dir, err := cfg.DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if dir != "/mnt/games/savepoint" {
		t.Errorf("DataDir = %q", dir)
	}
}

func TestDataDirFromEnv(t *testing.T) {
	t.Setenv("SAVEPOINT_DATA_DIR", "/tmp/savepoint-env")

	dir, err := DefaultConfig().DataDir()
	if err != nil {
		t.Fatalf("DataDir failed: %v", err)
	}
	if dir != "/tmp/savepoint-env" {
		t.Errorf("DataDir = %q", dir)
	}
}
