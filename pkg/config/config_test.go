package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type sampleConfig struct {
	Model   string        `split_words:"true" required:"true"`
	Timeout time.Duration `split_words:"true" default:"5s"`
}

// Not parallel: the loader writes process environment and package state.
func TestNewLoadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGTEST_MODEL=gpt-test\nCFGTEST_TIMEOUT=7s\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() {
		SetEnvFile("")
		_ = os.Unsetenv("CFGTEST_MODEL")
		_ = os.Unsetenv("CFGTEST_TIMEOUT")
	})

	SetEnvFile(path)
	cfg, err := New[sampleConfig]("CFGTEST")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Model != "gpt-test" || cfg.Timeout != 7*time.Second {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestNewEnvironmentWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CFGWIN_MODEL=from-file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("CFGWIN_MODEL", "from-env")
	t.Cleanup(func() { SetEnvFile("") })

	SetEnvFile(path)
	cfg, err := New[sampleConfig]("CFGWIN")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Model != "from-env" || cfg.Timeout != 5*time.Second {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestNewMissingRequired(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile("")

	if _, err := New[sampleConfig]("CFGMISSING"); err == nil {
		t.Fatal("expected error for missing required field")
	}
}

func TestNewMissingExplicitFile(t *testing.T) {
	t.Cleanup(func() { SetEnvFile("") })
	SetEnvFile(filepath.Join(t.TempDir(), "nope.env"))

	if _, err := New[sampleConfig]("CFGNOFILE"); err == nil {
		t.Fatal("expected error for missing env file")
	}
}
