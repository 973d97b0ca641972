package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	t.Parallel()
	got := ExpandPath("~/codeocean-mcp.db")
	if got == "~/codeocean-mcp.db" {
		t.Fatalf("expected home-expanded path, got %q", got)
	}
	if !strings.Contains(got, "codeocean-mcp.db") {
		t.Fatalf("expected expanded path to contain file name, got %q", got)
	}
}

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !cfg.CompactSearchResults {
		t.Fatal("compact search results should be on by default")
	}
	if cfg.MaxDescriptionLength != 200 || cfg.MaxTagsCount != 10 {
		t.Fatalf("unexpected compaction defaults %d/%d", cfg.MaxDescriptionLength, cfg.MaxTagsCount)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "domain: acme.codeocean.com\ncompact_search_results: false\nmax_tags_count: 3\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.CompactSearchResults || cfg.MaxTagsCount != 3 || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.MaxDescriptionLength != 200 {
		t.Fatalf("unset values should keep defaults, got %d", cfg.MaxDescriptionLength)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ServerName != "codeocean-mcp" {
		t.Fatalf("ServerName = %q", cfg.ServerName)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_polling_interval_seconds: 1\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()
	env := map[string]string{EnvDomain: " env.codeocean.com ", EnvToken: "cop_secret"}
	cfg := Default()
	cfg.Domain = "file.codeocean.com"
	cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if cfg.Domain != "env.codeocean.com" || cfg.Token != "cop_secret" {
		t.Fatalf("env not applied: %q / %q", cfg.Domain, cfg.Token)
	}

	cfg = Default()
	cfg.Domain = "file.codeocean.com"
	cfg.applyEnv(func(string) (string, bool) { return "  ", true })
	if cfg.Domain != "file.codeocean.com" {
		t.Fatalf("blank env should not override, got %q", cfg.Domain)
	}
}

func TestValidateCredentials(t *testing.T) {
	t.Parallel()
	cfg := Default()
	err := cfg.ValidateCredentials()
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("ValidateCredentials() error = %v, want ErrMissingCredentials", err)
	}
	if !strings.Contains(err.Error(), EnvDomain) || !strings.Contains(err.Error(), EnvToken) {
		t.Fatalf("error should name both variables: %v", err)
	}

	cfg.Domain = "acme.codeocean.com"
	err = cfg.ValidateCredentials()
	if err == nil || strings.Contains(err.Error(), EnvDomain) {
		t.Fatalf("ValidateCredentials() error = %v, want only token missing", err)
	}

	cfg.Token = "cop_x"
	if err := cfg.ValidateCredentials(); err != nil {
		t.Fatalf("ValidateCredentials() error = %v", err)
	}
}
