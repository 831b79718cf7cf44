package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var configEnvVars = []string{
	"SUBTEXT_CORPUS", "SUBTEXT_LIMIT", "SUBTEXT_LANG",
	"SUBTEXT_SIZE_EXPONENT", "SUBTEXT_PREFIX_SUFFIX",
	"SUBTEXT_MIN_POS", "SUBTEXT_MAX_POS", "SUBTEXT_NEGATIVE_CAP",
	"SUBTEXT_WORKERS", "SUBTEXT_PRECISION", "SUBTEXT_STAGING_DIR",
	"SUBTEXT_SEED", "SUBTEXT_OUTPUT_DIR", "SUBTEXT_REMOTE_URL",
	"SUBTEXT_CACHE_DIR", "SUBTEXT_LOG_LEVEL", "SUBTEXT_LOG_JSON",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvVars {
		os.Unsetenv(key)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Vocabulary.Lang != "es" {
		t.Errorf("Lang = %q, want es", cfg.Vocabulary.Lang)
	}
	if cfg.Vocabulary.SizeExponent != 13 {
		t.Errorf("SizeExponent = %d, want 13", cfg.Vocabulary.SizeExponent)
	}
	if cfg.Training.MinPos != 512 {
		t.Errorf("MinPos = %d, want 512", cfg.Training.MinPos)
	}
	if cfg.Training.MaxPos != 8192 {
		t.Errorf("MaxPos = %d, want 8192", cfg.Training.MaxPos)
	}
	if cfg.Training.NegativeCap != 1024 {
		t.Errorf("NegativeCap = %d, want 1024", cfg.Training.NegativeCap)
	}
	if cfg.Training.Workers < 1 {
		t.Errorf("Workers = %d, want >= 1", cfg.Training.Workers)
	}
	if cfg.Training.Precision != "float32" {
		t.Errorf("Precision = %q, want float32", cfg.Training.Precision)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUBTEXT_LANG", "en")
	t.Setenv("SUBTEXT_SIZE_EXPONENT", "10")
	t.Setenv("SUBTEXT_PREFIX_SUFFIX", "true")
	t.Setenv("SUBTEXT_MIN_POS", "32")
	t.Setenv("SUBTEXT_REMOTE_URL", "http://localhost:9999/models")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Vocabulary.Lang != "en" {
		t.Errorf("Lang = %q, want en", cfg.Vocabulary.Lang)
	}
	if cfg.Vocabulary.SizeExponent != 10 {
		t.Errorf("SizeExponent = %d, want 10", cfg.Vocabulary.SizeExponent)
	}
	if !cfg.Vocabulary.PrefixSuffix {
		t.Error("PrefixSuffix = false, want true")
	}
	if cfg.Training.MinPos != 32 {
		t.Errorf("MinPos = %d, want 32", cfg.Training.MinPos)
	}
	if cfg.Remote.BaseURL != "http://localhost:9999/models" {
		t.Errorf("Remote.BaseURL = %q", cfg.Remote.BaseURL)
	}
}

func TestLoadBadEnvFallsBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUBTEXT_SIZE_EXPONENT", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Vocabulary.SizeExponent != 13 {
		t.Errorf("SizeExponent = %d, want default 13", cfg.Vocabulary.SizeExponent)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "subtext.yaml")
	body := strings.Join([]string{
		"vocabulary:",
		"  lang: ar",
		"  size_exponent: 11",
		"training:",
		"  min_pos: 64",
		"  precision: float16",
		"log_level: debug",
	}, "\n")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Vocabulary.Lang != "ar" {
		t.Errorf("Lang = %q, want ar", cfg.Vocabulary.Lang)
	}
	if cfg.Vocabulary.SizeExponent != 11 {
		t.Errorf("SizeExponent = %d, want 11", cfg.Vocabulary.SizeExponent)
	}
	if cfg.Training.MinPos != 64 {
		t.Errorf("MinPos = %d, want 64", cfg.Training.MinPos)
	}
	if cfg.Training.Precision != "float16" {
		t.Errorf("Precision = %q, want float16", cfg.Training.Precision)
	}
	// Untouched values keep their defaults.
	if cfg.Training.NegativeCap != 1024 {
		t.Errorf("NegativeCap = %d, want 1024", cfg.Training.NegativeCap)
	}
}

func TestEnvWinsOverYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "subtext.yaml")
	if err := os.WriteFile(path, []byte("vocabulary:\n  lang: ar\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SUBTEXT_LANG", "pt")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Vocabulary.Lang != "pt" {
		t.Errorf("Lang = %q, want pt", cfg.Vocabulary.Lang)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SUBTEXT_SIZE_EXPONENT", "40")
	if _, err := Load(""); err == nil {
		t.Error("Load accepted size_exponent 40")
	}

	clearEnv(t)
	t.Setenv("SUBTEXT_MIN_POS", "0")
	if _, err := Load(""); err == nil {
		t.Error("Load accepted min_pos 0")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	cfg := Default()
	cfg.Vocabulary.Lang = "en"
	cfg.Corpus.Path = "corpus.json.gz"

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if back.Vocabulary.Lang != "en" || back.Corpus.Path != "corpus.json.gz" {
		t.Errorf("round trip changed values: %+v", back)
	}
}
