package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backissue.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CoverStem != "cover" {
		t.Errorf("CoverStem = %q, want %q", cfg.CoverStem, "cover")
	}
	if !cfg.GenerateHTML {
		t.Error("GenerateHTML should default to true")
	}
	if len(cfg.ParserOrder) != 2 || cfg.ParserOrder[0] != "aplusplus" {
		t.Errorf("ParserOrder = %v", cfg.ParserOrder)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, "cover_stem: front\ngenerate_html: false\nparser_order: [jats]\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CoverStem != "front" {
		t.Errorf("CoverStem = %q, want %q", cfg.CoverStem, "front")
	}
	if cfg.GenerateHTML {
		t.Error("GenerateHTML should be false")
	}
	if len(cfg.ParserOrder) != 1 || cfg.ParserOrder[0] != "jats" {
		t.Errorf("ParserOrder = %v", cfg.ParserOrder)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "cover_stem: titelbild\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.GenerateHTML {
		t.Error("GenerateHTML should stay true when not set")
	}
	if len(cfg.ParserOrder) != 2 {
		t.Errorf("ParserOrder = %v", cfg.ParserOrder)
	}
}

func TestLoadUnknownParser(t *testing.T) {
	path := writeConfig(t, "parser_order: [jats, bibtex]\n")

	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown parser name")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}
