package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestLoad_DefaultWhenMissing(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := DefaultConfig()
	if cfg.HistoryLimit != def.HistoryLimit || cfg.UndoDepth != def.UndoDepth || cfg.PurchaseLimit != def.PurchaseLimit {
		t.Fatalf("limits = %d/%d/%d, want defaults", cfg.HistoryLimit, cfg.UndoDepth, cfg.PurchaseLimit)
	}
	if cfg.WebAddr() != "127.0.0.1:7380" {
		t.Errorf("WebAddr() = %q, want %q", cfg.WebAddr(), "127.0.0.1:7380")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_OverridesFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"history_limit": 10, "web_port": 9000, "log_level": "debug"}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", cfg.HistoryLimit)
	}
	if cfg.WebPort != 9000 {
		t.Errorf("WebPort = %d, want 9000", cfg.WebPort)
	}
	if cfg.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want default", cfg.WebBind)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.UndoDepth != 50 {
		t.Errorf("UndoDepth = %d, want 50 (default)", cfg.UndoDepth)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{not json}`)

	if _, err := Load(tmpDir); err == nil {
		t.Fatalf("Load() expected error, got nil")
	}
}

func TestLoad_DisabledTools(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `{"disabled_tools": ["history_clear", "settings_update"]}`)

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Fatalf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
	if cfg.DisabledTools[0] != "history_clear" || cfg.DisabledTools[1] != "settings_update" {
		t.Errorf("DisabledTools = %v", cfg.DisabledTools)
	}
}

func TestBaseDir(t *testing.T) {
	t.Setenv(HomeEnv, "/srv/tally")
	dir, err := BaseDir()
	if err != nil {
		t.Fatalf("BaseDir() error = %v", err)
	}
	if dir != "/srv/tally" {
		t.Errorf("BaseDir() = %q, want %q", dir, "/srv/tally")
	}

	t.Setenv(HomeEnv, "")
	t.Setenv("HOME", "/home/cashier")
	dir, err = BaseDir()
	if err != nil {
		t.Fatalf("BaseDir() error = %v", err)
	}
	if dir != filepath.Join("/home/cashier", ".tally") {
		t.Errorf("BaseDir() = %q, want ~/.tally", dir)
	}
}

func TestLoadWithRepo_BothPresent(t *testing.T) {
	globalDir := t.TempDir()
	repoRoot := t.TempDir()

	writeConfig(t, globalDir, `{"history_limit": 40, "disabled_tools": ["history_clear"]}`)
	writeConfig(t, filepath.Join(repoRoot, ".tally"), `{"history_limit": 20, "disabled_tools": ["settings_update"]}`)

	cfg, err := LoadWithRepo(globalDir, repoRoot)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.HistoryLimit != 20 {
		t.Errorf("HistoryLimit = %d, want 20 (repo override)", cfg.HistoryLimit)
	}
	if len(cfg.DisabledTools) != 2 {
		t.Errorf("DisabledTools length = %d, want 2", len(cfg.DisabledTools))
	}
}

func TestLoadWithRepo_NeitherPresent(t *testing.T) {
	cfg, err := LoadWithRepo(t.TempDir(), t.TempDir())
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("HistoryLimit = %d, want 50", cfg.HistoryLimit)
	}
	if len(cfg.DisabledTools) != 0 {
		t.Errorf("DisabledTools = %v, want empty", cfg.DisabledTools)
	}
}

func TestLoadWithRepo_WalksUpward(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, filepath.Join(tmpDir, ".tally"), `{"disabled_types": ["settings"]}`)

	subdir := filepath.Join(tmpDir, "subdir", "deeper")
	if err := os.MkdirAll(subdir, 0755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}

	cfg, err := LoadWithRepo(t.TempDir(), subdir)
	if err != nil {
		t.Fatalf("LoadWithRepo() error = %v", err)
	}
	if len(cfg.DisabledTypes) != 1 || cfg.DisabledTypes[0] != "settings" {
		t.Errorf("DisabledTypes = %v, want [settings]", cfg.DisabledTypes)
	}
}

func TestFindRepoConfig(t *testing.T) {
	tmpDir := t.TempDir()
	if found := FindRepoConfig(tmpDir); found != "" {
		t.Errorf("FindRepoConfig() = %q, want empty string", found)
	}

	writeConfig(t, filepath.Join(tmpDir, ".tally"), `{}`)
	want := filepath.Join(tmpDir, ".tally", "config.json")
	if found := FindRepoConfig(tmpDir); found != want {
		t.Errorf("FindRepoConfig() = %q, want %q", found, want)
	}
}

func TestMerge_ScalarOverride(t *testing.T) {
	base := &Config{HistoryLimit: 50, DBMaxOpenConns: 5, WebBind: "127.0.0.1"}
	overlay := &Config{HistoryLimit: 25, WebBind: "  "}

	result := Merge(base, overlay)

	if result.HistoryLimit != 25 {
		t.Errorf("HistoryLimit = %d, want 25 (overlay)", result.HistoryLimit)
	}
	if result.DBMaxOpenConns != 5 {
		t.Errorf("DBMaxOpenConns = %d, want 5 (base, overlay is zero)", result.DBMaxOpenConns)
	}
	if result.WebBind != "127.0.0.1" {
		t.Errorf("WebBind = %q, want base (overlay is blank)", result.WebBind)
	}
}

func TestMerge_BooleanOr(t *testing.T) {
	result := Merge(&Config{AllowUnsafePaths: true}, &Config{})
	if !result.AllowUnsafePaths {
		t.Error("AllowUnsafePaths should be true (base OR overlay)")
	}
}

func TestMerge_ArrayMergeDedup(t *testing.T) {
	base := &Config{DisabledTools: []string{"calc_undo", " history_clear "}}
	overlay := &Config{DisabledTools: []string{"history_clear", "pos_stats", ""}}

	result := Merge(base, overlay)

	want := []string{"calc_undo", "history_clear", "pos_stats"}
	if len(result.DisabledTools) != len(want) {
		t.Fatalf("DisabledTools = %v, want %v", result.DisabledTools, want)
	}
	for i := range want {
		if result.DisabledTools[i] != want[i] {
			t.Errorf("DisabledTools[%d] = %q, want %q", i, result.DisabledTools[i], want[i])
		}
	}
}
