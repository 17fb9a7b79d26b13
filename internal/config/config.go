package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HomeEnv overrides the base directory (default ~/.tally).
const HomeEnv = "TALLY_HOME"

// Config holds application configuration.
type Config struct {
	// HistoryLimit caps the committed-calculation log (newest kept).
	HistoryLimit int `json:"history_limit"`

	// PurchaseLimit caps the purchases ledger (newest kept).
	PurchaseLimit int `json:"purchase_limit"`

	// UndoDepth is the number of keystroke snapshots each session can undo.
	UndoDepth int `json:"undo_depth"`

	// AllowedPaths is an allowlist of directories for history export.
	// Paths outside <base>/exports require either being in this list or AllowUnsafePaths=true.
	// Paths should be absolute (relative paths are ignored).
	AllowedPaths []string `json:"allowed_paths,omitempty"`

	// AllowUnsafePaths disables directory restrictions for export.
	// Symlink and extension checks still apply.
	AllowUnsafePaths bool `json:"allow_unsafe_paths,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of tool groups to disable entirely.
	// Known types: "calc", "history", "pos", "settings".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// WebBind and WebPort are the listen address for `tally serve`.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		HistoryLimit:  50,
		PurchaseLimit: 50,
		UndoDepth:     50,
		WebBind:       "127.0.0.1",
		WebPort:       7380,
		LogLevel:      "info",
	}
}

// BaseDir returns $TALLY_HOME when set, else ~/.tally.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".tally"), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
func Load(baseDir string) (*Config, error) {
	return loadFile(filepath.Join(baseDir, "config.json"))
}

// LoadWithRepo loads the global config from globalDir and the nearest
// .tally/config.json at or above startDir. Repo values win for scalars;
// arrays are merged (deduplicated). Either or both may be missing.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return Merge(Merge(DefaultConfig(), global), repo), nil
}

// FindRepoConfig walks upward from startDir to find the nearest .tally/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".tally", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadFileRaw returns a zero-valued config (not defaults) if the file doesn't exist.
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}
	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	return &Config{
		HistoryLimit:     firstPositive(overlay.HistoryLimit, base.HistoryLimit),
		PurchaseLimit:    firstPositive(overlay.PurchaseLimit, base.PurchaseLimit),
		UndoDepth:        firstPositive(overlay.UndoDepth, base.UndoDepth),
		DBMaxOpenConns:   firstPositive(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:   firstPositive(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		WebPort:          firstPositive(overlay.WebPort, base.WebPort),
		WebBind:          firstNonEmpty(overlay.WebBind, base.WebBind),
		LogLevel:         firstNonEmpty(overlay.LogLevel, base.LogLevel),
		AllowUnsafePaths: base.AllowUnsafePaths || overlay.AllowUnsafePaths,
		AllowedPaths:     mergeStringSlice(base.AllowedPaths, overlay.AllowedPaths),
		DisabledTools:    mergeStringSlice(base.DisabledTools, overlay.DisabledTools),
		DisabledTypes:    mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes),
	}
}

// WebAddr returns the host:port the web server listens on.
func (c *Config) WebAddr() string {
	return fmt.Sprintf("%s:%d", c.WebBind, c.WebPort)
}

func firstPositive(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}

func firstNonEmpty(a, b string) string {
	if s := strings.TrimSpace(a); s != "" {
		return s
	}
	return b
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
