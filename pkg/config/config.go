// Package config holds the runtime configuration for the file agent. A Config
// is constructed once at process start (defaults, then config file, then
// environment, then flags) and passed explicitly into each operation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults for the local Ollama endpoint. The OpenAI-compatible API under /v1
// ignores the key but the client refuses an empty one.
const (
	DefaultBaseURL  = "http://localhost:11434/v1"
	DefaultAPIKey   = "ollama"
	DefaultModel    = "llama3.2:3b"
	DefaultMaxTurns = 8
)

// Config holds all runtime configuration for the agent.
type Config struct {
	Model    string
	BaseURL  string
	APIKey   string
	MaxTurns int
	Verbose  bool

	GitHubToken string

	// SearchRoots are the directories walked by fuzzy search.
	SearchRoots []string

	// IgnorePatterns are extra names/globs excluded from GitHub pushes, on top
	// of the built-in set.
	IgnorePatterns []string
}

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	Model       string   `yaml:"model"`
	BaseURL     string   `yaml:"base_url"`
	MaxTurns    int      `yaml:"max_turns"`
	SearchRoots []string `yaml:"search_roots"`
	Ignore      []string `yaml:"ignore"`
}

// Default returns a baseline configuration without reading the environment.
func Default() Config {
	return Config{
		Model:    DefaultModel,
		BaseURL:  DefaultBaseURL,
		APIKey:   DefaultAPIKey,
		MaxTurns: DefaultMaxTurns,
	}
}

// DefaultConfigPath returns the path of the optional per-user config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".fileagent.yaml")
}

// LoadFile overlays values from a YAML config file onto cfg. A missing file is
// not an error; a malformed one is.
func LoadFile(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	if strings.TrimSpace(fc.Model) != "" {
		cfg.Model = fc.Model
	}
	if strings.TrimSpace(fc.BaseURL) != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.MaxTurns > 0 {
		cfg.MaxTurns = fc.MaxTurns
	}
	if len(fc.SearchRoots) > 0 {
		cfg.SearchRoots = fc.SearchRoots
	}
	cfg.IgnorePatterns = append(cfg.IgnorePatterns, fc.Ignore...)
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); v != "" {
		cfg.Model = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("OPENAI_API_KEY")); v != "" {
		cfg.APIKey = v
	}
	cfg.GitHubToken = strings.TrimSpace(os.Getenv("GITHUB_TOKEN"))
	if v := strings.TrimSpace(os.Getenv("SEARCH_ROOTS")); v != "" {
		cfg.SearchRoots = splitRoots(v)
	}
}

// splitRoots parses the semicolon-delimited SEARCH_ROOTS value.
func splitRoots(v string) []string {
	parts := strings.Split(v, ";")
	roots := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}
		roots = append(roots, p)
	}
	return roots
}

// Normalize sanitizes configuration values and applies fallback defaults.
func Normalize(cfg Config) Config {
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultAPIKey
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 1
	}
	if len(cfg.SearchRoots) == 0 {
		cfg.SearchRoots = DefaultSearchRoots()
	} else {
		cfg.SearchRoots = dedupExisting(cfg.SearchRoots)
	}
	return cfg
}

// DefaultSearchRoots returns the user's Desktop, Documents, and Downloads
// directories (those that exist) plus the current working directory.
func DefaultSearchRoots() []string {
	var roots []string
	if home, err := os.UserHomeDir(); err == nil {
		for _, sub := range []string{"Desktop", "Documents", "Downloads"} {
			p := filepath.Join(home, sub)
			if info, err := os.Stat(p); err == nil && info.IsDir() {
				roots = append(roots, p)
			}
		}
	}
	if wd, err := os.Getwd(); err == nil {
		roots = append(roots, wd)
	}
	return dedupExisting(roots)
}

// dedupExisting drops duplicates and paths that do not exist, preserving order.
func dedupExisting(roots []string) []string {
	seen := make(map[string]struct{}, len(roots))
	out := make([]string, 0, len(roots))
	for _, r := range roots {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if abs, err := filepath.Abs(r); err == nil {
			r = abs
		}
		if _, ok := seen[r]; ok {
			continue
		}
		if _, err := os.Stat(r); err != nil {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
