package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Transcribe selects the recognition provider.
type Transcribe struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	Language string `toml:"language"`
}

// Translate selects the cue translation provider.
type Translate struct {
	Provider    string `toml:"provider"`
	Model       string `toml:"model"`
	APIKey      string `toml:"api_key"`
	BatchSize   int    `toml:"batch_size"`
	Concurrency int    `toml:"concurrency"`
}

// Subtitle controls output rendering.
type Subtitle struct {
	Format  string `toml:"format"`
	Charset string `toml:"charset"`
}

// Cache controls the transcript cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config encapsulates all configuration values for wordcue.
type Config struct {
	Transcribe Transcribe `toml:"transcribe"`
	Translate  Translate  `toml:"translate"`
	Subtitle   Subtitle   `toml:"subtitle"`
	Cache      Cache      `toml:"cache"`
	Logging    Logging    `toml:"logging"`
}

// provider name → environment variable holding its key
var apiKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Transcribe: Transcribe{
			Provider: "openai",
		},
		Translate: Translate{
			Provider:    "gemini",
			BatchSize:   50,
			Concurrency: 3,
		},
		Subtitle: Subtitle{
			Format:  "srt",
			Charset: "utf-8",
		},
		Cache: Cache{
			Enabled: true,
			Path:    defaultCachePath(),
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/wordcue/config.toml")
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the path that was resolved, and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("wordcue.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	c.Transcribe.Provider = strings.ToLower(strings.TrimSpace(c.Transcribe.Provider))
	c.Transcribe.Model = strings.TrimSpace(c.Transcribe.Model)
	c.Transcribe.Language = strings.TrimSpace(c.Transcribe.Language)
	c.Translate.Provider = strings.ToLower(strings.TrimSpace(c.Translate.Provider))
	c.Translate.Model = strings.TrimSpace(c.Translate.Model)
	c.Subtitle.Format = strings.ToLower(strings.TrimSpace(c.Subtitle.Format))
	c.Subtitle.Charset = strings.TrimSpace(c.Subtitle.Charset)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))

	if strings.TrimSpace(c.Transcribe.APIKey) == "" {
		c.Transcribe.APIKey = os.Getenv(apiKeyEnv[c.Transcribe.Provider])
	}
	if strings.TrimSpace(c.Translate.APIKey) == "" {
		c.Translate.APIKey = os.Getenv(apiKeyEnv[c.Translate.Provider])
	}

	if c.Cache.Path != "" {
		expanded, err := ExpandPath(c.Cache.Path)
		if err != nil {
			return fmt.Errorf("cache path: %w", err)
		}
		c.Cache.Path = expanded
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Transcribe.Provider {
	case "openai", "gemini", "file":
	default:
		return fmt.Errorf("transcribe.provider %q: use openai, gemini, or file", c.Transcribe.Provider)
	}
	switch c.Translate.Provider {
	case "openai", "gemini", "anthropic":
	default:
		return fmt.Errorf("translate.provider %q: use gemini, openai, or anthropic", c.Translate.Provider)
	}
	if c.Translate.BatchSize <= 0 {
		return fmt.Errorf("translate.batch_size must be positive, got %d", c.Translate.BatchSize)
	}
	if c.Translate.Concurrency <= 0 {
		return fmt.Errorf("translate.concurrency must be positive, got %d", c.Translate.Concurrency)
	}
	switch c.Subtitle.Format {
	case "srt", "vtt", "ass":
	default:
		return fmt.Errorf("subtitle.format %q: use srt, vtt, or ass", c.Subtitle.Format)
	}
	if c.Cache.Enabled && c.Cache.Path == "" {
		return errors.New("cache.path is required when the cache is enabled")
	}
	return nil
}

// APIKeyEnv names the environment variable consulted for a provider's key.
func APIKeyEnv(provider string) string {
	if env, ok := apiKeyEnv[provider]; ok {
		return env
	}
	return "API_KEY"
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

func defaultCachePath() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "wordcue", "transcripts.db")
	}
	return "~/.cache/wordcue/transcripts.db"
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
