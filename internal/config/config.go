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

// Paths contains directory configuration.
type Paths struct {
	WorkDir string `toml:"work_dir"`
	LogDir  string `toml:"log_dir"`
}

// LLM contains shared LLM connection settings used by subject extraction,
// reformulation, and repetition breaking.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Library contains configuration for the internal media library provider.
type Library struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Pexels contains configuration for the Pexels video/photo API.
type Pexels struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Pixabay contains configuration for the Pixabay video/photo API.
type Pixabay struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// Unsplash contains configuration for the Unsplash photo API.
type Unsplash struct {
	Enabled   bool   `toml:"enabled"`
	AccessKey string `toml:"access_key"`
	BaseURL   string `toml:"base_url"`
}

// Matcher contains tunables for the clip matching orchestrator.
type Matcher struct {
	MaxSubjects            int     `toml:"max_subjects"`
	MaxAttempts            int     `toml:"max_attempts"`
	SceneBudgetSeconds     int     `toml:"scene_budget_seconds"`
	ProviderTimeoutSeconds int     `toml:"provider_timeout_seconds"`
	VideoScoreFloor        float64 `toml:"video_score_floor"`
	ImageScoreFloor        float64 `toml:"image_score_floor"`
	RepeatWindow           int     `toml:"repeat_window"`
	AllowRawImage          bool    `toml:"allow_raw_image"`
	RelaxLandmarkFinal     bool    `toml:"relax_landmark_final"`
}

// Synth contains configuration for image-to-video synthesis.
type Synth struct {
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	ClipSeconds   int    `toml:"clip_seconds"`
	Width         int    `toml:"width"`
	Height        int    `toml:"height"`
	FPS           int    `toml:"fps"`
}

// Usage contains configuration for the persistent selection ledger.
type Usage struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the matching engine.
//
// Configuration sections by subsystem:
//   - Paths: working and log directories
//   - LLM: shared LLM connection settings
//   - Library: internal media library provider
//   - Pexels, Pixabay, Unsplash: stock search providers
//   - Matcher: orchestrator budgets, floors, and policy flags
//   - Synth: ffmpeg/ffprobe settings for Ken Burns synthesis
//   - Usage: persistent selection ledger
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	LLM      LLM      `toml:"llm"`
	Library  Library  `toml:"library"`
	Pexels   Pexels   `toml:"pexels"`
	Pixabay  Pixabay  `toml:"pixabay"`
	Unsplash Unsplash `toml:"unsplash"`
	Matcher  Matcher  `toml:"matcher"`
	Synth    Synth    `toml:"synth"`
	Usage    Usage    `toml:"usage"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/socialstorm/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded, env secrets applied, and defaults
// backfilled.
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
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func (c *Config) applyEnvOverrides() {
	if v := firstEnv("SOCIALSTORM_LLM_API_KEY", "OPENROUTER_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("PEXELS_API_KEY"); v != "" {
		c.Pexels.APIKey = v
	}
	if v := os.Getenv("PIXABAY_API_KEY"); v != "" {
		c.Pixabay.APIKey = v
	}
	if v := os.Getenv("UNSPLASH_ACCESS_KEY"); v != "" {
		c.Unsplash.AccessKey = v
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
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

	projectPath, err := filepath.Abs("socialstorm.toml")
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

// EnsureDirectories creates required directories for matcher operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Library.Enabled && strings.TrimSpace(c.Library.Dir) != "" {
		// Best-effort: the library may live on storage that is offline.
		_ = os.MkdirAll(c.Library.Dir, 0o755)
	}
	return nil
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves ~ and relative segments to an absolute path.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func expandPath(pathValue string) (string, error) {
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
