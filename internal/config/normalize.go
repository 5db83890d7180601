package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeProviders()
	c.normalizeMatcher()
	c.normalizeSynth()
	if err := c.normalizeUsage(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Library.Enabled {
		if strings.TrimSpace(c.Library.Dir) == "" {
			c.Library.Dir = defaultLibraryDir
		}
		if c.Library.Dir, err = expandPath(c.Library.Dir); err != nil {
			return fmt.Errorf("library.dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
}

func (c *Config) normalizeProviders() {
	c.Pexels.APIKey = strings.TrimSpace(c.Pexels.APIKey)
	c.Pixabay.APIKey = strings.TrimSpace(c.Pixabay.APIKey)
	c.Unsplash.AccessKey = strings.TrimSpace(c.Unsplash.AccessKey)
	if strings.TrimSpace(c.Pexels.BaseURL) == "" {
		c.Pexels.BaseURL = defaultPexelsBaseURL
	}
	if strings.TrimSpace(c.Pixabay.BaseURL) == "" {
		c.Pixabay.BaseURL = defaultPixabayBaseURL
	}
	if strings.TrimSpace(c.Unsplash.BaseURL) == "" {
		c.Unsplash.BaseURL = defaultUnsplashBaseURL
	}
	c.Pexels.BaseURL = strings.TrimRight(c.Pexels.BaseURL, "/")
	c.Pixabay.BaseURL = strings.TrimRight(c.Pixabay.BaseURL, "/")
	c.Unsplash.BaseURL = strings.TrimRight(c.Unsplash.BaseURL, "/")
}

func (c *Config) normalizeMatcher() {
	if c.Matcher.MaxSubjects <= 0 {
		c.Matcher.MaxSubjects = defaultMaxSubjects
	}
	if c.Matcher.MaxAttempts <= 0 {
		c.Matcher.MaxAttempts = defaultMaxAttempts
	}
	if c.Matcher.SceneBudgetSeconds <= 0 {
		c.Matcher.SceneBudgetSeconds = defaultSceneBudgetSeconds
	}
	if c.Matcher.ProviderTimeoutSeconds <= 0 {
		c.Matcher.ProviderTimeoutSeconds = defaultProviderTimeoutSeconds
	}
	if c.Matcher.RepeatWindow <= 0 {
		c.Matcher.RepeatWindow = defaultRepeatWindow
	}
}

func (c *Config) normalizeSynth() {
	if strings.TrimSpace(c.Synth.FFmpegBinary) == "" {
		c.Synth.FFmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(c.Synth.FFprobeBinary) == "" {
		c.Synth.FFprobeBinary = "ffprobe"
	}
	if c.Synth.ClipSeconds <= 0 {
		c.Synth.ClipSeconds = defaultSynthClipSeconds
	}
	if c.Synth.Width <= 0 {
		c.Synth.Width = defaultSynthWidth
	}
	if c.Synth.Height <= 0 {
		c.Synth.Height = defaultSynthHeight
	}
	if c.Synth.FPS <= 0 {
		c.Synth.FPS = defaultSynthFPS
	}
}

func (c *Config) normalizeUsage() error {
	if !c.Usage.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Usage.DBPath) == "" {
		c.Usage.DBPath = defaultUsageDBPath
	}
	var err error
	if c.Usage.DBPath, err = expandPath(c.Usage.DBPath); err != nil {
		return fmt.Errorf("usage.db_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
