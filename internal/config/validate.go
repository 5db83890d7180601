package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Missing credentials for
// mandatory collaborators fail here, at load time, rather than surfacing as
// silent per-scene misses later.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateMatcher(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/socialstorm/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set SOCIALSTORM_LLM_API_KEY env var or edit %s (create with 'socialstorm config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateProviders() error {
	if c.Pexels.Enabled && c.Pexels.APIKey == "" {
		return errors.New("pexels.api_key is required when pexels is enabled (or set PEXELS_API_KEY)")
	}
	if c.Pixabay.Enabled && c.Pixabay.APIKey == "" {
		return errors.New("pixabay.api_key is required when pixabay is enabled (or set PIXABAY_API_KEY)")
	}
	if c.Unsplash.Enabled && c.Unsplash.AccessKey == "" {
		return errors.New("unsplash.access_key is required when unsplash is enabled (or set UNSPLASH_ACCESS_KEY)")
	}
	if !c.Library.Enabled && !c.Pexels.Enabled && !c.Pixabay.Enabled && !c.Unsplash.Enabled {
		return errors.New("at least one candidate provider must be enabled")
	}
	return nil
}

func (c *Config) validateMatcher() error {
	if c.Matcher.ImageScoreFloor < c.Matcher.VideoScoreFloor {
		return errors.New("matcher.image_score_floor must be at least matcher.video_score_floor")
	}
	if c.Matcher.SceneBudgetSeconds < c.Matcher.ProviderTimeoutSeconds {
		return errors.New("matcher.scene_budget_seconds must be at least matcher.provider_timeout_seconds")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
		return nil
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
}
