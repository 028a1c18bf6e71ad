// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrMissingCredential is returned when neither an API key nor a parameter holding one is configured.
var ErrMissingCredential = errors.New("no API key configured: set API_KEY or API_KEY_PARAM")

const (
	HandlerPortraits = "portraits"
	HandlerStory     = "story"
	HandlerFeed      = "feed"

	GeneratorGemini = "gemini"
	GeneratorDezgo  = "dezgo"
)

type Config struct {
	LogLevel string `mapstructure:"log_level"`
	Handler  string `mapstructure:"handler"`

	Generator   string        `mapstructure:"generator"`
	ImageModel  string        `mapstructure:"image_model"`
	StoryModel  string        `mapstructure:"story_model"`
	Concurrency int           `mapstructure:"concurrency"`  // zero means one worker per task
	TaskTimeout time.Duration `mapstructure:"task_timeout"` // zero means no per-task deadline

	APIKey      string `mapstructure:"api_key"`
	APIKeyParam string `mapstructure:"api_key_param"`
	TasksParam  string `mapstructure:"tasks_param"`

	Bucket       string `mapstructure:"bucket"`
	Distribution string `mapstructure:"distribution"`
	SiteURL      string `mapstructure:"site_url"`
}

var defaults = map[string]any{
	"log_level":     "info",
	"handler":       HandlerPortraits,
	"generator":     GeneratorGemini,
	"image_model":   "gemini-2.5-flash-image-preview",
	"story_model":   "gemini-2.5-flash",
	"concurrency":   0,
	"task_timeout":  time.Duration(0),
	"api_key":       "",
	"api_key_param": "",
	"tasks_param":   "",
	"bucket":        "",
	"distribution":  "",
	"site_url":      "",
}

// Load reads every setting from the upper-cased environment variable of the same name.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if !lo.Contains([]string{HandlerPortraits, HandlerStory, HandlerFeed}, c.Handler) {
		return fmt.Errorf("unknown handler %q", c.Handler)
	}
	if !lo.Contains([]string{GeneratorGemini, GeneratorDezgo}, c.Generator) {
		return fmt.Errorf("unknown generator %q", c.Generator)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	if c.TaskTimeout < 0 {
		return fmt.Errorf("task timeout must not be negative, got %s", c.TaskTimeout)
	}
	return nil
}

// RequireCredential fails fast, before any generation is attempted, when no key source exists.
func (c *Config) RequireCredential() error {
	if c.APIKey == "" && c.APIKeyParam == "" {
		return ErrMissingCredential
	}
	return nil
}
