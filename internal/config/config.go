package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dgallion1/lunchbot/internal/fetch"
	"github.com/dgallion1/lunchbot/internal/menu"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port string

	// Auth for the HTTP API
	APIKey string

	// Menu source
	MenuURLTemplate string
	MenuContainerID string
	FetchTimeout    time.Duration

	// Slack
	SlackToken    string
	SlackBaseURL  string
	SlackUsername string
	SlackChannel  string

	// Pricing
	DiscountRate float64

	// Keyword triggers and the image service behind them
	Triggers     []Trigger
	GiphyAPIKey  string
	GiphyBaseURL string

	// Run history
	RunTTL time.Duration

	// Zone used to decide what "today" is
	Timezone string
}

// Trigger posts an image to Channel when Keyword appears in the report.
type Trigger struct {
	Keyword string `yaml:"keyword"`
	Query   string `yaml:"query"`   // Image search phrase; defaults to Keyword.
	Channel string `yaml:"channel"` // Defaults to TRIGGER_CHANNEL.
}

// fileConfig is the optional YAML overlay named by LUNCHBOT_CONFIG.
type fileConfig struct {
	SlackChannel string    `yaml:"slack_channel"`
	DiscountRate *float64  `yaml:"discount_rate"`
	Triggers     []Trigger `yaml:"triggers"`
}

// Load reads configuration from the environment, then applies the YAML
// file named by LUNCHBOT_CONFIG if set.
func Load() (Config, error) {
	triggerChannel := envOr("TRIGGER_CHANNEL", "#burrito")

	cfg := Config{
		Port: envOr("PORT", "8095"),

		APIKey: os.Getenv("LUNCHBOT_API_KEY"),

		MenuURLTemplate: envOr("MENU_URL_TEMPLATE", fetch.DefaultURLTemplate),
		MenuContainerID: envOr("MENU_CONTAINER_ID", "center_text"),
		FetchTimeout:    envDuration("FETCH_TIMEOUT", 30*time.Second),

		SlackToken:    os.Getenv("SLACK_API_TOKEN"),
		SlackBaseURL:  envOr("SLACK_BASE_URL", "https://slack.com/api"),
		SlackUsername: envOr("SLACK_USERNAME", "LunchBot"),
		SlackChannel:  envOr("SLACK_CHANNEL", "#lunch"),

		DiscountRate: envFloat("DISCOUNT_RATE", menu.DefaultRate),

		Triggers:     keywordTriggers(envOr("TRIGGER_KEYWORDS", "burrito"), triggerChannel),
		GiphyAPIKey:  os.Getenv("GIPHY_API_KEY"),
		GiphyBaseURL: envOr("GIPHY_BASE_URL", "https://api.giphy.com"),

		RunTTL: envDuration("RUN_TTL", 24*time.Hour),

		Timezone: envOr("LUNCHBOT_TZ", "Local"),
	}

	if path := os.Getenv("LUNCHBOT_CONFIG"); path != "" {
		if err := cfg.applyFile(path, triggerChannel); err != nil {
			return cfg, err
		}
	}

	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 30 * time.Second
	}
	if cfg.RunTTL <= 0 {
		cfg.RunTTL = 24 * time.Hour
	}

	return cfg, nil
}

func (c *Config) applyFile(path, defaultChannel string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.SlackChannel != "" {
		c.SlackChannel = fc.SlackChannel
	}
	if fc.DiscountRate != nil {
		c.DiscountRate = *fc.DiscountRate
	}
	if fc.Triggers != nil {
		c.Triggers = nil
		for _, t := range fc.Triggers {
			t.Keyword = strings.TrimSpace(t.Keyword)
			if t.Keyword == "" {
				continue
			}
			if t.Channel == "" {
				t.Channel = defaultChannel
			}
			c.Triggers = append(c.Triggers, t)
		}
	}
	return nil
}

func (c Config) Validate() error {
	if c.DiscountRate <= 0 || c.DiscountRate > 1 {
		return fmt.Errorf("DISCOUNT_RATE must be in (0, 1], got %v", c.DiscountRate)
	}
	if !strings.Contains(c.MenuURLTemplate, "{week}") || !strings.Contains(c.MenuURLTemplate, "{day}") {
		return fmt.Errorf("MENU_URL_TEMPLATE must contain {week} and {day}")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("LUNCHBOT_TZ: %w", err)
	}
	return nil
}

// ValidatePosting checks what is needed to post to Slack.
func (c Config) ValidatePosting() error {
	if c.SlackToken == "" {
		return fmt.Errorf("SLACK_API_TOKEN is required")
	}
	return nil
}

// ValidateServer checks what is needed to serve the HTTP API.
func (c Config) ValidateServer() error {
	if c.APIKey == "" {
		return fmt.Errorf("LUNCHBOT_API_KEY is required")
	}
	return nil
}

// Location resolves Timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// TriggersEnabled reports whether keyword triggers can run.
func (c Config) TriggersEnabled() bool {
	return c.GiphyAPIKey != "" && len(c.Triggers) > 0
}

func keywordTriggers(list, channel string) []Trigger {
	var out []Trigger
	for _, kw := range strings.Split(list, ",") {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		out = append(out, Trigger{Keyword: kw, Query: kw, Channel: channel})
	}
	return out
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
