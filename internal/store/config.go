package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type MarketHoursConfig struct {
	Enforce  bool     `yaml:"enforce"`
	Timezone string   `yaml:"timezone"`
	Open     string   `yaml:"open"`
	Close    string   `yaml:"close"`
	Holidays []string `yaml:"holidays"` // MM-DD, year-independent
}

type Config struct {
	StartingBalance float64 `yaml:"starting_balance"`

	Quotes struct {
		Source    string             `yaml:"source"` // STATIC or LIVE
		BaseURL   string             `yaml:"base_url"`
		APIKeyEnv string             `yaml:"api_key_env"`
		Static    map[string]float64 `yaml:"static"`
	} `yaml:"quotes"`

	MarketHours MarketHoursConfig `yaml:"market_hours"`

	Scheduler struct {
		PollSeconds int `yaml:"poll_seconds"`
	} `yaml:"scheduler"`

	History struct {
		DefaultLimit int `yaml:"default_limit"`
	} `yaml:"history"`
}

func (c *Config) Validate() error {
	if c.Quotes.Source != "STATIC" && c.Quotes.Source != "LIVE" {
		return fmt.Errorf("invalid quotes.source '%s': must be 'STATIC' or 'LIVE'", c.Quotes.Source)
	}
	if c.Quotes.Source == "LIVE" && c.Quotes.BaseURL == "" {
		return errors.New("quotes.base_url is required when quotes.source is 'LIVE'")
	}
	if c.StartingBalance <= 0 {
		return fmt.Errorf("starting_balance must be positive, got %.2f", c.StartingBalance)
	}
	if c.Scheduler.PollSeconds <= 0 {
		return fmt.Errorf("scheduler.poll_seconds must be positive, got %d", c.Scheduler.PollSeconds)
	}
	if c.MarketHours.Open == "" || c.MarketHours.Close == "" {
		return errors.New("market_hours.open and market_hours.close are required")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.StartingBalance == 0 {
		c.StartingBalance = 10000
	}
	if c.Quotes.Source == "" {
		c.Quotes.Source = "STATIC"
	}
	if c.Scheduler.PollSeconds == 0 {
		c.Scheduler.PollSeconds = 60
	}
	if c.History.DefaultLimit == 0 {
		c.History.DefaultLimit = 50
	}
	if c.MarketHours.Timezone == "" {
		c.MarketHours.Timezone = "America/New_York"
	}
	if c.MarketHours.Open == "" {
		c.MarketHours.Open = "09:30"
	}
	if c.MarketHours.Close == "" {
		c.MarketHours.Close = "16:00"
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
