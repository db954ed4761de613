package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/ini.v1"
)

// Config holds all application configuration
type Config struct {
	// Backend
	APIBase        string
	RequestTimeout int // seconds

	// Classification catalogue
	CatalogFile  string
	WatchCatalog bool

	// Console
	HTTPListen        string
	RefreshInterval   int // seconds
	TimeZone          string
	NotificationLimit int
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		APIBase:           "http://127.0.0.1/cgi-bin/enhanced-dhcp-api",
		RequestTimeout:    10,
		CatalogFile:       "/www/enhanced-dhcp/device-types.json",
		WatchCatalog:      true,
		HTTPListen:        "127.0.0.1:8068",
		RefreshInterval:   30,
		TimeZone:          "Local",
		NotificationLimit: 100,
	}
}

// LoadFromFile loads configuration from INI file
func (c *Config) LoadFromFile(filename string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		log.Printf("Skipping config file %s: %s", filename, err)
		return err
	}

	section := cfg.Section("")
	c.APIBase = section.Key("apibase").MustString(c.APIBase)
	c.RequestTimeout = section.Key("requesttimeout").MustInt(c.RequestTimeout)
	c.CatalogFile = section.Key("catalogfile").MustString(c.CatalogFile)
	c.WatchCatalog = section.Key("watchcatalog").MustBool(c.WatchCatalog)
	c.HTTPListen = section.Key("httplisten").MustString(c.HTTPListen)
	c.RefreshInterval = section.Key("refreshinterval").MustInt(c.RefreshInterval)
	c.TimeZone = section.Key("timezone").MustString(c.TimeZone)
	c.NotificationLimit = section.Key("notificationlimit").MustInt(c.NotificationLimit)

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("APIBASE"); v != "" {
		c.APIBase = v
	}
	if v := os.Getenv("REQUESTTIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RequestTimeout = n
		}
	}
	if v := os.Getenv("CATALOGFILE"); v != "" {
		c.CatalogFile = v
	}
	if v := os.Getenv("WATCHCATALOG"); v != "" {
		c.WatchCatalog, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("HTTPLISTEN"); v != "" {
		c.HTTPListen = v
	}
	if v := os.Getenv("REFRESHINTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RefreshInterval = n
		}
	}
	if v := os.Getenv("TIMEZONE"); v != "" {
		c.TimeZone = v
	}
	if v := os.Getenv("NOTIFICATIONLIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NotificationLimit = n
		}
	}
}

// Validate checks values that would break the console at runtime
func (c *Config) Validate() error {
	if c.APIBase == "" {
		return fmt.Errorf("apibase is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("requesttimeout must be positive, got %d", c.RequestTimeout)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("refreshinterval must be positive, got %d", c.RefreshInterval)
	}
	if c.NotificationLimit <= 0 {
		return fmt.Errorf("notificationlimit must be positive, got %d", c.NotificationLimit)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured time zone for lease times
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || c.TimeZone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Timeout returns the backend request timeout
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Interval returns the background refresh period
func (c *Config) Interval() time.Duration {
	return time.Duration(c.RefreshInterval) * time.Second
}

// New creates a new configuration instance
func New(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	// Load from file first
	cfg.LoadFromFile(configFile)

	// Override with environment variables
	cfg.LoadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
