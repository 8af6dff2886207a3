// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvVar names the environment variable Load reads the config path from.
const EnvVar = "EVENTCHAT_CONFIG"

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local runs against test apps.
	Development Environment = "development"
	// Staging is for dry runs against a staging Communi app.
	Staging Environment = "staging"
	// Production is for the scheduled sync.
	Production Environment = "production"
)

// Config is the configuration of eventchat.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Communi configures the chat app.
	Communi CommuniConfig `yaml:"communi"`

	// ChurchTools configures the event calendar.
	ChurchTools ChurchToolsConfig `yaml:"churchtools"`

	// Sync configures the reconciliation.
	Sync SyncConfig `yaml:"sync"`

	// Per-environment overrides, applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains the sections that can be overridden per
// environment.
type ConfigOverrides struct {
	Communi     *CommuniConfig     `yaml:"communi,omitempty"`
	ChurchTools *ChurchToolsConfig `yaml:"churchtools,omitempty"`
}

// CommuniConfig configures the Communi connection.
type CommuniConfig struct {
	// Server is the REST base URL.
	// Default: https://api.communiapp.de/rest
	Server string `yaml:"server"`

	// AppID is the numeric Communi app (tenant) ID.
	AppID int `yaml:"app_id"`

	// Token is the integration user's API token. Usually "${COMMUNI_TOKEN}".
	Token string `yaml:"token"`
}

// ChurchToolsConfig configures the ChurchTools connection.
type ChurchToolsConfig struct {
	// URL is the instance base URL, e.g. https://example.church.tools.
	URL string `yaml:"url"`

	// Token is the API user's login token. Usually "${CT_TOKEN}".
	Token string `yaml:"token"`
}

// SyncConfig configures what is synced and how it is worded.
type SyncConfig struct {
	// Timezone is the IANA zone used for group names and date windows.
	// Empty means the local zone.
	Timezone string `yaml:"timezone"`

	// Locale selects weekday abbreviations and message wording: en or de.
	// Default: en
	Locale string `yaml:"locale"`

	// RelevantServiceGroups lists the service groups of which at least one
	// must be staffed for an event to get a group. An empty list makes
	// every event relevant.
	// Default: [Technik]
	RelevantServiceGroups []string `yaml:"relevant_service_groups"`

	// ExcludedServices lists service types whose people are never added.
	// Default: ["Begrüßung & Opferzählen", "Opfer zählen"]
	ExcludedServices []string `yaml:"excluded_services"`

	// GroupDescription replaces the locale's default description of
	// created groups.
	GroupDescription string `yaml:"group_description"`

	// OnlyRelevant skips events that are not relevant.
	// Default: true
	OnlyRelevant bool `yaml:"only_relevant"`

	// LookaheadDays is how many days ahead sync looks for events.
	// Default: 14
	LookaheadDays int `yaml:"lookahead_days"`

	// CleanupDays is how many days back cleanup looks for events.
	// Default: 14
	CleanupDays int `yaml:"cleanup_days"`

	// CleanupGraceDays keeps groups of events that ended recently.
	// Default: 2
	CleanupGraceDays int `yaml:"cleanup_grace_days"`

	// RequestTimeout bounds every HTTP request.
	// Default: 30s
	RequestTimeout string `yaml:"request_timeout"`
}

// Default returns the default configuration. The defaults are the base
// the config file is merged into; the file itself is required.
func Default() *Config {
	return &Config{
		Environment: Development,
		Communi: CommuniConfig{
			Server: "https://api.communiapp.de/rest",
		},
		Sync: SyncConfig{
			Locale:                "en",
			RelevantServiceGroups: []string{"Technik"},
			ExcludedServices:      []string{"Begrüßung & Opferzählen", "Opfer zählen"},
			OnlyRelevant:          true,
			LookaheadDays:         14,
			CleanupDays:           14,
			CleanupGraceDays:      2,
			RequestTimeout:        "30s",
		},
	}
}

// Load loads configuration from the file named by EVENTCHAT_CONFIG.
// There is no fallback: if the variable is unset, Load fails.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvVar)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your eventchat.yaml config file, or use --config flag", EnvVar)
	}

	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		// YAML is a superset of JSON once comments and trailing commas
		// are gone.
		data = jsonc.ToJSON(data)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// applyEnvironmentOverrides applies the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Communi != nil {
		if overrides.Communi.Server != "" {
			c.Communi.Server = overrides.Communi.Server
		}
		if overrides.Communi.AppID != 0 {
			c.Communi.AppID = overrides.Communi.AppID
		}
		if overrides.Communi.Token != "" {
			c.Communi.Token = overrides.Communi.Token
		}
	}

	if overrides.ChurchTools != nil {
		if overrides.ChurchTools.URL != "" {
			c.ChurchTools.URL = overrides.ChurchTools.URL
		}
		if overrides.ChurchTools.Token != "" {
			c.ChurchTools.Token = overrides.ChurchTools.Token
		}
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in URLs and
// tokens.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}

	c.Communi.Server = expandVars(c.Communi.Server, vars)
	c.Communi.Token = expandVars(c.Communi.Token, vars)
	c.ChurchTools.URL = expandVars(c.ChurchTools.URL, vars)
	c.ChurchTools.Token = expandVars(c.ChurchTools.Token, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if err := validateURL("communi.server", c.Communi.Server); err != nil {
		errs = append(errs, err)
	}
	if c.Communi.AppID <= 0 {
		errs = append(errs, fmt.Errorf("communi.app_id is required"))
	}
	if c.Communi.Token == "" {
		errs = append(errs, fmt.Errorf("communi.token is required"))
	}

	if err := validateURL("churchtools.url", c.ChurchTools.URL); err != nil {
		errs = append(errs, err)
	}
	if c.ChurchTools.Token == "" {
		errs = append(errs, fmt.Errorf("churchtools.token is required"))
	}

	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	locales := []string{"en", "de"}
	if !contains(locales, c.Sync.Locale) {
		errs = append(errs, fmt.Errorf("sync.locale must be one of: %v", locales))
	}
	if c.Sync.LookaheadDays < 0 {
		errs = append(errs, fmt.Errorf("sync.lookahead_days must not be negative"))
	}
	if c.Sync.CleanupDays < 0 {
		errs = append(errs, fmt.Errorf("sync.cleanup_days must not be negative"))
	}
	if c.Sync.CleanupGraceDays < 0 {
		errs = append(errs, fmt.Errorf("sync.cleanup_grace_days must not be negative"))
	}
	if _, err := c.RequestTimeout(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// Location loads Sync.Timezone. An empty timezone is the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Sync.Timezone == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		return nil, fmt.Errorf("sync.timezone: %w", err)
	}
	return location, nil
}

// RequestTimeout parses Sync.RequestTimeout.
func (c *Config) RequestTimeout() (time.Duration, error) {
	timeout, err := time.ParseDuration(c.Sync.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("sync.request_timeout: %w", err)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("sync.request_timeout must be positive, got %s", timeout)
	}
	return timeout, nil
}

func validateURL(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", key)
	}
	parsed, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", key, value)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
