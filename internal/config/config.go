// Package config builds the process configuration once at startup.
//
// Values come from the environment, optionally layered on top of a YAML or
// JSON config file. The resulting Config struct is passed by reference into
// the token cache, Zoho client and scheduler constructors; nothing reads the
// environment after Load returns.
package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	// OAuth2 client credentials. All three are required before a token
	// refresh can be attempted; their absence is a per-operation error,
	// not a startup error.
	ClientID     string
	ClientSecret string
	RefreshToken string

	// Zoho endpoints. EU tenants use accounts.zoho.eu / people.zoho.eu.
	AccountsURL string
	PeopleURL   string

	// Token persistence. Driver is "file", "sqlite" or "none".
	TokenStore string
	TokenFile  string

	// 5-field cron expressions plus the IANA zone both schedules run in.
	CheckInCron  string
	CheckOutCron string
	Timezone     string

	LogLevel string
	LogFile  string

	HTTPTimeout time.Duration
}

// Load builds the config from defaults, then the optional config file at
// path (YAML or JSON), then the environment. Later layers win.
func Load(path string) (Config, error) {
	cfg := Config{
		AccountsURL:  "https://accounts.zoho.com",
		PeopleURL:    "https://people.zoho.com",
		TokenStore:   "file",
		TokenFile:    "./zoho_token.json",
		CheckInCron:  "0 9 * * 1-5",
		CheckOutCron: "0 18 * * 1-5",
		Timezone:     "Europe/Berlin",
		LogLevel:     "info",
		HTTPTimeout:  30 * time.Second,
	}

	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	setEnv(&c.ClientID, "ZOHO_CLIENT_ID")
	setEnv(&c.ClientSecret, "ZOHO_CLIENT_SECRET")
	setEnv(&c.RefreshToken, "ZOHO_REFRESH_TOKEN")
	setEnv(&c.AccountsURL, "ZOHO_ACCOUNTS_URL")
	setEnv(&c.PeopleURL, "ZOHO_PEOPLE_URL")
	setEnv(&c.TokenStore, "TOKEN_STORE")
	setEnv(&c.TokenFile, "TOKEN_FILE")
	setEnv(&c.CheckInCron, "CHECK_IN_CRON")
	setEnv(&c.CheckOutCron, "CHECK_OUT_CRON")
	setEnv(&c.Timezone, "TIMEZONE")
	setEnv(&c.LogLevel, "LOG_LEVEL")
	setEnv(&c.LogFile, "LOG_FILE")

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.HTTPTimeout = d
		}
	}
}

// HasCredentials reports whether all three OAuth2 secrets are present.
func (c *Config) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Location resolves the configured IANA zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
