package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// fileConfig is the on-disk shape. All fields are optional; empty values keep
// whatever the previous layer set.
type fileConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RefreshToken string `json:"refresh_token"`

	AccountsURL string `json:"accounts_url"`
	PeopleURL   string `json:"people_url"`

	TokenStore string `json:"token_store"`
	TokenFile  string `json:"token_file"`

	CheckInCron  string `json:"check_in_cron"`
	CheckOutCron string `json:"check_out_cron"`
	Timezone     string `json:"timezone"`

	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// HTTPTimeout is a Go duration string (e.g. "10s", "1m").
	HTTPTimeout string `json:"http_timeout"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	jsonBytes, _, err := coerceToJSONBytes(path, data)
	if err != nil {
		return err
	}

	dec := json.NewDecoder(bytes.NewReader(jsonBytes))
	dec.DisallowUnknownFields()
	var fc fileConfig
	if err := dec.Decode(&fc); err != nil {
		return err
	}

	setNonEmpty(&c.ClientID, fc.ClientID)
	setNonEmpty(&c.ClientSecret, fc.ClientSecret)
	setNonEmpty(&c.RefreshToken, fc.RefreshToken)
	setNonEmpty(&c.AccountsURL, fc.AccountsURL)
	setNonEmpty(&c.PeopleURL, fc.PeopleURL)
	setNonEmpty(&c.TokenStore, fc.TokenStore)
	setNonEmpty(&c.TokenFile, fc.TokenFile)
	setNonEmpty(&c.CheckInCron, fc.CheckInCron)
	setNonEmpty(&c.CheckOutCron, fc.CheckOutCron)
	setNonEmpty(&c.Timezone, fc.Timezone)
	setNonEmpty(&c.LogLevel, fc.LogLevel)
	setNonEmpty(&c.LogFile, fc.LogFile)

	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid http_timeout %q", fc.HTTPTimeout)
		}
		c.HTTPTimeout = d
	}
	return nil
}

// coerceToJSONBytes converts YAML config to JSON bytes so we can re-use the
// strict JSON decoder (DisallowUnknownFields) for both formats.
func coerceToJSONBytes(path string, data []byte) ([]byte, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".yaml" && ext != ".yml" {
		return data, "json", nil
	}

	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, "yaml", fmt.Errorf("yaml unmarshal: %w", err)
	}

	v = normalizeYAML(v)

	j, err := json.Marshal(v)
	if err != nil {
		return nil, "yaml", fmt.Errorf("yaml->json marshal: %w", err)
	}
	return j, "yaml", nil
}

// normalizeYAML ensures all map keys are strings so the result can be JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}

func setNonEmpty(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}
