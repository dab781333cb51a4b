// Package config loads process settings from the environment and request
// presets from YAML files.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"

	"github.com/chriscorrea/wordsift/internal/app"
	"github.com/chriscorrea/wordsift/internal/cache"
)

// Environment variables controlling the extraction cache.
const (
	EnvCache    = "WORDCLOUD_CACHE"     // 0, false, no or off disables the cache
	EnvCacheMax = "WORDCLOUD_CACHE_MAX" // capacity in entries
)

// CacheSettings mirrors cache.Options with koanf tags.
type CacheSettings struct {
	Enabled    bool `koanf:"enabled"`
	MaxEntries int  `koanf:"max_entries"`
}

// DefaultCacheSettings enables a cache of cache.DefaultMaxEntries entries.
func DefaultCacheSettings() CacheSettings {
	return CacheSettings{Enabled: true, MaxEntries: cache.DefaultMaxEntries}
}

var envToPath = map[string]string{
	EnvCache:    "cache.enabled",
	EnvCacheMax: "cache.max_entries",
}

// LoadCacheOptions reads the cache controls from environ (os.Environ when
// nil). Unparseable values return an error together with disabled options,
// so callers can warn and carry on without a cache.
func LoadCacheOptions(environ func() []string) (cache.Options, error) {
	if environ == nil {
		environ = os.Environ
	}

	k := koanf.New(".")
	defaults := struct {
		Cache CacheSettings `koanf:"cache"`
	}{DefaultCacheSettings()}
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return cache.Options{}, fmt.Errorf("failed to load cache defaults: %w", err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:      "WORDCLOUD_",
		EnvironFunc: environ,
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envToPath[key]
			if !ok {
				return "", nil // not ours; skipped
			}
			value = strings.TrimSpace(value)
			if key == EnvCache {
				return path, normalizeSwitch(value)
			}
			return path, value
		},
	}), nil); err != nil {
		return cache.Options{}, fmt.Errorf("failed to load cache environment: %w", err)
	}

	var settings CacheSettings
	if err := k.Unmarshal("cache", &settings); err != nil {
		return cache.Options{}, fmt.Errorf("invalid cache settings (%s, %s): %w", EnvCache, EnvCacheMax, err)
	}
	if settings.Enabled && settings.MaxEntries <= 0 {
		return cache.Options{}, fmt.Errorf("%s must be a positive number of entries, got %d", EnvCacheMax, settings.MaxEntries)
	}

	return cache.Options{Enabled: settings.Enabled, MaxEntries: settings.MaxEntries}, nil
}

// normalizeSwitch maps the accepted on/off spellings to "true"/"false".
// Anything else passes through and fails to decode.
func normalizeSwitch(value string) string {
	switch strings.ToLower(value) {
	case "", "1", "true", "yes", "on":
		return "true"
	case "0", "false", "no", "off":
		return "false"
	}
	return value
}

// LoadPreset reads a YAML request preset. Unknown keys are rejected so that
// typos do not silently fall back to defaults.
func LoadPreset(path string) (*app.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset: %w", err)
	}
	defer file.Close()

	var req app.Request
	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)
	if err := decoder.Decode(&req); err != nil {
		return nil, fmt.Errorf("failed to decode preset %s: %w", path, err)
	}
	return &req, nil
}
