// Package config loads the narrator settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"doc-narrator/pkg/db"
	"doc-narrator/pkg/httpclient"
	"doc-narrator/pkg/jobs"
	"doc-narrator/pkg/speech"
	"doc-narrator/pkg/translate"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "narrator.yaml"

// DefaultAddr matches the port the mobile client connects to
const DefaultAddr = ":49201"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Fetch       FetchConfig       `yaml:"fetch"`
	Translation TranslationConfig `yaml:"translation"`
	Speech      SpeechConfig      `yaml:"speech"`
	History     HistoryConfig     `yaml:"history"`
	Events      EventsConfig      `yaml:"events"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type FetchConfig struct {
	// Client is the header profile: browser, cloudflare or default
	Client string `yaml:"client"`
	// Timeout of zero means no timeout
	Timeout time.Duration `yaml:"timeout"`
}

type TranslationConfig struct {
	Provider string `yaml:"provider"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"`
}

type SpeechConfig struct {
	Command string `yaml:"command"`
	Rate    int    `yaml:"rate"`
	Voice   string `yaml:"voice"`
}

// HistoryConfig enables run history. An empty driver disables it.
type HistoryConfig struct {
	Driver     string `yaml:"driver"`
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
	APIKey     string `yaml:"api_key"`
	Password   string `yaml:"password"`
}

type EventsConfig struct {
	Max int `yaml:"max"`
}

// Default returns the settings used when no file exists
func Default() Config {
	return Config{
		Server:      ServerConfig{Addr: DefaultAddr},
		Fetch:       FetchConfig{Client: string(httpclient.BrowserClient)},
		Translation: TranslationConfig{Provider: translate.ProviderGoogle},
		Speech:      SpeechConfig{Command: "espeak-ng", Rate: speech.DefaultRate},
		Events:      EventsConfig{Max: jobs.DefaultMaxEvents},
	}
}

// Load reads the file at path over the defaults. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that would otherwise fail late
func (c Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if _, err := httpclient.ParseClientType(c.Fetch.Client); err != nil {
		return fmt.Errorf("fetch.client: %w", err)
	}
	if c.Fetch.Timeout < 0 {
		return fmt.Errorf("fetch.timeout must not be negative")
	}
	switch c.Translation.Provider {
	case "", translate.ProviderGoogle:
	case translate.ProviderLibre:
		if c.Translation.Endpoint == "" {
			return fmt.Errorf("translation.endpoint is required for %s", translate.ProviderLibre)
		}
	default:
		return fmt.Errorf("translation.provider: unknown provider %q", c.Translation.Provider)
	}
	if c.Speech.Rate < 0 {
		return fmt.Errorf("speech.rate must not be negative")
	}
	switch c.History.Driver {
	case db.DriverNone, db.DriverMongo, db.DriverPostgres, db.DriverSupabase:
	default:
		return fmt.Errorf("history.driver: unknown driver %q", c.History.Driver)
	}
	if c.History.Driver != db.DriverNone && c.History.URI == "" {
		return fmt.Errorf("history.uri is required for %s", c.History.Driver)
	}
	return nil
}

// HistoryOptions maps the history section onto store options
func (c Config) HistoryOptions() db.Options {
	return db.Options{
		Driver:     c.History.Driver,
		URI:        c.History.URI,
		Database:   c.History.Database,
		Collection: c.History.Collection,
		APIKey:     c.History.APIKey,
		Password:   c.History.Password,
	}
}
