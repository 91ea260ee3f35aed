package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"

	"github.com/scipunch/finfeed/feed"
	"github.com/scipunch/finfeed/filter"
)

const baseCfgPath = "finfeed/config.toml"

// DefaultPort is used when neither the config file nor the PORT environment
// variable names one.
const DefaultPort = 3000

// Duration wraps time.Duration so TOML files can carry values like "15m".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

type Config struct {
	Port            int            `toml:"port"`
	CacheDuration   Duration       `toml:"cache_duration"`   // staleness window of the rendered feed
	RefreshInterval Duration       `toml:"refresh_interval"` // background refresh cadence
	FetchTimeout    Duration       `toml:"fetch_timeout"`    // per-source network budget
	Log             LogConfig      `toml:"log"`
	Filter          filter.Rules   `toml:"filter"`
	Sources         []SourceConfig `toml:"sources"`
}

type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // empty = stderr only
}

type SourceConfig struct {
	Name     string `toml:"name"`
	URL      string `toml:"url"`
	Category string `toml:"category"`
}

// FeedSources converts the configured registry into feed values.
func (c Config) FeedSources() []feed.Source {
	sources := make([]feed.Source, 0, len(c.Sources))
	for _, s := range c.Sources {
		sources = append(sources, feed.Source{Name: s.Name, URL: s.URL, Category: s.Category})
	}
	return sources
}

func Read(path string) (Config, error) {
	conf := Default()
	dat, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	_, err = toml.Decode(string(dat), &conf)
	if err != nil {
		return conf, fmt.Errorf("failed to decode config at %s with %w", path, err)
	}
	applyEnv(&conf)
	return conf, nil
}

func Write(cfgPath string, cfg Config) error {
	blob, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config with %w", err)
	}
	basePath := path.Dir(cfgPath)
	err = os.MkdirAll(basePath, os.ModePerm)
	if err != nil {
		return fmt.Errorf("failed to create base config directory at '%s' with %w", basePath, err)
	}
	err = os.WriteFile(cfgPath, blob, 0644)
	if err != nil {
		return fmt.Errorf("failed to write into config file at '%s' with %w", cfgPath, err)
	}
	zap.S().Infow("config written", "at", cfgPath)
	return nil
}

// Default returns the built-in configuration, including the stock source
// registry of financial news feeds.
func Default() Config {
	conf := Config{
		Port:            DefaultPort,
		CacheDuration:   Duration(15 * time.Minute),
		RefreshInterval: Duration(15 * time.Minute),
		FetchTimeout:    Duration(10 * time.Second),
		Log:             LogConfig{Level: "info"},
		Sources: []SourceConfig{
			{Name: "CNBC Finance", URL: "https://search.cnbc.com/rs/search/combinedcms/view.xml?partnerId=wrss01&id=10000664", Category: "markets"},
			{Name: "MarketWatch", URL: "https://feeds.content.dowjones.io/public/rss/mw_topstories", Category: "markets"},
			{Name: "Yahoo Finance", URL: "https://finance.yahoo.com/news/rssindex", Category: "markets"},
			{Name: "Investing.com", URL: "https://www.investing.com/rss/news.rss", Category: "economy"},
			{Name: "Seeking Alpha", URL: "https://seekingalpha.com/market_currents.xml", Category: "analysis"},
		},
	}
	applyEnv(&conf)
	return conf
}

// applyEnv overrides file values with the process environment. Only the port
// comes from the environment; everything else lives in the config file.
func applyEnv(conf *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			conf.Port = port
		}
	}
}

func DefaultPath() string {
	var xdgHome = os.Getenv("XDG_CONFIG_HOME")
	if xdgHome != "" {
		return path.Join(xdgHome, baseCfgPath)
	}

	var home = os.Getenv("HOME")
	if home != "" {
		return path.Join(home, ".config", baseCfgPath)
	}

	panic("unclear where to search for the config file")
}
