// Package config loads the equipneeds configuration file.
//
// The file is TOML (equipneeds.toml) or YAML (equipneeds.yaml / .yml),
// chosen by extension. Every field is optional; [Config.WithDefaults]
// fills what the file leaves out and [Config.Validate] rejects values the
// rest of the program cannot work with. Command-line flags override the
// loaded values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/equipneeds/pkg/cache"
	"github.com/matzehuels/equipneeds/pkg/catalog"
	"github.com/matzehuels/equipneeds/pkg/errors"
	"github.com/matzehuels/equipneeds/pkg/needs"
	"github.com/matzehuels/equipneeds/pkg/voyage"
)

// AppName names the config and cache directories.
const AppName = "equipneeds"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// TokenEnv overrides api.token when set.
const TokenEnv = "EQUIPNEEDS_TOKEN"

// Config is the full configuration.
type Config struct {
	API     APIConfig     `toml:"api" yaml:"api"`
	Player  PlayerConfig  `toml:"player" yaml:"player"`
	Cache   CacheConfig   `toml:"cache" yaml:"cache"`
	Catalog CatalogConfig `toml:"catalog" yaml:"catalog"`
	Needs   NeedsConfig   `toml:"needs" yaml:"needs"`
	Voyage  VoyageConfig  `toml:"voyage" yaml:"voyage"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
}

// APIConfig locates the game API. Attempts is the number of calls made for
// a request that keeps failing with 429 or 5xx; 1 disables retrying.
type APIConfig struct {
	BaseURL  string        `toml:"base_url" yaml:"base_url"`
	Token    string        `toml:"token" yaml:"token"`
	Timeout  time.Duration `toml:"timeout" yaml:"timeout"`
	Attempts int           `toml:"attempts" yaml:"attempts"`
}

// PlayerConfig points at a saved player snapshot. When File is set the
// snapshot is read from disk instead of the API.
type PlayerConfig struct {
	File string `toml:"file" yaml:"file"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string        `toml:"backend" yaml:"backend"`
	Dir           string        `toml:"dir" yaml:"dir"`
	RedisAddr     string        `toml:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `toml:"redis_password" yaml:"redis_password"`
	RedisDB       int           `toml:"redis_db" yaml:"redis_db"`
	MongoURI      string        `toml:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string        `toml:"mongo_database" yaml:"mongo_database"`
	TTL           time.Duration `toml:"ttl" yaml:"ttl"`
}

// CatalogConfig bounds catalog completion.
type CatalogConfig struct {
	BatchSize   int `toml:"batch_size" yaml:"batch_size"`
	FetchBudget int `toml:"fetch_budget" yaml:"fetch_budget"`
	MaxRounds   int `toml:"max_rounds" yaml:"max_rounds"`
}

// NeedsConfig bounds demand expansion.
type NeedsConfig struct {
	MaxIterations int `toml:"max_iterations" yaml:"max_iterations"`
}

// VoyageConfig tunes ship ranking.
type VoyageConfig struct {
	TraitBonus int `toml:"trait_bonus" yaml:"trait_bonus"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// Default returns a configuration with every default applied.
func Default() Config {
	return Config{}.WithDefaults()
}

// WithDefaults returns a copy with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	if c.API.Timeout <= 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.API.Attempts == 0 {
		c.API.Attempts = cache.DefaultRetryPolicy.Attempts
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = BackendFile
	}
	if c.Cache.MongoDatabase == "" {
		c.Cache.MongoDatabase = AppName
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = cache.TTLHTTP
	}
	if c.Catalog.BatchSize == 0 {
		c.Catalog.BatchSize = catalog.DefaultBatchSize
	}
	if c.Catalog.FetchBudget == 0 {
		c.Catalog.FetchBudget = catalog.DefaultFetchBudget
	}
	if c.Catalog.MaxRounds == 0 {
		c.Catalog.MaxRounds = catalog.DefaultMaxRounds
	}
	if c.Needs.MaxIterations == 0 {
		c.Needs.MaxIterations = needs.DefaultMaxIterations
	}
	if c.Voyage.TraitBonus == 0 {
		c.Voyage.TraitBonus = voyage.DefaultTraitBonus
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	return c
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if strings.TrimSpace(c.Cache.RedisAddr) == "" {
			return invalid("cache.redis_addr is required for the redis backend")
		}
	case BackendMongo:
		if strings.TrimSpace(c.Cache.MongoURI) == "" {
			return invalid("cache.mongo_uri is required for the mongo backend")
		}
	default:
		return invalid("unknown cache backend: %q", c.Cache.Backend)
	}
	if c.API.BaseURL != "" {
		if err := errors.ValidateURL(c.API.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "api.base_url")
		}
	}
	if c.API.Attempts <= 0 {
		return invalid("api.attempts must be positive, got %d", c.API.Attempts)
	}
	if c.Catalog.BatchSize <= 0 {
		return invalid("catalog.batch_size must be positive, got %d", c.Catalog.BatchSize)
	}
	if c.Catalog.FetchBudget <= 0 {
		return invalid("catalog.fetch_budget must be positive, got %d", c.Catalog.FetchBudget)
	}
	if c.Catalog.MaxRounds <= 0 {
		return invalid("catalog.max_rounds must be positive, got %d", c.Catalog.MaxRounds)
	}
	if c.Needs.MaxIterations <= 0 {
		return invalid("needs.max_iterations must be positive, got %d", c.Needs.MaxIterations)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrCodeInvalidConfig, format, args...)
}

// Load reads the file at path, applies defaults and the token environment
// override, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q", ext)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "loading config %s", path)
	}

	return finish(cfg)
}

// LoadDefault loads the first config file found in the config directory.
// When none exists the defaults are returned.
func LoadDefault() (*Config, error) {
	dir, err := Dir()
	if err == nil {
		for _, name := range []string{AppName + ".toml", AppName + ".yaml", AppName + ".yml"} {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return Load(path)
			}
		}
	}
	return finish(Config{})
}

func finish(cfg Config) (*Config, error) {
	cfg = cfg.WithDefaults()
	if tok := os.Getenv(TokenEnv); tok != "" {
		cfg.API.Token = tok
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Dir returns the config directory ($XDG_CONFIG_HOME/equipneeds or
// ~/.config/equipneeds).
func Dir() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName), nil
}

// CacheDir returns the file cache directory: cache.dir when set, else
// $XDG_CACHE_HOME/equipneeds or ~/.cache/equipneeds.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
