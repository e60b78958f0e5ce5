// Package config loads orthoroute settings from TOML or YAML files.
//
// A config file tunes the router and picks the cache and store backends.
// Every field is optional; missing keys keep the values of [Default].
//
//	[routing]
//	port_gap = 16
//	align_elbows = false
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
// Files ending in .yaml or .yml are decoded as YAML with the same keys.
// Anything else is decoded as TOML.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/awscfgdiagram/orthoroute/pkg/errors"
	"github.com/awscfgdiagram/orthoroute/pkg/route"
)

// AppName names the per-user config, cache and state directories.
const AppName = "orthoroute"

// Backend names accepted in the [cache] and [store] sections.
const (
	BackendNone   = "none"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

// Config is the full settings tree.
type Config struct {
	Routing route.Options `toml:"routing" yaml:"routing"`
	Server  Server        `toml:"server" yaml:"server"`
	Cache   Cache         `toml:"cache" yaml:"cache"`
	Store   Store         `toml:"store" yaml:"store"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// Server configures `orthoroute serve`.
type Server struct {
	Addr        string        `toml:"addr" yaml:"addr"`
	ReadTimeout time.Duration `toml:"read_timeout" yaml:"read_timeout"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes" yaml:"max_body_bytes"`
}

// Cache configures the rendered-artifact cache.
type Cache struct {
	Backend   string        `toml:"backend" yaml:"backend"`
	Dir       string        `toml:"dir" yaml:"dir"`
	RedisAddr string        `toml:"redis_addr" yaml:"redis_addr"`
	RedisDB   int           `toml:"redis_db" yaml:"redis_db"`
	TTL       time.Duration `toml:"ttl" yaml:"ttl"`
}

// Store configures where the server keeps diagram documents.
type Store struct {
	Backend  string `toml:"backend" yaml:"backend"`
	Dir      string `toml:"dir" yaml:"dir"`
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database string `toml:"database" yaml:"database"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Routing: route.DefaultOptions(),
		Server: Server{
			Addr:         "127.0.0.1:8080",
			ReadTimeout:  30 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
		Cache: Cache{
			Backend: BackendFile,
			TTL:     7 * 24 * time.Hour,
		},
		Store: Store{
			Backend:  BackendMemory,
			Database: AppName,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/orthoroute/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the config at path. An empty path tries [DefaultPath] and
// returns [Default] when no file exists there; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes data over [Default] and validates the result.
// format is "toml" or "yaml".
func Parse(data []byte, format string) (Config, error) {
	cfg := Default()
	switch format {
	case "yaml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return Config{}, fmt.Errorf("parse yaml: %w", err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("parse toml: %w", err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return Config{}, fmt.Errorf("unknown key %q", undec[0].String())
		}
	default:
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config format %q", format)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "toml"
	}
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Routing.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "routing")
	}
	if c.Server.ReadTimeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.read_timeout must not be negative")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile:
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
