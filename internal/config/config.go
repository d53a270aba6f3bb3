// Package config loads the nodecanvas configuration file.
//
// The file is TOML, read from --config or from
// $XDG_CONFIG_HOME/nodecanvas/config.toml. Every setting has a default, so a
// missing default file is not an error:
//
//	log_level = "info"
//
//	[cache]
//	backend = "file"      # file | redis | none
//	dir = "~/.cache/nodecanvas"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[store]
//	backend = "dir"       # dir | mongo
//	dir = "~/.local/share/nodecanvas/canvases"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "nodecanvas"
//	collection = "canvases"
//
//	[server]
//	addr = ":8080"
//	session = "server"
//
//	[session]
//	dir = "~/.config/nodecanvas/sessions"
//	ttl = "0s"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

const appName = "nodecanvas"

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StoreDir   = "dir"
	StoreMongo = "mongo"
)

// Config is the full configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Cache    CacheConfig   `toml:"cache"`
	Store    StoreConfig   `toml:"store"`
	Server   ServerConfig  `toml:"server"`
	Session  SessionConfig `toml:"session"`
}

// CacheConfig selects the byte cache used for rendered artifacts and server
// sessions.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	TTL           Duration `toml:"ttl"`
}

// StoreConfig selects where named canvases are kept.
type StoreConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// ServerConfig configures `nodecanvas serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// Session is the ID the server saves its canvas under.
	Session string `toml:"session"`
}

// SessionConfig configures the CLI's resumable session.
type SessionConfig struct {
	Dir string   `toml:"dir"`
	TTL Duration `toml:"ttl"`
}

// Duration is a time.Duration written as a string ("90s", "24h") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       xdgDir("XDG_CACHE_HOME", ".cache"),
			RedisAddr: "localhost:6379",
			TTL:       Duration{24 * time.Hour},
		},
		Store: StoreConfig{
			Backend:    StoreDir,
			Dir:        filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "canvases"),
			Database:   "nodecanvas",
			Collection: "canvases",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Session: "server",
		},
		Session: SessionConfig{
			Dir: filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "sessions"),
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/nodecanvas/config.toml.
func DefaultPath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "config.toml")
}

// xdgDir returns $env/nodecanvas, falling back to ~/fallback/nodecanvas.
func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return filepath.Join(home, fallback, appName)
}

// Load reads the configuration at path over the defaults. An empty path
// reads DefaultPath and tolerates its absence; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config")
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Cache.Dir = expandHome(cfg.Cache.Dir)
	cfg.Store.Dir = expandHome(cfg.Store.Dir)
	cfg.Session.Dir = expandHome(cfg.Session.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks backend names and required settings.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.New(errors.ErrCodeInvalidInput, "invalid log_level %q", c.LogLevel)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "cache backend redis requires redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q (want file, redis or none)", c.Cache.Backend)
	}
	switch c.Store.Backend {
	case StoreDir:
	case StoreMongo:
		if c.Store.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "store backend mongo requires mongo_uri")
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q (want dir or mongo)", c.Store.Backend)
	}
	if c.Cache.TTL.Duration < 0 || c.Session.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "ttl must not be negative")
	}
	if err := errors.ValidateCanvasName(c.Server.Session); err != nil {
		return err
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
