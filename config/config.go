package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	yaml "go.yaml.in/yaml/v3"
)

// Config is the full service configuration. Zero values are replaced by
// Default() before the YAML file is overlaid, so a partial file is fine.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Reminders RemindersConfig `yaml:"reminders"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the driver. For mysql the DSN is used as-is; for
// sqlite Path points at the database file.
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
	Path   string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret     string `yaml:"jwtSecret"`
	TokenTTLHours int    `yaml:"tokenTTLHours"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

type RemindersConfig struct {
	DigestEnabled bool   `yaml:"digestEnabled"`
	DigestCron    string `yaml:"digestCron"`
}

type RateLimitConfig struct {
	AuthPerMinute int `yaml:"authPerMinute"`
	AuthBurst     int `yaml:"authBurst"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Database: DatabaseConfig{
			Driver: "mysql",
			DSN:    "root:root@tcp(127.0.0.1:3306)/plantcare?charset=utf8mb4",
		},
		Auth: AuthConfig{
			JWTSecret:     "plantcare_secret_key",
			TokenTTLHours: 24 * 7,
		},
		Log:       LogConfig{Level: "info", Pretty: false},
		Reminders: RemindersConfig{DigestEnabled: false, DigestCron: "0 8 * * *"},
		RateLimit: RateLimitConfig{AuthPerMinute: 10, AuthBurst: 5},
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not
// an error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations the rest of the service cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the mysql driver")
		}
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwtSecret must not be empty")
	}
	if c.Auth.TokenTTLHours <= 0 {
		return fmt.Errorf("auth.tokenTTLHours must be positive")
	}
	if c.RateLimit.AuthPerMinute <= 0 {
		return fmt.Errorf("ratelimit.authPerMinute must be positive")
	}
	return nil
}

// Watch re-reads the config file on change and hands valid configs to
// onChange. Invalid edits are ignored; the previous config stays in effect.
// The returned func stops the watcher.
func Watch(path string, onChange func(Config)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors often replace the file, which drops a
	// watch installed on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				if cfg, err := Load(path); err == nil {
					onChange(cfg)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close()
	}, nil
}
