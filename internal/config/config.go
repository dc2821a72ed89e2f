package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/pkg/domain"
)

// EnvPrefix prefixes environment overrides. A double underscore separates
// nesting levels: QUIVER_SERVER__ADDR sets server.addr.
const EnvPrefix = "QUIVER_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validDrivers = map[StoreDriver]bool{
	StoreMemory: true,
	StoreFile:   true,
	StoreRedis:  true,
	StoreSQLite: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Layout.Alpha <= 0 {
		return fmt.Errorf("layout.alpha must be positive")
	}
	if c.Layout.Friction <= 0 || c.Layout.Friction > 1 {
		return fmt.Errorf("layout.friction must be in (0, 1]")
	}
	if c.Layout.Gravity < 0 {
		return fmt.Errorf("layout.gravity must be non-negative")
	}
	if c.Layout.TickMS < 0 {
		return fmt.Errorf("layout.tick_ms must be non-negative")
	}
	for action := range c.Keymap {
		switch domain.Action(action) {
		case domain.ActionDelete, domain.ActionPin, domain.ActionFinal,
			domain.ActionInitial, domain.ActionLoop, domain.ActionPan:
		default:
			return fmt.Errorf("invalid keymap action %q", action)
		}
	}

	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("invalid store.driver %q: must be one of memory, file, redis, sqlite", c.Store.Driver)
	}
	switch c.Store.Driver {
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the %s driver", c.Store.Driver)
		}
	case StoreRedis:
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store.redis_addr is required for the redis driver")
		}
	}
	if c.Store.TTLSeconds < 0 {
		return fmt.Errorf("store.ttl_seconds must be non-negative")
	}
	if c.Store.Lock && c.Store.Driver != StoreRedis {
		return fmt.Errorf("store.lock requires the redis driver")
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// LayoutParams returns the simulation parameters for the editor.
func (c *Config) LayoutParams() quiver.LayoutParams {
	p := quiver.DefaultLayoutParams()
	p.Width, p.Height = c.Canvas.Width, c.Canvas.Height
	p.Alpha = c.Layout.Alpha
	p.Friction = c.Layout.Friction
	p.Gravity = c.Layout.Gravity
	return p
}

// TickInterval is the runner's layout timer period.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Layout.TickMS) * time.Millisecond
}

// EditorKeymap returns the configured bindings, or the stock ones when none are set.
func (c *Config) EditorKeymap() domain.Keymap {
	if len(c.Keymap) == 0 {
		return domain.DefaultKeymap()
	}
	return domain.ParseKeymap(c.Keymap)
}

// EditorLabels returns the labels given to new transitions.
func (c *Config) EditorLabels() quiver.Labels {
	return quiver.Labels{
		Transition: c.Labels.Transition,
		Loop:       c.Labels.Loop,
		Marker:     c.Labels.Marker,
	}
}

// EditorOptions translates the editor sections into facade options.
func (c *Config) EditorOptions() []quiver.Option {
	return []quiver.Option{
		quiver.WithKeymap(c.EditorKeymap()),
		quiver.WithLabels(c.EditorLabels()),
		quiver.WithLayout(c.LayoutParams(), c.Layout.Seed),
	}
}

// TTL is the redis session expiry; zero keeps sessions forever.
func (c *Config) TTL() time.Duration {
	return time.Duration(c.Store.TTLSeconds) * time.Second
}
