package config

// StoreDriver selects the session store backend.
type StoreDriver string

const (
	StoreMemory StoreDriver = "memory"
	StoreFile   StoreDriver = "file"
	StoreRedis  StoreDriver = "redis"
	StoreSQLite StoreDriver = "sqlite"
)

// Config is the top-level quiver configuration, corresponding to quiver.yaml.
type Config struct {
	LogLevel  string              `yaml:"log_level" koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string              `yaml:"log_format" koanf:"log_format"`
	Canvas    CanvasConfig        `yaml:"canvas" koanf:"canvas"`
	Layout    LayoutConfig        `yaml:"layout" koanf:"layout"`
	Keymap    map[string][]string `yaml:"keymap" koanf:"keymap"`
	Labels    LabelsConfig        `yaml:"labels" koanf:"labels"`
	Server    ServerConfig        `yaml:"server" koanf:"server"`
	Store     StoreConfig         `yaml:"store" koanf:"store"`
	NATS      NATSConfig          `yaml:"nats" koanf:"nats"`
	Library   LibraryConfig       `yaml:"library" koanf:"library"`
}

// CanvasConfig is the size of the drawing area.
type CanvasConfig struct {
	Width  float64 `yaml:"width" koanf:"width"`
	Height float64 `yaml:"height" koanf:"height"`
}

// LayoutConfig tunes the force simulation.
type LayoutConfig struct {
	Seed     int64   `yaml:"seed" koanf:"seed"`
	Alpha    float64 `yaml:"alpha" koanf:"alpha"`
	Friction float64 `yaml:"friction" koanf:"friction"`
	Gravity  float64 `yaml:"gravity" koanf:"gravity"`
	// TickMS is the layout timer period of the runner; 0 disables it.
	TickMS int `yaml:"tick_ms" koanf:"tick_ms"`
}

// LabelsConfig holds the labels given to new transitions.
type LabelsConfig struct {
	Transition string `yaml:"transition" koanf:"transition"`
	Loop       string `yaml:"loop" koanf:"loop"`
	Marker     string `yaml:"marker" koanf:"marker"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr           string   `yaml:"addr" koanf:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	Metrics        bool     `yaml:"metrics" koanf:"metrics"`
}

// StoreConfig selects where session snapshots are saved.
type StoreConfig struct {
	Driver      StoreDriver `yaml:"driver" koanf:"driver"`
	Path        string      `yaml:"path" koanf:"path"`
	RedisAddr   string      `yaml:"redis_addr" koanf:"redis_addr"`
	RedisPrefix string      `yaml:"redis_prefix" koanf:"redis_prefix"`
	TTLSeconds  int         `yaml:"ttl_seconds" koanf:"ttl_seconds"`
	// Lock enables the redis distributed session lock.
	Lock bool `yaml:"lock" koanf:"lock"`
}

// NATSConfig enables diff publishing when URL is set.
type NATSConfig struct {
	URL string `yaml:"url" koanf:"url"`
}

// LibraryConfig points at the directory of named automata. Empty disables the library.
type LibraryConfig struct {
	Dir string `yaml:"dir" koanf:"dir"`
}
