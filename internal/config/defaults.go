package config

// DefaultConfigFile is looked up in the working directory when --config is not given.
const DefaultConfigFile = "quiver.yaml"

// DefaultKeymap mirrors domain.DefaultKeymap as action -> keys bindings.
func DefaultKeymap() map[string][]string {
	return map[string][]string{
		"delete":  {"Backspace", "b"},
		"pin":     {"s"},
		"final":   {"f"},
		"initial": {"i"},
		"loop":    {"l"},
		"pan":     {"m"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Canvas: CanvasConfig{
			Width:  960,
			Height: 500,
		},
		Layout: LayoutConfig{
			Seed:     1,
			Alpha:    0.1,
			Friction: 0.9,
			Gravity:  0.1,
			TickMS:   0,
		},
		Keymap: DefaultKeymap(),
		Labels: LabelsConfig{
			Transition: "b",
			Loop:       "a",
			Marker:     "",
		},
		Server: ServerConfig{
			Addr:    ":8080",
			Metrics: true,
		},
		Store: StoreConfig{
			Driver:      StoreMemory,
			Path:        ".quiver/sessions",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "quiver:session:",
		},
	}
}
