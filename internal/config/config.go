// Package config charge la configuration de strmctl et de la console:
// valeurs par défaut, fichier YAML optionnel puis variables STRMSYNC_*.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/Guilhem-Bonnet/strmsync-console/internal/validation"
)

const (
	EnvPrefix     = "STRMSYNC_"
	ConfigPathEnv = "STRMSYNC_CONFIG"
)

var DefaultConfigPaths = []string{
	"strmsync.yaml",
	"strmsync.yml",
}

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Console ConsoleConfig `koanf:"console"`
	Store   StoreConfig   `koanf:"store"`
	Poll    PollConfig    `koanf:"poll"`
	Logs    LogsConfig    `koanf:"logs"`
	Logging LoggingConfig `koanf:"logging"`
}

// ServerConfig décrit le backend strmsync (API /api/v1).
type ServerConfig struct {
	URL               string        `koanf:"url" validate:"required,http_url"`
	Timeout           time.Duration `koanf:"timeout" validate:"min=1s"`
	RequestsPerSecond float64       `koanf:"requests_per_second" validate:"gt=0"`
	Burst             int           `koanf:"burst" validate:"min=1"`
}

type ConsoleConfig struct {
	Addr              string   `koanf:"addr" validate:"required,hostname_port"`
	AllowedOrigins    []string `koanf:"allowed_origins" validate:"dive,http_url"`
	RequestsPerMinute int      `koanf:"requests_per_minute" validate:"min=0"`
}

type StoreConfig struct {
	Path string `koanf:"path" validate:"required"`
}

type PollConfig struct {
	StatusInterval  time.Duration `koanf:"status_interval" validate:"min=1s"`
	StatsInterval   time.Duration `koanf:"stats_interval" validate:"min=1s"`
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"min=1s"`
	RefreshTimeout  time.Duration `koanf:"refresh_timeout" validate:"min=1s"`
}

type LogsConfig struct {
	BufferSize     int           `koanf:"buffer_size" validate:"min=1"`
	ReconnectDelay time.Duration `koanf:"reconnect_delay" validate:"min=100ms"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:               "http://127.0.0.1:8000",
			Timeout:           15 * time.Second,
			RequestsPerSecond: 10,
			Burst:             20,
		},
		Console: ConsoleConfig{Addr: "127.0.0.1:8090", RequestsPerMinute: 600},
		Store:   StoreConfig{Path: defaultStorePath()},
		Poll: PollConfig{
			StatusInterval:  5 * time.Second,
			StatsInterval:   5 * time.Second,
			RefreshInterval: 3 * time.Second,
			RefreshTimeout:  5 * time.Minute,
		},
		Logs: LogsConfig{
			BufferSize:     500,
			ReconnectDelay: 5 * time.Second,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

func defaultStorePath() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "strmsync", "console.db")
	}
	return "strmsync-console.db"
}

// Load applique dans l'ordre: défauts, fichier (path, sinon STRMSYNC_CONFIG,
// sinon strmsync.yaml s'il existe), variables d'environnement.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Server.URL = strings.TrimRight(strings.TrimSpace(cfg.Server.URL), "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envMappings associe STRMSYNC_<X> à une clé koanf. Les noms de section
// contiennent des "_", on ne peut donc pas découper mécaniquement.
var envMappings = map[string]string{
	"server_url":                  "server.url",
	"server_timeout":              "server.timeout",
	"server_requests_per_second":  "server.requests_per_second",
	"server_burst":                "server.burst",
	"console_addr":                "console.addr",
	"console_allowed_origins":     "console.allowed_origins",
	"console_requests_per_minute": "console.requests_per_minute",
	"store_path":                  "store.path",
	"db_path":                     "store.path",
	"poll_status_interval":        "poll.status_interval",
	"poll_stats_interval":         "poll.stats_interval",
	"poll_refresh_interval":       "poll.refresh_interval",
	"poll_refresh_timeout":        "poll.refresh_timeout",
	"logs_buffer_size":            "logs.buffer_size",
	"logs_reconnect_delay":        "logs.reconnect_delay",
	"log_level":                   "logging.level",
	"log_format":                  "logging.format",
}

func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	// STRMSYNC_CONFIG et inconnues: ignorées
	return ""
}

// envValue découpe les listes ("a,b") en []string.
func envValue(key, value string) (string, any) {
	mapped := envTransform(key)
	if mapped == "console.allowed_origins" {
		var out []string
		for _, v := range strings.Split(value, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
		return mapped, out
	}
	return mapped, value
}

// Overrides porte les valeurs passées en flags: elles passent devant le
// fichier et l'environnement. Les champs vides sont ignorés.
type Overrides struct {
	Server   string
	Addr     string
	DB       string
	LogLevel string
}

func (c *Config) Apply(o Overrides) error {
	if o.Server != "" {
		c.Server.URL = strings.TrimRight(strings.TrimSpace(o.Server), "/")
	}
	if o.Addr != "" {
		c.Console.Addr = o.Addr
	}
	if o.DB != "" {
		c.Store.Path = o.DB
	}
	if o.LogLevel != "" {
		c.Logging.Level = strings.ToLower(o.LogLevel)
	}
	return c.Validate()
}
