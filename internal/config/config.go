package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pterm/pterm"
)

// Config holds every runtime setting, read from the environment and an
// optional .env file.
type Config struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	Ingest   IngestConfig
	GeoIP    GeoIPConfig

	// LogSources is a comma separated list of name:parser:path entries.
	LogSources   []string `env:"LOG_SOURCES" envSeparator:","`
	AutoDiscover bool     `env:"LOG_AUTO_DISCOVER" envDefault:"true"`
	// Explicit paths tried first by discovery
	CaddyLogPath   string `env:"CADDY_LOG_PATH"`
	TraefikLogPath string `env:"TRAEFIK_LOG_PATH"`

	UACacheSize int64 `env:"UA_CACHE_SIZE" envDefault:"10000"`
}

type ServerConfig struct {
	Host    string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port    int    `env:"SERVER_PORT" envDefault:"8080"`
	GinMode string `env:"GIN_MODE" envDefault:"release"`
}

// Addr returns host:port for the HTTP listener.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path            string        `env:"DB_PATH" envDefault:"weblynx.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLife     time.Duration `env:"DB_CONN_MAX_LIFE" envDefault:"1h"`
	RetentionDays   int           `env:"DB_RETENTION_DAYS" envDefault:"30"`
	CleanupInterval time.Duration `env:"DB_CLEANUP_INTERVAL" envDefault:"24h"`
}

type IngestConfig struct {
	BatchSize    int           `env:"INGEST_BATCH_SIZE" envDefault:"500"`
	BatchTimeout time.Duration `env:"INGEST_BATCH_TIMEOUT" envDefault:"2s"`
	PollInterval time.Duration `env:"INGEST_POLL_INTERVAL" envDefault:"1s"`
	Workers      int           `env:"INGEST_WORKERS" envDefault:"4"`
}

type GeoIPConfig struct {
	CityPath    string `env:"GEOIP_CITY_PATH"`
	CountryPath string `env:"GEOIP_COUNTRY_PATH"`
	ASNPath     string `env:"GEOIP_ASN_PATH"`
	CacheSize   int    `env:"GEOIP_CACHE_SIZE" envDefault:"10000"`
}

// SourceDefinition is one parsed LOG_SOURCES entry.
type SourceDefinition struct {
	Name       string
	ParserType string
	Path       string
}

// Load reads .env (a missing file is fine) and parses the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Join(ErrParsingConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges and the LOG_SOURCES syntax.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: SERVER_PORT=%d", ErrInvalidValue, c.Server.Port)
	}
	if c.Ingest.BatchSize <= 0 {
		return fmt.Errorf("%w: INGEST_BATCH_SIZE=%d", ErrInvalidValue, c.Ingest.BatchSize)
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("%w: INGEST_WORKERS=%d", ErrInvalidValue, c.Ingest.Workers)
	}
	if c.UACacheSize < 0 {
		return fmt.Errorf("%w: UA_CACHE_SIZE=%d", ErrInvalidValue, c.UACacheSize)
	}
	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("%w: DB_RETENTION_DAYS=%d", ErrInvalidValue, c.Database.RetentionDays)
	}

	_, err := c.Sources()
	return err
}

// Sources parses LogSources. Paths may contain ':' (Windows drive letters),
// so only the first two separators split.
func (c *Config) Sources() ([]SourceDefinition, error) {
	var sources []SourceDefinition
	for _, entry := range c.LogSources {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLogSource, entry)
		}

		sources = append(sources, SourceDefinition{
			Name:       parts[0],
			ParserType: parts[1],
			Path:       parts[2],
		})
	}
	return sources, nil
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger() *pterm.Logger {
	return pterm.DefaultLogger.WithLevel(ParseLogLevel(c.LogLevel))
}

// ParseLogLevel maps a level name to a pterm level. Unknown names map to info.
func ParseLogLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "fatal":
		return pterm.LogLevelFatal
	case "disabled", "off":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}
