package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config captures module-level configuration knobs. Feature packages (storage,
// realtime, cluster relay, auth) pull from these nested structs.
type Config struct {
	Server        ServerConfig        `mapstructure:"server" json:"server"`
	Database      DatabaseConfig      `mapstructure:"database" json:"database"`
	Realtime      RealtimeConfig      `mapstructure:"realtime" json:"realtime"`
	Cluster       ClusterConfig       `mapstructure:"cluster" json:"cluster"`
	Auth          AuthConfig          `mapstructure:"auth" json:"auth"`
	Notifications NotificationsConfig `mapstructure:"notifications" json:"notifications"`
	Logging       LoggingConfig       `mapstructure:"logging" json:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" json:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" json:"shutdown_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
}

// DatabaseConfig selects the store. Memory keeps everything in process.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" json:"driver"`
	DSN          string `mapstructure:"dsn" json:"dsn"`
	ConnectRetry int    `mapstructure:"connect_retry" json:"connect_retry"`
	CreateSchema bool   `mapstructure:"create_schema" json:"create_schema"`
}

// RealtimeConfig tunes the websocket connection handler.
type RealtimeConfig struct {
	QueueSize      int           `mapstructure:"queue_size" json:"queue_size"`
	MaxMessageSize int64         `mapstructure:"max_message_size" json:"max_message_size"`
	PongWait       time.Duration `mapstructure:"pong_wait" json:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait" json:"write_wait"`
}

// ClusterConfig enables the NATS relay so every instance sees every broadcast.
type ClusterConfig struct {
	Enabled       bool   `mapstructure:"enabled" json:"enabled"`
	NATSURL       string `mapstructure:"nats_url" json:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix" json:"subject_prefix"`
}

// AuthConfig holds the session token settings.
type AuthConfig struct {
	Secret     string        `mapstructure:"secret" json:"secret"`
	Issuer     string        `mapstructure:"issuer" json:"issuer"`
	CookieName string        `mapstructure:"cookie_name" json:"cookie_name"`
	TokenTTL   time.Duration `mapstructure:"token_ttl" json:"token_ttl"`
}

// NotificationsConfig controls notification listings.
type NotificationsConfig struct {
	RecentLimit int `mapstructure:"recent_limit" json:"recent_limit"`
}

// LoggingConfig selects level and output format.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level"`
	Pretty bool   `mapstructure:"pretty" json:"pretty"`
}

// Defaults returns the baseline configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 10 * time.Second,
			ReadTimeout:     15 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       DriverMemory,
			ConnectRetry: 5,
			CreateSchema: true,
		},
		Realtime: RealtimeConfig{
			QueueSize:      256,
			MaxMessageSize: 4096,
			PongWait:       60 * time.Second,
			WriteWait:      10 * time.Second,
		},
		Cluster: ClusterConfig{
			NATSURL:       "nats://127.0.0.1:4222",
			SubjectPrefix: "social.groups",
		},
		Auth: AuthConfig{
			Issuer:     "go-social",
			CookieName: "session",
			TokenTTL:   24 * time.Hour,
		},
		Notifications: NotificationsConfig{
			RecentLimit: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Validate ensures required fields are present and sane.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverMemory:
	case DriverSQLite, DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %s", c.Database.Driver)
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Database.ConnectRetry < 0 {
		return fmt.Errorf("database.connect_retry must be >= 0")
	}
	if c.Auth.Secret == "" {
		return errors.New("auth.secret is required")
	}
	if c.Realtime.QueueSize <= 0 {
		return fmt.Errorf("realtime.queue_size must be > 0")
	}
	if c.Realtime.PongWait <= 0 || c.Realtime.WriteWait <= 0 {
		return fmt.Errorf("realtime waits must be > 0")
	}
	if c.Cluster.Enabled && c.Cluster.NATSURL == "" {
		return errors.New("cluster.nats_url is required when cluster is enabled")
	}
	if c.Notifications.RecentLimit <= 0 {
		return fmt.Errorf("notifications.recent_limit must be > 0")
	}
	return nil
}

// Load decodes arbitrary input (struct, map, cfg struct) using cfgx helpers.
// When cfgx.Build yields a zero value we fall back to a lightweight decoder.
func Load(input any, opts ...LoadOption) (Config, error) {
	settings := loadOptions{}
	for _, opt := range opts {
		opt(&settings)
	}

	cfg, err := cfgx.Build(input, settings.buildOpts...)
	if err != nil {
		return Config{}, err
	}

	if isZero(cfg) {
		if err := decodeFallback(input, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg = cfg.withDefaults()

	if settings.env != nil {
		if cfg, err = applyEnv(cfg, settings.env); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadOption lets callers amend cfgx build options.
type LoadOption func(*loadOptions)

type loadOptions struct {
	buildOpts []cfgx.Option[Config]
	env       func(string) (string, bool)
}

// WithBuildOptions forwards cfgx options (duration hooks, preprocessors, etc.).
func WithBuildOptions(opts ...cfgx.Option[Config]) LoadOption {
	return func(lo *loadOptions) {
		lo.buildOpts = append(lo.buildOpts, opts...)
	}
}

// WithEnv applies SOCIAL_* overrides read through lookup (os.LookupEnv in
// production) after defaults are filled.
func WithEnv(lookup func(string) (string, bool)) LoadOption {
	return func(lo *loadOptions) {
		lo.env = lookup
	}
}

func (c Config) withDefaults() Config {
	defaults := Defaults()

	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Database.Driver == "" {
		c.Database.Driver = defaults.Database.Driver
		c.Database.CreateSchema = defaults.Database.CreateSchema
	}
	if c.Database.ConnectRetry == 0 {
		c.Database.ConnectRetry = defaults.Database.ConnectRetry
	}
	if c.Realtime.QueueSize == 0 {
		c.Realtime.QueueSize = defaults.Realtime.QueueSize
	}
	if c.Realtime.MaxMessageSize == 0 {
		c.Realtime.MaxMessageSize = defaults.Realtime.MaxMessageSize
	}
	if c.Realtime.PongWait == 0 {
		c.Realtime.PongWait = defaults.Realtime.PongWait
	}
	if c.Realtime.WriteWait == 0 {
		c.Realtime.WriteWait = defaults.Realtime.WriteWait
	}
	if c.Cluster.NATSURL == "" {
		c.Cluster.NATSURL = defaults.Cluster.NATSURL
	}
	if c.Cluster.SubjectPrefix == "" {
		c.Cluster.SubjectPrefix = defaults.Cluster.SubjectPrefix
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = defaults.Auth.Issuer
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = defaults.Auth.CookieName
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = defaults.Auth.TokenTTL
	}
	if c.Notifications.RecentLimit == 0 {
		c.Notifications.RecentLimit = defaults.Notifications.RecentLimit
	}
	if c.Logging.Level == "" {
		c.Logging.Level = defaults.Logging.Level
	}
	return c
}

func isZero(cfg Config) bool {
	return reflect.DeepEqual(cfg, Config{})
}

func decodeFallback(input any, cfg *Config) error {
	switch v := input.(type) {
	case nil:
		return nil
	case Config:
		*cfg = v
		return nil
	case *Config:
		if v != nil {
			*cfg = *v
		}
		return nil
	case map[string]any:
		return decodeMap(v, cfg)
	default:
		return fmt.Errorf("unsupported config input type: %T", input)
	}
}

func decodeMap(input map[string]any, cfg *Config) error {
	if input == nil {
		return nil
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, cfg)
}
