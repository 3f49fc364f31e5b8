package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "SOCIAL_"

type envBinding struct {
	name  string
	apply func(c *Config, raw string) error
}

func stringVar(dst func(*Config) *string) func(*Config, string) error {
	return func(c *Config, raw string) error {
		*dst(c) = raw
		return nil
	}
}

func boolVar(dst func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, raw string) error {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		*dst(c) = v
		return nil
	}
}

func durationVar(dst func(*Config) *time.Duration) func(*Config, string) error {
	return func(c *Config, raw string) error {
		v, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		*dst(c) = v
		return nil
	}
}

var envBindings = []envBinding{
	{"SERVER_ADDR", stringVar(func(c *Config) *string { return &c.Server.Addr })},
	{"SERVER_SHUTDOWN_TIMEOUT", durationVar(func(c *Config) *time.Duration { return &c.Server.ShutdownTimeout })},
	{"DATABASE_DRIVER", stringVar(func(c *Config) *string { return &c.Database.Driver })},
	{"DATABASE_DSN", stringVar(func(c *Config) *string { return &c.Database.DSN })},
	{"DATABASE_CREATE_SCHEMA", boolVar(func(c *Config) *bool { return &c.Database.CreateSchema })},
	{"CLUSTER_ENABLED", boolVar(func(c *Config) *bool { return &c.Cluster.Enabled })},
	{"CLUSTER_NATS_URL", stringVar(func(c *Config) *string { return &c.Cluster.NATSURL })},
	{"AUTH_SECRET", stringVar(func(c *Config) *string { return &c.Auth.Secret })},
	{"AUTH_TOKEN_TTL", durationVar(func(c *Config) *time.Duration { return &c.Auth.TokenTTL })},
	{"LOG_LEVEL", stringVar(func(c *Config) *string { return &c.Logging.Level })},
	{"LOG_PRETTY", boolVar(func(c *Config) *bool { return &c.Logging.Pretty })},
}

func applyEnv(cfg Config, lookup func(string) (string, bool)) (Config, error) {
	for _, b := range envBindings {
		raw, ok := lookup(EnvPrefix + b.name)
		if !ok || raw == "" {
			continue
		}
		if err := b.apply(&cfg, raw); err != nil {
			return Config{}, fmt.Errorf("%s%s: %w", EnvPrefix, b.name, err)
		}
	}
	return cfg, nil
}
