package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "CATALOG"

	BackendFile     = "file"
	BackendPostgres = "postgres"

	DefaultDataFile     = "products.dat"
	DefaultSnapshotName = "default"
	DefaultLogLevel     = "warn"
	DefaultPort         = "8082"
	DefaultOperatorName = "admin"
	DefaultTokenTTL     = 15 * time.Minute

	minJWTSecretLen = 32
)

var ErrServeConfig = errors.New("serve config")

type Config struct {
	DataFile     string `mapstructure:"data_file"     validate:"required_if=Backend file"`
	Backend      string `mapstructure:"backend"       validate:"oneof=file postgres"`
	DatabaseURL  string `mapstructure:"database_url"  validate:"required_if=Backend postgres"`
	SnapshotName string `mapstructure:"snapshot_name" validate:"required"`
	Strict       bool   `mapstructure:"strict"`
	LogLevel     string `mapstructure:"log_level"     validate:"oneof=debug info warn error"`

	Port                 string        `mapstructure:"port"                   validate:"required,numeric"`
	JWTSecret            string        `mapstructure:"jwt_secret"`
	OperatorName         string        `mapstructure:"operator_name"          validate:"required"`
	OperatorPasswordHash string        `mapstructure:"operator_password_hash"`
	TokenTTL             time.Duration `mapstructure:"token_ttl"              validate:"gt=0"`
	MetricsEnabled       bool          `mapstructure:"metrics_enabled"`
	MetricsToken         string        `mapstructure:"metrics_token"`
}

var keys = []string{
	"data_file", "backend", "database_url", "snapshot_name", "strict", "log_level",
	"port", "jwt_secret", "operator_name", "operator_password_hash", "token_ttl",
	"metrics_enabled", "metrics_token",
}

// New returns a viper instance with defaults and CATALOG_* env binding. Flags
// are bound by the CLI on top of it.
func New() *viper.Viper {
	v := viper.NewWithOptions(
		viper.KeyDelimiter("."),
		viper.EnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_")),
	)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	v.SetDefault("data_file", DefaultDataFile)
	v.SetDefault("backend", BackendFile)
	v.SetDefault("database_url", "")
	v.SetDefault("snapshot_name", DefaultSnapshotName)
	v.SetDefault("strict", false)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("port", DefaultPort)
	v.SetDefault("jwt_secret", "")
	v.SetDefault("operator_name", DefaultOperatorName)
	v.SetDefault("operator_password_hash", "")
	v.SetDefault("token_ttl", DefaultTokenTTL)
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("metrics_token", "")

	return v
}

// Load reads the optional config file, decodes everything into Config and
// validates it.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{}
	hooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(hooks)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// ValidateServe adds the checks only the HTTP server needs.
func (c *Config) ValidateServe() error {
	if len(c.JWTSecret) < minJWTSecretLen {
		return fmt.Errorf("%w: jwt_secret must be at least %d chars", ErrServeConfig, minJWTSecretLen)
	}
	return nil
}

// Location describes where snapshots go, for user-facing messages.
func (c *Config) Location() string {
	if c.Backend == BackendPostgres {
		return fmt.Sprintf("postgres (%s, snapshot %q)", maskURL(c.DatabaseURL), c.SnapshotName)
	}
	return c.DataFile
}

func maskURL(url string) string {
	if url == "" {
		return "<not configured>"
	}
	if _, host, ok := strings.Cut(url, "@"); ok {
		return "****@" + host
	}
	return "****"
}
