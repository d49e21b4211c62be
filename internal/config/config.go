package config

import (
	"bytes"
	_ "embed"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig      `mapstructure:"http"`
	Log        LogConfig       `mapstructure:"log"`
	MySQL      DatabaseConfig  `mapstructure:"mysql"`
	ClickHouse DatabaseConfig  `mapstructure:"clickhouse"`
	Redis      RedisConfig     `mapstructure:"redis"`
	Kafka      KafkaConfig     `mapstructure:"kafka"`
	Provider   ProviderConfig  `mapstructure:"provider"`
	Poll       PollConfig      `mapstructure:"poll"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"` // debug|info|warn|error
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// ProviderConfig points at the scoring API.
type ProviderConfig struct {
	BaseURL      string `mapstructure:"base_url"`      // uat and default
	ProdBaseURL  string `mapstructure:"prod_base_url"` // empty => base_url
	APIKey       string `mapstructure:"api_key"`
	ServerSecret string `mapstructure:"server_secret"`
	Version      string `mapstructure:"version"`
	TimeoutMs    int    `mapstructure:"timeout_ms"`
}

type PollConfig struct {
	Budget   time.Duration `mapstructure:"budget"`
	Interval time.Duration `mapstructure:"interval"`
}

type RateLimitConfig struct {
	RPS int `mapstructure:"rps"`
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (INSGW_*).
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		_ = v.MergeInConfig()
	}

	// env override (INSGW_*), nested keys joined with underscores:
	// INSGW_PROVIDER_API_KEY, INSGW_MYSQL_DSN, ...
	v.SetEnvPrefix("INSGW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
