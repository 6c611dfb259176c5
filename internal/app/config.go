package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Поддерживаемые драйверы хранилища заказов и каталога.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки приложения витрины.
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Storage StorageConfig `mapstructure:"storage"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Kafka   KafkaConfig   `mapstructure:"kafka"`
	Payment PaymentConfig `mapstructure:"payment"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Outbox  OutboxConfig  `mapstructure:"outbox"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type StorageConfig struct {
	Driver      string `mapstructure:"driver"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
}

type PaymentConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

// DefaultConfig возвращает конфигурацию для локального запуска в памяти.
func DefaultConfig() Config {
	return Config{
		HTTP:    HTTPConfig{Addr: ":8080"},
		Metrics: MetricsConfig{Addr: ":9090"},
		Storage: StorageConfig{
			Driver:      StorageDriverMemory,
			AutoMigrate: true,
		},
		Redis: RedisConfig{Addr: ""},
		SMTP:  SMTPConfig{Port: 587},
		Outbox: OutboxConfig{
			PollInterval: time.Second,
			BatchSize:    100,
			MaxAttempts:  3,
		},
	}
}

// LoadConfig читает конфигурацию из YAML-файла и переменных окружения
// с префиксом STOREFRONT_. Пустой путь — только defaults и окружение.
func LoadConfig(configPath string) (Config, error) {
	v := viper.New()

	cfg := DefaultConfig()
	v.SetDefault("http.addr", cfg.HTTP.Addr)
	v.SetDefault("metrics.addr", cfg.Metrics.Addr)
	v.SetDefault("storage.driver", cfg.Storage.Driver)
	v.SetDefault("storage.auto_migrate", cfg.Storage.AutoMigrate)
	v.SetDefault("smtp.port", cfg.SMTP.Port)
	v.SetDefault("outbox.poll_interval", cfg.Outbox.PollInterval)
	v.SetDefault("outbox.batch_size", cfg.Outbox.BatchSize)
	v.SetDefault("outbox.max_attempts", cfg.Outbox.MaxAttempts)

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var loaded Config
	if err := v.Unmarshal(&loaded); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := loaded.validate(); err != nil {
		return Config{}, err
	}
	return loaded, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if c.Storage.PostgresDSN == "" {
			return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
