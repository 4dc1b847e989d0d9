package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	MySQL   MySQLConfig   `yaml:"mysql"`
	Redis   RedisConfig   `yaml:"redis"`
	JWT     JWTConfig     `yaml:"jwt"`
	Auth    AuthConfig    `yaml:"auth"`
	Kafka   KafkaConfig   `yaml:"kafka"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	Relay   RelayConfig   `yaml:"relay"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"OWS_SERVER_ADDR"`
	Mode string `yaml:"mode" env:"OWS_SERVER_MODE"` // debug / release / test
}

type StorageConfig struct {
	Driver string `yaml:"driver" env:"OWS_STORAGE_DRIVER"` // mysql / memory
}

type MySQLConfig struct {
	DSN             string        `yaml:"dsn" env:"OWS_MYSQL_DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"OWS_MYSQL_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"OWS_MYSQL_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"OWS_MYSQL_CONN_MAX_LIFETIME"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"OWS_MYSQL_AUTO_MIGRATE"`
}

// RedisConfig Addr 为空时会话与锁退回进程内实现
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"OWS_REDIS_ADDR"`
	Password string `yaml:"password" env:"OWS_REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"OWS_REDIS_DB"`
}

type JWTConfig struct {
	AccessSecret  string        `yaml:"access_secret" env:"OWS_JWT_ACCESS_SECRET"`
	RefreshSecret string        `yaml:"refresh_secret" env:"OWS_JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"OWS_JWT_ACCESS_TTL"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"OWS_JWT_REFRESH_TTL"`
}

type AuthConfig struct {
	// AdminEmails 用这些邮箱注册的账号直接成为管理员
	AdminEmails []string `yaml:"admin_emails" env:"OWS_AUTH_ADMIN_EMAILS"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled" env:"OWS_KAFKA_ENABLED"`
	Brokers []string `yaml:"brokers" env:"OWS_KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"OWS_KAFKA_TOPIC"`
}

// SMTPConfig Host 为空表示不发邮件
type SMTPConfig struct {
	Host     string `yaml:"host" env:"OWS_SMTP_HOST"`
	Port     int    `yaml:"port" env:"OWS_SMTP_PORT"`
	User     string `yaml:"user" env:"OWS_SMTP_USER"`
	Password string `yaml:"password" env:"OWS_SMTP_PASSWORD"`
	From     string `yaml:"from" env:"OWS_SMTP_FROM"`
}

type RelayConfig struct {
	Interval  time.Duration `yaml:"interval" env:"OWS_RELAY_INTERVAL"`
	BatchSize int           `yaml:"batch_size" env:"OWS_RELAY_BATCH_SIZE"`
	MaxRetry  int           `yaml:"max_retry" env:"OWS_RELAY_MAX_RETRY"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"OWS_LOG_LEVEL"`   // debug / info / warn / error
	Format string `yaml:"format" env:"OWS_LOG_FORMAT"` // json / console
}

// Load 读取 yaml 配置，再用环境变量覆盖；path 为空时只使用环境变量
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverMySQL
	}
	if c.MySQL.MaxOpenConns == 0 {
		c.MySQL.MaxOpenConns = 20
	}
	if c.MySQL.MaxIdleConns == 0 {
		c.MySQL.MaxIdleConns = 10
	}
	if c.MySQL.ConnMaxLifetime == 0 {
		c.MySQL.ConnMaxLifetime = time.Hour
	}
	if c.JWT.AccessTTL == 0 {
		c.JWT.AccessTTL = 30 * time.Minute
	}
	if c.JWT.RefreshTTL == 0 {
		c.JWT.RefreshTTL = 24 * time.Hour
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "spot.approved"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.From == "" {
		c.SMTP.From = c.SMTP.User
	}
	if c.Relay.Interval == 0 {
		c.Relay.Interval = 2 * time.Second
	}
	if c.Relay.BatchSize == 0 {
		c.Relay.BatchSize = 50
	}
	if c.Relay.MaxRetry == 0 {
		c.Relay.MaxRetry = 5
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	for i, email := range c.Auth.AdminEmails {
		c.Auth.AdminEmails[i] = strings.ToLower(strings.TrimSpace(email))
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case DriverMySQL:
		if c.MySQL.DSN == "" {
			errs = append(errs, errors.New("mysql.dsn is required for the mysql driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage.driver %q", c.Storage.Driver))
	}
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("jwt.access_secret and jwt.refresh_secret are required"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}
	if c.Relay.BatchSize < 0 || c.Relay.MaxRetry < 0 {
		errs = append(errs, errors.New("relay.batch_size and relay.max_retry must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, admin := range c.Auth.AdminEmails {
		if admin == email {
			return true
		}
	}
	return false
}
