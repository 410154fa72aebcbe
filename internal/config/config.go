package config

import (
	"fmt"
	"time"
)

// Config holds the application's configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Redis      RedisConfig      `mapstructure:"redis"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Postgres   PostgresConfig   `mapstructure:"postgres"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
}

type RedisConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Password     string   `mapstructure:"password"`
	DB           int      `mapstructure:"db"`
	PoolSize     int      `mapstructure:"pool_size"`
	MinIdleConns int      `mapstructure:"min_idle_conns"`
	DialTimeout  int      `mapstructure:"dial_timeout"`  // in seconds
	ReadTimeout  int      `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
}

type ClickHouseConfig struct {
	Addresses    []string `mapstructure:"addresses"`
	Database     string   `mapstructure:"database"`
	Username     string   `mapstructure:"username"`
	Password     string   `mapstructure:"password"`
	DialTimeout  int      `mapstructure:"dial_timeout"`  // in seconds
	QueryTimeout int      `mapstructure:"query_timeout"` // in seconds
	MaxOpenConns int      `mapstructure:"max_open_conns"`
	MaxIdleConns int      `mapstructure:"max_idle_conns"`
}

// QueryTimeoutDuration returns the bounded per-query timeout applied to every
// event-store read.
func (c *ClickHouseConfig) QueryTimeoutDuration() time.Duration {
	if c.QueryTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.QueryTimeout) * time.Second
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int    `mapstructure:"max_conns"`
	MinConns int    `mapstructure:"min_conns"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

type KafkaConfig struct {
	Brokers      []string `mapstructure:"brokers"`
	GroupID      string   `mapstructure:"group_id"`
	Workers      int      `mapstructure:"workers"`
	BatchSize    int      `mapstructure:"batch_size"`
	BatchTimeout int      `mapstructure:"batch_timeout"` // in milliseconds
	WriteTimeout int      `mapstructure:"write_timeout"` // in seconds
	ReadTimeout  int      `mapstructure:"read_timeout"`  // in seconds
	RequiredAcks int      `mapstructure:"required_acks"`
}

// RiskConfig holds operational tunables for the risk engine. Scoring weights
// and level thresholds are deliberately compile-time constants, not config:
// score(factors) must stay a pure deterministic function.
type RiskConfig struct {
	RecalcInterval      int `mapstructure:"recalc_interval"`       // in seconds, 0 = hourly default
	RecalcRetryInterval int `mapstructure:"recalc_retry_interval"` // in seconds, 0 = 5m default
	RecalcTopUsers      int `mapstructure:"recalc_top_users"`      // per-org users re-evaluated each cycle
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers must not be empty")
	}
	if len(c.Redis.Addresses) == 0 {
		return fmt.Errorf("redis.addresses must not be empty")
	}
	if len(c.ClickHouse.Addresses) == 0 {
		return fmt.Errorf("clickhouse.addresses must not be empty")
	}
	return nil
}
