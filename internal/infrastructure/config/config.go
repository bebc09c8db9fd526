package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Supported lock backends
const (
	LockBackendMemory    = "memory"
	LockBackendRedis     = "redis"
	LockBackendZookeeper = "zookeeper"
)

// Supported event publishers
const (
	PublisherMemory = "memory"
	PublisherKafka  = "kafka"
)

// Config is the whole application configuration. Every key can be set in
// config.toml or overridden by CHSYNC_<SECTION>_<KEY>.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Lock      LockConfig      `mapstructure:"lock"`
	Event     EventConfig     `mapstructure:"event"`
	Sync      SyncConfig      `mapstructure:"sync"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or file path
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// DatabaseConfig selects the driver and its connection settings. Host and
// friends apply to postgres and mysql, Path to sqlite.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"` // 0 picks the driver's default port
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	Path            string `mapstructure:"path"` // ":memory:" allowed
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port for the redis client
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LockConfig selects the per-order lock backend
type LockConfig struct {
	Backend          string        `mapstructure:"backend"`
	KeyPrefix        string        `mapstructure:"key_prefix"`
	TTL              time.Duration `mapstructure:"ttl"` // redis only; not renewed while held
	Wait             time.Duration `mapstructure:"wait"`
	ZookeeperServers []string      `mapstructure:"zookeeper_servers"`
	ZookeeperRoot    string        `mapstructure:"zookeeper_root"`
	ZookeeperTimeout time.Duration `mapstructure:"zookeeper_timeout"`
}

// EventConfig selects where domain events go after a sync commits
type EventConfig struct {
	Publisher    string        `mapstructure:"publisher"`
	KafkaBrokers []string      `mapstructure:"kafka_brokers"`
	KafkaTopic   string        `mapstructure:"kafka_topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type SyncConfig struct {
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
	StrictBatch      bool          `mapstructure:"strict_batch"`
	OrderLockWait    time.Duration `mapstructure:"order_lock_wait"` // 0 means lock.wait
}

type JWTConfig struct {
	Secret                string        `mapstructure:"secret"`
	Issuer                string        `mapstructure:"issuer"`
	AccessTokenExpiration time.Duration `mapstructure:"access_token_expiration"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes"`
	TrustedProxies  []string      `mapstructure:"trusted_proxies"`
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
	MetricsInterval   time.Duration `mapstructure:"metrics_interval"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// defaults registers every key, so each one can be overridden from the
// environment even when config.toml does not mention it.
var defaults = map[string]any{
	"app.name": "channelsync",
	"app.env":  "development",
	"app.port": "8080",

	"database.driver":             DriverPostgres,
	"database.host":               "localhost",
	"database.port":               0,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "channelsync",
	"database.sslmode":            "disable",
	"database.path":               "channelsync.db",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"lock.backend":           LockBackendMemory,
	"lock.key_prefix":        "channelsync:lock:",
	"lock.ttl":               30 * time.Second,
	"lock.wait":              5 * time.Second,
	"lock.zookeeper_servers": []string{"localhost:2181"},
	"lock.zookeeper_root":    "/channelsync/locks",
	"lock.zookeeper_timeout": 10 * time.Second,

	"event.publisher":     PublisherMemory,
	"event.kafka_brokers": []string{},
	"event.kafka_topic":   "channelsync.sales-order-events",
	"event.write_timeout": 10 * time.Second,

	"sync.batch_concurrency": 4,
	"sync.strict_batch":      false,
	"sync.order_lock_wait":   time.Duration(0),

	"jwt.secret":                  "",
	"jwt.issuer":                  "channelsync",
	"jwt.access_token_expiration": 15 * time.Minute,

	"log.level":  "info",
	"log.format": "json",
	"log.output": "stdout",

	"http.read_timeout":     30 * time.Second,
	"http.write_timeout":    30 * time.Second,
	"http.idle_timeout":     120 * time.Second,
	"http.shutdown_timeout": 10 * time.Second,
	"http.max_header_bytes": 1 << 20,
	"http.trusted_proxies":  []string{},

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "channelsync",
	"telemetry.insecure":                false,
	"telemetry.metrics_enabled":         false,
	"telemetry.metrics_interval":        60 * time.Second,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
}

// Load reads config.toml from the default search paths and the environment.
// Environment variables win over the file, the file over the defaults.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path falls back
// to searching for config.toml.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/channelsync")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("CHSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.resolve()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolve fills the settings whose default depends on another setting
func (c *Config) resolve() {
	if c.Database.Port == 0 {
		c.Database.Port = 5432
		if c.Database.Driver == DriverMySQL {
			c.Database.Port = 3306
		}
	}
	if c.Sync.OrderLockWait == 0 {
		c.Sync.OrderLockWait = c.Lock.Wait
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("database.driver must be one of postgres, mysql, sqlite; got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	switch c.Lock.Backend {
	case LockBackendMemory, LockBackendRedis, LockBackendZookeeper:
	default:
		return fmt.Errorf("lock.backend must be one of memory, redis, zookeeper; got %q", c.Lock.Backend)
	}
	// A redis lease is never renewed, so it has to outlive the wait plus a sync
	if c.Lock.Backend == LockBackendRedis && c.Lock.TTL <= c.Sync.OrderLockWait {
		return fmt.Errorf("lock.ttl (%s) must exceed sync.order_lock_wait (%s) for the redis backend",
			c.Lock.TTL, c.Sync.OrderLockWait)
	}

	switch c.Event.Publisher {
	case PublisherMemory:
	case PublisherKafka:
		if len(c.Event.KafkaBrokers) == 0 {
			return fmt.Errorf("event.kafka_brokers is required when event.publisher is kafka")
		}
	default:
		return fmt.Errorf("event.publisher must be one of memory, kafka; got %q", c.Event.Publisher)
	}

	if c.Sync.BatchConcurrency < 1 {
		return fmt.Errorf("sync.batch_concurrency must be at least 1")
	}

	if c.App.Env == "production" {
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Driver == DriverSQLite {
			return fmt.Errorf("database.driver sqlite is not allowed in production")
		}
		if c.Lock.Backend == LockBackendMemory {
			return fmt.Errorf("lock.backend memory is not allowed in production")
		}
		if c.Telemetry.DBLogFullSQL {
			return fmt.Errorf("telemetry.db_log_full_sql must be false in production")
		}
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// DSN returns the driver-specific connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	switch d.Driver {
	case DriverMySQL:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.User, d.Password, d.Host, d.Port, d.DBName)
	case DriverSQLite:
		return d.Path
	default:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(d.User, d.Password),
			Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
			Path:   d.DBName,
		}
		q := u.Query()
		q.Set("sslmode", d.SSLMode)
		u.RawQuery = q.Encode()
		return u.String()
	}
}
