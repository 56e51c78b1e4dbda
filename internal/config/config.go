package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "TALENT"

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	NotifierLog  = "log"
	NotifierHTTP = "http"
	NotifierAMQP = "amqp"
)

type Config struct {
	App          AppConfig          `mapstructure:"app"`
	Log          LogConfig          `mapstructure:"log"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Store        StoreConfig        `mapstructure:"store"`
	Selection    SelectionConfig    `mapstructure:"selection"`
	Analytics    AnalyticsConfig    `mapstructure:"analytics"`
	Notification NotificationConfig `mapstructure:"notification"`
}

type AppConfig struct {
	AppName     string `mapstructure:"name"`
	Environment string `mapstructure:"env"`
	HTTPPort    string `mapstructure:"http_port"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

type DatabaseConfig struct {
	DBHost     string `mapstructure:"host"`
	DBPort     string `mapstructure:"port"`
	DBName     string `mapstructure:"name"`
	DBUser     string `mapstructure:"user"`
	DBPassword string `mapstructure:"password"`
	DBSSLMode  string `mapstructure:"ssl_mode"`

	ConnectTimeout        time.Duration `mapstructure:"connect_timeout"`
	PoolMaxConns          int32         `mapstructure:"pool_max_conns"`
	PoolMinConns          int32         `mapstructure:"pool_min_conns"`
	PoolMaxConnLifetime   time.Duration `mapstructure:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `mapstructure:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `mapstructure:"pool_health_check_period"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type StoreConfig struct {
	Driver       string `mapstructure:"driver"`
	SnapshotPath string `mapstructure:"snapshot_path"`
}

type SelectionConfig struct {
	Threshold int `mapstructure:"threshold"`
}

type AnalyticsConfig struct {
	FreezeTimeToHire bool `mapstructure:"freeze_time_to_hire"`
}

type NotificationConfig struct {
	Driver      string        `mapstructure:"driver"`
	URL         string        `mapstructure:"url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	QueueSize   int           `mapstructure:"queue_size"`
	Workers     int           `mapstructure:"workers"`
	RatePerSec  float64       `mapstructure:"rate_per_second"`
	Burst       int           `mapstructure:"burst"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Breaker     BreakerConfig `mapstructure:"breaker"`
	AMQP        AMQPConfig    `mapstructure:"amqp"`
}

type BreakerConfig struct {
	MaxRequests         uint32        `mapstructure:"max_requests"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures uint32        `mapstructure:"consecutive_failures"`
}

type AMQPConfig struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

var (
	errMissingRequiredEnv = errors.New("missing required configuration")
	errInvalidConfig      = errors.New("invalid configuration")
)

// legacyEnv keeps the plain deployment variable names working next to the
// prefixed ones.
var legacyEnv = map[string]string{
	"app.name":          "APP_NAME",
	"app.env":           "APP_ENV",
	"app.http_port":     "HTTP_PORT",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.name":     "DB_NAME",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
	"database.ssl_mode": "DB_SSL_MODE",
	"redis.host":        "REDIS_HOST",
	"redis.port":        "REDIS_PORT",
	"redis.password":    "REDIS_PASSWORD",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "talent-track")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.connect_timeout", 5*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 10*time.Minute)

	v.SetDefault("store.driver", StoreMemory)
	v.SetDefault("store.snapshot_path", "talent-track.json")

	v.SetDefault("selection.threshold", 75)
	v.SetDefault("analytics.freeze_time_to_hire", false)

	v.SetDefault("notification.driver", NotifierLog)
	v.SetDefault("notification.url", "")
	v.SetDefault("notification.timeout", 5*time.Second)
	v.SetDefault("notification.queue_size", 256)
	v.SetDefault("notification.workers", 2)
	v.SetDefault("notification.rate_per_second", 5.0)
	v.SetDefault("notification.burst", 5)
	v.SetDefault("notification.max_attempts", 1)
	v.SetDefault("notification.breaker.max_requests", 1)
	v.SetDefault("notification.breaker.interval", time.Minute)
	v.SetDefault("notification.breaker.timeout", 30*time.Second)
	v.SetDefault("notification.breaker.consecutive_failures", 5)
	v.SetDefault("notification.amqp.url", "")
	v.SetDefault("notification.amqp.queue", "talent.notifications")
}

// New builds the viper instance every command reads from. An empty path
// searches talent-track.yaml in the working directory; a missing file is not
// an error.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("talent-track")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.App.AppName = strings.TrimSpace(c.App.AppName)
	c.App.HTTPPort = strings.TrimSpace(c.App.HTTPPort)
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Notification.Driver = strings.ToLower(strings.TrimSpace(c.Notification.Driver))
	if c.Notification.MaxAttempts < 1 {
		c.Notification.MaxAttempts = 1
	}
	if c.Notification.Workers < 1 {
		c.Notification.Workers = 1
	}
}

func (c Config) Validate() error {
	var missing []string
	req := func(key, value string) {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}

	req("app.name", c.App.AppName)
	req("app.http_port", c.App.HTTPPort)

	switch c.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		req("database.host", c.Database.DBHost)
		req("database.port", c.Database.DBPort)
		req("database.name", c.Database.DBName)
		req("database.user", c.Database.DBUser)
	default:
		return fmt.Errorf("%w: store.driver %q", errInvalidConfig, c.Store.Driver)
	}

	switch c.Notification.Driver {
	case NotifierLog:
	case NotifierHTTP:
		req("notification.url", c.Notification.URL)
	case NotifierAMQP:
		req("notification.amqp.url", c.Notification.AMQP.URL)
		req("notification.amqp.queue", c.Notification.AMQP.Queue)
	default:
		return fmt.Errorf("%w: notification.driver %q", errInvalidConfig, c.Notification.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	if _, err := strconv.Atoi(strings.TrimPrefix(c.App.HTTPPort, ":")); err != nil {
		return fmt.Errorf("%w: app.http_port %q", errInvalidConfig, c.App.HTTPPort)
	}
	if c.Selection.Threshold < 50 || c.Selection.Threshold > 100 {
		return fmt.Errorf("%w: selection.threshold %d not in [50,100]", errInvalidConfig, c.Selection.Threshold)
	}
	return nil
}
