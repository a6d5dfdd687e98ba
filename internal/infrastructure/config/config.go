package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Log      LogConfig
	Feed     FeedConfig
	Queue    QueueConfig
	Media    MediaConfig
	Storage  StorageConfig
	ERP      ERPConfig
	Ops      OpsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// FeedConfig holds vendor feed settings
type FeedConfig struct {
	URL          string
	FetchTimeout time.Duration
}

// QueueConfig holds queue lane settings
type QueueConfig struct {
	ImportWorkers     int
	ImportMaxAttempts int
	ImportTimeout     time.Duration
	MediaWorkers      int
	MediaMaxAttempts  int
	MediaTimeout      time.Duration
	MediaBackoff      time.Duration
	ERPMaxAttempts    int
	ERPBackoff        time.Duration
}

// MediaConfig holds media download settings
type MediaConfig struct {
	DownloadTimeout  time.Duration
	RatePerSecond    float64
	RateBurst        int
	MaxDownloadBytes int64
}

// StorageConfig holds S3-compatible object storage settings
type StorageConfig struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	PathStyle bool
}

// ERPConfig holds ERP queue naming
type ERPConfig struct {
	EventsQueue   string
	OrdersQueue   string
	UsersQueue    string
	IncomingQueue string
}

// OpsConfig holds the operator HTTP endpoint settings
type OpsConfig struct {
	Enabled bool
	Port    string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g. STOREFRONT_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Feed: FeedConfig{
			URL:          v.GetString("feed.url"),
			FetchTimeout: v.GetDuration("feed.fetch_timeout"),
		},
		Queue: QueueConfig{
			ImportWorkers:     v.GetInt("queue.import_workers"),
			ImportMaxAttempts: v.GetInt("queue.import_max_attempts"),
			ImportTimeout:     v.GetDuration("queue.import_timeout"),
			MediaWorkers:      v.GetInt("queue.media_workers"),
			MediaMaxAttempts:  v.GetInt("queue.media_max_attempts"),
			MediaTimeout:      v.GetDuration("queue.media_timeout"),
			MediaBackoff:      v.GetDuration("queue.media_backoff"),
			ERPMaxAttempts:    v.GetInt("queue.erp_max_attempts"),
			ERPBackoff:        v.GetDuration("queue.erp_backoff"),
		},
		Media: MediaConfig{
			DownloadTimeout:  v.GetDuration("media.download_timeout"),
			RatePerSecond:    v.GetFloat64("media.rate_per_second"),
			RateBurst:        v.GetInt("media.rate_burst"),
			MaxDownloadBytes: v.GetInt64("media.max_download_bytes"),
		},
		Storage: StorageConfig{
			Endpoint:  v.GetString("storage.endpoint"),
			Region:    v.GetString("storage.region"),
			Bucket:    v.GetString("storage.bucket"),
			AccessKey: v.GetString("storage.access_key"),
			SecretKey: v.GetString("storage.secret_key"),
			UseSSL:    v.GetBool("storage.use_ssl"),
			PathStyle: v.GetBool("storage.path_style"),
		},
		ERP: ERPConfig{
			EventsQueue:   v.GetString("erp.events_queue"),
			OrdersQueue:   v.GetString("erp.orders_queue"),
			UsersQueue:    v.GetString("erp.users_queue"),
			IncomingQueue: v.GetString("erp.incoming_queue"),
		},
		Ops: OpsConfig{
			Enabled: v.GetBool("ops.enabled"),
			Port:    v.GetString("ops.port"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "storefront"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Feed.FetchTimeout == 0 {
		cfg.Feed.FetchTimeout = 60 * time.Second
	}
	if cfg.Queue.ImportWorkers == 0 {
		cfg.Queue.ImportWorkers = 4
	}
	if cfg.Queue.ImportMaxAttempts == 0 {
		cfg.Queue.ImportMaxAttempts = 3
	}
	if cfg.Queue.ImportTimeout == 0 {
		cfg.Queue.ImportTimeout = 120 * time.Second
	}
	if cfg.Queue.MediaWorkers == 0 {
		cfg.Queue.MediaWorkers = 2
	}
	if cfg.Queue.MediaMaxAttempts == 0 {
		cfg.Queue.MediaMaxAttempts = 2
	}
	if cfg.Queue.MediaTimeout == 0 {
		cfg.Queue.MediaTimeout = 300 * time.Second
	}
	if cfg.Queue.MediaBackoff == 0 {
		cfg.Queue.MediaBackoff = 10 * time.Second
	}
	if cfg.Queue.ERPMaxAttempts == 0 {
		cfg.Queue.ERPMaxAttempts = 3
	}
	if cfg.Queue.ERPBackoff == 0 {
		cfg.Queue.ERPBackoff = 10 * time.Second
	}
	if cfg.Media.DownloadTimeout == 0 {
		cfg.Media.DownloadTimeout = 30 * time.Second
	}
	if cfg.Media.RatePerSecond == 0 {
		cfg.Media.RatePerSecond = 10
	}
	if cfg.Media.RateBurst == 0 {
		cfg.Media.RateBurst = 5
	}
	if cfg.Media.MaxDownloadBytes == 0 {
		cfg.Media.MaxDownloadBytes = 50 << 20 // 50MB
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.ERP.EventsQueue == "" {
		cfg.ERP.EventsQueue = "erp_events"
	}
	if cfg.ERP.OrdersQueue == "" {
		cfg.ERP.OrdersQueue = "erp_orders"
	}
	if cfg.ERP.UsersQueue == "" {
		cfg.ERP.UsersQueue = "erp_users"
	}
	if cfg.ERP.IncomingQueue == "" {
		cfg.ERP.IncomingQueue = "erp_incoming"
	}
	if cfg.Ops.Port == "" {
		cfg.Ops.Port = "8090"
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
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
	if c.Queue.ImportWorkers <= 0 || c.Queue.MediaWorkers <= 0 {
		return fmt.Errorf("queue worker counts must be positive")
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
		if c.Feed.URL == "" {
			return fmt.Errorf("feed.url is required in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
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

// Addr returns the Redis address host:port
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
