package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	Mode         string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// 每个调用方（用户或 IP）的请求速率，<= 0 关闭限流
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"gte=0"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" validate:"gte=0"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	Path         string `mapstructure:"path"` // sqlite 文件路径
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	AutoMigrate  bool   `mapstructure:"auto_migrate"`
}

// DSN 返回 postgres 连接串
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret" validate:"required,min=16"`
	Issuer string        `mapstructure:"issuer"`
	TTL    time.Duration `mapstructure:"ttl"`
}

// CatalogConfig 外部影视目录（TMDB）客户端配置
type CatalogConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	ImageBaseURL   string        `mapstructure:"image_base_url"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxAttempts    uint          `mapstructure:"max_attempts" validate:"gte=1"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	RatePerSecond  float64       `mapstructure:"rate_per_second"`
	Burst          int           `mapstructure:"burst"`
	TrendingTTL    time.Duration `mapstructure:"trending_ttl"`
	SimilarTTL     time.Duration `mapstructure:"similar_ttl"`
	DetailTTL      time.Duration `mapstructure:"detail_ttl"`
}

// FeedConfig 信息流混排参数
type FeedConfig struct {
	DefaultPageSize      int           `mapstructure:"default_page_size" validate:"gt=0"`
	MaxPageSize          int           `mapstructure:"max_page_size" validate:"gtefield=DefaultPageSize"`
	InterleaveEvery      int           `mapstructure:"interleave_every" validate:"gt=0"`
	MaxPerSource         int           `mapstructure:"max_per_source" validate:"gt=0"`
	EmptyFeedSuggestions int           `mapstructure:"empty_feed_suggestions" validate:"gt=0"`
	ScoreExponent        float64       `mapstructure:"score_exponent" validate:"gt=0"`
	ScoreAgeOffset       float64       `mapstructure:"score_age_offset" validate:"gt=0"`
	ScoreMinAgeHours     float64       `mapstructure:"score_min_age_hours" validate:"gte=0"`
	GraphCacheTTL        time.Duration `mapstructure:"graph_cache_ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type TracingConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

type SentryConfig struct {
	DSN         string `mapstructure:"dsn"`
	Environment string `mapstructure:"environment"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.rate_limit_per_second", 20.0)
	v.SetDefault("server.rate_limit_burst", 40)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "watchhive")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "watchhive.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("jwt.issuer", "watchhive")
	v.SetDefault("jwt.ttl", 15*time.Minute)

	v.SetDefault("catalog.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("catalog.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("catalog.timeout", 12*time.Second)
	v.SetDefault("catalog.max_attempts", 3)
	v.SetDefault("catalog.initial_backoff", time.Second)
	v.SetDefault("catalog.max_backoff", 4*time.Second)
	v.SetDefault("catalog.rate_per_second", 20.0)
	v.SetDefault("catalog.burst", 10)
	v.SetDefault("catalog.trending_ttl", 30*time.Minute)
	v.SetDefault("catalog.similar_ttl", 6*time.Hour)
	v.SetDefault("catalog.detail_ttl", 24*time.Hour)

	v.SetDefault("feed.default_page_size", 20)
	v.SetDefault("feed.max_page_size", 100)
	v.SetDefault("feed.interleave_every", 3)
	v.SetDefault("feed.max_per_source", 10)
	v.SetDefault("feed.empty_feed_suggestions", 15)
	v.SetDefault("feed.score_exponent", 1.5)
	v.SetDefault("feed.score_age_offset", 2.0)
	v.SetDefault("feed.score_min_age_hours", 0.5)
	v.SetDefault("feed.graph_cache_ttl", 5*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("tracing.service_name", "watchhive")
}

// Load 加载配置：.env -> config.yaml -> 环境变量（WATCHHIVE_ 前缀）
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("WATCHHIVE_CONFIG"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("WATCHHIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 校验必填项与取值范围
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
