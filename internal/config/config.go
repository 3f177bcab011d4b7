package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Log       LogConfig `mapstructure:"log"`
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Tracing   TracingConfig `mapstructure:"tracing"`
	Redis     RedisConfig
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Builder   BuilderConfig   `mapstructure:"builder"`
	Media     MediaConfig     `mapstructure:"media"`
	I18n      I18nConfig      `mapstructure:"i18n"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	MigrateOnly  bool `mapstructure:"-"`
	ForceMigrate bool `mapstructure:"-"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	MinioSecure   bool   `mapstructure:"minio_secure"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// BuilderConfig 题目编辑器（BFF）配置
type BuilderConfig struct {
	BackendURL            string `mapstructure:"backend_url"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds"`
	RetryCount            int    `mapstructure:"retry_count"`
	DebounceMS            int    `mapstructure:"debounce_ms"`
	SnapshotStore         string `mapstructure:"snapshot_store"` // memory | redis
	SessionTTLHours       int    `mapstructure:"session_ttl_hours"`
	IdleMinutes           int    `mapstructure:"idle_minutes"`
}

func (b BuilderConfig) RequestTimeout() time.Duration {
	return time.Duration(b.RequestTimeoutSeconds) * time.Second
}

func (b BuilderConfig) Debounce() time.Duration {
	return time.Duration(b.DebounceMS) * time.Millisecond
}

func (b BuilderConfig) SessionTTL() time.Duration {
	return time.Duration(b.SessionTTLHours) * time.Hour
}

func (b BuilderConfig) IdleTimeout() time.Duration {
	return time.Duration(b.IdleMinutes) * time.Minute
}

type MediaConfig struct {
	PresignMinutes int    `mapstructure:"presign_minutes"`
	ProbeEnabled   bool   `mapstructure:"probe_enabled"`
	ThumbnailWidth int    `mapstructure:"thumbnail_width"`
	SweepCron      string `mapstructure:"sweep_cron"`
	OrphanHours    int    `mapstructure:"orphan_hours"`
}

func (m MediaConfig) PresignTTL() time.Duration {
	return time.Duration(m.PresignMinutes) * time.Minute
}

func (m MediaConfig) OrphanAge() time.Duration {
	return time.Duration(m.OrphanHours) * time.Hour
}

type I18nConfig struct {
	DefaultLanguage string `mapstructure:"default_language"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("database.charset", "utf8mb4")
	v.SetDefault("database.parsetime", true)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "uploads")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
	v.SetDefault("builder.backend_url", "http://localhost:8080/api")
	v.SetDefault("builder.request_timeout_seconds", 15)
	v.SetDefault("builder.retry_count", 2)
	v.SetDefault("builder.debounce_ms", 300)
	v.SetDefault("builder.snapshot_store", "redis")
	v.SetDefault("builder.session_ttl_hours", 12)
	v.SetDefault("builder.idle_minutes", 30)
	v.SetDefault("media.presign_minutes", 15)
	v.SetDefault("media.thumbnail_width", 320)
	v.SetDefault("media.sweep_cron", "@every 1h")
	v.SetDefault("media.orphan_hours", 24)
	v.SetDefault("i18n.default_language", "vi")
}

func LoadConfig(path string) (*Config, error) {
	// .env 存在时加载（不存在则忽略）
	dotEnvPath := filepath.Join(path, ".env")
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, fmt.Errorf("load %s: %w", dotEnvPath, err)
		}
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BAITAPVUI")
	v.AutomaticEnv()
	setDefaults(v)

	// 数据库
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// JWT认证
	v.BindEnv("jwt.secret", "JWT_SECRET")

	// Redis缓存
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// 服务
	v.BindEnv("server.mode", "SERVER_MODE")
	v.BindEnv("server.port", "SERVER_PORT")

	// 存储
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// 链路追踪
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	// 构建器
	v.BindEnv("builder.backend_url", "BUILDER_BACKEND_URL")
	v.BindEnv("builder.snapshot_store", "BUILDER_SNAPSHOT_STORE")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	switch cfg.Builder.SnapshotStore {
	case "memory", "redis":
	default:
		return nil, fmt.Errorf("unknown builder.snapshot_store %q", cfg.Builder.SnapshotStore)
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}
