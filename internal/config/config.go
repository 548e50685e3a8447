package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Backend   BackendConfig   `mapstructure:"backend"`
	Grading   GradingConfig   `mapstructure:"grading"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Session   SessionConfig   `mapstructure:"session"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Export    ExportConfig    `mapstructure:"export"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	Log       LogConfig       `mapstructure:"log"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port         string
	Mode         string
	TemplatesDir string `mapstructure:"templates_dir"`
}

// BackendConfig 推理后端（BACKEND_URL）
type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout_seconds"`
}

type GradingConfig struct {
	Palette      []string `mapstructure:"palette"`
	DefaultColor string   `mapstructure:"default_color"`
	// 相似答案查询的默认余弦相似度阈值
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

type UploadConfig struct {
	// json 或 csv
	Format    string `mapstructure:"format"`
	MaxSizeMB int64  `mapstructure:"max_size_mb"`
}

type SessionConfig struct {
	// memory 或 redis
	Store      string        `mapstructure:"store"`
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type DatabaseConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type StorageConfig struct {
	Type          string `mapstructure:"type"`
	LocalPath     string `mapstructure:"local_path"`
	MinioEndpoint string `mapstructure:"minio_endpoint"`
	MinioAccessID string `mapstructure:"minio_access_key"`
	MinioSecret   string `mapstructure:"minio_secret_key"`
	MinioBucket   string `mapstructure:"minio_bucket"`
	OSSEndpoint   string `mapstructure:"oss_endpoint"`
	OSSAccessKey  string `mapstructure:"oss_access_key"`
	OSSSecretKey  string `mapstructure:"oss_secret_key"`
	OSSBucket     string `mapstructure:"oss_bucket"`
}

// ExportConfig 成绩导出归档
type ExportConfig struct {
	Archive bool `mapstructure:"archive"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.templates_dir", "web/templates")
	v.SetDefault("backend.url", "http://localhost:8000")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("grading.palette", []string{"red", "dodgerblue", "limegreen", "orange", "violet", "gold", "cyan", "hotpink"})
	v.SetDefault("grading.default_color", "white")
	v.SetDefault("grading.similarity_threshold", 0.8)
	v.SetDefault("upload.format", "json")
	v.SetDefault("upload.max_size_mb", 20)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.cookie_name", "grader_session")
	v.SetDefault("session.expire_hours", 12)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_path", "exports")
	v.SetDefault("log.file", "logs/app.log")
	v.SetDefault("rate_limit.max_requests", 6000)
	v.SetDefault("rate_limit.window_minutes", 1)
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("GRADER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Backend
	v.BindEnv("backend.url", "BACKEND_URL")

	// Session
	v.BindEnv("session.secret", "SESSION_SECRET")
	v.BindEnv("session.store", "SESSION_STORE")

	// Database
	v.BindEnv("database.host", "DATABASE_HOST")
	v.BindEnv("database.port", "DATABASE_PORT")
	v.BindEnv("database.user", "DATABASE_USER")
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Server
	v.BindEnv("server.mode", "SERVER_MODE")

	// Storage
	v.BindEnv("storage.type", "STORAGE_TYPE")
	v.BindEnv("storage.oss_endpoint", "OSS_ENDPOINT")
	v.BindEnv("storage.oss_access_key", "OSS_ACCESS_KEY")
	v.BindEnv("storage.oss_secret_key", "OSS_SECRET_KEY")
	v.BindEnv("storage.oss_bucket", "OSS_BUCKET")
	v.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	v.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	v.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	v.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	v.BindEnv("tracing.enabled", "TRACING_ENABLED")
	v.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := v.ReadInConfig(); err != nil {
		// 没有配置文件时只使用默认值和环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.Backend.Timeout = cfg.Backend.Timeout * time.Second
	cfg.Session.ExpireTime = cfg.Session.ExpireTime * time.Hour
	cfg.Backend.URL = strings.TrimRight(cfg.Backend.URL, "/")
	cfg.Upload.Format = strings.ToLower(cfg.Upload.Format)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Storage.Type == "local" {
		if _, err := os.Stat(cfg.Storage.LocalPath); os.IsNotExist(err) {
			os.MkdirAll(cfg.Storage.LocalPath, 0755)
		}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend url is required")
	}
	if c.Upload.Format != "json" && c.Upload.Format != "csv" {
		return fmt.Errorf("unsupported upload format %q, must be json or csv", c.Upload.Format)
	}
	if len(c.Grading.Palette) == 0 {
		return fmt.Errorf("grading palette must not be empty")
	}
	// 生产环境校验 session secret 强度
	if c.Server.Mode == "release" && len(c.Session.Secret) < 32 {
		return fmt.Errorf("session secret is too short (%d chars), must be at least 32 characters in release mode", len(c.Session.Secret))
	}
	return nil
}
