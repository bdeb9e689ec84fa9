package bootstrap

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/Gursimran75-way/Group-Chat-Backend/internal/infra/setup"
)

// Config 结构体用于存储从环境变量或 .env 文件加载的配置
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"mysql"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBName     string `env:"DB_NAME" envDefault:"group_chat"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"group_chat.db"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"gc:"`

	JWTSecret          string `env:"JWT_SECRET"`
	JWTExpiryHours     int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`
	RefreshExpiryHours int    `env:"REFRESH_TOKEN_EXPIRY_HOURS" envDefault:"168"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	FrontendBaseURL    string   `env:"FRONTEND_BASE_URL" envDefault:"http://localhost:3000"`

	WorkerConcurrency int `env:"WORKER_CONCURRENCY" envDefault:"5"`
}

// LoadConfig 优先加载 .env 文件 (如果存在)，再从环境变量解析配置
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // 忽略错误，允许只使用环境变量
	return ParseConfig()
}

// ParseConfig 从环境变量解析并校验配置
func ParseConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.RedisAddr == "" {
		return fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("environment variable JWT_SECRET must be set")
	}
	switch c.DBDriver {
	case setup.DriverMySQL:
		if c.DBUser == "" || c.DBPassword == "" {
			return fmt.Errorf("environment variables DB_USER and DB_PASSWORD must be set for the mysql driver")
		}
	case setup.DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.RateLimitMax <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", c.LogLevel)
		c.LogLevel = "info"
	}
	return nil
}

// DBOptions 返回数据库初始化参数
func (c *Config) DBOptions() setup.DBOptions {
	return setup.DBOptions{
		Driver:     c.DBDriver,
		User:       c.DBUser,
		Password:   c.DBPassword,
		Host:       c.DBHost,
		Port:       c.DBPort,
		Name:       c.DBName,
		SQLitePath: c.SQLitePath,
	}
}

// IsProduction 判断是否为生产环境
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
