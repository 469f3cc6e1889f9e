package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`    // 服务器配置
	Database  DatabaseConfig  `mapstructure:"database"`  // 数据库配置
	Auth      AuthConfig      `mapstructure:"auth"`      // 登录会话配置
	AI        AIConfig        `mapstructure:"ai"`        // 大模型配置
	Dashboard DashboardConfig `mapstructure:"dashboard"` // 看板配置
	Log       LogConfig       `mapstructure:"log"`       // 日志配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port        int      `mapstructure:"port"`         // 服务端口
	Mode        string   `mapstructure:"mode"`         // Gin运行模式：debug/release/test
	CORSOrigins []string `mapstructure:"cors_origins"` // 允许的跨域来源，"*" 表示全部
	Pprof       bool     `mapstructure:"pprof"`        // 是否注册 /debug/pprof
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`            // sqlite / postgres
	DSN             string        `mapstructure:"dsn"`               // sqlite 为文件路径，postgres 为 URL
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数（sqlite 固定为 1）
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogLevel        string        `mapstructure:"log_level"`         // GORM 日志级别：silent/error/warn/info
}

// AuthConfig 登录会话配置
type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret"`   // 签名密钥
	TokenExpire time.Duration `mapstructure:"token_expire"` // token 有效期
	Issuer      string        `mapstructure:"issuer"`       // 签发方
}

// AIConfig 大模型接口配置
type AIConfig struct {
	APIURL         string        `mapstructure:"api_url"`         // chat/completions 地址
	APIKey         string        `mapstructure:"api_key"`         // API Key，为空时使用模拟响应
	Model          string        `mapstructure:"model"`           // 模型标识
	Timeout        time.Duration `mapstructure:"timeout"`         // 单次请求超时
	Proxy          string        `mapstructure:"proxy"`           // 代理地址
	UnstableModels []string      `mapstructure:"unstable_models"` // 400 时降级为模拟响应的模型标识片段
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`  // 每个调用方每秒请求数
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// DashboardConfig 看板配置
type DashboardConfig struct {
	DemoFallback bool `mapstructure:"demo_fallback"` // 无数据时返回示例数据
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// DefaultJWTSecret 未配置时的签名密钥，仅用于开发环境
const DefaultJWTSecret = "your-secret-key-change-in-production"

// HasAPIKey 是否配置了大模型 API Key
func (a *AIConfig) HasAPIKey() bool {
	return strings.TrimSpace(a.APIKey) != ""
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录加载 config.yaml；文件不存在时使用默认值
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetTypeByDefaultValue(true)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	if err := overrideFromEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.pprof", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data/database.sqlite")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.log_level", "warn")

	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.token_expire", 24*time.Hour)
	v.SetDefault("auth.issuer", "medguard")

	v.SetDefault("ai.api_url", "https://api.siliconflow.cn/v1/chat/completions")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "deepseek-ai/DeepSeek-V3.2")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.unstable_models", []string{"-Exp"})
	v.SetDefault("ai.rate_limit_rps", 2.0)
	v.SetDefault("ai.rate_limit_burst", 5)

	v.SetDefault("dashboard.demo_fallback", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err != nil {
			return fmt.Errorf("PORT 不是合法端口: %s", v)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("JWT_EXPIRES_IN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("JWT_EXPIRES_IN 格式错误: %w", err)
		}
		cfg.Auth.TokenExpire = d
	}
	if v := os.Getenv("AI_API_URL"); v != "" {
		cfg.AI.APIURL = v
	}
	if v := os.Getenv("AI_API_KEY"); v != "" {
		cfg.AI.APIKey = v
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		cfg.AI.Model = v
	}
	if v := os.Getenv("AI_PROXY"); v != "" {
		cfg.AI.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
