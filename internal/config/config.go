package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ServerConfig 定义 HTTP 服务器的监听配置参数
type ServerConfig struct {
	Host string // 监听地址，默认 "0.0.0.0"
	Port int    // 监听端口，默认 8080
}

// StorageConfig 定义邮箱文件存储配置
type StorageConfig struct {
	BasePath string // 用户邮箱目录的根路径，默认 "./data"
}

// MailConfig 定义邮件业务配置
type MailConfig struct {
	TrashRetention    time.Duration // 回收站保留期，过期后自动清理，默认 30 天
	CleanupInterval   time.Duration // 清理任务运行间隔，默认 1 小时
	MaxAttachmentSize int64         // 单个附件大小上限（字节），默认 10MB
	CleanupWorkers    int           // 清理协程池大小，默认 4
}

// CORSConfig 定义跨域资源共享 (CORS) 配置
type CORSConfig struct {
	AllowedOrigins []string // 允许的来源列表，"*" 表示允许所有来源
}

// LogConfig 定义日志系统配置
type LogConfig struct {
	Level       string // 日志级别: debug, info, warn, error
	Development bool   // 开发模式: 启用彩色输出和详细堆栈信息
	LogFile     string // 日志文件路径，留空只输出到控制台
}

// JWTConfig 定义 JWT 认证相关配置
type JWTConfig struct {
	Secret        string        // JWT 签名密钥，必须至少 32 字符
	Issuer        string        // JWT 签发者标识，默认 "webmail"
	AccessExpiry  time.Duration // 访问令牌有效期，默认 15 分钟
	RefreshExpiry time.Duration // 刷新令牌有效期，默认 7 天
}

// RateLimitConfig 定义认证接口的限流配置
type RateLimitConfig struct {
	RequestsPerSecond float64 // 每个 IP 每秒允许的请求数，默认 5
	Burst             int     // 突发容量，默认 10
}

// Config 是系统核心配置的根结构体，包含所有子系统的配置
type Config struct {
	Server    ServerConfig    // HTTP 服务器配置
	Storage   StorageConfig   // 文件存储配置
	Mail      MailConfig      // 邮件业务配置
	CORS      CORSConfig      // 跨域配置
	Log       LogConfig       // 日志配置
	JWT       JWTConfig       // JWT 认证配置
	RateLimit RateLimitConfig // 限流配置
}

// Load 从环境变量和 .env 文件加载系统配置
//
// 配置加载优先级（从高到低）：
//  1. 系统环境变量（最高优先级）
//  2. .env 文件（如果存在）
//  3. 默认值
//
// 环境变量前缀: WEBMAIL_
// 例如: WEBMAIL_SERVER_HOST, WEBMAIL_JWT_SECRET
func Load() (*Config, error) {
	// .env 文件是可选的，加载失败静默忽略
	loadEnvFile()

	viper.SetEnvPrefix("webmail")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("storage.base_path", "./data")
	viper.SetDefault("mail.trash_retention", "720h")
	viper.SetDefault("mail.cleanup_interval", "1h")
	viper.SetDefault("mail.max_attachment_size", 10*1024*1024)
	viper.SetDefault("mail.cleanup_workers", 4)
	viper.SetDefault("cors.allowed_origins", "*")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.development", false)
	viper.SetDefault("log.log_file", "")
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.issuer", "webmail")
	viper.SetDefault("jwt.access_expiry", "15m")
	viper.SetDefault("jwt.refresh_expiry", "168h")
	viper.SetDefault("ratelimit.requests_per_second", 5.0)
	viper.SetDefault("ratelimit.burst", 10)

	trashRetention, err := time.ParseDuration(viper.GetString("mail.trash_retention"))
	if err != nil {
		return nil, fmt.Errorf("invalid mail.trash_retention: %w", err)
	}

	cleanupInterval, err := time.ParseDuration(viper.GetString("mail.cleanup_interval"))
	if err != nil {
		cleanupInterval = time.Hour
	}

	cleanupWorkers := viper.GetInt("mail.cleanup_workers")
	if cleanupWorkers <= 0 {
		cleanupWorkers = 4
	}

	corsOrigins := parseList(viper.GetString("cors.allowed_origins"))
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"*"}
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("jwt.access_expiry"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("jwt.refresh_expiry"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	jwtSecret := viper.GetString("jwt.secret")

	// 安全检查：禁止使用默认的 JWT secret
	if jwtSecret == "change-me-in-production" {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret cannot be the default value. Please set WEBMAIL_JWT_SECRET environment variable")
	}

	// JWT secret 必须至少 32 字符
	if len(jwtSecret) < 32 {
		return nil, fmt.Errorf("SECURITY ERROR: JWT secret must be at least 32 characters long")
	}

	basePath := viper.GetString("storage.base_path")
	if basePath == "" {
		return nil, fmt.Errorf("storage.base_path must not be empty")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("server.host"),
			Port: viper.GetInt("server.port"),
		},
		Storage: StorageConfig{
			BasePath: basePath,
		},
		Mail: MailConfig{
			TrashRetention:    trashRetention,
			CleanupInterval:   cleanupInterval,
			MaxAttachmentSize: viper.GetInt64("mail.max_attachment_size"),
			CleanupWorkers:    cleanupWorkers,
		},
		CORS: CORSConfig{
			AllowedOrigins: corsOrigins,
		},
		Log: LogConfig{
			Level:       viper.GetString("log.level"),
			Development: viper.GetBool("log.development"),
			LogFile:     viper.GetString("log.log_file"),
		},
		JWT: JWTConfig{
			Secret:        jwtSecret,
			Issuer:        viper.GetString("jwt.issuer"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: viper.GetFloat64("ratelimit.requests_per_second"),
			Burst:             viper.GetInt("ratelimit.burst"),
		},
	}

	return cfg, nil
}

// parseList 将逗号分隔的字符串解析为字符串切片
func parseList(value string) []string {
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadEnvFile 尝试加载 .env 文件
//
// 加载顺序：
//  1. 当前目录的 .env
//  2. 父目录的 .env（用于从 backend/ 子目录运行的情况）
//
// 已存在的环境变量不会被覆盖。
func loadEnvFile() {
	if err := godotenv.Load(".env"); err == nil {
		return
	}

	parentEnv := filepath.Join("..", ".env")
	if _, err := os.Stat(parentEnv); err == nil {
		_ = godotenv.Load(parentEnv)
	}
}
