package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	// 保存原始环境变量
	originalEnvs := make(map[string]string)
	envKeys := []string{
		"WEBMAIL_JWT_SECRET",
		"WEBMAIL_SERVER_HOST",
		"WEBMAIL_SERVER_PORT",
		"WEBMAIL_STORAGE_BASE_PATH",
		"WEBMAIL_MAIL_TRASH_RETENTION",
		"WEBMAIL_MAIL_CLEANUP_INTERVAL",
		"WEBMAIL_MAIL_MAX_ATTACHMENT_SIZE",
		"WEBMAIL_MAIL_CLEANUP_WORKERS",
		"WEBMAIL_CORS_ALLOWED_ORIGINS",
		"WEBMAIL_LOG_LEVEL",
		"WEBMAIL_LOG_DEVELOPMENT",
		"WEBMAIL_RATELIMIT_REQUESTS_PER_SECOND",
		"WEBMAIL_RATELIMIT_BURST",
	}

	for _, key := range envKeys {
		originalEnvs[key] = os.Getenv(key)
	}

	// 测试后恢复环境变量
	defer func() {
		for key, value := range originalEnvs {
			if value == "" {
				os.Unsetenv(key)
			} else {
				os.Setenv(key, value)
			}
		}
	}()

	t.Run("加载默认配置成功", func(t *testing.T) {
		// 清除所有环境变量
		for _, key := range envKeys {
			os.Unsetenv(key)
		}

		// 设置必需的JWT密钥
		os.Setenv("WEBMAIL_JWT_SECRET", "test-secret-key-for-development-32-chars-long-at-least")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// 验证默认值
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "./data", cfg.Storage.BasePath)
		assert.Equal(t, 30*24*time.Hour, cfg.Mail.TrashRetention)
		assert.Equal(t, time.Hour, cfg.Mail.CleanupInterval)
		assert.Equal(t, int64(10*1024*1024), cfg.Mail.MaxAttachmentSize)
		assert.Equal(t, 4, cfg.Mail.CleanupWorkers)
		assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Development)
		assert.Equal(t, "test-secret-key-for-development-32-chars-long-at-least", cfg.JWT.Secret)
		assert.Equal(t, "webmail", cfg.JWT.Issuer)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessExpiry)
		assert.Equal(t, 7*24*time.Hour, cfg.JWT.RefreshExpiry)
		assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
		assert.Equal(t, 10, cfg.RateLimit.Burst)
	})

	t.Run("加载自定义配置成功", func(t *testing.T) {
		os.Setenv("WEBMAIL_JWT_SECRET", "custom-jwt-secret-key-32-chars-long-minimum")
		os.Setenv("WEBMAIL_SERVER_HOST", "127.0.0.1")
		os.Setenv("WEBMAIL_SERVER_PORT", "9090")
		os.Setenv("WEBMAIL_STORAGE_BASE_PATH", "/var/lib/webmail")
		os.Setenv("WEBMAIL_MAIL_TRASH_RETENTION", "48h")
		os.Setenv("WEBMAIL_MAIL_CLEANUP_INTERVAL", "30m")
		os.Setenv("WEBMAIL_MAIL_MAX_ATTACHMENT_SIZE", "1048576")
		os.Setenv("WEBMAIL_MAIL_CLEANUP_WORKERS", "8")
		os.Setenv("WEBMAIL_CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
		os.Setenv("WEBMAIL_LOG_LEVEL", "debug")
		os.Setenv("WEBMAIL_LOG_DEVELOPMENT", "true")
		os.Setenv("WEBMAIL_RATELIMIT_REQUESTS_PER_SECOND", "2.5")
		os.Setenv("WEBMAIL_RATELIMIT_BURST", "20")

		cfg, err := Load()

		assert.NoError(t, err)
		assert.NotNil(t, cfg)

		// 验证自定义值
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
		assert.Equal(t, 9090, cfg.Server.Port)
		assert.Equal(t, "/var/lib/webmail", cfg.Storage.BasePath)
		assert.Equal(t, 48*time.Hour, cfg.Mail.TrashRetention)
		assert.Equal(t, 30*time.Minute, cfg.Mail.CleanupInterval)
		assert.Equal(t, int64(1048576), cfg.Mail.MaxAttachmentSize)
		assert.Equal(t, 8, cfg.Mail.CleanupWorkers)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.CORS.AllowedOrigins)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.Development)
		assert.Equal(t, "custom-jwt-secret-key-32-chars-long-minimum", cfg.JWT.Secret)
		assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
		assert.Equal(t, 20, cfg.RateLimit.Burst)
	})

	t.Run("JWT密钥太短失败", func(t *testing.T) {
		os.Setenv("WEBMAIL_JWT_SECRET", "short-key") // 少于32字符

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "JWT secret must be at least 32 characters long")
	})

	t.Run("使用默认JWT密钥失败", func(t *testing.T) {
		os.Setenv("WEBMAIL_JWT_SECRET", "change-me-in-production")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "JWT secret cannot be the default value")
	})

	t.Run("无效的保留期格式失败", func(t *testing.T) {
		os.Setenv("WEBMAIL_JWT_SECRET", "valid-jwt-secret-key-32-chars-long-minimum")
		os.Setenv("WEBMAIL_MAIL_TRASH_RETENTION", "invalid-duration")

		cfg, err := Load()

		assert.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "invalid mail.trash_retention")
	})

}

func TestParseList(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "单个来源",
			input:    "http://localhost:3000",
			expected: []string{"http://localhost:3000"},
		},
		{
			name:     "多个来源",
			input:    "a.example.com, b.example.com",
			expected: []string{"a.example.com", "b.example.com"},
		},
		{
			name:     "忽略空白项",
			input:    " , a.example.com , ",
			expected: []string{"a.example.com"},
		},
		{
			name:     "全部为空",
			input:    " , , ",
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseList(tc.input))
		})
	}
}
