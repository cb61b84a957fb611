// Package config 统一配置管理
//
// 配置加载优先级（高→低）：
//  1. 环境变量（通过 .env 文件或 shell/systemd 注入）
//  2. YAML 配置文件（{env}.yaml，如 dev.yaml、test.yaml、prod.yaml）
//  3. 代码硬编码默认值
//
// 凭据单一数据源：
//
//	密码/密钥只存在 .env 文件中（YAML 中不存储任何密码）。
//	.env 文件同时被 Docker Compose（--env-file）和 Go 应用（godotenv）
//	共用，确保单一数据源。
//
// 环境：
//   - 开发: APP_ENV=dev → configs/dev.yaml + .env.dev
//   - 测试: APP_ENV=test → configs/test.yaml + .env.test
//   - 生产: APP_ENV=prod → /etc/blog-backend/prod.yaml + prod.env
package config

import "time"

// Environment 环境类型
type Environment string

const (
	EnvProduction  Environment = "prod"
	EnvTest        Environment = "test" // 测试环境（集成测试 + E2E 共用）
	EnvDevelopment Environment = "dev"
)

// YAMLConfig YAML 配置文件结构
type YAMLConfig struct {
	APIServer APIServerConfig `yaml:"api_server"` // API Server（端口 + 对外 URL）
	Database  DatabaseConfig  `yaml:"database"`   // MongoDB
	Redis     RedisConfig     `yaml:"redis"`      // Redis（邮件队列）
	MinIO     MinIOConfig     `yaml:"minio"`      // MinIO 对象存储（帖子题图）
	SMTP      SMTPConfig      `yaml:"smtp"`       // 邮件发送
	Auth      AuthConfig      `yaml:"auth"`       // 认证
}

// APIServerConfig API Server 配置
type APIServerConfig struct {
	Port        string `yaml:"port"`         // 监听端口
	URL         string `yaml:"url"`          // API Server 完整 URL
	FrontendURL string `yaml:"frontend_url"` // 前端地址（验证链接指向前端）
}

// DatabaseConfig MongoDB 配置
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"-"` // 只从 MONGO_ROOT_PASSWORD 环境变量读取
	Name     string `yaml:"name"`
	URI      string `yaml:"uri"` // MongoDB 连接 URI（优先于 host/port）
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       int    `yaml:"db"`
	Password string `yaml:"-"`   // 只从 REDIS_PASSWORD 环境变量读取
	URL      string `yaml:"url"` // 直接指定 URL（优先于 host/port/db）
}

// MinIOConfig MinIO 对象存储配置
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"` // 例如 localhost:9000
	AccessKey string `yaml:"-"`        // 只从 MINIO_ROOT_USER 环境变量读取
	SecretKey string `yaml:"-"`        // 只从 MINIO_ROOT_PASSWORD 环境变量读取
	UseSSL    bool   `yaml:"use_ssl"`  // 是否使用 HTTPS
	Bucket    string `yaml:"bucket"`   // 默认 bucket 名称
}

// SMTPConfig 邮件发送配置
// Endpoint 为空时不发真实邮件，验证链接写入日志（开发环境）
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	From     string `yaml:"from"`
	Username string `yaml:"-"` // 只从 SMTP_USERNAME 环境变量读取
	Password string `yaml:"-"` // 只从 SMTP_PASSWORD 环境变量读取
}

// AuthConfig 认证配置
// 注意：JWTSecret/AdminEmail/AdminPassword 只从环境变量读取，不存储在 YAML 中
type AuthConfig struct {
	JWTSecret      string `yaml:"-"`                // 只从 JWT_SECRET 环境变量读取
	AccessTokenTTL string `yaml:"access_token_ttl"` // 例如 "168h"
	VerifyTokenTTL string `yaml:"verify_token_ttl"` // 例如 "24h"
	AdminEmail     string `yaml:"-"`                // 只从 ADMIN_EMAIL 环境变量读取
	AdminPassword  string `yaml:"-"`                // 只从 ADMIN_PASSWORD 环境变量读取
}

// AccessTTL 解析访问令牌有效期
func (a AuthConfig) AccessTTL() time.Duration {
	if d, err := time.ParseDuration(a.AccessTokenTTL); err == nil && d > 0 {
		return d
	}
	return 168 * time.Hour
}

// VerifyTTL 解析验证令牌有效期
func (a AuthConfig) VerifyTTL() time.Duration {
	if d, err := time.ParseDuration(a.VerifyTokenTTL); err == nil && d > 0 {
		return d
	}
	return 24 * time.Hour
}

// Config 应用配置（最终使用的配置）
type Config struct {
	Env            Environment
	DatabaseURL    string
	DatabaseDBName string // MongoDB 数据库名称
	RedisURL       string
	APIPort        string
	Auth           AuthConfig
	MinIO          MinIOConfig
	SMTP           SMTPConfig
	APIServer      APIServerConfig
}
