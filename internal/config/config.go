package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envSearchDirs .env 文件搜索目录（仅 dev/test 使用，生产环境由 systemd 注入）
var envSearchDirs = []string{
	".",
	"..",
}

// configPathsForEnv 根据环境返回配置文件搜索路径
func configPathsForEnv(env Environment) []string {
	if env == EnvProduction {
		return []string{"/etc/blog-backend"}
	}
	// dev/test: 项目根目录的 configs/
	return []string{"configs", "../configs"}
}

// Load 加载配置
// 1. 加载 .env.{env}（敏感信息 + APP_ENV）
// 2. 根据 APP_ENV 加载 configs/{env}.yaml
// 3. 构建最终配置
func Load() *Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))

	loadEnvFiles(env)
	// APP_ENV 可能由 .env 文件定义，重新解析一次
	env = parseEnv(getEnv("APP_ENV", string(env)))

	yamlCfg := loadYAMLConfig(env)

	// 敏感信息只从环境变量读取
	yamlCfg.Database.Password = firstEnv("MONGO_ROOT_PASSWORD", "DB_PASSWORD")
	yamlCfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	yamlCfg.MinIO.AccessKey = firstEnv("MINIO_ROOT_USER", "MINIO_ACCESS_KEY")
	yamlCfg.MinIO.SecretKey = firstEnv("MINIO_ROOT_PASSWORD", "MINIO_SECRET_KEY")
	yamlCfg.SMTP.Username = os.Getenv("SMTP_USERNAME")
	yamlCfg.SMTP.Password = os.Getenv("SMTP_PASSWORD")
	yamlCfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")
	yamlCfg.Auth.AdminEmail = os.Getenv("ADMIN_EMAIL")
	yamlCfg.Auth.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	return &Config{
		Env:            env,
		DatabaseURL:    buildDatabaseURL(yamlCfg.Database),
		DatabaseDBName: yamlCfg.Database.Name,
		RedisURL:       buildRedisURL(yamlCfg.Redis),
		APIPort:        yamlCfg.APIServer.Port,
		Auth:           yamlCfg.Auth,
		MinIO:          yamlCfg.MinIO,
		SMTP:           yamlCfg.SMTP,
		APIServer:      yamlCfg.APIServer,
	}
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := &YAMLConfig{
		APIServer: APIServerConfig{
			Port:        "8080",
			URL:         "http://localhost:8080",
			FrontendURL: "http://localhost:3000",
		},
		Database: DatabaseConfig{Host: "localhost", Port: 27017, Name: "blog"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379, DB: 0},
		MinIO:    MinIOConfig{Bucket: "blog-images"},
		Auth:     AuthConfig{AccessTokenTTL: "168h", VerifyTokenTTL: "24h"},
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range configPathsForEnv(env) {
		path := filepath.Join(base, filename)
		if data, err := os.ReadFile(path); err == nil {
			yaml.Unmarshal(data, cfg)
			break
		}
	}

	return cfg
}

// loadEnvFiles 加载 .env 文件
//
// 生产环境不搜索 .env 文件（密码由 systemd EnvironmentFile 或 shell 环境注入）。
// dev/test 环境加载 .env.{env} 文件（凭据单一数据源，与 Docker Compose 共用）。
// godotenv.Load 不覆盖已有环境变量，优先级低于 shell 环境变量。
func loadEnvFiles(env Environment) {
	if env == EnvProduction {
		return
	}

	envFileName := fmt.Sprintf(".env.%s", string(env))
	for _, dir := range envSearchDirs {
		if err := godotenv.Load(filepath.Join(dir, envFileName)); err == nil {
			return
		}
	}

	// 回退到普通 .env
	for _, dir := range envSearchDirs {
		if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
			return
		}
	}
}
