package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	config     *Config
	configOnce sync.Once
)

// DefaultJWTSecretKey 未配置 JWT_SECRET_KEY 时使用的占位密钥
const DefaultJWTSecretKey = "propertypro-secret-key-change-in-production"

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database
	DBDriver        string // postgres, mysql, sqlite
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // 数据库迁移模式: "auto"(默认), "drop"(删除重建)

	// Server
	ServerPort      string
	CORSAllowOrigin string

	// Redis (为空时不启用缓存)
	RedisHost string
	RedisPort string
	RedisDB   int

	// JWT Authentication
	JWTSecretKey  string
	JWTIssuer     string
	AuthDevLogin  bool          // 是否开放开发用登录接口
	TokenLifetime time.Duration // 开发登录签发令牌的有效期

	// Language model collaborator
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIModel      string
	TriageTimeout    time.Duration // 维修分诊调用超时
	AssistantTimeout time.Duration // 助手问答调用超时

	// Blob storage for uploads
	BlobDriver      string // fs, s3, memory
	BlobFSRoot      string
	BlobS3Bucket    string
	BlobS3Region    string
	BlobS3Endpoint  string
	BlobS3PathStyle bool
	BlobS3AccessKey string
	BlobS3SecretKey string
	UploadMaxBytes  int64

	// MQTT配置 (为空时不发布领域事件)
	MQTTBrokerURL string
	MQTTClientID  string
	MQTTUsername  string
	MQTTPassword  string
	MQTTQoS       int
	MQTTTopicRoot string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	// Get environment type (default to LOCAL if not set)
	envType := strings.ToUpper(getEnv("ENV_TYPE", "LOCAL"))
	prefix := ""

	// Set prefix based on environment type
	switch envType {
	case "LOCAL":
		prefix = "LOCAL_"
	case "SERVER":
		prefix = "SERVER_"
	default:
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	dbDriver := strings.ToLower(getEnv(prefix+"DB_DRIVER", getEnv("DB_DRIVER", "postgres")))

	cfg := &Config{
		EnvType: envType,

		DBDriver:        dbDriver,
		DBHost:          getEnv(prefix+"DB_HOST", "localhost"),
		DBUser:          getEnv(prefix+"DB_USER", ""),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", ""),
		DBName:          getEnv(prefix+"DB_NAME", "propertypro"),
		DBPort:          getEnv(prefix+"DB_PORT", defaultDBPort(dbDriver)),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", "auto"),

		ServerPort:      getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", "http://localhost:5173"),

		RedisHost: getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "")),
		RedisPort: getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisDB:   getEnvAsInt("REDIS_DB", 0),

		JWTSecretKey:  getEnv("JWT_SECRET_KEY", DefaultJWTSecretKey),
		JWTIssuer:     getEnv("JWT_ISSUER", "propertypro"),
		AuthDevLogin:  getEnvAsBool("AUTH_DEV_LOGIN", false),
		TokenLifetime: getEnvAsDuration("TOKEN_LIFETIME", 24*time.Hour),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-5"),
		TriageTimeout:    getEnvAsDuration("TRIAGE_TIMEOUT", 5*time.Second),
		AssistantTimeout: getEnvAsDuration("ASSISTANT_TIMEOUT", 15*time.Second),

		BlobDriver:      strings.ToLower(getEnv("BLOB_DRIVER", "fs")),
		BlobFSRoot:      getEnv("BLOB_FS_ROOT", "uploads"),
		BlobS3Bucket:    getEnv("BLOB_S3_BUCKET", ""),
		BlobS3Region:    getEnv("BLOB_S3_REGION", "us-east-1"),
		BlobS3Endpoint:  getEnv("BLOB_S3_ENDPOINT", ""),
		BlobS3PathStyle: getEnvAsBool("BLOB_S3_PATH_STYLE", false),
		BlobS3AccessKey: getEnv("BLOB_S3_ACCESS_KEY", ""),
		BlobS3SecretKey: getEnv("BLOB_S3_SECRET_KEY", ""),
		UploadMaxBytes:  int64(getEnvAsInt("UPLOAD_MAX_BYTES", 10<<20)),

		MQTTBrokerURL: getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:  getEnv("MQTT_CLIENT_ID", "propertypro_server"),
		MQTTUsername:  getEnv("MQTT_USERNAME", ""),
		MQTTPassword:  getEnv("MQTT_PASSWORD", ""),
		MQTTQoS:       getEnvAsInt("MQTT_QOS", 1),
		MQTTTopicRoot: getEnv("MQTT_TOPIC_ROOT", "propertypro"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	// sqlite 只需要文件路径
	if cfg.DBDriver != "sqlite" {
		cfg.DBUser = getEnvRequired(prefix + "DB_USER")
		cfg.DBPassword = getEnvRequired(prefix + "DB_PASSWORD")
	}

	return cfg
}

// Validate 检查不安全的组合：开发登录可为任意邮箱签发令牌，必须配合自定义密钥
func (c *Config) Validate() error {
	if c.AuthDevLogin && c.JWTSecretKey == DefaultJWTSecretKey {
		return fmt.Errorf("AUTH_DEV_LOGIN requires JWT_SECRET_KEY to be set")
	}
	return nil
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// GetDSN returns the database connection string for the configured driver
func (c *Config) GetDSN() string {
	switch c.DBDriver {
	case "mysql":
		return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=UTC"
	case "sqlite":
		return c.DBName
	default:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
	}
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// RedisEnabled 是否配置了Redis
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func defaultDBPort(driver string) string {
	switch driver {
	case "mysql":
		return "3306"
	case "sqlite":
		return ""
	default:
		return "5432"
	}
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsDuration 解析 "5s"、"1m" 形式的时长
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil && value > 0 {
		return value
	}
	return defaultValue
}

// 要求必须提供环境变量的辅助函数
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	panic(fmt.Sprintf("Required environment variable %s is not set", key))
}
