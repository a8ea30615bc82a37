package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	APIPort string
	// JWTKey is empty when JWT_SECRET is unset; callers must refuse to sign or verify with it.
	JWTKey  []byte
	JWTExp  time.Duration

	DBEnabled      bool
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSslMode      string
	DBConnStr      string
	DBMaxOpenConns int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	DuelLockTTL         time.Duration
	DuelExpiry          time.Duration
	ExpirySweepInterval time.Duration

	LogLevel  string
	LogFormat string
}

var AppConfig *Config

// Load reads the optional .env file and the process environment. The result is
// also published as AppConfig.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		APIPort:        getEnv("API_PORT", "8080"),
		JWTKey:         []byte(getEnv("JWT_SECRET", "")),
		JWTExp:         time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		DBEnabled:      getEnvAsBool("DB_ENABLED", true),
		DBDriver:       getEnv("DB_DRIVER", "pgx"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "tle"),
		DBPassword:     getEnv("DB_PASSWORD", "password"),
		DBName:         getEnv("DB_NAME", "tle"),
		DBSslMode:      getEnv("DB_SSLMODE", "disable"),
		DBConnStr:      getEnv("DB_URL", ""),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 1),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),

		DuelLockTTL:         time.Duration(getEnvAsInt("DUEL_LOCK_TTL_SECONDS", 10)) * time.Second,
		DuelExpiry:          getEnvAsDuration("DUEL_EXPIRY", 5*time.Minute),
		ExpirySweepInterval: getEnvAsDuration("EXPIRY_SWEEP_INTERVAL", time.Minute),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	if cfg.DBConnStr == "" && cfg.DBDriver == "pgx" {
		cfg.DBConnStr = "host=" + cfg.DBHost +
			" port=" + cfg.DBPort +
			" user=" + cfg.DBUser +
			" password=" + cfg.DBPassword +
			" dbname=" + cfg.DBName +
			" sslmode=" + cfg.DBSslMode
	}
	if cfg.DBConnStr == "" && cfg.DBDriver == "sqlite" {
		cfg.DBConnStr = "tle.db"
	}

	AppConfig = cfg
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := strings.TrimSpace(getEnv(key, ""))
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
