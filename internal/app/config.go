package app

import (
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/refera/refera-backend/internal/logger"
	"github.com/refera/refera-backend/internal/utils"
)

type Config struct {
	Port         string
	JWTSecretKey string
	TokenTTL     time.Duration

	// "gcs" or "local"
	StorageBackend string
	LocalStoreDir  string
	LocalStoreURL  string

	OtelServiceName string
	Environment     string
	Version         string
}

// fileConfig is the optional CONFIG_FILE overlay. Environment variables win
// over file values.
type fileConfig struct {
	Port           string `yaml:"port"`
	StorageBackend string `yaml:"storage_backend"`
	LocalStoreDir  string `yaml:"local_store_dir"`
	LocalStoreURL  string `yaml:"local_store_url"`
	Environment    string `yaml:"environment"`
	Version        string `yaml:"version"`
}

func LoadConfig(log *logger.Logger) Config {
	tokenTTLSeconds := utils.GetEnvAsInt("TOKEN_TTL", 86400, log)
	cfg := Config{
		Port:         utils.GetEnv("PORT", "8080", log),
		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		TokenTTL:     time.Duration(tokenTTLSeconds) * time.Second,

		StorageBackend: utils.GetEnv("STORAGE_BACKEND", "local", log),
		LocalStoreDir:  utils.GetEnv("LOCAL_STORE_DIR", "data/files", log),
		LocalStoreURL:  utils.GetEnv("LOCAL_STORE_URL", "http://localhost:8080/files", log),

		OtelServiceName: utils.GetEnv("OTEL_SERVICE_NAME", "refera", log),
		Environment:     utils.GetEnv("APP_ENV", "development", log),
		Version:         utils.GetEnv("APP_VERSION", "dev", log),
	}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Warn("Could not read config file, using env only", "path", path, "error", err)
			return cfg
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			log.Warn("Could not parse config file, using env only", "path", path, "error", err)
			return cfg
		}
		applyFileConfig(&cfg, fc, log)
	}
	return cfg
}

func applyFileConfig(cfg *Config, fc fileConfig, log *logger.Logger) {
	set := func(env string, dst *string, val string) {
		if val == "" || os.Getenv(env) != "" {
			return
		}
		*dst = val
	}
	set("PORT", &cfg.Port, fc.Port)
	set("STORAGE_BACKEND", &cfg.StorageBackend, fc.StorageBackend)
	set("LOCAL_STORE_DIR", &cfg.LocalStoreDir, fc.LocalStoreDir)
	set("LOCAL_STORE_URL", &cfg.LocalStoreURL, fc.LocalStoreURL)
	set("APP_ENV", &cfg.Environment, fc.Environment)
	set("APP_VERSION", &cfg.Version, fc.Version)
	log.Info("Applied config file overlay")
}
