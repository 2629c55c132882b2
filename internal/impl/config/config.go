package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultOllamaHost   = "http://127.0.0.1:11434"
	DefaultPollInterval = 5 * time.Second
)

type Config struct {
	OllamaHost   string
	MongoURI     string
	DataDir      string
	LogLevel     zapcore.Level
	PollInterval time.Duration
	logger       *zap.Logger
}

var (
	configInstance *Config
	once           sync.Once
)

// InitConfig loads .env once and reads the process configuration from the environment.
func InitConfig() (*Config, error) {
	var initErr error

	once.Do(func() {
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		logger, err := config.Build()
		if err != nil {
			logger = zap.NewNop()
			initErr = fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logger.Sync()

		if err := godotenv.Load(); err != nil {
			if os.IsNotExist(err) {
				logger.Debug("No .env file found; falling back to system environment variables")
			} else {
				initErr = fmt.Errorf("failed to load .env file: %w", err)
				logger.Error("Config file load error", zap.Error(err))
				return
			}
		}

		configInstance = FromEnv(os.Getenv, logger)
	})

	if initErr != nil {
		return nil, initErr
	}
	if configInstance == nil {
		return nil, fmt.Errorf("configuration initialization failed unexpectedly")
	}

	return configInstance, nil
}

// FromEnv builds a Config from getenv, falling back to defaults for missing or invalid values.
func FromEnv(getenv func(string) string, logger *zap.Logger) *Config {
	c := &Config{
		OllamaHost:   DefaultOllamaHost,
		MongoURI:     getenv("MONGO_URI"),
		DataDir:      getenv("DESKIMAGER_DATA_DIR"),
		LogLevel:     zapcore.WarnLevel,
		PollInterval: DefaultPollInterval,
		logger:       logger,
	}

	if host := strings.TrimSpace(getenv("OLLAMA_HOST")); host != "" {
		if !strings.Contains(host, "://") {
			host = "http://" + host
		}
		c.OllamaHost = host
	}

	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			logger.Warn("Cannot resolve home directory, using working directory", zap.Error(err))
			home = "."
		}
		c.DataDir = home
	}

	if lvl := getenv("DESKIMAGER_LOG_LEVEL"); lvl != "" {
		parsed, err := zapcore.ParseLevel(lvl)
		if err != nil {
			logger.Warn("Invalid DESKIMAGER_LOG_LEVEL, using warn", zap.String("value", lvl))
		} else {
			c.LogLevel = parsed
		}
	}

	if secs := getenv("DESKIMAGER_POLL_SECONDS"); secs != "" {
		n, err := strconv.Atoi(secs)
		if err != nil || n <= 0 {
			logger.Warn("Invalid DESKIMAGER_POLL_SECONDS, using default", zap.String("value", secs))
		} else {
			c.PollInterval = time.Duration(n) * time.Second
		}
	}

	return c
}

func (c *Config) ResolveEnvironmentVariable(value string) (string, error) {
	const prefix, suffix = "#{", "}#"
	if strings.HasPrefix(value, prefix) && strings.HasSuffix(value, suffix) {
		varName := strings.TrimSuffix(strings.TrimPrefix(value, prefix), suffix)
		if varName == "" {
			return "", fmt.Errorf("empty variable name in reference: %s", value)
		}

		resolved := os.Getenv(varName)
		if resolved == "" {
			c.logger.Warn("Environment variable not found for reference",
				zap.String("reference", value),
				zap.String("var_name", varName))
			return "", fmt.Errorf("environment variable '%s' not found", varName)
		}

		c.logger.Debug("Resolved environment variable",
			zap.String("var_name", varName),
			zap.String("resolved", maskKey(resolved)))
		return resolved, nil
	}

	return value, nil
}

// ResolveToolConfiguration replaces #{VAR}# references in every tool's settings.
func (c *Config) ResolveToolConfiguration(tools map[string]map[string]string) (map[string]map[string]string, error) {
	resolved := make(map[string]map[string]string, len(tools))
	for tool, config := range tools {
		values := make(map[string]string, len(config))
		for key, value := range config {
			v, err := c.ResolveEnvironmentVariable(value)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve configuration for '%s.%s': %w", tool, key, err)
			}
			values[key] = v
		}
		resolved[tool] = values
	}
	return resolved, nil
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
