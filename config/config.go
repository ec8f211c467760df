package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultPort               = "3000"
	defaultBackendPort        = "8000"
	defaultSearchBaseURL      = "http://localhost:8000"
	defaultAllowedOrigin      = "http://localhost:3000"
	defaultSessionIdleTimeout = 30 * time.Minute
	defaultMaxResults         = 20
	defaultLogLevel           = "info"
	defaultStoragePath        = "./.localsearch"
	defaultIndexDir           = "postings.bleve"
	defaultKVDBFile           = "postings.db"
)

// envKeys maps each configuration key to the environment variable that overrides it.
var envKeys = map[string]string{
	"server.port":                 "PORT",
	"server.session_idle_timeout": "SESSION_IDLE_TIMEOUT",
	"client.base_url":             "SEARCH_BASE_URL",
	"client.timeout":              "CLIENT_TIMEOUT",
	"backend.port":                "BACKEND_PORT",
	"backend.allowed_origin":      "ALLOWED_ORIGIN",
	"backend.max_results":         "MAX_RESULTS",
	"catalog.path":                "CATALOG_PATH",
	"database.storage_path":       "STORAGE_PATH",
	"database.index_path":         "INDEX_PATH",
	"database.kvdb_path":          "KVDB_PATH",
	"log.level":                   "LOG_LEVEL",
	"log.file":                    "LOG_FILE",
}

type Config struct {
	config *viper.Viper
}

// ClientSettings are validated once at startup, before any search is issued.
type ClientSettings struct {
	BaseURL string        `json:"base_url" validate:"required,valid_base_url"`
	Timeout time.Duration `json:"timeout" validate:"min=0"`
}

type CatalogSettings struct {
	Path       string `json:"path" validate:"required,valid_file"`
	MaxResults int    `json:"max_results" validate:"min=1,max=1000"`
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()
	for key, envKey := range envKeys {
		if err := viperConfig.BindEnv(key, envKey); err != nil {
			return nil, fmt.Errorf("failed to bind %s to %s: %w", key, envKey, err)
		}
	}

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

// BindFlag lets a command line flag take precedence over the file and environment for key.
func (c *Config) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag to bind for %s", key)
	}
	return c.config.BindPFlag(key, flag)
}

func (c *Config) GetPort() string {
	return c.getString("server.port", defaultPort)
}

func (c *Config) GetBackendPort() string {
	return c.getString("backend.port", defaultBackendPort)
}

func (c *Config) GetSearchBaseURL() string {
	return c.getString("client.base_url", defaultSearchBaseURL)
}

// GetClientTimeout is zero unless configured, which means requests never time out.
func (c *Config) GetClientTimeout() time.Duration {
	return c.getDuration("client.timeout", 0)
}

func (c *Config) GetSessionIdleTimeout() time.Duration {
	return c.getDuration("server.session_idle_timeout", defaultSessionIdleTimeout)
}

func (c *Config) GetAllowedOrigin() string {
	return c.getString("backend.allowed_origin", defaultAllowedOrigin)
}

func (c *Config) GetMaxResults() int {
	maxResults := c.config.GetInt("backend.max_results")
	if maxResults == 0 {
		maxResults = defaultMaxResults
	}

	return maxResults
}

func (c *Config) GetCatalogPath() string {
	return c.getString("catalog.path", "")
}

// GetKVDBPath resolves a relative kvdb_path against the storage path.
func (c *Config) GetKVDBPath() string {
	return c.storagePathFor(c.getString("database.kvdb_path", defaultKVDBFile))
}

// GetIndexPath resolves a relative index_path against the storage path.
func (c *Config) GetIndexPath() string {
	return c.storagePathFor(c.getString("database.index_path", defaultIndexDir))
}

func (c *Config) GetStoragePath() string {
	return c.getString("database.storage_path", defaultStoragePath)
}

func (c *Config) storagePathFor(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.GetStoragePath(), path)
}

func (c *Config) GetLogLevel() string {
	return c.getString("log.level", defaultLogLevel)
}

func (c *Config) GetLogFile() string {
	return c.getString("log.file", "")
}

func (c *Config) ClientSettings() ClientSettings {
	return ClientSettings{
		BaseURL: c.GetSearchBaseURL(),
		Timeout: c.GetClientTimeout(),
	}
}

func (c *Config) CatalogSettings() CatalogSettings {
	return CatalogSettings{
		Path:       c.GetCatalogPath(),
		MaxResults: c.GetMaxResults(),
	}
}

// getString reads key with viper's precedence: flag, then environment, then file.
func (c *Config) getString(key string, fallback string) string {
	if value := c.config.GetString(key); len(value) > 0 {
		return value
	}

	return fallback
}

func (c *Config) getDuration(key string, fallback time.Duration) time.Duration {
	if c.config.IsSet(key) {
		return c.config.GetDuration(key)
	}

	return fallback
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
