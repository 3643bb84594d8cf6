package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("RAGCHAT_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("RAGCHAT_DEBUG") == "true"
}

func GetLogFolder() string {
	return os.Getenv("RAGCHAT_LOG_FOLDER")
}

// AIConfig describes the Azure OpenAI deployment used for chat completions.
type AIConfig struct {
	Endpoint   string `toml:"endpoint"`
	APIKey     string `toml:"api_key"`
	APIVersion string `toml:"api_version"`
	Deployment string `toml:"deployment"`
}

// SearchConfig describes the Azure AI Search index attached to every completion.
type SearchConfig struct {
	Endpoint string `toml:"endpoint"`
	Index    string `toml:"index"`
	APIKey   string `toml:"api_key"`
}

// Config is the full process configuration.
type Config struct {
	Listen        string `toml:"listen"`
	Port          int    `toml:"port"`
	WebDomain     string `toml:"web_domain"`
	CertFile      string `toml:"cert_file"`
	KeyFile       string `toml:"key_file"`
	SessionSecret string `toml:"session_secret"`
	SessionMaxAge int    `toml:"session_max_age"` // minutes, 0 keeps the cookie for the browser session
	RedisAddr     string `toml:"redis_addr"`
	StoreCheck    string `toml:"store_check"`

	AI       AIConfig       `toml:"ai"`
	Search   SearchConfig   `toml:"search"`
	Database DatabaseConfig `toml:"database"`
}

// Default returns the configuration used before any file or environment is applied.
// Credentials are deliberately left empty.
func Default() *Config {
	return &Config{
		Port:       5000,
		StoreCheck: "@every 1m",
		AI: AIConfig{
			APIVersion: "2024-02-01",
			Deployment: "ChatAIEhb",
		},
		Database: *GetDefaultDatabaseConfig(),
	}
}

// Load builds the configuration from defaults, the optional TOML file at path,
// a .env file in the working directory, and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Listen, "RAGCHAT_LISTEN")
	setString(&c.WebDomain, "RAGCHAT_WEB_DOMAIN")
	setString(&c.CertFile, "RAGCHAT_CERT_FILE")
	setString(&c.KeyFile, "RAGCHAT_KEY_FILE")
	setString(&c.SessionSecret, "RAGCHAT_SESSION_SECRET")
	setString(&c.RedisAddr, "RAGCHAT_REDIS_ADDR")
	setString(&c.StoreCheck, "RAGCHAT_STORE_CHECK")

	setString(&c.AI.Endpoint, "ENDPOINT")
	setString(&c.AI.APIKey, "KEY")
	setString(&c.AI.APIVersion, "AI_API_VERSION")
	setString(&c.AI.Deployment, "AI_DEPLOYMENT")

	setString(&c.Search.Endpoint, "SEARCH_ENDPOINT")
	setString(&c.Search.Index, "SEARCH_INDEX")
	setString(&c.Search.APIKey, "SEARCH_API_KEY")

	if v := os.Getenv("RAGCHAT_DB_TYPE"); v != "" {
		c.Database.Type = DatabaseType(v)
	}
	setString(&c.Database.SQLite.Path, "RAGCHAT_DB_PATH")
	setString(&c.Database.Postgres.Host, "SERVER")
	setString(&c.Database.Postgres.Database, "DATABASE")
	setString(&c.Database.Postgres.Username, "DB_USER")
	setString(&c.Database.Postgres.Password, "DB_PASSWORD")
	setString(&c.Database.Postgres.SSLMode, "DB_SSLMODE")

	if err := setInt(&c.Port, "RAGCHAT_PORT"); err != nil {
		return err
	}
	if err := setInt(&c.SessionMaxAge, "RAGCHAT_SESSION_MAX_AGE"); err != nil {
		return err
	}
	return setInt(&c.Database.Postgres.Port, "DB_PORT")
}

// Validate reports every missing required value at once.
func (c *Config) Validate() error {
	var errs []error
	required := []struct {
		value, name string
	}{
		{c.AI.Endpoint, "ENDPOINT"},
		{c.AI.APIKey, "KEY"},
		{c.AI.Deployment, "AI_DEPLOYMENT"},
		{c.Search.Endpoint, "SEARCH_ENDPOINT"},
		{c.Search.Index, "SEARCH_INDEX"},
		{c.Search.APIKey, "SEARCH_API_KEY"},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if (c.CertFile == "") != (c.KeyFile == "") {
		errs = append(errs, errors.New("cert file and key file must be set together"))
	}
	if err := c.Database.ValidateConfig(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
