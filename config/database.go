package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// DatabaseType represents the type of database
type DatabaseType string

const (
	DatabaseTypeSQLite     DatabaseType = "sqlite"
	DatabaseTypePostgreSQL DatabaseType = "postgres"
)

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Type     DatabaseType   `toml:"type"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	Postgres PostgresConfig `toml:"postgres"`
}

// SQLiteConfig holds SQLite specific configuration
type SQLiteConfig struct {
	Path string `toml:"path"`
}

// PostgresConfig holds PostgreSQL specific configuration
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Database string `toml:"database"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	SSLMode  string `toml:"ssl_mode"`
}

// GetDSN returns the data source name for the database
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case DatabaseTypePostgreSQL:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(c.Postgres.Username, c.Postgres.Password),
			Host:     fmt.Sprintf("%s:%d", c.Postgres.Host, c.Postgres.Port),
			Path:     "/" + c.Postgres.Database,
			RawQuery: url.Values{"sslmode": {c.Postgres.SSLMode}}.Encode(),
		}
		return u.String()
	default:
		return c.SQLite.Path
	}
}

// GetDefaultDatabaseConfig returns default database configuration.
// Host, database name and credentials have no defaults.
func GetDefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type: DatabaseTypePostgreSQL,
		Postgres: PostgresConfig{
			Port:    5432,
			SSLMode: "require",
		},
	}
}

// ValidateConfig validates the database configuration
func (c *DatabaseConfig) ValidateConfig() error {
	switch c.Type {
	case DatabaseTypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("RAGCHAT_DB_PATH is required for sqlite")
		}
	case DatabaseTypePostgreSQL:
		if c.Postgres.Host == "" {
			return fmt.Errorf("SERVER is required")
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("DATABASE is required")
		}
		if c.Postgres.Username == "" {
			return fmt.Errorf("DB_USER is required")
		}
		if c.Postgres.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			return fmt.Errorf("PostgreSQL port must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Type)
	}
	return nil
}

// IsPostgreSQL returns true if the database type is PostgreSQL
func (c *DatabaseConfig) IsPostgreSQL() bool {
	return c.Type == DatabaseTypePostgreSQL
}

// IsSQLite returns true if the database type is SQLite
func (c *DatabaseConfig) IsSQLite() bool {
	return c.Type == DatabaseTypeSQLite
}

// EnsureDirectoryExists ensures the directory for SQLite database exists
func (c *DatabaseConfig) EnsureDirectoryExists() error {
	if c.Type == DatabaseTypeSQLite {
		dir := filepath.Dir(c.SQLite.Path)
		return os.MkdirAll(dir, 0o755)
	}
	return nil
}
