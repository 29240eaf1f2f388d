package database

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

const (
	DATABASE_TYPE_SQLITE   = "sqlite"
	DATABASE_TYPE_POSTGRES = "postgres"
)

// Driver names as reported by sqlx.DB.DriverName.
const (
	DRIVER_POSTGRES = "postgres"
	DRIVER_SQLITE   = "sqlite3"
)

const SQLITE_BUSY_TIMEOUT_MS = 5000

type DatabaseConfig struct {
	Type string `yaml:"type"` // "sqlite" or "postgres"

	// URL is a postgres:// connection string. When set it replaces the
	// discrete postgres fields below.
	URL string `yaml:"url"`

	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"` // empty means disable

	Path string `yaml:"path"` // sqlite file
}

////////////////////////////////////////////////////////////////////////////////

// ConnectWithConfig opens and pings the configured database.
func ConnectWithConfig(conf DatabaseConfig) (*sqlx.DB, error) {
	driver, dsn, err := conf.dataSource()
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(conf.logFields()).WithField("caller", "ConnectWithConfig")
	logger.Info("Connecting to database")

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		return nil, fmt.Errorf("failed to connect to %s: %w", conf.Type, err)
	}
	return db, nil
}

// dataSource resolves the driver name and DSN for the config.
func (c DatabaseConfig) dataSource() (string, string, error) {
	switch c.Type {
	case DATABASE_TYPE_POSTGRES:
		if c.URL == "" {
			return DRIVER_POSTGRES, c.keywordDSN(), nil
		}
		dsn, err := pq.ParseURL(c.URL)
		if err != nil {
			return "", "", fmt.Errorf("invalid postgres url: %w", err)
		}
		return DRIVER_POSTGRES, dsn, nil

	case DATABASE_TYPE_SQLITE:
		if c.Path == "" {
			return "", "", fmt.Errorf("sqlite database path is required")
		}
		return DRIVER_SQLITE, fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d", c.Path, SQLITE_BUSY_TIMEOUT_MS), nil

	default:
		return "", "", fmt.Errorf("unsupported database type: %s", c.Type)
	}
}

// keywordDSN renders the discrete fields as libpq key=value pairs, skipping
// empty ones so libpq defaults apply.
func (c DatabaseConfig) keywordDSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	pairs := map[string]string{
		"host":     c.Host,
		"port":     c.Port,
		"user":     c.User,
		"password": c.Password,
		"dbname":   c.DBName,
		"sslmode":  sslMode,
	}

	keys := make([]string, 0, len(pairs))
	for key, value := range pairs {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+"="+quoteDSNValue(pairs[key]))
	}
	return strings.Join(parts, " ")
}

func quoteDSNValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// logFields never carries a password.
func (c DatabaseConfig) logFields() log.Fields {
	fields := log.Fields{"type": c.Type}
	switch {
	case c.Type == DATABASE_TYPE_SQLITE:
		fields["path"] = c.Path
	case c.URL != "":
		if u, err := url.Parse(c.URL); err == nil {
			fields["url"] = u.Redacted()
		}
	default:
		fields["host"] = c.Host
		fields["port"] = c.Port
		fields["dbname"] = c.DBName
	}
	return fields
}
