package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const Version = "1.2.0"

// DBConfig describes one of the two schemas (app or portal).
type DBConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"` // sqlite only
}

// DSN returns the connection string for the configured driver.
func (c DBConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	// Format: user:password@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True&loc=Local
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type SessionConfig struct {
	Backend  string `yaml:"backend"` // database | bolt
	BoltPath string `yaml:"bolt_path"`
	Cookie   string `yaml:"cookie"`
	TTL      string `yaml:"ttl"`
	Secure   bool   `yaml:"secure"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type LicenseConfig struct {
	APIURL        string `yaml:"api_url"`
	StatusTimeout string `yaml:"status_timeout"`
	VerifyTimeout string `yaml:"verify_timeout"`
}

// Config holds the runtime configuration of both the app API and the portal.
type Config struct {
	ListenAddr       string        `yaml:"listen_addr"`
	PortalListenAddr string        `yaml:"portal_listen_addr"`
	LogLevel         string        `yaml:"log_level"`
	DB               DBConfig      `yaml:"database"`
	PortalDB         DBConfig      `yaml:"portal_database"`
	License          LicenseConfig `yaml:"license"`
	Session          SessionConfig `yaml:"session"`
	JWTSecret        string        `yaml:"jwt_secret"`
	DemoRateLimit    int           `yaml:"demo_rate_limit"` // demo licenses per client IP per minute
	SMTP             SMTPConfig    `yaml:"smtp"`
}

// Load reads configuration from the environment (and .env if present), then
// applies the YAML file named by CONFIG_FILE on top of it.
func Load() (*Config, error) {
	// .env is optional; system environment variables still apply without it.
	_ = godotenv.Load()

	c := &Config{
		ListenAddr:       GetEnv("LISTEN_ADDR", ":3000"),
		PortalListenAddr: GetEnv("PORTAL_LISTEN_ADDR", ":3001"),
		LogLevel:         GetEnv("LOG_LEVEL", "info"),
		DB:               loadDB("DB_", "network_monitor", "ampnm.db"),
		PortalDB:         loadDB("PORTAL_DB_", "ampnm_portal", "portal.db"),
		License: LicenseConfig{
			APIURL:        GetEnv("LICENSE_API_URL", "https://portal.itsupport.com.bd/verify_license.php"),
			StatusTimeout: GetEnv("LICENSE_STATUS_TIMEOUT", "5s"),
			VerifyTimeout: GetEnv("LICENSE_VERIFY_TIMEOUT", "10s"),
		},
		Session: SessionConfig{
			Backend:  GetEnv("SESSION_BACKEND", "database"),
			BoltPath: GetEnv("SESSION_BOLT_PATH", "sessions.db"),
			Cookie:   GetEnv("SESSION_COOKIE", "AMPNMSESSID"),
			TTL:      GetEnv("SESSION_TTL", "24h"),
			Secure:   GetEnvAsBool("SESSION_SECURE", false),
		},
		JWTSecret:     GetEnv("JWT_SECRET", ""),
		DemoRateLimit: GetEnvAsInt("DEMO_RATE_LIMIT", 5),
		SMTP: SMTPConfig{
			Host:     GetEnv("SMTP_HOST", ""),
			Port:     GetEnvAsInt("SMTP_PORT", 587),
			User:     GetEnv("SMTP_USER", ""),
			Password: GetEnv("SMTP_PASSWORD", ""),
			From:     GetEnv("SMTP_FROM", "noreply@itsupport.com.bd"),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := c.overlay(path); err != nil {
			return nil, err
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func loadDB(prefix, defaultName, defaultPath string) DBConfig {
	return DBConfig{
		Driver:   GetEnv(prefix+"DRIVER", "mysql"),
		Host:     GetEnv(prefix+"HOST", "127.0.0.1"),
		Port:     GetEnv(prefix+"PORT", "3306"),
		Name:     GetEnv(prefix+"NAME", defaultName),
		User:     GetEnv(prefix+"USER", "root"),
		Password: GetEnv(prefix+"PASSWORD", ""),
		Path:     GetEnv(prefix+"PATH", defaultPath),
	}
}

// overlay merges a YAML file into c. Keys absent from the file keep the
// values already loaded from the environment.
func (c *Config) overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate checks values that would otherwise fail later at first use.
func (c *Config) Validate() error {
	for _, db := range []DBConfig{c.DB, c.PortalDB} {
		if db.Driver != "mysql" && db.Driver != "sqlite" {
			return fmt.Errorf("unsupported database driver %q", db.Driver)
		}
	}
	if c.Session.Backend != "database" && c.Session.Backend != "bolt" {
		return fmt.Errorf("unsupported session backend %q", c.Session.Backend)
	}
	for name, v := range map[string]string{
		"session ttl":            c.Session.TTL,
		"license status timeout": c.License.StatusTimeout,
		"license verify timeout": c.License.VerifyTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
	}
	return nil
}

// Duration parses a value already checked by Validate.
func Duration(v string) time.Duration {
	d, _ := time.ParseDuration(v)
	return d
}

// Helper function to get environment variable with fallback default value
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get environment variable as integer with fallback
func GetEnvAsInt(key string, fallback int) int {
	valueStr := GetEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func GetEnvAsBool(key string, fallback bool) bool {
	switch strings.ToLower(GetEnv(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}
