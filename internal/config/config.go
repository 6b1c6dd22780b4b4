// Package config loads runtime settings from defaults, an optional YAML file,
// a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"

	UploadLocal = "local"
	UploadS3    = "s3"
)

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	URI    string `yaml:"uri"`
	Name   string `yaml:"name"`
}

type SessionConfig struct {
	Name   string `yaml:"name"`
	Secret string `yaml:"secret"`
	MaxAge int    `yaml:"max_age"`
	Secure bool   `yaml:"secure"`
}

type LoggerConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// UploadsConfig selects where business logos are written. The S3 fields are
// only read when Backend is "s3".
type UploadsConfig struct {
	Backend     string `yaml:"backend"`
	Dir         string `yaml:"dir"`
	URLPrefix   string `yaml:"url_prefix"`
	MaxBytes    int64  `yaml:"max_bytes"`
	S3Bucket    string `yaml:"s3_bucket"`
	S3Region    string `yaml:"s3_region"`
	S3Endpoint  string `yaml:"s3_endpoint"`
	S3AccessKey string `yaml:"s3_access_key"`
	S3SecretKey string `yaml:"s3_secret_key"`
	S3PublicURL string `yaml:"s3_public_url"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type SecurityConfig struct {
	LoginPerMinute int `yaml:"login_per_minute"`
}

type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Logger   LoggerConfig   `yaml:"logger"`
	Uploads  UploadsConfig  `yaml:"uploads"`
	Admin    AdminConfig    `yaml:"admin"`
	Security SecurityConfig `yaml:"security"`
}

// Default returns the development configuration. The session secret and admin
// password must be overridden outside of local runs.
func Default() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Addr:         "0.0.0.0:3000",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: DriverMongo,
			URI:    "mongodb://localhost:27017",
			Name:   "soen287project",
		},
		Session: SessionConfig{
			Name:   "servicedesk_session",
			Secret: "change-me-session-secret",
			MaxAge: 7 * 24 * 3600,
		},
		Logger: LoggerConfig{
			Mode:     "development",
			Filename: "logs/servicedesk.log",
		},
		Uploads: UploadsConfig{
			Backend:   UploadLocal,
			Dir:       "uploads",
			URLPrefix: "/uploads",
			MaxBytes:  5 << 20,
			S3Region:  "us-east-1",
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin",
		},
		Security: SecurityConfig{
			LoginPerMinute: 20,
		},
	}
}

// Load builds the configuration. path may be empty, in which case no YAML file
// is read. A missing .env file is not an error.
func Load(path string) (*AppConfig, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	// .env is optional in every environment
	_ = godotenv.Load(".env")

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	setString := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}

	setString("MONGOURI", &cfg.Database.URI)
	setString("MONGO_DB", &cfg.Database.Name)
	setString("STORAGE_DRIVER", &cfg.Database.Driver)
	setString("SESSION_SECRET", &cfg.Session.Secret)
	setString("LOG_MODE", &cfg.Logger.Mode)
	setString("UPLOAD_BACKEND", &cfg.Uploads.Backend)
	setString("UPLOAD_DIR", &cfg.Uploads.Dir)
	setString("S3_BUCKET", &cfg.Uploads.S3Bucket)
	setString("S3_REGION", &cfg.Uploads.S3Region)
	setString("S3_ENDPOINT", &cfg.Uploads.S3Endpoint)
	setString("S3_ACCESS_KEY", &cfg.Uploads.S3AccessKey)
	setString("S3_SECRET_KEY", &cfg.Uploads.S3SecretKey)
	setString("S3_PUBLIC_URL", &cfg.Uploads.S3PublicURL)
	setString("ADMIN_USERNAME", &cfg.Admin.Username)
	setString("ADMIN_PASSWORD", &cfg.Admin.Password)

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = "0.0.0.0:" + port
	}
	if file := os.Getenv("LOG_FILE"); file != "" {
		cfg.Logger.FileEnable = true
		cfg.Logger.Filename = file
	}
	if v := os.Getenv("LOGIN_PER_MINUTE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LOGIN_PER_MINUTE: %w", err)
		}
		cfg.Security.LoginPerMinute = n
	}
	return nil
}

// Validate reports the first setting that would keep the server from starting.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			return errors.New("database uri is required for the mongo driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Database.Driver)
	}

	switch c.Uploads.Backend {
	case UploadLocal:
		if c.Uploads.Dir == "" {
			return errors.New("uploads dir is required for the local backend")
		}
	case UploadS3:
		if c.Uploads.S3Bucket == "" {
			return errors.New("s3 bucket is required for the s3 upload backend")
		}
	default:
		return fmt.Errorf("unknown upload backend %q", c.Uploads.Backend)
	}

	if c.Session.Secret == "" {
		return errors.New("session secret is required")
	}
	if c.Admin.Username == "" || c.Admin.Password == "" {
		return errors.New("admin username and password are required")
	}
	return nil
}
