// Package config provides functionality for managing configuration options
// for the application using command-line flags and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"
)

// Activation modes supported by registration.
const (
	// ModeInstant creates accounts already activated; a session is issued
	// right after registration.
	ModeInstant = "instant"
	// ModeCode creates accounts unactivated; a numeric code must be
	// presented on first login.
	ModeCode = "code"
)

// Options holds the configuration values for the application.
type Options struct {
	// Addr defines the server's listening address (ip:port).
	Addr string

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string

	// RedisAddr selects the Redis session store when non-empty.
	// With an empty value sessions live in process memory.
	RedisAddr string

	// UploadDir is the shared directory holding uploaded files.
	UploadDir string

	// MaxUploadBytes caps the size of a single upload.
	MaxUploadBytes int64

	// SessionCookie is the name of the session cookie.
	SessionCookie string

	// SessionTTL is the fixed session lifetime.
	SessionTTL time.Duration

	// ActivationMode is either ModeInstant or ModeCode.
	ActivationMode string

	// ActivationTTL is how long an issued activation code stays valid.
	ActivationTTL time.Duration

	// LogLevel sets the logging verbosity.
	LogLevel string

	// Config is the path to the Config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

// init initializes command-line flags and sets default values.
func init() {
	flag.StringVar(&options.Addr, "a", "localhost:8080", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "db address")
	flag.StringVar(&options.RedisAddr, "r", "", "redis address for the session store")
	flag.StringVar(&options.UploadDir, "u", "uploaded_files", "upload directory")
	flag.Int64Var(&options.MaxUploadBytes, "m", 1600<<20, "max upload size in bytes")
	flag.StringVar(&options.SessionCookie, "cookie", "filebox_session", "session cookie name")
	flag.DurationVar(&options.SessionTTL, "session-ttl", time.Hour, "session lifetime")
	flag.StringVar(&options.ActivationMode, "activation", ModeInstant, "activation mode: instant or code")
	flag.DurationVar(&options.ActivationTTL, "activation-ttl", 15*time.Minute, "activation code lifetime")
	flag.StringVar(&options.LogLevel, "log-level", "info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags and environment variables to set
// configuration values. It returns a pointer to the Options struct containing
// the parsed configuration values.
func Parse() *Options {
	flag.Parse()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Addr = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		options.RedisAddr = redisAddr
	}
	if uploadDir := os.Getenv("UPLOAD_DIR"); uploadDir != "" {
		options.UploadDir = uploadDir
	}

	if options.ActivationMode != ModeInstant && options.ActivationMode != ModeCode {
		log.Fatalf("unknown activation mode: %q", options.ActivationMode)
	}

	return options
}
