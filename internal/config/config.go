// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/usestring/kismetrest/internal/logging"
	"github.com/usestring/kismetrest/pkg/client"
)

// Tool output limit defaults
const (
	DefaultDeviceLimitValue = 50
	MaxDeviceLimitValue     = 5000
)

// Config holds all configuration for the MCP server and the capture daemon.
type Config struct {
	KismetURI      string        // KISMET_URI, default "http://127.0.0.1:2501"
	KismetUsername string        // KISMET_USERNAME, default "" (no login)
	KismetPassword string        // KISMET_PASSWORD
	SessionCache   string        // KISMET_SESSION_CACHE, default "~/.kismet_session"; "off" disables
	ReadTimeout    time.Duration // KISMET_READ_TIMEOUT_MS, default 60000ms (60s)
	CommandTimeout time.Duration // KISMET_COMMAND_TIMEOUT_MS, default 2000ms (2s)

	// Tool output limits
	DefaultDeviceLimit int // MCP_DEVICE_LIMIT_DEFAULT
	MaxDeviceLimit     int // MCP_DEVICE_LIMIT_MAX

	// Capture daemon
	CaptureAPIURL   string        // CAPTURE_API_URL, default "" (print reports)
	RestartCommand  string        // CAPTURE_RESTART_CMD, default "" (no restart hook)
	PollInterval    time.Duration // CAPTURE_POLL_INTERVAL_MS, default 300000ms (5m)
	StartupAttempts int           // CAPTURE_STARTUP_ATTEMPTS, default 10
	StartupInterval time.Duration // CAPTURE_STARTUP_INTERVAL_MS, default 30000ms (30s)
	MaxRestarts     int           // CAPTURE_MAX_RESTARTS, default 5
	ForwardTimeout  time.Duration // CAPTURE_FORWARD_TIMEOUT_MS, default 10000ms (10s)
	RecentWindow    time.Duration // CAPTURE_RECENT_WINDOW_S, default 3600s (1h)

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFormat     string // LOG_FORMAT, "text" or "json", default "text"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		KismetURI:      getEnvString("KISMET_URI", client.DefaultBaseURL),
		KismetUsername: getEnvString("KISMET_USERNAME", ""),
		KismetPassword: getEnvString("KISMET_PASSWORD", ""),
		SessionCache:   getEnvString("KISMET_SESSION_CACHE", client.DefaultSessionCachePath),
		ReadTimeout:    getEnvDurationMs("KISMET_READ_TIMEOUT_MS", 60000),
		CommandTimeout: getEnvDurationMs("KISMET_COMMAND_TIMEOUT_MS", 2000),

		DefaultDeviceLimit: getEnvInt("MCP_DEVICE_LIMIT_DEFAULT", DefaultDeviceLimitValue),
		MaxDeviceLimit:     getEnvInt("MCP_DEVICE_LIMIT_MAX", MaxDeviceLimitValue),

		CaptureAPIURL:   getEnvString("CAPTURE_API_URL", ""),
		RestartCommand:  getEnvString("CAPTURE_RESTART_CMD", ""),
		PollInterval:    getEnvDurationMs("CAPTURE_POLL_INTERVAL_MS", 300000),
		StartupAttempts: getEnvInt("CAPTURE_STARTUP_ATTEMPTS", 10),
		StartupInterval: getEnvDurationMs("CAPTURE_STARTUP_INTERVAL_MS", 30000),
		MaxRestarts:     getEnvInt("CAPTURE_MAX_RESTARTS", 5),
		ForwardTimeout:  getEnvDurationMs("CAPTURE_FORWARD_TIMEOUT_MS", 10000),
		RecentWindow:    time.Duration(getEnvInt("CAPTURE_RECENT_WINDOW_S", 3600)) * time.Second,

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFormat:     getEnvString("LOG_FORMAT", "text"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// ClientOptions translates the Kismet settings into client options.
func (c *Config) ClientOptions() []client.Option {
	cache := c.SessionCache
	if cache == "off" {
		cache = ""
	}
	opts := []client.Option{
		client.WithBaseURL(c.KismetURI),
		client.WithSessionCache(cache),
		client.WithReadTimeout(c.ReadTimeout),
		client.WithCommandTimeout(c.CommandTimeout),
	}
	if c.KismetUsername != "" {
		opts = append(opts, client.WithLogin(c.KismetUsername, c.KismetPassword))
	}
	return opts
}

// Logging returns the logging section of the configuration.
func (c *Config) Logging() logging.Config {
	return logging.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		FilePath:   c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   c.LogCompress,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
