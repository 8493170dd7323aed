package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Archive backends
const (
	DBNone     = "none"
	DBJSON     = "json"
	DBPostgres = "postgres"
	DBSQLite   = "sqlite"
)

const defaultDSN = "host=localhost user=terrawar password=terrawar dbname=terrawar sslmode=disable"

// Config holds the server settings read from the environment
type Config struct {
	Port         string
	WSAddr       string
	DBType       string
	DatabaseURL  string
	DBFile       string
	LogLevel     string
	LogFormat    string
	RateLimit    float64
	RateBurst    int
	MaxLineBytes int
}

// Addr is the TCP listen address
func (c Config) Addr() string {
	return ":" + c.Port
}

// Load reads the server configuration from the environment
func Load() (Config, error) {
	cfg := Config{
		Port:        getenv("PORT", "5555"),
		WSAddr:      os.Getenv("WS_ADDR"),
		DBType:      strings.ToLower(getenv("DB_TYPE", DBNone)),
		DatabaseURL: getenv("DATABASE_URL", defaultDSN),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "console"),
	}

	switch cfg.DBType {
	case DBNone, DBPostgres:
	case DBJSON:
		cfg.DBFile = getenv("DB_FILE", "archive.json")
	case DBSQLite:
		cfg.DBFile = getenv("DB_FILE", "archive.db")
	default:
		return Config{}, fmt.Errorf("unknown DB_TYPE %q", cfg.DBType)
	}

	var err error
	if cfg.RateLimit, err = floatEnv("RATE_LIMIT", 50); err != nil {
		return Config{}, err
	}
	if cfg.RateBurst, err = intEnv("RATE_BURST", 100); err != nil {
		return Config{}, err
	}
	if cfg.MaxLineBytes, err = intEnv("MAX_LINE_BYTES", 4<<20); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ClientConfig holds the bot settings
type ClientConfig struct {
	ServerAddr string
	Nick       string
	LogLevel   string
}

// LoadClient reads the client configuration from the environment
func LoadClient() ClientConfig {
	return ClientConfig{
		ServerAddr: getenv("SERVER_ADDR", "127.0.0.1:5555"),
		Nick:       os.Getenv("NICK"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return n, nil
}

func floatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}
