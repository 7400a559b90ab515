package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAPIURL    = "http://localhost:8080/api"
	defaultUploadURL = "https://api.cloudinary.com/v1_1"
)

// Config is everything the client reads from the environment.
type Config struct {
	APIURL     string
	UploadURL  string
	Timeout    time.Duration
	RateLimit  time.Duration
	UserAgent  string
	TokenStore string
	TokenFile  string
	Profile    string
	LogLevel   string
	LogFormat  string
}

// LoadEnv reads .env.local and .env into the process environment. Missing
// files are not an error; it reports whether anything was loaded.
func LoadEnv() bool {
	loaded := false
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err == nil {
			loaded = true
		}
	}
	return loaded
}

func Load() *Config {
	return &Config{
		APIURL:     GetEnv("CINELUME_API_URL", defaultAPIURL),
		UploadURL:  GetEnv("CINELUME_UPLOAD_URL", defaultUploadURL),
		Timeout:    GetDuration("CINELUME_TIMEOUT", 30*time.Second),
		RateLimit:  GetDuration("CINELUME_RATE_LIMIT", 100*time.Millisecond),
		UserAgent:  GetEnv("CINELUME_USER_AGENT", "cinelume-cli/1.0"),
		TokenStore: GetEnv("CINELUME_TOKEN_STORE", "file"),
		TokenFile:  GetEnv("CINELUME_TOKEN_FILE", defaultTokenFile()),
		Profile:    GetEnv("CINELUME_PROFILE", "default"),
		LogLevel:   GetEnv("LOG_LEVEL", "warn"),
		LogFormat:  GetEnv("LOG_FORMAT", "text"),
	}
}

// RedisConfig returns host, port, password
func RedisConfig() (string, string, string) {
	host := GetEnv("R_HOST", "localhost")
	port := GetEnv("R_PORT", "6379")
	password := GetEnv("R_PASS", "")
	return host, port, password
}

// DatabaseConfig returns host, port, user, password, database name
func DatabaseConfig() (string, string, string, string, string) {
	host := GetEnv("DB_HOST", "localhost")
	port := GetEnv("DB_PORT", "5432")
	user := GetEnv("DB_USER", "")
	password := GetEnv("DB_PASSWORD", "")
	name := GetEnv("DB_NAME", "cinelume")
	return host, port, user, password, name
}

// GetEnv retrieves values from environment files based on the key it matches,
// returns a string (value) if not empty
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDuration parses a Go duration string ("5s") or a plain number of
// milliseconds, falling back to defaultValue.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if ms, err := strconv.Atoi(value); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return defaultValue
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".cinelume", "token")
	}
	return filepath.Join(home, ".cinelume", "token")
}
