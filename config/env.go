// Package config loads application settings for the order tracker.
//
// Values are resolved in order of precedence: process environment,
// .env file, config/app.json, built-in defaults. Call config.Load()
// once at startup; accessors are safe for concurrent use afterwards.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

const (
	defaultDatabaseDriver = "sqlite"
	defaultSQLiteDSN      = "ordertrack.db"
	defaultAppPort        = "8080"
	defaultAppEnv         = "local"
	defaultJWTIssuer      = "order-tracker"
	defaultJWTAudience    = "order-tracker-clients"
	defaultTokenExpMins   = "60"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_PORT":                 defaultAppPort,
		"APP_ENV":                  defaultAppEnv,
		"DB_DRIVER":                defaultDatabaseDriver,
		"DATABASE_DSN":             "",
		"JWT_SECRET":               "",
		"JWT_ISSUER":               defaultJWTIssuer,
		"JWT_AUDIENCE":             defaultJWTAudience,
		"ACCESS_TOKEN_EXP_MINUTES": defaultTokenExpMins,
		"ALLOWED_ORIGINS":          "*",
		"ALLOWED_METHODS":          "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		"ALLOWED_HEADERS":          "Accept,Authorization,Content-Type",
		"CORS_MAX_AGE":             "3600",
		"RATE_LIMIT_MAX":           "120",
		"RATE_LIMIT_WINDOW_SECS":   "60",
		"LOG_MONGO_URI":            "",
		"LOG_MONGO_DB":             "ordertrack",
		"LOG_MONGO_COLLECTION":     "logs",
		"ADMIN_EMAIL":              "",
		"ADMIN_PASSWORD":           "",
	}
}

// Validate checks the settings that must be present before the process may
// serve traffic. A missing signing secret or datastore DSN is a startup
// failure, never a lazy per-request one.
func Validate() error {
	_ = Load()

	if JWTSecret() == "" {
		return fmt.Errorf("config: JWT_SECRET is not set; refusing to start")
	}

	driver := DatabaseDriver()
	if driver != "sqlite" && get("DATABASE_DSN", "") == "" {
		return fmt.Errorf("config: DATABASE_DSN is required for DB_DRIVER=%s", driver)
	}
	return nil
}

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func DatabaseDSN() string {
	_ = Load()

	if override := get("DATABASE_DSN", ""); override != "" {
		return override
	}
	// Only sqlite has a usable default; Validate() rejects the rest.
	return defaultSQLiteDSN
}

func JWTSecret() string   { _ = Load(); return get("JWT_SECRET", "") }
func JWTIssuer() string   { _ = Load(); return get("JWT_ISSUER", defaultJWTIssuer) }
func JWTAudience() string { _ = Load(); return get("JWT_AUDIENCE", defaultJWTAudience) }

// AccessTokenExpMinutes returns the access token lifetime (default 60).
func AccessTokenExpMinutes() int {
	_ = Load()
	return getInt("ACCESS_TOKEN_EXP_MINUTES", 60)
}

func AppPort() string { _ = Load(); return get("APP_PORT", defaultAppPort) }
func AppEnv() string  { _ = Load(); return get("APP_ENV", defaultAppEnv) }

// ── CORS ─────────────────────────────────────────────────────────────────────

func AllowedOrigins() []string { _ = Load(); return splitCSV(get("ALLOWED_ORIGINS", "*")) }
func AllowedMethods() []string {
	_ = Load()
	return splitCSV(get("ALLOWED_METHODS", "GET,POST,PUT,DELETE,PATCH,OPTIONS"))
}
func AllowedHeaders() []string {
	_ = Load()
	return splitCSV(get("ALLOWED_HEADERS", "Accept,Authorization,Content-Type"))
}
func CORSMaxAge() int { _ = Load(); return getInt("CORS_MAX_AGE", 3600) }

// ── Rate limiting ────────────────────────────────────────────────────────────

func RateLimitMax() int        { _ = Load(); return getInt("RATE_LIMIT_MAX", 120) }
func RateLimitWindowSecs() int { _ = Load(); return getInt("RATE_LIMIT_WINDOW_SECS", 60) }

// ── Log sink ─────────────────────────────────────────────────────────────────

func LogMongoURI() string        { _ = Load(); return get("LOG_MONGO_URI", "") }
func LogMongoDB() string         { _ = Load(); return get("LOG_MONGO_DB", "ordertrack") }
func LogMongoCollection() string { _ = Load(); return get("LOG_MONGO_COLLECTION", "logs") }

// ── Seeding ──────────────────────────────────────────────────────────────────

func AdminEmail() string    { _ = Load(); return get("ADMIN_EMAIL", "") }
func AdminPassword() string { _ = Load(); return get("ADMIN_PASSWORD", "") }

// Get reads any config key by name with an optional fallback.
// Keys from the environment, .env and app.json are available after Load().
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	// Process environment wins over files.
	for key := range loaded {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			loaded[key] = v
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func getInt(key string, fallback int) int {
	n, err := strconv.Atoi(get(key, ""))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
