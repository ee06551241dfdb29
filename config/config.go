package config

import (
	"crypto/rand"
	"encoding/hex"
	"net"
	neturl "net/url"
	"os"
	"strconv"
	"strings"

	"orion-chatbot/envx"
)

type Config struct {
	Environment string
	ServiceName string

	Port          string
	PublicBaseURL string

	DBURL  string
	DBHost string
	DBPort int
	DBName string
	DBUser string
	DBPass string

	// RedisAddr is empty when redis is disabled.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AdminJWTSecret      string
	AdminEmail          string
	AdminPassword       string
	AdminSessionHours   int
	CookieSecure        bool
	EnableAutoMigration bool
	MigrationsDir       string

	OpenAIAPIKey     string
	OpenAIModel      string
	OpenAIBaseURL    string
	LLMTimeoutSec    int
	ChatHistoryLimit int
	SystemPrompt     string

	KeywordTablesPath string
	PDFFontPath       string

	WidgetConfigCacheSec     int
	PublicRateLimitPerMinute int
	ChatRateLimitPerMinute   int

	AnalyticsFlushIntervalSec int
	MaintenanceIntervalHours  int
	EventRetentionDays        int

	LogLevel     string
	LogFormat    string
	LogAddSource bool
	LogColor     bool

	CORSAllowedOrigins []string
}

// IsProduction reports whether the service runs with production safeguards.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return strings.Trim(v, "\"")
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(getEnv(key, ""))
	if v == "" {
		return fallback
	}
	return v == "1" || v == "true" || v == "yes" || v == "on"
}

func getEnvList(key string, fallback []string) []string {
	v := strings.TrimSpace(getEnv(key, ""))
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "dev-secret"
	}
	return hex.EncodeToString(b)
}

func environment() string {
	return strings.ToLower(getEnv("GO_ENV", getEnv("APP_ENV", "development")))
}

// requireSecret panics in production when key is unset. Elsewhere a random
// per-process secret is used, so tokens do not survive restarts.
func requireSecret(key string) string {
	v := getEnv(key, "")
	if v != "" {
		return v
	}
	if environment() == "production" {
		panic("missing required env: " + key)
	}
	return randomSecret()
}

func Load() Config {
	_ = envx.LoadDotEnvIfPresent(".env")

	dbPort := getEnvInt("DB_PORT", 5432)
	dbHost := getEnv("DB_HOST", "localhost")
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	dbName := getEnv("DB_NAME", "orion_chatbot")
	dbURL := getEnv("DATABASE_URL", "")
	if hasExplicitDBParts() {
		dbURL = BuildDatabaseURL(dbHost, dbPort, dbName, dbUser, dbPass)
	} else if dbURL != "" {
		dbURL = ApplyDefaultSSLMode(dbURL)
	} else {
		dbURL = BuildDatabaseURL(dbHost, dbPort, dbName, dbUser, dbPass)
	}

	redisHost := getEnv("REDIS_HOST", "localhost")
	redisPort := getEnvInt("REDIS_PORT", 6379)
	redisAddr := net.JoinHostPort(redisHost, strconv.Itoa(redisPort))
	if !getEnvBool("REDIS_ENABLED", true) {
		redisAddr = ""
	}
	env := environment()
	port := getEnv("PORT", "8080")
	defaultLogFormat := "text"
	if env == "production" {
		defaultLogFormat = "json"
	}

	return Config{
		Environment: env,
		ServiceName: getEnv("SERVICE_NAME", "orion-chatbot"),

		Port:          port,
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:"+port), "/"),

		DBURL:  dbURL,
		DBHost: dbHost,
		DBPort: dbPort,
		DBName: dbName,
		DBUser: dbUser,
		DBPass: dbPass,

		RedisAddr:     redisAddr,
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AdminJWTSecret:      requireSecret("ADMIN_JWT_SECRET"),
		AdminEmail:          getEnv("ADMIN_EMAIL", "admin@orion.local"),
		AdminPassword:       requireSecret("ADMIN_PASSWORD"),
		AdminSessionHours:   getEnvInt("ADMIN_SESSION_HOURS", 12),
		CookieSecure:        getEnvBool("COOKIE_SECURE", env == "production"),
		EnableAutoMigration: getEnvBool("AUTO_MIGRATE", false),
		MigrationsDir:       getEnv("MIGRATIONS_DIR", "migrations/sql"),

		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:    getEnv("OPENAI_BASE_URL", ""),
		LLMTimeoutSec:    getEnvInt("LLM_TIMEOUT_SEC", 20),
		ChatHistoryLimit: getEnvInt("CHAT_HISTORY_LIMIT", 10),
		SystemPrompt:     getEnv("CHAT_SYSTEM_PROMPT", ""),

		KeywordTablesPath: getEnv("KEYWORD_TABLES_PATH", ""),
		PDFFontPath:       getEnv("PDF_FONT_PATH", ""),

		WidgetConfigCacheSec:     getEnvInt("WIDGET_CONFIG_CACHE_SEC", 600),
		PublicRateLimitPerMinute: getEnvInt("PUBLIC_RATE_LIMIT_PER_MINUTE", 120),
		ChatRateLimitPerMinute:   getEnvInt("CHAT_RATE_LIMIT_PER_MINUTE", 20),

		AnalyticsFlushIntervalSec: getEnvInt("ANALYTICS_FLUSH_INTERVAL_SEC", 60),
		MaintenanceIntervalHours:  getEnvInt("MAINTENANCE_INTERVAL_HOURS", 24),
		EventRetentionDays:        getEnvInt("EVENT_RETENTION_DAYS", 90),

		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFormat:    getEnv("LOG_FORMAT", defaultLogFormat),
		LogAddSource: getEnvBool("LOG_ADD_SOURCE", false),
		LogColor:     getEnvBool("LOG_COLOR", env != "production"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
}

// DatabaseURLFromEnv resolves the database URL the same way Load does,
// without reading any other settings.
func DatabaseURLFromEnv() string {
	dbHost := getEnv("DB_HOST", "localhost")
	dbPort := getEnvInt("DB_PORT", 5432)
	dbName := getEnv("DB_NAME", "orion_chatbot")
	dbUser := getEnv("DB_USER", "postgres")
	dbPass := getEnv("DB_PASSWORD", "postgres")
	if hasExplicitDBParts() {
		return BuildDatabaseURL(dbHost, dbPort, dbName, dbUser, dbPass)
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		return ApplyDefaultSSLMode(v)
	}
	return BuildDatabaseURL(dbHost, dbPort, dbName, dbUser, dbPass)
}

func BuildDatabaseURL(host string, port int, dbName, user, pass string) string {
	u := &neturl.URL{
		Scheme: "postgres",
		User:   neturl.UserPassword(user, pass),
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + dbName,
	}
	q := u.Query()
	if isLocalHost(host) {
		q.Set("sslmode", "disable")
	} else {
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func ApplyDefaultSSLMode(dbURL string) string {
	u, err := neturl.Parse(strings.TrimSpace(dbURL))
	if err != nil {
		return dbURL
	}
	q := u.Query()
	if q.Get("sslmode") != "" {
		return u.String()
	}
	if isLocalHost(u.Hostname()) {
		q.Set("sslmode", "disable")
	} else {
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// RedactDatabaseURL masks the password for logging.
func RedactDatabaseURL(dbURL string) string {
	u, err := neturl.Parse(dbURL)
	if err != nil {
		return dbURL
	}
	if u.User != nil {
		u.User = neturl.UserPassword(u.User.Username(), "****")
	}
	return u.String()
}

func isLocalHost(host string) bool {
	h := strings.ToLower(strings.TrimSpace(host))
	return h == "" || h == "localhost" || h == "127.0.0.1" || h == "::1"
}

func hasExplicitDBParts() bool {
	return strings.TrimSpace(os.Getenv("DB_HOST")) != "" ||
		strings.TrimSpace(os.Getenv("DB_PORT")) != "" ||
		strings.TrimSpace(os.Getenv("DB_NAME")) != "" ||
		strings.TrimSpace(os.Getenv("DB_USER")) != "" ||
		strings.TrimSpace(os.Getenv("DB_PASSWORD")) != ""
}
