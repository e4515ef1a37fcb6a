package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	// Admin client
	APIBaseURL string
	TokenFile  string

	// Dev backend
	AppPort   int
	JWTSecret string
	JWTTTLMin int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// Notification dispatch
	NotifyProvider   string
	TelegramBotToken string
	TelegramChatID   int64

	OTLPEndpoint string
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "restobook"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))

	cfg.APIBaseURL = cast.ToString(getOrReturnDefault("API_BASE_URL", "http://localhost:8080"))
	cfg.TokenFile = cast.ToString(getOrReturnDefault("TOKEN_FILE", ".restobook-session.json"))

	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))
	cfg.JWTSecret = cast.ToString(getOrReturnDefault("JWT_SECRET", "restobook_dev_secret"))
	cfg.JWTTTLMin = cast.ToInt(getOrReturnDefault("JWT_TTL_MIN", 12*60))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "restobook"))

	cfg.NotifyProvider = cast.ToString(getOrReturnDefault("NOTIFY_PROVIDER", "log"))
	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))
	cfg.TelegramChatID = cast.ToInt64(getOrReturnDefault("TG_CHAT_ID", 0))

	cfg.OTLPEndpoint = cast.ToString(getOrReturnDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
