package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration loaded from environment.
type Config struct {
	DB struct {
		DSN string
	}
	API struct {
		Port     string
		BasePath string
	}
	Logging struct {
		Dir   string
		Level string
	}
	Email struct {
		SMTPServer string
		SMTPPort   int
		Username   string
		Password   string
		From       string
	}
	Telegram struct {
		RatePerSecond int
	}
	Kafka struct {
		Broker  string
		Topic   string
		GroupID string
	}
	MQTT struct {
		Broker string
		Topic  string
	}
	Alerts struct {
		CooldownMinutes int
	}
	Ingest struct {
		ClockSkewHours int
	}
	Watering struct {
		MinJumpPct      float64
		LookbackMinutes int
	}
	Trend struct {
		StablePct float64
	}
	Dispatch struct {
		QueueSize          int
		MaxWorkers         int
		TestTimeoutSeconds int
	}
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config

	cfg.DB.DSN = os.Getenv("DB_DSN")
	cfg.API.Port = os.Getenv("API_PORT")
	cfg.API.BasePath = os.Getenv("API_BASE_PATH")
	cfg.Logging.Dir = os.Getenv("LOG_DIR")
	cfg.Logging.Level = os.Getenv("LOG_LEVEL")

	cfg.Email.SMTPServer = os.Getenv("EMAIL_SMTP_SERVER")
	if p, err := strconv.Atoi(os.Getenv("EMAIL_SMTP_PORT")); err == nil {
		cfg.Email.SMTPPort = p
	}
	cfg.Email.Username = os.Getenv("EMAIL_USERNAME")
	cfg.Email.Password = os.Getenv("EMAIL_PASSWORD")
	cfg.Email.From = os.Getenv("EMAIL_FROM")

	cfg.Telegram.RatePerSecond = intEnv("TELEGRAM_RATE_LIMIT", 25)

	// Stream ingestion is optional; consumers start only when a broker is set.
	cfg.Kafka.Broker = os.Getenv("KAFKA_BROKER")
	cfg.Kafka.Topic = os.Getenv("KAFKA_TOPIC")
	cfg.Kafka.GroupID = os.Getenv("KAFKA_GROUP_ID")
	cfg.MQTT.Broker = os.Getenv("MQTT_BROKER")
	cfg.MQTT.Topic = os.Getenv("MQTT_TOPIC")

	cfg.Alerts.CooldownMinutes = intEnv("ALERT_COOLDOWN_MINUTES", 60)
	cfg.Ingest.ClockSkewHours = intEnv("CLOCK_SKEW_HOURS", 24)
	cfg.Watering.MinJumpPct = floatEnv("WATERING_MIN_JUMP_PCT", 15)
	cfg.Watering.LookbackMinutes = intEnv("WATERING_LOOKBACK_MINUTES", 30)
	cfg.Trend.StablePct = floatEnv("TREND_STABLE_PCT", 3)
	cfg.Dispatch.QueueSize = intEnv("QUEUE_SIZE", 500)
	cfg.Dispatch.MaxWorkers = intEnv("MAX_WORKERS", 10)
	cfg.Dispatch.TestTimeoutSeconds = intEnv("DISPATCH_TEST_TIMEOUT_SECONDS", 10)

	// Validate required settings
	missing := []string{}
	if cfg.DB.DSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required configurations: %v", missing)
	}

	// Apply defaults
	if cfg.API.Port == "" {
		cfg.API.Port = ":8080"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "garden-core"
	}
	if cfg.MQTT.Topic == "" {
		cfg.MQTT.Topic = "garden/readings"
	}

	return cfg, nil
}

func intEnv(key string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return def
}

func floatEnv(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return def
}
