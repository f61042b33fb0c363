package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default; only DATABASE_URL and BOT_TOKEN are required.
type Config struct {
	// Server
	HTTPPort        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// Database
	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// Telegram transport
	BotToken        string
	BotName         string
	TelegramBaseURL string
	SendTimeout     time.Duration

	// Delivery
	Workers        int
	QueueCapacity  int
	SendRate       int // outbound messages per second, all workers combined
	SendAttempts   int
	SendBackoff    time.Duration // first retry delay, doubled per attempt
	SendBackoffCap time.Duration

	// Reconciler sweep
	ReconcileInterval time.Duration
	PendingAge        time.Duration // pending rows older than this are re-enqueued
	ClaimTimeout      time.Duration // sending rows older than this are reclaimed
}

func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	botToken := os.Getenv("BOT_TOKEN")
	if botToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		ReadTimeout:     getDuration("READ_TIMEOUT", 5*time.Second),
		WriteTimeout:    getDuration("WRITE_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),

		DatabaseURL: dbURL,
		DBMaxConns:  int32(getInt("DB_MAX_CONNS", 25)),
		DBMinConns:  int32(getInt("DB_MIN_CONNS", 5)),

		BotToken:        botToken,
		BotName:         getEnv("BOT_NAME", "wishfox_bot"),
		TelegramBaseURL: getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		SendTimeout:     getDuration("SEND_TIMEOUT", 10*time.Second),

		Workers:        getInt("DELIVERY_WORKERS", 5),
		QueueCapacity:  getInt("QUEUE_CAPACITY", 5000),
		SendRate:       getInt("SEND_RATE_PER_SEC", 30),
		SendAttempts:   getInt("SEND_ATTEMPTS", 3),
		SendBackoff:    getDuration("SEND_BACKOFF", 1*time.Second),
		SendBackoffCap: getDuration("SEND_BACKOFF_CAP", 5*time.Second),

		ReconcileInterval: getDuration("RECONCILE_INTERVAL", 30*time.Second),
		PendingAge:        getDuration("PENDING_AGE", 1*time.Minute),
		ClaimTimeout:      getDuration("CLAIM_TIMEOUT", 5*time.Minute),
	}, nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
