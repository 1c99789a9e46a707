// Package config provides runtime configuration values for the service.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds configuration knobs for the HTTP server, the catalog store,
// the activity feed and the event workers.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
	LogLevel        string

	StoreDriver string
	StoreDSN    string
	SeedFile    string
	PageSize    int

	RedisAddr       string
	ActivityFeedKey string
	ActivityFeedMax int

	CompanyName    string
	CurrencySymbol string
	Actor          string

	InitialWorkerCount      int
	WorkerMin               int
	WorkerMax               int
	ScaleInterval           time.Duration
	ScaleUpBacklogPerWorker int
	ScaleDownIdleTicks      int
	QueueHighWatermark      int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	return time.Duration(atoienv(key, defMs)) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// LoadDotEnv loads variables from a dotenv file without overriding ones
// already set. A missing file is not an error. When path is empty the
// file is .env.local and is only read with APP_ENV=local.
func LoadDotEnv(path string) (bool, error) {
	if path == "" {
		if os.Getenv("APP_ENV") != "local" {
			return false, nil
		}
		path = ".env.local"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Load collects configuration from environment with defaults.
func Load() Config {
	minWorkers := atoienv("WORKER_MIN", 1)
	maxWorkers := atoienv("WORKER_MAX", 4)
	initialWorkers := atoienv("WORKER_COUNT", minWorkers)
	return Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		LogLevel:        getenv("LOG_LEVEL", "info"),

		StoreDriver: getenv("STORE_DRIVER", "memory"),
		StoreDSN:    getenv("STORE_DSN", ""),
		SeedFile:    getenv("SEED_FILE", ""),
		PageSize:    atoienv("PAGE_SIZE", 20),

		RedisAddr:       getenv("REDIS_ADDR", ""),
		ActivityFeedKey: getenv("ACTIVITY_FEED_KEY", "activity:feed"),
		ActivityFeedMax: atoienv("ACTIVITY_FEED_MAX", 500),

		CompanyName:    getenv("COMPANY_NAME", "Stockroom"),
		CurrencySymbol: getenv("CURRENCY_SYMBOL", "€"),
		Actor:          getenv("ACTOR", "Admin"),

		InitialWorkerCount:      initialWorkers,
		WorkerMin:               minWorkers,
		WorkerMax:               maxWorkers,
		ScaleInterval:           durenvms("SCALE_INTERVAL_MS", 500),
		ScaleUpBacklogPerWorker: atoienv("SCALE_UP_BACKLOG_PER_WORKER", 100),
		ScaleDownIdleTicks:      atoienv("SCALE_DOWN_IDLE_TICKS", 6),
		QueueHighWatermark:      atoienv("QUEUE_HIGH_WATERMARK", 5000),
	}
}
