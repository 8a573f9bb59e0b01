package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr            string
	DataDir         string
	DBPath          string
	AlertsPath      string
	TriggerLogPath  string
	CollectInterval time.Duration
	WatchInterval   time.Duration
	RetentionDays   int
}

func Load() Config {
	dataDir := getenv("APP_DATA_DIR", "./data")
	return Config{
		Addr:            getenv("APP_ADDR", ":3000"),
		DataDir:         dataDir,
		DBPath:          getenv("APP_DB_PATH", dataDir+"/metrics.db"),
		AlertsPath:      getenv("APP_ALERTS_PATH", dataDir+"/alerts.json"),
		TriggerLogPath:  getenv("APP_TRIGGER_LOG_PATH", dataDir+"/triggers.log"),
		CollectInterval: getenvDuration("APP_COLLECT_INTERVAL", time.Second),
		WatchInterval:   getenvDuration("APP_WATCH_INTERVAL", 5*time.Second),
		RetentionDays:   getenvInt("APP_RETENTION_DAYS", 14),
	}
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func getenvDuration(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return d
	}
	return dur
}
