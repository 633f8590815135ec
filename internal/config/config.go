package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultSheetName         = "data"
	defaultFetchTimeoutSecs  = 20
	defaultUserAgent         = "tradelens/0.1"
	defaultClassifyThreshold = 70
	defaultTopN              = 5
	defaultRollingWindow     = 3
	defaultGrowthAlertPct    = 20
	defaultDropAlertRatio    = 0.7
	defaultConsistencyRatio  = 0.5
)

type Config struct {
	SheetName         string
	FetchTimeout      time.Duration
	UserAgent         string
	ClassifyThreshold float64
	TopN              int
	RollingWindow     int
	GrowthAlertPct    float64
	DropAlertRatio    float64
	ConsistencyRatio  float64
	Categories        []string
}

// Load reads configuration from the environment, after loading a .env file
// if one is present in the working directory.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() Config {
	return Config{
		SheetName:         getenv("TRADELENS_SHEET_NAME", defaultSheetName),
		FetchTimeout:      time.Duration(getenvInt("TRADELENS_FETCH_TIMEOUT_SECONDS", defaultFetchTimeoutSecs)) * time.Second,
		UserAgent:         getenv("TRADELENS_USER_AGENT", defaultUserAgent),
		ClassifyThreshold: getenvFloat("TRADELENS_CLASSIFY_THRESHOLD", defaultClassifyThreshold),
		TopN:              getenvInt("TRADELENS_TOP_N", defaultTopN),
		RollingWindow:     getenvInt("TRADELENS_ROLLING_WINDOW", defaultRollingWindow),
		GrowthAlertPct:    getenvFloat("TRADELENS_GROWTH_ALERT_PCT", defaultGrowthAlertPct),
		DropAlertRatio:    getenvFloat("TRADELENS_DROP_ALERT_RATIO", defaultDropAlertRatio),
		ConsistencyRatio:  getenvFloat("TRADELENS_CONSISTENCY_RATIO", defaultConsistencyRatio),
		Categories:        getenvList("TRADELENS_CATEGORIES"),
	}
}

func getenv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvList(key string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
