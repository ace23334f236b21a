package config

import (
	"fmt"
	"os"
)

type Config struct {
	Env                   string
	ListenAddr            string
	DatabaseURL           string
	CertWorkers           int
	FarmSizeCategoriesCSV string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func Load() (Config, error) {
	cfg := Config{
		Env:                   getenv("APP_ENV", "development"),
		ListenAddr:            getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		CertWorkers:           getenvInt("CERT_WORKERS", 2),
		FarmSizeCategoriesCSV: getenv("FARM_SIZE_CATEGORIES_PATH", "data/farm_size_categories.csv"),
	}
	if cfg.DatabaseURL == "" {
		// Not fatal for early local runs; warn via error value so callers can decide.
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var out int
		if _, err := fmt.Sscanf(v, "%d", &out); err == nil {
			return out
		}
	}
	return def
}
