package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	DatabaseURL   string
	ProcLogFile   string
	LogMaxSizeMB  int
	LogMaxBackups int
}

func New() (*Config, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	cfg := &Config{
		DatabaseURL:   databaseURL,
		ProcLogFile:   "log/log-processor.log",
		LogMaxSizeMB:  5,
		LogMaxBackups: 5,
	}

	if procLog := os.Getenv("PROC_LOG_FILE"); procLog != "" {
		cfg.ProcLogFile = procLog
	}

	var err error
	cfg.LogMaxSizeMB, err = getEnvAsInt("PROC_LOG_MAX_SIZE_MB", cfg.LogMaxSizeMB)
	if err != nil {
		return nil, err
	}

	cfg.LogMaxBackups, err = getEnvAsInt("PROC_LOG_MAX_BACKUPS", cfg.LogMaxBackups)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: expected an integer, got '%s'", key, valueStr)
	}

	return value, nil
}
