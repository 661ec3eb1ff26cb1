package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// positiveDuration reads key as a positive duration.
func positiveDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive duration", key)
	}
	return d, nil
}

// positiveInt reads key as a positive integer, falling back when unset.
func positiveInt(key string, fallback int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", key)
	}
	return n, nil
}

// loadBatchSize reads BATCH_SIZE, letting the file value stand in for the
// default when the variable is unset.
func loadBatchSize(fromFile int) (int, error) {
	if os.Getenv("BATCH_SIZE") == "" && fromFile != 0 {
		if fromFile < 1 || fromFile > maxBatchSize {
			return 0, fmt.Errorf("invalid batch_size in GWDASH_CONFIG: must be 1-%d", maxBatchSize)
		}
		return fromFile, nil
	}
	return sharedcfg.ParseBatchSize()
}
