package util

import (
	"os"
	"strconv"
	"sync"

	"github.com/subosito/gotenv"
)

var loadDotEnvOnce sync.Once

// LoadDotEnv loads a local .env file into the environment once, ignoring a
// missing file.
func LoadDotEnv() {
	loadDotEnvOnce.Do(func() {
		_ = gotenv.Load()
	})
}

// GetEnv returns the env variable or the default when unset.
func GetEnv(key string, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}

	return defaultVal
}

// GetEnvAsInt returns the env variable parsed as int or the default.
func GetEnvAsInt(key string, defaultVal int) int {
	strVal := GetEnv(key, "")

	if val, err := strconv.Atoi(strVal); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsInt64 returns the env variable parsed as int64 or the default.
func GetEnvAsInt64(key string, defaultVal int64) int64 {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseInt(strVal, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

// GetEnvAsBool returns the env variable parsed as bool or the default.
func GetEnvAsBool(key string, defaultVal bool) bool {
	strVal := GetEnv(key, "")

	if val, err := strconv.ParseBool(strVal); err == nil {
		return val
	}

	return defaultVal
}
