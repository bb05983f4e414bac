package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the server settings, read from the environment (and an
// optional .env file).
type Config struct {
	Addr      string
	LogFile   string
	LogStdout bool
	LogDebug  bool
}

// Load reads a .env file if one is present, then resolves every setting
// from the environment with sensible defaults.
func Load() Config {
	_ = godotenv.Load()
	return Config{
		Addr:      getEnv("PONG_ADDR", ":8080"),
		LogFile:   getEnv("PONG_LOG_FILE", "pong.log"),
		LogStdout: getBool("PONG_LOG_STDOUT", true),
		LogDebug:  getBool("PONG_LOG_DEBUG", false),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
