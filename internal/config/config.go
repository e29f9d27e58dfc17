package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port           int
	NatsURL        string
	NatsToken      string
	LogLevel       string
	MaxUploadBytes int64
	SeenFiles      int
}

func Load() Config {
	return Config{
		Port:           envInt("CONVNORM_PORT", 8760),
		NatsURL:        envStr("NATS_URL", ""),
		NatsToken:      envStr("NATS_TOKEN", ""),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		MaxUploadBytes: int64(envInt("CONVNORM_MAX_UPLOAD_BYTES", 32<<20)),
		SeenFiles:      envInt("CONVNORM_SEEN_FILES", 1024),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
