package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables, loading an
// optional .env file first. Unset variables leave the current value intact;
// malformed durations are ignored rather than fatal so a bad variable cannot
// take the service down.
//
// Recognized variables:
//
//	RUN_ADDRESS        HTTP bind address
//	DATABASE_DSN       PostgreSQL DSN
//	SECRET_KEY         JWT HMAC secret
//	ACCESS_TOKEN_TTL   access token validity (Go duration, e.g. "24h")
//	REFRESH_TOKEN_TTL  refresh token validity (Go duration, e.g. "720h")
//	POLL_INTERVAL      reminder scheduler poll interval (e.g. "5s")
func parseEnv(config *Config) {
	// missing .env is the normal case in containers
	_ = godotenv.Load()

	if v := os.Getenv("RUN_ADDRESS"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("SECRET_KEY"); v != "" {
		config.SecretKey = v
	}
	if v := os.Getenv("ACCESS_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenValidityDuration = d
		}
	}
	if v := os.Getenv("REFRESH_TOKEN_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.RefreshTokenValidityDuration = d
		}
	}
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.SchedulerPollInterval = d
		}
	}
}
