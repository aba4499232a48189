package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays environment variables onto the Config. A .env file in
// the working directory is loaded first if present; real environment
// variables win over .env entries (godotenv does not override).
//
// Variable names match the original deployment environment:
// PORT, DATABASE_URL, JWT_SECRET, JWT_EXPIRATION, JWT_REFRESH_EXPIRATION,
// BCRYPT_COST, CORS_ORIGINS, BREVO_API_KEY, BREVO_FROM_NAME,
// BREVO_FROM_EMAIL, S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION,
// S3_BASE_ENDPOINT.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	if port := os.Getenv("PORT"); port != "" {
		config.Addr = ":" + port
	}
	setIfNotEmpty(&config.DatabaseDSN, os.Getenv("DATABASE_URL"))
	setIfNotEmpty(&config.JWTSecret, os.Getenv("JWT_SECRET"))

	if v := os.Getenv("JWT_EXPIRATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			config.AccessTokenTTL = d
		}
	}
	setIfNotEmpty(&config.RefreshTokenTTL, os.Getenv("JWT_REFRESH_EXPIRATION"))

	if v := os.Getenv("BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil && cost > 0 {
			config.BcryptCost = cost
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		config.CORSOrigins = strings.Split(v, ",")
	}

	setIfNotEmpty(&config.BrevoAPIKey, os.Getenv("BREVO_API_KEY"))
	setIfNotEmpty(&config.MailFromName, os.Getenv("BREVO_FROM_NAME"))
	setIfNotEmpty(&config.MailFromEmail, os.Getenv("BREVO_FROM_EMAIL"))

	setIfNotEmpty(&config.S3RootUser, os.Getenv("S3_ROOT_USER"))
	setIfNotEmpty(&config.S3RootPassword, os.Getenv("S3_ROOT_PASSWORD"))
	setIfNotEmpty(&config.S3Bucket, os.Getenv("S3_BUCKET"))
	setIfNotEmpty(&config.S3Region, os.Getenv("S3_REGION"))
	setIfNotEmpty(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))
}
