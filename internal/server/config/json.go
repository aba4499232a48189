package config

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/shepherdhq/memberd/internal/flagx"
	"github.com/shepherdhq/memberd/internal/timex"
)

// JsonConfig is the JSON DTO for configuration files. Interval fields use
// timex.Duration so they accept both "15m" strings and integer nanoseconds.
// After unmarshalling, non-empty fields are copied into the runtime Config.
type JsonConfig struct {
	Addr            string         `json:"addr"`
	DatabaseDSN     string         `json:"database_dsn"`
	JWTSecret       string         `json:"jwt_secret"`
	AccessTokenTTL  timex.Duration `json:"access_token_ttl"`
	RefreshTokenTTL string         `json:"refresh_token_ttl"`
	BcryptCost      int            `json:"bcrypt_cost"`
	CORSOrigins     string         `json:"cors_origins"`
	BrevoAPIKey     string         `json:"brevo_api_key"`
	MailFromName    string         `json:"mail_from_name"`
	MailFromEmail   string         `json:"mail_from_email"`
	S3RootUser      string         `json:"s3_root_user"`
	S3RootPassword  string         `json:"s3_root_password"`
	S3Bucket        string         `json:"s3_bucket"`
	S3Region        string         `json:"s3_region"`
	S3BaseEndpoint  string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. If no flag is given, nothing
// is loaded. An unreadable or invalid file panics: the process must not
// start on a half-applied configuration.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIfNotEmpty(&config.Addr, c.Addr)
	setIfNotEmpty(&config.DatabaseDSN, c.DatabaseDSN)
	setIfNotEmpty(&config.JWTSecret, c.JWTSecret)
	if c.AccessTokenTTL.Duration > 0 {
		config.AccessTokenTTL = c.AccessTokenTTL.Duration
	}
	setIfNotEmpty(&config.RefreshTokenTTL, c.RefreshTokenTTL)
	if c.BcryptCost > 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.CORSOrigins != "" {
		config.CORSOrigins = strings.Split(c.CORSOrigins, ",")
	}
	setIfNotEmpty(&config.BrevoAPIKey, c.BrevoAPIKey)
	setIfNotEmpty(&config.MailFromName, c.MailFromName)
	setIfNotEmpty(&config.MailFromEmail, c.MailFromEmail)
	setIfNotEmpty(&config.S3RootUser, c.S3RootUser)
	setIfNotEmpty(&config.S3RootPassword, c.S3RootPassword)
	setIfNotEmpty(&config.S3Bucket, c.S3Bucket)
	setIfNotEmpty(&config.S3Region, c.S3Region)
	setIfNotEmpty(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setIfNotEmpty(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
