package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays Config fields from environment variables. A .env file in
// the working directory is loaded first when present; a missing file is not
// an error. Duration variables use time.ParseDuration syntax ("15m", "168h");
// malformed values are ignored in favour of the current setting.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, key string) {
		if v, ok := os.LookupEnv(key); ok {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}

	setString(&config.EndpointAddrHTTP, "ACCOUNTD_ADDRESS")
	setString(&config.DatabaseDSN, "ACCOUNTD_DATABASE_DSN")
	setString(&config.SecretKey, "ACCOUNTD_SECRET_KEY")
	setDuration(&config.AccessTokenValidityDuration, "ACCOUNTD_ACCESS_TOKEN_VALIDITY")
	setDuration(&config.RefreshTokenValidityDuration, "ACCOUNTD_REFRESH_TOKEN_VALIDITY")
	setString(&config.S3AccessKey, "ACCOUNTD_S3_ACCESS_KEY")
	setString(&config.S3SecretKey, "ACCOUNTD_S3_SECRET_KEY")
	setString(&config.S3Bucket, "ACCOUNTD_S3_BUCKET")
	setString(&config.S3Region, "ACCOUNTD_S3_REGION")
	setString(&config.S3BaseEndpoint, "ACCOUNTD_S3_BASE_ENDPOINT")
	setString(&config.SendGridAPIKey, "ACCOUNTD_SENDGRID_API_KEY")
	setString(&config.EmailFrom, "ACCOUNTD_EMAIL_FROM")
}
