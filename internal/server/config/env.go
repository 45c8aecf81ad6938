package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/outreach/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// Environment variable names.
const (
	EnvHTTPAddr          = "HTTP_ADDRESS"
	EnvGRPCHealthAddr    = "GRPC_HEALTH_ADDRESS"
	EnvDatabaseDSN       = "DATABASE_URL"
	EnvSecretKey         = "SESSION_SECRET"
	EnvSessionDuration   = "SESSION_DURATION"
	EnvRenewalWindow     = "SESSION_RENEWAL_WINDOW"
	EnvSessionMode       = "SESSION_MODE"
	EnvCookieName        = "SESSION_COOKIE_NAME"
	EnvEnvironment       = "APP_ENV"
	EnvBcryptCost        = "BCRYPT_COST"
	EnvMinPasswordLength = "MIN_PASSWORD_LENGTH"
	EnvLogLevel          = "LOG_LEVEL"
	EnvLogBackend        = "LOG_BACKEND"
)

// parseEnv loads the dotenv file (-E/-env-file, or ./.env when present) into
// the process environment without overriding variables already set, then
// copies the known variables into config.
func parseEnv(config *Config) error {
	if err := loadEnvFile(flagx.EnvFileFlag()); err != nil {
		return err
	}

	lookupString(EnvHTTPAddr, &config.HTTPAddr)
	lookupString(EnvGRPCHealthAddr, &config.GRPCHealthAddr)
	lookupString(EnvDatabaseDSN, &config.DatabaseDSN)
	lookupString(EnvSecretKey, &config.SecretKey)
	lookupString(EnvSessionMode, &config.SessionMode)
	lookupString(EnvCookieName, &config.CookieName)
	lookupString(EnvEnvironment, &config.Environment)
	lookupString(EnvLogLevel, &config.LogLevel)
	lookupString(EnvLogBackend, &config.LogBackend)

	return errors.Join(
		lookupDuration(EnvSessionDuration, &config.SessionDuration),
		lookupDuration(EnvRenewalWindow, &config.RenewalWindow),
		lookupInt(EnvBcryptCost, &config.BcryptCost),
		lookupInt(EnvMinPasswordLength, &config.MinPasswordLength),
	)
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = defaultEnvFile
	}
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load env file %s: %w", path, err)
}

func lookupString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func lookupDuration(key string, dst *time.Duration) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}

func lookupInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
