package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/outreach/internal/flagx"
	"github.com/dmitrijs2005/outreach/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, so both "168h" and integer nanoseconds are accepted.
// Only fields present (non-zero) in the file override the current values.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	GRPCHealthAddr    string         `json:"grpc_health_addr"`
	DatabaseDSN       string         `json:"database_dsn"`
	SecretKey         string         `json:"secret_key"`
	SessionDuration   timex.Duration `json:"session_duration"`
	RenewalWindow     timex.Duration `json:"renewal_window"`
	SessionMode       string         `json:"session_mode"`
	CookieName        string         `json:"cookie_name"`
	Environment       string         `json:"environment"`
	BcryptCost        int            `json:"bcrypt_cost"`
	MinPasswordLength int            `json:"min_password_length"`
	LogLevel          string         `json:"log_level"`
	LogBackend        string         `json:"log_backend"`
}

// parseJson overlays the file named by -c/-config onto config.
// It panics if the file cannot be read or parsed.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SessionMode, c.SessionMode)
	setString(&config.CookieName, c.CookieName)
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogBackend, c.LogBackend)

	if c.SessionDuration.Duration != 0 {
		config.SessionDuration = c.SessionDuration.Duration
	}
	if c.RenewalWindow.Duration != 0 {
		config.RenewalWindow = c.RenewalWindow.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.MinPasswordLength != 0 {
		config.MinPasswordLength = c.MinPasswordLength
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
