package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/shopkeeper/internal/flagx"
	"github.com/dmitrijs2005/shopkeeper/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations accept
// either "1h"-style strings or integer nanoseconds.
type JsonConfig struct {
	Env               string          `json:"env"`
	EndpointAddrHTTP  string          `json:"endpoint_addr_http"`
	DatabaseDSN       string          `json:"database_dsn"`
	SecretKey         string          `json:"secret_key"`
	SessionCookieName string          `json:"session_cookie_name"`
	SessionTTL        timex.Duration  `json:"session_ttl"`
	ResetTokenTTL     timex.Duration  `json:"reset_token_ttl"`
	ResetTokenWindow  *timex.Duration `json:"reset_token_window"`
	BcryptCost        int             `json:"bcrypt_cost"`
	FrontendURL       string          `json:"frontend_url"`
	MailFrom          string          `json:"mail_from"`
	MailHost          string          `json:"mail_host"`
	MailPort          int             `json:"mail_port"`
	MailUser          string          `json:"mail_user"`
	MailPassword      string          `json:"mail_password"`
	S3RootUser        string          `json:"s3_root_user"`
	S3RootPassword    string          `json:"s3_root_password"`
	S3Bucket          string          `json:"s3_bucket"`
	S3Region          string          `json:"s3_region"`
	S3BaseEndpoint    string          `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config. Only the
// keys present in the file replace current values. A missing flag is a no-op;
// an unreadable or invalid file panics.
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

	setString(&config.Env, c.Env)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SessionCookieName, c.SessionCookieName)
	if c.SessionTTL.Duration != 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.ResetTokenTTL.Duration != 0 {
		config.ResetTokenTTL = c.ResetTokenTTL.Duration
	}
	// zero is a meaningful window, so only an absent key keeps the current one
	if c.ResetTokenWindow != nil {
		config.ResetTokenWindow = c.ResetTokenWindow.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	setString(&config.FrontendURL, c.FrontendURL)
	setString(&config.MailFrom, c.MailFrom)
	setString(&config.MailHost, c.MailHost)
	if c.MailPort != 0 {
		config.MailPort = c.MailPort
	}
	setString(&config.MailUser, c.MailUser)
	setString(&config.MailPassword, c.MailPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
