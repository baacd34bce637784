package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/walletvault/internal/flagx"
	"github.com/dmitrijs2005/walletvault/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling; duration fields accept
// both strings ("15m") and integer nanoseconds. Zero values are treated as
// "not set" and leave the default in place.
type JsonConfig struct {
	Env                          string         `json:"env"`
	EndpointAddr                 string         `json:"endpoint_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	AccessTokenSecret            string         `json:"access_token_secret"`
	RefreshTokenSecret           string         `json:"refresh_token_secret"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	ResetCodeValidityDuration    timex.Duration `json:"reset_code_validity_duration"`
	ResetCooldownDuration        timex.Duration `json:"reset_cooldown_duration"`
	ResetTicketValidityDuration  timex.Duration `json:"reset_ticket_validity_duration"`
	TwoFactorIssuer              string         `json:"two_factor_issuer"`
	SMTPAddr                     string         `json:"smtp_addr"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	MailFrom                     string         `json:"mail_from"`
}

// parseJson loads configuration from the JSON file named by -c/-config,
// if any. Missing flag means no file is loaded; an unreadable or invalid
// file is a startup fault and panics.
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

	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setDuration := func(dst *time.Duration, v timex.Duration) {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	setString(&config.Env, c.Env)
	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.AccessTokenSecret, c.AccessTokenSecret)
	setString(&config.RefreshTokenSecret, c.RefreshTokenSecret)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&config.ResetCodeValidityDuration, c.ResetCodeValidityDuration)
	setDuration(&config.ResetCooldownDuration, c.ResetCooldownDuration)
	setDuration(&config.ResetTicketValidityDuration, c.ResetTicketValidityDuration)
	setString(&config.TwoFactorIssuer, c.TwoFactorIssuer)
	setString(&config.SMTPAddr, c.SMTPAddr)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailFrom, c.MailFrom)
}
