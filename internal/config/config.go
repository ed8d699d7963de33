// Package config loads the application configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds everything signinctl needs: the OAuth client identity, the
// scopes the application requires, and ambient settings.
type Config struct {
	AppName      string `env:"SIGNIN_APP_NAME" envDefault:"signinctl"`
	ClientID     string `env:"SIGNIN_CLIENT_ID"`
	ClientSecret string `env:"SIGNIN_CLIENT_SECRET"`

	// RequiredScopes is the fixed set of scopes the application requires; the
	// permission check passes when at least one of them is granted.
	RequiredScopes []string `env:"SIGNIN_REQUIRED_SCOPES" envSeparator:"," envDefault:"openid,email,profile"`

	CallbackPort int    `env:"SIGNIN_CALLBACK_PORT" envDefault:"9876"`
	IssuerURL    string `env:"SIGNIN_ISSUER_URL" envDefault:"https://accounts.google.com"`
	LogLevel     string `env:"SIGNIN_LOG_LEVEL" envDefault:"info"`
}

// New parses the configuration from the process environment.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "[New] parsing environment")
	}
	return cfg, nil
}
