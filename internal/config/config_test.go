package config_test

import (
	"testing"

	"github.com/mediadeck/signinkit/internal/config"
	"github.com/stretchr/testify/require"
)

func TestNewAppliesDefaults(t *testing.T) {
	cfg, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "signinctl", cfg.AppName)
	require.Equal(t, []string{"openid", "email", "profile"}, cfg.RequiredScopes)
	require.Equal(t, 9876, cfg.CallbackPort)
	require.Equal(t, "https://accounts.google.com", cfg.IssuerURL)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("SIGNIN_CLIENT_ID", "client-1")
	t.Setenv("SIGNIN_REQUIRED_SCOPES", "youtube,youtube.readonly")
	t.Setenv("SIGNIN_CALLBACK_PORT", "9999")

	cfg, err := config.New()
	require.NoError(t, err)
	require.Equal(t, "client-1", cfg.ClientID)
	require.Equal(t, []string{"youtube", "youtube.readonly"}, cfg.RequiredScopes)
	require.Equal(t, 9999, cfg.CallbackPort)
}
