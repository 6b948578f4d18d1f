package adminauth_test

import (
	"testing"
	"time"

	adminauth "github.com/caredesk/go-adminauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := adminauth.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, adminauth.DefaultConfig(), cfg)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("CAREDESK_API_BASE_URL", "https://api.caredesk.example")
	t.Setenv("CAREDESK_API_TIMEOUT", "5s")
	t.Setenv("CAREDESK_TOKEN_KEY", "token")

	cfg, err := adminauth.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://api.caredesk.example", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "token", cfg.TokenKey)
	assert.Equal(t, "/login", cfg.LoginPath)
}
