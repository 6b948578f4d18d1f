package adminauth

import (
	"time"

	"github.com/caarlos0/env/v11"
	errors "github.com/goliatone/go-errors"
)

// Config holds the client-side settings: where the API lives, where guards
// send blocked navigations, and under which key the token is persisted.
type Config struct {
	BaseURL        string        `env:"CAREDESK_API_BASE_URL" envDefault:"http://localhost:8080"`
	RequestTimeout time.Duration `env:"CAREDESK_API_TIMEOUT" envDefault:"30s"`
	SignupPath     string        `env:"CAREDESK_SIGNUP_PATH" envDefault:"/auth/signup"`
	LoginPath      string        `env:"CAREDESK_LOGIN_PATH" envDefault:"/login"`
	DashboardPath  string        `env:"CAREDESK_DASHBOARD_PATH" envDefault:"/dashboard"`
	TokenKey       string        `env:"CAREDESK_TOKEN_KEY" envDefault:"accessToken"`
	PhoneRegion    string        `env:"CAREDESK_PHONE_REGION" envDefault:"US"`
	Debug          bool          `env:"CAREDESK_DEBUG"`
}

// LoadConfig reads configuration from environment variables, applying the
// defaults above for anything unset.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, errors.CategoryOperation, "failed to parse environment configuration")
	}
	return cfg, nil
}

// DefaultConfig returns the configuration with every default applied and no
// environment lookup. Useful for tests.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "http://localhost:8080",
		RequestTimeout: 30 * time.Second,
		SignupPath:     "/auth/signup",
		LoginPath:      "/login",
		DashboardPath:  "/dashboard",
		TokenKey:       "accessToken",
		PhoneRegion:    "US",
	}
}
