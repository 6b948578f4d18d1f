package adminauth

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// TokenStore is the durable backing for the persisted bearer credential.
// Implementations only need to guarantee the value survives a restart.
type TokenStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Navigator is the redirect primitive guards hand a blocked navigation to.
type Navigator interface {
	Redirect(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

func (f NavigatorFunc) Redirect(path string) {
	if f != nil {
		f(path)
	}
}

// UserSummary is the slim identity record kept alongside the bearer token.
type UserSummary struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role,omitempty"`
}

func (u *UserSummary) clone() *UserSummary {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

// SignupClient is the slice of the HTTP client the wizard depends on.
type SignupClient interface {
	Signup(ctx context.Context, payload SignupPayload) (SignupResult, error)
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ADMINAUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ADMINAUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ADMINAUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ADMINAUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
