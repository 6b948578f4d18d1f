// Package routeguard adapts the session route guards to server-rendered
// navigation: blocked requests are redirected, and the rejected route is
// remembered in a cookie so the navigation can resume after login.
package routeguard

import (
	"time"

	adminauth "github.com/caredesk/go-adminauth"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

const defaultRejectedRouteKey = "rejected_route"

// Config wires the middleware to a session store and the redirect targets.
type Config struct {
	Sessions         *adminauth.Store
	LoginPath        string
	DashboardPath    string
	RejectedRouteKey string
	Logger           adminauth.Logger
}

func withDefaults(cfg Config) Config {
	if cfg.Sessions == nil {
		panic("Missing session Store in route guard middleware...")
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.DashboardPath == "" {
		cfg.DashboardPath = "/dashboard"
	}
	if cfg.RejectedRouteKey == "" {
		cfg.RejectedRouteKey = defaultRejectedRouteKey
	}
	return cfg
}

// RequireAuthenticated redirects anonymous callers to the login view,
// remembering the route they were blocked on.
func RequireAuthenticated(cfg Config) router.MiddlewareFunc {
	cfg = withDefaults(cfg)
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			state := adminauth.DeriveAuthState(cfg.Sessions.Get())
			decision := adminauth.RequireAuthenticated(state, cfg.LoginPath)
			if decision.Allow {
				return next(ctx)
			}

			if cfg.Logger != nil {
				cfg.Logger.Info("blocked unauthenticated navigation: %s", ctx.OriginalURL())
			}

			setRejectedRoute(ctx, cfg)
			return redirect(ctx, decision.RedirectTo)
		}
	}
}

// RequireAnonymous redirects authenticated callers to the dashboard. Used
// on login and signup routes.
func RequireAnonymous(cfg Config) router.MiddlewareFunc {
	cfg = withDefaults(cfg)
	return func(next router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			state := adminauth.DeriveAuthState(cfg.Sessions.Get())
			decision := adminauth.RequireAnonymous(state, cfg.DashboardPath)
			if decision.Allow {
				return next(ctx)
			}
			return redirect(ctx, decision.RedirectTo)
		}
	}
}

// RejectedRoute returns the route a previous navigation was blocked on and
// clears the cookie, falling back to def when none was recorded.
func RejectedRoute(ctx router.Context, cfg Config, def string) string {
	cfg = withDefaults(cfg)

	route := ctx.Cookies(cfg.RejectedRouteKey)
	if route == "" {
		return def
	}

	clearCookie(ctx, cfg.RejectedRouteKey)
	return route
}

func setRejectedRoute(ctx router.Context, cfg Config) {
	ctx.Cookie(&router.Cookie{
		Name:     cfg.RejectedRouteKey,
		Value:    ctx.OriginalURL(),
		Expires:  time.Now().Add(5 * time.Minute),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func clearCookie(ctx router.Context, name string) {
	ctx.Cookie(&router.Cookie{
		Name:     name,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   true,
		SameSite: "Lax",
	})
}

func redirect(ctx router.Context, target string) error {
	status := fiber.StatusSeeOther
	if ctx.Method() == string(router.GET) {
		status = fiber.StatusFound
	}
	return ctx.Redirect(target, status)
}
