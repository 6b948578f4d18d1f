package adminauth

// GuardPolicy names the two navigation policies.
type GuardPolicy string

const (
	PolicyAuthenticatedRequired GuardPolicy = "authenticated-required"
	PolicyAnonymousRequired     GuardPolicy = "anonymous-required"
)

// GuardDecision is the outcome of evaluating a guard: either the
// navigation proceeds, or the caller redirects to RedirectTo.
type GuardDecision struct {
	Allow      bool
	RedirectTo string
}

// RequireAuthenticated allows the navigation when the caller holds a
// session, otherwise it points at the login view.
func RequireAuthenticated(state AuthState, loginPath string) GuardDecision {
	if state.Authenticated {
		return GuardDecision{Allow: true}
	}
	return GuardDecision{Allow: false, RedirectTo: loginPath}
}

// RequireAnonymous allows the navigation only for anonymous callers,
// otherwise it points at the dashboard. Used for login and signup views.
func RequireAnonymous(state AuthState, dashboardPath string) GuardDecision {
	if !state.Authenticated {
		return GuardDecision{Allow: true}
	}
	return GuardDecision{Allow: false, RedirectTo: dashboardPath}
}

// Decide evaluates a named policy.
func Decide(policy GuardPolicy, state AuthState, fallback string) GuardDecision {
	switch policy {
	case PolicyAnonymousRequired:
		return RequireAnonymous(state, fallback)
	default:
		return RequireAuthenticated(state, fallback)
	}
}

// Guard binds the pure decision functions to a live session store. Every
// evaluation reads the store fresh; decisions are never cached across an
// asynchronous gap.
type Guard struct {
	sessions      *Store
	loginPath     string
	dashboardPath string
}

// NewGuard builds a guard over the store using the configured paths.
func NewGuard(sessions *Store, cfg Config) *Guard {
	if sessions == nil {
		panic("Missing session Store in route guard...")
	}

	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	dashboardPath := cfg.DashboardPath
	if dashboardPath == "" {
		dashboardPath = "/dashboard"
	}

	return &Guard{
		sessions:      sessions,
		loginPath:     loginPath,
		dashboardPath: dashboardPath,
	}
}

// RequireAuthenticated evaluates the authenticated-required policy against
// the current session.
func (g *Guard) RequireAuthenticated() GuardDecision {
	return RequireAuthenticated(DeriveAuthState(g.sessions.Get()), g.loginPath)
}

// RequireAnonymous evaluates the anonymous-required policy against the
// current session.
func (g *Guard) RequireAnonymous() GuardDecision {
	return RequireAnonymous(DeriveAuthState(g.sessions.Get()), g.dashboardPath)
}

// Apply hands a blocked decision to the navigator and reports whether the
// navigation may proceed.
func (g *Guard) Apply(nav Navigator, decision GuardDecision) bool {
	if !decision.Allow && nav != nil {
		nav.Redirect(decision.RedirectTo)
	}
	return decision.Allow
}
