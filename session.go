package adminauth

import (
	"context"
	"sync"
	"time"
)

// Session is the in-memory record of the current bearer credential and user
// summary. An empty token means anonymous. A non-empty token with a nil user
// is the transient "authenticated, profile pending" state entered when a
// persisted token is restored at startup.
type Session struct {
	Token string
	User  *UserSummary
}

// Anonymous reports whether the session carries no credential.
func (s Session) Anonymous() bool {
	return s.Token == ""
}

// AuthState is the derived authentication state. It is always recomputed
// from the session, never stored, so it cannot diverge.
type AuthState struct {
	Authenticated  bool
	ProfilePending bool
}

// DeriveAuthState computes the authentication state from a session.
func DeriveAuthState(s Session) AuthState {
	return AuthState{
		Authenticated:  s.Token != "",
		ProfilePending: s.Token != "" && s.User == nil,
	}
}

// Store owns the process-wide session. All mutations go through Login and
// Logout, are serialized by a mutex, and bump a monotonically increasing
// version counter so a late-arriving write cannot resurrect a session the
// user already ended.
type Store struct {
	mu          sync.Mutex
	version     uint64
	current     Session
	tokens      TokenStore
	tokenKey    string
	decodeUser  func(token string) *UserSummary
	logger      Logger
	activity    ActivitySink
	subscribers map[uint64]func(Session)
	nextSubID   uint64
}

// StoreOption customizes store construction.
type StoreOption func(*Store)

// WithStoreLogger overrides the default logger.
func WithStoreLogger(logger Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStoreActivitySink sets the ActivitySink used to publish session events.
func WithStoreActivitySink(sink ActivitySink) StoreOption {
	return func(s *Store) {
		s.activity = normalizeActivitySink(sink)
	}
}

// WithTokenKey overrides the persistence key, default "accessToken".
func WithTokenKey(key string) StoreOption {
	return func(s *Store) {
		if key != "" {
			s.tokenKey = key
		}
	}
}

// WithUserDecoder overrides how a restored token is turned into a user
// summary. Returning nil leaves the session in the profile-pending state.
func WithUserDecoder(decode func(token string) *UserSummary) StoreOption {
	return func(s *Store) {
		if decode != nil {
			s.decodeUser = decode
		}
	}
}

// NewStore builds a session store backed by the given TokenStore and
// restores any previously persisted token. When the restored token is a
// parseable JWT the user summary is prefilled from its claims; otherwise
// the session starts authenticated with the profile pending.
func NewStore(ctx context.Context, tokens TokenStore, opts ...StoreOption) *Store {
	s := &Store{
		tokens:      tokens,
		tokenKey:    "accessToken",
		decodeUser:  decodeUserFromToken,
		logger:      defLogger{},
		activity:    noopActivitySink{},
		subscribers: map[uint64]func(Session){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.restore(ctx)

	return s
}

func (s *Store) restore(ctx context.Context) {
	if s.tokens == nil {
		return
	}

	token, err := s.tokens.Get(ctx, s.tokenKey)
	if err != nil {
		s.logger.Warn("session restore failed, starting anonymous: %v", err)
		return
	}
	if token == "" {
		return
	}

	s.current = Session{
		Token: token,
		User:  s.decodeUser(token),
	}
}

// Get returns a copy of the current session.
func (s *Store) Get() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Session{
		Token: s.current.Token,
		User:  s.current.User.clone(),
	}
}

// Version returns the current session version. Capture it before starting
// an asynchronous flow and pass it back via WithObservedVersion to have the
// store reject the write if the session changed in between.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// LoginOption customizes a login commit.
type LoginOption func(*loginOptions)

type loginOptions struct {
	observed *uint64
}

// WithObservedVersion makes the login conditional: the write is rejected
// with ErrStaleSession if the store version moved past the observed one.
func WithObservedVersion(version uint64) LoginOption {
	return func(o *loginOptions) {
		o.observed = &version
	}
}

// Login commits a new session atomically: both fields are set under the
// lock, the token is persisted, and subscribers are notified after the
// commit. Partial sessions are rejected.
func (s *Store) Login(ctx context.Context, token string, user *UserSummary, opts ...LoginOption) error {
	if token == "" || user == nil {
		return ErrPartialSession.Clone()
	}

	options := &loginOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(options)
		}
	}

	s.mu.Lock()
	if options.observed != nil && *options.observed != s.version {
		observed := *options.observed
		current := s.version
		s.mu.Unlock()
		return ErrStaleSession.Clone().WithMetadata(map[string]any{
			"observed_version": observed,
			"current_version":  current,
		})
	}

	s.current = Session{Token: token, User: user.clone()}
	s.version++
	snapshot := s.current
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	s.persist(ctx, token)
	s.notify(snapshot, subs)
	s.record(ctx, ActivityEvent{
		EventType: ActivityEventSessionLogin,
		UserID:    user.ID,
	})

	return nil
}

// Logout clears the session and removes the persisted token. Calling it on
// an anonymous store is a no-op, so it is safe to invoke repeatedly.
func (s *Store) Logout(ctx context.Context) {
	s.logout(ctx, ActivityEventSessionLogout)
}

// Revoke clears the session in reaction to a rejected credential. Same
// effect as Logout, recorded as a revocation instead of a user action.
func (s *Store) Revoke(ctx context.Context) {
	s.logout(ctx, ActivityEventSessionRevoked)
}

func (s *Store) logout(ctx context.Context, event ActivityEventType) {
	s.mu.Lock()
	if s.current.Anonymous() {
		s.mu.Unlock()
		return
	}

	userID := ""
	if s.current.User != nil {
		userID = s.current.User.ID
	}

	s.current = Session{}
	s.version++
	subs := s.snapshotSubscribers()
	s.mu.Unlock()

	if s.tokens != nil {
		if err := s.tokens.Remove(ctx, s.tokenKey); err != nil {
			s.logger.Warn("failed to remove persisted token: %v", err)
		}
	}

	s.notify(Session{}, subs)
	s.record(ctx, ActivityEvent{
		EventType: event,
		UserID:    userID,
	})
}

// Subscribe registers a callback invoked after every committed session
// change. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotSubscribers() []func(Session) {
	subs := make([]func(Session), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	return subs
}

func (s *Store) notify(session Session, subs []func(Session)) {
	for _, fn := range subs {
		fn(session)
	}
}

func (s *Store) persist(ctx context.Context, token string) {
	if s.tokens == nil {
		return
	}
	// The in-memory session is already committed; a failed write only costs
	// the next restart its restored session.
	if err := s.tokens.Set(ctx, s.tokenKey, token); err != nil {
		s.logger.Warn("failed to persist token: %v", err)
	}
}

func (s *Store) record(ctx context.Context, event ActivityEvent) {
	sink := normalizeActivitySink(s.activity)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	if err := sink.Record(ctx, event); err != nil {
		s.logger.Warn("session activity sink error: %v", err)
	}
}
