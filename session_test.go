package adminauth_test

import (
	"context"
	"testing"

	adminauth "github.com/caredesk/go-adminauth"
	"github.com/caredesk/go-adminauth/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStoreLoginRoundTrip(t *testing.T) {
	ctx := context.Background()
	tokens := store.NewMemory()
	sessions := adminauth.NewStore(ctx, tokens)

	user := &adminauth.UserSummary{
		ID:          "usr-1",
		DisplayName: "Dana Reyes",
		Email:       "dana@clinic.example",
		Role:        "admin",
	}

	require.NoError(t, sessions.Login(ctx, "tok-abc", user))

	got := sessions.Get()
	assert.Equal(t, "tok-abc", got.Token)
	require.NotNil(t, got.User)
	assert.Equal(t, *user, *got.User)

	state := adminauth.DeriveAuthState(got)
	assert.True(t, state.Authenticated)
	assert.False(t, state.ProfilePending)

	persisted, err := tokens.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", persisted)
}

func TestStoreLoginRejectsPartialSession(t *testing.T) {
	ctx := context.Background()
	sessions := adminauth.NewStore(ctx, store.NewMemory())

	assert.Error(t, sessions.Login(ctx, "", &adminauth.UserSummary{ID: "usr-1"}))
	assert.Error(t, sessions.Login(ctx, "tok-abc", nil))
	assert.True(t, sessions.Get().Anonymous())
}

func TestStoreLogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	tokens := store.NewMemory()
	sessions := adminauth.NewStore(ctx, tokens)

	require.NoError(t, sessions.Login(ctx, "tok-abc", &adminauth.UserSummary{ID: "usr-1"}))

	sessions.Logout(ctx)
	first := sessions.Get()
	sessions.Logout(ctx)
	second := sessions.Get()

	assert.Equal(t, first, second)
	assert.True(t, second.Anonymous())
	assert.Nil(t, second.User)

	persisted, err := tokens.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestStoreRejectsStaleLogin(t *testing.T) {
	ctx := context.Background()
	sessions := adminauth.NewStore(ctx, store.NewMemory())

	require.NoError(t, sessions.Login(ctx, "tok-old", &adminauth.UserSummary{ID: "usr-1"}))

	// A login response issued before this logout must not resurrect the
	// session.
	observed := sessions.Version()
	sessions.Logout(ctx)

	err := sessions.Login(ctx, "tok-late", &adminauth.UserSummary{ID: "usr-1"},
		adminauth.WithObservedVersion(observed))
	require.Error(t, err)
	assert.True(t, adminauth.IsStaleSession(err))
	assert.True(t, sessions.Get().Anonymous())
}

func TestStoreAcceptsCurrentVersionedLogin(t *testing.T) {
	ctx := context.Background()
	sessions := adminauth.NewStore(ctx, store.NewMemory())

	observed := sessions.Version()
	err := sessions.Login(ctx, "tok-abc", &adminauth.UserSummary{ID: "usr-1"},
		adminauth.WithObservedVersion(observed))
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", sessions.Get().Token)
}

func TestStoreRestoresOpaqueTokenWithProfilePending(t *testing.T) {
	ctx := context.Background()
	tokens := store.Seed(map[string]string{"accessToken": "opaque-session-token"})

	sessions := adminauth.NewStore(ctx, tokens)

	got := sessions.Get()
	assert.Equal(t, "opaque-session-token", got.Token)
	assert.Nil(t, got.User)

	state := adminauth.DeriveAuthState(got)
	assert.True(t, state.Authenticated)
	assert.True(t, state.ProfilePending)
}

func TestStoreRestoresJWTWithPrefilledUser(t *testing.T) {
	ctx := context.Background()
	token := mintToken(t, jwt.MapClaims{
		"sub":   "usr-9",
		"name":  "Dana Reyes",
		"email": "dana@clinic.example",
		"role":  "admin",
	})
	tokens := store.Seed(map[string]string{"accessToken": token})

	sessions := adminauth.NewStore(ctx, tokens)

	got := sessions.Get()
	require.NotNil(t, got.User)
	assert.Equal(t, "usr-9", got.User.ID)
	assert.Equal(t, "Dana Reyes", got.User.DisplayName)
	assert.Equal(t, "dana@clinic.example", got.User.Email)
	assert.Equal(t, "admin", got.User.Role)

	state := adminauth.DeriveAuthState(got)
	assert.True(t, state.Authenticated)
	assert.False(t, state.ProfilePending)
}

func TestStoreCustomTokenKey(t *testing.T) {
	ctx := context.Background()
	tokens := store.Seed(map[string]string{"token": "tok-alt"})

	sessions := adminauth.NewStore(ctx, tokens, adminauth.WithTokenKey("token"))
	assert.Equal(t, "tok-alt", sessions.Get().Token)

	sessions.Logout(ctx)
	persisted, err := tokens.Get(ctx, "token")
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestStoreNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	sessions := adminauth.NewStore(ctx, store.NewMemory())

	var seen []adminauth.Session
	cancel := sessions.Subscribe(func(s adminauth.Session) {
		seen = append(seen, s)
	})

	require.NoError(t, sessions.Login(ctx, "tok-abc", &adminauth.UserSummary{ID: "usr-1"}))
	sessions.Logout(ctx)

	require.Len(t, seen, 2)
	assert.Equal(t, "tok-abc", seen[0].Token)
	assert.True(t, seen[1].Anonymous())

	cancel()
	require.NoError(t, sessions.Login(ctx, "tok-def", &adminauth.UserSummary{ID: "usr-2"}))
	assert.Len(t, seen, 2)
}

func TestStoreEmitsActivityEvents(t *testing.T) {
	ctx := context.Background()
	sink := &MockActivitySink{}

	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt adminauth.ActivityEvent) bool {
		return evt.EventType == adminauth.ActivityEventSessionLogin && evt.UserID == "usr-1"
	})).Return(nil).Once()
	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt adminauth.ActivityEvent) bool {
		return evt.EventType == adminauth.ActivityEventSessionLogout && evt.UserID == "usr-1"
	})).Return(nil).Once()

	sessions := adminauth.NewStore(ctx, store.NewMemory(), adminauth.WithStoreActivitySink(sink))
	require.NoError(t, sessions.Login(ctx, "tok-abc", &adminauth.UserSummary{ID: "usr-1"}))
	sessions.Logout(ctx)

	sink.AssertExpectations(t)
}
