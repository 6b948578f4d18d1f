package adminauth_test

import (
	"context"
	"testing"

	adminauth "github.com/caredesk/go-adminauth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSignupClient struct {
	mock.Mock
}

func (m *MockSignupClient) Signup(ctx context.Context, payload adminauth.SignupPayload) (adminauth.SignupResult, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(adminauth.SignupResult), args.Error(1)
}

type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event adminauth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func mintToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}
