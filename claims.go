package adminauth

import (
	"github.com/golang-jwt/jwt/v5"
	errors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// SummaryFromToken builds a user summary from the claims of a JWT bearer
// token without verifying the signature. The token was accepted by the
// server that issued it; this is only used to prefill the restored session
// so the UI has something to render before the profile loads.
func SummaryFromToken(raw string) (*UserSummary, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, errors.CategoryBadInput, "token is not a parseable JWT")
	}

	id := claimString(claims, "uid")
	if id == "" {
		id = claimString(claims, "sub")
	}
	if id == "" {
		return nil, errors.New("token carries no subject claim", errors.CategoryBadInput)
	}

	return &UserSummary{
		ID:          id,
		DisplayName: firstClaimString(claims, "name", "displayName"),
		Email:       claimString(claims, "email"),
		Role:        claimString(claims, "role"),
	}, nil
}

// IsWellFormedUserID reports whether the summary ID is a UUID, which is
// what the Caredesk backend mints for accounts.
func IsWellFormedUserID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// decodeUserFromToken is the default Store user decoder: best effort, a
// non-JWT token simply leaves the profile pending.
func decodeUserFromToken(token string) *UserSummary {
	user, err := SummaryFromToken(token)
	if err != nil {
		return nil
	}
	return user
}

func claimString(claims jwt.MapClaims, key string) string {
	if raw, ok := claims[key]; ok {
		if s, ok := raw.(string); ok {
			return s
		}
	}
	return ""
}

func firstClaimString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if s := claimString(claims, key); s != "" {
			return s
		}
	}
	return ""
}
