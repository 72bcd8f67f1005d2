package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "isometry-backend/pkg/errors"
)

const testSecret = "test-signing-key"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	validator, err := NewJWTValidator(JWTConfig{SecretKey: testSecret, Issuer: "isometry-backend"})
	require.NoError(t, err)

	raw := signToken(t, testSecret, jwt.MapClaims{
		"sub":   "user-42",
		"email": "user@example.com",
		"iss":   "isometry-backend",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	user, err := validator.Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-42", user.UserID)
	assert.Equal(t, "user@example.com", user.Email)
}

func TestJWTValidator_Rejections(t *testing.T) {
	validator, err := NewJWTValidator(JWTConfig{SecretKey: testSecret, Leeway: time.Second})
	require.NoError(t, err)

	cases := map[string]string{
		"wrong key": signToken(t, "other-key", jwt.MapClaims{
			"sub": "u", "exp": time.Now().Add(time.Hour).Unix(),
		}),
		"expired": signToken(t, testSecret, jwt.MapClaims{
			"sub": "u", "exp": time.Now().Add(-time.Hour).Unix(),
		}),
		"no expiry": signToken(t, testSecret, jwt.MapClaims{
			"sub": "u",
		}),
		"no subject": signToken(t, testSecret, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}),
		"garbage": "not.a.token",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := validator.Validate(raw)
			assert.True(t, pkgerrors.IsUnauthorized(err))
		})
	}
}

func TestJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	for _, header := range []string{"", "abc", "Basic dXNlcg=="} {
		_, err := ExtractBearerToken(header)
		assert.True(t, pkgerrors.IsUnauthorized(err), header)
	}
}

func TestUserContextRoundTrip(t *testing.T) {
	ctx := WithUser(context.Background(), &UserContext{UserID: "u1"})

	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)

	_, err = GetUserFromContext(context.Background())
	assert.True(t, pkgerrors.IsUnauthorized(err))
}
