package credentials_test

import (
	"testing"
	"time"

	"github.com/accessware/go-console/credentials"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedAccessToken(t *testing.T, exp time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestPair_Valid(t *testing.T) {
	t.Run("both tokens present", func(t *testing.T) {
		require.True(t, credentials.Pair{AccessToken: "a", RefreshToken: "r"}.Valid())
	})

	t.Run("missing refresh token", func(t *testing.T) {
		require.False(t, credentials.Pair{AccessToken: "a"}.Valid())
	})

	t.Run("missing access token", func(t *testing.T) {
		require.False(t, credentials.Pair{RefreshToken: "r"}.Valid())
	})

	t.Run("zero pair", func(t *testing.T) {
		require.False(t, credentials.Pair{}.Valid())
	})
}

func TestPair_AccessTokenExpiry(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)

	t.Run("jwt with exp claim", func(t *testing.T) {
		pair := credentials.Pair{AccessToken: signedAccessToken(t, exp), RefreshToken: "r"}
		require.True(t, exp.Equal(pair.AccessTokenExpiry()))
	})

	t.Run("opaque token", func(t *testing.T) {
		pair := credentials.Pair{AccessToken: "not-a-jwt", RefreshToken: "r"}
		require.True(t, pair.AccessTokenExpiry().IsZero())
	})

	t.Run("empty token", func(t *testing.T) {
		require.True(t, credentials.Pair{}.AccessTokenExpiry().IsZero())
	})
}

func TestPair_ExpiresWithin(t *testing.T) {
	now := time.Now()
	pair := credentials.Pair{AccessToken: signedAccessToken(t, now.Add(10*time.Minute)), RefreshToken: "r"}

	t.Run("expiry inside window", func(t *testing.T) {
		require.True(t, pair.ExpiresWithin(15*time.Minute, now))
	})

	t.Run("expiry outside window", func(t *testing.T) {
		require.False(t, pair.ExpiresWithin(time.Minute, now))
	})

	t.Run("opaque token never reports expiring", func(t *testing.T) {
		opaque := credentials.Pair{AccessToken: "opaque", RefreshToken: "r"}
		require.False(t, opaque.ExpiresWithin(time.Hour, now))
	})
}
