package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Pair is the access/refresh token pair issued by the backend. Both
// fields are set together or not at all; a pair mixing tokens from two
// different issuances is never stored, cached, or broadcast.
type Pair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether both tokens are present.
func (p Pair) Valid() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// AccessTokenExpiry returns the exp claim of the access token. The
// client never verifies signatures; the token is parsed unverified and
// treated as opaque when it does not carry a readable exp claim, in
// which case the zero time is returned.
func (p Pair) AccessTokenExpiry() time.Time {
	if p.AccessToken == "" {
		return time.Time{}
	}

	token, _, err := jwt.NewParser().ParseUnverified(p.AccessToken, jwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}

	exp, err := token.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// ExpiresWithin reports whether the access token expires within d of
// now. Opaque tokens report false; expiry is then only discovered
// through a 401 from the backend.
func (p Pair) ExpiresWithin(d time.Duration, now time.Time) bool {
	exp := p.AccessTokenExpiry()
	if exp.IsZero() {
		return false
	}
	return !now.Add(d).Before(exp)
}
