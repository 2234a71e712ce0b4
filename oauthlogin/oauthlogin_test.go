package oauthlogin_test

import (
	"context"
	"testing"

	"github.com/accessware/go-console/oauthlogin"
	"github.com/stretchr/testify/require"
)

type testOAuthConfig struct {
	issuer       string
	clientID     string
	clientSecret string
	redirectURL  string
}

func (c testOAuthConfig) GetOAuthIssuer() string       { return c.issuer }
func (c testOAuthConfig) GetOAuthClientID() string     { return c.clientID }
func (c testOAuthConfig) GetOAuthClientSecret() string { return c.clientSecret }
func (c testOAuthConfig) GetOAuthRedirectURL() string  { return c.redirectURL }

func TestNew(t *testing.T) {
	t.Run("requires an issuer", func(t *testing.T) {
		_, err := oauthlogin.New(context.Background(), testOAuthConfig{clientID: "console"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "issuer")
	})

	t.Run("requires a client ID", func(t *testing.T) {
		_, err := oauthlogin.New(context.Background(), testOAuthConfig{issuer: "https://id.example.com"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "client ID")
	})

	t.Run("unreachable issuer fails discovery", func(t *testing.T) {
		cfg := testOAuthConfig{issuer: "http://127.0.0.1:1", clientID: "console"}
		_, err := oauthlogin.New(context.Background(), cfg)
		require.Error(t, err)
	})
}
