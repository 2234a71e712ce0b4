// Package oauthlogin is the external authorization-code collaborator.
// The console core reaches the identity provider through the single
// Exchange call; browser redirects and the provider's own session are
// someone else's problem.
package oauthlogin

import (
	"context"

	"github.com/accessware/go-console/internal/config"
	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

type Exchanger struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// New discovers the provider from the configured issuer and prepares
// the code-exchange config and ID-token verifier.
func New(ctx context.Context, cfg config.OAuthConfig) (*Exchanger, error) {
	if cfg.GetOAuthIssuer() == "" {
		return nil, errors.New("[oauthlogin.New] OAuth issuer is required")
	}
	if cfg.GetOAuthClientID() == "" {
		return nil, errors.New("[oauthlogin.New] OAuth client ID is required")
	}

	provider, err := oidc.NewProvider(ctx, cfg.GetOAuthIssuer())
	if err != nil {
		return nil, errors.Wrap(err, "oauthlogin.New NewProvider")
	}

	return &Exchanger{
		oauth: oauth2.Config{
			ClientID:     cfg.GetOAuthClientID(),
			ClientSecret: cfg.GetOAuthClientSecret(),
			RedirectURL:  cfg.GetOAuthRedirectURL(),
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.GetOAuthClientID()}),
	}, nil
}

// Exchange swaps the authorization code for provider tokens, verifies
// the ID token, and returns the verified email the backend login flow
// needs.
func (e *Exchanger) Exchange(ctx context.Context, code string) (string, error) {
	token, err := e.oauth.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "Exchanger.Exchange code exchange")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return "", errors.New("Exchanger.Exchange missing id_token")
	}

	idToken, err := e.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return "", errors.Wrap(err, "Exchanger.Exchange Verify")
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return "", errors.Wrap(err, "Exchanger.Exchange Claims")
	}
	if claims.Email == "" {
		return "", errors.New("Exchanger.Exchange ID token carries no email")
	}
	if !claims.EmailVerified {
		return "", errors.New("Exchanger.Exchange provider email is unverified")
	}

	return claims.Email, nil
}
