package config

const (
	oauthIssuerVar       = "OAUTH_ISSUER"
	oauthClientIDVar     = "OAUTH_CLIENT_ID"
	oauthClientSecretVar = "OAUTH_CLIENT_SECRET"
	oauthRedirectURLVar  = "OAUTH_REDIRECT_URL"
)

type OAuth struct{}

var _ OAuthConfig = OAuth{}

func (OAuth) GetOAuthIssuer() string {
	return GetEnv(oauthIssuerVar, "")
}

func (OAuth) GetOAuthClientID() string {
	return GetEnv(oauthClientIDVar, "")
}

func (OAuth) GetOAuthClientSecret() string {
	return GetEnv(oauthClientSecretVar, "")
}

func (OAuth) GetOAuthRedirectURL() string {
	return GetEnv(oauthRedirectURLVar, "http://localhost:3000/callback")
}
