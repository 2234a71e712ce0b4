package config

import "time"

type Config interface {
	EnvConfig
	OAuthConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAPIBaseURL() string
	GetHTTPTimeout() time.Duration
	GetCredentialFile() string
	GetCredentialKey() string
	GetEnv() string
}

type OAuthConfig interface {
	GetOAuthIssuer() string
	GetOAuthClientID() string
	GetOAuthClientSecret() string
	GetOAuthRedirectURL() string
}

type mainConfig struct {
	EnvVars
	OAuth
}

func New() Config {
	return mainConfig{}
}
