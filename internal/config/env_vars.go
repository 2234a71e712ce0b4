package config

import (
	"os"
	"path/filepath"
	"time"
)

const (
	appNameVar        = "APP_NAME"
	apiBaseURLVar     = "API_BASE_URL"
	httpTimeoutVar    = "HTTP_TIMEOUT"
	credentialFileVar = "CREDENTIAL_FILE"
	credentialKeyVar  = "CREDENTIAL_KEY"
	envVar            = "ENV"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Access Console")
}

func (EnvVars) GetAPIBaseURL() string {
	return GetEnv(apiBaseURLVar, "http://localhost:8080")
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(httpTimeoutVar, "30s"))
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func (EnvVars) GetCredentialFile() string {
	if path := GetEnv(credentialFileVar, ""); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".console-credentials.json"
	}
	return filepath.Join(home, ".config", "access-console", "credentials.json")
}

// GetCredentialKey returns the hex-encoded key for at-rest credential
// encryption. Empty means the plain file store is used.
func (EnvVars) GetCredentialKey() string {
	return GetEnv(credentialKeyVar, "")
}

func (EnvVars) GetEnv() string {
	return GetEnv(envVar, "development")
}

func GetEnv(name, defaultValue string) string {
	if value, ok := os.LookupEnv(name); ok {
		return value
	}
	return defaultValue
}
