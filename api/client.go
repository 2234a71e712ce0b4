package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/accessware/go-console/credentials"
	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/accessware/go-console/internal/utils"
	"github.com/accessware/go-console/session"
	"github.com/accessware/go-console/workspace"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client talks to the access-control backend. Login and RefreshTokens
// go out on a plain HTTP client because they run before, or while,
// the session's access token is unusable; everything else rides the
// authenticated pipeline.
type Client struct {
	baseURL  string
	plain    *http.Client
	pipeline *Pipeline
	log      zerolog.Logger
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.plain = httpClient
	}
}

func WithClientLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		plain:   &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// UsePipeline attaches the authenticated pipeline. The pipeline needs a
// refresher, the refresher needs this client's RefreshTokens, so the
// wiring happens in two steps.
func (c *Client) UsePipeline(p *Pipeline) {
	c.pipeline = p
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken  *string `json:"accessToken,omitempty"`
	RefreshToken *string `json:"refreshToken,omitempty"`
}

// Login exchanges email/password for a credential pair. A backend
// error with CodeAccountNotVerified comes back as
// *AccountNotVerifiedError so the caller can enter the verification
// flow; any other auth rejection is ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (credentials.Pair, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return credentials.Pair{}, errors.Wrap(err, "Client.Login Marshal")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return credentials.Pair{}, errors.Wrap(err, "Client.Login NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.plain.Do(req)
	if err != nil {
		return credentials.Pair{}, consoleerrors.Wrapf(consoleerrors.ErrNetworkFailure, "login")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		backendErr := decodeBackendError(resp)
		if backendErr.CustomCode == CodeAccountNotVerified {
			return credentials.Pair{}, &AccountNotVerifiedError{
				Token: backendErr.VerificationToken,
				Email: email,
			}
		}
		c.log.Debug().Int("status", resp.StatusCode).Int("customCode", backendErr.CustomCode).Msg("login rejected")
		return credentials.Pair{}, consoleerrors.ErrInvalidCredentials
	}

	return decodeTokenPair(resp)
}

// RefreshTokens trades the refresh token, presented as the bearer
// credential, for a rotated pair. An auth rejection means the refresh
// token is spent or revoked.
func (c *Client) RefreshTokens(ctx context.Context, refreshToken string) (credentials.Pair, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
	if err != nil {
		return credentials.Pair{}, errors.Wrap(err, "Client.RefreshTokens NewRequest")
	}
	req.Header.Set("Authorization", "Bearer "+refreshToken)

	resp, err := c.plain.Do(req)
	if err != nil {
		return credentials.Pair{}, consoleerrors.Wrapf(consoleerrors.ErrNetworkFailure, "refresh")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return credentials.Pair{}, consoleerrors.ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return credentials.Pair{}, decodeBackendError(resp)
	}

	return decodeTokenPair(resp)
}

// Profile fetches the session user. Authenticated.
func (c *Client) Profile(ctx context.Context) (*session.User, error) {
	var user session.User
	if err := c.getJSON(ctx, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListWorkspaces fetches the caller's workspaces. Unknown account types
// are logged and passed through, not rejected.
func (c *Client) ListWorkspaces(ctx context.Context) ([]workspace.Workspace, error) {
	var workspaces []workspace.Workspace
	if err := c.getJSON(ctx, "/workspaces", &workspaces); err != nil {
		return nil, err
	}
	for _, ws := range workspaces {
		if !ws.AccountType.Known() {
			c.log.Warn().
				Str("workspaceId", ws.WorkspaceID).
				Str("accountType", string(ws.AccountType)).
				Msg("unknown workspace account type")
		}
	}
	return workspaces, nil
}

// SetDefaultWorkspace marks workspaceID as the caller's default.
// Idempotent on the backend. Authenticated.
func (c *Client) SetDefaultWorkspace(ctx context.Context, workspaceID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/workspaces/%s/default", c.baseURL, workspaceID), nil)
	if err != nil {
		return errors.Wrap(err, "Client.SetDefaultWorkspace NewRequest")
	}

	resp, err := c.pipeline.Execute(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return decodeBackendError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrapf(err, "Client.getJSON NewRequest %s", path)
	}

	resp, err := c.pipeline.Execute(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeBackendError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "Client.getJSON Decode %s", path)
	}
	return nil
}

func decodeTokenPair(resp *http.Response) (credentials.Pair, error) {
	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return credentials.Pair{}, errors.Wrap(err, "decodeTokenPair Decode")
	}

	pair := credentials.Pair{
		AccessToken:  utils.Value(tokens.AccessToken),
		RefreshToken: utils.Value(tokens.RefreshToken),
	}
	if !pair.Valid() {
		return credentials.Pair{}, consoleerrors.ErrPartialCredentials
	}
	return pair, nil
}

// decodeBackendError always yields a *BackendError, even when the body
// is not the documented shape, so callers can classify uniformly.
func decodeBackendError(resp *http.Response) *BackendError {
	var backendErr BackendError
	if err := json.NewDecoder(resp.Body).Decode(&backendErr); err != nil || backendErr.Message == "" {
		backendErr.Message = http.StatusText(resp.StatusCode)
	}
	if backendErr.CustomCode == 0 {
		backendErr.CustomCode = resp.StatusCode
	}
	return &backendErr
}
