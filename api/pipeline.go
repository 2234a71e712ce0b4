package api

import (
	"context"
	"io"
	"net/http"

	"github.com/accessware/go-console/credentials"
	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/accessware/go-console/session"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenRefresher is the single-flight refresh coordinator the pipeline
// awaits on a 401. The stale access token tells the refresher which
// pair the 401 was observed against.
type TokenRefresher interface {
	Refresh(ctx context.Context, staleAccessToken string) (credentials.Pair, error)
}

// Pipeline wraps every outbound backend call: it attaches the current
// access token, detects a 401, awaits the (possibly already running)
// refresh, and retries the original request exactly once with the new
// token. A request is never retried more than once per 401, so a
// backend that keeps rejecting valid-looking tokens cannot trap the
// client in a loop.
//
// Pipeline is an http.RoundTripper; PipelineClient wraps it in an
// *http.Client for callers that want the standard surface.
type Pipeline struct {
	base      http.RoundTripper
	manager   *session.Manager
	refresher TokenRefresher
	log       zerolog.Logger
}

var _ http.RoundTripper = (*Pipeline)(nil)

type PipelineOption func(*Pipeline)

func WithBaseTransport(rt http.RoundTripper) PipelineOption {
	return func(p *Pipeline) {
		p.base = rt
	}
}

func WithPipelineLogger(log zerolog.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.log = log
	}
}

func NewPipeline(manager *session.Manager, refresher TokenRefresher, options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		base:      http.DefaultTransport,
		manager:   manager,
		refresher: refresher,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// RoundTrip implements http.RoundTripper by delegating to Execute with
// the request's own context.
func (p *Pipeline) RoundTrip(req *http.Request) (*http.Response, error) {
	return p.Execute(req.Context(), req)
}

// PipelineClient returns an *http.Client whose transport is p.
func PipelineClient(p *Pipeline) *http.Client {
	return &http.Client{Transport: p}
}

// Execute dispatches req with the session's access token attached. On a
// 401 it joins the shared refresh and, on success, replays the request
// once with the new token. Refresh failure surfaces as
// ErrSessionExpired; transport failures as ErrNetworkFailure.
func (p *Pipeline) Execute(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.Clone(ctx)
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.New().String())
	}
	accessToken := p.manager.Credentials().AccessToken
	setBearer(req, accessToken)

	resp, err := p.base.RoundTrip(req)
	if err != nil {
		return nil, consoleerrors.Wrapf(consoleerrors.ErrNetworkFailure, "%s %s", req.Method, req.URL.Path)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	drain(resp)
	p.log.Debug().
		Str("requestId", req.Header.Get("X-Request-ID")).
		Str("path", req.URL.Path).
		Msg("401 received, awaiting token refresh")

	pair, err := p.refresher.Refresh(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	retry, err := p.replay(ctx, req)
	if err != nil {
		return nil, err
	}
	setBearer(retry, pair.AccessToken)

	resp, err = p.base.RoundTrip(retry)
	if err != nil {
		return nil, consoleerrors.Wrapf(consoleerrors.ErrNetworkFailure, "retry %s %s", req.Method, req.URL.Path)
	}
	return resp, nil
}

// replay clones req for the single post-refresh retry, rewinding the
// body via GetBody when one was sent.
func (p *Pipeline) replay(ctx context.Context, req *http.Request) (*http.Request, error) {
	retry := req.Clone(ctx)
	if req.Body == nil || req.Body == http.NoBody {
		return retry, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("Pipeline.replay request body cannot be replayed")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Wrap(err, "Pipeline.replay GetBody")
	}
	retry.Body = body
	return retry, nil
}

func setBearer(req *http.Request, token string) {
	if token == "" {
		req.Header.Del("Authorization")
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
