package session

import (
	"context"

	"github.com/accessware/go-console/credentials"
	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RefreshFunc performs the network refresh call with the given refresh
// token and returns the rotated pair.
type RefreshFunc func(ctx context.Context, refreshToken string) (credentials.Pair, error)

// Refresher coordinates concurrent refresh attempts so at most one
// network refresh is in flight at a time. Every caller that arrives
// while a refresh is running joins it and observes the same outcome.
// Without this, N concurrent 401s would fire N refresh calls, each
// rotating the refresh token and invalidating its siblings.
type Refresher struct {
	manager *Manager
	refresh RefreshFunc
	group   singleflight.Group
	log     zerolog.Logger
}

type RefresherOption func(*Refresher)

func WithRefresherLogger(log zerolog.Logger) RefresherOption {
	return func(r *Refresher) {
		r.log = log
	}
}

func NewRefresher(manager *Manager, refresh RefreshFunc, options ...RefresherOption) *Refresher {
	r := &Refresher{
		manager: manager,
		refresh: refresh,
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Refresh obtains a new credential pair, sharing one network call among
// all concurrent callers. On success the pair is persisted, mirrored
// into the session, and broadcast before any caller returns. On failure
// the session is logged out and every waiter gets ErrSessionExpired.
//
// staleAccessToken is the access token the caller just saw rejected.
// When the session already holds a different pair, an earlier refresh
// has done the work and that pair is returned without a network call.
// This is what keeps a burst of 401s at exactly one refresh even when
// some of them arrive after the shared flight has finished. An empty
// staleAccessToken forces the refresh.
//
// A refresh that has started runs to completion: the shared call is
// detached from any single caller's context, so one impatient caller
// cannot abort the refresh its siblings are waiting on.
func (r *Refresher) Refresh(ctx context.Context, staleAccessToken string) (credentials.Pair, error) {
	result, err, _ := r.group.Do("refresh", func() (interface{}, error) {
		return r.doRefresh(context.WithoutCancel(ctx), staleAccessToken)
	})
	if err != nil {
		return credentials.Pair{}, err
	}
	return result.(credentials.Pair), nil
}

func (r *Refresher) doRefresh(ctx context.Context, staleAccessToken string) (credentials.Pair, error) {
	current := r.manager.Credentials()
	if staleAccessToken != "" && current.Valid() && current.AccessToken != staleAccessToken {
		return current, nil
	}
	if current.RefreshToken == "" {
		r.log.Warn().Msg("refresh requested without a refresh token")
		return credentials.Pair{}, r.fail(consoleerrors.ErrNoRefreshToken)
	}

	pair, err := r.refresh(ctx, current.RefreshToken)
	if err != nil {
		r.log.Warn().Err(err).Msg("token refresh failed, logging out")
		return credentials.Pair{}, r.fail(err)
	}

	if err := r.manager.SetCredentials(pair, nil); err != nil {
		r.log.Error().Err(err).Msg("refreshed tokens could not be persisted")
		return credentials.Pair{}, r.fail(err)
	}

	r.log.Debug().Msg("tokens refreshed")
	return pair, nil
}

// fail logs the session out and converts any refresh failure into
// ErrSessionExpired, which is what every waiter and every request
// chain queued behind the refresh must see.
func (r *Refresher) fail(cause error) error {
	if err := r.manager.Logout(); err != nil {
		r.log.Error().Err(err).Msg("logout after failed refresh")
	}
	return consoleerrors.Wrapf(consoleerrors.ErrSessionExpired, "%s", cause.Error())
}
