package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/accessware/go-console/credentials"
	"github.com/accessware/go-console/credentials/storefake"
	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/accessware/go-console/session"
	"github.com/stretchr/testify/require"
)

func authenticatedManager(t *testing.T) (*session.Manager, *storefake.FakeCredentialStore) {
	t.Helper()
	store := storefake.NewFakeCredentialStore()
	manager := session.NewManager(store)
	require.NoError(t, manager.SetCredentials(testPair, nil))
	return manager, store
}

func TestRefresher_Refresh(t *testing.T) {
	rotated := credentials.Pair{AccessToken: "access-2", RefreshToken: "refresh-2"}

	t.Run("success rotates, persists, and broadcasts", func(t *testing.T) {
		manager, store := authenticatedManager(t)
		events := manager.Subscribe()

		refresher := session.NewRefresher(manager, func(ctx context.Context, refreshToken string) (credentials.Pair, error) {
			require.Equal(t, testPair.RefreshToken, refreshToken)
			return rotated, nil
		})

		pair, err := refresher.Refresh(context.Background(), "")
		require.NoError(t, err)
		require.Equal(t, rotated, pair)
		require.Equal(t, rotated, manager.Credentials())
		require.Equal(t, 2, store.Saves()) // login + refresh

		require.Equal(t, rotated, (<-events).Pair)
	})

	t.Run("failure logs out and reports session expired", func(t *testing.T) {
		manager, _ := authenticatedManager(t)
		refresher := session.NewRefresher(manager, func(ctx context.Context, refreshToken string) (credentials.Pair, error) {
			return credentials.Pair{}, consoleerrors.ErrInvalidCredentials
		})

		_, err := refresher.Refresh(context.Background(), "")
		require.ErrorIs(t, err, consoleerrors.ErrSessionExpired)
		require.False(t, manager.IsAuthenticated())
	})

	t.Run("already rotated pair short-circuits the network call", func(t *testing.T) {
		manager, _ := authenticatedManager(t)
		refresher := session.NewRefresher(manager, func(ctx context.Context, refreshToken string) (credentials.Pair, error) {
			t.Fatal("a pair newer than the caller's must not trigger a refresh")
			return credentials.Pair{}, nil
		})

		pair, err := refresher.Refresh(context.Background(), "older-access-token")
		require.NoError(t, err)
		require.Equal(t, testPair, pair)
	})

	t.Run("no refresh token means session expired", func(t *testing.T) {
		manager := session.NewManager(storefake.NewFakeCredentialStore())
		refresher := session.NewRefresher(manager, func(ctx context.Context, refreshToken string) (credentials.Pair, error) {
			t.Fatal("refresh call must not be issued without a refresh token")
			return credentials.Pair{}, nil
		})

		_, err := refresher.Refresh(context.Background(), "")
		require.ErrorIs(t, err, consoleerrors.ErrSessionExpired)
	})
}

// Concurrent callers share one network refresh and one outcome.
func TestRefresher_SingleFlight(t *testing.T) {
	const waiters = 16
	rotated := credentials.Pair{AccessToken: "access-2", RefreshToken: "refresh-2"}

	t.Run("one network call, everyone gets the same pair", func(t *testing.T) {
		manager, _ := authenticatedManager(t)

		var calls atomic.Int32
		release := make(chan struct{})
		refresher := session.NewRefresher(manager, func(ctx context.Context, refreshToken string) (credentials.Pair, error) {
			calls.Add(1)
			<-release
			return rotated, nil
		})

		results := make(chan credentials.Pair, waiters)
		var launched, wg sync.WaitGroup
		for i := 0; i < waiters; i++ {
			launched.Add(1)
			wg.Add(1)
			go func() {
				defer wg.Done()
				launched.Done()
				pair, err := refresher.Refresh(context.Background(), testPair.AccessToken)
				require.NoError(t, err)
				results <- pair
			}()
		}

		// hold the in-flight refresh open until every caller has had
		// time to join it
		launched.Wait()
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()
		close(results)

		require.Equal(t, int32(1), calls.Load())
		for pair := range results {
			require.Equal(t, rotated, pair)
		}
	})

	t.Run("one failure fans out to every waiter", func(t *testing.T) {
		manager, _ := authenticatedManager(t)

		var calls atomic.Int32
		release := make(chan struct{})
		refresher := session.NewRefresher(manager, func(ctx context.Context, refreshToken string) (credentials.Pair, error) {
			calls.Add(1)
			<-release
			return credentials.Pair{}, consoleerrors.ErrInvalidCredentials
		})

		errs := make(chan error, waiters)
		var launched, wg sync.WaitGroup
		for i := 0; i < waiters; i++ {
			launched.Add(1)
			wg.Add(1)
			go func() {
				defer wg.Done()
				launched.Done()
				_, err := refresher.Refresh(context.Background(), testPair.AccessToken)
				errs <- err
			}()
		}

		launched.Wait()
		time.Sleep(50 * time.Millisecond)
		close(release)
		wg.Wait()
		close(errs)

		require.Equal(t, int32(1), calls.Load())
		for err := range errs {
			require.ErrorIs(t, err, consoleerrors.ErrSessionExpired)
		}
		require.False(t, manager.IsAuthenticated())
	})

	t.Run("a cancelled joiner does not abort the shared call", func(t *testing.T) {
		manager, _ := authenticatedManager(t)

		refresher := session.NewRefresher(manager, func(ctx context.Context, refreshToken string) (credentials.Pair, error) {
			require.NoError(t, ctx.Err())
			return rotated, nil
		})

		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		pair, err := refresher.Refresh(cancelled, "")
		require.NoError(t, err)
		require.Equal(t, rotated, pair)
	})
}
