package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/accessware/go-console/api"
	"github.com/accessware/go-console/credentials"
	"github.com/accessware/go-console/internal/config"
	consoleerrors "github.com/accessware/go-console/internal/errors"
	"github.com/accessware/go-console/session"
	"github.com/accessware/go-console/workspace"
	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("console exited")
	}
}

func run() error {
	cfg := config.New()
	displayAppName(cfg.GetAppName())

	store, err := newCredentialStore(cfg)
	if err != nil {
		return err
	}

	manager := session.NewManager(store, session.WithLogger(log.Logger))
	if err := manager.Initialize(); err != nil {
		return err
	}

	client := api.NewClient(cfg.GetAPIBaseURL(),
		api.WithHTTPClient(newHTTPClient(cfg)),
		api.WithClientLogger(log.Logger))
	refresher := session.NewRefresher(manager, client.RefreshTokens,
		session.WithRefresherLogger(log.Logger))
	client.UsePipeline(api.NewPipeline(manager, refresher,
		api.WithPipelineLogger(log.Logger)))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.GetHTTPTimeout())
	defer cancel()

	if !manager.IsAuthenticated() {
		if err := login(ctx, client, manager); err != nil {
			return err
		}
	}

	return showWorkspaces(ctx, client, manager)
}

func login(ctx context.Context, client *api.Client, manager *session.Manager) error {
	email := config.GetEnv("CONSOLE_EMAIL", "")
	password := config.GetEnv("CONSOLE_PASSWORD", "")
	if email == "" || password == "" {
		return consoleerrors.ErrNotAuthenticated
	}

	pair, err := client.Login(ctx, email, password)
	if err != nil {
		var notVerified *api.AccountNotVerifiedError
		if consoleerrors.As(err, &notVerified) {
			log.Warn().Str("email", notVerified.Email).Msg("account requires verification")
		}
		return err
	}
	return manager.SetCredentials(pair, nil)
}

func showWorkspaces(ctx context.Context, client *api.Client, manager *session.Manager) error {
	workspaces, err := client.ListWorkspaces(ctx)
	if err != nil {
		return err
	}

	controller := workspace.NewController(manager, client, workspace.WithLogger(log.Logger))
	if current := controller.ApplyDefault(workspaces); current != nil {
		log.Info().Str("workspace", current.WorkspaceName).Msg("current workspace")
	}

	now := time.Now()
	for _, ws := range workspaces {
		if workspace.Available(ws, now) {
			fmt.Printf("  %s (%s)\n", ws.WorkspaceName, ws.AccountType)
			continue
		}
		if ws.AccessStartDate != nil {
			if remaining := workspace.TimeUntil(*ws.AccessStartDate, now); remaining != nil {
				fmt.Printf("  %s - opens in %s\n", ws.WorkspaceName, workspace.FormatRemaining(*remaining))
				continue
			}
		}
		fmt.Printf("  %s - unavailable\n", ws.WorkspaceName)
	}
	return nil
}

func newCredentialStore(cfg config.Config) (credentials.Store, error) {
	keyHex := cfg.GetCredentialKey()
	if keyHex == "" {
		return credentials.NewFileStore(cfg.GetCredentialFile()), nil
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, consoleerrors.Wrapf(err, "decoding CREDENTIAL_KEY")
	}
	return credentials.NewEncryptedStore(cfg.GetCredentialFile(), key)
}

func newHTTPClient(cfg config.Config) *http.Client {
	return &http.Client{Timeout: cfg.GetHTTPTimeout()}
}

func displayAppName(appName string) {
	myFigure := figure.NewFigure(appName, "cybermedium", true)
	myFigure.Print()
}
