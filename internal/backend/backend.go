// Package backend assembles the Google and database collaborators a command needs.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gtaskroll/internal/auth"
	"gtaskroll/internal/backend/gmail"
	"gtaskroll/internal/backend/googletasks"
	"gtaskroll/internal/backend/postgres"
	"gtaskroll/internal/backend/retry"
	"gtaskroll/internal/backend/sheets"
	"gtaskroll/internal/config"
	"gtaskroll/internal/service"
)

// ErrNotLoggedIn is returned when credentials are missing.
var ErrNotLoggedIn = errors.New("not logged in (run: gtaskroll login)")

// Open builds the collaborators named by needs. Close the result when done.
func Open(ctx context.Context, cfg *config.Config, needs service.Needs) (*service.Backend, error) {
	b := &service.Backend{}
	if needs == service.NeedNone {
		return b, nil
	}

	if !cfg.HasOAuthClient() {
		return nil, fmt.Errorf("auth: oauth_client.json not found in %s", cfg.Dir)
	}
	if !cfg.HasToken() {
		return nil, fmt.Errorf("auth: %w", ErrNotLoggedIn)
	}
	httpClient, err := auth.HTTPClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	policy := retry.Policy{MaxElapsed: cfg.Settings.RetryMaxElapsed()}

	if needs.Has(service.NeedTasks) {
		b.Tasks, err = googletasks.New(ctx, httpClient, policy)
		if err != nil {
			return nil, err
		}
	}

	if needs.Has(service.NeedRunLog) {
		if err := openRunLog(ctx, b, cfg.Settings, httpClient, policy); err != nil {
			_ = b.Close()
			return nil, err
		}
	}

	if needs.Has(service.NeedNotifier) {
		n, err := gmail.New(ctx, httpClient, policy)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.Notifier = n
	}

	return b, nil
}

func openRunLog(ctx context.Context, b *service.Backend, s *config.Settings, httpClient *http.Client, policy retry.Policy) error {
	switch kind := s.RunLogBackend(); kind {
	case config.RunLogSheets:
		l, err := sheets.New(ctx, httpClient, s.SpreadsheetID(), s.SheetName(), policy)
		if err != nil {
			return err
		}
		b.Runs = l
	case config.RunLogPostgres:
		l, err := postgres.Open(ctx, s.PostgresDSN(), policy)
		if err != nil {
			return err
		}
		b.Runs = l
		b.OnClose(l.Close)
	case config.RunLogNone:
	default:
		return fmt.Errorf("unknown run_log.backend %q", kind)
	}
	return nil
}
