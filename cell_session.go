package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tonimelisma/personium-go/internal/auth"
	"github.com/tonimelisma/personium-go/internal/config"
	"github.com/tonimelisma/personium-go/internal/location"
	"github.com/tonimelisma/personium-go/internal/session"
)

// cellSession bundles everything a command needs to talk to the cell: one
// session state, the login manager selected by auth.mode, and a location
// client that refreshes through that manager. All three share one HTTP
// client, so cookies set during login are sent with every later request.
type cellSession struct {
	state   *session.State
	manager auth.Manager
	client  *location.Client
}

// newCellSession wires a session from the resolved config. Nothing is sent
// until login is called.
func newCellSession(cfg *config.Resolved, logger *slog.Logger) *cellSession {
	httpClient := newHTTPClient(cfg)
	state := session.NewState()

	opts := []auth.Option{
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(logger),
	}

	if cfg.Network.UserAgent != "" {
		opts = append(opts, auth.WithUserAgent(cfg.Network.UserAgent))
	}

	var manager auth.Manager

	switch cfg.Auth.Mode {
	case config.AuthModeDelegated:
		manager = auth.NewDelegatedLoginManager(cfg.Auth.IntermediaryURL, cfg.Cell.URL, state, opts...)
	default:
		manager = auth.NewPasswordGrantManager(
			cfg.Cell.URL, cfg.Cell.Box, cfg.Cell.Username, cfg.Cell.Password, state, opts...)
	}

	client := location.NewClient(httpClient, state, manager, cfg.Location, logger)
	client.SetUserAgent(cfg.Network.UserAgent)

	return &cellSession{
		state:   state,
		manager: manager,
		client:  client,
	}
}

// newHTTPClient returns the cookie-carrying client with the configured
// timeout (zero means none).
func newHTTPClient(cfg *config.Resolved) *http.Client {
	c := auth.NewHTTPClient()
	c.Timeout = cfg.Timeout

	return c
}

// login signs in and fails unless the session ends up complete. A delegated
// login whose box lookup failed leaves a credential without a storage
// endpoint; the commands cannot do anything useful with that.
func (s *cellSession) login(ctx context.Context) error {
	if err := s.manager.Login(ctx); err != nil {
		return err
	}

	if !s.state.Complete() {
		return errors.New("login: session incomplete (no storage endpoint)")
	}

	return nil
}

// resolvePath turns a command-line path into an absolute URL inside the box.
// Absolute http(s) URLs pass through unchanged.
func (s *cellSession) resolvePath(p string) (string, error) {
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p, nil
	}

	boxURL, err := s.client.BoxURL()
	if err != nil {
		return "", err
	}

	return boxURL + strings.TrimPrefix(p, "/"), nil
}
