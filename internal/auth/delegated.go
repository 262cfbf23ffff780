package auth

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tonimelisma/personium-go/internal/session"
)

// Intermediary paths served by the hosting web app.
const (
	startOAuth2Path  = "/__/auth/start_oauth2"
	refreshBoxPath   = "/__/auth/refreshProtectedBoxAccessToken"
	cellURLParameter = "cellUrl"
)

// DelegatedLoginManager signs in through an intermediary endpoint on the
// hosting web app, which holds the app's own credentials and the user's
// browser session (cookies), and hands back a box-scoped credential.
type DelegatedLoginManager struct {
	intermediary string
	cell         string
	state        *session.State
	opts         options

	login   flight
	refresh flight
}

// NewDelegatedLoginManager creates a manager. intermediary is the base URL
// of the web app (scheme and host, no trailing slash needed); cell is the
// target cell URL.
func NewDelegatedLoginManager(
	intermediary, cell string,
	state *session.State,
	opts ...Option,
) *DelegatedLoginManager {
	o := buildOptions(opts)
	logger := o.logger.With(slog.String("manager", "delegated"))
	o.logger = logger

	return &DelegatedLoginManager{
		intermediary: strings.TrimSuffix(intermediary, "/"),
		cell:         cell,
		state:        state,
		opts:         o,
		login:        flight{name: FlowLogin, logger: logger},
		refresh:      flight{name: FlowRefresh, logger: logger},
	}
}

// LoginState reports whether a login is in flight.
func (m *DelegatedLoginManager) LoginState() FlightState { return m.login.State() }

// RefreshState reports whether a refresh is in flight.
func (m *DelegatedLoginManager) RefreshState() FlightState { return m.refresh.State() }

// StartLogin begins a delegated login, or returns the one already in flight.
// The credential is stored as soon as the intermediary returns it; the box
// URL is stored only after endpoint resolution succeeds. A resolution
// failure therefore leaves a credential without a storage endpoint in the
// session, and callers must check Snapshot().Complete().
func (m *DelegatedLoginManager) StartLogin(ctx context.Context) *Operation {
	return m.login.do(ctx, func(ctx context.Context) error {
		url := m.intermediary + startOAuth2Path + "?" + cellURLParameter + "=" + m.cell

		cred, err := postForm(ctx, &m.opts, url, "")
		if err != nil {
			m.opts.logger.Warn("login failed", slog.String("error", err.Error()))
			return &FlowError{Manager: "delegated", Flow: FlowLogin, Err: err}
		}

		m.state.SetCredential(cred)

		boxURL, err := ResolveStorageEndpoint(ctx, m.opts.httpClient, m.cell, cred)
		if err != nil {
			m.opts.logger.Warn("storage endpoint resolution failed", slog.String("error", err.Error()))
			return &FlowError{Manager: "delegated", Flow: FlowLogin, Err: err}
		}

		m.state.SetStorageEndpoint(boxURL)
		m.state.SetTargetCell(m.cell)

		m.opts.logger.Info("login successful",
			slog.String("cell", m.cell),
			slog.String("box_url", boxURL),
			slog.Int("expires_in", cred.ExpiresIn),
		)

		return nil
	})
}

// Login is StartLogin followed by Wait.
func (m *DelegatedLoginManager) Login(ctx context.Context) error {
	return m.StartLogin(ctx).Wait(ctx)
}

// StartRefresh asks the intermediary to refresh the box access token using
// the refresh token of the credential currently in the session, or returns
// the refresh already in flight.
func (m *DelegatedLoginManager) StartRefresh(ctx context.Context) *Operation {
	return m.refresh.do(ctx, func(ctx context.Context) error {
		current := m.state.Credential()
		if current == nil {
			return &FlowError{Manager: "delegated", Flow: FlowRefresh, Err: ErrMissingCredential}
		}

		body := EncodeForm([]Field{
			{Key: "refresh_token", Value: current.RefreshToken},
			{Key: "p_target", Value: m.cell},
		})

		cred, err := postForm(ctx, &m.opts, m.intermediary+refreshBoxPath, body)
		if err != nil {
			m.opts.logger.Warn("refresh failed", slog.String("error", err.Error()))
			return &FlowError{Manager: "delegated", Flow: FlowRefresh, Err: err}
		}

		m.state.SetCredential(cred)

		m.opts.logger.Info("refresh successful", slog.Int("expires_in", cred.ExpiresIn))

		return nil
	})
}

// Refresh is StartRefresh followed by Wait.
func (m *DelegatedLoginManager) Refresh(ctx context.Context) error {
	return m.StartRefresh(ctx).Wait(ctx)
}
