package auth

import (
	"context"
	"log/slog"

	"github.com/tonimelisma/personium-go/internal/session"
)

// PasswordGrantManager signs in with the OAuth2 resource owner password
// credentials grant against {cell}__token.
type PasswordGrantManager struct {
	cell     string
	boxURL   string
	username string
	password string
	state    *session.State
	opts     options

	login   flight
	refresh flight
}

// NewPasswordGrantManager creates a manager for the given cell URL (with
// trailing slash) and box name. Successful logins are written to state.
func NewPasswordGrantManager(
	cell, box, username, password string,
	state *session.State,
	opts ...Option,
) *PasswordGrantManager {
	o := buildOptions(opts)
	logger := o.logger.With(slog.String("manager", "password"))
	o.logger = logger

	return &PasswordGrantManager{
		cell:     cell,
		boxURL:   cell + box + "/",
		username: username,
		password: password,
		state:    state,
		opts:     o,
		login:    flight{name: FlowLogin, logger: logger},
		refresh:  flight{name: FlowRefresh, logger: logger},
	}
}

// BoxURL is the storage endpoint a successful login publishes.
func (m *PasswordGrantManager) BoxURL() string {
	return m.boxURL
}

// LoginState reports whether a login is in flight.
func (m *PasswordGrantManager) LoginState() FlightState { return m.login.State() }

// RefreshState reports whether a refresh is in flight.
func (m *PasswordGrantManager) RefreshState() FlightState { return m.refresh.State() }

// StartLogin begins a password grant login, or returns the login already in
// flight. On success the credential, box URL and cell are stored.
func (m *PasswordGrantManager) StartLogin(ctx context.Context) *Operation {
	return m.login.do(ctx, func(ctx context.Context) error {
		body := EncodeForm([]Field{
			{Key: "grant_type", Value: "password"},
			{Key: "username", Value: m.username},
			{Key: "password", Value: m.password},
		})

		cred, err := postForm(ctx, &m.opts, m.tokenURL(), body)
		if err != nil {
			m.opts.logger.Warn("login failed", slog.String("error", err.Error()))
			return &FlowError{Manager: "password", Flow: FlowLogin, Err: err}
		}

		m.state.SetCredential(cred)
		m.state.SetStorageEndpoint(m.boxURL)
		m.state.SetTargetCell(m.cell)

		m.opts.logger.Info("login successful",
			slog.String("cell", m.cell),
			slog.String("box_url", m.boxURL),
			slog.Int("expires_in", cred.ExpiresIn),
		)

		return nil
	})
}

// Login is StartLogin followed by Wait.
func (m *PasswordGrantManager) Login(ctx context.Context) error {
	return m.StartLogin(ctx).Wait(ctx)
}

// StartRefresh exchanges the refresh token of the credential currently in
// the shared session (whichever manager stored it) for a new credential, or
// returns the refresh already in flight. Only the credential is replaced.
func (m *PasswordGrantManager) StartRefresh(ctx context.Context) *Operation {
	return m.refresh.do(ctx, func(ctx context.Context) error {
		current := m.state.Credential()
		if current == nil {
			return &FlowError{Manager: "password", Flow: FlowRefresh, Err: ErrMissingCredential}
		}

		body := EncodeForm([]Field{
			{Key: "grant_type", Value: "refresh_token"},
			{Key: "refresh_token", Value: current.RefreshToken},
		})

		cred, err := postForm(ctx, &m.opts, m.tokenURL(), body)
		if err != nil {
			m.opts.logger.Warn("refresh failed", slog.String("error", err.Error()))
			return &FlowError{Manager: "password", Flow: FlowRefresh, Err: err}
		}

		m.state.SetCredential(cred)

		m.opts.logger.Info("refresh successful", slog.Int("expires_in", cred.ExpiresIn))

		return nil
	})
}

// Refresh is StartRefresh followed by Wait.
func (m *PasswordGrantManager) Refresh(ctx context.Context) error {
	return m.StartRefresh(ctx).Wait(ctx)
}

func (m *PasswordGrantManager) tokenURL() string {
	return m.cell + "__token"
}
