package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tonimelisma/personium-go/internal/session"
)

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to the cell and show the session",
		Long: `Sign in with the configured mode (password grant, or delegated login
through an intermediary web app) and print the resulting session. Sessions
live in memory only; nothing is written to disk.`,
		Args: cobra.NoArgs,
		RunE: runLogin,
	}
}

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Sign in, then exchange the refresh token for a new credential",
		Args:  cobra.NoArgs,
		RunE:  runRefresh,
	}
}

func runLogin(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	s := newCellSession(resolvedCfg, logger)

	logger.Info("login started", "mode", resolvedCfg.Auth.Mode, "cell", resolvedCfg.Cell.URL)

	if err := s.login(cmd.Context()); err != nil {
		return err
	}

	logger.Info("login successful", "mode", resolvedCfg.Auth.Mode)
	statusf("Login successful.\n")

	return printSession(cmd.OutOrStdout(), s.state.Snapshot())
}

func runRefresh(cmd *cobra.Command, _ []string) error {
	logger := buildLogger()
	s := newCellSession(resolvedCfg, logger)
	ctx := cmd.Context()

	if err := s.login(ctx); err != nil {
		return err
	}

	if err := s.manager.Refresh(ctx); err != nil {
		return err
	}

	statusf("Refresh successful.\n")

	return printSession(cmd.OutOrStdout(), s.state.Snapshot())
}

// sessionOutput is the JSON schema for `login --json` and `refresh --json`.
// Token values are deliberately absent.
type sessionOutput struct {
	Cell             string `json:"cell"`
	StorageEndpoint  string `json:"storage_endpoint"`
	TokenType        string `json:"token_type,omitempty"`
	Scope            string `json:"scope,omitempty"`
	ExpiresAt        string `json:"expires_at,omitempty"`
	RefreshExpiresAt string `json:"refresh_expires_at,omitempty"`

	expiry        time.Time
	refreshExpiry time.Time
}

func newSessionOutput(snap session.Snapshot) sessionOutput {
	out := sessionOutput{
		Cell:            snap.TargetCell,
		StorageEndpoint: snap.StorageEndpoint,
	}

	if c := snap.Credential; c != nil {
		out.TokenType = c.TokenType
		out.Scope = c.Scope
		out.expiry = c.Expiry()
		out.ExpiresAt = formatTimestamp(out.expiry)

		if c.RefreshTokenExpiresIn > 0 && !c.IssuedAt.IsZero() {
			out.refreshExpiry = c.IssuedAt.Add(time.Duration(c.RefreshTokenExpiresIn) * time.Second)
			out.RefreshExpiresAt = formatTimestamp(out.refreshExpiry)
		}
	}

	return out
}

func printSession(w io.Writer, snap session.Snapshot) error {
	out := newSessionOutput(snap)

	if flagJSON {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Cell:     %s\n", out.Cell)
	fmt.Fprintf(w, "Box:      %s\n", out.StorageEndpoint)

	if out.ExpiresAt != "" {
		fmt.Fprintf(w, "Expires:  %s (%s)\n", out.ExpiresAt, formatRelative(out.expiry))
	}

	if out.RefreshExpiresAt != "" {
		fmt.Fprintf(w, "Refresh:  %s (%s)\n", out.RefreshExpiresAt, formatRelative(out.refreshExpiry))
	}

	return nil
}
