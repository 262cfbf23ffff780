package location

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/tonimelisma/personium-go/internal/session"
)

const (
	defaultUserAgent = "personium-go/0.1"
	maxErrorBody     = 4096
)

// ErrNoStorageEndpoint is returned when the session has a credential but no
// box URL, e.g. after a delegated login whose endpoint resolution failed.
var ErrNoStorageEndpoint = errors.New("location: session has no storage endpoint")

// Refresher renews the session credential. auth.PasswordGrantManager and
// auth.DelegatedLoginManager both satisfy it.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Client talks to the box the session points at.
type Client struct {
	httpClient *http.Client
	state      *session.State
	tokens     oauth2.TokenSource
	refresher  Refresher
	logger     *slog.Logger
	userAgent  string
	loc        *time.Location

	busy busySet
}

// NewClient creates a Client. refresher may be nil, in which case expired
// tokens and 401 responses are returned to the caller as-is. loc is the time
// zone used to bucket records into days (nil means time.Local).
func NewClient(
	httpClient *http.Client,
	state *session.State,
	refresher Refresher,
	loc *time.Location,
	logger *slog.Logger,
) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	if loc == nil {
		loc = time.Local
	}

	return &Client{
		httpClient: httpClient,
		state:      state,
		tokens:     session.TokenSource(state),
		refresher:  refresher,
		logger:     logger,
		userAgent:  defaultUserAgent,
		loc:        loc,
	}
}

// SetUserAgent overrides the User-Agent header.
func (c *Client) SetUserAgent(ua string) {
	if ua != "" {
		c.userAgent = ua
	}
}

// BoxURL returns the storage endpoint of the current session.
func (c *Client) BoxURL() (string, error) {
	snap := c.state.Snapshot()
	if snap.Credential == nil {
		return "", session.ErrNotAuthenticated
	}

	if snap.StorageEndpoint == "" {
		return "", ErrNoStorageEndpoint
	}

	return snap.StorageEndpoint, nil
}

// Do sends an authenticated request to an absolute URL. An expired token is
// refreshed before sending, and a 401 response triggers one refresh and one
// resend. Non-2xx responses become *APIError. The caller closes the body.
func (c *Client) Do(ctx context.Context, method, url string, header http.Header, body []byte) (*http.Response, error) {
	tok, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.doOnce(ctx, method, url, header, body, tok)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && c.refresher != nil {
		drain(resp)

		c.logger.Info("request unauthorized, refreshing credential",
			slog.String("method", method),
			slog.String("url", url),
		)

		if err := c.refresher.Refresh(ctx); err != nil {
			return nil, fmt.Errorf("location: refreshing after 401: %w", err)
		}

		if tok, err = c.tokens.Token(); err != nil {
			return nil, fmt.Errorf("location: obtaining token: %w", err)
		}

		if resp, err = c.doOnce(ctx, method, url, header, body, tok); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", method),
			slog.String("url", url),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	errBody, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	return nil, &APIError{
		StatusCode: resp.StatusCode,
		Message:    string(bytes.TrimSpace(errBody)),
		Err:        classifyStatus(resp.StatusCode),
	}
}

// token returns a usable token, refreshing first if the stored one has
// expired and a refresher is available.
func (c *Client) token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("location: obtaining token: %w", err)
	}

	if tok.Valid() || c.refresher == nil {
		return tok, nil
	}

	c.logger.Info("access token expired, refreshing", slog.Time("expiry", tok.Expiry))

	if err := c.refresher.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("location: refreshing expired token: %w", err)
	}

	tok, err = c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("location: obtaining token: %w", err)
	}

	return tok, nil
}

// doOnce executes a single HTTP request.
func (c *Client) doOnce(
	ctx context.Context,
	method, url string,
	header http.Header,
	body []byte,
	tok *oauth2.Token,
) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("location: creating request: %w", err)
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	tok.SetAuthHeader(req)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("location: %s %s: %w", method, url, err)
	}

	return resp, nil
}

// drain discards and closes a response body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
