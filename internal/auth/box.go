package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tonimelisma/personium-go/internal/session"
)

// ResolveStorageEndpoint asks the cell which box the credential grants access
// to. It sends GET {cell}__box with the bearer token and returns the
// Location response header verbatim. Redirects are not followed so that a
// 3xx Location is seen. Every failure wraps ErrEndpointResolution.
func ResolveStorageEndpoint(
	ctx context.Context,
	client *http.Client,
	cell string,
	cred *session.Credential,
) (string, error) {
	if cred == nil {
		return "", fmt.Errorf("%w: %w", ErrEndpointResolution, ErrMissingCredential)
	}

	if client == nil {
		client = http.DefaultClient
	}

	noRedirect := *client
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	url := cell + "__box"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: creating request: %w", ErrEndpointResolution, err)
	}

	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := noRedirect.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEndpointResolution,
			&NetworkError{Method: http.MethodGet, URL: url, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)) //nolint:errcheck // best-effort message

		return "", fmt.Errorf("%w: %w", ErrEndpointResolution,
			&BackendError{StatusCode: resp.StatusCode, Message: truncate(body)})
	}

	location := resp.Header.Get("Location")
	if location == "" {
		return "", fmt.Errorf("%w: %s returned no Location header", ErrEndpointResolution, url)
	}

	return location, nil
}
