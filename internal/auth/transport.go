package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tonimelisma/personium-go/internal/session"
)

const contentTypeForm = "application/x-www-form-urlencoded"

// postForm POSTs a form-urlencoded body and decodes the response as a
// Credential. An empty body is sent as zero-length with the form content
// type still set, which is what the delegated-login intermediary expects.
func postForm(
	ctx context.Context,
	o *options,
	url, body string,
) (*session.Credential, error) {
	var reqBody io.Reader = http.NoBody
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return nil, fmt.Errorf("auth: creating request: %w", err)
	}

	req.Header.Set("Content-Type", contentTypeForm)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", o.userAgent)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Method: http.MethodPost, URL: redactQuery(url), Err: err}
	}
	defer resp.Body.Close()

	o.logger.Debug("credential response",
		slog.String("url", redactQuery(url)),
		slog.Int("status", resp.StatusCode),
	)

	return decodeCredential(resp)
}

// decodeCredential turns a token response into a Credential. Non-2xx status,
// a body that is not JSON, or a body without access_token is a BackendError.
func decodeCredential(resp *http.Response) (*session.Credential, error) {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: resp.Request.Method, URL: redactQuery(resp.Request.URL.String()), Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: truncate(data)}
	}

	var cred session.Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: "malformed credential response", Err: err}
	}

	if cred.AccessToken == "" {
		return nil, &BackendError{StatusCode: resp.StatusCode, Message: "credential response has no access_token"}
	}

	return &cred, nil
}

func truncate(b []byte) string {
	if len(b) > maxErrorBody {
		b = b[:maxErrorBody]
	}

	return strings.TrimSpace(string(b))
}

// redactQuery drops the query string from a URL before it is logged or put
// in an error.
func redactQuery(u string) string {
	if i := strings.IndexByte(u, '?'); i >= 0 {
		return u[:i]
	}

	return u
}
