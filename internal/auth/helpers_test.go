package auth

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// testCredentialJSON is the canonical token response for tests.
const testCredentialJSON = `{
	"access_token": "A",
	"token_type": "Bearer",
	"refresh_token": "R",
	"expires_in": 3600,
	"refresh_token_expires_in": 86400
}`

// refreshedCredentialJSON is returned by refresh endpoints in tests.
const refreshedCredentialJSON = `{
	"access_token": "A2",
	"token_type": "Bearer",
	"refresh_token": "R2",
	"expires_in": 3600
}`

// recordedRequest captures what a fake endpoint received.
type recordedRequest struct {
	Method      string
	Path        string
	RawQuery    string
	ContentType string
	Auth        string
	Body        string
	Cookie      string
}

// endpoint is a fake HTTP endpoint that counts and records requests.
type endpoint struct {
	calls atomic.Int32

	mu       sync.Mutex
	requests []recordedRequest
}

func (e *endpoint) record(r *http.Request) {
	body, _ := io.ReadAll(r.Body) //nolint:errcheck // test helper
	r.Body = io.NopCloser(bytes.NewReader(body))

	var cookie string
	if c, err := r.Cookie("session"); err == nil {
		cookie = c.Value
	}

	e.calls.Add(1)

	e.mu.Lock()
	defer e.mu.Unlock()

	e.requests = append(e.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		RawQuery:    r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
		Auth:        r.Header.Get("Authorization"),
		Body:        string(body),
		Cookie:      cookie,
	})
}

func (e *endpoint) last(t *testing.T) recordedRequest {
	t.Helper()

	e.mu.Lock()
	defer e.mu.Unlock()

	require.NotEmpty(t, e.requests, "no request recorded")

	return e.requests[len(e.requests)-1]
}

// handle wraps h so every request is recorded before h runs.
func (e *endpoint) handle(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		e.record(r)
		h(w, r)
	}
}

func jsonResponse(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// blockingResponse waits on release before answering, and signals entered on
// each request so tests can assert while the request is in flight.
func blockingResponse(entered chan<- struct{}, release <-chan struct{}, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entered <- struct{}{}
		<-release
		jsonResponse(http.StatusOK, body)(w, r)
	}
}

// newServer starts an httptest server and returns its URL with a trailing
// slash, which is how cell URLs are written.
func newServer(t *testing.T, mux *http.ServeMux) string {
	t.Helper()

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv.URL + "/"
}

func testOptions(client *http.Client) []Option {
	if client == nil {
		client = NewHTTPClient()
	}

	return []Option{WithHTTPClient(client), WithLogger(slog.Default())}
}
