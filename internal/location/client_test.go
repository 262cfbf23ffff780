package location

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonimelisma/personium-go/internal/session"
)

func TestDo_SendsBearerToken(t *testing.T) {
	headers := make(chan http.Header, 1)

	state, boxURL := newBox(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		_, _ = w.Write([]byte("ok"))
	}))

	c := newTestClient(state, nil)
	c.SetUserAgent("test-agent")

	resp, err := c.Do(context.Background(), http.MethodGet, boxURL+"x", nil, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))

	h := <-headers
	assert.Equal(t, "Bearer tok", h.Get("Authorization"))
	assert.Equal(t, "test-agent", h.Get("User-Agent"))
}

func TestDo_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		sentinel error
	}{
		{"bad request", http.StatusBadRequest, ErrBadRequest},
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"conflict", http.StatusConflict, ErrConflict},
		{"server error", http.StatusBadGateway, ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, boxURL := newBox(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code":"PR000"}`))
			}))

			_, err := newTestClient(state, nil).Do(context.Background(), http.MethodGet, boxURL, nil, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, `{"code":"PR000"}`, apiErr.Message)
		})
	}
}

func TestDo_UnclassifiedStatus(t *testing.T) {
	state, boxURL := newBox(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	_, err := newTestClient(state, nil).Do(context.Background(), http.MethodGet, boxURL, nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Nil(t, apiErr.Err)
}

func TestDo_NotAuthenticated(t *testing.T) {
	c := newTestClient(session.NewState(), nil)

	_, err := c.Do(context.Background(), http.MethodGet, "http://127.0.0.1:0/", nil, nil)
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestDo_RefreshesOn401AndRetriesOnce(t *testing.T) {
	var calls atomic.Int32

	state, boxURL := newBox(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)

		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))

	refresher := &fakeRefresher{state: state}
	c := newTestClient(state, refresher)

	resp, err := c.Do(context.Background(), methodACL, boxURL+"f.json", nil, []byte("payload"))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "payload", string(body), "body is resent on retry")
	assert.Equal(t, int32(1), refresher.calls.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestDo_SecondUnauthorizedIsReturned(t *testing.T) {
	state, boxURL := newBox(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	refresher := &fakeRefresher{state: state}
	_, err := newTestClient(state, refresher).Do(context.Background(), http.MethodGet, boxURL, nil, nil)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestDo_RefreshFailure(t *testing.T) {
	state, boxURL := newBox(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	boom := errors.New("refresh boom")
	_, err := newTestClient(state, &fakeRefresher{state: state, err: boom}).
		Do(context.Background(), http.MethodGet, boxURL, nil, nil)

	assert.ErrorIs(t, err, boom)
}

func TestDo_RefreshesExpiredTokenBeforeSending(t *testing.T) {
	auths := make(chan string, 1)

	state, boxURL := newBox(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		auths <- r.Header.Get("Authorization")
	}))

	state.SetCredential(&session.Credential{
		AccessToken: "stale",
		ExpiresIn:   60,
		IssuedAt:    time.Now().Add(-time.Hour),
	})

	refresher := &fakeRefresher{state: state}
	resp, err := newTestClient(state, refresher).Do(context.Background(), http.MethodGet, boxURL, nil, nil)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "Bearer fresh", <-auths)
	assert.Equal(t, int32(1), refresher.calls.Load())
}

func TestBoxURL(t *testing.T) {
	state := session.NewState()
	c := newTestClient(state, nil)

	_, err := c.BoxURL()
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	// Credential without endpoint: a partially completed delegated login.
	state.SetCredential(&session.Credential{AccessToken: "A"})
	_, err = c.BoxURL()
	assert.ErrorIs(t, err, ErrNoStorageEndpoint)

	state.SetStorageEndpoint("https://cell.example/box/")
	got, err := c.BoxURL()
	require.NoError(t, err)
	assert.Equal(t, "https://cell.example/box/", got)
}
