package location

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tonimelisma/personium-go/internal/session"
)

// fakeRefresher swaps in a fresh credential and counts calls.
type fakeRefresher struct {
	state *session.State
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(_ context.Context) error {
	f.calls.Add(1)

	if f.err != nil {
		return f.err
	}

	f.state.SetCredential(&session.Credential{AccessToken: "fresh", RefreshToken: "R2", ExpiresIn: 3600})

	return nil
}

// newBox starts a fake box server and returns a session pointing at it.
func newBox(t *testing.T, handler http.Handler) (*session.State, string) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	boxURL := srv.URL + "/cell/box/"

	state := session.NewState()
	state.SetCredential(&session.Credential{AccessToken: "tok", RefreshToken: "R", ExpiresIn: 3600})
	state.SetStorageEndpoint(boxURL)
	state.SetTargetCell(srv.URL + "/cell/")

	return state, boxURL
}

func newTestClient(state *session.State, refresher Refresher) *Client {
	return NewClient(http.DefaultClient, state, refresher, time.UTC, slog.Default())
}

const (
	defaultWait  = 5 * time.Second
	pollInterval = 10 * time.Millisecond
)
