package session

import (
	"errors"

	"golang.org/x/oauth2"
)

// ErrNotAuthenticated is returned by the token source when no credential has
// been stored yet.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Token converts the credential into an oauth2.Token so it can be used with
// the x/oauth2 helpers (SetAuthHeader, Valid).
func (c *Credential) Token() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    tokenType,
		RefreshToken: c.RefreshToken,
		Expiry:       c.Expiry(),
	}
}

// TokenSource returns an oauth2.TokenSource that always reports the
// credential currently stored in s. It never refreshes on its own: refreshing
// is the job of the login managers, and a consumer that sees an invalid token
// is expected to ask one of them.
func TokenSource(s *State) oauth2.TokenSource {
	return stateTokenSource{state: s}
}

type stateTokenSource struct {
	state *State
}

func (ts stateTokenSource) Token() (*oauth2.Token, error) {
	c := ts.state.Credential()
	if c == nil {
		return nil, ErrNotAuthenticated
	}

	return c.Token(), nil
}
