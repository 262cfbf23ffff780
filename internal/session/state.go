// Package session holds the in-memory authentication state shared by the
// login managers and every component that talks to the cell on the user's
// behalf. A single *State is created by the caller and passed by reference;
// there is no package-level instance.
package session

import (
	"sync"
	"time"
)

// Credential is the OAuth2 token response returned by a cell's token
// endpoint (or by the delegated-login intermediary). Only RefreshToken is
// interpreted by the login managers; the rest is carried through.
type Credential struct {
	AccessToken           string `json:"access_token"`
	TokenType             string `json:"token_type,omitempty"`
	ExpiresIn             int    `json:"expires_in,omitempty"`
	RefreshToken          string `json:"refresh_token,omitempty"`
	RefreshTokenExpiresIn int    `json:"refresh_token_expires_in,omitempty"`
	Scope                 string `json:"scope,omitempty"`

	// IssuedAt is stamped locally when the credential is stored. Not part of
	// the wire format.
	IssuedAt time.Time `json:"-"`
}

// Expiry returns the absolute access token expiry, or the zero time when the
// server did not report expires_in.
func (c *Credential) Expiry() time.Time {
	if c.ExpiresIn <= 0 || c.IssuedAt.IsZero() {
		return time.Time{}
	}

	return c.IssuedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

// Snapshot is a point-in-time copy of the session triple.
type Snapshot struct {
	Credential      *Credential
	StorageEndpoint string
	TargetCell      string
}

// Complete reports whether all three parts of the session are present.
// A session with a credential but no storage endpoint is the visible result
// of a delegated login whose endpoint resolution failed.
func (s Snapshot) Complete() bool {
	return s.Credential != nil && s.StorageEndpoint != "" && s.TargetCell != ""
}

// State is the mutable session holder. Writes are last-writer-wins and
// immediately visible to every holder of the pointer; the mutex only keeps
// individual field accesses race-free, it does not serialize managers.
type State struct {
	mu              sync.RWMutex
	credential      *Credential
	storageEndpoint string
	targetCell      string

	now func() time.Time
}

// NewState returns an empty, unauthenticated session.
func NewState() *State {
	return &State{now: time.Now}
}

// Credential returns the stored credential, or nil before the first login.
func (s *State) Credential() *Credential {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.credential
}

// StorageEndpoint returns the resolved box URL, or "" if not yet resolved.
func (s *State) StorageEndpoint() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.storageEndpoint
}

// TargetCell returns the cell URL the session belongs to.
func (s *State) TargetCell() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.targetCell
}

// SetCredential replaces the stored credential. IssuedAt is stamped if the
// caller left it zero.
func (s *State) SetCredential(c *Credential) {
	if c != nil && c.IssuedAt.IsZero() {
		c.IssuedAt = s.clock()()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = c
}

// SetStorageEndpoint replaces the box URL.
func (s *State) SetStorageEndpoint(endpoint string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.storageEndpoint = endpoint
}

// SetTargetCell replaces the cell URL.
func (s *State) SetTargetCell(cell string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.targetCell = cell
}

// Snapshot reads the triple under one lock.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Credential:      s.credential,
		StorageEndpoint: s.storageEndpoint,
		TargetCell:      s.targetCell,
	}
}

// Complete is shorthand for Snapshot().Complete().
func (s *State) Complete() bool {
	return s.Snapshot().Complete()
}

// Reset clears the session back to unauthenticated.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.credential = nil
	s.storageEndpoint = ""
	s.targetCell = ""
}

func (s *State) clock() func() time.Time {
	if s.now == nil {
		return time.Now
	}

	return s.now
}
