package auth

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
)

// Manager is the interface both login managers satisfy. Consumers that only
// need to re-authenticate (for example after a 401) depend on this rather
// than on a concrete manager.
type Manager interface {
	Login(ctx context.Context) error
	Refresh(ctx context.Context) error
}

var (
	_ Manager = (*PasswordGrantManager)(nil)
	_ Manager = (*DelegatedLoginManager)(nil)
)

const defaultUserAgent = "personium-go/0.1"

// Option configures a login manager.
type Option func(*options)

type options struct {
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string
}

// WithHTTPClient sets the HTTP client. The client's cookie jar is what makes
// requests "credential-bearing"; share one client between the managers and
// the rest of the application so cookies set during login are reused.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger. Token values are never logged.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

func buildOptions(opts []Option) options {
	o := options{userAgent: defaultUserAgent}
	for _, opt := range opts {
		opt(&o)
	}

	if o.logger == nil {
		o.logger = slog.Default()
	}

	if o.httpClient == nil {
		o.httpClient = NewHTTPClient()
	}

	return o
}

// NewHTTPClient returns an http.Client with an in-memory cookie jar and no
// overall timeout. Login and refresh requests are not cancelled once issued.
func NewHTTPClient() *http.Client {
	// cookiejar.New only fails on a bad PublicSuffixList; nil never does.
	jar, _ := cookiejar.New(nil) //nolint:errcheck // see above

	return &http.Client{Jar: jar}
}
