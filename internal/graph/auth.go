package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DefaultAuthorityHost is the Entra ID login host. Tenant-scoped authorities
// are built as {host}/{tenant_id}.
const DefaultAuthorityHost = "https://login.microsoftonline.com"

// DefaultScope requests every application permission granted to the app.
const DefaultScope = "https://graph.microsoft.com/.default"

// Credentials identify a confidential client application in one tenant.
// They are used once to mint a token and never stored.
type Credentials struct {
	ClientID     string
	ClientSecret string
	TenantID     string
}

// Validate reports missing credential fields.
func (c Credentials) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ClientID, validation.Required),
		validation.Field(&c.ClientSecret, validation.Required),
		validation.Field(&c.TenantID, validation.Required),
	)
}

// AuthOptions tune Authenticate. The zero value talks to the public cloud
// with http.DefaultClient and discards logs.
type AuthOptions struct {
	AuthorityHost string // default DefaultAuthorityHost
	Scope         string // default DefaultScope
	HTTPClient    *http.Client
	Logger        *slog.Logger
}

// Session is the immutable result of an authentication attempt. A session
// whose attempt failed still exists: Authenticated reports false and Token
// returns ErrNoToken, so operations built on it fail without network I/O.
type Session struct {
	accessToken string
	err         error
}

// NewStaticSession wraps an already-acquired bearer token.
func NewStaticSession(accessToken string) *Session {
	return &Session{accessToken: accessToken}
}

// Token implements TokenSource.
func (s *Session) Token() (string, error) {
	if s == nil || s.accessToken == "" {
		return "", ErrNoToken
	}

	return s.accessToken, nil
}

// Authenticated reports whether the session carries a token.
func (s *Session) Authenticated() bool {
	return s != nil && s.accessToken != ""
}

// Err returns the authentication failure, or nil for an authenticated session.
func (s *Session) Err() error {
	if s == nil {
		return ErrNoToken
	}

	return s.err
}

// Authority returns the tenant-scoped authority URL.
func Authority(host, tenantID string) string {
	if host == "" {
		host = DefaultAuthorityHost
	}

	return strings.TrimSuffix(host, "/") + "/" + tenantID
}

// Authenticate obtains an app-only bearer token with the OAuth2 client
// credentials grant. It always returns a non-nil Session; on failure the
// session is unauthenticated and the error is also returned. There is no
// retry and no refresh: an expired token surfaces later as ErrUnauthorized.
func Authenticate(ctx context.Context, creds Credentials, opts AuthOptions) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if err := creds.Validate(); err != nil {
		err = fmt.Errorf("graph: invalid credentials: %w", err)
		logger.Error("failed to get token", slog.String("error", err.Error()))

		return &Session{err: err}, err
	}

	scope := opts.Scope
	if scope == "" {
		scope = DefaultScope
	}

	cfg := clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     Authority(opts.AuthorityHost, creds.TenantID) + "/oauth2/v2.0/token",
		Scopes:       []string{scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	if opts.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, opts.HTTPClient)
	}

	logger.Debug("requesting app-only token",
		slog.String("tenant_id", creds.TenantID),
		slog.String("client_id", creds.ClientID),
	)

	tok, err := cfg.Token(ctx)
	if err != nil {
		err = fmt.Errorf("graph: acquiring token: %w", err)
		logger.Error("failed to get token", slog.String("error", describeTokenError(err)))

		return &Session{err: err}, err
	}

	logger.Debug("obtained Graph API token",
		slog.String("token_type", tok.Type()),
		slog.Time("expiry", tok.Expiry),
	)

	return &Session{accessToken: tok.AccessToken}, nil
}

// describeTokenError prefers the identity provider's error_description.
func describeTokenError(err error) string {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorDescription != "" {
		return re.ErrorDescription
	}

	return err.Error()
}
