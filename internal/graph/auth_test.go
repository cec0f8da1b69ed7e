package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTokenJSON is the canonical client-credentials token response.
const testTokenJSON = `{
	"access_token": "test-access-token",
	"token_type": "Bearer",
	"expires_in": 3599
}`

var testCreds = Credentials{
	ClientID:     "client-id",
	ClientSecret: "client-secret",
	TenantID:     "tenant-id",
}

// newMockTokenServer serves /{tenant}/oauth2/v2.0/token with handler and
// returns the authority host. Cleanup is automatic via t.Cleanup.
func newMockTokenServer(t *testing.T, handler http.HandlerFunc) (string, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("POST /tenant-id/oauth2/v2.0/token", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv.URL, &calls
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestAuthenticate_Success(t *testing.T) {
	host, calls := newMockTokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, DefaultScope, r.PostForm.Get("scope"))

		jsonHandler(http.StatusOK, testTokenJSON)(w, r)
	})

	sess, err := Authenticate(context.Background(), testCreds, AuthOptions{AuthorityHost: host})
	require.NoError(t, err)
	require.NotNil(t, sess)

	assert.True(t, sess.Authenticated())
	assert.NoError(t, sess.Err())

	tok, err := sess.Token()
	require.NoError(t, err)
	assert.Equal(t, "test-access-token", tok)
	assert.Equal(t, int32(1), calls.Load())
}

func TestAuthenticate_ProviderError(t *testing.T) {
	host, _ := newMockTokenServer(t, jsonHandler(http.StatusUnauthorized,
		`{"error":"invalid_client","error_description":"AADSTS7000215: Invalid client secret provided."}`))

	sess, err := Authenticate(context.Background(), testCreds, AuthOptions{AuthorityHost: host})
	require.Error(t, err)
	require.NotNil(t, sess)

	assert.False(t, sess.Authenticated())
	assert.Equal(t, err, sess.Err())
	assert.Equal(t, "AADSTS7000215: Invalid client secret provided.", describeTokenError(err))

	_, tokErr := sess.Token()
	assert.ErrorIs(t, tokErr, ErrNoToken)
}

func TestAuthenticate_MissingAccessToken(t *testing.T) {
	host, _ := newMockTokenServer(t, jsonHandler(http.StatusOK, `{"token_type":"Bearer","expires_in":3599}`))

	sess, err := Authenticate(context.Background(), testCreds, AuthOptions{AuthorityHost: host})
	require.Error(t, err)
	require.NotNil(t, sess)
	assert.False(t, sess.Authenticated())
}

func TestAuthenticate_InvalidCredentialsSkipNetwork(t *testing.T) {
	host, calls := newMockTokenServer(t, jsonHandler(http.StatusOK, testTokenJSON))

	creds := testCreds
	creds.ClientSecret = ""

	sess, err := Authenticate(context.Background(), creds, AuthOptions{AuthorityHost: host})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
	assert.False(t, sess.Authenticated())
	assert.Equal(t, int32(0), calls.Load())
}

func TestAuthenticate_UsesProvidedHTTPClient(t *testing.T) {
	host, _ := newMockTokenServer(t, jsonHandler(http.StatusOK, testTokenJSON))

	var used atomic.Bool

	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		used.Store(true)

		return http.DefaultTransport.RoundTrip(r)
	})}

	sess, err := Authenticate(context.Background(), testCreds, AuthOptions{AuthorityHost: host, HTTPClient: hc})
	require.NoError(t, err)
	assert.True(t, sess.Authenticated())
	assert.True(t, used.Load())
}

func TestCredentials_Validate(t *testing.T) {
	assert.NoError(t, testCreds.Validate())

	err := Credentials{ClientID: "id"}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ClientSecret")
	assert.Contains(t, err.Error(), "TenantID")
}

func TestAuthority(t *testing.T) {
	assert.Equal(t, "https://login.microsoftonline.com/t1", Authority("", "t1"))
	assert.Equal(t, "https://login.microsoftonline.us/t1", Authority("https://login.microsoftonline.us/", "t1"))
}

func TestSession_NilAndStatic(t *testing.T) {
	var nilSess *Session

	assert.False(t, nilSess.Authenticated())
	assert.ErrorIs(t, nilSess.Err(), ErrNoToken)

	_, err := nilSess.Token()
	assert.ErrorIs(t, err, ErrNoToken)

	s := NewStaticSession("abc")
	assert.True(t, s.Authenticated())

	tok, err := s.Token()
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)
}

// roundTripFunc adapts a function to http.RoundTripper.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}
