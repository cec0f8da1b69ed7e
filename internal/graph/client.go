package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/afero"
)

// DefaultBaseURL is the Graph v1.0 root every endpoint path is appended to.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const defaultUserAgent = "ms-graph-go/0.1"

// TokenSource provides OAuth2 bearer tokens. Session is the production
// implementation.
type TokenSource interface {
	Token() (string, error)
}

// Client is an HTTP client for the Microsoft Graph API.
// It handles request construction, authentication headers and error
// classification. Requests are issued exactly once: there is no retry.
// A Client holds no mutable state and is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
	logger     *slog.Logger
	userAgent  string
	fsys       afero.Fs // local files: attachments and uploads
}

// NewClient creates a Graph API client.
// baseURL is typically DefaultBaseURL. A nil logger discards all output.
func NewClient(baseURL string, httpClient *http.Client, token TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		token:      token,
		logger:     logger,
		userAgent:  defaultUserAgent,
		fsys:       afero.NewOsFs(),
	}
}

// WithUserAgent returns a copy of the client that sends the given User-Agent.
func (c *Client) WithUserAgent(ua string) *Client {
	cp := *c
	if ua != "" {
		cp.userAgent = ua
	}

	return &cp
}

// WithFs returns a copy of the client that reads local files from fsys.
func (c *Client) WithFs(fsys afero.Fs) *Client {
	cp := *c
	if fsys != nil {
		cp.fsys = fsys
	}

	return &cp
}

// request describes one Graph call. body may be nil.
type request struct {
	method      string
	url         string
	contentType string
	body        io.Reader
	header      http.Header
}

// Do executes an HTTP request against the Graph API.
// The path is appended to the client's base URL.
// For non-nil bodies, Content-Type is set to application/json.
// The caller is responsible for closing the response body on success.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req := request{method: method, url: c.baseURL + path, body: body}
	if body != nil {
		req.contentType = "application/json"
	}

	return c.do(ctx, req)
}

// do sends a single request and classifies non-2xx responses as *GraphError.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	// The token check comes first so an unauthenticated session never
	// touches the network.
	tok, err := c.authToken()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		return nil, fmt.Errorf("graph: creating request: %w", err)
	}

	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", c.userAgent)

	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("graph: request canceled: %w", ctx.Err())
		}

		return nil, fmt.Errorf("graph: %s %s: %w", r.method, req.URL.Path, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		c.logger.Debug("request succeeded",
			slog.String("method", r.method),
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
		)

		return resp, nil
	}

	// Read and close body for error responses.
	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	return nil, &GraphError{
		StatusCode: resp.StatusCode,
		RequestID:  resp.Header.Get("request-id"),
		Message:    string(errBody),
		Err:        classifyStatus(resp.StatusCode),
	}
}

// authToken fetches the bearer token, mapping a missing token to ErrNoToken.
func (c *Client) authToken() (string, error) {
	if c.token == nil {
		return "", ErrNoToken
	}

	tok, err := c.token.Token()
	if err != nil {
		if errors.Is(err, ErrNoToken) {
			return "", err
		}

		return "", fmt.Errorf("graph: obtaining token: %w", err)
	}

	if tok == "" {
		return "", ErrNoToken
	}

	return tok, nil
}
