// Package graph provides an HTTP client for the Microsoft Graph API covering
// app-only authentication, directory user search, mail sending, and
// SharePoint document library access.
package graph

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for HTTP status code classification.
// Use errors.Is(err, graph.ErrNotFound) to check.
var (
	ErrBadRequest   = errors.New("graph: bad request")
	ErrUnauthorized = errors.New("graph: unauthorized")
	ErrForbidden    = errors.New("graph: forbidden")
	ErrNotFound     = errors.New("graph: not found")
	ErrConflict     = errors.New("graph: conflict")
	ErrTooLarge     = errors.New("graph: payload too large")
	ErrThrottled    = errors.New("graph: throttled")
	ErrServerError  = errors.New("graph: server error")
)

// Local failures that never reach the network.
var (
	// ErrNoToken is returned by every operation when the session holds no
	// access token. No request is sent.
	ErrNoToken = errors.New("graph: no access token")

	// ErrAttachmentSource means an attachment named neither a path nor content.
	ErrAttachmentSource = errors.New("graph: attachment needs a path or content")

	// ErrFileNotFound means a local upload source does not exist or is not a regular file.
	ErrFileNotFound = errors.New("graph: file not found")

	// ErrUnexpectedStatus is used when Graph answers with a 2xx code the
	// operation does not treat as success (e.g. 200 instead of 202 on sendMail).
	ErrUnexpectedStatus = errors.New("graph: unexpected status")
)

// GraphError wraps a sentinel error with HTTP status code, request ID,
// and the API error message body for debugging.
type GraphError struct {
	StatusCode int
	RequestID  string
	Message    string
	Err        error // sentinel, for errors.Is()
}

func (e *GraphError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("graph: HTTP %d (request-id: %s): %s", e.StatusCode, e.RequestID, e.Message)
	}

	return fmt.Sprintf("graph: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *GraphError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to a sentinel error.
// Returns nil for codes without a dedicated sentinel.
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case http.StatusTooManyRequests:
		return ErrThrottled
	default:
		if code >= http.StatusInternalServerError {
			return ErrServerError
		}

		return nil
	}
}
