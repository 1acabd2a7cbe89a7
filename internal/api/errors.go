package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"
)

// Kind classifies an API failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindCredentialsRequired
	KindConnectionRefused
	KindHostNotFound
	KindTimeout
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindCredentialsRequired:
		return "credentials-required"
	case KindConnectionRefused:
		return "connection-refused"
	case KindHostNotFound:
		return "host-not-found"
	case KindTimeout:
		return "timeout"
	case KindBadRequest:
		return "bad-request"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// ErrCredentialsRequired is returned by Login when no username or password was configured.
var ErrCredentialsRequired = errors.New("username and password required for login")

// Error is a classified API failure. Message is meant for the operator.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the classification of err, or KindUnknown.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsAuthError reports whether err is a missing-credentials, 401 or 403 failure.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrCredentialsRequired) {
		return true
	}
	switch KindOf(err) {
	case KindCredentialsRequired, KindUnauthorized, KindForbidden:
		return true
	}
	return false
}

// IsConnectivityError reports whether err is a refused, unresolved or timed out request.
func IsConnectivityError(err error) bool {
	switch KindOf(err) {
	case KindConnectionRefused, KindHostNotFound, KindTimeout:
		return true
	}
	return false
}

// transportError classifies a failure that happened before any HTTP status was received.
func (c *Client) transportError(err error, defaultMessage string) *Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && !dnsErr.IsTimeout {
		return &Error{Kind: KindHostNotFound, Message: "Host not found: " + c.baseURL, Err: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return &Error{Kind: KindConnectionRefused, Message: "Cannot connect to " + c.baseURL, Err: err}
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Message: fmt.Sprintf("Operation timed out (%s)", formatTimeout(c.timeout)), Err: err}
	}
	return &Error{Kind: KindUnknown, Message: defaultMessage, Err: err}
}

// statusError classifies a non-2xx response.
func statusError(code int, body []byte, defaultMessage string) *Error {
	cause := fmt.Errorf("HTTP %d", code)
	switch code {
	case http.StatusBadRequest:
		msg := serverMessage(body)
		if msg == "" {
			msg = defaultMessage
		}
		return &Error{Kind: KindBadRequest, StatusCode: code, Message: msg, Err: cause}
	case http.StatusUnauthorized:
		return &Error{Kind: KindUnauthorized, StatusCode: code, Message: "Invalid credentials", Err: cause}
	case http.StatusForbidden:
		return &Error{Kind: KindForbidden, StatusCode: code, Message: "Access denied", Err: cause}
	case http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: code, Message: defaultMessage, Err: cause}
	default:
		return &Error{Kind: KindUnknown, StatusCode: code, Message: defaultMessage, Err: cause}
	}
}

// serverMessage extracts "message" from an error body. Validation
// failures send it as a list of strings.
func serverMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Message) == 0 {
		return ""
	}

	var single string
	if err := json.Unmarshal(payload.Message, &single); err == nil {
		return strings.TrimSpace(single)
	}
	var many []string
	if err := json.Unmarshal(payload.Message, &many); err == nil {
		return strings.Join(many, "; ")
	}
	return ""
}

func formatTimeout(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	return d.String()
}
