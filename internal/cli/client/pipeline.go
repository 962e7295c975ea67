package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/castvote-dev/castvote/internal/cli/guard"
)

// Notification texts surfaced by ClassifyResponse
const (
	MsgSessionExpired = "Your session has expired. Please log in again."
	MsgForbidden      = "You do not have permission to perform this action"
	MsgServerError    = "Server error. Please try again later."
	MsgInvalidRequest = "Invalid request. Please check your input."
	MsgTimeout        = "Request timed out. Please try again."
	MsgNetwork        = "Network error. Please check your connection."
)

// placeholderToken is what a missing token serializes to in the original web
// client's storage; it must never be sent.
const placeholderToken = "undefined"

// RequestContext is one in-flight request/response pair
type RequestContext struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte

	// Filled after the call
	Status       int
	ResponseBody []byte
	Err          error
}

// Outcome is the classification of a finished call
type Outcome struct {
	Err     *Error
	Effects []Effect
}

// PrepareRequest is the outgoing stage. It returns a copy of rc carrying
// exactly one bearer Authorization header when token is usable.
func PrepareRequest(rc RequestContext, token string) RequestContext {
	out := rc
	if rc.Header != nil {
		out.Header = rc.Header.Clone()
	} else {
		out.Header = make(http.Header)
	}

	if token != "" && token != placeholderToken {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return out
}

// ClassifyResponse is the incoming stage. location is the route the user is
// currently on; it suppresses session teardown while logging in.
func ClassifyResponse(rc RequestContext, location string) Outcome {
	if rc.Status == 0 {
		return classifyTransport(rc)
	}
	if rc.Status >= 200 && rc.Status < 300 {
		return Outcome{}
	}

	apiErr := &Error{
		Status: rc.Status,
		Method: rc.Method,
		Path:   rc.Path,
	}

	switch {
	case rc.Status == http.StatusUnauthorized:
		apiErr.Kind = KindUnauthorized
		apiErr.Message = serverMessage(rc.ResponseBody, http.StatusText(rc.Status))

		isLoginPage := strings.Contains(location, "login")
		isLoginEndpoint := strings.Contains(rc.Path, "login")
		if isLoginPage || isLoginEndpoint {
			return Outcome{Err: apiErr}
		}
		return Outcome{
			Err: apiErr,
			Effects: []Effect{
				ClearSession{},
				RedirectTo{Route: guard.Login.Path},
				Notify{Message: MsgSessionExpired, Severity: SeverityError},
			},
		}

	case rc.Status == http.StatusForbidden:
		apiErr.Kind = KindForbidden
		apiErr.Message = MsgForbidden

	case rc.Status >= 500:
		apiErr.Kind = KindServerError
		apiErr.Message = MsgServerError

	case rc.Status == http.StatusBadRequest:
		apiErr.Kind = KindBadRequest
		apiErr.Message = serverMessage(rc.ResponseBody, MsgInvalidRequest)

	default:
		apiErr.Kind = KindOtherHTTP
		apiErr.Message = fmt.Sprintf("Error: %d - %s", rc.Status, http.StatusText(rc.Status))
	}

	return Outcome{
		Err:     apiErr,
		Effects: []Effect{Notify{Message: apiErr.Message, Severity: SeverityError}},
	}
}

func classifyTransport(rc RequestContext) Outcome {
	apiErr := &Error{
		Kind:    KindNetwork,
		Message: MsgNetwork,
		Method:  rc.Method,
		Path:    rc.Path,
		Err:     rc.Err,
	}
	if isTimeout(rc.Err) {
		apiErr.Kind = KindTimeout
		apiErr.Message = MsgTimeout
	}

	// The caller gave up on the request; nothing failed on the wire
	if errors.Is(rc.Err, context.Canceled) {
		return Outcome{Err: apiErr}
	}

	return Outcome{
		Err:     apiErr,
		Effects: []Effect{Notify{Message: apiErr.Message, Severity: SeverityError}},
	}
}

func isTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// serverMessage extracts the "message" field of a JSON error body
func serverMessage(body []byte, fallback string) string {
	var payload struct {
		Message string `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil || payload.Message == "" {
		return fallback
	}
	return payload.Message
}
