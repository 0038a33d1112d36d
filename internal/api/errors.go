// ABOUTME: Derives human-readable messages from failed requests and error bodies
// ABOUTME: Structured bodies yield their message field; anything else yields its raw text

package api

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrNoConversation is reported when a send is attempted with no active conversation.
var ErrNoConversation = errors.New("no active conversation")

// messageFields are tried in order on structured error bodies.
var messageFields = []string{"message", "error", "detail", "msg", "error.message"}

// MessageFromBody derives a display message from an error response body.
// structured reports whether the body parsed as JSON.
func MessageFromBody(body string) (msg string, structured bool) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" || !gjson.Valid(trimmed) {
		return trimmed, false
	}

	parsed := gjson.Parse(trimmed)
	if parsed.Type == gjson.String {
		return parsed.String(), true
	}
	for _, field := range messageFields {
		if v := parsed.Get(field); v.Type == gjson.String && v.String() != "" {
			return v.String(), true
		}
	}
	return trimmed, true
}

// ErrorMessage derives a display message from any error returned by Client.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		if msg, _ := MessageFromBody(statusErr.Body); msg != "" {
			return msg
		}
		return statusErr.Error()
	}
	return err.Error()
}
