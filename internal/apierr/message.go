package apierr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Fallback display strings.
const (
	DefaultMessage = "An unexpected error occurred."
	NetworkMessage = "Network error. Please check your connection and try again."
	ParseMessage   = "Failed to parse server response."
)

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request. Please check your input.",
	http.StatusUnauthorized:        "Unauthorized. Please log in again.",
	http.StatusForbidden:           "Access denied. You do not have permission to perform this action.",
	http.StatusNotFound:            "Resource not found.",
	http.StatusInternalServerError: "Server error. Please try again later.",
}

// Message returns a non-empty display string for err. Messages supplied by
// the backend always win over generic status text; def is used when
// nothing more specific is known.
func Message(err error, def string) string {
	if def == "" {
		def = DefaultMessage
	}
	if err == nil {
		return def
	}

	var e *Error
	if !errors.As(err, &e) {
		if msg := err.Error(); msg != "" {
			return msg
		}
		return def
	}

	if msg := bodyMessage(e.Kind, e.Body); msg != "" {
		return msg
	}
	if e.Text != "" {
		return e.Text
	}
	if e.Msg != "" {
		return e.Msg
	}

	switch e.Kind {
	case KindFetch:
		return NetworkMessage
	case KindParse:
		return ParseMessage
	case KindCustom:
		return def
	}

	if msg, ok := statusMessages[e.Status]; ok {
		return msg
	}
	return def
}

// bodyMessage extracts a backend-supplied message from a response body.
func bodyMessage(kind Kind, body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		// A plain-text error page is the message; an undecodable success
		// body is not.
		if kind == KindHTTP {
			return strings.TrimSpace(string(body))
		}
		return ""
	}

	data := gjson.ParseBytes(body)
	if data.Type == gjson.String {
		return data.String()
	}

	if msg := nonEmpty(data.Get("message")); msg != "" {
		return msg
	}

	if v := data.Get("error"); v.Exists() {
		if msg := nonEmpty(v); msg != "" {
			return msg
		}
		if v.IsObject() {
			for _, key := range []string{"message", "details", "hint"} {
				if msg := nonEmpty(v.Get(key)); msg != "" {
					return msg
				}
			}
		}
	}

	if v := data.Get("errors"); v.IsArray() {
		var parts []string
		for _, item := range v.Array() {
			field, msg := nonEmpty(item.Get("field")), nonEmpty(item.Get("message"))
			switch {
			case field != "" && msg != "":
				parts = append(parts, field+": "+msg)
			case msg != "":
				parts = append(parts, msg)
			case item.Type == gjson.String:
				parts = append(parts, item.String())
			default:
				parts = append(parts, item.Raw)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, ", ")
		}
	}
	return ""
}

func nonEmpty(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.String()
}
