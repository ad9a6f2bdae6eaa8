// Package apierr defines the API transport error and turns arbitrary
// errors into a single display string.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where a request failed.
type Kind string

const (
	// KindHTTP is a response that reached us and signalled failure, either
	// by status code or by success:false in the body.
	KindHTTP Kind = "http"
	// KindFetch is a transport failure; no response was received.
	KindFetch Kind = "fetch"
	// KindParse is a response whose body could not be decoded.
	KindParse Kind = "parse"
	// KindCustom is a client-side failure raised after a response was
	// accepted, such as an upload that returned no URL.
	KindCustom Kind = "custom"
)

// Error is returned by the API client for every failed request.
type Error struct {
	Kind   Kind
	Status int    // 0 when no response was received
	Body   []byte // raw response body, if any
	Text   string // short description of the failure
	Msg    string // explicit display message set by the caller
	Err    error  // underlying cause
}

func (e *Error) Error() string {
	switch {
	case e.Msg != "":
		return e.Msg
	case e.Text != "":
		return fmt.Sprintf("%s error: %s", e.Kind, e.Text)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s error: %d %s", e.Kind, e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("%s error", e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// IsStatus reports whether err is an *Error carrying the given status.
func IsStatus(err error, status int) bool {
	var e *Error
	return errors.As(err, &e) && e.Status == status
}

// IsUnauthorized reports a 401 or 403 response.
func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}
