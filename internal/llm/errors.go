package llm

import (
	"errors"
	"net"
	"net/http"

	genai "google.golang.org/genai"
)

var (
	ErrInvalidJSON = errors.New("llm: invalid JSON from model")
	ErrNoImage     = errors.New("llm: response contained no image")
)

// PermanentError indicates an error that will not resolve with retries.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

func NewPermanentError(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}

// IsTransient reports whether err is a server-side or overload failure worth
// retrying: HTTP 429 and 5xx from the API, or a network timeout.
func IsTransient(err error) bool {
	if err == nil || IsPermanent(err) {
		return false
	}
	if code, ok := apiErrorCode(err); ok {
		return code == http.StatusTooManyRequests || code >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return false
}

func apiErrorCode(err error) (int, bool) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code, true
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return p.Code, true
	}
	return 0, false
}

// IsUpstream reports whether err came back from the model API itself rather
// than from decoding or validating its output.
func IsUpstream(err error) bool {
	if _, ok := apiErrorCode(err); ok {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne)
}
