package apiclient

import "errors"

// FallbackMessage is reported when a failed envelope carries no error text.
const FallbackMessage = "API Request Failed"

// ErrRequestFailed matches every RequestError via errors.Is.
var ErrRequestFailed = errors.New("api request failed")

// RequestError unifies transport and application failures of a backend call.
type RequestError struct {
	Endpoint string
	Status   int
	Message  string
	Err      error
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return FallbackMessage
	}
	return e.Message
}

// Unwrap exposes the transport or decoding cause, when there is one.
func (e *RequestError) Unwrap() error { return e.Err }

// Is reports true for ErrRequestFailed.
func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// Application reports whether the backend answered with a well-formed failure envelope.
func (e *RequestError) Application() bool { return e.Err == nil }
