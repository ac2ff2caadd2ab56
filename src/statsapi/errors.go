package statsapi

import "fmt"

// TransportError covers failed requests, unreadable bodies and non-2xx
// responses that carry no error field of their own.
type TransportError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServerError is a body-level error reported by the backend ({"error": "..."}).
type ServerError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error from %s: %s", e.Endpoint, e.Message)
}

// ShapeError means the response decoded but is not what the view expects.
type ShapeError struct {
	Endpoint string
	Field    string
	Reason   string
	Err      error
}

func (e *ShapeError) Error() string {
	msg := "unexpected response shape"
	if e.Endpoint != "" {
		msg += " from " + e.Endpoint
	}
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ShapeError) Unwrap() error { return e.Err }
