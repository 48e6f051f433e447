package apierr

import "fmt"

// Error carries the HTTP status and a stable code out of usecases. Details, when set,
// is rendered verbatim under "details" so callers can point at offending input.
type Error struct {
	Status  int
	Code    string
	Err     error
	Details any
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func WithDetails(status int, code string, err error, details any) *Error {
	return &Error{Status: status, Code: code, Err: err, Details: details}
}
