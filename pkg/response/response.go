package response

import (
	"errors"
)

// Error is a sentinel carrying the HTTP status it maps to.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Is(target error) bool {
	var t *Error
	ok := errors.As(target, &t)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Err.Error() == t.Err.Error()
}

func NewError(code int, err string) error {
	return &Error{code, errors.New(err)}
}

// StatusCode returns the status of the first *Error in err's chain, or fallback.
func StatusCode(err error, fallback int) int {
	var respErr *Error
	if errors.As(err, &respErr) {
		return respErr.Code
	}
	return fallback
}
