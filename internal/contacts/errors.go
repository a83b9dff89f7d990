package contacts

import "errors"

var (
	// ErrNotFound: the person or interaction does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden: the caller is not the owner of the person.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports bad caller input with a message safe to return
// as-is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}
