package usecase

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicateUser      = errors.New("user with this email or username already exists")
	ErrInvalidRole        = errors.New("invalid role specified")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
	ErrDuplicateCustomer  = errors.New("an account with this email already exists")
	ErrNoDemoProduct      = errors.New("demo product not configured")
)

// ValidationError is returned for rejected input; its message is safe to show
// to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}
