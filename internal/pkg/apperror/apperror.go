// Package apperror defines the error type shared by all domain packages.
// Each domain declares its sentinel errors with New; the HTTP layer maps them
// to status codes without inspecting message text.
package apperror

// AppError carries an HTTP status code alongside the user-facing message.
// The wrapped Err, when present, is for logs only and never reaches clients.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a sentinel AppError with a status code and message.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}
