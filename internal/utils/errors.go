package utils

// AppError annotates a failure with the operation that produced it and a
// message meant for callers. The underlying cause stays reachable through
// errors.Is and errors.As.
type AppError struct {
	Op  string // failing operation, e.g. "repo.Open"
	Msg string
	Err error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Op + ": " + e.Msg
	}
	return e.Op + ": " + e.Msg + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError constructs an AppError.
func NewAppError(op, msg string, err error) error {
	return &AppError{Op: op, Msg: msg, Err: err}
}
