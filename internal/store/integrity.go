package store

import "fmt"

// IntegrityError marks a data-integrity violation: the on-disk state and the
// bookkeeping invariants have diverged. It is not a recoverable input error;
// callers are expected to stop rather than continue on a corrupted database.
type IntegrityError struct {
	msg string
}

func (e *IntegrityError) Error() string {
	return "integrity violation: " + e.msg
}

// Integrityf builds an *IntegrityError with a formatted message.
func Integrityf(format string, args ...any) *IntegrityError {
	return &IntegrityError{msg: fmt.Sprintf(format, args...)}
}
