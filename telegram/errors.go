package telegram

import (
	"errors"
	"io/fs"
	"os"
)

// FatalError wraps a transfer error that retrying cannot help: local
// filesystem permission problems, invalid paths, and the like. The retry
// layer gives up immediately on these.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return "fatal: " + e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks err as non-retryable. It returns nil if err is nil.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal reports whether a transfer error should not be retried. Explicitly
// marked errors and well-known local filesystem failures are fatal;
// everything else is presumed transient (network, timeout).
func IsFatal(err error) bool {
	var fe *FatalError
	if errors.As(err, &fe) {
		return true
	}
	if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
		return true
	}
	var pe *fs.PathError
	return errors.As(err, &pe)
}
