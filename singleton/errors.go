package singleton

import (
	"errors"
	"fmt"
)

// ErrNilInstance is reported when a constructor returns neither a value nor an error.
var ErrNilInstance = errors.New("constructor returned a nil instance")

// ConstructionError is returned by Get when the constructor fails.
type ConstructionError struct {
	Name string
	Err  error
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("singleton %q: construction failed: %v", e.Name, e.Err)
}

func (e *ConstructionError) Unwrap() error { return e.Err }

// IsConstructionError returns true if err is, or wraps, a *ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}
