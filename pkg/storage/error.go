package storage

import "errors"

// NotFoundError is returned when no snapshot is stored for a resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "snapshot not found"
	}

	return "snapshot not found: " + e.Resource
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// ErrNilSnapshot is returned by Put when no snapshot is given.
var ErrNilSnapshot = errors.New("cannot store nil snapshot")

// ErrEmptyResource is returned when a resource name is blank.
var ErrEmptyResource = errors.New("resource name is required")
