package eventstream

import "errors"

// ErrNilEvent indicates a nil validation event was provided to a publisher.
var ErrNilEvent = errors.New("nil validation event")
