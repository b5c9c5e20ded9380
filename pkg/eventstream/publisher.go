// Package eventstream publishes validation outcomes to an event stream.
package eventstream

import "context"

// Publisher publishes validation events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, event *ValidationEvent) error
	Close() error
}
