// Package notify delivers short human-readable cycle reports. Delivery is best effort,
// callers log failures and move on.
package notify

import (
	"context"
	"errors"
	"strings"

	log "github.com/go-pkgz/lgr"
)

// Notifier sends a message to a user-visible channel
type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Func adapts a plain function to Notifier
type Func func(ctx context.Context, msg string) error

// Notify calls f(ctx, msg)
func (f Func) Notify(ctx context.Context, msg string) error {
	return f(ctx, msg)
}

// Log writes notifications to the application log
type Log struct{}

// Notify logs the message at INFO level, multiline messages are flattened
func (Log) Notify(_ context.Context, msg string) error {
	log.Printf("[INFO] notification: %s", strings.ReplaceAll(msg, "\n", " | "))
	return nil
}

// Multi fans a message out to all notifiers. Every notifier is called even if some fail,
// the returned error joins all failures.
type Multi []Notifier

// Notify sends msg to every notifier
func (m Multi) Notify(ctx context.Context, msg string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
