package ports

import (
	"context"

	"github.com/aretw0/landsketch/pkg/domain"
)

// Navigator transfers control to another view.
// No data travels with the navigation; views read the session store.
type Navigator interface {
	Navigate(ctx context.Context, view domain.View) error
}

// Notifier surfaces a user-visible message. Implementations block until the
// message has been delivered (printed, queued in a response, ...).
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, view domain.View) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, view domain.View) error {
	return f(ctx, view)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}
