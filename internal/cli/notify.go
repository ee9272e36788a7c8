package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/landsketch/pkg/domain"
	"github.com/aretw0/landsketch/pkg/ports"
)

// Notifier prints user-visible messages as system lines.
type Notifier struct {
	mu sync.Mutex
	w  io.Writer
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier returns a Notifier writing to w.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w}
}

// Notify writes message and returns once it is written.
func (n *Notifier) Notify(ctx context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, ">>> %s\n", message)
}

// ResultsNavigator announces view changes on w. The CLI has no second
// screen, so reaching the results view only means the results are stored.
func ResultsNavigator(w io.Writer) ports.Navigator {
	return ports.NavigatorFunc(func(ctx context.Context, view domain.View) error {
		if view == domain.ViewResults {
			fmt.Fprintln(w, ">>> Search results saved.")
		}
		return nil
	})
}
