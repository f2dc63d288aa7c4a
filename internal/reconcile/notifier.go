package reconcile

import (
	"context"

	"github.com/fortuna/ligatipp/internal/store"
)

// MultiNotifier fans one result event out to several notifiers (stream
// publisher, cache invalidator). Every notifier runs even when an
// earlier one fails; the first error is returned.
type MultiNotifier []Notifier

// PublishResult implements Notifier.
func (mn MultiNotifier) PublishResult(ctx context.Context, m *store.Match) error {
	var first error
	for _, n := range mn {
		if err := n.PublishResult(ctx, m); err != nil && first == nil {
			first = err
		}
	}
	return first
}
