package watch

import (
	"context"
)

// Handler reacts to one batch of changes.
type Handler func(ctx context.Context, batch []Event) error

// Loop feeds batches from w to handle one at a time until ctx is done.
// Handler and watcher errors go to onError and do not stop the loop.
func Loop(ctx context.Context, w *Watcher, handle Handler, onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-w.Batches():
			if err := handle(ctx, batch); err != nil && onError != nil {
				onError(err)
			}
		case err := <-w.Errors():
			if onError != nil {
				onError(err)
			}
		}
	}
}
