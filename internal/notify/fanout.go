package notify

import (
	"context"

	"questlog/internal/service"
)

// Fanout delivers every message to each of its notifiers in order.
type Fanout []service.Notifier

func (f Fanout) Notify(ctx context.Context, userID int64, msg service.Message) {
	for _, n := range f {
		if n != nil {
			n.Notify(ctx, userID, msg)
		}
	}
}
