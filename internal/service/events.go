package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/marketplace-api/internal/queue"
)

const publishTimeout = 5 * time.Second

// publishAsync sends ev in the background so a slow or absent broker never
// delays the response.  Failures are logged by the publisher and dropped.
func publishAsync(ctx context.Context, pub EventPublisher, log *zap.Logger, ev queue.Event) {
	if pub == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, ev); err != nil {
			log.Debug("event dropped", zap.String("queue", ev.Queue()))
		}
	}()
}
