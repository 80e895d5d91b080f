package notifications

import (
	"context"

	"github.com/loopin-app/backend/internal/push"
	"go.uber.org/zap"
)

// Notifier ties the aggregator to push delivery: it records an event and
// dispatches a push only when a new record starts a burst. Events that
// aggregate into an open record stay silent.
type Notifier struct {
	aggregator *Aggregator
	sender     *push.Sender
	logger     *zap.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(aggregator *Aggregator, sender *push.Sender, logger *zap.Logger) *Notifier {
	return &Notifier{aggregator: aggregator, sender: sender, logger: logger}
}

// Notify records the event and, for a burst-starting record, sends a push.
// Push failures are logged, not returned: delivery is fire-and-forget from
// the triggering action's perspective.
func (n *Notifier) Notify(ctx context.Context, ev Event) error {
	record, created, err := n.aggregator.Record(ctx, ev)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	_, err = n.sender.Send(ctx, push.Request{
		UserID:         record.RecipientID,
		NotificationID: record.ID,
		Type:           record.Type,
		Category:       push.CategoryEngagement,
		Title:          "Loopin",
		Body:           record.Message,
		TargetID:       record.TargetID,
		ActivityID:     record.ActivityID,
		ImageURL:       record.ThumbnailURL,
	})
	if err != nil {
		n.logger.Warn("push delivery failed",
			zap.String("notification_id", record.ID),
			zap.Uint("recipient_id", record.RecipientID),
			zap.Error(err))
	}
	return nil
}
