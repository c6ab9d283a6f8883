package notification

import (
	"context"
)

// Service queues push notifications for delivery by background workers.
// Delivery is fire-and-forget: failures are logged, never returned to the caller.
type Service interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	// Lifecycle
	Stop()
}
