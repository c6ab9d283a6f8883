package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/faena-app/faena-backend/internal/domain/notification"
	"github.com/faena-app/faena-backend/internal/domain/user"
	"github.com/faena-app/faena-backend/internal/pkg/push"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	userRepo user.UserRepository
	sender   push.Sender
	config   Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(userRepo user.UserRepository, sender push.Sender, cfg Config) notification.Service {
	// Set defaults
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		userRepo: userRepo,
		sender:   sender,
		config:   cfg,
		queue:    make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:   make(chan struct{}),
	}

	// Start background workers
	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

// worker is the background worker that drains the queue in batches
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.deliver(ctx, batch); err != nil {
			slog.Error("Notification batch delivery failed", "worker", id, "size", len(batch), "error", err)
		} else {
			slog.Debug("Notification batch delivered", "worker", id, "size", len(batch))
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is already queued before exiting
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// deliver resolves push tokens and hands the batch to the relay.
// Recipients without a registered token are skipped.
func (s *service) deliver(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	ids := make([]string, 0, len(reqs))
	seen := make(map[string]struct{}, len(reqs))
	for _, req := range reqs {
		if _, ok := seen[req.RecipientID]; ok {
			continue
		}
		seen[req.RecipientID] = struct{}{}
		ids = append(ids, req.RecipientID)
	}

	tokens, err := s.userRepo.GetPushTokens(ctx, ids)
	if err != nil {
		return err
	}

	msgs := make([]push.Message, 0, len(reqs))
	for _, req := range reqs {
		token, ok := tokens[req.RecipientID]
		if !ok {
			continue
		}
		n := req.ToNotification()
		data := make(map[string]interface{}, len(n.Data)+1)
		for k, v := range n.Data {
			data[k] = v
		}
		data["type"] = string(n.Type)

		msgs = append(msgs, push.Message{
			To:    token,
			Title: n.Title,
			Body:  n.Message,
			Data:  data,
		})
	}

	return s.sender.Send(ctx, msgs)
}

// QueueNotification queues a notification for async delivery
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Queue full, deliver directly
		if err := s.deliver(ctx, []notification.CreateNotificationRequest{req}); err != nil {
			slog.Error("Direct notification delivery failed", "recipient_id", req.RecipientID, "error", err)
		}
		return nil
	}
}

// QueueBulkNotification queues multiple notifications for async delivery
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Warn("Failed to queue notification", "recipient_id", req.RecipientID, "error", err)
		}
	}
	return nil
}

// Stop flushes pending notifications and stops the workers
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
