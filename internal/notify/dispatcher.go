// Package notify delivers fired alert triggers through the configured
// channels. All real dispatch runs detached from the ingestion request on a
// worker pool; only the channel test operation is synchronous.
package notify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"garden-core/internal/logging"
	"garden-core/internal/metrics"
	"garden-core/internal/models"
	"garden-core/internal/providers"
)

// ChannelStore is the slice of the store the dispatcher needs.
type ChannelStore interface {
	ListChannels(ctx context.Context, enabledOnly bool) ([]models.NotificationChannel, error)
	GetChannel(ctx context.Context, id uuid.UUID) (models.NotificationChannel, error)
}

// Service is the notification dispatcher.
type Service struct {
	store       ChannelStore
	logger      *logging.Logger
	deps        providers.Deps
	queue       chan models.TriggerContext
	ctx         context.Context
	cancel      context.CancelFunc
	hub         *Hub
	testTimeout time.Duration
}

// New constructs a dispatcher with a bounded queue.
func New(store ChannelStore, logger *logging.Logger, deps providers.Deps, queueSize int, testTimeout time.Duration) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:       store,
		logger:      logger,
		deps:        deps,
		queue:       make(chan models.TriggerContext, queueSize),
		ctx:         ctx,
		cancel:      cancel,
		hub:         NewHub(logger),
		testTimeout: testTimeout,
	}
}

// Hub exposes the live alert feed for the API layer.
func (s *Service) Hub() *Hub { return s.hub }

// Start launches the worker pool.
func (s *Service) Start(workers int) {
	for i := 0; i < workers; i++ {
		go s.worker(i)
	}
}

// Stop cancels the workers. Queued triggers are dropped; the trigger
// records are already durable, so nothing is lost but the delivery attempt.
func (s *Service) Stop() {
	s.cancel()
}

// Dispatch enqueues a fired trigger. Never blocks the caller: when the
// queue is full the trigger is logged and dropped, the ingestion response
// must not depend on dispatch latency.
func (s *Service) Dispatch(tc models.TriggerContext) {
	select {
	case s.queue <- tc:
	default:
		s.logger.Errorf("Dispatch queue full, dropping trigger for rule %s", tc.Rule.ID)
		metrics.NotificationsSent.WithLabelValues("queue", "dropped").Inc()
	}
}

func (s *Service) worker(id int) {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Infof("Dispatch worker %d stopped", id)
			return
		case tc := <-s.queue:
			s.handle(tc)
		}
	}
}

// handle fans one trigger out to the rule's email destination plus every
// enabled channel. Channels fail independently; a failure is logged and
// counted, never propagated.
func (s *Service) handle(tc models.TriggerContext) {
	ctx, cancel := context.WithTimeout(s.ctx, 60*time.Second)
	defer cancel()

	targets := []providers.Channel{
		providers.NewDirectEmail(tc.Rule.Email, s.deps.SMTP),
	}

	stored, err := s.store.ListChannels(ctx, true)
	if err != nil {
		s.logger.Errorf("Failed to load channels for rule %s: %v", tc.Rule.ID, err)
	}
	for _, row := range stored {
		ch, err := providers.Build(row, s.deps)
		if err != nil {
			s.logger.Errorf("Skipping misconfigured channel %s: %v", row.ID, err)
			continue
		}
		targets = append(targets, ch)
	}

	for _, ch := range targets {
		msg := ch.Render(tc)
		if err := s.sendWithRetry(ctx, ch, msg); err != nil {
			s.logger.Errorf("Dispatch via %s failed for rule %s: %v", ch.Kind(), tc.Rule.ID, err)
			metrics.NotificationsSent.WithLabelValues(string(ch.Kind()), "failed").Inc()
			continue
		}
		metrics.NotificationsSent.WithLabelValues(string(ch.Kind()), "success").Inc()
	}

	s.hub.BroadcastTrigger(tc)
}

func (s *Service) sendWithRetry(ctx context.Context, ch providers.Channel, msg Message) error {
	op := func() error { return ch.Send(ctx, msg) }
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 2), ctx)
	return backoff.Retry(op, policy)
}

// Message aliases the provider message type for callers of the dispatcher.
type Message = providers.Message

// Test renders and sends a synthetic message through one channel and
// reports the outcome synchronously. This is the only dispatcher path
// allowed to block its caller; the timeout bounds it.
func (s *Service) Test(ctx context.Context, channelID uuid.UUID) error {
	row, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		return err
	}

	ch, err := providers.Build(row, s.deps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.testTimeout)
	defer cancel()
	return ch.Send(ctx, providers.TestMessage())
}
