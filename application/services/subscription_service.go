package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
)

// Unsubscribe stops a running subscription and waits for its watcher
// goroutine to exit. Safe to call more than once.
type Unsubscribe func()

// SubscriptionService emulates change subscriptions over backends
// that have no native change feed: each subscription is a polling
// watcher that re-reads its query on an interval and invokes the
// callback with the full, normalized result set. Callbacks receive an
// empty slice when a poll fails so consumers can render "no data"
// instead of hanging on stale state.
type SubscriptionService struct {
	enrollments ports.EnrollmentRepository
	workshops   ports.WorkshopRepository
	interval    time.Duration
	logger      *zap.Logger
}

// NewSubscriptionService creates a polling subscription service.
func NewSubscriptionService(
	enrollments ports.EnrollmentRepository,
	workshops ports.WorkshopRepository,
	interval time.Duration,
	logger *zap.Logger,
) *SubscriptionService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &SubscriptionService{
		enrollments: enrollments,
		workshops:   workshops,
		interval:    interval,
		logger:      logger,
	}
}

// SubscribeToUserEnrollments delivers the user's enrollments (newest
// first) to the callback immediately and then on every poll tick
// until unsubscribed or the context is cancelled.
func (s *SubscriptionService) SubscribeToUserEnrollments(ctx context.Context, userID string, callback func([]*domain.Enrollment)) Unsubscribe {
	return s.watch(ctx, "user enrollments", func(ctx context.Context) {
		list, err := s.enrollments.ListByUser(ctx, userID)
		if err != nil {
			s.logger.Warn("Enrollment poll failed",
				zap.String("userID", userID),
				zap.Error(err),
			)
			callback([]*domain.Enrollment{})
			return
		}
		callback(list)
	})
}

// SubscribeToWorkshop delivers the workshop document to the callback
// on every poll tick. A failed poll or a vanished workshop delivers
// nil.
func (s *SubscriptionService) SubscribeToWorkshop(ctx context.Context, workshopID string, callback func(*domain.Workshop)) Unsubscribe {
	return s.watch(ctx, "workshop", func(ctx context.Context) {
		workshop, err := s.workshops.GetByID(ctx, workshopID)
		if err != nil {
			s.logger.Warn("Workshop poll failed",
				zap.String("workshopID", workshopID),
				zap.Error(err),
			)
			callback(nil)
			return
		}
		callback(workshop)
	})
}

// watch runs poll once immediately, then on each tick, until the
// returned Unsubscribe is called or ctx is cancelled.
func (s *SubscriptionService) watch(ctx context.Context, name string, poll func(context.Context)) Unsubscribe {
	stopChan := make(chan struct{})
	stoppedChan := make(chan struct{})

	go func() {
		defer close(stoppedChan)

		poll(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Debug("Context cancelled, stopping subscription", zap.String("subscription", name))
				return
			case <-stopChan:
				return
			case <-ticker.C:
				poll(ctx)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopChan)
		})
		<-stoppedChan
	}
}
