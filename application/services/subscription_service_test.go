package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence"
	"learnhub-backend/infrastructure/persistence/memory"
)

type enrollmentCollector struct {
	mu    sync.Mutex
	calls [][]*domain.Enrollment
}

func (c *enrollmentCollector) collect(list []*domain.Enrollment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, list)
}

func (c *enrollmentCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *enrollmentCollector) first() []*domain.Enrollment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	return c.calls[0]
}

func (c *enrollmentCollector) last() []*domain.Enrollment {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.calls) == 0 {
		return nil
	}
	return c.calls[len(c.calls)-1]
}

func newSubscriptionFixture(t *testing.T) (*persistence.Database, *SubscriptionService) {
	t.Helper()
	db := persistence.NewDatabaseWithStore(memory.NewStore(), zap.NewNop())
	svc := NewSubscriptionService(db.Enrollments, db.Workshops, 10*time.Millisecond, zap.NewNop())
	return db, svc
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSubscribeDeliversImmediately(t *testing.T) {
	db, svc := newSubscriptionFixture(t)
	ctx := context.Background()

	id := db.Enrollments.NewID()
	_, err := db.Enrollments.Create(ctx, &domain.Enrollment{
		ID:         id,
		UserID:     "u1",
		WorkshopID: "w1",
		Status:     domain.EnrollmentStatusActive,
	})
	require.NoError(t, err)

	var collector enrollmentCollector
	unsub := svc.SubscribeToUserEnrollments(ctx, "u1", collector.collect)
	defer unsub()

	waitFor(t, func() bool { return collector.count() >= 1 })
	require.Len(t, collector.last(), 1)
	assert.Equal(t, id, collector.last()[0].ID)
}

func TestSubscribePicksUpNewEnrollments(t *testing.T) {
	db, svc := newSubscriptionFixture(t)
	ctx := context.Background()

	var collector enrollmentCollector
	unsub := svc.SubscribeToUserEnrollments(ctx, "u1", collector.collect)
	defer unsub()

	waitFor(t, func() bool { return collector.count() >= 1 })
	assert.Empty(t, collector.last())

	_, err := db.Enrollments.Create(ctx, &domain.Enrollment{
		ID:         db.Enrollments.NewID(),
		UserID:     "u1",
		WorkshopID: "w1",
		Status:     domain.EnrollmentStatusActive,
	})
	require.NoError(t, err)

	waitFor(t, func() bool { return len(collector.last()) == 1 })
}

func TestSubscribeDeliversEmptyOnPollFailure(t *testing.T) {
	store := memory.NewStore()
	db := persistence.NewDatabaseWithStore(store, zap.NewNop())
	svc := NewSubscriptionService(db.Enrollments, db.Workshops, 10*time.Millisecond, zap.NewNop())
	ctx := context.Background()

	_, err := db.Enrollments.Create(ctx, &domain.Enrollment{
		ID:         db.Enrollments.NewID(),
		UserID:     "u1",
		WorkshopID: "w1",
		Status:     domain.EnrollmentStatusActive,
	})
	require.NoError(t, err)

	var collector enrollmentCollector
	store.FailNextQuery()
	unsub := svc.SubscribeToUserEnrollments(ctx, "u1", collector.collect)
	defer unsub()

	// The armed failure hits the immediate first poll, which must
	// degrade to an empty slice rather than skipping the callback.
	waitFor(t, func() bool { return collector.count() >= 1 })
	require.NotNil(t, collector.first())
	assert.Empty(t, collector.first())

	// Later polls recover and deliver the real list.
	waitFor(t, func() bool { return len(collector.last()) == 1 })
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	_, svc := newSubscriptionFixture(t)

	var collector enrollmentCollector
	unsub := svc.SubscribeToUserEnrollments(context.Background(), "u1", collector.collect)

	waitFor(t, func() bool { return collector.count() >= 1 })
	unsub()
	// Second call must not panic or block.
	unsub()

	settled := collector.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, collector.count())
}

func TestContextCancelStopsDelivery(t *testing.T) {
	_, svc := newSubscriptionFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	var collector enrollmentCollector
	svc.SubscribeToUserEnrollments(ctx, "u1", collector.collect)

	waitFor(t, func() bool { return collector.count() >= 1 })
	cancel()

	time.Sleep(30 * time.Millisecond)
	settled := collector.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, collector.count())
}

func TestSubscribeToWorkshopDeliversNilWhenAbsent(t *testing.T) {
	_, svc := newSubscriptionFixture(t)
	ctx := context.Background()

	var (
		mu    sync.Mutex
		calls []*domain.Workshop
	)
	unsub := svc.SubscribeToWorkshop(ctx, "missing", func(w *domain.Workshop) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, w)
	})
	defer unsub()

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) >= 1
	})
	mu.Lock()
	assert.Nil(t, calls[0])
	mu.Unlock()
}
