package verify

import (
	"context"
	"fmt"
	"sync"
	"time"

	apperrors "learnhub-backend/pkg/errors"
)

// CounterStore persists sliding-window attempt records per key. The
// default is in-memory; deployments running more than one instance
// swap in a shared implementation.
type CounterStore interface {
	// Attempts returns the attempt timestamps recorded for key.
	Attempts(ctx context.Context, key string) ([]time.Time, error)
	// Record replaces the attempt timestamps recorded for key.
	Record(ctx context.Context, key string, attempts []time.Time) error
	// Reset clears the attempt record for key.
	Reset(ctx context.Context, key string) error
}

// Limiter caps phone-verification attempts per phone number over a
// sliding window. Exceeding the cap yields a RATE_LIMIT AppError so
// the HTTP layer can answer 429.
type Limiter struct {
	store       CounterStore
	maxAttempts int
	window      time.Duration
}

// NewLimiter creates a verification limiter over the given store.
func NewLimiter(store CounterStore, maxAttempts int, window time.Duration) *Limiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = time.Hour
	}
	return &Limiter{
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Allow records one verification attempt for the phone number and
// reports whether it is within the cap. A RATE_LIMIT error is
// returned when the cap is exceeded; store failures surface as-is.
func (l *Limiter) Allow(ctx context.Context, phone string) error {
	key := fmt.Sprintf("verify:%s", phone)

	attempts, err := l.store.Attempts(ctx, key)
	if err != nil {
		return err
	}

	now := time.Now()
	windowStart := now.Add(-l.window)

	valid := make([]time.Time, 0, len(attempts)+1)
	for _, at := range attempts {
		if at.After(windowStart) {
			valid = append(valid, at)
		}
	}

	if len(valid) >= l.maxAttempts {
		return apperrors.NewRateLimitError(l.maxAttempts, l.window.String())
	}

	valid = append(valid, now)
	return l.store.Record(ctx, key, valid)
}

// Reset clears the attempt record for the phone number. Called after
// a successful verification.
func (l *Limiter) Reset(ctx context.Context, phone string) error {
	return l.store.Reset(ctx, fmt.Sprintf("verify:%s", phone))
}

// MemoryCounterStore is the default single-process CounterStore.
type MemoryCounterStore struct {
	mu      sync.Mutex
	records map[string][]time.Time
}

// NewMemoryCounterStore creates an in-memory counter store.
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		records: make(map[string][]time.Time),
	}
}

func (s *MemoryCounterStore) Attempts(ctx context.Context, key string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := s.records[key]
	out := make([]time.Time, len(attempts))
	copy(out, attempts)
	return out, nil
}

func (s *MemoryCounterStore) Record(ctx context.Context, key string, attempts []time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]time.Time, len(attempts))
	copy(kept, attempts)
	s.records[key] = kept
	return nil
}

func (s *MemoryCounterStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, key)
	return nil
}
