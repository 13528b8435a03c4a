package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/infrastructure/persistence/memory"
)

func newTestEnrollment(userID, workshopID string, status domain.EnrollmentStatus) *domain.Enrollment {
	return &domain.Enrollment{
		UserID:     userID,
		WorkshopID: workshopID,
		Status:     status,
		Payment: domain.PaymentSnapshot{
			Amount:   0,
			Currency: "INR",
			Status:   domain.PaymentStatusCompleted,
		},
		Progress: domain.Progress{
			CompletedModules: []int{},
			LastAccessed:     time.Now().UTC(),
		},
	}
}

func TestEnrollmentCreateRequiresUserAndWorkshop(t *testing.T) {
	repo := NewEnrollmentRepository(memory.NewStore(), zap.NewNop())

	_, err := repo.Create(context.Background(), &domain.Enrollment{UserID: "u1"})
	require.Error(t, err)
}

func TestEnrollmentListByUserNewestFirst(t *testing.T) {
	repo := NewEnrollmentRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestEnrollment("u1", "w1", domain.EnrollmentStatusActive))
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = repo.Create(ctx, newTestEnrollment("u1", "w2", domain.EnrollmentStatusActive))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestEnrollment("u2", "w1", domain.EnrollmentStatusActive))
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "w2", list[0].WorkshopID)
	assert.Equal(t, "w1", list[1].WorkshopID)
}

func TestExistsActiveOrCompleted(t *testing.T) {
	repo := NewEnrollmentRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, newTestEnrollment("u1", "w-active", domain.EnrollmentStatusActive))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestEnrollment("u1", "w-done", domain.EnrollmentStatusCompleted))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newTestEnrollment("u1", "w-gone", domain.EnrollmentStatusCancelled))
	require.NoError(t, err)

	for _, tc := range []struct {
		workshopID string
		want       bool
	}{
		{"w-active", true},
		{"w-done", true},
		// A cancelled enrollment does not block re-enrollment.
		{"w-gone", false},
		{"w-never", false},
	} {
		got, err := repo.ExistsActiveOrCompleted(ctx, "u1", tc.workshopID)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "workshop %s", tc.workshopID)
	}

	got, err := repo.ExistsActiveOrCompleted(ctx, "u2", "w-active")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEnrollmentUpdateDoesNotTouchTimestamps(t *testing.T) {
	store := memory.NewStore()
	repo := NewEnrollmentRepository(store, zap.NewNop())
	ctx := context.Background()

	id, err := repo.Create(ctx, newTestEnrollment("u1", "w1", domain.EnrollmentStatusActive))
	require.NoError(t, err)

	before, err := repo.GetByID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, id, map[string]interface{}{"status": "cancelled"}))

	after, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.EnrollmentStatusCancelled, after.Status)
	assert.True(t, after.EnrolledAt.Equal(before.EnrolledAt))
}

func TestPaymentListByUserNewestFirst(t *testing.T) {
	repo := NewPaymentRepository(memory.NewStore(), zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Payment{UserID: "u1", WorkshopID: "w1", Amount: 499, Currency: "INR", Status: domain.PaymentStatusCompleted})
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)
	_, err = repo.Create(ctx, &domain.Payment{UserID: "u1", WorkshopID: "w2", Amount: 999, Currency: "INR", Status: domain.PaymentStatusCompleted})
	require.NoError(t, err)

	list, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "w2", list[0].WorkshopID)
}

func TestUserStageStatsUpdateComputesAbsoluteValues(t *testing.T) {
	store := memory.NewStore()
	users := NewUserRepository(store, zap.NewNop())
	ctx := context.Background()

	_, err := users.Create(ctx, &domain.User{
		UID:   "u1",
		Email: "a@b.c",
		Stats: domain.UserStats{EnrolledWorkshops: 2, TotalSpent: 1000},
	})
	require.NoError(t, err)

	loaded, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)

	op := users.StageStatsUpdate(loaded, 499)
	require.NoError(t, store.AtomicBatch(ctx, []abstractions.BatchOp{op}))

	after, err := users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, after.Stats.EnrolledWorkshops)
	assert.Equal(t, 1499.0, after.Stats.TotalSpent)
	assert.Equal(t, 0, after.Stats.CompletedWorkshops)
}
