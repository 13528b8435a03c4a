package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence"
	"learnhub-backend/infrastructure/persistence/memory"
	apperrors "learnhub-backend/pkg/errors"
)

type enrollFixture struct {
	store *memory.Store
	db    *persistence.Database
	svc   *EnrollmentService
}

func newEnrollFixture(t *testing.T) *enrollFixture {
	t.Helper()
	store := memory.NewStore()
	db := persistence.NewDatabaseWithStore(store, zap.NewNop())
	svc := NewEnrollmentService(store, db.Users, db.Workshops, db.Enrollments, db.Payments, "INR", zap.NewNop())
	return &enrollFixture{store: store, db: db, svc: svc}
}

func (f *enrollFixture) createUser(t *testing.T, uid string) {
	t.Helper()
	_, err := f.db.Users.Create(context.Background(), &domain.User{UID: uid, Email: uid + "@test.dev"})
	require.NoError(t, err)
}

func (f *enrollFixture) createWorkshop(t *testing.T, slug string, price float64) string {
	t.Helper()
	id, err := f.db.Workshops.Create(context.Background(), &domain.Workshop{
		Slug:     slug,
		Title:    "Workshop " + slug,
		Price:    price,
		Currency: "INR",
		Level:    domain.LevelBeginner,
		Status:   domain.WorkshopStatusActive,
	})
	require.NoError(t, err)
	return id
}

func TestEnrollFreeWorkshop(t *testing.T) {
	f := newEnrollFixture(t)
	ctx := context.Background()
	f.createUser(t, "u1")
	workshopID := f.createWorkshop(t, "free-one", 0)

	result, err := f.svc.EnrollUserInWorkshop(ctx, "u1", workshopID, nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.EnrollmentID)
	assert.Empty(t, result.PaymentID)

	enrollment, err := f.db.Enrollments.GetByID(ctx, result.EnrollmentID)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
	assert.Equal(t, domain.EnrollmentStatusActive, enrollment.Status)
	assert.Empty(t, enrollment.Payment.PaymentID)
	assert.Zero(t, enrollment.Payment.Amount)
	assert.Equal(t, domain.PaymentStatusCompleted, enrollment.Payment.Status)
	assert.Zero(t, enrollment.Progress.PercentageComplete)
	assert.False(t, enrollment.Progress.LastAccessed.IsZero())

	// No payment document for free workshops.
	payments, err := f.db.Payments.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, payments)

	user, err := f.db.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Stats.EnrolledWorkshops)
	assert.Zero(t, user.Stats.TotalSpent)
}

func TestEnrollPaidWorkshopRequiresPaymentInput(t *testing.T) {
	f := newEnrollFixture(t)
	workshopID := f.createWorkshop(t, "paid-one", 499)

	_, err := f.svc.EnrollUserInWorkshop(context.Background(), "u1", workshopID, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsPaymentRequired(err))
}

func TestEnrollPaidWorkshopLinksBothDirections(t *testing.T) {
	f := newEnrollFixture(t)
	ctx := context.Background()
	f.createUser(t, "u1")
	workshopID := f.createWorkshop(t, "paid-one", 499)

	result, err := f.svc.EnrollUserInWorkshop(ctx, "u1", workshopID, &PaymentInput{Method: "upi"})
	require.NoError(t, err)
	require.NotEmpty(t, result.PaymentID)

	enrollment, err := f.db.Enrollments.GetByID(ctx, result.EnrollmentID)
	require.NoError(t, err)
	assert.Equal(t, result.PaymentID, enrollment.Payment.PaymentID)
	// Amount defaults to the workshop price.
	assert.Equal(t, 499.0, enrollment.Payment.Amount)
	assert.Equal(t, "INR", enrollment.Payment.Currency)

	payment, err := f.db.Payments.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, payment)
	assert.Equal(t, result.EnrollmentID, payment.EnrollmentID)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.PaidAt)

	user, err := f.db.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Stats.EnrolledWorkshops)
	assert.Equal(t, 499.0, user.Stats.TotalSpent)
}

func TestEnrollPaidWorkshopWithExplicitAmount(t *testing.T) {
	f := newEnrollFixture(t)
	ctx := context.Background()
	f.createUser(t, "u1")
	workshopID := f.createWorkshop(t, "discounted", 999)

	amount := 749.0
	result, err := f.svc.EnrollUserInWorkshop(ctx, "u1", workshopID, &PaymentInput{Amount: &amount})
	require.NoError(t, err)

	payment, err := f.db.Payments.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, 749.0, payment.Amount)
}

func TestEnrollPendingPaymentHasNoPaidAt(t *testing.T) {
	f := newEnrollFixture(t)
	ctx := context.Background()
	f.createUser(t, "u1")
	workshopID := f.createWorkshop(t, "paid-one", 499)

	result, err := f.svc.EnrollUserInWorkshop(ctx, "u1", workshopID, &PaymentInput{
		Status: domain.PaymentStatusPending,
	})
	require.NoError(t, err)

	payment, err := f.db.Payments.GetByID(ctx, result.PaymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPending, payment.Status)
	assert.Nil(t, payment.PaidAt)

	// A pending payment contributes nothing to totalSpent.
	user, err := f.db.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.Stats.EnrolledWorkshops)
	assert.Zero(t, user.Stats.TotalSpent)
}

func TestEnrollUnknownWorkshop(t *testing.T) {
	f := newEnrollFixture(t)

	_, err := f.svc.EnrollUserInWorkshop(context.Background(), "u1", "missing", nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestEnrollWithoutProfileSkipsStats(t *testing.T) {
	f := newEnrollFixture(t)
	ctx := context.Background()
	workshopID := f.createWorkshop(t, "free-one", 0)

	result, err := f.svc.EnrollUserInWorkshop(ctx, "ghost", workshopID, nil)
	require.NoError(t, err)

	enrollment, err := f.db.Enrollments.GetByID(ctx, result.EnrollmentID)
	require.NoError(t, err)
	require.NotNil(t, enrollment)

	// Enrolling must not conjure a profile document.
	user, err := f.db.Users.GetByID(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestEnrollBatchFailureLeavesNoPartialState(t *testing.T) {
	f := newEnrollFixture(t)
	ctx := context.Background()
	f.createUser(t, "u1")
	workshopID := f.createWorkshop(t, "paid-one", 499)

	f.store.FailNextBatch()

	_, err := f.svc.EnrollUserInWorkshop(ctx, "u1", workshopID, &PaymentInput{Method: "card"})
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))

	enrollments, err := f.db.Enrollments.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, enrollments)

	payments, err := f.db.Payments.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, payments)

	user, err := f.db.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, user.Stats.EnrolledWorkshops)
}

func TestUserDeleteLeavesEnrollments(t *testing.T) {
	f := newEnrollFixture(t)
	ctx := context.Background()
	f.createUser(t, "u1")
	workshopID := f.createWorkshop(t, "free-one", 0)

	result, err := f.svc.EnrollUserInWorkshop(ctx, "u1", workshopID, nil)
	require.NoError(t, err)

	require.NoError(t, f.db.Users.Delete(ctx, "u1"))

	enrollment, err := f.db.Enrollments.GetByID(ctx, result.EnrollmentID)
	require.NoError(t, err)
	require.NotNil(t, enrollment)
	assert.Equal(t, "u1", enrollment.UserID)
}
