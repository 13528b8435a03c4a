package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence"
	"learnhub-backend/infrastructure/persistence/memory"
)

func newPaymentFixture(t *testing.T) (*persistence.Database, *PaymentHandler) {
	t.Helper()
	db := persistence.NewDatabaseWithStore(memory.NewStore(), zap.NewNop())
	handler := NewPaymentHandler(db.Payments, db.Enrollments, db.Store, zap.NewNop())
	return db, handler
}

func createPendingPaymentWithEnrollment(t *testing.T, db *persistence.Database) (paymentID, enrollmentID string) {
	t.Helper()
	ctx := context.Background()

	paymentID = db.Payments.NewID()
	enrollmentID = db.Enrollments.NewID()

	_, err := db.Payments.Create(ctx, &domain.Payment{
		ID:           paymentID,
		UserID:       "u1",
		WorkshopID:   "w1",
		EnrollmentID: enrollmentID,
		Amount:       499,
		Currency:     "INR",
		Status:       domain.PaymentStatusPending,
		Method:       "upi",
	})
	require.NoError(t, err)

	_, err = db.Enrollments.Create(ctx, &domain.Enrollment{
		ID:         enrollmentID,
		UserID:     "u1",
		WorkshopID: "w1",
		Status:     domain.EnrollmentStatusActive,
		Payment: domain.PaymentSnapshot{
			PaymentID: paymentID,
			Amount:    499,
			Currency:  "INR",
			Status:    domain.PaymentStatusPending,
			Method:    "upi",
		},
	})
	require.NoError(t, err)
	return paymentID, enrollmentID
}

func confirmRequest(paymentID, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/payments/"+paymentID+"/confirm", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("paymentID", paymentID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestConfirmPaymentSyncsEnrollmentSnapshot(t *testing.T) {
	db, handler := newPaymentFixture(t)
	ctx := context.Background()
	paymentID, enrollmentID := createPendingPaymentWithEnrollment(t, db)

	rec := httptest.NewRecorder()
	handler.ConfirmPayment(rec, confirmRequest(paymentID, `{"status":"completed","gatewayRef":"gw_123"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	payment, err := db.Payments.GetByID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, payment.Status)
	assert.Equal(t, "gw_123", payment.GatewayRef)
	require.NotNil(t, payment.PaidAt)

	enrollment, err := db.Enrollments.GetByID(ctx, enrollmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, enrollment.Payment.Status)
	// The rest of the snapshot survives the rewrite.
	assert.Equal(t, paymentID, enrollment.Payment.PaymentID)
	assert.Equal(t, 499.0, enrollment.Payment.Amount)
	assert.Equal(t, "upi", enrollment.Payment.Method)
}

func TestConfirmPaymentFailedOutcomeHasNoPaidAt(t *testing.T) {
	db, handler := newPaymentFixture(t)
	ctx := context.Background()
	paymentID, enrollmentID := createPendingPaymentWithEnrollment(t, db)

	rec := httptest.NewRecorder()
	handler.ConfirmPayment(rec, confirmRequest(paymentID, `{"status":"failed"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	payment, err := db.Payments.GetByID(ctx, paymentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, payment.Status)
	assert.Nil(t, payment.PaidAt)

	enrollment, err := db.Enrollments.GetByID(ctx, enrollmentID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusFailed, enrollment.Payment.Status)
}

func TestConfirmPaymentRejectsNonPending(t *testing.T) {
	db, handler := newPaymentFixture(t)
	paymentID, _ := createPendingPaymentWithEnrollment(t, db)

	rec := httptest.NewRecorder()
	handler.ConfirmPayment(rec, confirmRequest(paymentID, `{"status":"completed"}`))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ConfirmPayment(rec, confirmRequest(paymentID, `{"status":"completed"}`))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
