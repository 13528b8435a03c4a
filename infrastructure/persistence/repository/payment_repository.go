package repository

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	"learnhub-backend/infrastructure/persistence/normalize"
	apperrors "learnhub-backend/pkg/errors"
)

// PaymentRepository implements ports.PaymentRepository.
type PaymentRepository struct {
	store  abstractions.Store
	logger *zap.Logger
}

// NewPaymentRepository creates a payment repository over the given
// store.
func NewPaymentRepository(store abstractions.Store, logger *zap.Logger) ports.PaymentRepository {
	return &PaymentRepository{store: store, logger: logger}
}

// NewID allocates a payment id for staged batch writes.
func (r *PaymentRepository) NewID() string {
	return newID()
}

// Create stores a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (string, error) {
	if payment.UserID == "" || payment.WorkshopID == "" {
		return "", apperrors.NewValidationError("payment requires userId and workshopId")
	}

	if payment.ID == "" {
		payment.ID = newID()
	}
	now := time.Now().UTC()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	doc, err := toDoc(payment)
	if err != nil {
		return "", apperrors.NewDatabaseError("create payment", err)
	}
	if err := r.store.Set(ctx, CollectionPayments, payment.ID, doc); err != nil {
		return "", err
	}

	r.logger.Info("Payment created",
		zap.String("paymentID", payment.ID),
		zap.String("userID", payment.UserID),
		zap.Float64("amount", payment.Amount),
	)
	return payment.ID, nil
}

// GetByID returns (nil, nil) when the payment does not exist.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	doc, err := r.store.Get(ctx, CollectionPayments, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return normalize.Payment(doc), nil
}

// Update merges the given fields and refreshes updatedAt.
func (r *PaymentRepository) Update(ctx context.Context, id string, partial abstractions.Document) error {
	partial["updatedAt"] = nowString(time.Now())
	return r.store.Update(ctx, CollectionPayments, id, partial)
}

// Delete removes the payment document.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, CollectionPayments, id)
}

// ListByUser returns the user's payments sorted newest first by
// createdAt.
func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	docs, err := r.store.Query(ctx, CollectionPayments, abstractions.QueryCriteria{
		Filters: []abstractions.Filter{{Field: "userId", Value: userID}},
	})
	if err != nil {
		return nil, err
	}
	return r.sorted(docs), nil
}

// ListAll returns every payment record, newest first. Used by the
// admin dashboard.
func (r *PaymentRepository) ListAll(ctx context.Context) ([]*domain.Payment, error) {
	docs, err := r.store.Query(ctx, CollectionPayments, abstractions.QueryCriteria{})
	if err != nil {
		return nil, err
	}
	return r.sorted(docs), nil
}

func (r *PaymentRepository) sorted(docs []abstractions.Document) []*domain.Payment {
	payments := make([]*domain.Payment, 0, len(docs))
	for _, doc := range docs {
		payments = append(payments, normalize.Payment(doc))
	}
	sort.Slice(payments, func(i, j int) bool {
		return payments[i].CreatedAt.After(payments[j].CreatedAt)
	})
	return payments
}

// StageCreate stages the payment write for an atomic batch. The
// caller owns id allocation and timestamps.
func (r *PaymentRepository) StageCreate(payment *domain.Payment) abstractions.BatchOp {
	doc, err := toDoc(payment)
	if err != nil {
		r.logger.Error("Failed to stage payment", zap.Error(err))
		doc = abstractions.Document{}
	}
	return abstractions.BatchOp{
		Kind:       abstractions.BatchSet,
		Collection: CollectionPayments,
		ID:         payment.ID,
		Doc:        doc,
	}
}

// StageLinkEnrollment stages the update that completes the
// Payment -> Enrollment back-reference inside the enrollment batch.
func (r *PaymentRepository) StageLinkEnrollment(paymentID, enrollmentID string, now time.Time) abstractions.BatchOp {
	return abstractions.BatchOp{
		Kind:       abstractions.BatchUpdate,
		Collection: CollectionPayments,
		ID:         paymentID,
		Doc: abstractions.Document{
			"enrollmentId": enrollmentID,
			"updatedAt":    nowString(now),
		},
	}
}

// StageConfirm stages the gateway outcome onto a payment. paidAt is
// written only when the gateway reported a completed payment.
func (r *PaymentRepository) StageConfirm(paymentID string, status domain.PaymentStatus, gatewayRef string, paidAt *time.Time, now time.Time) abstractions.BatchOp {
	doc := abstractions.Document{
		"status":    string(status),
		"updatedAt": nowString(now),
	}
	if gatewayRef != "" {
		doc["gatewayRef"] = gatewayRef
	}
	if paidAt != nil {
		doc["paidAt"] = nowString(*paidAt)
	}
	return abstractions.BatchOp{
		Kind:       abstractions.BatchUpdate,
		Collection: CollectionPayments,
		ID:         paymentID,
		Doc:        doc,
	}
}
