package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"learnhub-backend/application/ports"
	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
	apperrors "learnhub-backend/pkg/errors"
	"learnhub-backend/pkg/observability"
)

// PaymentInput carries the caller-supplied payment details for a paid
// enrollment. Amount is optional and defaults to the workshop price;
// Status defaults to completed.
type PaymentInput struct {
	Amount     *float64
	Currency   string
	Status     domain.PaymentStatus
	Method     string
	GatewayRef string
}

// EnrollResult is the pair of ids produced by a successful
// enrollment. PaymentID is empty for free workshops.
type EnrollResult struct {
	EnrollmentID string `json:"enrollmentId"`
	PaymentID    string `json:"paymentId,omitempty"`
}

// EnrollmentService is the one cross-entity workflow in the data
// layer: it creates the Payment record (for paid workshops), the
// Enrollment with its embedded payment snapshot, the Payment ->
// Enrollment back-reference, and the user's aggregate-stat bump, all
// inside a single atomic batch. A commit failure leaves no partial
// Enrollment/Payment pair visible to readers.
//
// The service does not enforce (userId, workshopId) uniqueness;
// callers pre-check via EnrollmentRepository.ExistsActiveOrCompleted.
type EnrollmentService struct {
	store           abstractions.Store
	users           ports.UserRepository
	workshops       ports.WorkshopRepository
	enrollments     ports.EnrollmentRepository
	payments        ports.PaymentRepository
	defaultCurrency string
	logger          *zap.Logger
}

// NewEnrollmentService creates the enrollment orchestrator.
func NewEnrollmentService(
	store abstractions.Store,
	users ports.UserRepository,
	workshops ports.WorkshopRepository,
	enrollments ports.EnrollmentRepository,
	payments ports.PaymentRepository,
	defaultCurrency string,
	logger *zap.Logger,
) *EnrollmentService {
	if defaultCurrency == "" {
		defaultCurrency = "INR"
	}
	return &EnrollmentService{
		store:           store,
		users:           users,
		workshops:       workshops,
		enrollments:     enrollments,
		payments:        payments,
		defaultCurrency: defaultCurrency,
		logger:          logger,
	}
}

// EnrollUserInWorkshop enrolls a user in a workshop. Paid workshops
// require payment input; free workshops always succeed without it,
// recording a zero-amount completed payment snapshot for uniformity.
func (s *EnrollmentService) EnrollUserInWorkshop(ctx context.Context, userID, workshopID string, input *PaymentInput) (*EnrollResult, error) {
	workshop, err := s.workshops.GetByID(ctx, workshopID)
	if err != nil {
		return nil, err
	}
	if workshop == nil {
		return nil, apperrors.NewNotFoundError("workshop " + workshopID)
	}

	isPaid := !workshop.IsFree()
	if isPaid && input == nil {
		return nil, apperrors.NewPaymentRequiredError(workshopID)
	}

	now := time.Now().UTC()
	ops := make([]abstractions.BatchOp, 0, 4)

	snapshot := domain.PaymentSnapshot{
		Amount:   0,
		Currency: s.defaultCurrency,
		Status:   domain.PaymentStatusCompleted,
	}

	var paymentID string
	if isPaid {
		amount := workshop.Price
		if input.Amount != nil {
			amount = *input.Amount
		}
		currency := input.Currency
		if currency == "" {
			currency = s.defaultCurrency
		}
		status := input.Status
		if status == "" {
			status = domain.PaymentStatusCompleted
		}

		paymentID = s.payments.NewID()
		payment := &domain.Payment{
			ID:         paymentID,
			UserID:     userID,
			WorkshopID: workshopID,
			Amount:     amount,
			Currency:   currency,
			Status:     status,
			Method:     input.Method,
			GatewayRef: input.GatewayRef,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if status == domain.PaymentStatusCompleted {
			payment.PaidAt = &now
		}
		ops = append(ops, s.payments.StageCreate(payment))

		snapshot = domain.PaymentSnapshot{
			PaymentID: paymentID,
			Amount:    amount,
			Currency:  currency,
			Status:    status,
			Method:    input.Method,
		}
	}

	enrollmentID := s.enrollments.NewID()
	enrollment := &domain.Enrollment{
		ID:         enrollmentID,
		UserID:     userID,
		WorkshopID: workshopID,
		Status:     domain.EnrollmentStatusActive,
		Payment:    snapshot,
		Progress: domain.Progress{
			CurrentModule:      0,
			CompletedModules:   []int{},
			PercentageComplete: 0,
			LastAccessed:       now,
		},
		EnrolledAt: now,
	}
	ops = append(ops, s.enrollments.StageCreate(enrollment))

	if paymentID != "" {
		ops = append(ops, s.payments.StageLinkEnrollment(paymentID, enrollmentID, now))
	}

	// Keep the user's aggregate stats linked to the enrollment by
	// committing them in the same batch. A missing profile is
	// tolerated: enrollment must not depend on the auth subsystem
	// having synced the user document yet.
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		spent := 0.0
		if snapshot.Status == domain.PaymentStatusCompleted {
			spent = snapshot.Amount
		}
		ops = append(ops, s.users.StageStatsUpdate(user, spent))
	} else {
		s.logger.Warn("User profile missing, skipping stat update",
			zap.String("userID", userID),
		)
	}

	err = observability.Capture(ctx, "enrollment.commit", func(ctx context.Context) error {
		return s.store.AtomicBatch(ctx, ops)
	})
	if err != nil {
		s.logger.Error("Enrollment batch failed",
			zap.String("userID", userID),
			zap.String("workshopID", workshopID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Enrollment committed",
		zap.String("enrollmentID", enrollmentID),
		zap.String("paymentID", paymentID),
		zap.String("userID", userID),
		zap.String("workshopID", workshopID),
		zap.Bool("paid", isPaid),
	)

	return &EnrollResult{
		EnrollmentID: enrollmentID,
		PaymentID:    paymentID,
	}, nil
}
