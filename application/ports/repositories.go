// Package ports declares the interfaces through which the application
// layer consumes persistence. Concrete implementations live under
// infrastructure/persistence and are selected by the database factory.
package ports

import (
	"context"
	"time"

	"learnhub-backend/domain"
	"learnhub-backend/infrastructure/persistence/abstractions"
)

// UserRepository manages user profile documents. The document id is
// the auth subsystem's immutable UID.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (string, error)
	// GetByID returns (nil, nil) when the user does not exist.
	GetByID(ctx context.Context, uid string) (*domain.User, error)
	Update(ctx context.Context, uid string, partial abstractions.Document) error
	// Delete removes the user document only; enrollments referencing
	// the user are left untouched (no cascade).
	Delete(ctx context.Context, uid string) error

	// StageStatsUpdate stages an aggregate-stat bump (one more
	// enrollment, amount added to total spent) for inclusion in the
	// enrollment batch.
	StageStatsUpdate(user *domain.User, amountSpent float64) abstractions.BatchOp
}

// WorkshopRepository manages workshop documents.
type WorkshopRepository interface {
	Create(ctx context.Context, workshop *domain.Workshop) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Workshop, error)
	// GetBySlug returns only active workshops; a draft workshop with
	// a matching slug yields (nil, nil).
	GetBySlug(ctx context.Context, slug string) (*domain.Workshop, error)
	// List returns active workshops, newest first.
	List(ctx context.Context) ([]*domain.Workshop, error)
	ListByStatus(ctx context.Context, status domain.WorkshopStatus) ([]*domain.Workshop, error)
	Update(ctx context.Context, id string, partial abstractions.Document) error
	Delete(ctx context.Context, id string) error
}

// EnrollmentRepository manages enrollment documents. Lifecycle
// timestamps are managed explicitly by callers, so Update does not
// refresh any timestamp.
type EnrollmentRepository interface {
	NewID() string
	Create(ctx context.Context, enrollment *domain.Enrollment) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Enrollment, error)
	Update(ctx context.Context, id string, partial abstractions.Document) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's enrollments, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Enrollment, error)
	// ExistsActiveOrCompleted reports whether an active or completed
	// enrollment already links the user to the workshop. Callers use
	// it as a pre-check before enrolling; the check is not race-free
	// across concurrent enroll attempts.
	ExistsActiveOrCompleted(ctx context.Context, userID, workshopID string) (bool, error)

	// StageCreate stages the enrollment write for an atomic batch.
	StageCreate(enrollment *domain.Enrollment) abstractions.BatchOp
	// StageSnapshotStatus stages a rewrite of the enrollment's
	// embedded payment snapshot with the given status.
	StageSnapshotStatus(enrollment *domain.Enrollment, status domain.PaymentStatus) abstractions.BatchOp
}

// PaymentRepository manages payment documents.
type PaymentRepository interface {
	NewID() string
	Create(ctx context.Context, payment *domain.Payment) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Payment, error)
	Update(ctx context.Context, id string, partial abstractions.Document) error
	Delete(ctx context.Context, id string) error
	// ListByUser returns the user's payments, newest first.
	ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error)
	ListAll(ctx context.Context) ([]*domain.Payment, error)

	// StageCreate stages the payment write for an atomic batch.
	StageCreate(payment *domain.Payment) abstractions.BatchOp
	// StageLinkEnrollment stages the back-reference update completing
	// the Payment -> Enrollment link.
	StageLinkEnrollment(paymentID, enrollmentID string, now time.Time) abstractions.BatchOp
	// StageConfirm stages the gateway outcome onto a payment.
	StageConfirm(paymentID string, status domain.PaymentStatus, gatewayRef string, paidAt *time.Time, now time.Time) abstractions.BatchOp
}

// ModuleRepository manages standalone module documents (the
// admin-managed per-module path; the workshop's embedded curriculum
// is the authoritative read model).
type ModuleRepository interface {
	Create(ctx context.Context, module *domain.Module) (string, error)
	GetByID(ctx context.Context, id string) (*domain.Module, error)
	Update(ctx context.Context, id string, partial abstractions.Document) error
	Delete(ctx context.Context, id string) error
	// ListByWorkshop returns a workshop's modules in curriculum order.
	ListByWorkshop(ctx context.Context, workshopID string) ([]*domain.Module, error)
}
